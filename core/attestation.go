package core

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultFreshnessWindow is the maximum accepted age of the block a payment
// transaction was mined in.
const DefaultFreshnessWindow = 120 * time.Second

// RejectReason identifies why a payment attestation was rejected. The reason
// is for server-side observability; callers see a uniform rejection message.
type RejectReason string

const (
	ReasonChainUnavailable   RejectReason = "chain_unavailable"
	ReasonReceiptNotFound    RejectReason = "receipt_not_found"
	ReasonOnChainFailure     RejectReason = "on_chain_failure"
	ReasonBlockNotFound      RejectReason = "block_not_found"
	ReasonStaleTransaction   RejectReason = "stale_transaction"
	ReasonPartyMismatch      RejectReason = "party_mismatch"
	ReasonNoMatchingTransfer RejectReason = "no_matching_transfer"
)

// TransferEvent is a decoded ERC-20 Transfer log entry.
type TransferEvent struct {
	Contract common.Address
	From     common.Address
	To       common.Address
	// Amount is the transferred value in the token's base units.
	Amount *big.Int
}

// AttestationResult is the outcome of verifying a claimed payment transaction.
type AttestationResult struct {
	Accepted bool
	Reason   RejectReason
}

// Accept returns an accepting attestation result.
func Accept() AttestationResult {
	return AttestationResult{Accepted: true}
}

// Reject returns a rejecting attestation result with a reason code.
func Reject(reason RejectReason) AttestationResult {
	return AttestationResult{Reason: reason}
}
