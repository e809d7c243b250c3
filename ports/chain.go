package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// TxReceipt is the settled outcome of a transaction.
type TxReceipt struct {
	Status    uint64
	BlockHash common.Hash
	Logs      []ethtypes.Log
}

// Succeeded reports whether the transaction executed without reverting.
func (r TxReceipt) Succeeded() bool {
	return r.Status == ethtypes.ReceiptStatusSuccessful
}

// TxBlock carries the block fields the verifier needs.
type TxBlock struct {
	Hash common.Hash
	// Time is the block timestamp in unix seconds.
	Time uint64
}

// TxBody carries the transaction fields the verifier needs.
type TxBody struct {
	Hash common.Hash
	From common.Address
	// To is nil for contract-creation transactions.
	To *common.Address
}

// ChainReader fetches settled transaction data from a chain node. Calls are
// blocking network operations; implementations bound each call with a timeout
// and do not retry. Not-found results are reported as errors wrapping
// ethereum.NotFound semantics from the underlying client.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*TxReceipt, error)
	BlockByHash(ctx context.Context, blockHash common.Hash) (*TxBlock, error)
	TransactionByHash(ctx context.Context, txHash common.Hash) (*TxBody, error)
}
