package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/internal/eth"
	"github.com/shilldao/chainauth/ports"
)

// DefaultAmountEpsilon absorbs float representation error in amounts quoted in
// token display units. It is not an underpayment allowance.
var DefaultAmountEpsilon = decimal.New(1, -6)

// PaymentConfig holds the constants the attestation policy is checked against.
type PaymentConfig struct {
	// TokenContract is the ERC-20 contract the payment must call.
	TokenContract common.Address

	// Treasury is the address the tokens must be transferred to.
	Treasury common.Address

	// TokenDecimals converts base units to display units.
	TokenDecimals int32

	// FreshnessWindow is the maximum accepted age of the payment's block.
	FreshnessWindow time.Duration

	// AmountEpsilon is the tolerance for the display-unit amount comparison.
	AmountEpsilon decimal.Decimal
}

// PaymentService verifies that a settled transaction actually paid the
// expected amount of tokens to the treasury before a campaign may be created.
// Attest is side-effect-free; re-running it for the same hash yields the same
// result until the freshness window passes.
type PaymentService struct {
	chain ports.ChainReader
	cfg   PaymentConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewPaymentService creates a payment attestation verifier.
func NewPaymentService(chain ports.ChainReader, cfg PaymentConfig, log *zap.Logger) *PaymentService {
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = core.DefaultFreshnessWindow
	}
	if cfg.AmountEpsilon.IsZero() {
		cfg.AmountEpsilon = DefaultAmountEpsilon
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		chain: chain,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Attest checks the full payment policy for the claimed transaction hash:
// settled successfully, mined within the freshness window, sent by the payer
// to the token contract, and carrying a Transfer of the expected amount to the
// treasury. Every rejection returns a reason code; callers surface a uniform
// message.
func (s *PaymentService) Attest(ctx context.Context, txHash common.Hash, payer common.Address, expectedAmount decimal.Decimal) core.AttestationResult {
	log := s.log.With(
		zap.String("tx_hash", txHash.Hex()),
		zap.String("payer", core.NormalizeAddress(payer.Hex())),
	)

	receipt, err := s.chain.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			log.Info("transaction receipt not found")
			return core.Reject(core.ReasonReceiptNotFound)
		}
		log.Error("failed to fetch transaction receipt", zap.Error(err))
		return core.Reject(core.ReasonChainUnavailable)
	}

	if !receipt.Succeeded() {
		log.Info("transaction reverted on-chain", zap.Uint64("status", receipt.Status))
		return core.Reject(core.ReasonOnChainFailure)
	}

	block, err := s.chain.BlockByHash(ctx, receipt.BlockHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			log.Info("block not found", zap.String("block_hash", receipt.BlockHash.Hex()))
			return core.Reject(core.ReasonBlockNotFound)
		}
		log.Error("failed to fetch block", zap.String("block_hash", receipt.BlockHash.Hex()), zap.Error(err))
		return core.Reject(core.ReasonChainUnavailable)
	}

	age := s.now().Unix() - int64(block.Time)
	if age > int64(s.cfg.FreshnessWindow.Seconds()) {
		log.Info("transaction too old", zap.Int64("age_seconds", age))
		return core.Reject(core.ReasonStaleTransaction)
	}

	tx, err := s.chain.TransactionByHash(ctx, txHash)
	if err != nil {
		log.Error("failed to fetch transaction body", zap.Error(err))
		return core.Reject(core.ReasonChainUnavailable)
	}

	if tx.To == nil || *tx.To != s.cfg.TokenContract {
		log.Info("transaction not addressed to token contract")
		return core.Reject(core.ReasonPartyMismatch)
	}
	if tx.From != payer {
		log.Info("transaction not sent by payer", zap.String("from", core.NormalizeAddress(tx.From.Hex())))
		return core.Reject(core.ReasonPartyMismatch)
	}

	// A transaction may batch several transfers and the one of interest is
	// not guaranteed to be first, so every log entry is scanned.
	for _, entry := range receipt.Logs {
		event, ok := eth.DecodeTransferLog(entry, s.cfg.TokenContract)
		if !ok {
			continue
		}
		if event.From != payer || event.To != s.cfg.Treasury {
			continue
		}

		actual := decimal.NewFromBigInt(event.Amount, -s.cfg.TokenDecimals)
		if actual.Sub(expectedAmount).Abs().LessThan(s.cfg.AmountEpsilon) {
			log.Info("payment verified", zap.String("amount", actual.String()))
			return core.Accept()
		}

		log.Info("transfer amount mismatch",
			zap.String("expected", expectedAmount.String()),
			zap.String("actual", actual.String()),
		)
	}

	log.Info("no matching transfer in transaction logs")
	return core.Reject(core.ReasonNoMatchingTransfer)
}
