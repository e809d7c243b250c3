package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/shilldao/chainauth/ports"
)

// DefaultRPCTimeout bounds each node call. It must stay well under the
// payment freshness window so a slow node cannot stall verification past it.
const DefaultRPCTimeout = 5 * time.Second

// EthReader implements ports.ChainReader over a JSON-RPC Ethereum node.
// Every call gets its own bounded deadline; failures are returned to the
// caller, never retried here.
type EthReader struct {
	client  *ethclient.Client
	timeout time.Duration
}

// Dial connects to the node at rpcURL.
func Dial(rpcURL string, timeout time.Duration) (*EthReader, error) {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain node: %w", err)
	}

	return &EthReader{client: client, timeout: timeout}, nil
}

// NewEthReader wraps an existing client, mainly for tests.
func NewEthReader(client *ethclient.Client, timeout time.Duration) *EthReader {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	return &EthReader{client: client, timeout: timeout}
}

func (r *EthReader) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// TransactionReceipt fetches the receipt for a transaction hash.
func (r *EthReader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ports.TxReceipt, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	receipt, err := r.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	logs := make([]ethtypes.Log, 0, len(receipt.Logs))
	for _, entry := range receipt.Logs {
		logs = append(logs, *entry)
	}

	return &ports.TxReceipt{
		Status:    receipt.Status,
		BlockHash: receipt.BlockHash,
		Logs:      logs,
	}, nil
}

// BlockByHash fetches the header of the block a receipt points at. The header
// carries everything the verifier needs, so the full block body is skipped.
func (r *EthReader) BlockByHash(ctx context.Context, blockHash common.Hash) (*ports.TxBlock, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	header, err := r.client.HeaderByHash(ctx, blockHash)
	if err != nil {
		return nil, err
	}

	return &ports.TxBlock{
		Hash: header.Hash(),
		Time: header.Time,
	}, nil
}

// TransactionByHash fetches the transaction body and derives its sender from
// the signature.
func (r *EthReader) TransactionByHash(ctx context.Context, txHash common.Hash) (*ports.TxBody, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, pending, err := r.client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if pending {
		// A pending transaction has no settled receipt yet; report it the
		// same way as an unmined one.
		return nil, ethereum.NotFound
	}

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive transaction sender: %w", err)
	}

	return &ports.TxBody{
		Hash: tx.Hash(),
		From: from,
		To:   tx.To(),
	}, nil
}

var _ ports.ChainReader = (*EthReader)(nil)
