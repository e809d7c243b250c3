package eth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/shilldao/chainauth/core"
)

// TransferEventSignature is keccak256("Transfer(address,address,uint256)"),
// the topic[0] of every ERC-20 Transfer log. Comparing typed hashes also
// settles the upstream 0x-prefix ambiguity: both renderings parse to the same
// 32 bytes.
var TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// DecodeTransferLog decodes a single log entry into a TransferEvent if it is a
// Transfer emitted by the given token contract. Logs that do not qualify are
// not errors; a transaction carries many unrelated entries, so the second
// return is false and the entry is simply skipped.
func DecodeTransferLog(entry ethtypes.Log, token common.Address) (*core.TransferEvent, bool) {
	if entry.Address != token {
		return nil, false
	}
	if len(entry.Topics) < 3 {
		return nil, false
	}
	if entry.Topics[0] != TransferEventSignature {
		return nil, false
	}

	// Indexed address topics are left-padded to 32 bytes; the address is the
	// low 20.
	return &core.TransferEvent{
		Contract: entry.Address,
		From:     common.BytesToAddress(entry.Topics[1].Bytes()[12:]),
		To:       common.BytesToAddress(entry.Topics[2].Bytes()[12:]),
		Amount:   new(big.Int).SetBytes(entry.Data),
	}, true
}
