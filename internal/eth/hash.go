package eth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// IsHexAddress reports whether the string is a well-formed 20-byte hex
// address, checksummed or not.
func IsHexAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsTxHash reports whether the string is a well-formed 32-byte hex hash.
func IsTxHash(hash string) bool {
	raw, err := hexutil.Decode(hash)
	if err != nil {
		return false
	}
	return len(raw) == common.HashLength
}
