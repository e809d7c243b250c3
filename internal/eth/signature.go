package eth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/shilldao/chainauth/core"
)

const signatureLength = 65

// RecoverPersonalSignAddress recovers the address that produced a
// personal_sign signature (EIP-191 prefix hashing) over the given message.
func RecoverPersonalSignAddress(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", core.ErrMalformedSignature, err)
	}
	if len(sig) != signatureLength {
		return common.Address{}, fmt.Errorf("%w: got %d bytes, want %d", core.ErrMalformedSignature, len(sig), signatureLength)
	}

	// Wallets emit V as 27/28; crypto.SigToPub wants 0/1.
	recovery := make([]byte, signatureLength)
	copy(recovery, sig)
	if recovery[64] >= 27 {
		recovery[64] -= 27
	}
	if recovery[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: unsupported recovery id %d", core.ErrMalformedSignature, sig[64])
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), recovery)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", core.ErrMalformedSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// AddressesEqual compares two hex addresses case-insensitively, so checksummed
// and lower-cased renderings of the same address match.
func AddressesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ValidateChecksumAddress checks that the input is a well-formed 20-byte hex
// address with a correct EIP-55 mixed-case checksum.
func ValidateChecksumAddress(address string) error {
	if !common.IsHexAddress(address) {
		return core.ErrInvalidAddress
	}
	if common.HexToAddress(address).Hex() != address {
		return fmt.Errorf("%w: bad checksum", core.ErrInvalidAddress)
	}
	return nil
}
