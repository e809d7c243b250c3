package ports

import (
	"context"

	"github.com/shilldao/chainauth/core"
)

// NonceStore keeps the single live authentication challenge per address.
// Implementations must make Consume atomic per key: when deleteOnSuccess is
// set, two concurrent calls for the same address must not both succeed.
type NonceStore interface {
	// Issue generates a fresh challenge for the address, overwriting any
	// prior record, and returns the challenge with its issue timestamp.
	Issue(ctx context.Context, address string) (challenge string, issuedAt int64, err error)

	// Peek returns the live record for the address, or core.ErrNonceNotFound.
	Peek(ctx context.Context, address string) (*core.NonceRecord, error)

	// Consume checks the stored record against the expected challenge and
	// fails closed: absent, malformed, expired or mismatched records all
	// return false. With deleteOnSuccess the record is removed atomically
	// with the successful check.
	Consume(ctx context.Context, address, challenge string, deleteOnSuccess bool) (bool, error)

	// Delete removes the record for the address, if any.
	Delete(ctx context.Context, address string) error
}
