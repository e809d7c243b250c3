package core

import "errors"

var (
	// ErrInvalidAddress is returned when an address is not a well-formed
	// checksummed hex address.
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrNonceNotFound is returned when no live challenge exists for an
	// address. Expired challenges surface the same way so the response does
	// not reveal whether an address has been seen before.
	ErrNonceNotFound = errors.New("nonce not found")

	// ErrNonceInvalid is returned when a stored challenge is expired,
	// malformed or does not match.
	ErrNonceInvalid = errors.New("invalid or expired nonce")

	// ErrInvalidSignature is returned when a signature does not recover to
	// the claimed address or the signed message was tampered with.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMalformedSignature is returned when a signature is not a valid
	// 65-byte hex encoding.
	ErrMalformedSignature = errors.New("malformed signature encoding")

	// ErrSessionIssue is returned when session credentials could not be
	// created after a successful verification.
	ErrSessionIssue = errors.New("failed to issue session")

	// ErrStoreOperationFailed is returned when the nonce store backend fails.
	ErrStoreOperationFailed = errors.New("store operation failed")
)
