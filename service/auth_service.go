package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/internal/eth"
	"github.com/shilldao/chainauth/ports"
)

// AuthService runs the two-step challenge/response wallet authentication flow.
// Step one issues a challenge for an address; step two verifies the signed
// challenge message and hands off to the session issuer.
type AuthService struct {
	store    ports.NonceStore
	sessions ports.SessionIssuer
	eventPub ports.EventPublisher
	log      *zap.Logger

	// allowNonceReplay keeps consumed nonces alive so staging environments
	// can re-run a signed login. Never enable in production.
	allowNonceReplay bool
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store ports.NonceStore,
	sessions ports.SessionIssuer,
	eventPub ports.EventPublisher,
	log *zap.Logger,
	allowNonceReplay bool,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:            store,
		sessions:         sessions,
		eventPub:         eventPub,
		log:              log,
		allowNonceReplay: allowNonceReplay,
	}
}

// CreateNonce issues a fresh challenge for the address. Any previously issued
// challenge for the same address stops being valid, which closes the window
// where an attacker pre-registers a stale nonce.
func (s *AuthService) CreateNonce(ctx context.Context, address string) (string, int64, error) {
	if err := eth.ValidateChecksumAddress(address); err != nil {
		return "", 0, err
	}

	challenge, issuedAt, err := s.store.Issue(ctx, address)
	if err != nil {
		s.log.Error("failed to issue nonce", zap.String("address", core.NormalizeAddress(address)), zap.Error(err))
		return "", 0, core.ErrStoreOperationFailed
	}

	return challenge, issuedAt, nil
}

// VerifySignature verifies the signed challenge message for the address and,
// on success, returns credentials from the session issuer. The nonce is
// consumed atomically before the signature check, so it can be used at most
// once regardless of concurrent attempts. Unknown and expired addresses both
// surface as ErrNonceNotFound so the response does not reveal whether an
// address was ever seen.
func (s *AuthService) VerifySignature(ctx context.Context, address, message, signature string) (*core.SessionCredentials, error) {
	normalized := core.NormalizeAddress(address)

	record, err := s.store.Peek(ctx, address)
	if err != nil {
		if !errors.Is(err, core.ErrNonceNotFound) {
			s.log.Error("nonce lookup failed", zap.String("address", normalized), zap.Error(err))
		}
		return nil, core.ErrNonceNotFound
	}

	consumed, err := s.store.Consume(ctx, address, record.Challenge, !s.allowNonceReplay)
	if err != nil {
		s.log.Error("nonce consume failed", zap.String("address", normalized), zap.Error(err))
		return nil, core.ErrNonceInvalid
	}
	if !consumed {
		return nil, core.ErrNonceInvalid
	}

	expected := eth.RenderChallengeMessage(record.Challenge, record.IssuedAt)
	if !eth.MessagesEqual(message, expected) {
		s.log.Info("challenge message mismatch", zap.String("address", normalized))
		return nil, core.ErrInvalidSignature
	}

	recovered, err := eth.RecoverPersonalSignAddress(message, signature)
	if err != nil {
		s.log.Info("signature recovery failed", zap.String("address", normalized), zap.Error(err))
		return nil, core.ErrInvalidSignature
	}
	if !eth.AddressesEqual(recovered.Hex(), address) {
		s.log.Info("recovered address mismatch",
			zap.String("address", normalized),
			zap.String("recovered", core.NormalizeAddress(recovered.Hex())),
		)
		return nil, core.ErrInvalidSignature
	}

	credentials, err := s.sessions.Issue(ctx, normalized)
	if err != nil {
		s.log.Error("session issue failed", zap.String("address", normalized), zap.Error(err))
		return nil, core.ErrSessionIssue
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, normalized); err != nil {
			// The login already succeeded; a lost event must not fail it.
			s.log.Warn("failed to publish login event", zap.String("address", normalized), zap.Error(err))
		}
	}

	return credentials, nil
}

// Authenticate validates an access token and returns the address it belongs
// to. Used by the transport middleware.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	return s.sessions.Authenticate(ctx, accessToken)
}
