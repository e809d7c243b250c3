package sessions

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/ports"
)

const AudienceAccess = "session:access"
const AudienceRefresh = "session:refresh"

const (
	// DefaultAccessExpiry is the default lifetime of access tokens.
	DefaultAccessExpiry = 5 * time.Minute

	// DefaultRefreshExpiry is the default lifetime of refresh tokens.
	DefaultRefreshExpiry = 5 * 24 * time.Hour
)

// accessClaims combine standard claims with a pointer to the refresh token.
type accessClaims struct {
	jwt.RegisteredClaims
	RefreshID string `json:"rid"`
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

// JWTIssuer implements ports.SessionIssuer with ES256-signed JWTs. It is the
// session back-end the auth protocol hands off to after a wallet proves
// ownership; the protocol itself never inspects these tokens.
type JWTIssuer struct {
	signKey    *ecdsa.PrivateKey
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTIssuer creates an issuer signing with the given key.
func NewJWTIssuer(signKey *ecdsa.PrivateKey) *JWTIssuer {
	return &JWTIssuer{
		signKey:    signKey,
		accessTTL:  DefaultAccessExpiry,
		refreshTTL: DefaultRefreshExpiry,
	}
}

// Issue creates a new access/refresh token pair for the verified address.
func (j *JWTIssuer) Issue(ctx context.Context, address string) (*core.SessionCredentials, error) {
	now := time.Now()
	refreshID := uuid.New().String()

	refresh := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			ID:        refreshID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodES256, refresh).SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	access := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		RefreshID: refreshID,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodES256, access).SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &core.SessionCredentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Authenticate validates an access token and returns the address it was
// issued for.
func (j *JWTIssuer) Authenticate(ctx context.Context, accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceAccess))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", core.ErrInvalidSignature
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims type")
	}

	return claims.Subject, nil
}

var _ ports.SessionIssuer = (*JWTIssuer)(nil)
