package ports

import (
	"context"

	"github.com/shilldao/chainauth/core"
)

// SessionIssuer hands out session credentials once wallet ownership is proven.
// Token format and lifetime are the issuer's concern, not the auth protocol's.
type SessionIssuer interface {
	// Issue creates credentials for the verified address.
	Issue(ctx context.Context, address string) (*core.SessionCredentials, error)

	// Authenticate validates an access token and returns the address it was
	// issued for.
	Authenticate(ctx context.Context, accessToken string) (string, error)
}
