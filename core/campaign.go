package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is the resource whose creation is gated on a verified payment.
// Persistence beyond this record belongs to the CRUD layer.
type Campaign struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Budget          decimal.Decimal `json:"budget"`
	OwnerAddress    string          `json:"owner_address"`
	TransactionHash string          `json:"transaction_hash"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SessionCredentials are the opaque tokens handed back by the session issuer
// after a successful wallet verification.
type SessionCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
