package ports

import (
	"context"

	"github.com/shilldao/chainauth/core"
)

// CampaignStore persists campaigns after their funding payment is verified.
// The full CRUD layer lives outside this service.
type CampaignStore interface {
	Create(ctx context.Context, campaign *core.Campaign) error
}
