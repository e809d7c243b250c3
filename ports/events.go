package ports

import "context"

// EventPublisher notifies other services about auth and campaign activity.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string) error
	PublishCampaignCreated(ctx context.Context, campaignID, ownerAddress string) error
}
