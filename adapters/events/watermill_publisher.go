package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/shilldao/chainauth/ports"
)

const (
	// LoginTopic carries successful wallet verifications.
	LoginTopic = "chainauth.login"

	// CampaignCreatedTopic carries payment-verified campaign creations.
	CampaignCreatedTopic = "chainauth.campaign.created"
)

// LoginEvent is published after a wallet signature is verified.
type LoginEvent struct {
	Address  string `json:"address"`
	LoggedAt int64  `json:"logged_at"`
}

// CampaignCreatedEvent is published after an attested campaign is persisted.
type CampaignCreatedEvent struct {
	CampaignID   string `json:"campaign_id"`
	OwnerAddress string `json:"owner_address"`
	CreatedAt    int64  `json:"created_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string) error {
	return p.publish(LoginTopic, LoginEvent{
		Address:  address,
		LoggedAt: time.Now().Unix(),
	})
}

// PublishCampaignCreated publishes a campaign creation event.
func (p *WatermillPublisher) PublishCampaignCreated(ctx context.Context, campaignID, ownerAddress string) error {
	return p.publish(CampaignCreatedTopic, CampaignCreatedEvent{
		CampaignID:   campaignID,
		OwnerAddress: ownerAddress,
		CreatedAt:    time.Now().Unix(),
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
