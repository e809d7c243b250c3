package campaigns

import (
	"context"
	"sync"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/ports"
)

// MemoryStore keeps created campaigns in memory. The relational CRUD layer is
// an external collaborator; this adapter exists so the payment-verified
// creation flow is complete end to end.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]core.Campaign
}

// NewMemoryStore creates an empty campaign store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{campaigns: make(map[string]core.Campaign)}
}

// Create stores the campaign keyed by its ID.
func (s *MemoryStore) Create(ctx context.Context, campaign *core.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.campaigns[campaign.ID] = *campaign
	return nil
}

// Get returns a stored campaign by ID.
func (s *MemoryStore) Get(id string) (core.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, ok := s.campaigns[id]
	return campaign, ok
}

var _ ports.CampaignStore = (*MemoryStore)(nil)
