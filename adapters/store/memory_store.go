package store

import (
	"context"
	"sync"
	"time"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/ports"
)

// MemoryStore is an in-memory NonceStore for single-instance deployments and
// tests. A single mutex gives Consume its read-then-conditionally-delete
// atomicity.
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.Mutex
	records map[string]core.NonceRecord
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given challenge TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = core.DefaultNonceTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		records: make(map[string]core.NonceRecord),
		now:     time.Now,
	}
}

// Issue generates a fresh challenge and overwrites any prior record for the
// address. Only the most recently issued challenge is ever valid.
func (s *MemoryStore) Issue(ctx context.Context, address string) (string, int64, error) {
	challenge, err := core.NewChallenge()
	if err != nil {
		return "", 0, core.ErrStoreOperationFailed
	}

	key := core.NormalizeAddress(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	record := core.NonceRecord{
		Address:   key,
		Challenge: challenge,
		IssuedAt:  s.now().Unix(),
	}
	s.records[key] = record

	return record.Challenge, record.IssuedAt, nil
}

// Peek returns the live record for the address. Expired records are evicted
// and reported as not found.
func (s *MemoryStore) Peek(ctx context.Context, address string) (*core.NonceRecord, error) {
	key := core.NormalizeAddress(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return nil, core.ErrNonceNotFound
	}
	if record.Expired(s.now(), s.ttl) {
		delete(s.records, key)
		return nil, core.ErrNonceNotFound
	}

	out := record
	return &out, nil
}

// Consume checks the stored challenge and fails closed on any discrepancy.
// The whole check-then-delete runs under the lock, so two concurrent calls
// with deleteOnSuccess cannot both succeed against the same record.
func (s *MemoryStore) Consume(ctx context.Context, address, challenge string, deleteOnSuccess bool) (bool, error) {
	key := core.NormalizeAddress(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return false, nil
	}
	if record.Challenge == "" || record.IssuedAt == 0 {
		return false, nil
	}
	if record.Expired(s.now(), s.ttl) {
		delete(s.records, key)
		return false, nil
	}
	if record.Challenge != challenge {
		return false, nil
	}

	if deleteOnSuccess {
		delete(s.records, key)
	}
	return true, nil
}

// Delete removes the record for the address.
func (s *MemoryStore) Delete(ctx context.Context, address string) error {
	key := core.NormalizeAddress(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

var _ ports.NonceStore = (*MemoryStore)(nil)
