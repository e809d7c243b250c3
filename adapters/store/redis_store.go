package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/ports"
)

const noncePrefix = "chainauth:nonce:"

// consumeScript performs the compare-and-delete atomically on the server so
// that two concurrent verification attempts cannot both consume one record.
// KEYS[1] record key, ARGV[1] expected challenge, ARGV[2] now (unix seconds),
// ARGV[3] ttl seconds, ARGV[4] "1" to delete on success.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then return 0 end
local ok, rec = pcall(cjson.decode, v)
if not ok or type(rec) ~= "table" then return 0 end
if type(rec.challenge) ~= "string" or rec.challenge == "" then return 0 end
local issued = tonumber(rec.issued_at)
if not issued then return 0 end
if tonumber(ARGV[2]) - issued > tonumber(ARGV[3]) then return 0 end
if rec.challenge ~= ARGV[1] then return 0 end
if ARGV[4] == "1" then redis.call("DEL", KEYS[1]) end
return 1
`)

// RedisStore is a redis-backed NonceStore for multi-instance deployments.
// Records are JSON values with a server-side TTL; the expiry is re-checked on
// consume in case eviction has not fired yet.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a RedisStore with the given challenge TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = core.DefaultNonceTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func nonceKey(address string) string {
	return noncePrefix + core.NormalizeAddress(address)
}

// Issue generates a fresh challenge and overwrites any prior record for the
// address.
func (s *RedisStore) Issue(ctx context.Context, address string) (string, int64, error) {
	challenge, err := core.NewChallenge()
	if err != nil {
		return "", 0, core.ErrStoreOperationFailed
	}

	record := core.NonceRecord{
		Address:   core.NormalizeAddress(address),
		Challenge: challenge,
		IssuedAt:  s.now().Unix(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", 0, core.ErrStoreOperationFailed
	}

	if err := s.client.Set(ctx, nonceKey(address), payload, s.ttl).Err(); err != nil {
		return "", 0, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	return record.Challenge, record.IssuedAt, nil
}

// Peek returns the live record for the address. Malformed or expired values
// report as not found.
func (s *RedisStore) Peek(ctx context.Context, address string) (*core.NonceRecord, error) {
	payload, err := s.client.Get(ctx, nonceKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNonceNotFound
		}
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var record core.NonceRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, core.ErrNonceNotFound
	}
	if record.Challenge == "" || record.Expired(s.now(), s.ttl) {
		return nil, core.ErrNonceNotFound
	}

	return &record, nil
}

// Consume runs the server-side compare-and-delete. Any backend failure is
// reported so the caller can fail the verification closed.
func (s *RedisStore) Consume(ctx context.Context, address, challenge string, deleteOnSuccess bool) (bool, error) {
	del := "0"
	if deleteOnSuccess {
		del = "1"
	}

	res, err := consumeScript.Run(ctx, s.client,
		[]string{nonceKey(address)},
		challenge,
		s.now().Unix(),
		int64(s.ttl.Seconds()),
		del,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	return res == 1, nil
}

// Delete removes the record for the address.
func (s *RedisStore) Delete(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, nonceKey(address)).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

var _ ports.NonceStore = (*RedisStore)(nil)
