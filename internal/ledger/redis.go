package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisStore persists accumulators in one Redis hash per user, with
// "cardID:category" fields holding decimal strings. Amounts are kept as
// strings rather than HINCRBYFLOAT counters to avoid binary-float drift on
// currency values; the read-modify-write in Record is serialized by a
// process-local mutex, which is sufficient for the single-writer deployment
// this store targets.
type RedisStore struct {
	client *redis.Client
	prefix string
	mu     sync.Mutex
}

// NewRedisStore creates a RedisStore connected to addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "cardrec:ledger:",
	}
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + userID
}

// Snapshot reads the user's hash into an immutable Snapshot.
func (s *RedisStore) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: reading snapshot for %q: %w", userID, err)
	}
	snap := make(Snapshot, len(fields))
	for field, value := range fields {
		cardID, category, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("ledger: malformed field %q for %q", field, userID)
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("ledger: malformed amount %q for %q: %w", value, field, err)
		}
		snap[Key{CardID: cardID, Category: category}] = amount
	}
	return snap, nil
}

// Record adds amount to the user's accumulator for key.
func (s *RedisStore) Record(ctx context.Context, userID string, key Key, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("ledger: cannot record negative amount %s", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := decimal.Zero
	value, err := s.client.HGet(ctx, s.userKey(userID), key.String()).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		return fmt.Errorf("ledger: reading %q for %q: %w", key, userID, err)
	default:
		current, err = decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("ledger: malformed amount %q for %q: %w", value, key, err)
		}
	}

	updated := current.Add(amount)
	if err := s.client.HSet(ctx, s.userKey(userID), key.String(), updated.String()).Err(); err != nil {
		return fmt.Errorf("ledger: writing %q for %q: %w", key, userID, err)
	}
	return nil
}

// Reset deletes the user's hash.
func (s *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("ledger: resetting %q: %w", userID, err)
	}
	return nil
}
