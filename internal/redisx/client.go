package redisx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// IdempotencyStore records which loyalty transaction an Idempotency-Key produced.
type IdempotencyStore struct {
	Client redis.Cmdable
	TTL    time.Duration
}

func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{Client: client, TTL: TTLIdempotency}
}

func (s *IdempotencyStore) key(merchantID int64, key string) string {
	return fmt.Sprintf(KeyIdemLoyaltyCreate, merchantID, key)
}

// Reserve claims the key. When it is already claimed, existingID is the
// recorded transaction id, or 0 while the first request is still running.
func (s *IdempotencyStore) Reserve(ctx context.Context, merchantID int64, key string) (reserved bool, existingID int64, err error) {
	k := s.key(merchantID, key)
	ok, err := s.Client.SetNX(ctx, k, pending, s.TTL).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}
	v, err := s.Client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = s.Client.SetNX(ctx, k, pending, s.TTL).Result()
		return ok, 0, err
	}
	if err != nil {
		return false, 0, err
	}
	if v == pending {
		return false, 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("idempotency value %q: %w", v, err)
	}
	return false, id, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, merchantID int64, key string, transactionID int64) error {
	return s.Client.Set(ctx, s.key(merchantID, key), strconv.FormatInt(transactionID, 10), s.TTL).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, merchantID int64, key string) error {
	return s.Client.Del(ctx, s.key(merchantID, key)).Err()
}

// Deduper marks processed event ids per service.
type Deduper struct {
	Client  redis.Cmdable
	Service string
	TTL     time.Duration
}

func NewDeduper(client redis.Cmdable, service string) *Deduper {
	return &Deduper{Client: client, Service: service, TTL: TTLDedup}
}

// Seen reports whether id was already marked.
func (d *Deduper) Seen(ctx context.Context, id string) (bool, error) {
	return Exists(ctx, d.Client, fmt.Sprintf(KeyDedup, d.Service, id))
}

func (d *Deduper) Mark(ctx context.Context, id string) error {
	return d.Client.Set(ctx, fmt.Sprintf(KeyDedup, d.Service, id), "1", d.TTL).Err()
}
