package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"LeoStore/internal/catalog"
	"LeoStore/internal/pricing"
	"LeoStore/pkg/kit"
)

// cartTTL matches the session cookie lifetime: an abandoned cart outlives
// its cookie by nothing.
const cartTTL = 30 * 24 * time.Hour

// RedisStore keeps one hash per session (cart:{sid}, field = product id,
// value = quantity). Serialization still happens on the in-process KeyMutex,
// so this store assumes a single service instance in front of Redis; a
// multi-instance deployment would need WATCH/MULTI instead and is out of
// scope here.
type RedisStore struct {
	catalog catalog.Store
	locks   *kit.KeyMutex
	rdb     *redis.Client
}

func NewRedisStore(cat catalog.Store, locks *kit.KeyMutex, rdb *redis.Client) *RedisStore {
	return &RedisStore{catalog: cat, locks: locks, rdb: rdb}
}

func cartKey(sid string) string { return "cart:" + sid }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) lines(ctx context.Context, sid string) (map[string]int, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(sid)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(raw))
	for pid, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil || qty < 1 {
			continue
		}
		out[pid] = qty
	}
	return out, nil
}

func (s *RedisStore) details(ctx context.Context, sid string) (pricing.Details, error) {
	lines, err := s.lines(ctx, sid)
	if err != nil {
		return pricing.Details{}, err
	}
	return derive(ctx, s.catalog, lines)
}

func (s *RedisStore) setQty(ctx context.Context, sid, productID string, qty int) error {
	key := cartKey(sid)
	if err := s.rdb.HSet(ctx, key, productID, qty).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, cartTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, sid string) (pricing.Details, error) {
	return s.details(ctx, sid)
}

func (s *RedisStore) Add(ctx context.Context, sid, productID string, qty int) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	// Same unknown-product policy as the memory store: no-op, current cart.
	if _, ok, err := s.catalog.Get(ctx, productID); err != nil {
		return pricing.Details{}, err
	} else if !ok {
		return s.details(ctx, sid)
	}

	existing, err := s.rdb.HGet(ctx, cartKey(sid), productID).Int()
	if err != nil && err != redis.Nil {
		return pricing.Details{}, err
	}

	if err := s.setQty(ctx, sid, productID, nextAddQty(existing, qty)); err != nil {
		return pricing.Details{}, err
	}
	return s.details(ctx, sid)
}

func (s *RedisStore) Update(ctx context.Context, sid, productID string, qty int) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	if qty <= 0 {
		if err := s.rdb.HDel(ctx, cartKey(sid), productID).Err(); err != nil {
			return pricing.Details{}, err
		}
		return s.details(ctx, sid)
	}

	if err := s.setQty(ctx, sid, productID, qty); err != nil {
		return pricing.Details{}, err
	}
	return s.details(ctx, sid)
}

func (s *RedisStore) Remove(ctx context.Context, sid, productID string) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	if err := s.rdb.HDel(ctx, cartKey(sid), productID).Err(); err != nil {
		return pricing.Details{}, err
	}
	return s.details(ctx, sid)
}

func (s *RedisStore) Clear(ctx context.Context, sid string) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	if err := s.rdb.Del(ctx, cartKey(sid)).Err(); err != nil {
		return pricing.Details{}, err
	}
	return derive(ctx, s.catalog, nil)
}

func (s *RedisStore) Checkout(ctx context.Context, sid string, commit func(pricing.Details) error) error {
	unlock := s.locks.Lock(sid)
	defer unlock()

	details, err := s.details(ctx, sid)
	if err != nil {
		return err
	}
	if err := commit(details); err != nil {
		return err
	}

	return s.rdb.Del(ctx, cartKey(sid)).Err()
}
