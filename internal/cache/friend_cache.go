// Package cache keeps per-user accepted friend ids in Redis in front of the
// friendship table.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// loadedMarker is stored in every cached set so that a user with no friends
// is still a cache hit. User ids start at 1.
const loadedMarker = "0"

// FriendLoader is the source of truth the cache falls back to.
type FriendLoader interface {
	AcceptedFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

// FriendCache caches AcceptedFriendIDs results as Redis sets with a TTL.
// Redis failures are logged and served from the loader.
type FriendCache struct {
	client *redis.Client
	next   FriendLoader
	ttl    time.Duration
	logger *zap.Logger
}

// NewFriendCache wraps next with a Redis-backed cache.
func NewFriendCache(client *redis.Client, next FriendLoader, ttl time.Duration, logger *zap.Logger) *FriendCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FriendCache{client: client, next: next, ttl: ttl, logger: logger}
}

func friendKey(userID uint) string {
	return fmt.Sprintf("friends:accepted:%d", userID)
}

// genKey counts invalidations of userID. A load only writes back if the
// counter did not move while it ran.
func genKey(userID uint) string {
	return fmt.Sprintf("friends:gen:%d", userID)
}

// AcceptedFriendIDs returns the cached friend ids of userID, loading and
// caching them on a miss. A load that races an Invalidate is returned but
// not cached.
func (c *FriendCache) AcceptedFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	key := friendKey(userID)

	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.Warn("friend cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	} else if len(members) > 0 {
		if ids, ok := parseMembers(members); ok {
			return ids, nil
		}
		c.logger.Warn("friend cache entry corrupt, reloading", zap.String("key", key))
	}

	gen, genErr := c.generation(ctx, c.client, userID)

	ids, err := c.next.AcceptedFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		c.logger.Warn("friend cache generation read failed, skipping write", zap.Uint("user_id", userID), zap.Error(genErr))
		return ids, nil
	}
	if err := c.store(ctx, userID, gen, ids); err != nil {
		if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
			c.logger.Debug("friend cache write skipped, invalidated during load", zap.Uint("user_id", userID))
		} else {
			c.logger.Warn("friend cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return ids, nil
}

var errStale = errors.New("friend cache generation changed")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *FriendCache) generation(ctx context.Context, cmd getter, userID uint) (string, error) {
	gen, err := cmd.Get(ctx, genKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// store writes ids under WATCH on the generation key, so an Invalidate that
// lands between the check and the write aborts the transaction.
func (c *FriendCache) store(ctx context.Context, userID uint, gen string, ids []uint) error {
	key := friendKey(userID)
	values := make([]interface{}, 0, len(ids)+1)
	values = append(values, loadedMarker)
	for _, id := range ids {
		values = append(values, strconv.FormatUint(uint64(id), 10))
	}

	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SAdd(ctx, key, values...)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey(userID))
}

// Invalidate drops the cached friend sets of the given users and bumps their
// generation so in-flight loads do not write stale sets back.
func (c *FriendCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, id := range userIDs {
		pipe.Incr(ctx, genKey(id))
		pipe.Del(ctx, friendKey(id))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func parseMembers(members []string) ([]uint, bool) {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if m == loadedMarker {
			continue
		}
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}
