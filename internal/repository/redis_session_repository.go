package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"odyssey/config"
	"odyssey/internal/model"

	"github.com/redis/go-redis/v9"
)

const sessionIndexKey = "sessions:created"

// purgeIfOlder deletes KEYS[1] only while its stored timestamp is still below the cutoff,
// a record re-issued during the sweep carries a newer timestamp and survives.
// A missing key only drops its stale index entry.
var purgeIfOlder = redis.NewScript(`
local created = redis.call("GET", KEYS[1])
if not created then
	redis.call("ZREM", KEYS[2], ARGV[2])
	return 0
end
if tonumber(created) < tonumber(ARGV[1]) then
	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// RedisSessionRepository : one key per identity holding created_at in unix millis,
// plus a sorted set of identities scored by created_at for the purge sweep
type RedisSessionRepository struct {
	client *config.RedisClient
	now    func() time.Time
}

func NewRedisSessionRepository(rdb *config.RedisClient) *RedisSessionRepository {
	return &RedisSessionRepository{client: rdb, now: time.Now}
}

// Issue : writes the record and its index entry in one MULTI
func (r *RedisSessionRepository) Issue(ctx context.Context, identity string) (*model.RefreshRecord, error) {
	createdAt := r.now().UTC().Truncate(time.Millisecond)
	millis := createdAt.UnixMilli()

	_, err := r.client.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(identity), millis, 0)
		pipe.ZAdd(ctx, sessionIndexKey, redis.Z{Score: float64(millis), Member: identity})
		return nil
	})
	if err != nil {
		return nil, unavailable("issue refresh record", err)
	}

	return &model.RefreshRecord{Identity: identity, CreatedAt: createdAt}, nil
}

// IsValid : true when the record key exists
func (r *RedisSessionRepository) IsValid(ctx context.Context, identity string) (bool, error) {
	n, err := r.client.Client.Exists(ctx, r.key(identity)).Result()
	if err != nil {
		return false, unavailable("look up refresh record", err)
	}
	return n == 1, nil
}

// Revoke : drops the record and its index entry in one MULTI
func (r *RedisSessionRepository) Revoke(ctx context.Context, identity string) error {
	_, err := r.client.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(identity))
		pipe.ZRem(ctx, sessionIndexKey, identity)
		return nil
	})
	if err != nil {
		return unavailable("revoke refresh record", err)
	}
	return nil
}

// PurgeExpired : walks the index below the cutoff and deletes each candidate through purgeIfOlder
// Returns the number of removed records, also when a later candidate fails
func (r *RedisSessionRepository) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.now().UTC().Add(-maxAge).UnixMilli()

	candidates, err := r.client.Client.ZRangeByScore(ctx, sessionIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return 0, unavailable("list expired refresh records", err)
	}

	var removed int64
	for _, identity := range candidates {
		n, err := purgeIfOlder.Run(ctx, r.client.Client, []string{r.key(identity), sessionIndexKey}, cutoff, identity).Int64()
		if err != nil {
			return removed, unavailable("purge refresh record", err)
		}
		removed += n
	}

	return removed, nil
}

func (r *RedisSessionRepository) key(identity string) string {
	return fmt.Sprintf("session:%s", identity)
}
