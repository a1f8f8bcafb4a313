package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindow keeps one sorted set of request timestamps per key so
// several server instances share a budget. Like SlidingWindow it keeps at
// most limit members per key; a rejected request replaces the oldest one.
type RedisSlidingWindow struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisSlidingWindow(rdb *redis.Client, limit int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		rdb:    rdb,
		prefix: "ratelimit:",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (rw *RedisSlidingWindow) Allow(ctx context.Context, key string) (Decision, error) {
	now := rw.now()
	key = rw.prefix + key
	cutoff := now.Add(-rw.window).UnixMicro()

	var before *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := rw.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		before = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		pipe.ZRemRangeByRank(ctx, key, 0, -int64(rw.limit)-1)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, rw.window)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	count := int(before.Val())
	d := Decision{
		Allowed: count < rw.limit,
		Limit:   rw.limit,
		Reset:   rw.window,
	}
	if d.Allowed {
		d.Remaining = rw.limit - count - 1
	}
	if z := oldest.Val(); len(z) > 0 {
		first := time.UnixMicro(int64(z[0].Score))
		d.Reset = first.Add(rw.window).Sub(now)
	}
	return d, nil
}
