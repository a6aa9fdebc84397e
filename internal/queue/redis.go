package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/internal-ops/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ErrInFlight means another attempt holds the processing lock of a job. It is
// transient: the message is requeued until the lock expires or the job is
// done.
var ErrInFlight = errors.New("job is already being processed")

// Deduper remembers which jobs completed. A job holds a short processing lock
// while it runs and gets a done marker only after it succeeds, so a crashed or
// cancelled attempt never hides the job from redelivery.
type Deduper struct {
	rdb     *redis.Client
	doneTTL time.Duration
	lockTTL time.Duration
	logger  *zap.Logger
}

func NewDeduper(rdb *redis.Client, doneTTL, lockTTL time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, doneTTL: doneTTL, lockTTL: lockTTL, logger: logger}
}

func dedupKey(scope, id string) string {
	return fmt.Sprintf("dedup:%s:%s", scope, id)
}

func lockKey(scope, id string) string {
	return fmt.Sprintf("lock:%s:%s", scope, id)
}

// Acquire takes the processing lock of id. It returns false when id already
// completed and ErrInFlight when another attempt holds the lock. When Redis is
// unreachable it allows processing; the database claim keeps a duplicate run
// from billing anything twice.
func (d *Deduper) Acquire(ctx context.Context, scope, id string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, lockKey(scope, id), 1, d.lockTTL).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("scope", scope),
			zap.String("id", id),
			zap.Error(err),
		)
		return true, nil
	}
	if !ok {
		return false, fmt.Errorf("%s %s: %w", scope, id, ErrInFlight)
	}

	// Checked after locking: Complete writes the marker before unlocking.
	done, err := d.rdb.Exists(ctx, dedupKey(scope, id)).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing", zap.String("id", id), zap.Error(err))
		return true, nil
	}
	if done > 0 {
		d.Release(ctx, scope, id)
		d.logger.Info("Skipped duplicated job",
			zap.String("scope", scope),
			zap.String("id", id),
		)
		return false, nil
	}
	return true, nil
}

// Complete marks id done and drops its lock. It runs even when ctx is
// cancelled.
func (d *Deduper) Complete(ctx context.Context, scope, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := d.rdb.Set(ctx, dedupKey(scope, id), 1, d.doneTTL).Err(); err != nil {
		d.logger.Warn("Failed to mark job done", zap.String("id", id), zap.Error(err))
	}
	d.Release(ctx, scope, id)
}

// Release drops the lock of id so a failed attempt can be retried. It runs
// even when ctx is cancelled.
func (d *Deduper) Release(ctx context.Context, scope, id string) {
	if err := d.rdb.Del(context.WithoutCancel(ctx), lockKey(scope, id)).Err(); err != nil {
		d.logger.Warn("Failed to release job lock", zap.String("id", id), zap.Error(err))
	}
}

type RetryCounter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRetryCounter(rdb *redis.Client, ttl time.Duration) *RetryCounter {
	return &RetryCounter{rdb: rdb, ttl: ttl}
}

func (r *RetryCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.rdb.Expire(ctx, key, r.ttl)
	}
	return count, nil
}

func (r *RetryCounter) Get(ctx context.Context, key string) (int64, error) {
	count, err := r.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (r *RetryCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func FormatRetryKey(routingKey, messageID string) string {
	return fmt.Sprintf("retry:%s:%s", routingKey, messageID)
}
