package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Alerter fans an operational alert out to every manager. Alerts are
// throttled per key through Redis so a flapping sync loop cannot flood the
// managers' chats. With no Redis client every alert goes through.
type Alerter struct {
	notifier   Notifier
	redis      *redis.Client
	managerIDs []int64
	throttle   time.Duration
	logger     *zap.Logger
}

// NewAlerter constructs the alerter. redisClient may be nil.
func NewAlerter(notifier Notifier, redisClient *redis.Client, managerIDs []int64, throttle time.Duration, logger *zap.Logger) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if throttle <= 0 {
		throttle = 10 * time.Minute
	}
	return &Alerter{
		notifier:   notifier,
		redis:      redisClient,
		managerIDs: managerIDs,
		throttle:   throttle,
		logger:     logger,
	}
}

// Alert sends text to every configured manager unless the same key fired
// within the throttle window. Per-recipient failures are logged and skipped;
// one unreachable manager never blocks the rest.
func (a *Alerter) Alert(ctx context.Context, key, text string) {
	if len(a.managerIDs) == 0 {
		return
	}
	if a.redis != nil {
		ok, err := a.redis.SetNX(ctx, "alert:"+key, 1, a.throttle).Result()
		if err != nil {
			a.logger.Warn("alert throttle check failed", zap.String("key", key), zap.Error(err))
		} else if !ok {
			return
		}
	}
	for _, managerID := range a.managerIDs {
		if err := a.notifier.Send(ctx, managerID, text); err != nil {
			a.logger.Error("manager alert delivery failed",
				zap.Int64("manager_id", managerID), zap.String("key", key), zap.Error(err))
		}
	}
}
