package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"eventboard/internal/logger"
)

// Throttle damps public submission-form spam with one SETNX TTL key per
// client. Redis being unreachable degrades to no throttling, never to a
// rejected request.
type Throttle struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewThrottle(client *redis.Client, ttl time.Duration, log *logger.Logger) *Throttle {
	return &Throttle{
		Client: client,
		TTL:    ttl,
		Logger: log,
	}
}

// Allow reports whether a submission from this client may proceed. The first
// call per client sets the key and passes; further calls inside the TTL are
// throttled.
func (t *Throttle) Allow(ctx context.Context, clientID string) bool {
	if t == nil || t.Client == nil || clientID == "" {
		return true
	}

	key := "submission_throttle:" + clientID
	ok, err := t.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), t.TTL).Result()
	if err != nil {
		t.Logger.Warn("REDIS", fmt.Sprintf("throttle check failed for %s, allowing submission: %v", clientID, err))
		return true
	}
	if !ok {
		t.Logger.LogSecurity("THROTTLE", fmt.Sprintf("submission from %s throttled", clientID))
	}
	return ok
}
