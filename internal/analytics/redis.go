// Package analytics keeps best-effort delivery counters in Redis. Failures
// are logged and swallowed: counters never affect alert delivery.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mottavibrannon/runway/internal/domain"
)

// retention bounds how long a counter bucket survives without writes.
const retention = 30 * 24 * time.Hour

type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Record increments the hourly delivery counter for the event's outcome and
// a per-kind counter for the day.
func (s *RedisSink) Record(ctx context.Context, event domain.AlertEvent, outcome string) {
	hourKey := buildKey("deliveries", outcome, event.FiredAt, time.Hour)
	kindKey := buildKey("kinds", string(event.Kind), event.FiredAt, 24*time.Hour)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, hourKey)
	pipe.Expire(ctx, hourKey, retention)
	pipe.Incr(ctx, kindKey)
	pipe.Expire(ctx, kindKey, retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: redis pipeline: %v", err)
	}
}

func buildKey(category, label string, t time.Time, window time.Duration) string {
	return fmt.Sprintf("runway:%s:%s:%s", category, label, truncateToBucket(t, window))
}

func truncateToBucket(t time.Time, window time.Duration) string {
	t = t.UTC()
	switch window {
	case time.Hour:
		return t.Format("2006010215")
	case 24 * time.Hour:
		return t.Format("20060102")
	default:
		return t.Format("200601021504")
	}
}
