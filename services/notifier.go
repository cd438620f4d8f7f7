package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const seatMapChannel = "seatmap:updates"

// Notifier fans out seat-map changes to the rendering layer: the latest
// snapshot is cached in Redis for cheap page loads and a change event is
// published for anyone subscribed. When PubNub keys are configured the
// update is also pushed to browsers directly. Everything here is
// best-effort; a failed notification never fails the booking operation
// that triggered it.
type Notifier struct {
	redis    *redis.Client
	pubnub   *pubnub.PubNub
	cacheTTL time.Duration
}

func NewNotifier(redisClient *redis.Client, pn *pubnub.PubNub) *Notifier {
	return &Notifier{
		redis:    redisClient,
		pubnub:   pn,
		cacheTTL: time.Hour,
	}
}

// SeatMapChanged caches and announces the new seat map for a showtime.
func (n *Notifier) SeatMapChanged(ctx context.Context, showtimeID string, seats any) {
	if n == nil {
		return
	}

	raw, err := json.Marshal(seats)
	if err != nil {
		log.WithError(err).Warn("seat map marshal failed")
		return
	}

	if n.redis != nil {
		key := SeatMapKey(showtimeID)
		if err := n.redis.Set(ctx, key, raw, n.cacheTTL).Err(); err != nil {
			log.WithField("showtime", showtimeID).WithError(err).Warn("seat map cache write failed")
		}
		if err := n.redis.Publish(ctx, seatMapChannel, showtimeID).Err(); err != nil {
			log.WithField("showtime", showtimeID).WithError(err).Warn("seat map publish failed")
		}
	}

	if n.pubnub != nil {
		n.pubnub.Publish().
			Channel(fmt.Sprintf("showtime-%s", showtimeID)).
			Message(map[string]any{
				"type":        "seatmap_update",
				"showtime_id": showtimeID,
			}).
			Execute()
	}
}

// CachedSeatMap returns the last cached seat map JSON, if present.
func (n *Notifier) CachedSeatMap(ctx context.Context, showtimeID string) ([]byte, bool) {
	if n == nil || n.redis == nil {
		return nil, false
	}
	raw, err := n.redis.Get(ctx, SeatMapKey(showtimeID)).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

// SeatMapKey is the Redis key holding the cached seat map of a showtime.
func SeatMapKey(showtimeID string) string {
	return fmt.Sprintf("seatmap:%s", showtimeID)
}
