package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/TechbyAbrar/match-making-app/internal/cache"
)

// Store is the storage-engine surface the tracker needs. Both operations are
// idempotent conditional updates, so tracker writes and reaper sweeps may
// interleave freely.
type Store interface {
	MarkOnline(ctx context.Context, userID uint64, now time.Time) error
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// Marker is the throttle-marker surface, backed by the cache's SETNX.
type Marker interface {
	SetMarkerNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Tracker maintains each user's online flag and last-activity timestamp.
//
// State machine: {ONLINE, OFFLINE}. OFFLINE→ONLINE only via a throttled
// Touch; ONLINE→OFFLINE only via the periodic Reap.
type Tracker struct {
	store  Store
	marker Marker
	logger *slog.Logger

	touchThrottle time.Duration
	offlineCutoff time.Duration
	reapInterval  time.Duration
}

func NewTracker(
	store Store,
	marker Marker,
	logger *slog.Logger,
	touchThrottle, offlineCutoff, reapInterval time.Duration,
) *Tracker {
	return &Tracker{
		store:         store,
		marker:        marker,
		logger:        logger,
		touchThrottle: touchThrottle,
		offlineCutoff: offlineCutoff,
		reapInterval:  reapInterval,
	}
}

// Touch records activity for a user.
//
// Behavior:
// 1. A SETNX marker with the throttle window's TTL gates the update, so at
//    most one storage write happens per user per window.
// 2. When the marker is unavailable the write is performed anyway; presence
//    must never fail a request.
func (t *Tracker) Touch(ctx context.Context, userID uint64) {
	if userID == 0 {
		return // unauthenticated
	}

	created, err := t.marker.SetMarkerNX(ctx, cache.KeyForTouchMarker(userID), t.touchThrottle)
	if err != nil {
		t.logger.Warn("presence marker unavailable, writing anyway", "user_id", userID, "err", err)
	} else if !created {
		return // inside the throttle window
	}

	if err := t.store.MarkOnline(ctx, userID, time.Now().UTC()); err != nil {
		t.logger.Warn("presence touch failed", "user_id", userID, "err", err)
	}
}

// Reap flips users whose last activity predates the offline cutoff to
// offline. A single conditional bulk update: idempotent and safe to run
// concurrently with touches.
func (t *Tracker) Reap(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-t.offlineCutoff)

	updated, err := t.store.MarkStaleOffline(ctx, cutoff)
	if err != nil {
		t.logger.Error("presence reap failed", "err", err)
		return
	}
	if updated > 0 {
		t.logger.Info("marked stale users offline", "count", updated)
	}
}

// Run reaps on a fixed schedule until ctx is canceled. The interval must stay
// below the offline cutoff.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Reap(ctx)
		}
	}
}
