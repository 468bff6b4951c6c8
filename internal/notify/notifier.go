package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
)

// Notification types dispatched by the social services.
const (
	TypeUserLike     = "USER_LIKE"
	TypeStoryLike    = "STORY_LIKE"
	TypeProfileShare = "PROFILE_SHARE"
	TypeReport       = "REPORT"
)

// Event is a notification to deliver.
type Event struct {
	RecipientID uint64
	SenderID    *uint64
	Type        string
	Message     string
}

// Notifier is the dispatch collaborator the services call fire-and-forget
// after their transactional write commits. Implementations must never let a
// failure propagate into the calling request.
type Notifier interface {
	Dispatch(ctx context.Context, e Event)
}

// DBNotifier writes Notification rows and keeps the recipient's cached
// unread counter in step. Failures are logged and swallowed.
type DBNotifier struct {
	repo   *repository.NotificationRepository
	cache  *cache.RedisCache
	logger *slog.Logger
}

func NewDBNotifier(repo *repository.NotificationRepository, redisCache *cache.RedisCache, logger *slog.Logger) *DBNotifier {
	return &DBNotifier{repo: repo, cache: redisCache, logger: logger}
}

func (n *DBNotifier) Dispatch(ctx context.Context, e Event) {
	err := n.repo.Create(ctx, &db.Notification{
		RecipientID: e.RecipientID,
		SenderID:    e.SenderID,
		Type:        e.Type,
		Message:     e.Message,
	})
	if err != nil {
		n.logger.Warn("notification dispatch failed",
			"recipient", e.RecipientID, "type", e.Type, "err", err)
		return
	}

	// Bump the cached unread counter only when a read already seeded it.
	// An absent counter is seeded with the right TTL on the next list.
	if _, err := n.cache.Increment(ctx, cache.KeyForUnreadNotifications(e.RecipientID), 1); err != nil && !errors.Is(err, cache.ErrMiss) {
		n.logger.Warn("unread notification counter bump failed",
			"recipient", e.RecipientID, "err", err)
	}
}

// NopNotifier drops every event. Useful in tests.
type NopNotifier struct{}

func (NopNotifier) Dispatch(ctx context.Context, e Event) {}
