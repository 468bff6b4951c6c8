package story

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/utils/pagination"
)

// Stories expire this long after creation.
const lifetime = 24 * time.Hour

const globalStoryLimit = 20

// View holds a story plus the live view count. LiveViewCount prefers the
// Redis counter and falls back to the denormalized DB snapshot.
type View struct {
	Story         db.Story `json:"story"`
	LiveViewCount uint64   `json:"live_view_count"`
}

// Service implements the ephemeral story operations: create, list, delete,
// like, and the Redis-backed view tracking. The viewer set and view counter
// for a story live in Redis under the story's TTL; the DB view_count column
// is a periodic snapshot, not the source of truth while the story is active.
type Service struct {
	appCtx  *app.AppContext
	stories *repository.StoryRepository
	users   *repository.UserRepository
}

// NewService creates the story service on top of the shared AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		stories: repository.NewStoryRepository(appCtx.DB),
		users:   repository.NewUserRepository(appCtx.DB),
	}
}

// Create posts a new story for the user. At least one of text or media URL
// is required.
func (s *Service) Create(ctx context.Context, userID uint64, text, mediaURL string) (*db.Story, error) {
	s.appCtx.Logger.Debug("create story", "user", userID)

	text = strings.TrimSpace(text)
	mediaURL = strings.TrimSpace(mediaURL)
	if text == "" && mediaURL == "" {
		return nil, errs.Validation("story needs text or media")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, errs.Map(err)
	}

	now := time.Now().UTC()
	story := &db.Story{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		MediaURL:  mediaURL,
		ExpiresAt: now.Add(lifetime),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, errs.Map(err)
	}
	return story, nil
}

// ListMine returns the caller's active stories with live view counts.
func (s *Service) ListMine(ctx context.Context, userID uint64) ([]View, error) {
	stories, err := s.stories.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, errs.Map(err)
	}
	return s.withLiveCounts(ctx, stories), nil
}

// ListGlobal returns everyone else's active stories, newest first.
func (s *Service) ListGlobal(ctx context.Context, viewerID uint64) ([]View, error) {
	stories, err := s.stories.ListGlobal(ctx, viewerID, globalStoryLimit)
	if err != nil {
		return nil, errs.Map(err)
	}
	return s.withLiveCounts(ctx, stories), nil
}

func (s *Service) withLiveCounts(ctx context.Context, stories []db.Story) []View {
	out := make([]View, 0, len(stories))
	for _, st := range stories {
		v := View{Story: st, LiveViewCount: st.ViewCount}
		if n, err := s.appCtx.RedisCache.GetInt(ctx, cache.KeyForStoryViewCount(st.ID)); err == nil {
			v.LiveViewCount = uint64(n)
		}
		out = append(out, v)
	}
	return out
}

// Delete soft-deletes the caller's story. Deleting someone else's story or
// a missing one is not found. Ownership is part of the lookup so the API
// does not reveal which of the two it was.
func (s *Service) Delete(ctx context.Context, storyID string, userID uint64) error {
	s.appCtx.Logger.Debug("delete story", "story", storyID, "user", userID)

	if err := s.stories.SoftDelete(ctx, storyID, userID); err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return errs.NotFound("story not found")
		}
		return errs.Map(err)
	}
	return nil
}

// Like records viewerID liking a story. Liking your own story or liking
// twice is a conflict. The owner is notified fire-and-forget.
func (s *Service) Like(ctx context.Context, storyID string, viewerID uint64) error {
	s.appCtx.Logger.Debug("like story", "story", storyID, "viewer", viewerID)

	story, err := s.stories.GetActive(ctx, storyID)
	if err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return errs.NotFound("story not found")
		}
		return errs.Map(err)
	}
	if story.UserID == viewerID {
		return errs.Conflict("you cannot like your own story")
	}

	if err := s.stories.CreateLike(ctx, storyID, viewerID); err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindConflict {
			return errs.Conflict("you have already liked this story")
		}
		return errs.Map(err)
	}

	sender := viewerID
	s.appCtx.Notifier.Dispatch(ctx, notify.Event{
		RecipientID: story.UserID,
		SenderID:    &sender,
		Type:        notify.TypeStoryLike,
		Message:     "Someone liked your story",
	})
	return nil
}

// Unlike removes a story like. Removing a like that does not exist is not
// found.
func (s *Service) Unlike(ctx context.Context, storyID string, viewerID uint64) error {
	if err := s.stories.DeleteLike(ctx, storyID, viewerID); err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return errs.NotFound("you have not liked this story")
		}
		return errs.Map(err)
	}
	return nil
}

// RecordView marks viewerID as having seen the story. Views are deduplicated
// per viewer through a Redis set keyed by story; only a first view bumps the
// counter. Owners viewing their own story are not counted. The counter is
// seeded at 1 when absent so its TTL tracks the story's remaining lifetime.
//
// Redis being down degrades to not counting the view; the read itself never
// fails for that.
func (s *Service) RecordView(ctx context.Context, storyID string, viewerID uint64) (*db.Story, error) {
	story, err := s.stories.GetActive(ctx, storyID)
	if err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return nil, errs.NotFound("story not found")
		}
		return nil, errs.Map(err)
	}
	if story.UserID == viewerID {
		return story, nil
	}

	ttl := s.appCtx.Cfg.CacheTTL.StoryViews
	added, err := s.appCtx.RedisCache.AddToSet(ctx, cache.KeyForStoryViewers(storyID), viewerID, ttl)
	if err != nil {
		s.appCtx.Logger.Warn("story view tracking failed", "story", storyID, "err", err)
		return story, nil
	}
	if !added {
		return story, nil
	}

	countKey := cache.KeyForStoryViewCount(storyID)
	if _, err := s.appCtx.RedisCache.Increment(ctx, countKey, 1); err != nil {
		if err == cache.ErrMiss {
			err = s.appCtx.RedisCache.Set(ctx, countKey, 1, ttl)
		}
		if err != nil {
			s.appCtx.Logger.Warn("story view counter failed", "story", storyID, "err", err)
		}
	}
	return story, nil
}

// Viewers returns one page of the ids that viewed the story. Only the owner
// may ask.
func (s *Service) Viewers(ctx context.Context, storyID string, ownerID uint64, page, size int) ([]string, error) {
	story, err := s.stories.GetActive(ctx, storyID)
	if err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return nil, errs.NotFound("story not found")
		}
		return nil, errs.Map(err)
	}
	if story.UserID != ownerID {
		return nil, errs.Permission("only the story owner can see viewers")
	}

	members, err := s.appCtx.RedisCache.SetMembers(ctx, cache.KeyForStoryViewers(storyID))
	if err != nil {
		return nil, errs.Transient("viewer list unavailable", err)
	}
	// SMembers order is unspecified; sort so pagination is deterministic.
	sort.Strings(members)

	p := pagination.Normalize(page, size,
		s.appCtx.Cfg.Pagination.DefaultPageSize, s.appCtx.Cfg.Pagination.MaxPageSize)
	return pagination.Slice(members, p), nil
}

// SnapshotViewCount copies the live Redis counter into the DB row, used when
// a story expires and its Redis keys are about to lapse.
func (s *Service) SnapshotViewCount(ctx context.Context, storyID string) error {
	n, err := s.appCtx.RedisCache.GetInt(ctx, cache.KeyForStoryViewCount(storyID))
	if err != nil {
		if err == cache.ErrMiss {
			return nil
		}
		return errs.Transient("view counter unavailable", err)
	}

	story, err := s.stories.GetActive(ctx, storyID)
	if err != nil {
		return errs.Map(err)
	}
	delta := n - int64(story.ViewCount)
	if delta <= 0 {
		return nil
	}
	return errs.Map(s.stories.BumpViewCount(ctx, storyID, delta))
}
