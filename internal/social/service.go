package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/geo"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/utils/pagination"
)

// Duplicate reports with the same reason inside this window are rejected.
const reportDedupWindow = time.Hour

const searchResultLimit = 50

// UserSummary is the caller-facing projection of a user row. It is what gets
// cached, so it must stay JSON round-trippable.
type UserSummary struct {
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Gender    string    `json:"gender"`
	IsOnline  bool      `json:"is_online"`
	CreatedAt time.Time `json:"created_at"`
}

// WhoLikedItem is a liker plus the distance from the viewer, when both sides
// have a location.
type WhoLikedItem struct {
	UserSummary
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

// WhoLikedResult is one page of likers with the pre-pagination total.
type WhoLikedResult struct {
	Items    []WhoLikedItem `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Service implements the social graph operations: likes, blocks, reports,
// who-liked-me, search and filter. Reads that tolerate short staleness go
// through Redis; a cache failure is never allowed to fail the request.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	likes   *repository.LikeRepository
	blocks  *repository.BlockRepository
	shares  *repository.ShareRepository
	reports *repository.ReportRepository
}

// NewService creates the social graph service on top of the shared AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		likes:   repository.NewLikeRepository(appCtx.DB),
		blocks:  repository.NewBlockRepository(appCtx.DB),
		shares:  repository.NewShareRepository(appCtx.DB),
		reports: repository.NewReportRepository(appCtx.DB),
	}
}

func toSummary(u db.User) UserSummary {
	return UserSummary{
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Gender:    u.Gender,
		IsOnline:  u.IsOnline,
		CreatedAt: u.CreatedAt,
	}
}

func toSummaries(users []db.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, toSummary(u))
	}
	return out
}

// Like records fromID liking toID. Self-likes and duplicates are conflicts;
// a missing target is not found. The recipient is notified after the write
// commits, fire-and-forget.
func (s *Service) Like(ctx context.Context, fromID, toID uint64) (*db.Like, error) {
	s.appCtx.Logger.Debug("like", "from", fromID, "to", toID)

	if fromID == toID {
		return nil, errs.Conflict("you cannot like yourself")
	}
	target, err := s.users.GetByID(ctx, toID)
	if err != nil {
		return nil, errs.Map(err)
	}

	like, err := s.likes.Create(ctx, fromID, toID)
	if err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindConflict {
			return nil, errs.Conflict("you have already liked this user")
		}
		return nil, errs.Map(err)
	}

	sender := fromID
	s.appCtx.Notifier.Dispatch(ctx, notify.Event{
		RecipientID: target.ID,
		SenderID:    &sender,
		Type:        notify.TypeUserLike,
		Message:     "Someone liked your profile",
	})
	return like, nil
}

// Unlike removes a like edge. Unliking an edge that does not exist is an
// error, so unlike is not idempotent: of two racing unlikes, one loses.
func (s *Service) Unlike(ctx context.Context, fromID, toID uint64) error {
	s.appCtx.Logger.Debug("unlike", "from", fromID, "to", toID)

	if err := s.likes.Delete(ctx, fromID, toID); err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return errs.NotFound("you have not liked this user")
		}
		return errs.Map(err)
	}
	return nil
}

// WhoLiked returns one page of users who liked userID, ranked by proximity.
//
// Behavior:
// 1. A nil radiusKM falls back to the viewer's stored preferred radius,
//    which may itself be nil, meaning unbounded.
// 2. An explicit zero or negative radius yields an empty page.
// 3. Users blocked in either direction never appear.
// 4. Results are cached briefly and the total is computed before pagination.
func (s *Service) WhoLiked(ctx context.Context, userID uint64, page, size int, radiusKM *float64) (*WhoLikedResult, error) {
	p := pagination.Normalize(page, size,
		s.appCtx.Cfg.Pagination.DefaultPageSize, s.appCtx.Cfg.Pagination.MaxPageSize)

	key := cache.KeyForWhoLiked(userID, p.Number, p.Size, radiusKM)
	var cached WhoLikedResult
	if err := s.appCtx.RedisCache.GetJSON(ctx, key, &cached); err == nil {
		s.appCtx.Logger.Debug("who_liked cache hit", "key", key)
		return &cached, nil
	}

	viewer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.Map(err)
	}

	hidden, err := s.blocks.HiddenIDs(ctx, userID)
	if err != nil {
		return nil, errs.Map(err)
	}
	likers, err := s.likes.GetLikers(ctx, userID, hidden)
	if err != nil {
		return nil, errs.Map(err)
	}

	radius := radiusKM
	if radius == nil {
		radius = viewer.Distance
	}
	ranked := geo.Rank(viewer.Latitude, viewer.Longitude, likers, radius)

	result := &WhoLikedResult{
		Items:    make([]WhoLikedItem, 0, p.Size),
		Total:    len(ranked),
		Page:     p.Number,
		PageSize: p.Size,
	}
	for _, r := range pagination.Slice(ranked, p) {
		result.Items = append(result.Items, WhoLikedItem{
			UserSummary: toSummary(r.User),
			DistanceKM:  r.DistanceKM,
		})
	}

	if err := s.appCtx.RedisCache.SetJSON(ctx, key, result, s.appCtx.Cfg.CacheTTL.WhoLiked); err != nil {
		s.appCtx.Logger.Warn("who_liked cache set failed", "key", key, "err", err)
	}
	return result, nil
}

// Share records userID sharing targetID's profile. Sharing is idempotent;
// created reports whether this call inserted the share. The shared user is
// notified on the first share only.
//
// Sharing your own profile is a conflict. A target without a username cannot
// be shared, there is nothing to link to.
func (s *Service) Share(ctx context.Context, userID, targetID uint64) (bool, error) {
	s.appCtx.Logger.Debug("share", "sharer", userID, "target", targetID)

	if userID == targetID {
		return false, errs.Conflict("you cannot share your own profile")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return false, errs.Map(err)
	}
	if target.Username == "" {
		return false, errs.Validation("target user has no username to share")
	}

	created, err := s.shares.GetOrCreate(ctx, userID, targetID)
	if err != nil {
		return false, errs.Map(err)
	}
	if created {
		sender := userID
		s.appCtx.Notifier.Dispatch(ctx, notify.Event{
			RecipientID: target.ID,
			SenderID:    &sender,
			Type:        notify.TypeProfileShare,
			Message:     "Someone shared your profile",
		})
	}
	return created, nil
}

// Block hides blockedID from userID and vice versa. Blocking is idempotent;
// created reports whether this call inserted the block. The blocker's cached
// block list is invalidated either way.
func (s *Service) Block(ctx context.Context, userID, blockedID uint64) (bool, error) {
	s.appCtx.Logger.Debug("block", "blocker", userID, "blocked", blockedID)

	if userID == blockedID {
		return false, errs.Conflict("you cannot block yourself")
	}
	if _, err := s.users.GetByID(ctx, blockedID); err != nil {
		return false, errs.Map(err)
	}

	created, err := s.blocks.GetOrCreate(ctx, userID, blockedID)
	if err != nil {
		return false, errs.Map(err)
	}
	s.invalidateBlockList(ctx, userID)
	return created, nil
}

// Unblock removes a block. Unblocking a pair that is not blocked is not found.
func (s *Service) Unblock(ctx context.Context, userID, blockedID uint64) error {
	s.appCtx.Logger.Debug("unblock", "blocker", userID, "blocked", blockedID)

	if err := s.blocks.Delete(ctx, userID, blockedID); err != nil {
		if errs.KindOf(errs.Map(err)) == errs.KindNotFound {
			return errs.NotFound("user is not blocked")
		}
		return errs.Map(err)
	}
	s.invalidateBlockList(ctx, userID)
	return nil
}

func (s *Service) invalidateBlockList(ctx context.Context, userID uint64) {
	key := cache.KeyForBlockList(userID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("block list invalidation failed", "key", key, "err", err)
	}
}

// ListBlocked returns the users userID has blocked, newest block first,
// cached briefly.
func (s *Service) ListBlocked(ctx context.Context, userID uint64) ([]UserSummary, error) {
	key := cache.KeyForBlockList(userID)
	var cached []UserSummary
	if err := s.appCtx.RedisCache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	users, err := s.blocks.ListBlocked(ctx, userID)
	if err != nil {
		return nil, errs.Map(err)
	}
	out := toSummaries(users)

	if err := s.appCtx.RedisCache.SetJSON(ctx, key, out, s.appCtx.Cfg.CacheTTL.BlockList); err != nil {
		s.appCtx.Logger.Warn("block list cache set failed", "key", key, "err", err)
	}
	return out, nil
}

// Search runs a case-insensitive substring match across username, full name
// and email, capped at 50 rows, cached briefly per query string.
func (s *Service) Search(ctx context.Context, query string) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.Validation("search query must not be empty")
	}

	key := cache.KeyForSearch(strings.ToLower(query))
	var cached []UserSummary
	if err := s.appCtx.RedisCache.GetJSON(ctx, key, &cached); err == nil {
		s.appCtx.Logger.Debug("search cache hit", "key", key)
		return cached, nil
	}

	users, err := s.users.Search(ctx, query, searchResultLimit)
	if err != nil {
		return nil, errs.Map(err)
	}
	out := toSummaries(users)

	if err := s.appCtx.RedisCache.SetJSON(ctx, key, out, s.appCtx.Cfg.CacheTTL.Search); err != nil {
		s.appCtx.Logger.Warn("search cache set failed", "key", key, "err", err)
	}
	return out, nil
}

// Filter applies the optional gender/age/distance predicates, cached briefly
// per parameter tuple.
func (s *Service) Filter(ctx context.Context, p repository.FilterParams) ([]UserSummary, error) {
	if p.MinAge != nil && p.MaxAge != nil && *p.MinAge > *p.MaxAge {
		return nil, errs.Validation("min_age must not exceed max_age")
	}

	key := filterKey(p)
	var cached []UserSummary
	if err := s.appCtx.RedisCache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	users, err := s.users.Filter(ctx, p, searchResultLimit)
	if err != nil {
		return nil, errs.Map(err)
	}
	out := toSummaries(users)

	if err := s.appCtx.RedisCache.SetJSON(ctx, key, out, s.appCtx.Cfg.CacheTTL.Filter); err != nil {
		s.appCtx.Logger.Warn("filter cache set failed", "key", key, "err", err)
	}
	return out, nil
}

// filterKey canonicalizes the parameter tuple; absent predicates get fixed
// sentinels so the key stays deterministic.
func filterKey(p repository.FilterParams) string {
	gender := "any"
	if p.Gender != nil {
		gender = strings.ToLower(*p.Gender)
	}
	minAge, maxAge := -1, -1
	if p.MinAge != nil {
		minAge = *p.MinAge
	}
	if p.MaxAge != nil {
		maxAge = *p.MaxAge
	}
	maxDist := -1.0
	if p.MaxDistanceKM != nil {
		maxDist = *p.MaxDistanceKM
	}
	return cache.KeyForFilter(gender, minAge, maxAge, maxDist)
}

// Report files a complaint against a profile. Filing the same reason against
// the same user within an hour is rejected as a duplicate. Staff users are
// notified fire-and-forget.
func (s *Service) Report(ctx context.Context, reporterID, reportedID uint64, reason, comment string) (*db.Report, error) {
	s.appCtx.Logger.Debug("report", "reporter", reporterID, "reported", reportedID, "reason", reason)

	if reporterID == reportedID {
		return nil, errs.Conflict("you cannot report yourself")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, errs.Validation("report reason must not be empty")
	}
	reported, err := s.users.GetByID(ctx, reportedID)
	if err != nil {
		return nil, errs.Map(err)
	}

	since := time.Now().UTC().Add(-reportDedupWindow)
	dup, err := s.reports.RecentExists(ctx, reporterID, reportedID, reason, since)
	if err != nil {
		return nil, errs.Map(err)
	}
	if dup {
		return nil, errs.Conflict("you have already reported this user for this reason recently")
	}

	report := &db.Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Comment:    comment,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, errs.Map(err)
	}

	s.notifyStaff(ctx, reporterID, reported)
	return report, nil
}

// notifyStaff fans a report out to every staff user. Lookup failures are
// logged and swallowed; the report itself is already committed.
func (s *Service) notifyStaff(ctx context.Context, reporterID uint64, reported *db.User) {
	staff, err := s.users.StaffIDs(ctx)
	if err != nil {
		s.appCtx.Logger.Warn("staff lookup for report notification failed", "err", err)
		return
	}
	sender := reporterID
	msg := fmt.Sprintf("User %s was reported", reported.Username)
	for _, id := range staff {
		s.appCtx.Notifier.Dispatch(ctx, notify.Event{
			RecipientID: id,
			SenderID:    &sender,
			Type:        notify.TypeReport,
			Message:     msg,
		})
	}
}
