package feed

import (
	"context"
	"time"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/geo"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/utils/pagination"
)

// Item is one profile card in the global feed.
type Item struct {
	UserID      uint64    `json:"user_id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Gender      string    `json:"gender"`
	IsOnline    bool      `json:"is_online"`
	PopImageURL string    `json:"pop_image_url,omitempty"`
	DistanceKM  *float64  `json:"distance_km,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is one page of the feed.
type Result struct {
	Items    []Item `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Assembler builds the global discovery feed: every active profile except the
// viewer and anyone blocked either way, newest first, annotated with live
// presence, the latest pop image and the distance from the viewer when both
// sides have a location.
type Assembler struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	blocks *repository.BlockRepository
}

// NewAssembler creates the feed assembler on top of the shared AppContext.
func NewAssembler(appCtx *app.AppContext) *Assembler {
	return &Assembler{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		blocks: repository.NewBlockRepository(appCtx.DB),
	}
}

// GlobalFeed returns one page of the feed for the viewer. Page boundaries
// are offset-based: deterministic on identical data, not stable under
// concurrent profile writes.
func (a *Assembler) GlobalFeed(ctx context.Context, viewerID uint64, page, size int) (*Result, error) {
	p := pagination.Normalize(page, size,
		a.appCtx.Cfg.Pagination.DefaultPageSize, a.appCtx.Cfg.Pagination.MaxPageSize)

	a.appCtx.Logger.Debug("global feed", "viewer", viewerID, "page", p.Number, "size", p.Size)

	viewer, err := a.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, errs.Map(err)
	}
	hidden, err := a.blocks.HiddenIDs(ctx, viewerID)
	if err != nil {
		return nil, errs.Map(err)
	}

	users, err := a.users.ListActive(ctx, viewerID, hidden, p.Size, p.Offset())
	if err != nil {
		return nil, errs.Map(err)
	}

	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	popImages, err := a.users.LatestPopImages(ctx, ids)
	if err != nil {
		return nil, errs.Map(err)
	}

	result := &Result{
		Items:    make([]Item, 0, len(users)),
		Page:     p.Number,
		PageSize: p.Size,
	}
	for _, u := range users {
		item := Item{
			UserID:      u.ID,
			Username:    u.Username,
			FullName:    u.FullName,
			Gender:      u.Gender,
			IsOnline:    u.IsOnline,
			PopImageURL: popImages[u.ID],
			CreatedAt:   u.CreatedAt,
		}
		if viewer.Latitude != nil && viewer.Longitude != nil &&
			u.Latitude != nil && u.Longitude != nil {
			d := geo.HaversineKM(*viewer.Latitude, *viewer.Longitude, *u.Latitude, *u.Longitude)
			item.DistanceKM = &d
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
