package feed_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/config"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/feed"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
)

// setupAssembler wires an in-memory SQLite DB and a miniredis into a feed
// assembler. The dataset is 1 viewer plus 15 active candidates with staggered
// creation times, one blocked pair, and one pop image.
func setupAssembler(t *testing.T) (*feed.Assembler, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Millisecond)
	lat, lon := 51.5074, -0.1278

	users := []db.User{{
		ID: 1, Username: "viewer", Email: "u1@test.com", PasswordHash: "x",
		Latitude: &lat, Longitude: &lon, CreatedAt: base,
	}}
	for n := 2; n <= 16; n++ {
		users = append(users, db.User{
			ID:       uint64(n),
			Username: fmt.Sprintf("user%d", n),
			Email:    fmt.Sprintf("u%d@test.com", n),
			PasswordHash: "x",
			IsOnline: n%2 == 0,
			// Staggered so newest-first ordering is deterministic.
			CreatedAt: base.Add(time.Duration(n) * time.Minute),
		})
	}
	require.NoError(t, dbase.Create(&users).Error)

	// Viewer blocked user 16, the newest profile.
	require.NoError(t, dbase.Create(&db.UserBlock{BlockerID: 1, BlockedID: 16}).Error)

	require.NoError(t, dbase.Create(&db.ProfilePopImage{
		UserID: 15, URL: "https://cdn.test/u15.jpg",
	}).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), logger, notify.NopNotifier{}, cfg)
	return feed.NewAssembler(appCtx), dbase
}

// TestGlobalFeedPagination: 14 visible candidates split 10/4 across two
// pages with no overlap, newest first.
func TestGlobalFeedPagination(t *testing.T) {
	ctx := context.Background()
	asm, _ := setupAssembler(t)

	page1, err := asm.GlobalFeed(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page1.Items, 10)
	assert.Equal(t, uint64(15), page1.Items[0].UserID, "newest visible profile first")

	page2, err := asm.GlobalFeed(ctx, 1, 2, 10)
	require.NoError(t, err)
	require.Len(t, page2.Items, 4)

	seen := map[uint64]bool{}
	for _, item := range append(page1.Items, page2.Items...) {
		assert.False(t, seen[item.UserID], "user %d appeared twice", item.UserID)
		seen[item.UserID] = true
		assert.NotEqual(t, uint64(1), item.UserID, "viewer must not see themselves")
		assert.NotEqual(t, uint64(16), item.UserID, "blocked user must be hidden")
	}
	assert.Len(t, seen, 14)
}

func TestGlobalFeedAnnotations(t *testing.T) {
	ctx := context.Background()
	asm, _ := setupAssembler(t)

	page, err := asm.GlobalFeed(ctx, 1, 1, 10)
	require.NoError(t, err)

	for _, item := range page.Items {
		if item.UserID == 15 {
			assert.Equal(t, "https://cdn.test/u15.jpg", item.PopImageURL)
		} else {
			assert.Empty(t, item.PopImageURL)
		}
		assert.Equal(t, item.UserID%2 == 0, item.IsOnline)
		assert.Nil(t, item.DistanceKM, "candidates without location have no distance")
	}
}

func TestGlobalFeedDistanceAnnotation(t *testing.T) {
	ctx := context.Background()
	asm, gdb := setupAssembler(t)

	// Give user 15 a location ~2.2 km from the viewer.
	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", 15).
		Updates(map[string]interface{}{"latitude": 51.5274, "longitude": -0.1278}).Error)

	page, err := asm.GlobalFeed(ctx, 1, 1, 10)
	require.NoError(t, err)

	for _, item := range page.Items {
		if item.UserID == 15 {
			require.NotNil(t, item.DistanceKM)
			assert.InDelta(t, 2.2, *item.DistanceKM, 0.2)
		}
	}
}

func TestGlobalFeedMissingViewerIsNotFound(t *testing.T) {
	ctx := context.Background()
	asm, _ := setupAssembler(t)

	_, err := asm.GlobalFeed(ctx, 999, 1, 10)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestGlobalFeedHidesInactiveProfiles(t *testing.T) {
	ctx := context.Background()
	asm, gdb := setupAssembler(t)

	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", 15).
		Update("active", false).Error)

	page, err := asm.GlobalFeed(ctx, 1, 1, 50)
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.NotEqual(t, uint64(15), item.UserID)
	}
	assert.Len(t, page.Items, 13)
}
