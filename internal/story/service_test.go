package story_test

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
	"github.com/TechbyAbrar/match-making-app/internal/notify"
	"github.com/TechbyAbrar/match-making-app/internal/story"
)

// captureNotifier records every dispatched event for assertions.
type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Dispatch(_ context.Context, e notify.Event) {
	c.events = append(c.events, e)
}

// setupService wires an in-memory SQLite DB and a miniredis into a
// story.Service with two seeded users.
func setupService(t *testing.T) (*story.Service, *miniredis.Miniredis, *captureNotifier) {
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

	users := []db.User{
		{ID: 1, Username: "author", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Username: "viewer", Email: "u2@test.com", PasswordHash: "x"},
		{ID: 3, Username: "other", Email: "u3@test.com", PasswordHash: "x"},
	}
	require.NoError(t, dbase.Create(&users).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &captureNotifier{}
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), logger, notifier, cfg)
	return story.NewService(appCtx), mr, notifier
}

func TestCreateStoryValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.Create(ctx, 1, "   ", "")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.Create(ctx, 999, "hello", "")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	st, err := svc.Create(ctx, 1, "hello", "")
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), st.ExpiresAt, time.Minute)
}

func TestListMineAndGlobal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.Create(ctx, 1, "first", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, "second", "")
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "first", mine[0].Story.Text)

	// The global list excludes the viewer's own stories.
	global, err := svc.ListGlobal(ctx, 1)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "second", global[0].Story.Text)
}

func TestDeleteStoryOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	st, err := svc.Create(ctx, 1, "mine", "")
	require.NoError(t, err)

	// Someone else's delete looks like a missing story.
	err = svc.Delete(ctx, st.ID, 2)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	require.NoError(t, svc.Delete(ctx, st.ID, 1))

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestLikeStory(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := setupService(t)

	st, err := svc.Create(ctx, 1, "likeable", "")
	require.NoError(t, err)

	err = svc.Like(ctx, st.ID, 1)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err), "own story")

	require.NoError(t, svc.Like(ctx, st.ID, 2))

	err = svc.Like(ctx, st.ID, 2)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err), "duplicate")

	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.TypeStoryLike, notifier.events[0].Type)
	assert.Equal(t, uint64(1), notifier.events[0].RecipientID)

	require.NoError(t, svc.Unlike(ctx, st.ID, 2))
	err = svc.Unlike(ctx, st.ID, 2)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

// TestRecordViewDeduplicates: repeated views by the same user bump the
// counter once; the owner's own views never count.
func TestRecordViewDeduplicates(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := setupService(t)

	st, err := svc.Create(ctx, 1, "watched", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.RecordView(ctx, st.ID, 2)
		require.NoError(t, err)
	}
	_, err = svc.RecordView(ctx, st.ID, 3)
	require.NoError(t, err)
	_, err = svc.RecordView(ctx, st.ID, 1) // owner
	require.NoError(t, err)

	count, err := mr.Get(cache.KeyForStoryViewCount(st.ID))
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, uint64(2), mine[0].LiveViewCount)
}

func TestViewersOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	st, err := svc.Create(ctx, 1, "watched", "")
	require.NoError(t, err)

	_, err = svc.RecordView(ctx, st.ID, 2)
	require.NoError(t, err)
	_, err = svc.RecordView(ctx, st.ID, 3)
	require.NoError(t, err)

	_, err = svc.Viewers(ctx, st.ID, 2, 1, 10)
	require.Error(t, err)
	assert.Equal(t, errs.KindPermission, errs.KindOf(err))

	viewers, err := svc.Viewers(ctx, st.ID, 1, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, viewers)
}

// TestViewKeysExpire: the Redis viewer set and counter lapse with the story
// lifetime, after which a view starts a fresh count.
func TestViewKeysExpire(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := setupService(t)

	st, err := svc.Create(ctx, 1, "ephemeral", "")
	require.NoError(t, err)

	_, err = svc.RecordView(ctx, st.ID, 2)
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)
	assert.False(t, mr.Exists(cache.KeyForStoryViewCount(st.ID)))
	assert.False(t, mr.Exists(cache.KeyForStoryViewers(st.ID)))
}

func TestSnapshotViewCount(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	st, err := svc.Create(ctx, 1, "snapshot", "")
	require.NoError(t, err)

	_, err = svc.RecordView(ctx, st.ID, 2)
	require.NoError(t, err)
	_, err = svc.RecordView(ctx, st.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.SnapshotViewCount(ctx, st.ID))

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, uint64(2), mine[0].Story.ViewCount)
}
