package server_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/config"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
	"github.com/TechbyAbrar/match-making-app/internal/presence"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/server"
)

// setupRouter wires the full HTTP stack onto an in-memory SQLite DB and a
// miniredis, with two seeded users.
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		{ID: 1, Username: "alice", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Username: "bob", Email: "u2@test.com", PasswordHash: "x"},
	}
	require.NoError(t, dbase.Create(&users).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.NewDBNotifier(repository.NewNotificationRepository(dbase), redisCache, logger)
	appCtx := app.New(dbase, redisCache, logger, notifier, cfg)

	tracker := presence.NewTracker(
		repository.NewUserRepository(dbase),
		redisCache,
		logger,
		cfg.Presence.TouchThrottle,
		cfg.Presence.OfflineCutoff,
		cfg.Presence.ReapInterval,
	)
	return server.Setup(appCtx, tracker), dbase
}

func doRequest(r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointsNeedNoAuth(t *testing.T) {
	r, _ := setupRouter(t)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ready", "", "").Code)
}

func TestIdentityRequired(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/feed", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/feed", "not-a-number", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestErrorStatusMapping drives the like flow over HTTP and checks the
// domain errors surface as the right status codes.
func TestErrorStatusMapping(t *testing.T) {
	r, _ := setupRouter(t)

	assert.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/v1/users/2/like", "1", "").Code)
	assert.Equal(t, http.StatusConflict, doRequest(r, http.MethodPost, "/api/v1/users/2/like", "1", "").Code)
	assert.Equal(t, http.StatusConflict, doRequest(r, http.MethodPost, "/api/v1/users/1/like", "1", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodPost, "/api/v1/users/999/like", "1", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodPost, "/api/v1/users/zero/like", "1", "").Code)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodDelete, "/api/v1/users/2/like", "1", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/api/v1/users/2/like", "1", "").Code)
}

// TestRequestTouchesPresence: an authenticated request flips the caller
// online through the presence middleware.
func TestRequestTouchesPresence(t *testing.T) {
	r, gdb := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/feed", "1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var user db.User
	require.NoError(t, gdb.First(&user, 1).Error)
	assert.True(t, user.IsOnline)
	require.NotNil(t, user.LastActivity)
}

func TestWhoLikedEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/v1/users/1/like", "2", "").Code)

	w := doRequest(r, http.MethodGet, "/api/v1/me/liked-by", "1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = doRequest(r, http.MethodGet, "/api/v1/me/liked-by?radius_km=oops", "1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportValidation(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/users/2/report", "1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/users/2/report", "1", `{"reason":"spam"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

// TestLikeWritesNotification: the like commits, then the outbox writes the
// recipient's notification row, visible through the inbox endpoint.
func TestLikeWritesNotification(t *testing.T) {
	r, _ := setupRouter(t)

	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/v1/users/2/like", "1", "").Code)

	w := doRequest(r, http.MethodGet, "/api/v1/me/notifications", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)
	assert.Contains(t, w.Body.String(), "USER_LIKE")
}

// TestUnreadNotificationCounterCache: the unread count is served from the
// cached counter once a list seeds it, the dispatcher bumps the counter on
// new notifications, and marking a notification read drops the counter so
// the next list reseeds it from the database.
func TestUnreadNotificationCounterCache(t *testing.T) {
	r, gdb := setupRouter(t)

	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/v1/users/2/like", "1", "").Code)

	// First list seeds the counter.
	w := doRequest(r, http.MethodGet, "/api/v1/me/notifications", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)

	// Rows written behind the dispatcher's back are invisible until the
	// counter expires or is invalidated.
	rows := []db.Notification{
		{RecipientID: 2, Type: "USER_LIKE", Message: "backfill"},
		{RecipientID: 2, Type: "USER_LIKE", Message: "backfill"},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	w = doRequest(r, http.MethodGet, "/api/v1/me/notifications", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)

	// The dispatcher bumps the seeded counter in place.
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/v1/users/2/share", "1", "").Code)
	w = doRequest(r, http.MethodGet, "/api/v1/me/notifications", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":2`)

	// Marking one read drops the counter; the next list reseeds it with
	// the real count.
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/api/v1/me/notifications/1/read", "2", "").Code)
	w = doRequest(r, http.MethodGet, "/api/v1/me/notifications", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":3`)
}

func TestChatEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/users/2/messages", "1", `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// The recipient sees one unread message on thread 1.
	w = doRequest(r, http.MethodGet, "/api/v1/threads/1/unread", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)

	// Reading the thread resets the counter.
	w = doRequest(r, http.MethodGet, "/api/v1/threads/1/messages", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodGet, "/api/v1/threads/1/unread", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":0`)
}
