package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// UserRepository provides data access methods for the User model, including
// the presence writes and the search/filter/feed queries.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkOnline is the presence touch write: a single conditional update, no
// model load.
func (r *UserRepository) MarkOnline(ctx context.Context, userID uint64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_online":     true,
			"last_activity": now,
		}).Error
}

// MarkStaleOffline flips every online user whose last activity predates the
// cutoff. Bulk conditional update, not read-then-write, so it is idempotent
// and safe against concurrent touches.
func (r *UserRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("is_online = ? AND last_activity < ?", true, cutoff).
		Update("is_online", false)
	return res.RowsAffected, res.Error
}

// Search does a case-insensitive substring match across username, full name
// and email, newest profiles first.
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]db.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var users []db.User
	err := r.db.WithContext(ctx).
		Where(
			"LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// FilterParams composes an AND of independently-optional predicates.
// Nil fields impose no constraint.
type FilterParams struct {
	Gender        *string
	MinAge        *int
	MaxAge        *int
	MaxDistanceKM *float64
}

// Filter applies the optional predicates. Age bounds are translated into DOB
// bounds relative to today; MaxDistanceKM bounds the stored preferred radius.
func (r *UserRepository) Filter(ctx context.Context, p FilterParams, limit int) ([]db.User, error) {
	query := r.db.WithContext(ctx).Model(&db.User{}).Where("active = ?", true)

	if p.Gender != nil {
		query = query.Where("LOWER(gender) = ?", strings.ToLower(*p.Gender))
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if p.MinAge != nil {
		// at least MinAge years old: born on or before today - MinAge years
		query = query.Where("dob <= ?", today.AddDate(-*p.MinAge, 0, 0))
	}
	if p.MaxAge != nil {
		// at most MaxAge years old: born after today - (MaxAge+1) years
		query = query.Where("dob > ?", today.AddDate(-*p.MaxAge-1, 0, 0))
	}
	if p.MaxDistanceKM != nil {
		query = query.Where("distance <= ?", *p.MaxDistanceKM)
	}

	var users []db.User
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error
	return users, err
}

// ListActive returns active users excluding the viewer and any excluded ids,
// ordered for deterministic offset pagination.
func (r *UserRepository) ListActive(
	ctx context.Context,
	excludeID uint64,
	excludedIDs []uint64,
	limit, offset int,
) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Where("active = ? AND id <> ?", true, excludeID)

	if len(excludedIDs) > 0 {
		query = query.Where("id NOT IN ?", excludedIDs)
	}

	var users []db.User
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

// StaffIDs returns the ids of active staff users, the recipients of report
// notifications.
func (r *UserRepository) StaffIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("staff = ? AND active = ?", true, true).
		Pluck("id", &ids).Error
	return ids, err
}

// LatestPopImages returns each user's most recently updated pop image URL.
func (r *UserRepository) LatestPopImages(ctx context.Context, userIDs []uint64) (map[uint64]string, error) {
	if len(userIDs) == 0 {
		return map[uint64]string{}, nil
	}

	var images []db.ProfilePopImage
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id, updated_at DESC, id DESC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]string, len(userIDs))
	for _, img := range images {
		if _, ok := out[img.UserID]; !ok {
			out[img.UserID] = img.URL
		}
	}
	return out, nil
}
