package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// StoryRepository provides data access for stories and story likes.
type StoryRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new repository bound to the given DB connection.
func NewStoryRepository(database *gorm.DB) *StoryRepository {
	return &StoryRepository{db: database}
}

func (r *StoryRepository) Create(ctx context.Context, story *db.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

// GetActive fetches a story that is neither expired nor deleted.
func (r *StoryRepository) GetActive(ctx context.Context, storyID string) (*db.Story, error) {
	var story db.Story
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ? AND is_deleted = ?", storyID, time.Now().UTC(), false).
		First(&story).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// ListActiveByUser returns a user's active stories, oldest first, matching
// the order they are played back in.
func (r *StoryRepository) ListActiveByUser(ctx context.Context, userID uint64) ([]db.Story, error) {
	var stories []db.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ? AND is_deleted = ?", userID, time.Now().UTC(), false).
		Order("created_at ASC").
		Find(&stories).Error
	return stories, err
}

// ListGlobal returns active stories from everyone but the viewer.
func (r *StoryRepository) ListGlobal(ctx context.Context, excludeUserID uint64, limit int) ([]db.Story, error) {
	var stories []db.Story
	err := r.db.WithContext(ctx).
		Where("user_id <> ? AND expires_at > ? AND is_deleted = ?", excludeUserID, time.Now().UTC(), false).
		Order("created_at DESC").
		Limit(limit).
		Find(&stories).Error
	return stories, err
}

// SoftDelete hides an owner's story. Missing or foreign story →
// gorm.ErrRecordNotFound.
func (r *StoryRepository) SoftDelete(ctx context.Context, storyID string, ownerID uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Story{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", storyID, ownerID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateLike inserts the (story, user) like. Duplicate →
// gorm.ErrDuplicatedKey via the composite primary key.
func (r *StoryRepository) CreateLike(ctx context.Context, storyID string, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&db.StoryLike{StoryID: storyID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Story{}).
			Where("id = ?", storyID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
}

// DeleteLike removes the like. Missing row → gorm.ErrRecordNotFound.
func (r *StoryRepository) DeleteLike(ctx context.Context, storyID string, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("story_id = ? AND user_id = ?", storyID, userID).
			Delete(&db.StoryLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&db.Story{}).
			Where("id = ? AND likes_count > 0", storyID).
			Update("likes_count", gorm.Expr("likes_count - 1")).Error
	})
}

// BumpViewCount adds to the denormalized view counter.
func (r *StoryRepository) BumpViewCount(ctx context.Context, storyID string, amount int64) error {
	return r.db.WithContext(ctx).
		Model(&db.Story{}).
		Where("id = ?", storyID).
		Update("view_count", gorm.Expr("view_count + ?", amount)).Error
}
