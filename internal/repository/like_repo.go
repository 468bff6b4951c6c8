package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// LikeRepository provides data access for the directed like edge between
// users. Edges are only ever created or deleted, never updated.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts the edge inside a transaction. The composite primary key
// makes a concurrent duplicate surface as gorm.ErrDuplicatedKey rather than
// a second edge.
func (r *LikeRepository) Create(ctx context.Context, fromID, toID uint64) (*db.Like, error) {
	like := db.Like{FromUserID: fromID, ToUserID: toID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&like).Error
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Delete removes the edge. Missing edge → gorm.ErrRecordNotFound.
func (r *LikeRepository) Delete(ctx context.Context, fromID, toID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
			Delete(&db.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Exists reports whether from → to has a like edge.
func (r *LikeRepository) Exists(ctx context.Context, fromID, toID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns the users who like the recipient, newest like first.
// Uniqueness of (from, to) makes the result structurally deduplicated.
// excludedIDs (blocked either way) are filtered out.
func (r *LikeRepository) GetLikers(ctx context.Context, toID uint64, excludedIDs []uint64) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN likes ON likes.from_user_id = users.id").
		Where("likes.to_user_id = ?", toID)

	if len(excludedIDs) > 0 {
		query = query.Where("users.id NOT IN ?", excludedIDs)
	}

	var users []db.User
	err := query.Order("likes.created_at DESC, users.id DESC").Find(&users).Error
	return users, err
}
