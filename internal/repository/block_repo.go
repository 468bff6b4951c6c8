package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// BlockRepository provides data access for user blocks.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new repository bound to the given DB connection.
func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// GetOrCreate inserts the block if absent. Returns created=false when the
// pair was already blocked; blocking is idempotent.
func (r *BlockRepository) GetOrCreate(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	block := db.UserBlock{BlockerID: blockerID, BlockedID: blockedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&block)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the block. Missing row → gorm.ErrRecordNotFound.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID uint64) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&db.UserBlock{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBlocked returns the users the blocker has blocked, newest block first.
func (r *BlockRepository) ListBlocked(ctx context.Context, blockerID uint64) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_blocks ON user_blocks.blocked_id = users.id").
		Where("user_blocks.blocker_id = ?", blockerID).
		Order("user_blocks.created_at DESC").
		Find(&users).Error
	return users, err
}

// HiddenIDs returns every user id hidden from the viewer: users the viewer
// blocked plus users who blocked the viewer.
func (r *BlockRepository) HiddenIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.UserBlock{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, err
	}

	var reverse []uint64
	err = r.db.WithContext(ctx).
		Model(&db.UserBlock{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &reverse).Error
	if err != nil {
		return nil, err
	}

	return append(ids, reverse...), nil
}
