package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// ShareRepository provides data access for profile shares.
type ShareRepository struct {
	db *gorm.DB
}

// NewShareRepository creates a new repository bound to the given DB connection.
func NewShareRepository(database *gorm.DB) *ShareRepository {
	return &ShareRepository{db: database}
}

// GetOrCreate inserts the share if absent. Returns created=false when the
// pair already exists, so sharing is idempotent.
func (r *ShareRepository) GetOrCreate(ctx context.Context, sharerID, sharedID uint64) (bool, error) {
	share := db.ProfileShare{SharerID: sharerID, SharedID: sharedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&share)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
