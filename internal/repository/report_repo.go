package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// ReportRepository provides data access for profile reports.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new repository bound to the given DB connection.
func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

func (r *ReportRepository) Create(ctx context.Context, report *db.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
}

// RecentExists reports whether the reporter already filed the same reason
// against the same user since the cutoff. Used to reject rapid duplicates.
func (r *ReportRepository) RecentExists(
	ctx context.Context,
	reporterID, reportedID uint64,
	reason string,
	since time.Time,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Report{}).
		Where(
			"reporter_id = ? AND reported_id = ? AND reason = ? AND created_at >= ?",
			reporterID, reportedID, reason, since,
		).
		Count(&count).Error
	return count > 0, err
}
