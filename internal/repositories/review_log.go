package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
)

// ReviewLogRepository persists [models.ReviewEntry] audit records.
type ReviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new [ReviewLogRepository] with the given database connection
func NewReviewLogRepository(db *sql.DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// Create inserts entry, assigning its ID and timestamp when unset
func (r *ReviewLogRepository) Create(ctx context.Context, entry *models.ReviewEntry) error {
	if entry.ID == "" {
		entry.ID = shared.GenerateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var errorMessage any = entry.Error
	if entry.Error == "" {
		errorMessage = nil
	}

	query := `INSERT INTO review_log (id, holiday_id, status, error, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.HolidayID, string(entry.Status), errorMessage, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert review entry: %w", err)
	}
	return nil
}

// ListByHoliday returns the entries for one holiday, newest first
func (r *ReviewLogRepository) ListByHoliday(ctx context.Context, holidayID int64) ([]*models.ReviewEntry, error) {
	query := `
		SELECT id, holiday_id, status, error, created_at
		FROM review_log
		WHERE holiday_id = ?
		ORDER BY created_at DESC
	`
	return r.query(ctx, query, holidayID)
}

// Recent returns up to limit entries, newest first
func (r *ReviewLogRepository) Recent(ctx context.Context, limit int) ([]*models.ReviewEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, holiday_id, status, error, created_at
		FROM review_log
		ORDER BY created_at DESC
		LIMIT ?
	`
	return r.query(ctx, query, limit)
}

func (r *ReviewLogRepository) query(ctx context.Context, query string, args ...any) ([]*models.ReviewEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review log: %w", err)
	}
	defer rows.Close()

	var entries []*models.ReviewEntry
	for rows.Next() {
		var (
			entry  models.ReviewEntry
			status string
			errMsg sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.HolidayID, &status, &errMsg, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review entry: %w", err)
		}
		entry.Status = models.Status(status)
		entry.Error = errMsg.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
