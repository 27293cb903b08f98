package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
)

// HolidayReviewer is the part of the API the review engine calls.
type HolidayReviewer interface {
	FilterHolidays(ctx context.Context, filter models.HolidayFilter) ([]models.Holiday, error)
	SetHolidayStatus(ctx context.Context, holidayID int64, status models.Status) error
}

// ReviewRecorder persists review outcomes. [repositories.ReviewLogRepository] implements it.
type ReviewRecorder interface {
	Create(ctx context.Context, entry *models.ReviewEntry) error
}

// ReviewEngine applies holiday review decisions.
type ReviewEngine struct {
	api      HolidayReviewer
	recorder ReviewRecorder
	logger   *log.Logger
}

// NewReviewEngine creates an engine. recorder and logger may be nil.
func NewReviewEngine(api HolidayReviewer, recorder ReviewRecorder, logger *log.Logger) *ReviewEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &ReviewEngine{api: api, recorder: recorder, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ReviewEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Pending lists requests in the PROCESSING state that also match filter.
func (e *ReviewEngine) Pending(ctx context.Context, progress chan<- ProgressUpdate, filter models.HolidayFilter) ([]models.Holiday, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: holiday API not initialized", shared.ErrServiceUnavailable)
	}

	filter.Status = models.StatusProcessing
	e.sendProgress(progress, fetchPendingUpdate())

	holidays, err := e.api.FilterHolidays(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending holidays: %w", err)
	}

	e.sendProgress(progress, foundPendingUpdate(len(holidays)))
	return holidays, nil
}
