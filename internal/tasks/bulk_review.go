package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/shared"
)

// ErrSkipped marks decisions that were never sent because the run stopped early.
var ErrSkipped = errors.New("skipped")

// Decision is one status change to apply.
type Decision struct {
	HolidayID int64
	Status    models.Status
}

// ReviewOpts contains configuration for bulk reviews.
type ReviewOpts struct {
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Requests per second (default: 5)
	ReportPath string           // Optional report file
	Format     formatter.Format // Report format (default: json)
}

// DecisionResult is the outcome of one [Decision].
type DecisionResult struct {
	Decision
	Success bool
	Error   error
}

// Skipped reports whether the decision was never attempted.
func (r DecisionResult) Skipped() bool { return errors.Is(r.Error, ErrSkipped) }

// ReviewResult summarizes a bulk review, with Results in input order.
type ReviewResult struct {
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	Results    []DecisionResult
	ReportPath string
}

// Entries converts results into review log entries, skipped decisions included.
func (r *ReviewResult) Entries() []*models.ReviewEntry {
	entries := make([]*models.ReviewEntry, 0, len(r.Results))
	for _, res := range r.Results {
		entries = append(entries, entryFor(res))
	}
	return entries
}

type reviewJob struct {
	index    int
	decision Decision
}

type reviewOutcome struct {
	index  int
	result DecisionResult
}

func entryFor(res DecisionResult) *models.ReviewEntry {
	entry := &models.ReviewEntry{HolidayID: res.HolidayID, Status: res.Status, CreatedAt: time.Now().UTC()}
	if res.Error != nil {
		entry.Error = pipeline.Message(res.Error)
	}
	return entry
}

func validateDecisions(decisions []Decision) error {
	if len(decisions) == 0 {
		return fmt.Errorf("%w: no decisions to apply", shared.ErrMissingArgument)
	}
	for _, d := range decisions {
		if d.HolidayID <= 0 {
			return fmt.Errorf("%w: holiday id %d", shared.ErrInvalidArgument, d.HolidayID)
		}
		if d.Status != models.StatusAccepted && d.Status != models.StatusRejected {
			return fmt.Errorf("%w: holiday %d cannot be set to %q", shared.ErrInvalidArgument, d.HolidayID, d.Status)
		}
	}
	return nil
}

// Review applies decisions concurrently with rate limiting and progress tracking.
//
// An authentication failure stops the run: decisions not yet sent are reported
// as skipped and the returned error wraps the failure. Other failures are
// recorded per decision and do not stop the run.
func (e *ReviewEngine) Review(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	decisions []Decision,
	opts ReviewOpts,
) (*ReviewResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: holiday API not initialized", shared.ErrServiceUnavailable)
	}
	if err := validateDecisions(decisions); err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan reviewJob, len(decisions))
	outcomes := make(chan reviewOutcome, len(decisions))

	for i, d := range decisions {
		jobs <- reviewJob{index: i, decision: d}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.reviewWorker(runCtx, &wg, limiter, jobs, outcomes)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	total := len(decisions)
	result := &ReviewResult{Total: total, Results: make([]DecisionResult, total)}
	e.sendProgress(prog, reviewStartedUpdate(total))

	var authErr error
	completed := 0
	for out := range outcomes {
		completed++
		res := out.result
		result.Results[out.index] = res

		switch {
		case res.Success:
			result.Succeeded++
		case res.Skipped():
			result.Skipped++
		default:
			result.Failed++
			if pipeline.CauseOf(res.Error) == pipeline.CauseAuth && authErr == nil {
				authErr = res.Error
				e.logger.Warn("Session expired, stopping review", "holiday", res.HolidayID)
				cancel()
			}
		}

		if !res.Skipped() {
			e.record(ctx, res)
		}
		e.sendProgress(prog, decisionUpdate(completed, total, res))
	}

	if opts.ReportPath != "" {
		if err := formatter.WriteReviewReport(opts.ReportPath, opts.Format, result.Entries()); err != nil {
			return result, fmt.Errorf("review completed but failed to write report: %w", err)
		}
		result.ReportPath = opts.ReportPath
		e.sendProgress(prog, reportUpdate(opts.ReportPath))
	}

	e.sendProgress(prog, doneUpdate(result))
	e.logger.Info("Review finished", "applied", result.Succeeded, "failed", result.Failed, "skipped", result.Skipped)

	if authErr != nil {
		return result, fmt.Errorf("review stopped: %w", authErr)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// reviewWorker applies decisions from jobs until the channel drains.
// Once ctx is done, remaining jobs are reported as skipped.
func (e *ReviewEngine) reviewWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan reviewJob,
	outcomes chan<- reviewOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		res := DecisionResult{Decision: job.decision}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = fmt.Errorf("%w: %w", ErrSkipped, context.Cause(ctx))
			outcomes <- reviewOutcome{index: job.index, result: res}
			continue
		}

		if err := e.api.SetHolidayStatus(ctx, job.decision.HolidayID, job.decision.Status); err != nil {
			if ctx.Err() != nil && pipeline.CauseOf(err) != pipeline.CauseAuth {
				res.Error = fmt.Errorf("%w: %w", ErrSkipped, err)
			} else {
				res.Error = err
			}
		} else {
			res.Success = true
		}
		outcomes <- reviewOutcome{index: job.index, result: res}
	}
}

// record persists res without letting a cancelled run drop the entry.
func (e *ReviewEngine) record(ctx context.Context, res DecisionResult) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Create(context.WithoutCancel(ctx), entryFor(res)); err != nil {
		e.logger.Warn("Failed to record review", "holiday", res.HolidayID, "error", err)
	}
}

// SortDecisions orders decisions by holiday id, keeping the last decision per holiday.
func SortDecisions(decisions []Decision) []Decision {
	latest := make(map[int64]models.Status, len(decisions))
	for _, d := range decisions {
		latest[d.HolidayID] = d.Status
	}

	out := make([]Decision, 0, len(latest))
	for id, status := range latest {
		out = append(out, Decision{HolidayID: id, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HolidayID < out[j].HolidayID })
	return out
}
