package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
	"github.com/desertthunder/hmx/internal/tasks"
)

// HolidaysRequest submits a new holiday request.
func (r *Runner) HolidaysRequest(ctx context.Context, cmd *cli.Command) error {
	start, err := parseTimeFlag(cmd, "start")
	if err != nil {
		return err
	}
	end, err := parseTimeFlag(cmd, "end")
	if err != nil {
		return err
	}

	req := models.CreateHoliday{StartDate: start, EndDate: end}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	id, err := r.api.RequestHoliday(ctx, req)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Holiday #%d requested (%s to %s)\n", id, start, end)
}

// HolidaysList prints the signed-in user's holidays.
func (r *Runner) HolidaysList(ctx context.Context, cmd *cli.Command) error {
	start, err := parseTimeFlag(cmd, "start")
	if err != nil {
		return err
	}
	end, err := parseTimeFlag(cmd, "end")
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	holidays, err := r.api.Holidays(ctx, start, end)
	if err != nil {
		return err
	}
	return formatter.WriteHolidays(r.output, r.format, holidays)
}

// HolidaysFilter prints holidays across users matching the flags.
func (r *Runner) HolidaysFilter(ctx context.Context, cmd *cli.Command) error {
	filter, err := holidayFilterFrom(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	holidays, err := r.api.FilterHolidays(ctx, filter)
	if err != nil {
		return err
	}
	return formatter.WriteHolidays(r.output, r.format, holidays)
}

// HolidaysStatus applies a single review decision.
func (r *Runner) HolidaysStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")
	status, err := parseDecisionStatus(cmd.String("status"))
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.SetHolidayStatus(ctx, id, status); err != nil {
		return err
	}
	return r.writePlain("✓ Holiday #%d %s\n", id, status)
}

// HolidaysReview applies decisions in bulk through the review engine.
//
// IDs given with --accept and --reject are combined with every pending request when
// --pending is set; a later decision for the same holiday replaces an earlier one.
func (r *Runner) HolidaysReview(ctx context.Context, cmd *cli.Command) error {
	var decisions []tasks.Decision
	for _, flag := range []struct {
		name   string
		status models.Status
	}{{"accept", models.StatusAccepted}, {"reject", models.StatusRejected}} {
		ids, err := parseIDs(cmd.StringSlice(flag.name))
		if err != nil {
			return fmt.Errorf("--%s: %w", flag.name, err)
		}
		for _, id := range ids {
			decisions = append(decisions, tasks.Decision{HolidayID: id, Status: flag.status})
		}
	}

	var pendingStatus models.Status
	if raw := cmd.String("pending"); raw != "" {
		status, err := parseDecisionStatus(raw)
		if err != nil {
			return err
		}
		pendingStatus = status
	}

	if len(decisions) == 0 && pendingStatus == "" {
		return fmt.Errorf("%w: pass --accept, --reject or --pending", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPending:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ReviewHolidays:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.WriteReport:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.Done:
				r.writePlain("✓ %s\n", update.Message)
			}
		}
	}()

	result, err := r.review(ctx, progressCh, decisions, pendingStatus, tasks.ReviewOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		ReportPath: cmd.String("report"),
		Format:     r.reportFormat(cmd.String("report")),
	})
	close(progressCh)
	<-done

	if result != nil {
		r.writePlainln("Summary: %d total, %d applied, %d failed, %d skipped",
			result.Total, result.Succeeded, result.Failed, result.Skipped)
		for _, res := range result.Results {
			if res.Error != nil && !res.Skipped() {
				r.writePlain("  ✗ Holiday #%d: %s\n", res.HolidayID, res.Error)
			}
		}
		if result.ReportPath != "" {
			r.writePlain("Report: %s\n", result.ReportPath)
		}
	}
	return err
}

func (r *Runner) review(
	ctx context.Context,
	progressCh chan tasks.ProgressUpdate,
	decisions []tasks.Decision,
	pendingStatus models.Status,
	opts tasks.ReviewOpts,
) (*tasks.ReviewResult, error) {
	if pendingStatus != "" {
		pending, err := r.engine.Pending(ctx, progressCh, models.HolidayFilter{})
		if err != nil {
			return nil, err
		}
		all := make([]tasks.Decision, 0, len(pending)+len(decisions))
		for _, h := range pending {
			all = append(all, tasks.Decision{HolidayID: h.ID, Status: pendingStatus})
		}
		decisions = append(all, decisions...)
	}

	if len(decisions) == 0 {
		return &tasks.ReviewResult{}, nil
	}
	return r.engine.Review(ctx, progressCh, tasks.SortDecisions(decisions), opts)
}

// reportFormat picks the report format from the path's extension, falling back to JSON
// when the global format is the terminal table.
func (r *Runner) reportFormat(path string) formatter.Format {
	for _, f := range formatter.Formats {
		if path != "" && strings.HasSuffix(path, f.Extension()) && f != formatter.FormatTable {
			return f
		}
	}
	if r.format == formatter.FormatTable {
		return formatter.FormatJSON
	}
	return r.format
}

// HolidaysLog prints review decisions recorded by this client.
func (r *Runner) HolidaysLog(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	var entries []*models.ReviewEntry
	var err error
	if id := cmd.Int64("holiday"); id > 0 {
		entries, err = r.reviews.ListByHoliday(ctx, id)
	} else {
		entries, err = r.reviews.Recent(ctx, int(cmd.Int("limit")))
	}
	if err != nil {
		return err
	}
	return formatter.WriteReviewLog(r.output, r.format, entries)
}

func holidayFilterFrom(cmd *cli.Command) (models.HolidayFilter, error) {
	var filter models.HolidayFilter
	if cmd.IsSet("id") {
		id := cmd.Int64("id")
		filter.ID = &id
	}
	if cmd.IsSet("user") {
		user := cmd.Int64("user")
		filter.UserID = &user
	}
	if cmd.IsSet("start") {
		start, err := parseTimeFlag(cmd, "start")
		if err != nil {
			return filter, err
		}
		filter.StartDate = &start
	}
	if cmd.IsSet("end") {
		end, err := parseTimeFlag(cmd, "end")
		if err != nil {
			return filter, err
		}
		filter.EndDate = &end
	}
	if raw := cmd.String("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		filter.Status = status
	}
	return filter, nil
}

// parseTimeFlag returns the zero value for an empty flag.
func parseTimeFlag(cmd *cli.Command, name string) (models.LocalDateTime, error) {
	raw := cmd.String(name)
	if raw == "" {
		return models.LocalDateTime{}, nil
	}
	t, err := models.ParseLocalDateTime(raw)
	if err != nil {
		return t, fmt.Errorf("%w: --%s: %v", shared.ErrInvalidFlag, name, err)
	}
	return t, nil
}

// parseDecisionStatus accepts ACCEPTED or REJECTED, case-insensitively.
func parseDecisionStatus(raw string) (models.Status, error) {
	status, err := models.ParseStatus(raw)
	if err != nil || status == models.StatusProcessing {
		return "", fmt.Errorf("%w: status must be ACCEPTED or REJECTED, got %q", shared.ErrInvalidFlag, raw)
	}
	return status, nil
}

func parseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q is not a holiday ID", shared.ErrInvalidFlag, v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
