package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultWindowDays is the trailing window applied when none is given.
const DefaultWindowDays = 30

// TopCustomerLimit caps the top-customer ranking.
const TopCustomerLimit = 10

// Service prepares aggregate summaries. All operations are read-only and
// return zeroed results on an empty store.
type Service struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

// NewService creates a new reporting service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// Summary counts interactions inside the trailing windowDays window,
// broken down per (channel, direction) pair. The window is inclusive on
// both ends and compared on dates.
func (s *Service) Summary(ctx context.Context, windowDays int) (Summary, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today := dateOf(s.now())
	since := today.AddDate(0, 0, -windowDays)

	count, err := s.repo.CountSince(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	breakdown, err := s.repo.ChannelDirectionCounts(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	if breakdown == nil {
		breakdown = []ChannelDirectionCount{}
	}

	s.logger.Info("generated summary", slog.Int("window_days", windowDays), slog.Int64("count", count))
	return Summary{
		WindowDays: windowDays,
		DateRange:  formatRange(since, today),
		Count:      count,
		Breakdown:  breakdown,
	}, nil
}

// ExtendedSummary assembles the dashboard aggregates: totals, trailing
// windows, channel and status breakdowns, and top customers over the
// last 30 days ranked by volume with ids as a stable tiebreak.
func (s *Service) ExtendedSummary(ctx context.Context) (ExtendedSummary, error) {
	today := dateOf(s.now())
	since30 := today.AddDate(0, 0, -30)
	since7 := today.AddDate(0, 0, -7)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return ExtendedSummary{}, err
	}
	last30, err := s.repo.CountSince(ctx, since30)
	if err != nil {
		return ExtendedSummary{}, err
	}
	last7, err := s.repo.CountSince(ctx, since7)
	if err != nil {
		return ExtendedSummary{}, err
	}
	channels, err := s.repo.ChannelDirectionCounts(ctx, since30)
	if err != nil {
		return ExtendedSummary{}, err
	}
	statuses, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return ExtendedSummary{}, err
	}
	top, err := s.repo.TopCustomers(ctx, since30, TopCustomerLimit)
	if err != nil {
		return ExtendedSummary{}, err
	}

	if channels == nil {
		channels = []ChannelDirectionCount{}
	}
	if statuses == nil {
		statuses = []StatusCount{}
	}
	if top == nil {
		top = []TopCustomer{}
	}

	s.logger.Info("generated extended summary", slog.Int64("total", total))
	return ExtendedSummary{
		Total:            total,
		Last30Days:       last30,
		Last7Days:        last7,
		ChannelBreakdown: channels,
		StatusBreakdown:  statuses,
		TopCustomers:     top,
		DateRange:        formatRange(since30, today),
	}, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func formatRange(from, to time.Time) string {
	return fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}
