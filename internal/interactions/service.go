package interactions

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// summaryMinLength is the minimum trimmed summary length, enforced here
// at the store boundary regardless of what the entry form checked.
const summaryMinLength = 10

// RecentLimit is how many interactions a customer detail view shows.
const RecentLimit = 10

// Service owns interaction business rules around the repository.
type Service struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
}

// NewService creates a new interaction service.
func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, audit: audit}
}

// Create validates and stores a new interaction. The interaction date is
// assigned by the database at insert and never changes afterwards.
func (s *Service) Create(ctx context.Context, in Input) (Interaction, error) {
	in, err := validateInput(in)
	if err != nil {
		return Interaction{}, err
	}
	it, err := s.repo.Create(ctx, in)
	if err != nil {
		return Interaction{}, err
	}
	s.recordAudit(ctx, "interaction.create", it.ID, map[string]any{"customer_id": it.CustomerID, "channel": string(it.Channel)})
	s.logger.Info("created interaction",
		slog.Int64("id", it.ID),
		slog.Int64("customer_id", it.CustomerID),
		slog.String("channel", string(it.Channel)))
	return it, nil
}

// Update validates and replaces the writable fields of an interaction.
// Any status transition is allowed in either direction.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Interaction, error) {
	in, err := validateInput(in)
	if err != nil {
		return Interaction{}, err
	}
	it, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Interaction{}, err
	}
	s.recordAudit(ctx, "interaction.update", it.ID, map[string]any{"status": string(it.Status)})
	s.logger.Info("updated interaction", slog.Int64("id", it.ID))
	return it, nil
}

// Delete removes an interaction permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "interaction.delete", id, nil)
	s.logger.Info("deleted interaction", slog.Int64("id", id))
	return nil
}

// Get returns a single interaction with its customer name.
func (s *Service) Get(ctx context.Context, id int64) (Interaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered interaction page, newest first.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]ListItem, shared.Pagination, error) {
	if filters.Channel != "" && !filters.Channel.Valid() {
		return nil, shared.Pagination{}, shared.Validation("channel", "invalid channel selected")
	}
	if filters.Direction != "" && !filters.Direction.Valid() {
		return nil, shared.Pagination{}, shared.Validation("direction", "invalid direction selected")
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, shared.Pagination{}, shared.Validation("status", "invalid status selected")
	}
	filters.Page, filters.Limit = shared.ClampPageSize(filters.Page, filters.Limit)
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if items == nil {
		items = []ListItem{}
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// RecentForCustomer returns the latest interactions and summary stats for
// a customer detail view.
func (s *Service) RecentForCustomer(ctx context.Context, customerID int64) ([]ListItem, CustomerStats, error) {
	items, err := s.repo.ListRecentForCustomer(ctx, customerID, RecentLimit)
	if err != nil {
		return nil, CustomerStats{}, err
	}
	if items == nil {
		items = []ListItem{}
	}
	stats, err := s.repo.StatsForCustomer(ctx, customerID)
	if err != nil {
		return nil, CustomerStats{}, err
	}
	return items, stats, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	ev := shared.AuditEvent{
		Action:   action,
		Entity:   "interaction",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func validateInput(in Input) (Input, error) {
	if in.CustomerID <= 0 {
		return Input{}, shared.Validation("customer_id", "this field is required")
	}
	if !in.Channel.Valid() {
		return Input{}, shared.Validation("channel", "invalid channel selected")
	}
	if !in.Direction.Valid() {
		return Input{}, shared.Validation("direction", "invalid direction selected")
	}
	if in.Status == "" {
		in.Status = DefaultStatus
	} else if !in.Status.Valid() {
		return Input{}, shared.Validation("status", "invalid status selected")
	}
	in.Summary = strings.TrimSpace(in.Summary)
	if utf8.RuneCountInString(in.Summary) < summaryMinLength {
		return Input{}, shared.Validation("summary", "must be at least 10 characters long")
	}
	in.Notes = strings.TrimSpace(in.Notes)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	return in, nil
}
