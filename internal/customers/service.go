package customers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// SearchLimit caps autocomplete results.
const SearchLimit = 10

// searchMinLength is the minimum query length for autocomplete search.
const searchMinLength = 2

var (
	nameRe  = regexp.MustCompile(`^[\p{L} ]+$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

// rule describes one field constraint. The table is the single validation
// authority shared by every write path, so a direct service call is
// checked exactly like a request arriving through the HTTP layer.
type rule struct {
	field    string
	required bool
	minLen   int
	pattern  *regexp.Regexp
	message  string
}

var customerRules = []rule{
	{field: "name", required: true, minLen: 2, pattern: nameRe, message: "should only contain letters and spaces"},
	{field: "email", required: true, pattern: emailRe, message: "must be a valid email address"},
	{field: "phone", required: true, pattern: phoneRe, message: "must be entered in the format '+999999999', up to 15 digits"},
	{field: "address", required: true},
	{field: "social_media"},
}

// Service owns customer business rules: normalisation, the validation
// table, and audit recording around the repository.
type Service struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
}

// NewService creates a new customer service.
func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, audit: audit}
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, in Input) (Customer, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Customer{}, err
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, "customer.create", c.ID, map[string]any{"name": c.Name})
	s.logger.Info("created customer", slog.Int64("id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// Update validates and replaces the writable fields of an existing customer.
// Uniqueness excludes the record itself: the stored email is replaced in the
// same statement the unique index checks.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Customer, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Customer{}, err
	}
	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, "customer.update", c.ID, map[string]any{"name": c.Name})
	s.logger.Info("updated customer", slog.Int64("id", c.ID))
	return c, nil
}

// Deactivate soft-deletes a customer. Interaction history stays untouched.
func (s *Service) Deactivate(ctx context.Context, id int64) (Customer, error) {
	c, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, "customer.deactivate", c.ID, nil)
	s.logger.Info("deactivated customer", slog.Int64("id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// Delete hard-deletes a customer; the database cascades to interactions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "customer.delete", id, nil)
	s.logger.Info("deleted customer", slog.Int64("id", id))
	return nil
}

// Get returns a customer with derived interaction statistics.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered, name-ordered customer page.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]ListItem, shared.Pagination, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	filters.Page, filters.Limit = shared.ClampPageSize(filters.Page, filters.Limit)
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Search performs autocomplete lookup over active customers. Queries
// shorter than two characters return an empty result.
func (s *Service) Search(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < searchMinLength {
		return []ListItem{}, nil
	}
	items, err := s.repo.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ListItem{}
	}
	return items, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	ev := shared.AuditEvent{
		Action:   action,
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.SocialMedia = normalizeSocialMedia(in.SocialMedia)
	return in
}

// normalizeSocialMedia prefixes bare handles with "@". URLs and already
// prefixed handles pass through unchanged.
func normalizeSocialMedia(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "@") || strings.Contains(strings.ToLower(v), "http") {
		return v
	}
	return "@" + v
}

func validate(in Input) error {
	fields := map[string]string{
		"name":         in.Name,
		"email":        in.Email,
		"phone":        in.Phone,
		"address":      in.Address,
		"social_media": in.SocialMedia,
	}
	for _, r := range customerRules {
		v := fields[r.field]
		if v == "" {
			if r.required {
				return shared.Validation(r.field, "this field is required")
			}
			continue
		}
		if r.minLen > 0 && utf8.RuneCountInString(v) < r.minLen {
			return shared.Validation(r.field, fmt.Sprintf("must be at least %d characters long", r.minLen))
		}
		if r.pattern != nil && !r.pattern.MatchString(v) {
			return shared.Validation(r.field, r.message)
		}
	}
	return nil
}
