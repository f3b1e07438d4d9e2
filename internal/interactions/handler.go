package interactions

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler wires the interaction JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers interaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/interactions", h.list)
	r.Post("/interactions", h.create)
	r.Get("/interactions/{id}", h.get)
	r.Put("/interactions/{id}", h.update)
	r.Delete("/interactions/{id}", h.delete)
	r.Get("/customers/{id}/interactions", h.recentForCustomer)
}

type interactionRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Channel    string `json:"channel" validate:"required"`
	Direction  string `json:"direction" validate:"required"`
	Status     string `json:"status" validate:"omitempty"`
	Summary    string `json:"summary" validate:"required,min=10"`
	Notes      string `json:"notes" validate:"omitempty"`
	CreatedBy  string `json:"created_by" validate:"omitempty,max=100"`
}

func (req interactionRequest) input() Input {
	return Input{
		CustomerID: req.CustomerID,
		Channel:    Channel(req.Channel),
		Direction:  Direction(req.Direction),
		Status:     Status(req.Status),
		Summary:    req.Summary,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	}
}

type listResponse struct {
	Interactions []ListItem        `json:"interactions"`
	Pagination   shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	customerID, _ := strconv.ParseInt(q.Get("customer"), 10, 64)

	filters := ListFilters{
		CustomerID: customerID,
		Channel:    Channel(q.Get("channel")),
		Direction:  Direction(q.Get("direction")),
		Status:     Status(q.Get("status")),
		Page:       page,
		Limit:      limit,
	}
	var ok bool
	if filters.DateFrom, ok = parseDateParam(w, q.Get("date_from"), "date_from"); !ok {
		return
	}
	if filters.DateTo, ok = parseDateParam(w, q.Get("date_to"), "date_to"); !ok {
		return
	}

	items, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondServiceError(w, "list interactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Interactions: items, Pagination: pagination})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	interaction, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.respondServiceError(w, "create interaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, interaction)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	interaction, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get interaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, interaction)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req interactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	interaction, err := h.service.Update(r.Context(), id, req.input())
	if err != nil {
		h.respondServiceError(w, "update interaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, interaction)
}

// delete removes an interaction permanently, unlike customer deletion
// which only deactivates.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, "delete interaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recentResponse struct {
	Interactions []ListItem    `json:"interactions"`
	Stats        CustomerStats `json:"stats"`
}

func (h *Handler) recentForCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	items, stats, err := h.service.RecentForCustomer(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "recent interactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, recentResponse{Interactions: items, Stats: stats})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if !httpx.IsBusinessError(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseDateParam(w http.ResponseWriter, raw, field string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", field+" must be formatted YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
