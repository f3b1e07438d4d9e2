package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Handler wires the customer JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.create)
	r.Get("/customers/search", h.search)
	r.Get("/customers/{id}", h.get)
	r.Put("/customers/{id}", h.update)
	r.Delete("/customers/{id}", h.deactivate)
}

type customerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address" validate:"required"`
	SocialMedia string `json:"social_media" validate:"omitempty,max=100"`
}

func (req customerRequest) input() Input {
	return Input{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		SocialMedia: req.SocialMedia,
	}
}

type listResponse struct {
	Customers  []ListItem        `json:"customers"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filters := ListFilters{
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}
	if raw := q.Get("active_only"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filters.ActiveOnly = &active
		}
	}

	items, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []ListItem{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Customers: items, Pagination: pagination})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	customer, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.respondServiceError(w, "create customer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	customer, err := h.service.Update(r.Context(), id, req.input())
	if err != nil {
		h.respondServiceError(w, "update customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// deactivate is the DELETE endpoint: customers are soft-deleted only.
func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "deactivate customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

type searchItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondServiceError(w, "search customers", err)
		return
	}
	results := make([]searchItem, 0, len(items))
	for _, it := range items {
		results = append(results, searchItem{ID: it.ID, Name: it.Name, Email: it.Email, Phone: it.Phone})
	}
	httpx.JSON(w, http.StatusOK, map[string][]searchItem{"customers": results})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
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
