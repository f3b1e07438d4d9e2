package reporting

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// Handler wires the reporting JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/summary", h.summary)
	r.Get("/reports/extended", h.extended)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	days := DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary, err := h.service.Summary(r.Context(), days)
	if err != nil {
		h.logger.Error("summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) extended(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ExtendedSummary(r.Context())
	if err != nil {
		h.logger.Error("extended report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
