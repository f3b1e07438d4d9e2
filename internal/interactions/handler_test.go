package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (chi.Router, *Service) {
	svc, _ := newTestService()
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, svc
}

func TestCreateInteractionEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"customer_id":1,"channel":"phone","direction":"inbound","summary":"Called customer about billing"}`
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var created Interaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, StatusCompleted, created.Status)
	require.Equal(t, "John Doe", created.CustomerName)
}

func TestCreateInteractionEndpointShortSummary(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"customer_id":1,"channel":"phone","direction":"inbound","summary":"Hi"}`
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, "summary", problem["field"])
}

func TestCreateInteractionEndpointMissingCustomer(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"customer_id":99,"channel":"phone","direction":"inbound","summary":"Called customer about billing"}`
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteInteractionEndpoint(t *testing.T) {
	router, svc := newTestRouter()
	it, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/interactions/%d", it.ID), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/interactions/%d", it.ID), nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListEndpointRejectsBadDate(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/interactions?date_from=junk", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecentForCustomerEndpoint(t *testing.T) {
	router, svc := newTestRouter()
	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/customers/1/interactions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp recentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Interactions, 1)
	require.Equal(t, int64(1), resp.Stats.Total)
}
