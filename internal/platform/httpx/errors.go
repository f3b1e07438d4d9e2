package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Business failures carry their own status; anything unrecognised is an
// infrastructure fault and surfaces as a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	var vErr shared.ValidationError
	var cErr shared.ConflictError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &cErr):
		FieldProblem(w, http.StatusConflict, "Conflict", cErr.Field, cErr.Reason)
	case errors.As(err, &vErr):
		FieldProblem(w, http.StatusBadRequest, "Validation Failed", vErr.Field, vErr.Reason)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
