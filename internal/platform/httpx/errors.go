package httpx

import (
	"errors"
	"net/http"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Unknown errors become a
// generic 500 so persistence details never leak to callers.
func RespondError(w http.ResponseWriter, err error) {
	var stockErr *shared.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		Fail(w, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrHasDependents):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrDiscountUnavailable):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
