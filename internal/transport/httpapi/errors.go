package httpapi

import (
	"errors"
	"net/http"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
	"github.com/xtding233/gacha-sim/internal/sim"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownPool), errors.Is(err, errBadRequest),
		errors.Is(err, sim.ErrInvalid):
		return http.StatusBadRequest
	case gacha.IsPoolEmpty(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")
