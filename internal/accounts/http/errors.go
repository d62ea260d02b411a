package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// writeServiceError translates a service error into its HTTP response.
// unauthorized is what ErrUnauthorized becomes, since a failed login and a
// bad token are reported differently. Unknown errors are logged and
// returned as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, unauthorized *accountsdk.APIError) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		(&accountsdk.ValidationError{
			Message: "request validation failed",
			Details: verr.Fields,
		}).WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		unauthorized.WriteError(w)
	case errors.Is(err, service.ErrInactiveUser):
		accountsdk.ErrInactiveUser.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		accountsdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		accountsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrConflict):
		accountsdk.ErrConflict.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		accountsdk.ErrServerError.WriteError(w)
	}
}

// writeInvalidBody reports a body that could not be decoded.
func writeInvalidBody(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Debug("invalid request body", "err", err)
	accountsdk.ErrInvalidRequest.WriteError(w)
}
