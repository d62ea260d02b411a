package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type ctxKey struct{}

// Authenticate resolves the access token (cookie first, then bearer header)
// to an active user and stores it on the request context.
func Authenticate(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, err := httpx.ExtractToken(r, AccessCookieName)
			if err != nil {
				accountsdk.ErrInvalidToken.WriteError(w)
				return
			}

			user, err := sessions.Identify(ctx, raw)
			if err != nil {
				writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
				return
			}

			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("user_id", user.ID))
			ctx = context.WithValue(ctx, ctxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the user stored by Authenticate.
func currentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.User)
	return u, ok
}
