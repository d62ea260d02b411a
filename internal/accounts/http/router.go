package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init --generalInfo router.go --dir . --parseDependency --output ../../../api/accounts --outputTypes go

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Sessions *service.SessionService
	Accounts *service.AccountService
	Cookies  CookieConfig
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Cookies:      DefaultCookieConfig(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every handler. Sessions and Accounts must be set
// first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	User accounts with password and TOTP login.
//	@description
//	@description				Sessions are a pair of RS256 JWTs: a 60 minute access token and a 60 day refresh token, set as HttpOnly cookies and mirrored in the response body.
//	@description				Tokens can be verified with the key published at /.well-known/jwks.json.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT token. Format: "Bearer {token}". The access_token or refresh_token cookie is accepted instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Sessions: r.Sessions, Cookies: r.Cookies}

	r.Mux.Handle("POST /api/v1/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /api/v1/auth/refresh", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("POST /api/v1/auth/totp-qrcode", http.HandlerFunc(h.HandleTOTPQRCode))

	r.Mux.Handle("GET /api/v1/auth/user-info",
		httpx.Chain(http.HandlerFunc(h.HandleUserInfo),
			Authenticate(r.Sessions),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Accounts: r.Accounts}

	r.Mux.Handle("POST /api/v1/user", http.HandlerFunc(h.HandleCreate))
	r.Mux.Handle("GET /api/v1/user", http.HandlerFunc(h.HandleList))
	r.Mux.Handle("GET /api/v1/user/{username}", http.HandlerFunc(h.HandleGet))

	// owner-only
	r.Mux.Handle("PATCH /api/v1/user/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), Authenticate(r.Sessions)),
	)
	r.Mux.Handle("DELETE /api/v1/user/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), Authenticate(r.Sessions)),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))
}
