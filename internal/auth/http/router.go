package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/authlog"
	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"

	_ "github.com/aussiebroadwan/assettrack/api/auth" // Swagger docs
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	Sessions     *session.Manager
	AuthLog      authlog.Recorder
	AuthService  *service.AuthService
	MFAService   *service.MFAService
	SetupService *service.SetupService
	RolesService *service.RolesService

	// AllowedOrigins enables CORS with credentials for these origins. Empty
	// means same-origin only.
	AllowedOrigins []string
}

func NewRouter(
	signer jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		AuthLog:      authlog.Discard{},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if len(r.AllowedOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
			AllowedOrigins:   r.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", authsdk.SetupResetTokenHeader},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.registerLogin()
	r.registerUsers()
	r.registerMFA()
	r.registerSetup()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			AssetTrack Authentication API
//	@version		0.1.0
//	@description	Session based login, MFA enrollment and verification for AssetTrack.
//	@description
//	@description	Logging in sets the assettrack.sid cookie. Users with MFA get it only after /api/mfa/verify.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/assettrack
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		AuthService: r.AuthService,
		Sessions:    r.Sessions,
		AuthLog:     r.AuthLog,
	}

	// POST /api/login - strict rate limit by IP + username field
	r.Mux.Handle("POST /api/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// POST /api/mfa/verify - strict rate limit by IP + target user (TOTP brute force)
	r.Mux.Handle("POST /api/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyMFA),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "userId"),
		),
	)

	// POST /api/logout - never fails, session optional
	r.Mux.Handle("POST /api/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.LoadSession(r.Sessions),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{AuthService: r.AuthService}

	// POST /api/register - strict by IP; an admin session unlocks isAdmin/roleId
	r.Mux.Handle("POST /api/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.LoadSession(r.Sessions),
		),
	)

	me := httpx.Chain(http.HandlerFunc(h.HandleMe),
		httpx.RequireSession(r.Sessions),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /api/user", me)
	r.Mux.Handle("GET /api/me", me)

	r.Mux.Handle("POST /api/user/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.RequireSession(r.Sessions),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.RequireSession(r.Sessions),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /api/mfa/setup", secured(h.HandleSetup, httpx.ModerateLimit))
	r.Mux.Handle("POST /api/mfa/enable", secured(h.HandleEnable, httpx.StrictLimit))
	r.Mux.Handle("POST /api/mfa/disable", secured(h.HandleDisable, httpx.StrictLimit))
	r.Mux.Handle("GET /api/mfa/status", secured(h.HandleStatus, httpx.LenientLimit))

	// POST /api/admin/disable-mfa/{userId} - admin recovery
	r.Mux.Handle("POST /api/admin/disable-mfa/{userId}",
		httpx.Chain(http.HandlerFunc(h.HandleAdminDisable),
			httpx.RequireSession(r.Sessions),
			httpx.RequireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSetup() {
	h := &SetupHandler{
		SetupService: r.SetupService,
		Permissions:  r.AuthService.Permissions,
	}

	r.Mux.Handle("GET /api/setup",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Setup writes are one-shot; keep them strict
	r.Mux.Handle("POST /api/setup/admin",
		httpx.Chain(http.HandlerFunc(h.HandleCreateAdmin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/setup/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.Mux.Handle("GET /api/roles",
		httpx.Chain(h,
			httpx.RequireSession(r.Sessions),
			httpx.RequireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
