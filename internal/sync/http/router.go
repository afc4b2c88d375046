package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/service"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/httpx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"

	_ "github.com/aussiebroadwan/magsync/api/sync" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TokenService *service.TokenService
	Vault        *service.SettingsVault
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerToken()
	r.registerSettings()
	r.registerPrintJobs()
	r.registerSyncRuns()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MagSync Service API
//	@version		0.1.0
//	@description	Operational API of the marketplace sync service: managed OAuth token status
//	@description	and refresh, application settings, the shipment label print queue, and
//	@description	background sync run history.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/magsync
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

func (r *Router) registerToken() {
	statusHandler := &TokenStatusHandler{TokenService: r.TokenService}
	r.Mux.Handle("GET /v1/allegro/token",
		httpx.Chain(statusHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /refresh hits the provider's token endpoint; keep it strict.
	refreshHandler := &TokenRefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/allegro/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{Vault: r.Vault, Settings: r.store.Settings()}

	r.Mux.Handle("GET /v1/settings",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/settings/{key}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/settings/{key}",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPrintJobs() {
	h := &PrintJobsHandler{Jobs: r.store.PrintJobs()}

	r.Mux.Handle("GET /v1/print-jobs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/print-jobs/{id}/retry",
		httpx.Chain(http.HandlerFunc(h.HandleRetry),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSyncRuns() {
	h := &SyncRunsHandler{Runs: r.store.SyncRuns()}

	r.Mux.Handle("GET /v1/sync-runs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
