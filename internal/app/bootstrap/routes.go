// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	dashboardfeature "github.com/dalemusser/stratapage/internal/app/features/dashboard"
	editorfeature "github.com/dalemusser/stratapage/internal/app/features/editor"
	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratapage/internal/app/features/health"
	homefeature "github.com/dalemusser/stratapage/internal/app/features/home"
	loginfeature "github.com/dalemusser/stratapage/internal/app/features/login"
	logoutfeature "github.com/dalemusser/stratapage/internal/app/features/logout"
	pagesfeature "github.com/dalemusser/stratapage/internal/app/features/pages"
	appresources "github.com/dalemusser/stratapage/internal/app/resources"
	draftstore "github.com/dalemusser/stratapage/internal/app/store/drafts"
	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratapage/internal/app/store/users"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/generator"
	"github.com/dalemusser/stratapage/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// requestTimeout bounds every request except the editor, whose AI
// generation gets genai_timeout plus editorTimeoutSlack.
const (
	requestTimeout     = 30 * time.Second
	editorTimeoutSlack = 15 * time.Second
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed.
//
// Route access:
//   - /, /login, /p/{slug}, /health, /assets: public
//   - /dashboard, /editor/{id}: signed-in users; others are sent to
//     /login?return=<uri>
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the user on each request so a disabled
	// account loses access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	collector := metrics.New("stratapage")

	drafts := draftstore.New(deps.MongoDatabase, appCfg.DraftTTL)
	genCfg := generator.DefaultConfig()
	genCfg.Timeout = appCfg.GenAITimeout
	contentGen := generator.New(deps.Model, genCfg, collector, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for every form post. Cookie name is "stratapage_csrf"
	// to avoid collisions with other services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratapage_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		// Prometheus metrics
		r.Handle("/metrics", collector.Handler())

		// Health check endpoints for load balancers and orchestrators
		healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
		r.Mount("/health", healthfeature.Routes(healthHandler))
		healthfeature.MountRootEndpoints(r, healthHandler)

		// /static/* serves files from disk (static directory)
		r.Handle("/static/*", fileserver.Handler("/static", "static"))

		// /assets/* serves embedded assets (bundled into the binary)
		r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

		// Uploaded section images (local storage only)
		if appCfg.StorageType == "local" || appCfg.StorageType == "" {
			r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
		}

		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		// Published landing pages
		pagesHandler := pagesfeature.NewHandler(deps.MongoDatabase, collector, errLog, logger)
		r.Mount("/p", pagesfeature.Routes(pagesHandler))

		// Rate limiting for sign-in attempts (nil if disabled)
		var rateLimitStore *ratelimit.Store
		if appCfg.RateLimitEnabled {
			rateLimitStore = ratelimit.New(
				deps.MongoDatabase,
				appCfg.RateLimitLoginAttempts,
				appCfg.RateLimitLoginWindow,
				appCfg.RateLimitLoginLockout,
			)
		}
		loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, rateLimitStore, errLog, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, drafts, sessionMgr, collector, errLog, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(appCfg.GenAITimeout + editorTimeoutSlack))

		editorHandler := editorfeature.NewHandler(editorfeature.Deps{
			Pages:      pagestore.New(deps.MongoDatabase),
			Drafts:     drafts,
			Generator:  contentGen,
			Images:     deps.ImageStorage,
			SessionMgr: sessionMgr,
			Metrics:    collector,
			ErrLog:     errLog,
			Logger:     logger,
		})
		r.Mount("/editor", editorfeature.Routes(editorHandler, sessionMgr))
	})

	// 404 catch-all for unmatched routes
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
