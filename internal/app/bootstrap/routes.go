// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"time"

	activitiesfeature "github.com/dalemusser/stajyerlog/internal/app/features/activities"
	dashboardfeature "github.com/dalemusser/stajyerlog/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stajyerlog/internal/app/features/health"
	homefeature "github.com/dalemusser/stajyerlog/internal/app/features/home"
	loginfeature "github.com/dalemusser/stajyerlog/internal/app/features/login"
	logoutfeature "github.com/dalemusser/stajyerlog/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/stajyerlog/internal/app/features/notifications"
	registerfeature "github.com/dalemusser/stajyerlog/internal/app/features/register"
	settingsfeature "github.com/dalemusser/stajyerlog/internal/app/features/settings"
	studentsfeature "github.com/dalemusser/stajyerlog/internal/app/features/students"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/metrics"
	"github.com/dalemusser/stajyerlog/internal/app/system/ratelimit"
	"github.com/dalemusser/stajyerlog/internal/app/system/requestlog"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// MsgCSRFFailed is shown when a form token is missing or stale.
const MsgCSRFFailed = "Oturum doğrulaması başarısız oldu. Lütfen sayfayı yenileyip tekrar deneyin."

// loginLimiter is built with the handler and stopped by Shutdown.
var loginLimiter *ratelimit.LoginLimiter

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The activity log boots the template engine, builds the shared services
// (identity, statistics, metrics, login limiter), installs the global
// middleware chain and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	dev := coreCfg.Env == "dev"
	secure := coreCfg.Env == "prod"

	loc, err := time.LoadLocation(appCfg.TimeZone)
	if err != nil {
		logger.Error("time zone load failed", zap.String("timezone", appCfg.TimeZone), zap.Error(err))
		return nil, err
	}

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	idSvc := identity.New(db, appCfg.SessionMaxAge, logger)

	// LoadSessionUser resolves the cookie against the server-side session on
	// every request, so a newer login elsewhere ends this one immediately.
	sessionMgr.SetUserFetcher(idSvc)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(dev)
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	statsSvc := stats.New(db, loc, logger).OnFailure(m.StatFailure)
	loginLimiter = ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestlog.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	// Health and metrics sit outside CSRF and session handling.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		if dev {
			app.Use(markPlaintext)
		}
		app.Use(csrf.Protect(csrfKey(appCfg),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("csrf check failed",
					zap.String("request_id", requestlog.ID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(csrf.FailureReason(r)))
				errorsfeature.RenderForbidden(w, r, MsgCSRFFailed, "/")
			})),
		))

		// Global auth middleware: loads SessionUser (with role) into context
		// once per request, then pops pending toasts.
		app.Use(sessionMgr.LoadSessionUser)
		app.Use(sessionMgr.LoadFlashes)

		homeHandler := homefeature.NewHandler(logger)
		app.Mount("/", homefeature.Routes(homeHandler, sessionMgr))

		// Authentication
		loginHandler := loginfeature.NewHandler(idSvc, sessionMgr, loginLimiter, m, errLog, logger)
		app.Mount("/login", loginfeature.Routes(loginHandler, sessionMgr))

		registerHandler := registerfeature.NewHandler(idSvc, sessionMgr, errLog, logger)
		app.Mount("/register", registerfeature.Routes(registerHandler, sessionMgr))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, idSvc, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		app.Get("/forbidden", errorsHandler.Forbidden)
		app.NotFound(errorsHandler.NotFound)

		// Interns and managers
		activitiesHandler := activitiesfeature.NewHandler(db, idSvc, statsSvc, sessionMgr, errLog, logger)
		app.Mount("/activities", activitiesfeature.Routes(activitiesHandler, sessionMgr))

		notificationsHandler := notificationsfeature.NewHandler(db, idSvc, loc, errLog, logger)
		app.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

		settingsHandler := settingsfeature.NewHandler(idSvc, sessionMgr, errLog, logger)
		app.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

		// Managers only
		dashboardHandler := dashboardfeature.NewHandler(db, idSvc, statsSvc, errLog, logger)
		app.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		studentsHandler := studentsfeature.NewHandler(db, idSvc, statsSvc, sessionMgr, errLog, logger)
		app.Mount("/students", studentsfeature.Routes(studentsHandler, sessionMgr))
	})

	return r, nil
}

// csrfKey derives the 32-byte gorilla/csrf key from csrf_key, or from
// session_key when csrf_key is blank.
func csrfKey(appCfg AppConfig) []byte {
	secret := appCfg.CSRFKey
	if secret == "" {
		secret = "csrf:" + appCfg.SessionKey
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// markPlaintext tells gorilla/csrf the request arrived over plain HTTP, so
// local development skips the HTTPS referer check.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
