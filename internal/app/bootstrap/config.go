// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Defaults that LoadConfig falls back to when a value does not parse.
const (
	defaultTimeZone        = "Europe/Istanbul"
	defaultSessionMaxAge   = 24 * time.Hour
	defaultLoginRateWindow = time.Minute
	minProdSessionKeyLen   = 32
)

// appConfigKeys defines the configuration keys for the activity log.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STAJYERLOG_MONGO_URI, STAJYERLOG_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stajyerlog", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (at least 32 bytes in production)"},
	{Name: "session_name", Default: "stajyerlog-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (cookie and server-side record)"},
	{Name: "csrf_key", Default: "", Desc: "CSRF token key (blank derives it from session_key)"},

	{Name: "timezone", Default: defaultTimeZone, Desc: "IANA time zone that defines today and calendar days"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window (e.g., 1m, 5m)"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},

	// Manager bootstrap
	{Name: "seed_manager_email", Default: "", Desc: "Email of a manager account created on startup if missing"},
	{Name: "seed_manager_password", Default: "", Desc: "Password for the seeded manager"},
	{Name: "seed_manager_name", Default: "", Desc: "Display name for the seeded manager"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, STAJYERLOG_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STAJYERLOG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", defaultSessionMaxAge),
		CSRFKey:       appValues.String("csrf_key"),

		TimeZone: strings.TrimSpace(appValues.String("timezone")),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", defaultLoginRateWindow),

		MetricsEnabled: appValues.Bool("metrics_enabled"),

		SeedManagerEmail:    strings.TrimSpace(appValues.String("seed_manager_email")),
		SeedManagerPassword: appValues.String("seed_manager_password"),
		SeedManagerName:     strings.TrimSpace(appValues.String("seed_manager_name")),
	}
	if appCfg.TimeZone == "" {
		appCfg.TimeZone = defaultTimeZone
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// It checks the MongoDB URI format, the time zone, the session key strength
// in production, and that the manager seed is either complete or absent.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database must not be empty")
	}

	if strings.EqualFold(appCfg.TimeZone, "Local") {
		return fmt.Errorf("timezone must be an IANA name such as %q, not %q", defaultTimeZone, appCfg.TimeZone)
	}
	if _, err := time.LoadLocation(appCfg.TimeZone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", appCfg.TimeZone, err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minProdSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d bytes in production", minProdSessionKeyLen)
	}
	if appCfg.SessionMaxAge <= 0 {
		return errors.New("session_max_age must be positive")
	}

	if appCfg.Seeding() {
		if appCfg.SeedManagerEmail == "" || appCfg.SeedManagerPassword == "" || appCfg.SeedManagerName == "" {
			return errors.New("seed_manager_email, seed_manager_password and seed_manager_name must be set together")
		}
	}

	return nil
}
