// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports, TLS,
// logging level, and request body limits. Everything below is specific to
// the activity log.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie. SessionMaxAge also bounds the server-side session.
	SessionKey    string
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// CSRFKey signs gorilla/csrf tokens. Blank derives it from SessionKey.
	CSRFKey string

	// TimeZone is the IANA zone that defines "today" and calendar days.
	TimeZone string

	// Login throttling: attempts per window from one IP.
	LoginRateLimit  int
	LoginRateWindow time.Duration

	MetricsEnabled bool

	// Manager seed. All three must be set, or none.
	SeedManagerEmail    string
	SeedManagerPassword string
	SeedManagerName     string
}

// Seeding reports whether a manager account should be ensured at startup.
func (c AppConfig) Seeding() bool {
	return c.SeedManagerEmail != "" || c.SeedManagerPassword != "" || c.SeedManagerName != ""
}
