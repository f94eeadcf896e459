// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/stajyerlog/internal/app/resources"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// the shared templates and seeds the configured manager account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.Seeding() {
		if err := seedManager(ctx, deps, appCfg, logger); err != nil {
			return err
		}
	}
	return nil
}

// seedManager creates the manager account and profile when the email is not
// registered yet. An existing account is left untouched.
func seedManager(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	sctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	svc := identity.New(deps.MongoDatabase, appCfg.SessionMaxAge, logger)
	created, err := svc.EnsureManager(sctx, appCfg.SeedManagerEmail, appCfg.SeedManagerPassword, appCfg.SeedManagerName)
	if err != nil {
		logger.Error("manager seed failed", zap.String("email", appCfg.SeedManagerEmail), zap.Error(err))
		return fmt.Errorf("seed manager: %w", err)
	}
	if created {
		logger.Info("seeded manager account", zap.String("email", appCfg.SeedManagerEmail))
	} else {
		logger.Info("manager account already present", zap.String("email", appCfg.SeedManagerEmail))
	}
	return nil
}
