// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"

	userstore "github.com/dalemusser/bookcourier/internal/app/store/users"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}

	if email := strings.TrimSpace(appCfg.AdminEmail); email != "" {
		if err := ensureAdmin(ctx, deps, email, logger); err != nil {
			logger.Error("ensure admin failed", zap.String("email", email), zap.Error(err))
			return err
		}
	}
	return nil
}

// ensureAdmin creates the user for email if needed and gives it the admin role.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	inserted, err := users.EnsureByEmail(ctx, models.User{Email: email, Name: "Admin"})
	if err != nil {
		return err
	}
	if err := users.SetRole(ctx, email, models.RoleAdmin); err != nil {
		return err
	}

	if inserted {
		logger.Info("created admin user", zap.String("email", email))
	} else {
		logger.Info("ensured admin role", zap.String("email", email))
	}
	return nil
}
