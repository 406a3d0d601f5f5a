// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminKeyHash == "" {
		logger.Warn("admin_key_hash not set; admin endpoints are disabled")
	}
	if appCfg.OktaIssuer == "" {
		logger.Warn("okta_issuer not set; interactive login is disabled")
	}
	return nil
}
