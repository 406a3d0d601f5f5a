// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	assignmentsfeature "github.com/trusteehub/cams/internal/app/features/assignments"
	authoktafeature "github.com/trusteehub/cams/internal/app/features/authokta"
	healthfeature "github.com/trusteehub/cams/internal/app/features/health"
	ordersfeature "github.com/trusteehub/cams/internal/app/features/orders"
	assignmentstore "github.com/trusteehub/cams/internal/app/store/assignments"
	auditstore "github.com/trusteehub/cams/internal/app/store/audit"
	casestore "github.com/trusteehub/cams/internal/app/store/cases"
	orderstore "github.com/trusteehub/cams/internal/app/store/consolidations"
	"github.com/trusteehub/cams/internal/app/store/oauthstate"
	"github.com/trusteehub/cams/internal/app/store/sessioncache"
	"github.com/trusteehub/cams/internal/app/system/auditlog"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/app/system/gates"
	"github.com/trusteehub/cams/internal/app/system/metrics"
	"github.com/trusteehub/cams/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the service.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed. It builds the session manager, the stores, the
// two workflows, and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	assignStore := assignmentstore.New(db)
	caseStore := casestore.New(db)
	orderStore := orderstore.New(db)
	sessStore := sessioncache.New(db)
	stateStore := oauthstate.New(db)

	auditLogger := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Workflow: appCfg.AuditLogWorkflow,
	})

	assignWorkflow := assignmentsfeature.NewWorkflow(caseStore, assignStore, logger)
	orderWorkflow := ordersfeature.NewWorkflow(orderStore, caseStore, assignWorkflow, logger)

	r := chi.NewRouter()

	// Loads the SessionUser into context for every request that carries a
	// valid session cookie.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	oktaHandler := authoktafeature.NewHandler(
		sessionMgr, auditLogger, sessStore, stateStore,
		appCfg.OktaIssuer, appCfg.OktaClientID, appCfg.OktaClientSecret,
		appCfg.BaseURL, appCfg.SessionMaxAge, logger)
	r.Mount("/auth/okta", authoktafeature.Routes(oktaHandler))

	assignHandler := assignmentsfeature.NewHandler(assignWorkflow, auditLogger, logger)
	r.Mount("/api/case-assignments", assignmentsfeature.Routes(assignHandler, sessionMgr))

	orderHandler := ordersfeature.NewHandler(orderWorkflow, auditLogger, logger)
	r.Mount("/api/consolidation-orders", ordersfeature.Routes(orderHandler, sessionMgr))

	// Admin endpoints sit behind the shared-key gate rather than a user
	// session so operators can hit them from automation.
	adminGate := gates.NewAdminKeyGate(appCfg.AdminKeyHash, logger)
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(adminGate.Require)
		ar.Post("/reindex", reindexHandler(coreCfg, appCfg, deps, logger))
	})

	return r, nil
}

// reindexHandler re-runs index creation on demand, for use after restoring
// a database or changing index definitions.
func reindexHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
		defer cancel()

		if err := EnsureSchema(ctx, coreCfg, appCfg, deps, logger); err != nil {
			logger.Error("reindex failed", zap.Error(err))
			http.Error(w, "reindex failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
