package cmd

import (
	"context"

	"github.com/huangsam/pagepulse/internal/api"
	"github.com/huangsam/pagepulse/internal/auth"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/store"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit API over HTTP.",
	Long: `Start the HTTP API.

Routes:
- POST /api/runs            trigger an audit (bearer token)
- GET  /api/runs            history query
- GET  /api/runs/{id}/impact
- GET  /api/dashboard
- /api/sites                site management
- GET  /api/cron/daily      batch audit (cron secret)
- GET  /healthz, /metrics`,
	PreRunE: setupWith(contract.Needs{Provider: true, Server: true}),
	RunE: func(_ *cobra.Command, _ []string) error {
		s := store.Global.GetStore()
		srv := &api.Server{
			Auditor:        newAuditor(),
			Identity:       auth.NewVerifier(cfg.JWTSecret),
			CronSecret:     cfg.CronSecret,
			AllowedOrigins: cfg.AllowedOrigins,
			Metrics:        recorder,
			Status: func(ctx context.Context) error {
				_, err := s.GetStatus(ctx)
				return err
			},
			Logger: logger.Component("api"),
		}
		return srv.ListenAndServe(rootCtx, cfg.Listen)
	},
}
