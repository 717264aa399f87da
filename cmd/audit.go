package cmd

import (
	"fmt"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/outwriter"
	"github.com/huangsam/pagepulse/schema"
	"github.com/spf13/cobra"
)

// auditCmd runs one audit for a tracked site.
var auditCmd = &cobra.Command{
	Use:   "audit <site-id>",
	Short: "Run a PageSpeed audit for a tracked site.",
	Long: `Audit the site's URL with the provider, store the normalized run and print
its metrics with the derived business impact.

The strategy comes from --strategy and defaults to mobile.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{Provider: true, User: true}),
	RunE: func(_ *cobra.Command, args []string) error {
		auditor := newAuditor()
		site, err := findSite(auditor, args[0])
		if err != nil {
			return err
		}
		strategy := cfg.Strategy
		if strategy == "" {
			strategy = schema.MobileStrategy
		}

		run, err := auditor.Trigger(rootCtx, currentUser(), schema.AuditRequest{
			SiteID:   site.ID,
			URL:      site.URL,
			Strategy: string(strategy),
		})
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteImpact(run, core.DeriveImpact(run.Metrics.LCPMs), cfg)
	},
}

// batchCmd audits every tracked site once, like the scheduled trigger.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Audit up to 50 tracked sites across all users with the mobile strategy.",
	Long: `Run the scheduled batch locally. Per-site failures are reported and never
stop the batch. Concurrency and provider pacing follow --batch-workers and --batch-qps.`,
	PreRunE: setupWith(contract.Needs{Provider: true}),
	RunE: func(_ *cobra.Command, _ []string) error {
		report, err := newAuditor().RunBatch(rootCtx)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteBatch(report, cfg)
	},
}

// findSite looks up one of the current user's sites.
func findSite(auditor *core.Auditor, siteID string) (*schema.Site, error) {
	sites, err := auditor.Sites(rootCtx, currentUser())
	if err != nil {
		return nil, err
	}
	for i := range sites {
		if sites[i].ID == siteID {
			return &sites[i], nil
		}
	}
	return nil, schema.NewError(schema.KindNotFound, fmt.Sprintf("site %s not found", siteID))
}
