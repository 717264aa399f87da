package cmd

import (
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/outwriter"
	"github.com/spf13/cobra"
)

// historyCmd lists stored runs.
var historyCmd = &cobra.Command{
	Use:   "history [site-id...]",
	Short: "List stored audit runs.",
	Long: `List the current user's runs, newest first.

Filters:
- positional site IDs restrict the sites
- --strategy mobile or desktop
- --from / --to as RFC 3339 or relative ("7 days ago")
- --limit / --offset for paging, --asc for oldest first`,
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(_ *cobra.Command, args []string) error {
		auditor := newAuditor()
		runs, err := auditor.History(rootCtx, currentUser(), cfg.RunQuery(args))
		if err != nil {
			return err
		}
		sites, err := auditor.Sites(rootCtx, currentUser())
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteHistory(runs, sites, cfg)
	},
}

// dashboardCmd prints the rollups over the current user's sites.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Summarize tracked sites over the last 7 days.",
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(_ *cobra.Command, _ []string) error {
		summary, err := newAuditor().Dashboard(rootCtx, currentUser())
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteDashboard(summary, cfg)
	},
}

// impactCmd derives the business impact of a stored run.
var impactCmd = &cobra.Command{
	Use:     "impact <run-id>",
	Short:   "Estimate bounce rate, revenue risk and SEO penalty from a run's LCP.",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(_ *cobra.Command, args []string) error {
		run, impact, err := newAuditor().Impact(rootCtx, currentUser(), args[0])
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteImpact(run, impact, cfg)
	},
}
