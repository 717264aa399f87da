package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/outwriter"
	"github.com/huangsam/pagepulse/schema"
	"github.com/spf13/cobra"
)

// sitesCmd groups site management.
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage tracked sites.",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var sitesAddCmd = &cobra.Command{
	Use:     "add <url>",
	Short:   "Track a new site. A missing scheme defaults to https.",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		site, err := newAuditor().AddSite(rootCtx, currentUser(), args[0], name)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSites([]schema.Site{*site}, cfg)
	},
}

var sitesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tracked sites.",
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(_ *cobra.Command, _ []string) error {
		sites, err := newAuditor().Sites(rootCtx, currentUser())
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSites(sites, cfg)
	},
}

var sitesRenameCmd = &cobra.Command{
	Use:     "rename <site-id>",
	Short:   "Change a site's name and/or URL.",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(cmd *cobra.Command, args []string) error {
		var update core.SiteUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			update.Name = &name
		}
		if cmd.Flags().Changed("url") {
			url, _ := cmd.Flags().GetString("url")
			update.URL = &url
		}
		if update.Name == nil && update.URL == nil {
			return fmt.Errorf("nothing to change: pass --name and/or --url")
		}
		site, err := newAuditor().UpdateSite(rootCtx, currentUser(), args[0], update)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSites([]schema.Site{*site}, cfg)
	},
}

var sitesDeleteCmd = &cobra.Command{
	Use:     "delete <site-id>",
	Short:   "Stop tracking a site and delete its runs.",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{User: true}),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := newAuditor().RemoveSite(rootCtx, currentUser(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "🗑️  Deleted site %s and its runs\n", args[0])
		return nil
	},
}
