package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/config"
	"github.com/unilist-dev/unilist/internal/cli/siteselect"
	"github.com/unilist-dev/unilist/internal/cli/userconfig"
)

// NewSelectSiteCmd creates the select-site command
func NewSelectSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-site [url-or-alias]",
		Short: "Select the gateway to use for commands",
		Long: `Select the gateway to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ unilist select-site                              # Interactive selection
  $ unilist select-site https://listings.example.com # Select by URL
  $ unilist select-site production                   # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectSite(urlOrAlias)
		},
	}

	return cmd
}

func runSelectSite(urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'unilist init' to create a configuration file", err)
	}

	var site *config.Site

	if urlOrAlias != "" {
		site, err = siteselect.GetSiteByURLOrAlias(cfg, urlOrAlias)
		if err != nil {
			return err
		}
	} else {
		site, err = siteselect.PromptSiteSelection(cfg)
		if err != nil {
			return err
		}
	}

	if err := userconfig.SetSelectedSite(site.URL); err != nil {
		return fmt.Errorf("failed to save selected site: %w", err)
	}

	fmt.Printf("Selected site: %s (%s)\n", site.Alias, site.URL)
	return nil
}
