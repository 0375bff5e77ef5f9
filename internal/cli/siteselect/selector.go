package siteselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/unilist-dev/unilist/internal/cli/config"
	"github.com/unilist-dev/unilist/internal/cli/userconfig"
)

// ResolveSite determines which site to use based on the following priority:
// 1. If user has a selected site in their local config, use that
// 2. If only one site in project config, use that
// 3. Otherwise, prompt user to select a site interactively
func ResolveSite(projectConfig *config.Config) (*config.Site, error) {
	// Priority 1: Use selected site from user config
	selectedURL, err := userconfig.GetSelectedSite()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		site, err := getSiteByURL(projectConfig, selectedURL)
		if err != nil {
			// Selected site no longer exists in project config, clear it and continue
			_ = userconfig.SetSelectedSite("")
		} else {
			return site, nil
		}
	}

	// Priority 2: If only one site, use it automatically
	if len(projectConfig.Sites) == 1 {
		site := &projectConfig.Sites[0]
		// Save it as the selected site
		if err := userconfig.SetSelectedSite(site.URL); err != nil {
			// Don't fail if we can't save, just continue
			fmt.Printf("Warning: failed to save selected site: %v\n", err)
		}
		return site, nil
	}

	// Priority 3: Prompt user to select a site
	site, err := PromptSiteSelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedSite(site.URL); err != nil {
		fmt.Printf("Warning: failed to save selected site: %v\n", err)
	}

	return site, nil
}

// PromptSiteSelection shows an interactive prompt for the user to select a site
func PromptSiteSelection(projectConfig *config.Config) (*config.Site, error) {
	if len(projectConfig.Sites) == 0 {
		return nil, fmt.Errorf("no sites configured in unilist.json")
	}

	type siteOption struct {
		Label string
		Site  *config.Site
	}

	options := make([]siteOption, len(projectConfig.Sites))
	for i := range projectConfig.Sites {
		site := &projectConfig.Sites[i]
		label := fmt.Sprintf("%s (%s)", site.Alias, site.URL)
		options[i] = siteOption{
			Label: label,
			Site:  site,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a site",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site selection cancelled: %w", err)
	}

	return options[index].Site, nil
}

// getSiteByURL finds a site in the config by its URL
func getSiteByURL(cfg *config.Config, url string) (*config.Site, error) {
	for i := range cfg.Sites {
		if cfg.Sites[i].URL == url {
			return &cfg.Sites[i], nil
		}
	}
	return nil, fmt.Errorf("site with URL '%s' not found in project config", url)
}

// GetSiteByURLOrAlias finds a site by URL or alias
func GetSiteByURLOrAlias(cfg *config.Config, urlOrAlias string) (*config.Site, error) {
	for i := range cfg.Sites {
		if cfg.Sites[i].URL == urlOrAlias {
			return &cfg.Sites[i], nil
		}
	}

	for i := range cfg.Sites {
		if cfg.Sites[i].Alias == urlOrAlias {
			return &cfg.Sites[i], nil
		}
	}

	return nil, fmt.Errorf("site with URL or alias '%s' not found", urlOrAlias)
}
