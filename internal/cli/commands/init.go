package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <gateway-url>",
		Short: "Register a Unilist gateway in ./unilist.json",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	siteURL := config.NormalizeURL(args[0])
	if siteURL == "" {
		return fmt.Errorf("gateway URL is empty")
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Println("Found existing unilist.json")
	} else {
		cfg = &config.Config{
			Sites: []config.Site{},
		}
		isNewConfig = true
	}

	// Check if site already exists
	siteExists := false
	for _, site := range cfg.Sites {
		if site.URL == siteURL {
			siteExists = true
			break
		}
	}

	if siteExists {
		fmt.Printf("Site %s already exists in unilist.json\n", siteURL)
		return nil
	}

	alias := "production"
	if len(cfg.Sites) > 0 {
		alias = fmt.Sprintf("site-%d", len(cfg.Sites)+1)
	}

	cfg.Sites = append(cfg.Sites, config.Site{
		URL:   siteURL,
		Alias: alias,
	})

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Printf("✓ Created ./unilist.json with site %s (%s)\n", siteURL, alias)
	} else {
		fmt.Printf("✓ Added site %s (%s) to ./unilist.json\n", siteURL, alias)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'unilist login' to authenticate")
	fmt.Println("  2. Run 'unilist ls universities' to browse cached listings")

	return nil
}
