package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = "unilist.json"

// Site represents one Unilist gateway deployment
type Site struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

// Config represents the CLI configuration file
type Config struct {
	Sites []Site `json:"sites"`
}

// DefaultConfig returns a default configuration with an example site
func DefaultConfig() *Config {
	return &Config{
		Sites: []Site{
			{
				URL:   "",
				Alias: "e.g. production gateway",
			},
		},
	}
}

// FindConfigFile searches for unilist.json in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find unilist.json or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unilist.json not found in %s or any parent directory", currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NormalizeURL ensures the site URL carries a scheme and no trailing slash
func NormalizeURL(raw string) string {
	url := strings.TrimRight(strings.TrimSpace(raw), "/")
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}

// GetSiteByAlias returns a site by its alias
func (c *Config) GetSiteByAlias(alias string) (*Site, error) {
	for _, site := range c.Sites {
		if site.Alias == alias {
			return &site, nil
		}
	}
	return nil, fmt.Errorf("site with alias '%s' not found", alias)
}

// GetDefaultSite returns the first site in the list
func (c *Config) GetDefaultSite() (*Site, error) {
	if len(c.Sites) == 0 {
		return nil, fmt.Errorf("no sites configured in unilist.json")
	}
	return &c.Sites[0], nil
}
