package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndSave(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigFileName)

	cfg := &Config{
		Sites: []Site{
			{URL: "https://listings.example.com", Alias: "production"},
			{URL: "https://staging.example.com", Alias: "staging"},
		},
	}

	if err := Save(configPath, cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(loaded.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(loaded.Sites))
	}
	if loaded.Sites[0].Alias != "production" {
		t.Errorf("expected alias 'production', got %q", loaded.Sites[0].Alias)
	}
	if loaded.Sites[1].URL != "https://staging.example.com" {
		t.Errorf("unexpected URL: %q", loaded.Sites[1].URL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(tempDir, ConfigFileName)
	if err := Save(configPath, &Config{Sites: []Site{{URL: "https://x.example.com", Alias: "x"}}}); err != nil {
		t.Fatal(err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("expected to find config in parent, got error: %v", err)
	}
	// Resolve symlinks before comparing (macOS /tmp is a symlink)
	wantResolved, _ := filepath.EvalSymlinks(configPath)
	gotResolved, _ := filepath.EvalSymlinks(found)
	if gotResolved != wantResolved {
		t.Errorf("expected %s, got %s", wantResolved, gotResolved)
	}
}

func TestGetSiteByAlias(t *testing.T) {
	cfg := &Config{
		Sites: []Site{
			{URL: "https://a.example.com", Alias: "a"},
			{URL: "https://b.example.com", Alias: "b"},
		},
	}

	site, err := cfg.GetSiteByAlias("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.URL != "https://b.example.com" {
		t.Errorf("unexpected URL: %q", site.URL)
	}

	if _, err := cfg.GetSiteByAlias("missing"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestGetDefaultSite_Empty(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetDefaultSite(); err == nil {
		t.Error("expected error with no sites configured")
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"listings.example.com", "https://listings.example.com"},
		{"https://listings.example.com/", "https://listings.example.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"  ", ""},
	}

	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
