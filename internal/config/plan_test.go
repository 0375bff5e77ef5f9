package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unilist-dev/unilist/internal/content"
)

func TestLoadRefreshPlan_MissingFileUsesDefaults(t *testing.T) {
	plan, err := LoadRefreshPlan(filepath.Join(t.TempDir(), "refresh.yaml"))
	if err != nil {
		t.Fatalf("expected default plan for missing file, got %v", err)
	}

	if len(plan.Kinds) != len(content.Kinds()) {
		t.Errorf("expected a plan entry per kind, got %d", len(plan.Kinds))
	}

	kp := plan.For(content.KindUniversities)
	if kp.Limit != defaultLimit || kp.Status != "published" {
		t.Errorf("unexpected defaults: %+v", kp)
	}
}

func TestLoadRefreshPlan_ParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh.yaml")
	data := []byte(`kinds:
  - kind: universities
    limit: 500
  - kind: events
    limit: 50
    status: upcoming
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write plan: %v", err)
	}

	plan, err := LoadRefreshPlan(path)
	if err != nil {
		t.Fatalf("failed to load plan: %v", err)
	}

	if kp := plan.For(content.KindEvents); kp.Status != "upcoming" || kp.Limit != 50 {
		t.Errorf("unexpected events plan: %+v", kp)
	}

	// kinds not listed fall back to defaults
	if kp := plan.For(content.KindFAQs); kp.Limit != defaultLimit {
		t.Errorf("expected default limit for faqs, got %+v", kp)
	}

	// missing limit in an entry falls back too
	plan.Kinds = append(plan.Kinds, KindPlan{Kind: "articles", Status: "draft"})
	if kp := plan.For(content.KindArticles); kp.Limit != defaultLimit || kp.Status != "draft" {
		t.Errorf("unexpected articles plan: %+v", kp)
	}
}

func TestLoadRefreshPlan_RejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh.yaml")
	if err := os.WriteFile(path, []byte("kinds:\n  - kind: podcasts\n"), 0644); err != nil {
		t.Fatalf("failed to write plan: %v", err)
	}

	if _, err := LoadRefreshPlan(path); err == nil {
		t.Error("expected error for unknown kind")
	}
}
