package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unilist-dev/unilist/internal/content"
)

// defaultLimit is applied when a kind has no entry in the refresh plan
const defaultLimit = 100

// RefreshPlan describes which listings the worker pulls and with what query
// parameters. It lives in refresh.yaml next to the deployment; a missing file
// means "everything, published only".
type RefreshPlan struct {
	Kinds []KindPlan `yaml:"kinds"`
}

// KindPlan is the per-kind override
type KindPlan struct {
	Kind   string `yaml:"kind"`
	Limit  int    `yaml:"limit"`
	Status string `yaml:"status"`
}

// DefaultRefreshPlan covers all content kinds with published status
func DefaultRefreshPlan() *RefreshPlan {
	plan := &RefreshPlan{}
	for _, kind := range content.Kinds() {
		plan.Kinds = append(plan.Kinds, KindPlan{
			Kind:   string(kind),
			Limit:  defaultLimit,
			Status: "published",
		})
	}
	return plan
}

// LoadRefreshPlan reads the plan file. A missing file yields the default plan;
// a malformed one is an error.
func LoadRefreshPlan(path string) (*RefreshPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRefreshPlan(), nil
		}
		return nil, fmt.Errorf("failed to read refresh plan: %w", err)
	}

	var plan RefreshPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse refresh plan: %w", err)
	}

	for _, kp := range plan.Kinds {
		if _, err := content.ParseKind(kp.Kind); err != nil {
			return nil, fmt.Errorf("invalid refresh plan: %w", err)
		}
	}

	return &plan, nil
}

// For returns the plan entry for a kind, falling back to the defaults
func (p *RefreshPlan) For(kind content.Kind) KindPlan {
	for _, kp := range p.Kinds {
		if kp.Kind == string(kind) {
			if kp.Limit == 0 {
				kp.Limit = defaultLimit
			}
			return kp
		}
	}
	return KindPlan{Kind: string(kind), Limit: defaultLimit, Status: "published"}
}
