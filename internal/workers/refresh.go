package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/unilist-dev/unilist/internal/config"
	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/gateway"
	"github.com/unilist-dev/unilist/internal/snapshots"
	"github.com/unilist-dev/unilist/internal/tasks"
)

// HandleSnapshotRefresh pulls one listing kind from the backend and saves it
// as a fresh snapshot
func HandleSnapshotRefresh(ctx context.Context, t *asynq.Task, backend *gateway.Client, service *snapshots.Service, plan *config.RefreshPlan, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	kind, err := content.ParseKind(payload.Kind)
	if err != nil {
		return fmt.Errorf("invalid refresh payload: %w", err)
	}

	kp := plan.For(kind)
	items, err := backend.FetchListings(ctx, kind, gateway.ListQuery{
		Limit:  kp.Limit,
		Status: kp.Status,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", string(kind)).
			Msg("Failed to fetch listings from backend")
		return fmt.Errorf("failed to fetch %s: %w", kind, err)
	}

	snapshot, err := service.Save(kind, items, backend.BaseURL())
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", kind, err)
	}

	logger.Info().
		Str("kind", string(kind)).
		Str("snapshot_id", snapshot.ID).
		Int("items", snapshot.ItemCount).
		Msg("Snapshot refreshed")

	return nil
}

// HandleSnapshotPrune removes old snapshots of one kind beyond the configured
// retention
func HandleSnapshotPrune(ctx context.Context, t *asynq.Task, db *gorm.DB, service *snapshots.Service, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	kind, err := content.ParseKind(payload.Kind)
	if err != nil {
		return fmt.Errorf("invalid prune payload: %w", err)
	}

	settings, err := loadSettings(db)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	removed, err := service.Prune(kind, settings.MaxSnapshots)
	if err != nil {
		return fmt.Errorf("failed to prune %s snapshots: %w", kind, err)
	}

	if removed > 0 {
		logger.Info().
			Str("kind", string(kind)).
			Int64("removed", removed).
			Int("max_snapshots", settings.MaxSnapshots).
			Msg("Old snapshots pruned")
	}

	return nil
}
