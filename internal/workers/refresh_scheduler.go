package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/models"
	"github.com/unilist-dev/unilist/internal/tasks"
)

// StartRefreshScheduler runs a periodic check (every minute) for a due
// snapshot refresh
func StartRefreshScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueRefreshTasks(client, db, logger)

	for range ticker.C {
		checkAndEnqueueRefreshTasks(client, db, logger)
	}
}

func checkAndEnqueueRefreshTasks(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	settings, err := loadSettings(db)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No settings found - skipping refresh check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query settings for refresh")
		return
	}

	if !refreshDue(settings, time.Now()) {
		logger.Debug().Msg("Refresh not due")
		return
	}

	logger.Info().
		Str("refresh_schedule", settings.RefreshSchedule).
		Msg("Snapshot refresh due - enqueueing tasks")

	enqueued := 0
	for _, kind := range content.Kinds() {
		refreshTask, err := tasks.NewSnapshotRefreshTask(string(kind))
		if err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to create refresh task")
			continue
		}
		if _, err := client.Enqueue(refreshTask, asynq.Timeout(10*time.Minute)); err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to enqueue refresh task")
			continue
		}

		pruneTask, err := tasks.NewSnapshotPruneTask(string(kind))
		if err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to create prune task")
			continue
		}
		// Prune after the refresh has had a chance to land
		if _, err := client.Enqueue(pruneTask, asynq.ProcessIn(15*time.Minute)); err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to enqueue prune task")
			continue
		}
		enqueued++
	}

	now := time.Now()
	nextRefresh := calculateNextRefreshTime(settings.RefreshSchedule, now)
	updates := map[string]interface{}{
		"last_refreshed_at": &now,
	}
	if nextRefresh != nil {
		updates["next_refresh_at"] = nextRefresh
	}
	if err := db.Model(settings).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to update refresh timestamps")
		return
	}

	logger.Info().
		Int("kinds_enqueued", enqueued).
		Time("next_refresh_at", func() time.Time {
			if nextRefresh != nil {
				return *nextRefresh
			}
			return time.Time{}
		}()).
		Msg("Snapshot refresh tasks enqueued")
}

// refreshDue reports whether a refresh should be enqueued now: a schedule is
// configured and NextRefreshAt, when set, has passed
func refreshDue(settings *models.Settings, now time.Time) bool {
	if settings.RefreshSchedule == "" {
		return false
	}
	if settings.NextRefreshAt != nil && settings.NextRefreshAt.After(now) {
		return false
	}
	return true
}

func loadSettings(db *gorm.DB) (*models.Settings, error) {
	var settings models.Settings
	if err := db.First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// calculateNextRefreshTime calculates next refresh time from cron schedule
func calculateNextRefreshTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	// Parse cron expression (standard 5-field format: minute hour day-of-month month day-of-week)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
