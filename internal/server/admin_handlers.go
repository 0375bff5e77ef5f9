package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/models"
	"github.com/unilist-dev/unilist/internal/tasks"
)

// RefreshRequest asks for a cache refresh of one kind, or everything when
// kind is empty
type RefreshRequest struct {
	Kind string `json:"kind"`
}

// UpdateSettingsRequest carries partial settings updates
type UpdateSettingsRequest struct {
	RefreshSchedule *string `json:"refresh_schedule"`
	MaxSnapshots    *int    `json:"max_snapshots" binding:"omitempty,gte=1"`
}

// triggerRefresh enqueues refresh tasks for the requested kinds
func (s *Server) triggerRefresh(c *gin.Context) {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	kinds := content.Kinds()
	if req.Kind != "" {
		kind, err := content.ParseKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		kinds = []content.Kind{kind}
	}

	enqueued := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		task, err := tasks.NewSnapshotRefreshTask(string(kind))
		if err != nil {
			s.logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to build refresh task")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if _, err := s.asynqClient.Enqueue(task); err != nil {
			s.logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to enqueue refresh task")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue refresh"})
			return
		}
		enqueued = append(enqueued, string(kind))
	}

	snap := GetSessionSnapshot(c)
	s.logger.Info().
		Strs("kinds", enqueued).
		Str("triggered_by", snap.User.ID).
		Msg("Cache refresh enqueued")

	c.JSON(http.StatusAccepted, gin.H{"enqueued": enqueued})
}

// listSnapshots returns the newest snapshot per content kind
func (s *Server) listSnapshots(c *gin.Context) {
	result, err := s.snapshotsService.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// getSettings returns the settings singleton
func (s *Server) getSettings(c *gin.Context) {
	var settings models.Settings
	if err := s.db.First(&settings).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// updateSettings applies partial settings updates, validating the cron
// expression before accepting it
func (s *Server) updateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings models.Settings
	if err := s.db.First(&settings).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if req.RefreshSchedule != nil {
		schedule := *req.RefreshSchedule
		if schedule != "" {
			next := calculateNextRefresh(schedule, time.Now())
			if next == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cron expression"})
				return
			}
			settings.NextRefreshAt = next
		} else {
			settings.NextRefreshAt = nil
		}
		settings.RefreshSchedule = schedule
	}

	if req.MaxSnapshots != nil {
		settings.MaxSnapshots = *req.MaxSnapshots
	}

	if err := s.db.Save(&settings).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// calculateNextRefresh calculates the next refresh time from a cron expression
func calculateNextRefresh(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
