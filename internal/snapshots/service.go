// Package snapshots manages the local cache of listing pulls: saving fresh
// ones, serving the latest per kind, and pruning history.
package snapshots

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/models"
)

// Service handles snapshot persistence
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new snapshots service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "snapshots").Logger(),
	}
}

// Save stores a fresh pull for a kind
func (s *Service) Save(kind content.Kind, items []json.RawMessage, source string) (*models.ContentSnapshot, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	snapshot := &models.ContentSnapshot{
		Kind:      string(kind),
		Items:     string(data),
		ItemCount: len(items),
		Source:    source,
		FetchedAt: time.Now().UTC(),
	}

	if err := s.db.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Int("items", snapshot.ItemCount).
		Msg("Snapshot saved")

	return snapshot, nil
}

// Latest returns the most recent snapshot for a kind, or gorm.ErrRecordNotFound
func (s *Service) Latest(kind content.Kind) (*models.ContentSnapshot, error) {
	var snapshot models.ContentSnapshot
	err := s.db.Where("kind = ?", string(kind)).
		Order("fetched_at DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// List returns the most recent snapshot of every kind that has one
func (s *Service) List() ([]models.ContentSnapshot, error) {
	var result []models.ContentSnapshot
	for _, kind := range content.Kinds() {
		snapshot, err := s.Latest(kind)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		result = append(result, *snapshot)
	}
	return result, nil
}

// Prune deletes all but the newest max snapshots of a kind and returns the
// number removed
func (s *Service) Prune(kind content.Kind, max int) (int64, error) {
	if max < 1 {
		max = 1
	}

	var keep []string
	err := s.db.Model(&models.ContentSnapshot{}).
		Where("kind = ?", string(kind)).
		Order("fetched_at DESC").
		Limit(max).
		Pluck("id", &keep).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select snapshots to keep: %w", err)
	}

	if len(keep) == 0 {
		return 0, nil
	}

	res := s.db.Where("kind = ? AND id NOT IN ?", string(kind), keep).
		Delete(&models.ContentSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		s.logger.Info().
			Str("kind", string(kind)).
			Int64("removed", res.RowsAffected).
			Msg("Pruned old snapshots")
	}

	return res.RowsAffected, nil
}
