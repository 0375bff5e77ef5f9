package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/gateway"
)

// ListingResponse is what the public listing endpoints return
type ListingResponse struct {
	Items     []json.RawMessage `json:"items"`
	FetchedAt time.Time         `json:"fetched_at"`
	Source    string            `json:"source"` // "cache" or "live"
}

// listContentHandler serves one listing kind from the newest snapshot,
// falling through to a live backend fetch when the cache is empty
func (s *Server) listContentHandler(kind content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := s.snapshotsService.Latest(kind)
		if err == nil {
			items, rawErr := snapshot.RawItems()
			if rawErr != nil {
				s.logger.Error().Err(rawErr).Str("kind", string(kind)).Msg("Corrupt snapshot payload")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.JSON(http.StatusOK, ListingResponse{
				Items:     items,
				FetchedAt: snapshot.FetchedAt,
				Source:    "cache",
			})
			return
		}
		if err != gorm.ErrRecordNotFound {
			s.logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to load snapshot")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		// no snapshot yet, go straight to the backend
		kp := s.plan.For(kind)
		items, err := s.backendClient().FetchListings(c.Request.Context(), kind, gateway.ListQuery{
			Limit:  kp.Limit,
			Status: kp.Status,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Live fetch failed with empty cache")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, ListingResponse{
			Items:     items,
			FetchedAt: time.Now().UTC(),
			Source:    "live",
		})
	}
}
