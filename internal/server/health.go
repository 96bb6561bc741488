package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health reports liveness plus price freshness. Stale data flips the status
// and pings the operator channel; the core jobs themselves never notify.
func (s *Server) Health(c *gin.Context) {
	latest, err := s.priceRepo.LatestTimestamp(c.Request.Context(), s.db)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "detail": "database unavailable"})
		return
	}

	resp := gin.H{"status": "ok"}
	if latest == nil {
		resp["prices"] = "empty"
		c.JSON(http.StatusOK, resp)
		return
	}

	age := s.clock.Now().Sub(*latest)
	resp["last_price_at"] = latest.UTC()
	if age > s.cfg.FreshnessMaxAge {
		resp["status"] = "stale"
		message := fmt.Sprintf("baupreis: price data is stale, last observation %s ago", age.Round(time.Minute))
		if err := s.notifier.Notify(c.Request.Context(), message); err != nil {
			s.log.Warn("freshness notification failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, resp)
}
