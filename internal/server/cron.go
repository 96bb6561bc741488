package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondJobBusy(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{
		"ok":    false,
		"error": "job_already_running",
	})
}

// TriggerCollect runs one collection run under the shared job lock. A run
// with recorded row or source errors is still ok: the caller treats the
// error list as a warning. Only a run-fatal failure (nothing could be
// persisted) reports ok=false, and even then the partial counters gathered
// so far are returned.
func (s *Server) TriggerCollect(c *gin.Context) {
	result, ran, err := s.scheduler.CollectNow(c.Request.Context())
	if !ran {
		respondJobBusy(c)
		return
	}
	if err != nil {
		s.log.Error("collection run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"collected": result.Collected,
			"skipped":   result.Skipped,
			"sources":   result.Sources,
			"errors":    result.Errors,
		})
		return
	}

	resp := gin.H{
		"ok":        true,
		"collected": result.Collected,
		"skipped":   result.Skipped,
		"sources":   result.Sources,
	}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	c.JSON(http.StatusOK, resp)
}

// TriggerCalculateIndex computes the index for the optional ?date= (default
// today). Recalculating an already-processed date is a supported backfill
// operation.
func (s *Server) TriggerCalculateIndex(c *gin.Context) {
	date := s.clock.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		date = parsed
	}

	record, ran, err := s.scheduler.CalculateIndexNow(c.Request.Context(), date)
	if !ran {
		respondJobBusy(c)
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"date":           record.Date.Format("2006-01-02"),
		"index_value":    record.IndexValue,
		"change_pct_30d": record.ChangePct30D,
	})
}

// TriggerDowngradeTrials downgrades expired trial organizations. Per-org
// failures are collected, not fatal; a re-run after success reports zero
// downgrades.
func (s *Server) TriggerDowngradeTrials(c *gin.Context) {
	result, ran, err := s.scheduler.DowngradeTrialsNow(c.Request.Context())
	if !ran {
		respondJobBusy(c)
		return
	}
	if err != nil {
		s.log.Error("downgrade run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":            false,
			"downgraded":    result.Downgraded,
			"total_expired": result.TotalExpired,
			"errors":        result.Errors,
		})
		return
	}

	resp := gin.H{
		"ok":            true,
		"downgraded":    result.Downgraded,
		"total_expired": result.TotalExpired,
	}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	c.JSON(http.StatusOK, resp)
}
