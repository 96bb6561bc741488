package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetLatestIndex(c *gin.Context) {
	record, err := s.indexRepo.Latest(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if record == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": record})
}

func (s *Server) GetIndexHistory(c *gin.Context) {
	days := 90
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1095 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		days = parsed
	}

	since := s.clock.Now().UTC().AddDate(0, 0, -days)
	records, err := s.indexRepo.ListSince(c.Request.Context(), s.db, since)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}
