package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListMaterials(c *gin.Context) {
	materials, err := s.materialRepo.ListActive(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

func (s *Server) GetMaterialPrices(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	days := 30
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		days = parsed
	}

	material, err := s.materialRepo.FindByCode(c.Request.Context(), s.db, code)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if material == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	since := s.clock.Now().UTC().AddDate(0, 0, -days)
	points, err := s.priceRepo.ListByMaterial(c.Request.Context(), s.db, material.ID, since)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"material": material,
		"prices":   points,
	})
}
