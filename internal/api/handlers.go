package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"football-agent/internal/config"
)

// DefaultLastN is used when a report request omits last_n.
const DefaultLastN = 5

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"gemini": gin.H{
				"model":             cfg.Gemini.Model,
				"temperature":       cfg.Gemini.Temperature,
				"max_output_tokens": cfg.Gemini.MaxOutputTokens,
			},
			"sportsdb":    gin.H{"base_url": cfg.SportsDB.BaseURL},
			"page":        cfg.Page,
			"retry":       cfg.Retry,
			"breaker":     cfg.Breaker,
			"recommender": cfg.Recommender,
		})
	}
}

type reportRequest struct {
	Team  string `json:"team" binding:"required"`
	LastN *int   `json:"last_n"`
}

// POST /report
func ReportHandler(reporter Reporter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reporter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report agent not configured"})
			return
		}
		var req reportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: team is required"})
			return
		}
		team := strings.TrimSpace(req.Team)
		if team == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: team is required"})
			return
		}
		n := DefaultLastN
		if req.LastN != nil {
			n = *req.LastN
		}
		if n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "last_n must not be negative"})
			return
		}

		requestID := uuid.NewString()
		logger.Info("report requested",
			zap.String("request_id", requestID), zap.String("team", team), zap.Int("last_n", n))

		report := reporter.Run(c.Request.Context(), team, n)
		c.JSON(http.StatusOK, gin.H{
			"request_id": requestID,
			"team":       team,
			"report":     report,
		})
	}
}
