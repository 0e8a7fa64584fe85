package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"football-agent/internal/config"
	"football-agent/internal/llm"
	"football-agent/internal/recommender"
)

// Reporter composes a report for a team's last n matches.
type Reporter interface {
	Run(ctx context.Context, team string, n int) string
}

// Deps are the collaborators behind the routes. Nil members disable the
// routes that need them (they answer 503).
type Deps struct {
	Reporter  Reporter
	Model     llm.Generator
	Publisher recommender.Publisher
	Logger    *zap.Logger
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/football", always starts with '/'

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		group.POST("/report", ReportHandler(deps.Reporter, deps.Logger))

		// --- Live recommendations over WebSocket ---
		group.GET("/ws/recommend", WSRecommendHandler(cfg, deps.Model, deps.Publisher, deps.Logger))
	}
	return r
}
