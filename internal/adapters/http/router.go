package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/signalmaster/internal/adapters/signal"
	"github.com/dkeye/signalmaster/internal/app"
	"github.com/dkeye/signalmaster/internal/app/orch"
	"github.com/dkeye/signalmaster/internal/config"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

type Deps struct {
	Orch    *orch.Orchestrator
	Gate    *app.Gate
	Signal  *signal.SignalWSController
	Metrics *metrics.Metrics
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		hctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := deps.Gate.Store.Ping(hctx); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("health check: access store down")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")

	api.GET("/ws/signal", AdmissionMiddleware(cfg.SessionCookie, deps.Gate), func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Msg("ws signal endpoint hit")
		deps.Signal.HandleSignal(ctx, c)
	})

	if cfg.Mode == "debug" {
		api.GET("/rooms", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"rooms": deps.Orch.Rooms.List()})
		})
		api.GET("/rooms/:name", func(c *gin.Context) {
			name := domain.RoomName(c.Param("name"))
			c.JSON(http.StatusOK, domain.RoomDescription{Clients: deps.Orch.Describe(name)})
		})
	}

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
