package http

import (
	"context"

	"github.com/dkeye/VideoClient/internal/app/orch"
	"github.com/dkeye/VideoClient/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is the part of the orchestrator the status API drives.
type Session interface {
	Status() orch.Status
	ObserveSurface(ctx context.Context, width, height int) error
	Leave(ctx context.Context, end bool) error
}

const viewerKey = "viewer"

// ViewerMiddleware gives every UI client a stable id kept in the cookie session.
func ViewerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		viewer, _ := s.Get(viewerKey).(string)
		if viewer == "" {
			viewer = uuid.NewString()
			s.Set(viewerKey, viewer)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("viewer session not saved")
			}
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, sess Session) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("VideoClientSessions", store))
	r.Use(ViewerMiddleware())

	h := &handlers{sess: sess}
	api := r.Group("/api")
	api.GET("/status", h.status)
	api.GET("/roster", h.roster)
	api.POST("/surface", h.surface)
	api.POST("/leave", h.leave)

	log.Info().Str("module", "adapters.http").Str("addr", cfg.StatusAddr).Msg("router setup")
	return r
}
