package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/denisAlshanov/vidgrab/internal/api/handlers"
	"github.com/denisAlshanov/vidgrab/internal/api/middleware"
	"github.com/denisAlshanov/vidgrab/internal/config"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
}

// NewRouter wires the API. assets serves the page for every path no route
// claims. ctx bounds background work started by middleware.
func NewRouter(ctx context.Context, cfg *config.Config, browserHandler *handlers.BrowserHandler, downloadsHandler *handlers.DownloadsHandler, healthHandler *handlers.HealthHandler, assets http.Handler) *Router {
	if !cfg.Server.DevAssets {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())

	health := engine.Group("/")
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	site := handlers.NewSiteHandler()
	engine.GET("/robots.txt", site.Robots)
	engine.GET("/sitemap.xml", site.Sitemap)

	api := engine.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(ctx, &cfg.API))
	api.Use(middleware.SessionMiddleware(cfg.Server.SessionTTL))
	{
		api.POST("/formats", browserHandler.SearchFormats)         // /api/v1/formats
		api.POST("/menus/:menu/toggle", browserHandler.ToggleMenu) // /api/v1/menus/{menu}/toggle
		api.GET("/state", browserHandler.GetState)                 // /api/v1/state
		api.POST("/download", browserHandler.Download)             // /api/v1/download (stream)
		api.POST("/save", browserHandler.Save)                     // /api/v1/save (server storage)
		api.GET("/downloads", downloadsHandler.ListDownloads)      // /api/v1/downloads
	}

	if assets != nil {
		engine.NoRoute(gin.WrapH(assets))
	}

	return &Router{
		engine: engine,
		config: cfg,
	}
}

func (r *Router) Addr() string {
	return r.config.Server.Host + ":" + r.config.Server.Port
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
