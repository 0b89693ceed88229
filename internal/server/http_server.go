package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtinder/api/internal/config"
	"github.com/devtinder/api/internal/logger"
)

// NewEngine builds the gin engine with the shared middleware stack and
// registers all provided route groups.
func NewEngine(cfg *config.Config, authMW gin.HandlerFunc, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(AccessLog())
	engine.Use(CORS(cfg.HTTP.CORSOrigin))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "devtinder-api"})
	})

	for _, r := range registrars {
		r.Register(engine, authMW)
	}

	return engine
}

// StartHTTPServer boots the API server and blocks until it exits.
func StartHTTPServer(cfg *config.Config, engine *gin.Engine) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	logger.Info("starting HTTP server", "addr", addr)
	return engine.Run(addr)
}
