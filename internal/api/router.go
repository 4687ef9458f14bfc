package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router handles all routing logic
type Router struct {
	engine *gin.Engine
	logger *zap.Logger
}

// NewRouter creates and configures a new router
func NewRouter(api *API, debug bool, logger *zap.Logger) *Router {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		logger: logger,
	}

	r.engine.Use(requestID())
	r.engine.Use(requestLogger(logger))
	r.engine.Use(recovery(logger))

	api.RegisterRoutes(r.engine.Group("/api/v1"))

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}
