package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"casadns/internal/storage"
	"casadns/internal/updater"
	"casadns/internal/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Engine is the updater surface the API depends on
type Engine interface {
	State() updater.State
	Update(ctx context.Context, force bool) error
	RegisterListener(fn func())
}

// History provides access to recorded update attempts
type History interface {
	Recent(ctx context.Context, limit int) ([]storage.UpdateRecord, error)
}

// API serves the daemon's HTTP surface
type API struct {
	engine  Engine
	history History // may be nil
	hub     *hub
	logger  *zap.Logger
	started time.Time
}

// New creates new API. history may be nil when the store is disabled.
func New(engine Engine, history History, logger *zap.Logger) *API {
	api := &API{
		engine:  engine,
		history: history,
		hub:     newHub(),
		logger:  logger,
		started: time.Now(),
	}

	// One engine listener for the lifetime of the process; SSE
	// subscribers attach to the hub instead.
	engine.RegisterListener(api.hub.broadcast)

	return api
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", api.getStatus)
	r.POST("/update", api.triggerUpdate)
	r.GET("/events", api.streamEvents)
	r.GET("/history", api.getHistory)
	r.GET("/healthz", api.healthCheck)
	r.GET("/version", api.getVersion)
}

// getStatus returns the engine state snapshot
func (api *API) getStatus(c *gin.Context) {
	newRespond(c, api.logger).Success(api.engine.State())
}

// triggerUpdate runs one forced update cycle and returns the fresh state
func (api *API) triggerUpdate(c *gin.Context) {
	resp := newRespond(c, api.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := api.engine.Update(ctx, true); err != nil {
		if errors.Is(err, updater.ErrNoAddress) {
			resp.Error(http.StatusBadGateway, err)
			return
		}
		resp.InternalError(err)
		return
	}

	resp.Success(api.engine.State())
}

// streamEvents sends a state snapshot per engine state change over SSE
func (api *API) streamEvents(c *gin.Context) {
	resp := newRespond(c, api.logger)

	sub := api.hub.subscribe()
	defer api.hub.unsubscribe(sub)

	events := make(chan SSEvent, 8)
	ctx := c.Request.Context()

	go func() {
		defer close(events)

		// Initial snapshot so subscribers do not wait for a change
		api.sendState(ctx, events)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub:
				api.sendState(ctx, events)
			}
		}
	}()

	resp.StreamSSE(events)
}

// sendState marshals the current state into the event channel
func (api *API) sendState(ctx context.Context, events chan<- SSEvent) {
	data, err := json.Marshal(api.engine.State())
	if err != nil {
		api.logger.Error("Failed to marshal state", zap.Error(err))
		return
	}

	select {
	case events <- SSEvent{Event: "state", Data: string(data)}:
	case <-ctx.Done():
	}
}

// getHistory returns recent update attempts from the history store
func (api *API) getHistory(c *gin.Context) {
	resp := newRespond(c, api.logger)

	if api.history == nil {
		resp.NotFound(errors.New("update history is disabled"))
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			resp.BadRequest(errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := api.history.Recent(ctx, limit)
	if err != nil {
		api.logger.Error("Failed to query history", zap.Error(err))
		resp.InternalError(err)
		return
	}

	resp.Success(records)
}

// healthCheck handles health check requests
func (api *API) healthCheck(c *gin.Context) {
	newRespond(c, api.logger).Success(gin.H{
		"status": "healthy",
		"uptime": time.Since(api.started).String(),
	})
}

// getVersion returns build information
func (api *API) getVersion(c *gin.Context) {
	newRespond(c, api.logger).Success(version.GetInfo())
}
