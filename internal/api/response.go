package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response represents standard API response
type Response struct {
	Code      int         `json:"code"`            // HTTP status code
	Message   string      `json:"message"`         // Response message
	Data      interface{} `json:"data,omitempty"`  // Response data
	Error     string      `json:"error,omitempty"` // Error message if any
	RequestID string      `json:"request_id"`      // Request ID for tracking
	Timestamp time.Time   `json:"timestamp"`       // Response timestamp
}

// respond provides methods for standard API responses
type respond struct {
	ctx    *gin.Context
	logger *zap.Logger
}

// newRespond creates new response handler
func newRespond(c *gin.Context, logger *zap.Logger) *respond {
	return &respond{
		ctx:    c,
		logger: logger,
	}
}

// Success sends success response
func (h *respond) Success(data interface{}) {
	h.ctx.JSON(http.StatusOK, Response{
		Code:      http.StatusOK,
		Message:   "success",
		Data:      data,
		RequestID: h.ctx.GetString("request_id"),
		Timestamp: time.Now(),
	})
}

// Error sends an error response
func (h *respond) Error(status int, err error) {
	h.ctx.JSON(status, Response{
		Code:      status,
		Message:   "error",
		Error:     err.Error(),
		RequestID: h.ctx.GetString("request_id"),
		Timestamp: time.Now(),
	})
}

// BadRequest sends bad request error response
func (h *respond) BadRequest(err error) {
	h.Error(http.StatusBadRequest, err)
}

// NotFound sends not found error response
func (h *respond) NotFound(err error) {
	h.Error(http.StatusNotFound, err)
}

// InternalError sends an internal server error response
func (h *respond) InternalError(err error) {
	h.Error(http.StatusInternalServerError, err)
}

// SSEvent defines SSE event structure
type SSEvent struct {
	Event string
	Data  string
}

// StreamSSE sends Server-Sent Events until the channel closes or the
// client goes away
func (h *respond) StreamSSE(events <-chan SSEvent) {
	h.ctx.Header("Content-Type", "text/event-stream")
	h.ctx.Header("Cache-Control", "no-cache")
	h.ctx.Header("Connection", "keep-alive")

	h.ctx.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, event.Data); err != nil {
				h.logger.Error("sse write error",
					zap.Error(err),
					zap.String("request_id", h.ctx.GetString("request_id")))
				return false
			}
			h.ctx.Writer.Flush()
			return true
		case <-h.ctx.Request.Context().Done():
			return false
		}
	})
}
