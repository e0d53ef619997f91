package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps a Prometheus HTTP handler. A nil handler answers
// 503.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: handler}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.handler == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.handler.ServeHTTP(c.Writer, c.Request)
}
