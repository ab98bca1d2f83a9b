package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/logger"
)

// heartbeatInterval keeps idle SSE connections alive through proxies
const heartbeatInterval = 30 * time.Second

// StreamEvents streams ownership, link, and click events over SSE.
// Each event is rendered with its type as the SSE event name and the record
// as JSON data. A comment-style heartbeat goes out on idle connections.
func (h *handler) StreamEvents(c *gin.Context) {
	events, cancel := h.subscriber.Subscribe()
	defer cancel()

	// The stream outlives the server-wide write timeout
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("failed to clear write deadline for SSE", zap.Error(err))
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Flush the headers right away so the client sees the stream is open
	// before the first event arrives
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	logger.Debug("SSE client connected", zap.String("client_ip", c.ClientIP()))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{
				Event: string(event.Type),
				Data:  event,
			})
			return true
		case <-heartbeat.C:
			c.Render(-1, sse.Event{
				Event: "heartbeat",
				Data:  gin.H{"timestamp": time.Now().UTC()},
			})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	logger.Debug("SSE client disconnected", zap.String("client_ip", c.ClientIP()))
}
