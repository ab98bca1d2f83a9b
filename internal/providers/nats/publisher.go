package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
)

// Config holds the configuration for the NATS connection
type Config struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewPublisher creates a NATS-backed event publisher for multi-instance
// deployments where every instance must see link and click events
func NewPublisher(cfg Config) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &publisher{nc: nc, subjectPrefix: cfg.SubjectPrefix}, nil
}

// Publish publishes an application event to NATS
func (p *publisher) Publish(_ context.Context, event *messaging.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(p.buildSubject(event), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// buildSubject constructs the NATS subject based on the event.
// Format: {prefix}.{type} with ":" mapped to ".", e.g. button.events.link.created
func (p *publisher) buildSubject(event *messaging.Event) string {
	suffix := strings.ReplaceAll(string(event.Type), ":", ".")
	return fmt.Sprintf("%s.%s", p.subjectPrefix, suffix)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}
	p.nc.Close()
}
