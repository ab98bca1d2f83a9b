package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
)

// Bridge forwards events from NATS into a local publisher so SSE clients on
// this instance see events produced by every instance
type Bridge struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// NewBridge connects to NATS and forwards every event under the subject
// prefix into the local publisher
func NewBridge(cfg Config, local messaging.Publisher) (*Bridge, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName + "-bridge"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subject := cfg.SubjectPrefix + ".>"
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var event messaging.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("dropping malformed event from NATS",
				zap.String("subject", msg.Subject),
				zap.Error(err))
			return
		}
		if err := local.Publish(context.Background(), &event); err != nil {
			logger.Warn("failed to forward event to local subscribers",
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	logger.Info("NATS event bridge started", zap.String("subject", subject))
	return &Bridge{nc: nc, sub: sub}, nil
}

// Close stops forwarding and closes the connection
func (b *Bridge) Close() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			logger.Warn("failed to unsubscribe NATS bridge", zap.Error(err))
		}
	}
	if b.nc != nil {
		b.nc.Close()
	}
}
