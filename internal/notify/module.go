package notify

import (
	"context"
	"fmt"

	"leadbridge/internal/events"
	"leadbridge/platform/config"
	"leadbridge/platform/logger"
)

// Module wires failure events to the Slack troubleshooting channel.
type Module struct {
	slack *SlackClient
	log   *logger.Logger
}

func NewModule(cfg config.SlackConfig, log *logger.Logger) *Module {
	return &Module{
		slack: NewSlackClient(cfg, log),
		log:   log,
	}
}

// RegisterHandlers subscribes to the failure events this module forwards.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.OperationFailed{}.EventName(), m)
}

// Handle routes events to the appropriate notification.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.OperationFailed:
		return m.handleOperationFailed(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleOperationFailed(ctx context.Context, e events.OperationFailed) error {
	if !m.slack.Enabled() {
		return nil
	}

	text := fmt.Sprintf("Error while %s\n%s", e.Operation, e.Reason)
	if e.RequestID != "" {
		text += "\nrequest: " + e.RequestID
	}

	if err := m.slack.Send(ctx, text); err != nil {
		m.log.Error("failed to deliver slack notification", "operation", e.Operation, "error", err)
		return err
	}
	return nil
}
