package channels

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/logger"
	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// Manager owns the set of configured channel adapters: it starts and
// stops them together and pumps outbound send requests from the bus to
// the adapter that owns the target channel.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
}

func NewManager(b *bus.MessageBus, chs ...Channel) *Manager {
	m := &Manager{
		channels: make(map[string]Channel, len(chs)),
		bus:      b,
	}
	for _, ch := range chs {
		m.channels[ch.Name()] = ch
	}
	return m
}

// Get returns the adapter registered under name, or nil.
func (m *Manager) Get(name string) Channel {
	return m.channels[name]
}

// Names returns the registered channel names.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

// StartAll starts every registered adapter. The first failure stops any
// adapters already started and is returned.
func (m *Manager) StartAll(ctx context.Context) error {
	started := make([]Channel, 0, len(m.channels))
	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			for _, s := range started {
				s.Stop(ctx)
			}
			return fmt.Errorf("starting channel %s: %w", name, err)
		}
		started = append(started, ch)
		logger.InfoCF("channels", "Channel started", map[string]any{"channel": name})
	}
	return nil
}

// StopAll stops every registered adapter. Errors are logged, not returned;
// teardown always visits every channel.
func (m *Manager) StopAll(ctx context.Context) {
	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Channel stop failed", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// Run consumes outbound send requests until the context is cancelled or
// the bus closes. Long text is split per the adapter's advertised limit;
// every chunk after the first drops the reply reference so threads are
// not littered with repeated reply headers.
func (m *Manager) Run(ctx context.Context) {
	for {
		req, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		m.dispatch(ctx, req)
	}
}

func (m *Manager) dispatch(ctx context.Context, req unify.SendRequest) {
	ch, ok := m.channels[req.Channel]
	if !ok {
		logger.WarnCF("channels", "Outbound request for unknown channel", map[string]any{
			"channel": req.Channel,
		})
		return
	}

	chunks := []string{req.Content.Text}
	if lp, ok := ch.(MessageLengthProvider); ok && req.Content.Kind == unify.ContentText {
		chunks = SplitMessage(req.Content.Text, lp.MaxMessageLength())
	}

	for i, chunk := range chunks {
		part := req
		if req.Content.Kind == unify.ContentText {
			part.Content = unify.TextContent(chunk)
		}
		if i > 0 {
			part.ReplyTo = ""
		}
		if _, err := ch.Send(ctx, part); err != nil {
			logger.ErrorCF("channels", "Send failed", map[string]any{
				"channel": req.Channel,
				"target":  req.Target,
				"error":   err.Error(),
			})
			return
		}
	}
}
