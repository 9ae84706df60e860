package bus

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// ErrBusClosed is returned when publishing to a closed MessageBus.
var ErrBusClosed = errors.New("message bus closed")

// MessageBus decouples channel adapters from the application handler.
// Inbound carries canonical messages, outbound carries canonical send
// requests. Buffered in both directions; imposes no reordering.
type MessageBus struct {
	inbound  chan InboundEnvelope
	outbound chan unify.SendRequest
	done     chan struct{}
	closed   atomic.Bool
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundEnvelope, 100),
		outbound: make(chan unify.SendRequest, 100),
		done:     make(chan struct{}),
	}
}

func (mb *MessageBus) PublishInbound(ctx context.Context, env InboundEnvelope) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.inbound <- env:
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundEnvelope, bool) {
	select {
	case env, ok := <-mb.inbound:
		return env, ok
	case <-mb.done:
		return InboundEnvelope{}, false
	case <-ctx.Done():
		return InboundEnvelope{}, false
	}
}

func (mb *MessageBus) PublishOutbound(ctx context.Context, req unify.SendRequest) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.outbound <- req:
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (unify.SendRequest, bool) {
	select {
	case req, ok := <-mb.outbound:
		return req, ok
	case <-mb.done:
		return unify.SendRequest{}, false
	case <-ctx.Done():
		return unify.SendRequest{}, false
	}
}

func (mb *MessageBus) Close() {
	if mb.closed.CompareAndSwap(false, true) {
		close(mb.done)
	}
}
