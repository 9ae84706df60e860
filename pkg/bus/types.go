package bus

import "github.com/tinyland-inc/clawbridge/pkg/unify"

// InboundEnvelope wraps a canonical message with the name of the channel
// adapter that produced it, so the consumer can route replies back.
type InboundEnvelope struct {
	Channel string        `json:"channel"`
	Message unify.Message `json:"message"`
}

// MessageHandler is the application callback invoked with each canonical
// inbound message, in the order the platform delivered the raw events.
type MessageHandler func(msg unify.Message) error
