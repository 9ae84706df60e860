package channels

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// ErrNotRunning is returned when an operation is attempted on a channel
// that has not been started. A programmer error, never retried.
var ErrNotRunning = errors.New("channel not running")

// ErrNotSupported is returned when a platform does not offer an operation.
// Callers who skip the Capabilities check still fail loudly.
var ErrNotSupported = errors.New("operation not supported")

// Channel is the uniform surface every platform adapter implements.
type Channel interface {
	Name() string
	Platform() unify.Platform
	Capabilities() *unify.Capabilities

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	IsAllowed(senderID string) bool

	Send(ctx context.Context, req unify.SendRequest) (*unify.SendResult, error)
	Reply(ctx context.Context, to unify.CompoundID, content unify.Content) (*unify.SendResult, error)
	Edit(ctx context.Context, id unify.CompoundID, content unify.Content) error
	Delete(ctx context.Context, id unify.CompoundID) error
}

// Moderator is the administrative surface. Platform failures (permission
// denied, not found, rate limited) are captured into the Result envelope;
// the error return carries only precondition violations (adapter not
// running, malformed IDs), which callers should not recover from.
type Moderator interface {
	Kick(ctx context.Context, chatID, userID string) (unify.Result[bool], error)
	Ban(ctx context.Context, chatID, userID string) (unify.Result[bool], error)
	Unban(ctx context.Context, chatID, userID string) (unify.Result[bool], error)
	Mute(ctx context.Context, chatID, userID string, duration time.Duration) (unify.Result[bool], error)
	Pin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error)
	Unpin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error)
	CreateInvite(ctx context.Context, chatID string) (unify.Result[string], error)
	React(ctx context.Context, id unify.CompoundID, emoji string) (unify.Result[bool], error)
}

// BaseChannelOption is a functional option for configuring a BaseChannel.
type BaseChannelOption func(*BaseChannel)

// WithMaxMessageLength sets the maximum message length (in runes) for a
// channel. Outbound text exceeding this is split by the Manager.
// A value of 0 means no limit.
func WithMaxMessageLength(n int) BaseChannelOption {
	return func(c *BaseChannel) { c.maxMessageLength = n }
}

// MessageLengthProvider is an opt-in interface that channels implement
// to advertise their maximum message length. The Manager uses this via
// type assertion to decide whether to split outbound messages.
type MessageLengthProvider interface {
	MaxMessageLength() int
}

// BaseChannel carries the state common to every adapter: name, bus,
// running flag, allow-list, and the immutable capability matrix.
type BaseChannel struct {
	bus              *bus.MessageBus
	running          atomic.Bool
	name             string
	platform         unify.Platform
	caps             *unify.Capabilities
	allowList        []string
	maxMessageLength int
}

func NewBaseChannel(
	name string,
	platform unify.Platform,
	caps *unify.Capabilities,
	b *bus.MessageBus,
	allowList []string,
	opts ...BaseChannelOption,
) *BaseChannel {
	bc := &BaseChannel{
		bus:       b,
		name:      name,
		platform:  platform,
		caps:      caps,
		allowList: allowList,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

// MaxMessageLength returns the maximum message length (in runes) for this
// channel. A value of 0 means no limit.
func (c *BaseChannel) MaxMessageLength() int {
	return c.maxMessageLength
}

func (c *BaseChannel) Name() string { return c.name }

func (c *BaseChannel) Platform() unify.Platform { return c.platform }

// Capabilities returns the matrix built at construction. The same instance
// every call; callers must treat it as read-only.
func (c *BaseChannel) Capabilities() *unify.Capabilities { return c.caps }

func (c *BaseChannel) IsRunning() bool { return c.running.Load() }

func (c *BaseChannel) SetRunning(running bool) { c.running.Store(running) }

func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	// Extract parts from compound senderID like "123456|username"
	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}

	for _, allowed := range c.allowList {
		// Strip leading "@" from allowed value for username matching
		trimmed := strings.TrimPrefix(allowed, "@")
		allowedID := trimmed
		allowedUser := ""
		if idx := strings.Index(trimmed, "|"); idx > 0 {
			allowedID = trimmed[:idx]
			allowedUser = trimmed[idx+1:]
		}

		// Support either side using "id|username" compound form.
		if senderID == allowed ||
			idPart == allowed ||
			senderID == trimmed ||
			idPart == trimmed ||
			idPart == allowedID ||
			(allowedUser != "" && senderID == allowedUser) ||
			(userPart != "" && (userPart == allowed || userPart == trimmed || userPart == allowedUser)) {
			return true
		}
	}

	return false
}

// HandleMessage delivers a normalized message to the bus after access
// control. Adapters call this once per inbound raw event; messages from
// disallowed senders are dropped here, before the application sees them.
func (c *BaseChannel) HandleMessage(ctx context.Context, msg unify.Message) {
	senderID := msg.From.ID
	if msg.From.Username != "" {
		senderID = msg.From.ID + "|" + msg.From.Username
	}
	if !c.IsAllowed(senderID) {
		return
	}

	if msg.ID == "" {
		// Events with no platform message ID (some interaction payloads)
		// still need a stable identity within this process.
		scope := msg.To.ID
		if scope == "" {
			scope = c.name
		}
		msg.ID = unify.NewCompoundID(scope, uuid.New().String())
	}

	c.bus.PublishInbound(ctx, bus.InboundEnvelope{Channel: c.name, Message: msg})
}
