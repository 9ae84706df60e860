package unify

import (
	"fmt"
	"strings"
)

// ErrBadCompoundID is returned when a compound message ID does not have
// the exact "<chatID>:<messageID>" shape.
var ErrBadCompoundID = fmt.Errorf("malformed compound message ID")

// CompoundID is the globally parseable message identity "<chatID>:<messageID>".
// Platform message IDs are not unique outside their parent chat, so the two
// always travel together. This string form is a public wire contract.
type CompoundID string

// NewCompoundID builds a compound ID from a chat ID and a native message ID.
func NewCompoundID(chatID, messageID string) CompoundID {
	return CompoundID(chatID + ":" + messageID)
}

// ParseCompoundID splits a compound ID into its chat and message parts.
// Anything other than exactly two non-empty ":"-separated segments is a
// parse error, never a silent fallback.
func ParseCompoundID(s string) (chatID, messageID string, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadCompoundID, s)
	}
	return parts[0], parts[1], nil
}

// ChatID returns the chat segment of the compound ID.
func (id CompoundID) ChatID() string {
	chatID, _, _ := ParseCompoundID(string(id))
	return chatID
}

// MessageID returns the native message segment of the compound ID.
func (id CompoundID) MessageID() string {
	_, messageID, _ := ParseCompoundID(string(id))
	return messageID
}

func (id CompoundID) String() string { return string(id) }

// Participant is a message sender or recipient. Constructed fresh on every
// normalized message; a pure value object, never persisted or mutated.
type Participant struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Username string     `json:"username,omitempty"`
	Avatar   string     `json:"avatar,omitempty"`
	Type     TargetType `json:"type,omitempty"`
}

// ContentKind tags the populated variant of a Content value.
type ContentKind string

const (
	ContentEmpty    ContentKind = ""
	ContentText     ContentKind = "text"
	ContentMedia    ContentKind = "media"
	ContentSticker  ContentKind = "sticker"
	ContentReaction ContentKind = "reaction"
	ContentPoll     ContentKind = "poll"
	ContentLocation ContentKind = "location"
	ContentContact  ContentKind = "contact"
)

// Content is the tagged payload of a canonical message. Exactly the fields
// belonging to Kind are set; the zero value is valid and means "no payload"
// (an event with nothing recognizable still normalizes successfully).
type Content struct {
	Kind ContentKind `json:"kind"`

	// ContentText
	Text string `json:"text,omitempty"`

	// ContentMedia. MediaKind is the message type the media maps to
	// (photo, video, voice, audio, document). Text doubles as caption.
	MediaURL  string      `json:"media_url,omitempty"`
	MediaKind MessageType `json:"media_kind,omitempty"`

	// ContentSticker
	StickerID string `json:"sticker_id,omitempty"`

	// ContentReaction
	Emoji string `json:"emoji,omitempty"`

	// ContentPoll
	PollID   string `json:"poll_id,omitempty"`
	Question string `json:"question,omitempty"`

	// ContentLocation
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// ContentContact
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// IsEmpty reports whether no payload variant is populated.
func (c Content) IsEmpty() bool { return c.Kind == ContentEmpty }

// TextContent builds a text payload.
func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

// MediaContent builds a media payload with an optional caption.
func MediaContent(kind MessageType, url, caption string) Content {
	return Content{Kind: ContentMedia, MediaKind: kind, MediaURL: url, Text: caption}
}

// ReplyRef links a message to the message it replies to. Present only when
// the inbound event is itself a reply; a reply is always within the same chat.
type ReplyRef struct {
	ID   CompoundID   `json:"id"`
	Text string       `json:"text,omitempty"`
	From *Participant `json:"from,omitempty"`
}

// ThreadInfo carries sub-conversation identity (forum topics, threads).
// Only set for platforms that have the concept; never synthesized.
type ThreadInfo struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Message is the canonical inbound entity. Created once per raw platform
// event, handed to the application handler, never mutated afterwards.
// Raw retains the untouched platform payload as an escape hatch; the
// unification contract itself never requires it.
type Message struct {
	Platform  Platform    `json:"platform"`
	Type      MessageType `json:"type"`
	From      Participant `json:"from"`
	To        Participant `json:"to"`
	Content   Content     `json:"content"`
	ReplyTo   *ReplyRef   `json:"reply_to,omitempty"`
	Thread    *ThreadInfo `json:"thread,omitempty"`
	ID        CompoundID  `json:"id"`
	Timestamp int64       `json:"timestamp"` // epoch milliseconds
	Raw       any         `json:"-"`
}

// SendRequest is the canonical outbound request an adapter translates into
// its platform-native send call.
type SendRequest struct {
	Channel    string     `json:"channel"`
	Target     string     `json:"target"`
	TargetType TargetType `json:"target_type,omitempty"` // explicit override, optional
	Content    Content    `json:"content"`
	ReplyTo    CompoundID `json:"reply_to,omitempty"`
	ThreadID   string     `json:"thread_id,omitempty"`
}

// SendResult reports where a sent message landed. ChatID is the canonical
// (public) chat identifier, not the platform-native one.
type SendResult struct {
	ID        CompoundID `json:"id"`
	ChatID    string     `json:"chat_id"`
	Timestamp int64      `json:"timestamp"`
	Raw       any        `json:"-"`
}
