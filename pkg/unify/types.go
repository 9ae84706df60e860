// Package unify defines the canonical message model shared by every
// channel adapter. Adapters translate platform payloads into these types
// on the way in and back out of them on the way out; nothing outside an
// adapter ever sees a platform SDK type except through Message.Raw.
package unify

// Platform identifies the messaging platform a message came from.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformDiscord  Platform = "discord"
)

// MessageType classifies the primary payload of a canonical message.
// When a raw event carries several payloads at once, adapters pick one
// in a fixed priority order (text > photo > video > voice > audio >
// document > sticker) so the type is never ambiguous.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypePhoto    MessageType = "photo"
	TypeVideo    MessageType = "video"
	TypeVoice    MessageType = "voice"
	TypeAudio    MessageType = "audio"
	TypeDocument MessageType = "document"
	TypeSticker  MessageType = "sticker"
	TypeLocation MessageType = "location"
	TypeContact  MessageType = "contact"
	TypePoll     MessageType = "poll"
	TypeReaction MessageType = "reaction"
	TypeCallback MessageType = "callback"
	TypeUnknown  MessageType = "unknown"
)

// TargetType classifies a send target as a user, group, or channel.
type TargetType string

const (
	TargetUser    TargetType = "user"
	TargetGroup   TargetType = "group"
	TargetChannel TargetType = "channel"
	TargetUnknown TargetType = "unknown"
)
