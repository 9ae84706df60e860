package telegram

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// normalizer converts raw Telegram updates into canonical messages.
// botID is the adapter's own identity; its messages are discarded before
// normalization so the gateway never loops on its own output.
type normalizer struct {
	botID int64
}

// normalizeMessage converts one inbound message event. The second return
// is false when the event must be dropped (authored by the bot itself).
func (n normalizer) normalizeMessage(msg *telego.Message) (unify.Message, bool) {
	if msg.From != nil && msg.From.ID == n.botID {
		return unify.Message{}, false
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	msgType, content := classifyContent(msg)

	out := unify.Message{
		Platform:  unify.PlatformTelegram,
		Type:      msgType,
		From:      senderParticipant(msg),
		To:        chatParticipant(msg.Chat),
		Content:   content,
		ID:        unify.NewCompoundID(chatID, strconv.Itoa(msg.MessageID)),
		Timestamp: msg.Date * 1000,
		Raw:       msg,
	}

	if reply := msg.ReplyToMessage; reply != nil {
		// A reply is always within the same chat as its parent.
		ref := &unify.ReplyRef{
			ID:   unify.NewCompoundID(chatID, strconv.Itoa(reply.MessageID)),
			Text: replyText(reply),
		}
		if reply.From != nil {
			from := userParticipant(reply.From)
			ref.From = &from
		}
		out.ReplyTo = ref
	}

	if msg.MessageThreadID != 0 && msg.IsTopicMessage {
		out.Thread = &unify.ThreadInfo{
			ID:    strconv.Itoa(msg.MessageThreadID),
			Title: topicTitle(msg),
		}
	}

	return out, true
}

// normalizeReaction converts a reaction update. The reacted message
// travels as the reply reference; the reaction event has no message ID of
// its own.
func (n normalizer) normalizeReaction(r *telego.MessageReactionUpdated) (unify.Message, bool) {
	if r.User != nil && r.User.ID == n.botID {
		return unify.Message{}, false
	}

	chatID := strconv.FormatInt(r.Chat.ID, 10)
	out := unify.Message{
		Platform: unify.PlatformTelegram,
		Type:     unify.TypeReaction,
		To:       chatParticipant(r.Chat),
		Content: unify.Content{
			Kind:  unify.ContentReaction,
			Emoji: firstEmoji(r.NewReaction),
		},
		ReplyTo: &unify.ReplyRef{
			ID: unify.NewCompoundID(chatID, strconv.Itoa(r.MessageID)),
		},
		Timestamp: r.Date * 1000,
		Raw:       r,
	}
	if r.User != nil {
		out.From = userParticipant(r.User)
	}
	return out, true
}

// normalizeCallback converts a button callback query.
func (n normalizer) normalizeCallback(q *telego.CallbackQuery) (unify.Message, bool) {
	if q.From.ID == n.botID {
		return unify.Message{}, false
	}

	out := unify.Message{
		Platform: unify.PlatformTelegram,
		Type:     unify.TypeCallback,
		From:     userParticipant(&q.From),
		Content:  unify.TextContent(q.Data),
		Raw:      q,
	}
	// The originating message may be inaccessible to the bot; only an
	// accessible one yields chat context and reply linkage.
	if m, ok := any(q.Message).(*telego.Message); ok && m != nil {
		chatID := strconv.FormatInt(m.Chat.ID, 10)
		out.To = chatParticipant(m.Chat)
		out.ReplyTo = &unify.ReplyRef{
			ID:   unify.NewCompoundID(chatID, strconv.Itoa(m.MessageID)),
			Text: replyText(m),
		}
	}
	return out, true
}

// classifyContent picks exactly one content variant in fixed priority
// order (text > photo > video > voice > audio > document > sticker, then
// the payload kinds no other platform shares). An event with nothing
// recognizable yields an empty content and is not an error.
func classifyContent(msg *telego.Message) (unify.MessageType, unify.Content) {
	switch {
	case msg.Text != "":
		return unify.TypeText, unify.TextContent(msg.Text)
	case len(msg.Photo) > 0:
		// Telegram sends multiple sizes; the last is the largest.
		return unify.TypePhoto, unify.MediaContent(unify.TypePhoto, msg.Photo[len(msg.Photo)-1].FileID, msg.Caption)
	case msg.Video != nil:
		return unify.TypeVideo, unify.MediaContent(unify.TypeVideo, msg.Video.FileID, msg.Caption)
	case msg.Voice != nil:
		return unify.TypeVoice, unify.MediaContent(unify.TypeVoice, msg.Voice.FileID, msg.Caption)
	case msg.Audio != nil:
		return unify.TypeAudio, unify.MediaContent(unify.TypeAudio, msg.Audio.FileID, msg.Caption)
	case msg.Document != nil:
		return unify.TypeDocument, unify.MediaContent(unify.TypeDocument, msg.Document.FileID, msg.Caption)
	case msg.Sticker != nil:
		return unify.TypeSticker, unify.Content{
			Kind:      unify.ContentSticker,
			StickerID: msg.Sticker.FileID,
			Emoji:     msg.Sticker.Emoji,
		}
	case msg.Location != nil:
		return unify.TypeLocation, unify.Content{
			Kind:      unify.ContentLocation,
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	case msg.Contact != nil:
		return unify.TypeContact, unify.Content{
			Kind:         unify.ContentContact,
			ContactName:  strings.TrimSpace(msg.Contact.FirstName + " " + msg.Contact.LastName),
			ContactPhone: msg.Contact.PhoneNumber,
		}
	case msg.Poll != nil:
		return unify.TypePoll, unify.Content{
			Kind:     unify.ContentPoll,
			PollID:   msg.Poll.ID,
			Question: msg.Poll.Question,
		}
	default:
		return unify.TypeUnknown, unify.Content{}
	}
}

// senderParticipant builds the "from" side. Channel posts have no From
// user; the chat itself authors them.
func senderParticipant(msg *telego.Message) unify.Participant {
	if msg.From != nil {
		return userParticipant(msg.From)
	}
	return chatParticipant(msg.Chat)
}

func userParticipant(u *telego.User) unify.Participant {
	return unify.Participant{
		ID:       strconv.FormatInt(u.ID, 10),
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Username: u.Username,
		Type:     unify.TargetUser,
	}
}

// chatParticipant builds the "to" side. The chat's own kind metadata is
// authoritative here; the resolver's inference path is for outbound
// targets only. The participant ID is the canonical public identifier.
func chatParticipant(chat telego.Chat) unify.Participant {
	name := chat.Title
	if name == "" {
		name = strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	}
	return unify.Participant{
		ID:       FormatPublicID(ToPublicID(chat.ID)),
		Name:     name,
		Username: chat.Username,
		Type:     chatKind(chat.Type),
	}
}

func chatKind(chatType string) unify.TargetType {
	switch chatType {
	case telego.ChatTypePrivate:
		return unify.TargetUser
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		return unify.TargetGroup
	case telego.ChatTypeChannel:
		return unify.TargetChannel
	default:
		return unify.TargetUnknown
	}
}

func replyText(msg *telego.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// topicTitle recovers a forum topic title when the event happens to carry
// the topic-created service payload; otherwise the title stays empty.
func topicTitle(msg *telego.Message) string {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.ForumTopicCreated != nil {
		return msg.ReplyToMessage.ForumTopicCreated.Name
	}
	return ""
}

func firstEmoji(reactions []telego.ReactionType) string {
	for _, r := range reactions {
		switch v := r.(type) {
		case *telego.ReactionTypeEmoji:
			return v.Emoji
		}
	}
	return ""
}
