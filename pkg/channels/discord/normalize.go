package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// normalizer converts raw Discord gateway events into canonical messages.
// Discord's snowflake IDs form a single unambiguous space, so they pass
// through untouched; no codec is involved. botID is the adapter's own
// user ID, whose events are discarded to prevent feedback loops.
type normalizer struct {
	botID string
}

// normalizeMessage converts a MessageCreate event. ch, when known, adds
// thread context; passing nil is fine for plain channels and DMs.
func (n normalizer) normalizeMessage(m *discordgo.Message, ch *discordgo.Channel) (unify.Message, bool) {
	if m.Author == nil || m.Author.ID == n.botID {
		return unify.Message{}, false
	}

	msgType, content := classifyContent(m)

	out := unify.Message{
		Platform:  unify.PlatformDiscord,
		Type:      msgType,
		From:      userParticipant(m.Author),
		To:        channelParticipant(m.ChannelID, m.GuildID, ch),
		Content:   content,
		ID:        unify.NewCompoundID(m.ChannelID, m.ID),
		Timestamp: m.Timestamp.UnixMilli(),
		Raw:       m,
	}

	if ref := m.ReferencedMessage; ref != nil {
		reply := &unify.ReplyRef{
			ID:   unify.NewCompoundID(m.ChannelID, ref.ID),
			Text: ref.Content,
		}
		if ref.Author != nil {
			from := userParticipant(ref.Author)
			reply.From = &from
		}
		out.ReplyTo = reply
	}

	if ch != nil && ch.IsThread() {
		out.Thread = &unify.ThreadInfo{ID: ch.ID, Title: ch.Name}
	}

	return out, true
}

// normalizeReaction converts a reaction-add event. The reacted message
// travels as the reply reference.
func (n normalizer) normalizeReaction(r *discordgo.MessageReactionAdd) (unify.Message, bool) {
	if r.UserID == n.botID {
		return unify.Message{}, false
	}
	return unify.Message{
		Platform: unify.PlatformDiscord,
		Type:     unify.TypeReaction,
		From:     unify.Participant{ID: r.UserID, Type: unify.TargetUser},
		To:       channelParticipant(r.ChannelID, r.GuildID, nil),
		Content: unify.Content{
			Kind:  unify.ContentReaction,
			Emoji: r.Emoji.Name,
		},
		ReplyTo: &unify.ReplyRef{
			ID: unify.NewCompoundID(r.ChannelID, r.MessageID),
		},
		Raw: r,
	}, true
}

// normalizeInteraction converts a message-component interaction (button
// press) into a callback message carrying the component's custom ID.
func (n normalizer) normalizeInteraction(i *discordgo.Interaction) (unify.Message, bool) {
	if i.Type != discordgo.InteractionMessageComponent {
		return unify.Message{}, false
	}

	user := i.User
	if user == nil && i.Member != nil {
		user = i.Member.User
	}
	if user == nil || user.ID == n.botID {
		return unify.Message{}, false
	}

	out := unify.Message{
		Platform: unify.PlatformDiscord,
		Type:     unify.TypeCallback,
		From:     userParticipant(user),
		To:       channelParticipant(i.ChannelID, i.GuildID, nil),
		Content:  unify.TextContent(i.MessageComponentData().CustomID),
		Raw:      i,
	}
	if i.Message != nil {
		out.ReplyTo = &unify.ReplyRef{
			ID:   unify.NewCompoundID(i.ChannelID, i.Message.ID),
			Text: i.Message.Content,
		}
	}
	return out, true
}

// classifyContent picks exactly one content variant, in the same priority
// order as every other adapter: text first, then media by attachment
// content type, then stickers.
func classifyContent(m *discordgo.Message) (unify.MessageType, unify.Content) {
	if m.Content != "" {
		return unify.TypeText, unify.TextContent(m.Content)
	}
	if len(m.Attachments) > 0 {
		att := m.Attachments[0]
		kind := attachmentKind(att)
		return kind, unify.MediaContent(kind, att.URL, "")
	}
	if len(m.StickerItems) > 0 {
		return unify.TypeSticker, unify.Content{
			Kind:      unify.ContentSticker,
			StickerID: m.StickerItems[0].ID,
		}
	}
	return unify.TypeUnknown, unify.Content{}
}

func attachmentKind(att *discordgo.MessageAttachment) unify.MessageType {
	switch {
	case strings.HasPrefix(att.ContentType, "image/"):
		return unify.TypePhoto
	case strings.HasPrefix(att.ContentType, "video/"):
		return unify.TypeVideo
	case strings.HasPrefix(att.ContentType, "audio/"):
		return unify.TypeAudio
	default:
		return unify.TypeDocument
	}
}

func userParticipant(u *discordgo.User) unify.Participant {
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return unify.Participant{
		ID:       u.ID,
		Name:     name,
		Username: u.Username,
		Avatar:   u.AvatarURL(""),
		Type:     unify.TargetUser,
	}
}

// channelParticipant builds the "to" side. A message without a guild is a
// DM; everything else is a guild channel. The event's own metadata is
// authoritative, no inference involved.
func channelParticipant(channelID, guildID string, ch *discordgo.Channel) unify.Participant {
	p := unify.Participant{ID: channelID, Type: unify.TargetChannel}
	if guildID == "" {
		p.Type = unify.TargetUser
	}
	if ch != nil {
		p.Name = ch.Name
	}
	return p
}
