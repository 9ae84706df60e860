// Package discord implements the Discord channel adapter over the
// discordgo gateway and REST API, translating guild messaging and
// moderation into the unified vocabulary.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/channels"
	"github.com/tinyland-inc/clawbridge/pkg/config"
	"github.com/tinyland-inc/clawbridge/pkg/logger"
	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// discordCaps is the static capability table. Polls exist on Discord but
// only through a partial API surface here, so the flag stays false per
// the degraded-feature rule.
var discordCaps = &unify.Capabilities{
	Base: unify.BaseCaps{
		SendText:      true,
		SendMedia:     true,
		EditMessage:   true,
		DeleteMessage: true,
	},
	Conversation: unify.ConversationCaps{
		Replies: true,
		Threads: true,
		Forward: false,
	},
	Interaction: unify.InteractionCaps{
		Reactions: true,
		Buttons:   false,
		Polls:     false,
	},
	Discovery: unify.DiscoveryCaps{
		FetchUser:   true,
		FetchChat:   true,
		ListMembers: false,
	},
	Management: unify.ManagementCaps{
		Kick:    true,
		Ban:     true,
		Mute:    true, // member timeout
		Pin:     true,
		Invites: true,
	},
	Advanced: unify.AdvancedCaps{
		Stickers:        false,
		Voice:           false,
		TypingIndicator: true,
		SlashCommands:   false,
	},
}

const maxMessageLength = 2000

type DiscordChannel struct {
	*channels.BaseChannel
	config  config.DiscordConfig
	session *discordgo.Session
	norm    normalizer
}

func NewDiscordChannel(cfg config.DiscordConfig, b *bus.MessageBus) *DiscordChannel {
	return &DiscordChannel{
		BaseChannel: channels.NewBaseChannel(
			"discord",
			unify.PlatformDiscord,
			discordCaps,
			b,
			cfg.AllowFrom,
			channels.WithMaxMessageLength(maxMessageLength),
		),
		config: cfg,
	}
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + c.config.Token)
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	session.AddHandler(c.onMessageCreate)
	session.AddHandler(c.onReactionAdd)
	session.AddHandler(c.onInteraction)

	if err := session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	c.session = session
	if session.State != nil && session.State.User != nil {
		c.norm = normalizer{botID: session.State.User.ID}
	}

	c.SetRunning(true)
	logger.InfoCF("discord", "Connected", map[string]any{"bot_id": c.norm.botID})
	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	c.SetRunning(false)
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			return fmt.Errorf("closing discord gateway: %w", err)
		}
	}
	logger.InfoCF("discord", "Stopped", nil)
	return nil
}

func (c *DiscordChannel) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if c.config.MentionOnly && m.GuildID != "" && !mentionsUser(m.Message, c.norm.botID) {
		return
	}
	msg, ok := c.norm.normalizeMessage(m.Message, c.lookupChannel(m.ChannelID))
	if !ok {
		return
	}
	c.HandleMessage(context.Background(), msg)
}

func (c *DiscordChannel) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	msg, ok := c.norm.normalizeReaction(r)
	if !ok {
		return
	}
	c.HandleMessage(context.Background(), msg)
}

func (c *DiscordChannel) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	msg, ok := c.norm.normalizeInteraction(i.Interaction)
	if !ok {
		return
	}
	c.HandleMessage(context.Background(), msg)
}

// lookupChannel resolves channel metadata, preferring the session state
// cache over a REST round trip. Best effort; nil is fine.
func (c *DiscordChannel) lookupChannel(channelID string) *discordgo.Channel {
	if c.session == nil {
		return nil
	}
	if ch, err := c.session.State.Channel(channelID); err == nil {
		return ch
	}
	ch, err := c.session.Channel(channelID)
	if err != nil {
		return nil
	}
	return ch
}

func (c *DiscordChannel) Send(ctx context.Context, req unify.SendRequest) (*unify.SendResult, error) {
	if !c.IsRunning() {
		return nil, channels.ErrNotRunning
	}
	if req.Content.IsEmpty() {
		return nil, fmt.Errorf("send: empty content for target %q", req.Target)
	}

	channelID := req.Target
	if req.ThreadID != "" {
		// Threads are channels of their own; sending into the thread
		// just means addressing it.
		channelID = req.ThreadID
	}
	if req.TargetType == unify.TargetUser {
		dm, err := c.session.UserChannelCreate(req.Target)
		if err != nil {
			logger.ErrorCF("discord", "DM channel create failed", map[string]any{
				"target": req.Target,
				"error":  err.Error(),
			})
			return nil, err
		}
		channelID = dm.ID
	}

	_ = c.session.ChannelTyping(channelID)

	data := &discordgo.MessageSend{}
	switch req.Content.Kind {
	case unify.ContentText:
		data.Content = req.Content.Text
	case unify.ContentMedia:
		data.Content = req.Content.Text
		data.Embeds = []*discordgo.MessageEmbed{mediaEmbed(req.Content)}
	default:
		return nil, fmt.Errorf("%w: discord cannot send %s content", channels.ErrNotSupported, req.Content.Kind)
	}
	if req.ReplyTo != "" {
		replyChannel, messageID, err := unify.ParseCompoundID(string(req.ReplyTo))
		if err != nil {
			return nil, err
		}
		data.Reference = &discordgo.MessageReference{
			ChannelID: replyChannel,
			MessageID: messageID,
		}
	}

	msg, err := c.session.ChannelMessageSendComplex(channelID, data)
	if err != nil {
		logger.ErrorCF("discord", "Send failed", map[string]any{
			"target": req.Target,
			"error":  err.Error(),
		})
		return nil, err
	}

	return &unify.SendResult{
		ID:        unify.NewCompoundID(msg.ChannelID, msg.ID),
		ChatID:    msg.ChannelID,
		Timestamp: msg.Timestamp.UnixMilli(),
		Raw:       msg,
	}, nil
}

func mediaEmbed(content unify.Content) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{}
	switch content.MediaKind {
	case unify.TypePhoto:
		embed.Image = &discordgo.MessageEmbedImage{URL: content.MediaURL}
	case unify.TypeVideo:
		embed.Video = &discordgo.MessageEmbedVideo{URL: content.MediaURL}
	default:
		embed.URL = content.MediaURL
		embed.Title = string(content.MediaKind)
	}
	return embed
}

func (c *DiscordChannel) Reply(ctx context.Context, to unify.CompoundID, content unify.Content) (*unify.SendResult, error) {
	channelID, _, err := unify.ParseCompoundID(string(to))
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, unify.SendRequest{
		Channel: c.Name(),
		Target:  channelID,
		Content: content,
		ReplyTo: to,
	})
}

func (c *DiscordChannel) Edit(ctx context.Context, id unify.CompoundID, content unify.Content) error {
	if !c.IsRunning() {
		return channels.ErrNotRunning
	}
	if content.Kind != unify.ContentText {
		return fmt.Errorf("%w: discord can only edit text", channels.ErrNotSupported)
	}
	channelID, messageID, err := unify.ParseCompoundID(string(id))
	if err != nil {
		return err
	}
	if _, err := c.session.ChannelMessageEdit(channelID, messageID, content.Text); err != nil {
		logger.ErrorCF("discord", "Edit failed", map[string]any{"id": id.String(), "error": err.Error()})
		return err
	}
	return nil
}

func (c *DiscordChannel) Delete(ctx context.Context, id unify.CompoundID) error {
	if !c.IsRunning() {
		return channels.ErrNotRunning
	}
	channelID, messageID, err := unify.ParseCompoundID(string(id))
	if err != nil {
		return err
	}
	if err := c.session.ChannelMessageDelete(channelID, messageID); err != nil {
		logger.ErrorCF("discord", "Delete failed", map[string]any{"id": id.String(), "error": err.Error()})
		return err
	}
	return nil
}

// FetchUser looks up a user by snowflake ID.
func (c *DiscordChannel) FetchUser(ctx context.Context, userID string) (unify.Result[unify.Participant], error) {
	if !c.IsRunning() {
		return unify.Result[unify.Participant]{}, channels.ErrNotRunning
	}
	user, err := c.session.User(userID)
	if err != nil {
		return unify.Fail[unify.Participant](err), nil
	}
	return unify.OK(userParticipant(user)), nil
}

// FetchChat looks up a channel by snowflake ID.
func (c *DiscordChannel) FetchChat(ctx context.Context, channelID string) (unify.Result[unify.Participant], error) {
	if !c.IsRunning() {
		return unify.Result[unify.Participant]{}, channels.ErrNotRunning
	}
	ch, err := c.session.Channel(channelID)
	if err != nil {
		return unify.Fail[unify.Participant](err), nil
	}
	p := unify.Participant{ID: ch.ID, Name: ch.Name, Type: unify.TargetChannel}
	if ch.Type == discordgo.ChannelTypeDM {
		p.Type = unify.TargetUser
	}
	return unify.OK(p), nil
}

// --- moderation surface -------------------------------------------------
//
// Discord's guild operations key on guild ID, not channel ID, so the
// chatID argument for member operations is the guild's snowflake.

func (c *DiscordChannel) Kick(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	if !c.IsRunning() {
		return unify.Result[bool]{}, channels.ErrNotRunning
	}
	if err := c.session.GuildMemberDeleteWithReason(chatID, userID, ""); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) Ban(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	if !c.IsRunning() {
		return unify.Result[bool]{}, channels.ErrNotRunning
	}
	if err := c.session.GuildBanCreateWithReason(chatID, userID, "", 0); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) Unban(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	if !c.IsRunning() {
		return unify.Result[bool]{}, channels.ErrNotRunning
	}
	if err := c.session.GuildBanDelete(chatID, userID); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) Mute(ctx context.Context, chatID, userID string, duration time.Duration) (unify.Result[bool], error) {
	if !c.IsRunning() {
		return unify.Result[bool]{}, channels.ErrNotRunning
	}
	until := time.Now().Add(duration)
	if err := c.session.GuildMemberTimeout(chatID, userID, &until); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) Pin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error) {
	channelID, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.session.ChannelMessagePin(channelID, messageID); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) Unpin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error) {
	channelID, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.session.ChannelMessageUnpin(channelID, messageID); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) CreateInvite(ctx context.Context, chatID string) (unify.Result[string], error) {
	if !c.IsRunning() {
		return unify.Result[string]{}, channels.ErrNotRunning
	}
	invite, err := c.session.ChannelInviteCreate(chatID, discordgo.Invite{MaxAge: 86400})
	if err != nil {
		return unify.Fail[string](err), nil
	}
	return unify.OK("https://discord.gg/" + invite.Code), nil
}

func (c *DiscordChannel) React(ctx context.Context, id unify.CompoundID, emoji string) (unify.Result[bool], error) {
	channelID, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *DiscordChannel) modCompound(id unify.CompoundID) (string, string, error) {
	if !c.IsRunning() {
		return "", "", channels.ErrNotRunning
	}
	return unify.ParseCompoundID(string(id))
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}
