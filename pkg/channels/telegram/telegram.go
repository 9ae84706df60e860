// Package telegram implements the Telegram channel adapter: the
// dual-namespace identifier codec, the target-type resolver, the inbound
// message normalizer, and the unified messaging and moderation surface
// over the Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/channels"
	"github.com/tinyland-inc/clawbridge/pkg/config"
	"github.com/tinyland-inc/clawbridge/pkg/logger"
	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// telegramCaps is the static capability table. Flags are true only for
// operations this adapter fully implements with unified semantics;
// Telegram features we expose in degraded form (inline keyboards arrive
// as callback events but cannot be sent) stay false.
var telegramCaps = &unify.Capabilities{
	Base: unify.BaseCaps{
		SendText:      true,
		SendMedia:     true,
		EditMessage:   true,
		DeleteMessage: true,
	},
	Conversation: unify.ConversationCaps{
		Replies: true,
		Threads: true, // forum topics
		Forward: false,
	},
	Interaction: unify.InteractionCaps{
		Reactions: true,
		Buttons:   false,
		Polls:     false,
	},
	Discovery: unify.DiscoveryCaps{
		FetchUser:   false,
		FetchChat:   true,
		ListMembers: false,
	},
	Management: unify.ManagementCaps{
		Kick:    true,
		Ban:     true,
		Mute:    true,
		Pin:     true,
		Invites: true,
	},
	Advanced: unify.AdvancedCaps{
		Stickers:        false,
		Voice:           true,
		TypingIndicator: true,
		SlashCommands:   false,
	},
}

const maxMessageLength = 4096

type TelegramChannel struct {
	*channels.BaseChannel
	config   config.TelegramConfig
	bot      *telego.Bot
	norm     normalizer
	resolver *TargetResolver
	cancel   context.CancelFunc
}

func NewTelegramChannel(cfg config.TelegramConfig, b *bus.MessageBus) *TelegramChannel {
	return &TelegramChannel{
		BaseChannel: channels.NewBaseChannel(
			"telegram",
			unify.PlatformTelegram,
			telegramCaps,
			b,
			cfg.AllowFrom,
			channels.WithMaxMessageLength(maxMessageLength),
		),
		config:   cfg,
		resolver: NewTargetResolver(),
	}
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	bot, err := telego.NewBot(c.config.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return fmt.Errorf("creating telegram bot: %w", err)
	}
	c.bot = bot

	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("fetching bot identity: %w", err)
	}
	c.norm = normalizer{botID: me.ID}

	pollCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	updates, err := bot.UpdatesViaLongPolling(pollCtx, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("starting long polling: %w", err)
	}

	c.SetRunning(true)
	logger.InfoCF("telegram", "Connected", map[string]any{
		"bot_id":   me.ID,
		"username": me.Username,
	})

	go c.consumeUpdates(pollCtx, updates)
	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	// Drop cached classifications; a reconnect may carry a different
	// configuration and must not inherit stale entries.
	c.resolver.Clear()
	c.SetRunning(false)
	logger.InfoCF("telegram", "Stopped", nil)
	return nil
}

func (c *TelegramChannel) consumeUpdates(ctx context.Context, updates <-chan telego.Update) {
	for update := range updates {
		var (
			msg unify.Message
			ok  bool
		)
		switch {
		case update.Message != nil:
			msg, ok = c.norm.normalizeMessage(update.Message)
		case update.MessageReaction != nil:
			msg, ok = c.norm.normalizeReaction(update.MessageReaction)
		case update.CallbackQuery != nil:
			msg, ok = c.norm.normalizeCallback(update.CallbackQuery)
		default:
			continue
		}
		if !ok {
			// Authored by the bot itself; dropped to prevent loops.
			continue
		}
		c.HandleMessage(ctx, msg)
	}
}

// Resolver exposes the adapter's target-type resolver, letting callers
// declare a target's type explicitly ahead of sends.
func (c *TelegramChannel) Resolver() *TargetResolver {
	return c.resolver
}

func (c *TelegramChannel) Send(ctx context.Context, req unify.SendRequest) (*unify.SendResult, error) {
	if !c.IsRunning() {
		return nil, channels.ErrNotRunning
	}
	if req.Content.IsEmpty() {
		return nil, fmt.Errorf("send: empty content for target %q", req.Target)
	}

	targetType := c.resolver.Resolve(req.Target, req.TargetType)
	chatID, err := c.nativeChatID(req.Target, targetType)
	if err != nil {
		return nil, err
	}

	_ = c.bot.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: chatID,
		Action: telego.ChatActionTyping,
	})

	msg, err := c.sendContent(ctx, chatID, req)
	if err != nil {
		logger.ErrorCF("telegram", "Send failed", map[string]any{
			"target": req.Target,
			"error":  err.Error(),
		})
		return nil, err
	}

	native := msg.Chat.ID
	return &unify.SendResult{
		ID:        unify.NewCompoundID(strconv.FormatInt(native, 10), strconv.Itoa(msg.MessageID)),
		ChatID:    FormatPublicID(ToPublicID(native)),
		Timestamp: msg.Date * 1000,
		Raw:       msg,
	}, nil
}

func (c *TelegramChannel) sendContent(ctx context.Context, chatID telego.ChatID, req unify.SendRequest) (*telego.Message, error) {
	threadID := 0
	if req.ThreadID != "" {
		threadID, _ = strconv.Atoi(req.ThreadID)
	}
	var replyParams *telego.ReplyParameters
	if req.ReplyTo != "" {
		_, messageID, err := unify.ParseCompoundID(string(req.ReplyTo))
		if err != nil {
			return nil, err
		}
		replyID, err := strconv.Atoi(messageID)
		if err != nil {
			return nil, fmt.Errorf("%w: message segment %q is not numeric", unify.ErrBadCompoundID, messageID)
		}
		replyParams = &telego.ReplyParameters{MessageID: replyID}
	}

	content := req.Content
	switch content.Kind {
	case unify.ContentText:
		return c.bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID:          chatID,
			Text:            content.Text,
			MessageThreadID: threadID,
			ReplyParameters: replyParams,
		})
	case unify.ContentMedia:
		return c.sendMedia(ctx, chatID, threadID, replyParams, content)
	default:
		return nil, fmt.Errorf("%w: telegram cannot send %s content", channels.ErrNotSupported, content.Kind)
	}
}

func (c *TelegramChannel) sendMedia(
	ctx context.Context,
	chatID telego.ChatID,
	threadID int,
	replyParams *telego.ReplyParameters,
	content unify.Content,
) (*telego.Message, error) {
	file := mediaInput(content.MediaURL)
	switch content.MediaKind {
	case unify.TypePhoto:
		return c.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID: chatID, Photo: file, Caption: content.Text,
			MessageThreadID: threadID, ReplyParameters: replyParams,
		})
	case unify.TypeVideo:
		return c.bot.SendVideo(ctx, &telego.SendVideoParams{
			ChatID: chatID, Video: file, Caption: content.Text,
			MessageThreadID: threadID, ReplyParameters: replyParams,
		})
	case unify.TypeVoice:
		return c.bot.SendVoice(ctx, &telego.SendVoiceParams{
			ChatID: chatID, Voice: file, Caption: content.Text,
			MessageThreadID: threadID, ReplyParameters: replyParams,
		})
	case unify.TypeAudio:
		return c.bot.SendAudio(ctx, &telego.SendAudioParams{
			ChatID: chatID, Audio: file, Caption: content.Text,
			MessageThreadID: threadID, ReplyParameters: replyParams,
		})
	default:
		return c.bot.SendDocument(ctx, &telego.SendDocumentParams{
			ChatID: chatID, Document: file, Caption: content.Text,
			MessageThreadID: threadID, ReplyParameters: replyParams,
		})
	}
}

func (c *TelegramChannel) Reply(ctx context.Context, to unify.CompoundID, content unify.Content) (*unify.SendResult, error) {
	chatID, _, err := unify.ParseCompoundID(string(to))
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, unify.SendRequest{
		Channel: c.Name(),
		Target:  chatID,
		Content: content,
		ReplyTo: to,
	})
}

func (c *TelegramChannel) Edit(ctx context.Context, id unify.CompoundID, content unify.Content) error {
	if !c.IsRunning() {
		return channels.ErrNotRunning
	}
	if content.Kind != unify.ContentText {
		return fmt.Errorf("%w: telegram can only edit text", channels.ErrNotSupported)
	}
	chatID, messageID, err := c.parseCompound(id)
	if err != nil {
		return err
	}
	if _, err := c.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      content.Text,
	}); err != nil {
		logger.ErrorCF("telegram", "Edit failed", map[string]any{"id": id.String(), "error": err.Error()})
		return err
	}
	return nil
}

func (c *TelegramChannel) Delete(ctx context.Context, id unify.CompoundID) error {
	if !c.IsRunning() {
		return channels.ErrNotRunning
	}
	chatID, messageID, err := c.parseCompound(id)
	if err != nil {
		return err
	}
	if err := c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}); err != nil {
		logger.ErrorCF("telegram", "Delete failed", map[string]any{"id": id.String(), "error": err.Error()})
		return err
	}
	return nil
}

// FetchChat looks up a chat by target and returns it as a canonical
// participant with the public identifier.
func (c *TelegramChannel) FetchChat(ctx context.Context, target string) (unify.Result[unify.Participant], error) {
	if !c.IsRunning() {
		return unify.Result[unify.Participant]{}, channels.ErrNotRunning
	}
	chatID, err := c.nativeChatID(target, c.resolver.Resolve(target, ""))
	if err != nil {
		return unify.Result[unify.Participant]{}, err
	}
	info, err := c.bot.GetChat(ctx, &telego.GetChatParams{ChatID: chatID})
	if err != nil {
		return unify.Fail[unify.Participant](err), nil
	}
	name := info.Title
	if name == "" {
		name = strings.TrimSpace(info.FirstName + " " + info.LastName)
	}
	return unify.OK(unify.Participant{
		ID:       FormatPublicID(ToPublicID(info.ID)),
		Name:     name,
		Username: info.Username,
		Type:     chatKind(info.Type),
	}), nil
}

// --- moderation surface -------------------------------------------------

func (c *TelegramChannel) Kick(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	chat, user, err := c.modTarget(chatID, userID)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	// Telegram has no single kick call: ban then lift the ban so the
	// user can rejoin.
	if err := c.bot.BanChatMember(ctx, &telego.BanChatMemberParams{ChatID: chat, UserID: user}); err != nil {
		return unify.Fail[bool](err), nil
	}
	if err := c.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{ChatID: chat, UserID: user, OnlyIfBanned: true}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) Ban(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	chat, user, err := c.modTarget(chatID, userID)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.BanChatMember(ctx, &telego.BanChatMemberParams{ChatID: chat, UserID: user}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) Unban(ctx context.Context, chatID, userID string) (unify.Result[bool], error) {
	chat, user, err := c.modTarget(chatID, userID)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{ChatID: chat, UserID: user, OnlyIfBanned: true}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) Mute(ctx context.Context, chatID, userID string, duration time.Duration) (unify.Result[bool], error) {
	chat, user, err := c.modTarget(chatID, userID)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      chat,
		UserID:      user,
		Permissions: telego.ChatPermissions{},
		UntilDate:   time.Now().Add(duration).Unix(),
	}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) Pin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error) {
	chat, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.PinChatMessage(ctx, &telego.PinChatMessageParams{ChatID: chat, MessageID: messageID}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) Unpin(ctx context.Context, id unify.CompoundID) (unify.Result[bool], error) {
	chat, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.UnpinChatMessage(ctx, &telego.UnpinChatMessageParams{ChatID: chat, MessageID: messageID}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

func (c *TelegramChannel) CreateInvite(ctx context.Context, chatID string) (unify.Result[string], error) {
	if !c.IsRunning() {
		return unify.Result[string]{}, channels.ErrNotRunning
	}
	chat, err := c.nativeChatID(chatID, c.resolver.Resolve(chatID, ""))
	if err != nil {
		return unify.Result[string]{}, err
	}
	link, err := c.bot.CreateChatInviteLink(ctx, &telego.CreateChatInviteLinkParams{ChatID: chat})
	if err != nil {
		return unify.Fail[string](err), nil
	}
	return unify.OK(link.InviteLink), nil
}

func (c *TelegramChannel) React(ctx context.Context, id unify.CompoundID, emoji string) (unify.Result[bool], error) {
	chat, messageID, err := c.modCompound(id)
	if err != nil {
		return unify.Result[bool]{}, err
	}
	if err := c.bot.SetMessageReaction(ctx, &telego.SetMessageReactionParams{
		ChatID:    chat,
		MessageID: messageID,
		Reaction:  []telego.ReactionType{&telego.ReactionTypeEmoji{Type: "emoji", Emoji: emoji}},
	}); err != nil {
		return unify.Fail[bool](err), nil
	}
	return unify.OK(true), nil
}

// --- helpers ------------------------------------------------------------

// nativeChatID converts a target string into the platform-native ChatID.
// Public handles pass through as usernames; numeric targets carrying the
// tag bit are decoded; plain numerics classified as groups are negated
// back to their native signed form.
func (c *TelegramChannel) nativeChatID(target string, targetType unify.TargetType) (telego.ChatID, error) {
	if strings.HasPrefix(target, "@") {
		return tu.Username(target), nil
	}
	n, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return telego.ChatID{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, target)
	}
	if n > 0 && uint64(n)&privateChatTag != 0 {
		native, err := ToNativeID(uint64(n), targetType)
		if err != nil {
			return telego.ChatID{}, err
		}
		return tu.ID(native), nil
	}
	if n > 0 && (targetType == unify.TargetGroup || targetType == unify.TargetChannel) {
		return tu.ID(-n), nil
	}
	return tu.ID(n), nil
}

func (c *TelegramChannel) parseCompound(id unify.CompoundID) (telego.ChatID, int, error) {
	chatID, messageID, err := unify.ParseCompoundID(string(id))
	if err != nil {
		return telego.ChatID{}, 0, err
	}
	chat, err := c.nativeChatID(chatID, c.resolver.Resolve(chatID, ""))
	if err != nil {
		return telego.ChatID{}, 0, err
	}
	msgID, err := strconv.Atoi(messageID)
	if err != nil {
		return telego.ChatID{}, 0, fmt.Errorf("%w: message segment %q is not numeric", unify.ErrBadCompoundID, messageID)
	}
	return chat, msgID, nil
}

func (c *TelegramChannel) modTarget(chatID, userID string) (telego.ChatID, int64, error) {
	if !c.IsRunning() {
		return telego.ChatID{}, 0, channels.ErrNotRunning
	}
	chat, err := c.nativeChatID(chatID, c.resolver.Resolve(chatID, ""))
	if err != nil {
		return telego.ChatID{}, 0, err
	}
	user, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return telego.ChatID{}, 0, fmt.Errorf("%w: user %q", ErrInvalidIdentifier, userID)
	}
	// Accept user IDs in public tagged form as well as native form.
	if user > 0 && uint64(user)&privateChatTag != 0 {
		native, err := ToNativeID(uint64(user), unify.TargetUser)
		if err != nil {
			return telego.ChatID{}, 0, err
		}
		user = native
	}
	return chat, user, nil
}

func (c *TelegramChannel) modCompound(id unify.CompoundID) (telego.ChatID, int, error) {
	if !c.IsRunning() {
		return telego.ChatID{}, 0, channels.ErrNotRunning
	}
	return c.parseCompound(id)
}

// mediaInput builds a telego input file from either an http(s) URL or a
// Telegram file ID obtained from a normalized inbound message.
func mediaInput(ref string) telego.InputFile {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tu.FileFromURL(ref)
	}
	return tu.FileFromID(ref)
}
