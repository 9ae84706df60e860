package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

const testBotID = "900000000000000001"

func testNormalizer() normalizer { return normalizer{botID: testBotID} }

func guildTextMessage() *discordgo.Message {
	return &discordgo.Message{
		ID:        "111000111",
		ChannelID: "222000222",
		GuildID:   "333000333",
		Content:   "hello",
		Timestamp: time.Unix(1700000000, 0),
		Author:    &discordgo.User{ID: "444000444", Username: "alice", GlobalName: "Alice"},
	}
}

func TestNormalizeMessage_GuildText(t *testing.T) {
	msg, ok := testNormalizer().normalizeMessage(guildTextMessage(), nil)
	if !ok {
		t.Fatal("message should not be dropped")
	}

	if msg.Platform != unify.PlatformDiscord || msg.Type != unify.TypeText {
		t.Errorf("unexpected platform/type: %v/%v", msg.Platform, msg.Type)
	}
	if msg.Content.Text != "hello" {
		t.Errorf("unexpected content text %q", msg.Content.Text)
	}
	if msg.From.Name != "Alice" || msg.From.Username != "alice" {
		t.Errorf("display name should win over username: %+v", msg.From)
	}
	if msg.To.ID != "222000222" || msg.To.Type != unify.TargetChannel {
		t.Errorf("guild message should target the channel: %+v", msg.To)
	}
	if msg.ID.String() != "222000222:111000111" {
		t.Errorf("unexpected compound ID %q", msg.ID)
	}
	if msg.Timestamp != 1700000000000 {
		t.Errorf("timestamp should be epoch milliseconds, got %d", msg.Timestamp)
	}
}

func TestNormalizeMessage_DirectMessage(t *testing.T) {
	raw := guildTextMessage()
	raw.GuildID = ""
	msg, _ := testNormalizer().normalizeMessage(raw, nil)
	if msg.To.Type != unify.TargetUser {
		t.Errorf("a guildless message is a DM, got %v", msg.To.Type)
	}
}

func TestNormalizeMessage_DropsOwnBotMessages(t *testing.T) {
	raw := guildTextMessage()
	raw.Author = &discordgo.User{ID: testBotID, Username: "bridge"}
	if _, ok := testNormalizer().normalizeMessage(raw, nil); ok {
		t.Fatal("messages authored by the bot itself must be dropped")
	}
}

func TestNormalizeMessage_AttachmentKinds(t *testing.T) {
	cases := []struct {
		contentType string
		want        unify.MessageType
	}{
		{"image/png", unify.TypePhoto},
		{"video/mp4", unify.TypeVideo},
		{"audio/ogg", unify.TypeAudio},
		{"application/pdf", unify.TypeDocument},
		{"", unify.TypeDocument},
	}
	for _, tc := range cases {
		raw := guildTextMessage()
		raw.Content = ""
		raw.Attachments = []*discordgo.MessageAttachment{{
			URL:         "https://cdn.example/file",
			ContentType: tc.contentType,
		}}
		msg, _ := testNormalizer().normalizeMessage(raw, nil)
		if msg.Type != tc.want {
			t.Errorf("content type %q: want %v, got %v", tc.contentType, tc.want, msg.Type)
		}
		if msg.Content.MediaURL != "https://cdn.example/file" {
			t.Errorf("content type %q: media URL lost", tc.contentType)
		}
	}
}

func TestNormalizeMessage_TextOutranksAttachment(t *testing.T) {
	raw := guildTextMessage()
	raw.Attachments = []*discordgo.MessageAttachment{{URL: "u", ContentType: "image/png"}}
	msg, _ := testNormalizer().normalizeMessage(raw, nil)
	if msg.Type != unify.TypeText {
		t.Errorf("text outranks attachments, got %v", msg.Type)
	}
}

func TestNormalizeMessage_Sticker(t *testing.T) {
	raw := guildTextMessage()
	raw.Content = ""
	raw.StickerItems = []*discordgo.StickerItem{{ID: "stk-9", Name: "party"}}
	msg, _ := testNormalizer().normalizeMessage(raw, nil)
	if msg.Type != unify.TypeSticker || msg.Content.StickerID != "stk-9" {
		t.Errorf("unexpected sticker normalization: %v %+v", msg.Type, msg.Content)
	}
}

func TestNormalizeMessage_Reply(t *testing.T) {
	raw := guildTextMessage()
	raw.ReferencedMessage = &discordgo.Message{
		ID:      "110000110",
		Content: "original",
		Author:  &discordgo.User{ID: "555", Username: "bob"},
	}
	msg, _ := testNormalizer().normalizeMessage(raw, nil)
	if msg.ReplyTo == nil {
		t.Fatal("reply linkage missing")
	}
	if msg.ReplyTo.ID.String() != "222000222:110000110" {
		t.Errorf("reply must share the channel ID, got %q", msg.ReplyTo.ID)
	}
	if msg.ReplyTo.Text != "original" || msg.ReplyTo.From == nil {
		t.Errorf("reply context incomplete: %+v", msg.ReplyTo)
	}
}

func TestNormalizeMessage_Thread(t *testing.T) {
	ch := &discordgo.Channel{
		ID:   "222000222",
		Name: "build-failures",
		Type: discordgo.ChannelTypeGuildPublicThread,
	}
	msg, _ := testNormalizer().normalizeMessage(guildTextMessage(), ch)
	if msg.Thread == nil {
		t.Fatal("expected thread info for a thread channel")
	}
	if msg.Thread.ID != "222000222" || msg.Thread.Title != "build-failures" {
		t.Errorf("unexpected thread info: %+v", msg.Thread)
	}
}

func TestNormalizeMessage_PlainChannelHasNoThread(t *testing.T) {
	ch := &discordgo.Channel{ID: "222000222", Name: "general", Type: discordgo.ChannelTypeGuildText}
	msg, _ := testNormalizer().normalizeMessage(guildTextMessage(), ch)
	if msg.Thread != nil {
		t.Error("thread info must never be synthesized for plain channels")
	}
	if msg.To.Name != "general" {
		t.Errorf("channel metadata should fill the target name, got %q", msg.To.Name)
	}
}

func TestNormalizeReaction(t *testing.T) {
	raw := &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			UserID:    "555",
			MessageID: "111000111",
			ChannelID: "222000222",
			GuildID:   "333000333",
			Emoji:     discordgo.Emoji{Name: "👍"},
		},
	}
	msg, ok := testNormalizer().normalizeReaction(raw)
	if !ok {
		t.Fatal("reaction should normalize")
	}
	if msg.Type != unify.TypeReaction || msg.Content.Emoji != "👍" {
		t.Errorf("unexpected reaction: %v %+v", msg.Type, msg.Content)
	}
	if msg.ReplyTo == nil || msg.ReplyTo.ID.String() != "222000222:111000111" {
		t.Errorf("reaction should reference the reacted message, got %+v", msg.ReplyTo)
	}
}

func TestNormalizeReaction_DropsOwn(t *testing.T) {
	raw := &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{UserID: testBotID},
	}
	if _, ok := testNormalizer().normalizeReaction(raw); ok {
		t.Fatal("own reactions must be dropped")
	}
}

func TestNormalizeInteraction(t *testing.T) {
	raw := &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "222000222",
		GuildID:   "333000333",
		Member: &discordgo.Member{
			User: &discordgo.User{ID: "555", Username: "bob"},
		},
		Data: discordgo.MessageComponentInteractionData{CustomID: "approve:17"},
		Message: &discordgo.Message{
			ID:      "111000111",
			Content: "deploy?",
		},
	}
	msg, ok := testNormalizer().normalizeInteraction(raw)
	if !ok {
		t.Fatal("component interaction should normalize")
	}
	if msg.Type != unify.TypeCallback || msg.Content.Text != "approve:17" {
		t.Errorf("unexpected callback normalization: %v %+v", msg.Type, msg.Content)
	}
	if msg.ReplyTo == nil || msg.ReplyTo.ID.String() != "222000222:111000111" {
		t.Errorf("callback should reference the component's message, got %+v", msg.ReplyTo)
	}
}

func TestNormalizeInteraction_IgnoresNonComponent(t *testing.T) {
	raw := &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand}
	if _, ok := testNormalizer().normalizeInteraction(raw); ok {
		t.Fatal("only component interactions are bridged")
	}
}
