package telegram

import (
	"testing"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

const testBotID int64 = 99999

func testNormalizer() normalizer { return normalizer{botID: testBotID} }

func privateTextMessage() *telego.Message {
	return &telego.Message{
		MessageID: 42,
		Date:      1700000000,
		Chat:      telego.Chat{ID: 123456789, Type: telego.ChatTypePrivate, FirstName: "Alice"},
		From:      &telego.User{ID: 123456789, FirstName: "Alice", Username: "alice"},
		Text:      "hi",
	}
}

func TestNormalizeMessage_PrivateText(t *testing.T) {
	msg, ok := testNormalizer().normalizeMessage(privateTextMessage())
	if !ok {
		t.Fatal("message should not be dropped")
	}

	if msg.Platform != unify.PlatformTelegram || msg.Type != unify.TypeText {
		t.Errorf("unexpected platform/type: %v/%v", msg.Platform, msg.Type)
	}
	if msg.Content.Text != "hi" || msg.Content.Kind != unify.ContentText {
		t.Errorf("unexpected content: %+v", msg.Content)
	}
	if msg.Content.MediaURL != "" {
		t.Error("text message must not carry a media reference")
	}

	wantPublic := FormatPublicID((1 << 62) + 123456789)
	if msg.To.ID != wantPublic {
		t.Errorf("to.id should be the tagged public ID %s, got %s", wantPublic, msg.To.ID)
	}
	if msg.To.Type != unify.TargetUser {
		t.Errorf("private chat should classify as user, got %v", msg.To.Type)
	}

	if msg.ID.String() != "123456789:42" {
		t.Errorf("unexpected compound ID %q", msg.ID)
	}
	if msg.Timestamp != 1700000000000 {
		t.Errorf("timestamp should be epoch milliseconds, got %d", msg.Timestamp)
	}
	if msg.Thread != nil {
		t.Error("thread info must never be synthesized")
	}
	if msg.Raw == nil {
		t.Error("raw payload should be retained")
	}
}

func TestNormalizeMessage_DropsOwnBotMessages(t *testing.T) {
	raw := privateTextMessage()
	raw.From = &telego.User{ID: testBotID, FirstName: "bridge", IsBot: true}
	if _, ok := testNormalizer().normalizeMessage(raw); ok {
		t.Fatal("messages authored by the bot itself must be dropped")
	}
}

func TestNormalizeMessage_ContentPriority(t *testing.T) {
	// An event carrying both text and a photo classifies as text.
	raw := privateTextMessage()
	raw.Photo = []telego.PhotoSize{{FileID: "small"}, {FileID: "big"}}
	msg, _ := testNormalizer().normalizeMessage(raw)
	if msg.Type != unify.TypeText {
		t.Errorf("text outranks photo, got %v", msg.Type)
	}

	// Photo outranks document.
	raw = privateTextMessage()
	raw.Text = ""
	raw.Caption = "pic"
	raw.Photo = []telego.PhotoSize{{FileID: "small"}, {FileID: "big"}}
	raw.Document = &telego.Document{FileID: "doc"}
	msg, _ = testNormalizer().normalizeMessage(raw)
	if msg.Type != unify.TypePhoto {
		t.Errorf("photo outranks document, got %v", msg.Type)
	}
	if msg.Content.MediaURL != "big" {
		t.Errorf("should pick the largest photo size, got %q", msg.Content.MediaURL)
	}
	if msg.Content.Text != "pic" {
		t.Errorf("caption should travel as content text, got %q", msg.Content.Text)
	}
}

func TestNormalizeMessage_EmptyPayloadStillNormalizes(t *testing.T) {
	raw := privateTextMessage()
	raw.Text = ""
	msg, ok := testNormalizer().normalizeMessage(raw)
	if !ok {
		t.Fatal("an event with no recognizable payload is not an error")
	}
	if msg.Type != unify.TypeUnknown {
		t.Errorf("expected best-effort unknown type, got %v", msg.Type)
	}
	if !msg.Content.IsEmpty() {
		t.Errorf("expected empty content, got %+v", msg.Content)
	}
}

func TestNormalizeMessage_GroupReply(t *testing.T) {
	raw := &telego.Message{
		MessageID: 7,
		Date:      1700000100,
		Chat:      telego.Chat{ID: -1001234567890, Type: telego.ChatTypeSupergroup, Title: "ops"},
		From:      &telego.User{ID: 555, FirstName: "Bob"},
		Text:      "agreed",
		ReplyToMessage: &telego.Message{
			MessageID: 6,
			Chat:      telego.Chat{ID: -1001234567890, Type: telego.ChatTypeSupergroup},
			From:      &telego.User{ID: 556, FirstName: "Carol"},
			Text:      "ship it?",
		},
	}
	msg, _ := testNormalizer().normalizeMessage(raw)

	if msg.To.Type != unify.TargetGroup {
		t.Errorf("supergroup should classify as group, got %v", msg.To.Type)
	}
	if msg.To.ID != FormatPublicID(1001234567890) {
		t.Errorf("group public ID should be the absolute value, got %s", msg.To.ID)
	}
	if msg.ReplyTo == nil {
		t.Fatal("reply linkage missing")
	}
	if msg.ReplyTo.ID.String() != "-1001234567890:6" {
		t.Errorf("reply must share the parent chat ID, got %q", msg.ReplyTo.ID)
	}
	if msg.ReplyTo.Text != "ship it?" || msg.ReplyTo.From == nil || msg.ReplyTo.From.Name != "Carol" {
		t.Errorf("reply context incomplete: %+v", msg.ReplyTo)
	}
}

func TestNormalizeMessage_ForumTopic(t *testing.T) {
	raw := &telego.Message{
		MessageID:       9,
		Date:            1700000200,
		Chat:            telego.Chat{ID: -1009999, Type: telego.ChatTypeSupergroup, Title: "forum"},
		From:            &telego.User{ID: 555, FirstName: "Bob"},
		Text:            "topic chatter",
		MessageThreadID: 321,
		IsTopicMessage:  true,
	}
	msg, _ := testNormalizer().normalizeMessage(raw)
	if msg.Thread == nil {
		t.Fatal("expected thread info for a forum topic message")
	}
	if msg.Thread.ID != "321" {
		t.Errorf("unexpected thread ID %q", msg.Thread.ID)
	}
}

func TestNormalizeMessage_Sticker(t *testing.T) {
	raw := privateTextMessage()
	raw.Text = ""
	raw.Sticker = &telego.Sticker{FileID: "stk-1", Emoji: "🎉"}
	msg, _ := testNormalizer().normalizeMessage(raw)
	if msg.Type != unify.TypeSticker || msg.Content.StickerID != "stk-1" {
		t.Errorf("unexpected sticker normalization: %v %+v", msg.Type, msg.Content)
	}
}

func TestNormalizeReaction(t *testing.T) {
	raw := &telego.MessageReactionUpdated{
		Chat:      telego.Chat{ID: -1001234567890, Type: telego.ChatTypeSupergroup, Title: "ops"},
		MessageID: 50,
		User:      &telego.User{ID: 555, FirstName: "Bob"},
		Date:      1700000300,
		NewReaction: []telego.ReactionType{
			&telego.ReactionTypeEmoji{Type: "emoji", Emoji: "👍"},
		},
	}
	msg, ok := testNormalizer().normalizeReaction(raw)
	if !ok {
		t.Fatal("reaction should normalize")
	}
	if msg.Type != unify.TypeReaction || msg.Content.Emoji != "👍" {
		t.Errorf("unexpected reaction: %v %+v", msg.Type, msg.Content)
	}
	if msg.ReplyTo == nil || msg.ReplyTo.ID.String() != "-1001234567890:50" {
		t.Errorf("reaction should reference the reacted message, got %+v", msg.ReplyTo)
	}
}

func TestNormalizeReaction_DropsOwn(t *testing.T) {
	raw := &telego.MessageReactionUpdated{
		Chat: telego.Chat{ID: -100, Type: telego.ChatTypeSupergroup},
		User: &telego.User{ID: testBotID},
	}
	if _, ok := testNormalizer().normalizeReaction(raw); ok {
		t.Fatal("own reactions must be dropped")
	}
}

func TestNormalizeCallback(t *testing.T) {
	raw := &telego.CallbackQuery{
		ID:   "cb-1",
		From: telego.User{ID: 555, FirstName: "Bob"},
		Data: "approve:17",
	}
	msg, ok := testNormalizer().normalizeCallback(raw)
	if !ok {
		t.Fatal("callback should normalize")
	}
	if msg.Type != unify.TypeCallback || msg.Content.Text != "approve:17" {
		t.Errorf("unexpected callback normalization: %v %+v", msg.Type, msg.Content)
	}
}
