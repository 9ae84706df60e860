package unify

import (
	"errors"
	"testing"
)

func TestParseCompoundID_Valid(t *testing.T) {
	chatID, messageID, err := ParseCompoundID("100:200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chatID != "100" {
		t.Errorf("expected chat ID '100', got %q", chatID)
	}
	if messageID != "200" {
		t.Errorf("expected message ID '200', got %q", messageID)
	}
}

func TestParseCompoundID_Malformed(t *testing.T) {
	cases := []string{
		"",
		"100",
		"100:200:300",
		":200",
		"100:",
		":",
	}
	for _, in := range cases {
		_, _, err := ParseCompoundID(in)
		if err == nil {
			t.Errorf("expected parse error for %q", in)
			continue
		}
		if !errors.Is(err, ErrBadCompoundID) {
			t.Errorf("expected ErrBadCompoundID for %q, got: %v", in, err)
		}
	}
}

func TestNewCompoundID_RoundTrip(t *testing.T) {
	id := NewCompoundID("123456789", "42")
	if id.String() != "123456789:42" {
		t.Fatalf("unexpected compound form: %q", id)
	}
	if id.ChatID() != "123456789" || id.MessageID() != "42" {
		t.Errorf("round trip lost segments: %q / %q", id.ChatID(), id.MessageID())
	}
}

func TestContent_TaggedVariants(t *testing.T) {
	var empty Content
	if !empty.IsEmpty() {
		t.Error("zero Content should be empty")
	}

	text := TextContent("hi")
	if text.Kind != ContentText || text.Text != "hi" {
		t.Errorf("unexpected text content: %+v", text)
	}
	if text.MediaURL != "" {
		t.Error("text content must not carry a media URL")
	}

	media := MediaContent(TypePhoto, "https://example.com/p.jpg", "caption")
	if media.Kind != ContentMedia || media.MediaKind != TypePhoto {
		t.Errorf("unexpected media content: %+v", media)
	}
}
