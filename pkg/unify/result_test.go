package unify

import (
	"errors"
	"testing"
)

func TestResult_OK(t *testing.T) {
	res := OK("invite-url")
	if !res.Success {
		t.Fatal("OK result should report success")
	}
	if res.Data != "invite-url" {
		t.Errorf("expected data 'invite-url', got %q", res.Data)
	}
	if res.Error != "" {
		t.Errorf("OK result should carry no error text, got %q", res.Error)
	}
}

func TestResult_Fail_ExtractsMessageText(t *testing.T) {
	cause := errors.New("Forbidden: bot is not a member of the channel chat")
	res := Fail[bool](cause)
	if res.Success {
		t.Fatal("Fail result should not report success")
	}
	if res.Error != cause.Error() {
		t.Errorf("expected error text %q, got %q", cause.Error(), res.Error)
	}
	raw, ok := res.Raw.(error)
	if !ok || !errors.Is(raw, cause) {
		t.Error("Raw should retain the original error")
	}
}

func TestResult_Fail_NilError(t *testing.T) {
	res := Fail[string](nil)
	if res.Success || res.Error == "" {
		t.Errorf("nil-error failure should still carry text: %+v", res)
	}
}
