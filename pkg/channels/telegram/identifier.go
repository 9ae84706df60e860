package telegram

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// ErrInvalidIdentifier is returned for identifiers that cannot be mapped
// in either direction. A caller error, never silently coerced.
var ErrInvalidIdentifier = errors.New("invalid chat identifier")

// privateChatTag marks public identifiers that encode a private-chat
// native ID. Telegram chat IDs use at most 52 significant bits, so bit 62
// sits safely above any native magnitude while leaving headroom below the
// uint64 sign position of the public representation.
const privateChatTag uint64 = 1 << 62

// ToPublicID maps a native Telegram chat ID into the flat non-negative
// public identifier space. Private chats (positive natives) get the tag
// bit; groups and channels (negative natives) map to their absolute
// value. The two images never collide: every tagged value exceeds every
// possible untagged one.
func ToPublicID(native int64) uint64 {
	if native < 0 {
		return uint64(-native)
	}
	return uint64(native) | privateChatTag
}

// ToNativeID reverses ToPublicID. The caller must supply the known chat
// kind: an untagged public value is ambiguous between "positive native"
// and "absolute value of a negative native", and the codec refuses to
// guess. Only kind == TargetGroup (or TargetChannel) restores the sign.
func ToNativeID(public uint64, kind unify.TargetType) (int64, error) {
	if public == 0 {
		return 0, fmt.Errorf("%w: zero public ID", ErrInvalidIdentifier)
	}
	if public&privateChatTag != 0 {
		return int64(public &^ privateChatTag), nil
	}
	if public > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidIdentifier, public)
	}
	if kind == unify.TargetGroup || kind == unify.TargetChannel {
		return -int64(public), nil
	}
	return int64(public), nil
}

// KindOf classifies a codec-produced public identifier. Tagged values are
// private chats; untagged nonzero values only arise from negative natives,
// so they classify as groups. Raw caller-supplied strings that never went
// through ToPublicID belong to the resolver, not here.
func KindOf(public uint64) unify.TargetType {
	switch {
	case public&privateChatTag != 0:
		return unify.TargetUser
	case public == 0:
		return unify.TargetUnknown
	default:
		return unify.TargetGroup
	}
}

// ParsePublicID parses the decimal string form of a public identifier.
func ParsePublicID(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return v, nil
}

// FormatPublicID renders a public identifier in its decimal string form.
func FormatPublicID(public uint64) string {
	return strconv.FormatUint(public, 10)
}
