package telegram

import (
	"strconv"
	"strings"

	"github.com/tinyland-inc/clawbridge/pkg/unify"
)

// TargetResolver classifies send targets as user, group, or channel.
// Telegram needs the classification to pick among structurally different
// send calls, and the target string alone is sometimes ambiguous. Results
// are memoized per adapter instance: a target's type never changes across
// calls, and classification may otherwise cost a remote lookup.
//
// Not safe for concurrent use; all adapter calls run on one event loop.
type TargetResolver struct {
	cache map[string]unify.TargetType
}

func NewTargetResolver() *TargetResolver {
	return &TargetResolver{cache: make(map[string]unify.TargetType)}
}

// Resolve returns the target's type. Priority order: an explicit
// caller-supplied type always wins and refreshes the cache (letting a
// caller permanently correct a wrong inference), then the cache, then
// format inference. When inference fails the conservative default (user)
// is returned without caching, so unrecognized formats never poison the
// cache with a guess. Never fails.
func (r *TargetResolver) Resolve(target string, explicit unify.TargetType) unify.TargetType {
	if explicit != "" && explicit != unify.TargetUnknown {
		r.cache[target] = explicit
		return explicit
	}
	if t, ok := r.cache[target]; ok {
		return t
	}
	if t, ok := inferTargetType(target); ok {
		r.cache[target] = t
		return t
	}
	return unify.TargetUser
}

// Clear drops every cached classification. Called on adapter teardown so
// stale entries never survive a reconnect with a different configuration.
func (r *TargetResolver) Clear() {
	clear(r.cache)
}

// Len reports the number of cached classifications.
func (r *TargetResolver) Len() int {
	return len(r.cache)
}

// inferTargetType applies format-based inference: a leading "@" is a
// public channel handle; numeric targets are users when positive, groups
// when negative or when they carry the private-chat tag bit.
func inferTargetType(target string) (unify.TargetType, bool) {
	if strings.HasPrefix(target, "@") {
		return unify.TargetChannel, true
	}
	n, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return unify.TargetUnknown, false
	}
	if n < 0 || uint64(n)&privateChatTag != 0 {
		return unify.TargetGroup, true
	}
	return unify.TargetUser, true
}
