package unify

// Result is the uniform outcome envelope for administrative operations
// (kick, ban, mute, pin, invite management). Platform-native failures are
// captured into Error as message text so callers branch on Success instead
// of matching platform exception types. Programmer errors (bad input,
// adapter not running) are never wrapped in a Result; those surface as
// ordinary Go errors from the precondition checks.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitzero"`
	Error   string `json:"error,omitempty"`
	Raw     any    `json:"-"`
}

// OK builds a successful result carrying data.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed result from a platform error. The error's text is
// extracted here; the raw error travels in Raw for escape-hatch inspection.
func Fail[T any](err error) Result[T] {
	if err == nil {
		return Result[T]{Success: false, Error: "unknown error"}
	}
	return Result[T]{Success: false, Error: err.Error(), Raw: err}
}

// FailMsg builds a failed result from plain message text.
func FailMsg[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: msg}
}
