package errors

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for message templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// userMessages maps codes to user-facing command-rejection text. Codes
// without an entry fall back to the internal message, which is written to
// be safe for display.
var userMessages = map[Code]string{
	CodeCommandGMOnly:         "Only the GM can use that command.",
	CodeCommandUnknown:        "I don't recognize that command. Try /help.",
	CodeCombatNotActive:       "No combat is being tracked right now. Start one with /combat start.",
	CodeCombatAlreadyActive:   "Combat is already running. End it first with /endcombat.",
	CodeCombatNoActivePlayers: "No active players on the roster; the phase cannot advance on its own.",
	CodeHpCapExceeded:         "Too many HP entries are being tracked. Remove one first.",
	CodeClockCapExceeded:      "Too many clocks are being tracked. Delete one first.",
	CodeCampaignPaused:        "This campaign is paused.",
}

// UserMessage renders an error as user-facing rejection text.
func UserMessage(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return "Something went wrong with that command."
	}
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return e.Message
}
