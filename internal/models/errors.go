package models

// ErrorLevel indicates how the presentation layer should render an error.
type ErrorLevel string

const (
	ErrorLevelWarn  ErrorLevel = "warn"
	ErrorLevelError ErrorLevel = "error"
)

// APIError is the structured error envelope every endpoint and tool returns
// on failure. Content carries the user-facing message; Code is the
// machine-readable tag.
type APIError struct {
	Error   string     `json:"error"`
	Code    string     `json:"code"`
	Level   ErrorLevel `json:"level"`
	Content string     `json:"content"`
}
