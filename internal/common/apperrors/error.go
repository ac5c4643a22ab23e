// Package apperrors provides the error values used across the CLI. An Error
// carries a message, an optional HTTP status and the process exit code that the
// top-level handler reports for it. Errors derived from a sentinel keep the
// sentinel's exit code and match it with errors.Is, so a command can add context
// without losing the failure class.
package apperrors

// Error defines the interface for application errors. All methods that return
// Error leave the receiver untouched and return a derived value.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // fresh message, same class
	Msg(msg string) Error                  // new message wrapping the current error
	MsgErr(msg string, err ...error) Error // new message wrapping current and extra errors
	Err(err ...error) Error                // attaches additional causes
	SetStatusCode(int) Error               // HTTP status reported by the server, if any
	StatusCode() int
	SetExitCode(int) Error // process exit code for this class of failure
	ExitCode() int
	Prefix(string) Error // "prefix: message"
	ErrorAll() string    // message followed by every attached cause
}
