package apperrors

import "errors"

// Process exit codes, one per failure class.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitValidation           = 2
	ExitNotAuthenticated     = 3
	ExitAuthenticationFailed = 4
	ExitAPIError             = 5
	ExitBackendUnreachable   = 6
	ExitRequestTimeout       = 7
	ExitConfigCorrupt        = 8
	ExitUnsupportedMethod    = 9
)

// ExitCodeOf returns the exit code carried by err. Errors that are not
// application errors map to ExitFailure; nil maps to ExitOK.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var ae Error
	if errors.As(err, &ae) {
		return ae.ExitCode()
	}
	return ExitFailure
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var ae Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return 0
}
