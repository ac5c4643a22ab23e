package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/securepipe/securepipe/internal/common/apperrors"
)

// Failure classes reported by the gateway. Errors returned by Client match
// exactly one of these with errors.Is.
var (
	ErrNotAuthenticated = apperrors.New("No configuration found. Run 'securepipe auth login' first.").
				SetExitCode(apperrors.ExitNotAuthenticated)
	ErrAuthenticationFailed = apperrors.New("Authentication failed. Run 'securepipe auth login' to re-authenticate.").
				SetExitCode(apperrors.ExitAuthenticationFailed)
	ErrAPI = apperrors.New("API Error").
		SetExitCode(apperrors.ExitAPIError)
	ErrBackendUnreachable = apperrors.New("Cannot connect to SecurePipe API. Is the backend running?").
				SetExitCode(apperrors.ExitBackendUnreachable)
	ErrRequestTimeout = apperrors.New("Request timed out. Please try again.").
				SetExitCode(apperrors.ExitRequestTimeout)
	ErrRequestFailed = apperrors.New("Request failed").
				SetExitCode(apperrors.ExitFailure)
	ErrUnsupportedMethod = apperrors.New("Unsupported method").
				SetExitCode(apperrors.ExitUnsupportedMethod)
)

// apiError builds the ApiError class for a non-401 error status.
func apiError(status int, message string) error {
	return ErrAPI.New(fmt.Sprintf("%s (Status: %d)", message, status)).SetStatusCode(status)
}

// classifyTransportError maps a failure below HTTP to a gateway error class.
func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return ErrRequestTimeout.Err(err)
	case isUnreachable(err):
		return ErrBackendUnreachable.Err(err)
	default:
		return ErrRequestFailed.MsgErr(fmt.Sprintf("Request failed: %v", err), err)
	}
}

func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
