package cli

import (
	"errors"

	"github.com/securepipe/securepipe/internal/common/apperrors"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrValidation reports bad or missing user input. No request is sent.
	ErrValidation = apperrors.New("invalid input").SetExitCode(apperrors.ExitValidation)
	// ErrAborted is returned when the user declines a confirmation or closes
	// a prompt.
	ErrAborted = apperrors.New("Aborted!")
)

// failed prefixes err with the action that failed, keeping its class.
func failed(action string, err error) error {
	if err == nil {
		return nil
	}
	var ae apperrors.Error
	if errors.As(err, &ae) {
		return ae.Prefix(action)
	}
	return pkgerrors.Wrap(err, action)
}
