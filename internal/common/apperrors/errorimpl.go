package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	base       error
	causes     []error
	statuscode int
	exitcode   int
	prefix     string
}

func (e *appError) Error() string {
	if e.prefix != "" {
		return e.prefix + ": " + e.msg
	}
	return e.msg
}

func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.causes {
		if err == e.base {
			continue
		}
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) derive(msg string, causes []error) *appError {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     causes,
		statuscode: e.statuscode,
		exitcode:   e.exitcode,
	}
}

func (e *appError) New(msg string) Error {
	return e.derive(msg, nil)
}

func (e *appError) Msg(msg string) Error {
	return e.derive(msg, append([]error{e}, e.causes...))
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return e.derive(msg, append([]error{e}, errs...))
}

func (e *appError) Err(errs ...error) Error {
	return e.derive(e.msg, append([]error{e}, errs...))
}

func (e *appError) Prefix(p string) Error {
	cp := *e
	if cp.prefix != "" {
		p = p + ": " + cp.prefix
	}
	cp.prefix = p
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func (e *appError) SetExitCode(code int) Error {
	cp := *e
	cp.exitcode = code
	return &cp
}

func (e *appError) ExitCode() int {
	return e.exitcode
}

// Is reports whether target is the base error or any attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root error with the given message and exit code 1.
func New(msg string) Error {
	return &appError{
		msg:      msg,
		exitcode: ExitFailure,
	}
}
