package errors

import (
	"fmt"
)

// Error is the error type returned by archivist for every expected failure.
// Code follows the http status codes, Reason is a stable machine identifier
// and Message is meant to be displayed as is.
type Error interface {
	error

	Code() int
	Reason() string
	Message() string
	Cause() error
}

// Default code defines the code that will be used by default when
// none is given. It is set to 500, Internal Server Error
var DefaultCode = 500

type myError struct {
	code   int
	reason string
	msg    string
	cause  *myError
}

func (err *myError) Error() string {
	if err.cause == nil {
		return err.msg
	}

	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *myError) Code() int {
	return err.code
}

func (err *myError) Reason() string {
	return err.reason
}

func (err *myError) Message() string {
	return err.msg
}

func (err *myError) Cause() error {
	if err.cause == nil {
		return nil
	}
	return err.cause
}

type ErrorEnricher func(error) error

func WithCode(code int) func(error) error {
	return func(err error) error {
		switch err := err.(type) {
		case nil:
			return nil
		case *myError:
			err.code = code
			return err
		}

		// default
		return &myError{
			msg:   err.Error(),
			code:  code,
			cause: nil,
		}
	}
}

// WithReason sets the machine readable reason of the error.
func WithReason(reason string) func(error) error {
	return func(err error) error {
		switch err := err.(type) {
		case nil:
			return nil
		case *myError:
			err.reason = reason
			return err
		}

		return &myError{
			msg:    err.Error(),
			code:   DefaultCode,
			reason: reason,
		}
	}
}

func WithCause(cause error) func(error) error {
	if cause == nil {
		return func(err error) error { return err }
	}

	var myCause *myError
	switch cause := cause.(type) {
	case *myError:
		myCause = cause
	default:
		myCause = &myError{msg: cause.Error(), code: DefaultCode, cause: nil}
	}

	return func(err error) error {
		if err == nil {
			return nil
		}

		if myErr, ok := err.(*myError); ok {
			myErr.cause = myCause
			return myErr
		}

		return &myError{
			msg:   err.Error(),
			code:  myCause.code,
			cause: myCause,
		}
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error
	err = &myError{
		msg:   msg,
		code:  DefaultCode,
		cause: nil,
	}

	for _, f := range fs {
		err = f(err)
	}

	return err
}

// CodeOf returns the code carried by err, DefaultCode if err is not an Error.
func CodeOf(err error) int {
	if err, ok := err.(Error); ok {
		return err.Code()
	}
	return DefaultCode
}

// ReasonOf returns the reason carried by err, or an empty string.
func ReasonOf(err error) string {
	if err, ok := err.(Error); ok {
		return err.Reason()
	}
	return ""
}

// Is reports whether err carries the given reason.
func Is(err error, reason string) bool {
	return err != nil && ReasonOf(err) == reason
}
