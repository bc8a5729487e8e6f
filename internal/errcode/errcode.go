package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

type Code int

const (
	CodeSuccess Code = iota
	CodeInternal
	CodeInvalid
	CodeNotExist
	CodeTransmission
	CodeReceive
	CodeUnrecognizedFrame
	CodeTimeout
)

var code2str = map[Code]string{
	CodeSuccess:           "success",
	CodeInternal:          "internal error",
	CodeInvalid:           "invalid argument",
	CodeNotExist:          "not exist",
	CodeTransmission:      "transmission error",
	CodeReceive:           "receive error",
	CodeUnrecognizedFrame: "unrecognized frame",
	CodeTimeout:           "timeout",
}

func (c Code) String() string {
	s, ok := code2str[c]
	if !ok {
		return fmt.Sprintf("unknown code: %d", c)
	}
	return s
}

// ExitStatus is the process exit status reported for an error of kind c.
// Timeouts exit with 1, like arping(8) when no reply was received.
func (c Code) ExitStatus() int {
	switch c {
	case CodeSuccess:
		return 0
	case CodeTimeout:
		return 1
	default:
		return int(c) + 1
	}
}

type ErrorCode struct {
	code    Code
	message string
	err     error
}

func (e ErrorCode) Code() Code { return e.code }
func (e ErrorCode) Message() string {
	if e.code == CodeSuccess {
		return e.Code().String()
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e ErrorCode) Error() string {
	if e.err == nil {
		return e.Message()
	}
	return fmt.Sprintf("%s: %s", e.Message(), e.err)
}

func (e ErrorCode) Unwrap() error   { return e.err }
func (e ErrorCode) ExitStatus() int { return e.code.ExitStatus() }
func (e ErrorCode) Is(err error) bool {
	other, ok := err.(ErrorCode)
	return ok && other.message == "" && other.err == nil && other.code == e.code
}

// Kind returns a bare ErrorCode usable as an errors.Is target.
func Kind(code Code) ErrorCode {
	return ErrorCode{code: code}
}

func New(code Code, format string, a ...any) ErrorCode {
	return ErrorCode{
		code:    code,
		message: fmt.Sprintf(format, a...),
	}
}

// Wrap attaches code to err, keeping err reachable by errors.Is/As.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return ErrorCode{code: code, message: msg, err: err}
}

// CodeOf reports the kind of err, CodeInternal for errors without one.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var e ErrorCode
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
