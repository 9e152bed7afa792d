package errs

import "errors"

// Kind classifies an error by how a caller can react to it.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	default:
		return "unknown"
	}
}

// Error is a sentinel whose message is safe to return to API clients.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() Kind {
	return e.kind
}

func BadRequest(msg string) *Error    { return &Error{kind: KindBadRequest, msg: msg} }
func Unauthorized(msg string) *Error  { return &Error{kind: KindUnauthorized, msg: msg} }
func Forbidden(msg string) *Error     { return &Error{kind: KindForbidden, msg: msg} }
func NotFound(msg string) *Error      { return &Error{kind: KindNotFound, msg: msg} }
func Conflict(msg string) *Error      { return &Error{kind: KindConflict, msg: msg} }
func Unprocessable(msg string) *Error { return &Error{kind: KindUnprocessable, msg: msg} }

// AsPublic returns the outermost public error in err's chain.
func AsPublic(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if pe, ok := AsPublic(err); ok {
		return pe.kind
	}
	return 0
}
