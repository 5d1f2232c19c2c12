package errs

import (
	"net/http"

	cr "github.com/cockroachdb/errors"
)

type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindInvalidState       Kind = "INVALID_STATE"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindRoomUnavailable    Kind = "ROOM_UNAVAILABLE"
	KindInternal           Kind = "INTERNAL"
)

// Sentinels used as marks. Test with errors.Is or KindOf.
var (
	ErrInvalidInput       = cr.New("invalid input")
	ErrNotFound           = cr.New("not found")
	ErrUnauthorized       = cr.New("unauthorized")
	ErrForbidden          = cr.New("forbidden")
	ErrConflict           = cr.New("conflict")
	ErrInvalidState       = cr.New("invalid state")
	ErrPreconditionFailed = cr.New("precondition failed")
	ErrRoomUnavailable    = cr.New("room unavailable")
	ErrInternal           = cr.New("internal error")
)

var kindMarks = []struct {
	kind Kind
	mark error
}{
	{KindInvalidInput, ErrInvalidInput},
	{KindNotFound, ErrNotFound},
	{KindUnauthorized, ErrUnauthorized},
	{KindForbidden, ErrForbidden},
	{KindConflict, ErrConflict},
	{KindInvalidState, ErrInvalidState},
	{KindPreconditionFailed, ErrPreconditionFailed},
	{KindRoomUnavailable, ErrRoomUnavailable},
	{KindInternal, ErrInternal},
}

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, reference error) bool {
	return cr.Is(err, reference)
}

func InvalidInput(format string, args ...any) error {
	return cr.Mark(cr.Newf(format, args...), ErrInvalidInput)
}

func NotFound(resource string) error {
	return cr.Mark(cr.Newf("%s not found", resource), ErrNotFound)
}

func Unauthorized() error {
	return cr.Mark(cr.New("unauthorized"), ErrUnauthorized)
}

func Forbidden(msg string) error {
	return cr.Mark(cr.New(msg), ErrForbidden)
}

func Conflict(msg string) error {
	return cr.Mark(cr.New(msg), ErrConflict)
}

func InvalidState(msg string) error {
	return cr.Mark(cr.New(msg), ErrInvalidState)
}

func PreconditionFailed(msg string) error {
	return cr.Mark(cr.New(msg), ErrPreconditionFailed)
}

func RoomUnavailable(msg string) error {
	return cr.Mark(cr.New(msg), ErrRoomUnavailable)
}

// Internal wraps a collaborator failure. The wrapped cause stays available for
// logging but is never part of PublicMessage.
func Internal(err error, msg string) error {
	if err == nil {
		err = cr.New(msg)
	} else {
		err = cr.Wrap(err, msg)
	}
	return cr.Mark(err, ErrInternal)
}

// KindOf returns the first matching kind, KindInternal for unmarked errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, km := range kindMarks {
		if cr.Is(err, km.mark) {
			return km.kind
		}
	}
	return KindInternal
}

func StatusCode(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindRoomUnavailable, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the caller-facing text for err.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	return err.Error()
}
