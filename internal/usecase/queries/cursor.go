package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200

	cursorPrefix = "v1:"
)

// Cursor is an opaque keyset position over (created_at, id).
type Cursor struct {
	After string `json:"after,omitempty"`
}

// Microsecond precision matches the timestamptz column.
func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	raw := cursorPrefix + strconv.FormatInt(t.UnixMicro(), 10) + "_" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	if cursor == "" {
		return time.Time{}, uuid.Nil, errs.New("empty cursor")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrap(err, "cursor is not base64url")
	}

	payload, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return time.Time{}, uuid.Nil, errs.New("unknown cursor version")
	}
	micros, rawID, ok := strings.Cut(payload, "_")
	if !ok {
		return time.Time{}, uuid.Nil, errs.New("cursor must be <micros>_<uuid>")
	}

	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrap(err, "cursor timestamp")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrap(err, "cursor id")
	}
	return time.UnixMicro(ts).UTC(), id, nil
}

// ValidateLimit clamps limit into [1, MaxListLimit]; zero or negative selects the default.
func ValidateLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
