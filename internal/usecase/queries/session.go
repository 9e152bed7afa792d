package queries

import (
	"context"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errs.NotFound("Session not found")
	ErrSessionAccess   = errs.Forbidden("You do not have access to this session")
	ErrInvalidCursor   = errs.BadRequest("Invalid cursor")
)

type SessionReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SessionView, error)
	FindFirstPage(ctx context.Context, filter SessionFilter, limit int32) ([]*SessionListItem, error)
	FindKeyset(ctx context.Context, filter SessionFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*SessionListItem, error)
}

type SessionQueries interface {
	FindOne(ctx context.Context, actor access.Actor, id uuid.UUID) (*SessionView, error)
	List(ctx context.Context, actor access.Actor, cursor *Cursor, limit int) ([]*SessionListItem, *Cursor, error)
	// GetByIDSystem skips the ownership check; used for idempotent replays.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*SessionView, error)
}

type sessionQueriesImpl struct {
	store SessionReadStore
}

func NewSessionQueries(store SessionReadStore) SessionQueries {
	return &sessionQueriesImpl{store: store}
}

func (q *sessionQueriesImpl) FindOne(ctx context.Context, actor access.Actor, id uuid.UUID) (*SessionView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(actor, view) {
		return nil, ErrSessionAccess
	}
	return view, nil
}

func (q *sessionQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *sessionQueriesImpl) List(ctx context.Context, actor access.Actor, cursor *Cursor, limit int) ([]*SessionListItem, *Cursor, error) {
	filter, ok := filterFor(actor)
	if !ok {
		return []*SessionListItem{}, nil, nil
	}

	limit = ValidateLimit(limit)
	var rows []*SessionListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindFirstPage(ctx, filter, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindKeyset(ctx, filter, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func filterFor(actor access.Actor) (SessionFilter, bool) {
	if actor.IsAdmin() {
		return SessionFilter{}, true
	}
	p, ok := actor.Participant()
	if !ok {
		return SessionFilter{}, false
	}
	id := actor.UserID
	if p == access.Provider {
		return SessionFilter{CoachID: &id}, true
	}
	return SessionFilter{UserID: &id}, true
}
