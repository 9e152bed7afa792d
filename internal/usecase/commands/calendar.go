package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/queries"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type EventSummary struct {
	EventID   string
	Summary   string
	Start     time.Time
	End       time.Time
	Attendees []string
}

type DeletedEvent struct {
	EventID string
	Deleted bool
}

type CalendarCommands interface {
	// CreateEvent links a calendar event to the session. Calling it again
	// returns the linked event without contacting the provider.
	CreateEvent(ctx context.Context, actor access.Actor, sessionID uuid.UUID) (*EventSummary, error)
	DeleteEvent(ctx context.Context, actor access.Actor, eventID string) (*DeletedEvent, error)
}

type calendarUseCaseImpl struct {
	uow      shared.UnitOfWork
	queries  queries.SessionQueries
	provider shared.CalendarProvider
	clock    clock.Clock
}

func NewCalendarUseCase(uow shared.UnitOfWork, sessionQueries queries.SessionQueries, provider shared.CalendarProvider, clk clock.Clock) CalendarCommands {
	return &calendarUseCaseImpl{uow: uow, queries: sessionQueries, provider: provider, clock: clk}
}

func (uc *calendarUseCaseImpl) CreateEvent(ctx context.Context, actor access.Actor, sessionID uuid.UUID) (*EventSummary, error) {
	view, err := uc.queries.GetByIDSystem(ctx, sessionID)
	if err != nil {
		if errs.Is(err, queries.ErrSessionNotFound) {
			return nil, ErrCalendarSessionMissing
		}
		return nil, err
	}
	if !access.CanAccess(actor, view) {
		return nil, ErrForbidden
	}
	if view.Status == session.StatusCancelled.String() {
		return nil, session.ErrCancelled
	}
	if view.CalendarEventID != nil && *view.CalendarEventID != "" {
		return summarize(*view.CalendarEventID, view), nil
	}

	ev := eventFor(view)
	eventID, err := uc.provider.CreateEvent(ctx, ev)
	if err != nil {
		return nil, errs.WithCause(ErrCalendarFailed, err)
	}

	attached, err := uc.uow.Reads().Sessions().AttachCalendarEvent(ctx, sessionID, eventID, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if !attached {
		// A concurrent request linked first; drop ours and report theirs.
		if err := uc.provider.DeleteEvent(ctx, eventID); err != nil {
			slog.Warn("failed to drop duplicate calendar event", "event_id", eventID, "error", err)
		}
		view, err = uc.queries.GetByIDSystem(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if view.CalendarEventID == nil {
			return nil, ErrCalendarFailed
		}
		return summarize(*view.CalendarEventID, view), nil
	}

	slog.Info("calendar event linked", "session_id", sessionID, "event_id", eventID)
	return summarize(eventID, view), nil
}

func (uc *calendarUseCaseImpl) DeleteEvent(ctx context.Context, actor access.Actor, eventID string) (*DeletedEvent, error) {
	s, err := uc.uow.Reads().Sessions().FindByCalendarEventID(ctx, eventID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !access.CanAccess(actor, s) {
		return nil, ErrForbidden
	}

	if err := uc.provider.DeleteEvent(ctx, eventID); err != nil {
		return nil, errs.WithCause(ErrCalendarFailed, err)
	}
	if err := uc.uow.Reads().Sessions().DetachCalendarEvent(ctx, s.ID(), uc.clock.Now()); err != nil {
		return nil, err
	}

	slog.Info("calendar event unlinked", "session_id", s.ID(), "event_id", eventID)
	return &DeletedEvent{EventID: eventID, Deleted: true}, nil
}

func eventFor(v *queries.SessionView) shared.CalendarEvent {
	start := v.DateTime
	return shared.CalendarEvent{
		SessionID: v.ID,
		Summary:   eventTitle(v),
		Start:     start,
		End:       start.Add(time.Duration(v.DurationMin) * time.Minute),
		Attendees: attendees(v),
	}
}

func summarize(eventID string, v *queries.SessionView) *EventSummary {
	ev := eventFor(v)
	return &EventSummary{
		EventID:   eventID,
		Summary:   ev.Summary,
		Start:     ev.Start,
		End:       ev.End,
		Attendees: ev.Attendees,
	}
}

func eventTitle(v *queries.SessionView) string {
	if v.BookingTypeName == "" {
		return "Coaching session"
	}
	return fmt.Sprintf("Coaching session: %s", v.BookingTypeName)
}

func attendees(v *queries.SessionView) []string {
	out := make([]string, 0, 2)
	for _, email := range []string{v.UserEmail, v.CoachEmail} {
		if email != "" {
			out = append(out, email)
		}
	}
	return out
}
