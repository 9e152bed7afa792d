//go:build unit

package commands_test

import (
	"testing"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/usecase/commands"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarCommands_CreateEvent(t *testing.T) {
	t.Run("success: links an event with both participants", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")

		got, err := f.calendar.CreateEvent(f.ctx, f.client, view.ID)

		require.NoError(t, err)
		want := &commands.EventSummary{
			EventID:   got.EventID,
			Summary:   "Coaching session: Intro call",
			Start:     view.DateTime,
			End:       view.DateTime.Add(60 * time.Minute),
			Attendees: []string{"client@example.com", "coach@example.com"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("event summary mismatch (-want +got):\n%s", diff)
		}

		s, _ := f.store.Session(view.ID)
		require.NotNil(t, s.CalendarEventID())
		assert.Equal(t, got.EventID, *s.CalendarEventID())
		_, ok := f.provider.Event(got.EventID)
		assert.True(t, ok)
	})

	t.Run("success: second call returns the linked event", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")

		first, err := f.calendar.CreateEvent(f.ctx, f.client, view.ID)
		require.NoError(t, err)
		second, err := f.calendar.CreateEvent(f.ctx, f.coach, view.ID)
		require.NoError(t, err)

		assert.Equal(t, first.EventID, second.EventID)
	})

	t.Run("error: unknown session", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.calendar.CreateEvent(f.ctx, f.client, uuid.New())
		assert.ErrorIs(t, err, commands.ErrCalendarSessionMissing)
	})

	t.Run("error: stranger", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")
		_, err := f.calendar.CreateEvent(f.ctx, access.NewActor(uuid.New(), user.RoleUser), view.ID)
		assert.ErrorIs(t, err, commands.ErrForbidden)
	})

	t.Run("error: cancelled session", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")
		_, err := f.sessions.Cancel(f.ctx, f.client, view.ID)
		require.NoError(t, err)

		_, err = f.calendar.CreateEvent(f.ctx, f.client, view.ID)

		assert.ErrorIs(t, err, session.ErrCancelled)
	})
}

func TestCalendarCommands_DeleteEvent(t *testing.T) {
	t.Run("success: unlinks and removes the event", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")
		ev, err := f.calendar.CreateEvent(f.ctx, f.client, view.ID)
		require.NoError(t, err)

		got, err := f.calendar.DeleteEvent(f.ctx, f.coach, ev.EventID)

		require.NoError(t, err)
		assert.True(t, got.Deleted)
		s, _ := f.store.Session(view.ID)
		assert.Nil(t, s.CalendarEventID())
		_, ok := f.provider.Event(ev.EventID)
		assert.False(t, ok)

		_, err = f.calendar.DeleteEvent(f.ctx, f.coach, ev.EventID)
		assert.ErrorIs(t, err, commands.ErrEventNotFound)
	})

	t.Run("error: stranger", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("10")
		ev, err := f.calendar.CreateEvent(f.ctx, f.client, view.ID)
		require.NoError(t, err)

		_, err = f.calendar.DeleteEvent(f.ctx, access.NewActor(uuid.New(), user.RoleCoach), ev.EventID)

		assert.ErrorIs(t, err, commands.ErrForbidden)
	})
}
