package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/engine"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// -----------------------------------------------------------------------------
// Schedule
// -----------------------------------------------------------------------------

func TestSchedule_AheadOfBirthday(t *testing.T) {
	// Birthday 1990-03-10, now 2024-03-01 08:00, offsets [7,1,0] at 09:00.
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)

	require.NoError(t, f.sched.Schedule(ctx, anna))

	recs := f.records(t, anna.ID)
	require.Len(t, recs, 3)
	assert.Equal(t, []time.Time{
		at(2024, 3, 3, 9, 0, 0),
		at(2024, 3, 9, 9, 0, 5),
		at(2024, 3, 10, 9, 0, 10),
	}, fireTimes(recs))

	for i, days := range []int{7, 1, 0} {
		rec := recs[i]
		assert.True(t, rec.Scheduled, "offset %d armed", days)
		assert.Equal(t, days, rec.DaysBefore)
		assert.Equal(t, "Anna", rec.PersonName)
		assert.Equal(t, "1990-03-10", rec.Birthday)
		assert.Equal(t, at(2024, 3, 1, 8, 0, 0), rec.CreatedAt)
		assert.Equal(t, rec.DerivedIDs(), rec.ExternalIDs)
	}

	// Three primaries plus backups for the "tomorrow" and "today" offsets.
	assert.Len(t, f.gw.ids(), 5)

	entries, err := f.gw.ListScheduled(ctx)
	require.NoError(t, err)
	byID := map[string]model.ScheduledNotification{}
	for _, e := range entries {
		byID[e.Identifier] = e
	}

	today := recs[2]
	primary := byID[today.PrimaryID()]
	backup := byID[today.BackupID()]
	assert.Equal(t, "Сегодня день рождения у Anna! 🎉", primary.Body)
	assert.Equal(t, config.MsgReminderTitle, primary.Title)
	assert.Equal(t, today.NotificationDate.Add(5*time.Minute), backup.FireAt)
	assert.Equal(t, config.MsgReminderTitleBackup, backup.Title)
	assert.True(t, backup.Payload.Backup)
	assert.Equal(t, model.NotificationPayload{
		RecordID:   today.ID,
		PersonID:   anna.ID,
		PersonName: "Anna",
		Birthday:   "1990-03-10",
		DaysBefore: 0,
	}, primary.Payload)

	_, hasWeekBackup := byID[recs[0].BackupID()]
	assert.False(t, hasWeekBackup, "no backup for a week ahead")
}

func TestSchedule_BirthdayAlreadyStarted(t *testing.T) {
	// Same person at 2024-03-10 10:00: this year's birthday began, target 2025.
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 10, 10, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)

	require.NoError(t, f.sched.Schedule(ctx, anna))

	recs := f.records(t, anna.ID)
	require.Len(t, recs, 3)
	assert.Equal(t, []time.Time{
		at(2025, 3, 3, 9, 0, 0),
		at(2025, 3, 9, 9, 0, 5),
		at(2025, 3, 10, 9, 0, 10),
	}, fireTimes(recs))
	for _, r := range recs {
		assert.True(t, r.Scheduled)
	}
}

func TestSchedule_SkipsElapsedOffsets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 5, 12, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)

	require.NoError(t, f.sched.Schedule(ctx, anna))

	recs := f.records(t, anna.ID)
	require.Len(t, recs, 2, "the week-ahead reminder already passed")
	assert.Equal(t, []int{1, 0}, []int{recs[0].DaysBefore, recs[1].DaysBefore})
}

func TestSchedule_FireInstantEqualToNowIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 3, 9, 0, 0), settingsOf([]int{7}, 9, 0), anna)

	require.NoError(t, f.sched.Schedule(ctx, anna))
	assert.Empty(t, f.records(t, anna.ID))
}

func TestSchedule_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)

	require.NoError(t, f.sched.Schedule(ctx, anna))
	first := recordIDs(f.records(t, anna.ID))

	require.NoError(t, f.sched.Schedule(ctx, anna))
	recs := f.records(t, anna.ID)
	require.Len(t, recs, 3, "no duplicate records")
	assert.Len(t, f.gw.ids(), 5, "no duplicate gateway entries")
	assert.NotEqual(t, first, recordIDs(recs), "records were replaced")
}

func TestSchedule_DisabledEnsuresAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)
	require.NoError(t, f.sched.Schedule(ctx, anna))

	f.store.settings.Enabled = false
	require.NoError(t, f.sched.Schedule(ctx, anna))

	assert.Empty(t, f.records(t, anna.ID))
	assert.Empty(t, f.gw.ids())
}

func TestSchedule_UnusableBirthday(t *testing.T) {
	tests := []struct {
		name     string
		birthday string
	}{
		{"Missing", ""},
		{"Garbage", "next tuesday"},
		{"Impossible date", "1990-02-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)
			require.NoError(t, f.sched.Schedule(ctx, anna))

			broken := anna
			broken.Birthday = tt.birthday
			require.NoError(t, f.sched.Schedule(ctx, broken), "malformed data degrades to no reminders")

			assert.Empty(t, f.records(t, anna.ID))
			assert.Empty(t, f.gw.ids())
		})
	}
}

func TestSchedule_YearUnknown(t *testing.T) {
	ctx := context.Background()
	p := model.Person{ID: "vera", Name: "Vera", Birthday: "--03-10"}
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{0}, 9, 0), p)

	require.NoError(t, f.sched.Schedule(ctx, p))

	recs := f.records(t, p.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, at(2024, 3, 10, 9, 0, 0), recs[0].NotificationDate)
}

func TestSchedule_LeaplingInCommonYear(t *testing.T) {
	ctx := context.Background()
	p := model.Person{ID: "leap", Name: "Leap", Birthday: "2000-02-29"}
	f := newFixture(t, at(2025, 2, 1, 8, 0, 0), settingsOf([]int{0}, 9, 0), p)

	require.NoError(t, f.sched.Schedule(ctx, p))

	recs := f.records(t, p.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, at(2025, 2, 28, 9, 0, 0), recs[0].NotificationDate)
}

func TestSchedule_CustomFormatter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{0}, 9, 0), anna)
	f.sched.SetMessageFormat(func(name string, days int, backup bool) (string, string) {
		if backup {
			return "B", name
		}
		return "T", name
	})

	require.NoError(t, f.sched.Schedule(ctx, anna))

	entries, err := f.gw.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "T", entries[0].Title)
	assert.Equal(t, "B", entries[1].Title)
	assert.Equal(t, "Anna", entries[1].Body)
}

// TestSchedule_GatewayFailure verifies that a record the gateway refused
// stays unscheduled and that the loop continues with the next offset.
func TestSchedule_GatewayFailure(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("CheckPermission", mock.Anything).Return(true, nil)
	gw.On("ScheduleAt", mock.Anything, mock.Anything).Return(errors.New("queue full"))

	st := newMemStore(settingsOf([]int{7, 1, 0}, 9, 0))
	sched := engine.New(engine.Deps{
		Store:   st,
		People:  newMemPeople(anna),
		Gateway: gw,
		Clock:   &MockClock{CurrentTime: at(2024, 3, 1, 8, 0, 0)},
	})

	require.NoError(t, sched.Schedule(ctx, anna))

	recs, err := st.ListByPerson(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3, "records are persisted before arming")
	for _, r := range recs {
		assert.False(t, r.Scheduled)
		assert.Empty(t, r.ExternalIDs)
	}
	gw.AssertNumberOfCalls(t, "ScheduleAt", 3)
	gw.AssertNotCalled(t, "RequestPermission", mock.Anything)

	// Cancelling falls back to the derived identifiers.
	gw.On("Cancel", mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, sched.Cancel(ctx, anna.ID))
	gw.AssertCalled(t, "Cancel", mock.Anything, recs[1].BackupID())
	gw.AssertNumberOfCalls(t, "Cancel", 5)
}

func TestSchedule_BackupFailureKeepsPrimary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{1}, 9, 0), anna)
	f.gw.fail = func(n model.ScheduledNotification) bool { return n.Payload.Backup }

	require.NoError(t, f.sched.Schedule(ctx, anna))

	recs := f.records(t, anna.ID)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Scheduled)
	assert.Equal(t, []string{recs[0].PrimaryID()}, recs[0].ExternalIDs)
}

func TestSchedule_StoreFailureSkipsOnlyThatOffset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)
	f.store.createFail = func(r *model.NotificationRecord) bool { return r.DaysBefore == 1 }

	require.NoError(t, f.sched.Schedule(ctx, anna))

	recs := f.records(t, anna.ID)
	require.Len(t, recs, 2)
	assert.Equal(t, []time.Time{at(2024, 3, 3, 9, 0, 0), at(2024, 3, 10, 9, 0, 10)}, fireTimes(recs))
	for _, r := range recs {
		assert.True(t, r.Scheduled)
	}
	assert.Len(t, f.gw.ids(), 3, "nothing is armed for the offset that was not stored")
}

// -----------------------------------------------------------------------------
// Cancel & Reschedule
// -----------------------------------------------------------------------------

func TestCancel(t *testing.T) {
	ctx := context.Background()
	boris := model.Person{ID: "boris", Name: "Boris", Birthday: "1985-03-20"}
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna, boris)
	require.NoError(t, f.sched.Schedule(ctx, anna))
	require.NoError(t, f.sched.Schedule(ctx, boris))

	require.NoError(t, f.sched.Cancel(ctx, anna.ID))

	assert.Empty(t, f.records(t, anna.ID))
	assert.False(t, containsPerson(f.gw.ids(), anna.ID), "no gateway entry embeds the person id")
	assert.Len(t, f.records(t, boris.ID), 3, "other people are untouched")
	assert.Len(t, f.gw.ids(), 5)

	require.NoError(t, f.sched.Cancel(ctx, anna.ID), "cancelling twice is a no-op")
	require.NoError(t, f.sched.Cancel(ctx, "nobody"))
}

func TestCancel_UnmarkedRecordsUseDerivedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)
	f.store.updateErr = errors.New("read-only")

	require.NoError(t, f.sched.Schedule(ctx, anna))
	for _, r := range f.records(t, anna.ID) {
		assert.False(t, r.Scheduled, "the scheduled flag could not be persisted")
	}
	require.Len(t, f.gw.ids(), 5, "but the gateway entries are armed")

	require.NoError(t, f.sched.Cancel(ctx, anna.ID))
	assert.Empty(t, f.gw.ids())
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(2024, 3, 1, 8, 0, 0), settingsOf([]int{7, 1, 0}, 9, 0), anna)
	require.NoError(t, f.sched.Schedule(ctx, anna))

	t.Run("Birthday changed", func(t *testing.T) {
		moved := anna
		moved.Birthday = "1990-04-01"
		require.NoError(t, f.sched.Reschedule(ctx, moved))

		recs := f.records(t, anna.ID)
		require.Len(t, recs, 3)
		assert.Equal(t, at(2024, 3, 25, 9, 0, 0), recs[0].NotificationDate)
		assert.Len(t, f.gw.ids(), 5)
	})

	t.Run("Birthday removed", func(t *testing.T) {
		removed := anna
		removed.Birthday = ""
		require.NoError(t, f.sched.Reschedule(ctx, removed))

		assert.Empty(t, f.records(t, anna.ID))
		assert.Empty(t, f.gw.ids())
	})
}
