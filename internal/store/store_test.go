package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), config.NotificationsDBFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func newRecord(personID string, days int, at time.Time) *model.NotificationRecord {
	return &model.NotificationRecord{
		PersonID:         personID,
		PersonName:       "Name " + personID,
		Birthday:         "1990-03-10",
		NotificationDate: at,
		DaysBefore:       days,
	}
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func TestInit_SeedsDefaults(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)
}

func TestInit_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	custom := model.Settings{DaysBefore: []int{3}, Time: model.TimeOfDay{Hours: 20, Minutes: 15}, Enabled: false}
	require.NoError(t, s.SaveSettings(ctx, custom))

	// A second Init must neither fail nor overwrite user settings.
	require.NoError(t, s.Init(ctx))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestSaveSettings_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveSettings(ctx, model.Settings{DaysBefore: nil, Time: model.TimeOfDay{Hours: 7}, Enabled: true}))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{}, got.DaysBefore)
	assert.Equal(t, 7, got.Time.Hours)

	var rows []settingRow
	require.NoError(t, s.db.Order("key").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, settingRow{Key: config.SettingKeyDaysBefore, Value: "[]"}, rows[0])
	assert.Equal(t, settingRow{Key: config.SettingKeyEnabled, Value: "true"}, rows[1])
	assert.Equal(t, settingRow{Key: config.SettingKeyTime, Value: `{"hours":7,"minutes":0}`}, rows[2])
}

func TestResetSettings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveSettings(ctx, model.Settings{DaysBefore: []int{2}, Enabled: false}))
	require.NoError(t, s.ResetSettings(ctx))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)
}

func TestGetSettings_Empty(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.db.Where("1 = 1").Delete(&settingRow{}).Error)

	_, err := s.GetSettings(ctx)
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestGetSettings_MissingKeyFallsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveSettings(ctx, model.Settings{DaysBefore: []int{5}, Time: model.TimeOfDay{Hours: 18}, Enabled: false}))
	require.NoError(t, s.db.Where("key = ?", config.SettingKeyTime).Delete(&settingRow{}).Error)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got.DaysBefore)
	assert.Equal(t, model.DefaultSettings().Time, got.Time)
	assert.False(t, got.Enabled)
}

func TestGetSettings_Corrupted(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.db.Model(&settingRow{}).
		Where("key = ?", config.SettingKeyDaysBefore).
		Update("value", "not json").Error)

	_, err := s.GetSettings(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsDecode)
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

func TestRecords_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	late := newRecord("p1", 0, base.AddDate(0, 0, 9))
	early := newRecord("p1", 7, base.AddDate(0, 0, 2))
	other := newRecord("p2", 1, base.AddDate(0, 0, 5))
	for _, r := range []*model.NotificationRecord{late, early, other} {
		require.NoError(t, s.Create(ctx, r))
		assert.NotEmpty(t, r.ID, "Create assigns an id")
		assert.False(t, r.CreatedAt.IsZero(), "Create stamps creation time")
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{early.ID, other.ID, late.ID}, []string{all[0].ID, all[1].ID, all[2].ID}, "ordered by date")

	mine, err := s.ListByPerson(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, early.ID, mine[0].ID)
	assert.True(t, mine[0].NotificationDate.Equal(early.NotificationDate))

	// Update round-trips the identifier set.
	early.Scheduled = true
	early.ExternalIDs = []string{early.PrimaryID()}
	require.NoError(t, s.Update(ctx, early))

	mine, err = s.ListByPerson(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, mine[0].Scheduled)
	assert.Equal(t, []string{early.PrimaryID()}, mine[0].ExternalIDs)
	assert.False(t, mine[1].Scheduled)

	require.NoError(t, s.Delete(ctx, late.ID))
	require.NoError(t, s.Delete(ctx, "missing"), "deleting a missing record is a no-op")

	require.NoError(t, s.DeleteByPerson(ctx, "p1"))
	mine, err = s.ListByPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)
}

func TestUpdate_Missing(t *testing.T) {
	s := openTestStore(t)

	rec := newRecord("p1", 1, time.Now())
	rec.ID = "ghost"
	err := s.Update(context.Background(), rec)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCreate_KeepsProvidedID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := newRecord("p1", 30, time.Now().Add(time.Hour))
	rec.ID = "fixed-id"
	require.NoError(t, s.Create(ctx, rec))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fixed-id", all[0].ID)
	assert.Empty(t, all[0].ExternalIDs)
}
