// Package store persists notification records and the reminder settings
// singleton in sqlite through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrRecordNotFound is returned by Update when the record does not exist.
	ErrRecordNotFound = errors.New(config.ErrRecordNotFound)

	// ErrSettingsNotFound is returned by GetSettings when nothing was ever saved.
	ErrSettingsNotFound = errors.New(config.ErrSettingsMissing)
)

// Store is the sqlite-backed record and settings store.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path. Call Init before use.
func Open(path string) (*Store, error) {
	// Bridge gorm's printf logger into slog so database warnings share the JSON log.
	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().With(config.LogKeyComponent, config.CompStore).Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             config.DBSlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBUnderlying, err)
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases intact.
	sqlDB.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Init migrates the schema and seeds default settings. It is idempotent.
func (s *Store) Init(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.NotificationRecord{}, &settingRow{}); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBMigrate, err)
	}

	var count int64
	if err := db.Model(&settingRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsRead, err)
	}
	if count == 0 {
		if err := s.ResetSettings(ctx); err != nil {
			return err
		}
		slog.InfoContext(ctx, config.MsgSettingsSeeded, config.LogKeyComponent, config.CompStore)
	}

	slog.DebugContext(ctx, config.MsgDBReady, config.LogKeyComponent, config.CompStore)
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBUnderlying, err)
	}
	return sqlDB.Close()
}

// -----------------------------------------------------------------------------
// Notification Records
// -----------------------------------------------------------------------------

// ListAll returns every record ordered by fire time.
func (s *Store) ListAll(ctx context.Context) ([]model.NotificationRecord, error) {
	var records []model.NotificationRecord
	err := s.db.WithContext(ctx).Order("notification_date ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRecordList, err)
	}
	return records, nil
}

// ListByPerson returns the records of one person ordered by fire time.
func (s *Store) ListByPerson(ctx context.Context, personID string) ([]model.NotificationRecord, error) {
	var records []model.NotificationRecord
	err := s.db.WithContext(ctx).
		Where("person_id = ?", personID).
		Order("notification_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRecordList, err)
	}
	return records, nil
}

// Create inserts rec, assigning an id when it has none.
func (s *Store) Create(ctx context.Context, rec *model.NotificationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := normalized(*rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%s %s: %w", config.ErrRecordCreate, rec.ID, err)
	}
	rec.CreatedAt = row.CreatedAt
	return nil
}

// Update overwrites every column of an existing record.
func (s *Store) Update(ctx context.Context, rec *model.NotificationRecord) error {
	row := normalized(*rec)
	result := s.db.WithContext(ctx).Model(&row).Select("*").Updates(&row)
	if result.Error != nil {
		return fmt.Errorf("%s %s: %w", config.ErrRecordUpdate, rec.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.ID)
	}
	return nil
}

// Delete removes one record. A missing record is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.NotificationRecord{}).Error
	if err != nil {
		return fmt.Errorf("%s %s: %w", config.ErrRecordDelete, id, err)
	}
	return nil
}

// DeleteByPerson removes every record of a person.
func (s *Store) DeleteByPerson(ctx context.Context, personID string) error {
	err := s.db.WithContext(ctx).Where("person_id = ?", personID).Delete(&model.NotificationRecord{}).Error
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRecordDelete, err)
	}
	return nil
}

// normalized stores instants in UTC so that text ordering in sqlite matches time ordering.
func normalized(rec model.NotificationRecord) model.NotificationRecord {
	rec.NotificationDate = rec.NotificationDate.UTC()
	return rec
}
