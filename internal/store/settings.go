package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"gorm.io/gorm"
)

// settingRow is one key/value pair of the settings table.
type settingRow struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value;not null"`
}

func (settingRow) TableName() string {
	return config.TableSettings
}

// GetSettings reads the settings singleton. Keys missing from the table fall
// back to their defaults; an empty table yields ErrSettingsNotFound.
func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return model.Settings{}, fmt.Errorf("%s: %w", config.ErrSettingsRead, err)
	}
	if len(rows) == 0 {
		return model.Settings{}, ErrSettingsNotFound
	}

	settings := model.DefaultSettings()
	for _, row := range rows {
		if err := decodeSetting(&settings, row); err != nil {
			return model.Settings{}, fmt.Errorf("%s: %s: %w", config.ErrSettingsDecode, row.Key, err)
		}
	}
	return settings, nil
}

// SaveSettings replaces the whole settings table in one transaction so that
// readers never observe a half-written singleton.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	rows, err := encodeSettings(settings)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsWrite, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&settingRow{}).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsWrite, err)
	}
	return nil
}

// ResetSettings restores 30/7/1/0 days before at 09:00, enabled.
func (s *Store) ResetSettings(ctx context.Context) error {
	if err := s.SaveSettings(ctx, model.DefaultSettings()); err != nil {
		return err
	}
	slog.Info(config.MsgSettingsReset, config.LogKeyComponent, config.CompStore)
	return nil
}

func encodeSettings(settings model.Settings) ([]settingRow, error) {
	days := settings.DaysBefore
	if days == nil {
		days = []int{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}
	timeJSON, err := json.Marshal(settings.Time)
	if err != nil {
		return nil, err
	}

	return []settingRow{
		{Key: config.SettingKeyDaysBefore, Value: string(daysJSON)},
		{Key: config.SettingKeyTime, Value: string(timeJSON)},
		{Key: config.SettingKeyEnabled, Value: strconv.FormatBool(settings.Enabled)},
	}, nil
}

func decodeSetting(settings *model.Settings, row settingRow) error {
	switch row.Key {
	case config.SettingKeyDaysBefore:
		var days []int
		if err := json.Unmarshal([]byte(row.Value), &days); err != nil {
			return err
		}
		if days == nil {
			days = []int{}
		}
		settings.DaysBefore = days
	case config.SettingKeyTime:
		var tod model.TimeOfDay
		if err := json.Unmarshal([]byte(row.Value), &tod); err != nil {
			return err
		}
		settings.Time = tod
	case config.SettingKeyEnabled:
		enabled, err := strconv.ParseBool(row.Value)
		if err != nil {
			return err
		}
		settings.Enabled = enabled
	}
	return nil
}
