// Package analytics records which suggestion chips get accepted so prediction
// quality can be reviewed later.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrEntryNotFound is returned when deleting an id that does not exist.
var ErrEntryNotFound = errors.New("entry not found")

type AnalyticsManager struct {
	db        *gorm.DB
	sessionID string
	Logger    *zap.Logger
}

// AnalyticsEntry is one accepted suggestion. Input is the buffer before the
// chip was clicked, Prediction the chip label and Actual the buffer after the
// replacement.
type AnalyticsEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	SessionID  string `gorm:"index"`
	Slot       int
	Input      string
	Prediction string
	Actual     string
}

// SlotCount is the number of accepted suggestions per chip position.
type SlotCount struct {
	Slot  int
	Count int64
}

func NewAnalyticsManager(dbFilePath string, logger *zap.Logger) (*AnalyticsManager, error) {
	// busy_timeout covers a second typeahead process holding the write lock;
	// temp_store(2) keeps temp tables in memory.
	connectionString := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(1)&_pragma=temp_store(2)", dbFilePath)

	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	if err := db.AutoMigrate(&AnalyticsEntry{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite serializes writes anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnalyticsManager{
		db:        db,
		sessionID: uuid.NewString(),
		Logger:    logger,
	}, nil
}

// Close closes the database connection. Tests must call it so temporary
// database files can be removed on Windows.
func (analyticsManager *AnalyticsManager) Close() error {
	if analyticsManager.db == nil {
		return nil
	}
	sqlDB, err := analyticsManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionID identifies the keyboard session entries are recorded under.
func (analyticsManager *AnalyticsManager) SessionID() string {
	return analyticsManager.sessionID
}

func (analyticsManager *AnalyticsManager) NewEntry(slot int, input string, prediction string, actual string) error {
	entry := AnalyticsEntry{
		SessionID:  analyticsManager.sessionID,
		Slot:       slot,
		Input:      input,
		Prediction: prediction,
		Actual:     actual,
	}

	if err := analyticsManager.db.Create(&entry).Error; err != nil {
		return err
	}
	analyticsManager.Logger.Debug("recorded accepted suggestion",
		zap.Int("slot", slot), zap.String("prediction", prediction))
	return nil
}

// RecordAcceptance is NewEntry with the error logged rather than returned, for
// callers that must not fail on analytics.
func (analyticsManager *AnalyticsManager) RecordAcceptance(slot int, input, prediction, actual string) {
	if err := analyticsManager.NewEntry(slot, input, prediction, actual); err != nil {
		analyticsManager.Logger.Warn("failed to record analytics entry", zap.Error(err))
	}
}

func (analyticsManager *AnalyticsManager) GetRecentEntries(limit int) ([]AnalyticsEntry, error) {
	var entries []AnalyticsEntry
	result := analyticsManager.db.Where("prediction <> ''").Order("created_at desc, id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// CountBySlot reports accepted suggestions per chip position, in slot order.
func (analyticsManager *AnalyticsManager) CountBySlot() ([]SlotCount, error) {
	var counts []SlotCount
	result := analyticsManager.db.Model(&AnalyticsEntry{}).
		Select("slot, count(*) as count").
		Group("slot").
		Order("slot").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

func (analyticsManager *AnalyticsManager) ResetAnalytics() error {
	result := analyticsManager.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&AnalyticsEntry{})
	return result.Error
}

func (analyticsManager *AnalyticsManager) DeleteEntry(id uint) error {
	result := analyticsManager.db.Delete(&AnalyticsEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (analyticsManager *AnalyticsManager) GetTotalCount() (int64, error) {
	var count int64
	result := analyticsManager.db.Model(&AnalyticsEntry{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
