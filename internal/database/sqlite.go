// Package database is the portal's local store: a single-file sqlite
// database holding persisted session tokens and wizard drafts. Property
// data is never stored here; the remote property service owns it.
package database

import (
	"errors"
	"fmt"
	"time"

	"estatehub-portal/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle.
type DB struct {
	db *gorm.DB
}

// New opens (or creates) the sqlite database at path. Use ":memory:" for
// tests.
func New(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	return &DB{db: db}, nil
}

// NewFromDB wraps an existing gorm handle.
func NewFromDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// InitSchema creates the local tables.
func (d *DB) InitSchema() error {
	return d.db.AutoMigrate(
		&models.SessionRecord{},
		&models.WizardDraft{},
	)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSession upserts a session record.
func (d *DB) SaveSession(rec *models.SessionRecord) error {
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now()
	}
	return d.db.Save(rec).Error
}

// GetSession returns the session record for id, or nil when absent.
func (d *DB) GetSession(id string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := d.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// TouchSession bumps the session's last-seen time.
func (d *DB) TouchSession(id string, at time.Time) error {
	return d.db.Model(&models.SessionRecord{}).Where("id = ?", id).
		Update("last_seen", at).Error
}

// DeleteSession removes a session record and its draft.
func (d *DB) DeleteSession(id string) error {
	if err := d.db.Delete(&models.SessionRecord{}, "id = ?", id).Error; err != nil {
		return err
	}
	return d.db.Delete(&models.WizardDraft{}, "session_id = ?", id).Error
}

// PruneSessions deletes sessions idle since before the cutoff and returns
// how many were removed.
func (d *DB) PruneSessions(cutoff time.Time) (int64, error) {
	res := d.db.Delete(&models.SessionRecord{}, "last_seen < ?", cutoff)
	return res.RowsAffected, res.Error
}

// SaveDraft upserts the wizard draft for a session.
func (d *DB) SaveDraft(draft *models.WizardDraft) error {
	return d.db.Save(draft).Error
}

// GetDraft returns the draft for a session, or nil when absent.
func (d *DB) GetDraft(sessionID string) (*models.WizardDraft, error) {
	var draft models.WizardDraft
	err := d.db.First(&draft, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft removes a session's draft.
func (d *DB) DeleteDraft(sessionID string) error {
	return d.db.Delete(&models.WizardDraft{}, "session_id = ?", sessionID).Error
}

// PruneDrafts deletes drafts untouched since before the cutoff.
func (d *DB) PruneDrafts(cutoff time.Time) (int64, error) {
	res := d.db.Delete(&models.WizardDraft{}, "updated_at < ?", cutoff)
	return res.RowsAffected, res.Error
}
