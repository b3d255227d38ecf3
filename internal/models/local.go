package models

import "time"

// SessionRecord is the locally persisted part of a portal session: the
// upstream bearer token keyed by the opaque portal session id. It is what
// lets a session survive a portal restart, the same way the browser app
// kept its token in localStorage.
type SessionRecord struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id"`
	Role      string    `gorm:"type:varchar(16)" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastSeen  time.Time `gorm:"index" json:"last_seen"`
}

// TableName fixes the table name.
func (SessionRecord) TableName() string {
	return "portal_sessions"
}

// WizardDraft is a persisted snapshot of an in-progress listing wizard, one
// per session, so a multi-step form survives a dropped connection. Images
// are not persisted; they are re-attached on the final step.
type WizardDraft struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	Step      int       `gorm:"not null;default:1" json:"step"`
	Form      string    `gorm:"type:text" json:"form"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// TableName fixes the table name.
func (WizardDraft) TableName() string {
	return "wizard_drafts"
}
