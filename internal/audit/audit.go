// Package audit records who did what. Every state-changing operation that
// passes authorization leaves exactly one entry; reads are never recorded.
package audit

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Action tags. These are stable identifiers queried by the admin UI; renaming
// one breaks historical filtering.
const (
	ActionLogin  = "LOGIN"
	ActionLogout = "LOGOUT"

	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionUpdateTaskStatus = "UPDATE_TASK_STATUS"
	ActionDeleteTask       = "DELETE_TASK"

	ActionShareDocument        = "SHARE_DOCUMENT"
	ActionUpdateDocumentShares = "UPDATE_DOCUMENT_SHARES"
	ActionDeleteDocument       = "DELETE_DOCUMENT"

	ActionUpdateUserRole = "UPDATE_USER_ROLE"
	ActionInviteUser     = "INVITE_USER"

	ActionAddWhitelist    = "ADD_WHITELIST"
	ActionUpdateWhitelist = "UPDATE_WHITELIST"
	ActionRemoveWhitelist = "REMOVE_WHITELIST"
)

// Details is a free-form JSON payload stored alongside the action tag.
type Details map[string]interface{}

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *Details) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return errors.New("audit: unsupported details column type")
}

// Entry is one audit log row.
type Entry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Details   Details   `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

// EntryView is an entry joined with the actor's name and email for listing.
type EntryView struct {
	Entry
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// Recorder is the write-side seam injected into domain services. Recording is
// best-effort: implementations log failures and never propagate them, so a
// broken audit store cannot block the operation it describes.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action string, details Details)
}

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	ListRecent(ctx context.Context, limit int) ([]EntryView, error)
}
