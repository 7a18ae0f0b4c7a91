// Package task implements the task board: multi-assignee tasks with
// role-scoped visibility and field-level edit rules.
package task

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/locpham246/task-manager/internal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// LinkList stores documentation links as a JSON column.
type LinkList []string

func (l LinkList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *LinkList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("task: unsupported link column type")
}

// Task is one board item. OwnerID mirrors the first assignee so single-owner
// queries stay cheap; the full assignee set lives in task_assignees.
type Task struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	OwnerID     int64      `json:"owner_id" gorm:"column:user_id"`
	DueDate     *time.Time `json:"due_date"`
	DocLinks    LinkList   `json:"documentation_links" gorm:"column:documentation_links;type:jsonb"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Assignees []int64 `json:"assignees" gorm:"-"`
}

func (Task) TableName() string { return "todos" }

var (
	ErrTaskNotFound     = internal.NewNotFoundError("task not found", internal.ErrCodeTaskNotFound)
	ErrAssigneeNotFound = internal.NewValidationError("one or more assignees do not exist", internal.ErrCodeAssigneeNotFound)
)

// Filter narrows task listings. ViewerID restricts results to tasks the
// viewer owns or is assigned to; zero means no restriction.
type Filter struct {
	Status     Status
	Priority   Priority
	AssigneeID int64
	ViewerID   int64
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, filter Filter) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	ReplaceAssignees(ctx context.Context, taskID int64, assigneeIDs []int64) error
	Delete(ctx context.Context, id int64) error
	MissingAssignees(ctx context.Context, ids []int64) ([]int64, error)
}
