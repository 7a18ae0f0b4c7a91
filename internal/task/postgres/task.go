package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/locpham246/task-manager/internal/task"
)

// taskAssignee is a row in the task_assignees join table. Position preserves
// request order; position 0 is the primary assignee mirrored into
// todos.user_id.
type taskAssignee struct {
	TaskID   int64 `gorm:"primaryKey"`
	UserID   int64 `gorm:"primaryKey"`
	Position int
}

func (taskAssignee) TableName() string { return "task_assignees" }

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return insertAssignees(tx, t.ID, t.Assignees)
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	assignees, err := r.loadAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees
	return &t, nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	query := r.db.WithContext(ctx).Model(&task.Task{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID > 0 {
		query = query.Where(
			"user_id = ? OR id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)",
			filter.AssigneeID, filter.AssigneeID)
	}
	if filter.ViewerID > 0 {
		query = query.Where(
			"user_id = ? OR id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)",
			filter.ViewerID, filter.ViewerID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var tasks []task.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	for i := range tasks {
		assignees, err := r.loadAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(t).Error
}

// ReplaceAssignees swaps the full assignee set: delete then reinsert in
// request order, keeping todos.user_id in sync with position 0.
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, taskID int64, assigneeIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		if err := insertAssignees(tx, taskID, assigneeIDs); err != nil {
			return err
		}
		return tx.Model(&task.Task{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"user_id":    assigneeIDs[0],
				"updated_at": time.Now(),
			}).Error
	})
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&task.Task{}).Error
	})
}

func (r *TaskRepository) MissingAssignees(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	foundSet := make(map[int64]bool, len(found))
	for _, id := range found {
		foundSet[id] = true
	}

	var missing []int64
	for _, id := range ids {
		if !foundSet[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *TaskRepository) loadAssignees(ctx context.Context, taskID int64) ([]int64, error) {
	var assignees []int64
	err := r.db.WithContext(ctx).
		Model(&taskAssignee{}).
		Where("task_id = ?", taskID).
		Order("position ASC").
		Pluck("user_id", &assignees).Error
	return assignees, err
}

func insertAssignees(tx *gorm.DB, taskID int64, assigneeIDs []int64) error {
	rows := make([]taskAssignee, 0, len(assigneeIDs))
	for i, userID := range assigneeIDs {
		rows = append(rows, taskAssignee{TaskID: taskID, UserID: userID, Position: i})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
