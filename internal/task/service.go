package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/auth"
)

type Service struct {
	repo    Repository
	auditor audit.Recorder
	policy  auth.Policy
	logger  *slog.Logger
}

func NewService(repo Repository, auditor audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		auditor: auditor,
		policy:  auth.NewPolicy(),
		logger:  logger,
	}
}

// List returns tasks visible to the actor. Members are silently scoped to
// tasks they own or are assigned to; admin filters pass through untouched.
func (s *Service) List(ctx context.Context, actor *auth.User, filter Filter) ([]Task, error) {
	if !actor.Role.IsAdmin() {
		filter.ViewerID = actor.ID
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list tasks", err)
	}
	return tasks, nil
}

// Get returns one task if the actor may see it.
func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanViewTask(actor.Role, actor.ID, t.OwnerID, t.Assignees) {
		return nil, auth.ErrNotAssigned
	}
	return t, nil
}

// Create builds a task. Members may only create tasks assigned to themselves;
// an empty assignee list defaults to the creator. The first assignee becomes
// the primary owner.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto *CreateTaskDTO) (*Task, error) {
	assignees := dto.Assignees
	if len(assignees) == 0 {
		assignees = []int64{actor.ID}
	}

	if !s.policy.CanCreateTaskFor(actor.Role, actor.ID, assignees) {
		return nil, auth.ErrRoleDenied
	}
	if err := s.ensureAssigneesExist(ctx, assignees); err != nil {
		return nil, err
	}

	t := &Task{
		Title:       dto.Title,
		Description: dto.Description,
		Status:      dto.Status,
		Priority:    dto.Priority,
		OwnerID:     assignees[0],
		DueDate:     dto.DueDate,
		DocLinks:    LinkList(dto.DocLinks),
		CreatedBy:   actor.ID,
		Assignees:   assignees,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, internal.NewDependencyError("failed to create task", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionCreateTask, audit.Details{
		"task_id":    t.ID,
		"task_title": t.Title,
		"assignees":  assignees,
	})
	return t, nil
}

// Update applies a partial update after filtering the requested fields
// through the edit policy. Members keep only status and description; an
// update whose every field is filtered out is a denial.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, dto *UpdateTaskDTO) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.AllowedTaskFields(actor.Role, actor.ID, t.OwnerID, t.Assignees, dto.RequestedFields())
	if err != nil {
		return nil, err
	}

	var newAssignees []int64
	for _, field := range allowed {
		switch field {
		case auth.TaskFieldTitle:
			t.Title = *dto.Title
		case auth.TaskFieldDescription:
			t.Description = *dto.Description
		case auth.TaskFieldStatus:
			t.Status = *dto.Status
		case auth.TaskFieldPriority:
			t.Priority = *dto.Priority
		case auth.TaskFieldDueDate:
			t.DueDate = dto.DueDate
		case auth.TaskFieldDocLinks:
			t.DocLinks = LinkList(*dto.DocLinks)
		case auth.TaskFieldAssignees:
			newAssignees = *dto.Assignees
		}
	}

	if newAssignees != nil {
		if len(newAssignees) == 0 {
			return nil, internal.NewValidationError("a task must keep at least one assignee", internal.ErrCodeValidationFailed)
		}
		if err := s.ensureAssigneesExist(ctx, newAssignees); err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceAssignees(ctx, t.ID, newAssignees); err != nil {
			return nil, internal.NewDependencyError("failed to update assignees", err)
		}
		t.Assignees = newAssignees
		t.OwnerID = newAssignees[0]
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, internal.NewDependencyError("failed to update task", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionUpdateTask, audit.Details{
		"task_id":    t.ID,
		"task_title": t.Title,
		"fields":     allowed,
	})
	return t, nil
}

// UpdateStatus is the single-field fast path members use from the board.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.User, id int64, status Status) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.policy.AllowedTaskFields(actor.Role, actor.ID, t.OwnerID, t.Assignees, []string{auth.TaskFieldStatus}); err != nil {
		return nil, err
	}

	oldStatus := t.Status
	t.Status = status
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, internal.NewDependencyError("failed to update task status", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionUpdateTaskStatus, audit.Details{
		"task_id":    t.ID,
		"task_title": t.Title,
		"old_status": string(oldStatus),
		"new_status": string(status),
	})
	return t, nil
}

// Delete removes a task. Admin and above only, regardless of assignment.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanDeleteTask(actor.Role) {
		return auth.ErrRoleDenied
	}

	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return internal.NewDependencyError("failed to delete task", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionDeleteTask, audit.Details{
		"task_id":    t.ID,
		"task_title": t.Title,
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

func (s *Service) ensureAssigneesExist(ctx context.Context, ids []int64) error {
	missing, err := s.repo.MissingAssignees(ctx, ids)
	if err != nil {
		return internal.NewDependencyError("failed to validate assignees", err)
	}
	if len(missing) > 0 {
		return ErrAssigneeNotFound
	}
	return nil
}
