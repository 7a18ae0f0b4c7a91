package auth

import (
	"github.com/locpham246/task-manager/internal"
)

// Task field identifiers used by the edit policy.
const (
	TaskFieldTitle       = "title"
	TaskFieldDescription = "description"
	TaskFieldStatus      = "status"
	TaskFieldPriority    = "priority"
	TaskFieldAssignees   = "assignees"
	TaskFieldDueDate     = "due_date"
	TaskFieldDocLinks    = "documentation_links"
)

// memberEditableFields is the only mutation surface a member has on a task
// they are assigned to.
var memberEditableFields = map[string]bool{
	TaskFieldStatus:      true,
	TaskFieldDescription: true,
}

var (
	ErrNotAssigned = internal.NewForbiddenError("you can only update tasks assigned to you", internal.ErrCodeNotAssigned)
	ErrFieldDenied = internal.NewForbiddenError("members may only change task status and description", internal.ErrCodeInsufficientRole)
	ErrRoleDenied  = internal.NewForbiddenError("insufficient role for this action", internal.ErrCodeInsufficientRole)
	ErrNotOwner    = internal.NewForbiddenError("you can only manage documents you shared yourself", internal.ErrCodeNotDocumentOwner)
	ErrSelfDemote  = internal.NewValidationError("you cannot change your own role", internal.ErrCodeSelfDemotion)
)

// Policy holds every authorization decision in one place. All methods are
// pure functions of their arguments; the policy carries no state and touches
// no storage.
type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

// CanAuthenticate gates login on the whitelist. With enforcement disabled
// (the migration-era compatibility mode) any email may authenticate.
func (Policy) CanAuthenticate(whitelistEnforced, entryActive bool) bool {
	return !whitelistEnforced || entryActive
}

// isAssigned reports membership in the task's assignee set; the primary owner
// counts as assigned.
func isAssigned(accountID, ownerID int64, assignees []int64) bool {
	if accountID == ownerID {
		return true
	}
	for _, id := range assignees {
		if id == accountID {
			return true
		}
	}
	return false
}

// CanViewTask: admins see everything; members see only tasks they own or are
// assigned to.
func (Policy) CanViewTask(role Role, accountID, ownerID int64, assignees []int64) bool {
	if role.IsAdmin() {
		return true
	}
	return isAssigned(accountID, ownerID, assignees)
}

// AllowedTaskFields decides which of the requested fields the actor may
// mutate. Admins pass through unchanged. Members must be assigned and get the
// requested set intersected with {status, description}; an empty intersection
// is a denial, not a no-op.
func (Policy) AllowedTaskFields(role Role, accountID, ownerID int64, assignees []int64, requested []string) ([]string, error) {
	if role.IsAdmin() {
		return requested, nil
	}
	if !isAssigned(accountID, ownerID, assignees) {
		return nil, ErrNotAssigned
	}

	allowed := make([]string, 0, len(requested))
	for _, field := range requested {
		if memberEditableFields[field] {
			allowed = append(allowed, field)
		}
	}
	if len(requested) > 0 && len(allowed) == 0 {
		return nil, ErrFieldDenied
	}
	return allowed, nil
}

// CanCreateTaskFor: admins assign anyone; members may only create tasks for
// themselves.
func (Policy) CanCreateTaskFor(role Role, accountID int64, assignees []int64) bool {
	if role.IsAdmin() {
		return true
	}
	for _, id := range assignees {
		if id != accountID {
			return false
		}
	}
	return true
}

func (Policy) CanDeleteTask(role Role) bool {
	return role.IsAdmin()
}

// CanManageDocument covers share updates and deletion: admins always, the
// sharing member only for their own documents. This is the original-owner
// protection rule.
func (Policy) CanManageDocument(role Role, accountID, sharedByID int64) bool {
	if role.IsAdmin() {
		return true
	}
	return accountID == sharedByID
}

// CanChangeRole: super_admin only, and a super_admin may not demote
// themselves away from super_admin.
func (Policy) CanChangeRole(actingRole Role, actingID, targetID int64, newRole Role) error {
	if !actingRole.IsSuperAdmin() {
		return ErrRoleDenied
	}
	if !newRole.Valid() {
		return internal.NewValidationError("invalid role", internal.ErrCodeInvalidRole)
	}
	if actingID == targetID && newRole != RoleSuperAdmin {
		return ErrSelfDemote
	}
	return nil
}

func (Policy) CanViewAuditLog(role Role) bool {
	return role.IsSuperAdmin()
}

func (Policy) CanViewActivity(role Role) bool {
	return role.IsAdmin()
}

func (Policy) CanManageWhitelist(role Role) bool {
	return role.IsSuperAdmin()
}

func (Policy) CanListUsers(role Role) bool {
	return role.IsAdmin()
}

func (Policy) CanViewUser(role Role) bool {
	return role.IsSuperAdmin()
}

// CanViewProfile: accounts read their own profile; super_admin reads any.
func (Policy) CanViewProfile(role Role, accountID, targetID int64) bool {
	return accountID == targetID || role.IsSuperAdmin()
}

func (Policy) CanInviteUsers(role Role) bool {
	return role.IsAdmin()
}
