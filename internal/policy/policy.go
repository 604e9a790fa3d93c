// Package policy holds the pure authorization rules of the taskboard.
//
// Every decision maps (caller role, caller UID, resource) to a yes/no answer
// with no side effects, so the rules are trivial to test and to change in one
// place. Services consult the policy after authentication has established the
// caller identity.
package policy

import "github.com/teamtask/taskboard/internal/models"

// IsAdmin reports whether the role carries full privileges.
func IsAdmin(role string) bool {
	return role == models.RoleAdmin
}

// CanEditTask reports whether the caller may change a task's fields
// (title, description, priority, due date, points): admins and the creator.
func CanEditTask(role, callerUID string, task *models.Task) bool {
	return IsAdmin(role) || task.CreatedBy == callerUID
}

// CanSetAssignee reports whether the caller may point assigned_to at someone
// other than themselves. Non-admin requests have the field stripped instead
// of being rejected.
func CanSetAssignee(role string) bool {
	return IsAdmin(role)
}

// CanDeleteTask reports whether the caller may hard-delete a task.
func CanDeleteTask(role string) bool {
	return IsAdmin(role)
}

// CanManageUsers reports whether the caller may pass the admin gate: creating,
// listing or deleting users and reading the admin dashboard.
func CanManageUsers(role string) bool {
	return IsAdmin(role)
}

// CanTickPoint reports whether the caller may tick or untick a checklist
// point on any task. Checklists are collaborative: every authenticated user
// may mark their own completion, regardless of task ownership.
func CanTickPoint(string) bool {
	return true
}

// CanViewTask reports whether a task appears in the caller's listings:
// admins see everything, others see tasks they created or are assigned to.
func CanViewTask(role, callerUID string, task *models.Task) bool {
	if IsAdmin(role) {
		return true
	}
	if task.CreatedBy == callerUID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == callerUID
}
