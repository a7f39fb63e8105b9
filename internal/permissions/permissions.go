// Package permissions answers "may this user do X to this entity".
//
// Every predicate is pure: callers load the entities (reporting NotFound
// first) and pass in relationship facts such as team membership. A
// superuser passes every check, with the single exception of editing a
// time entry that is already APPROVED or BILLED.
package permissions

import (
	"github.com/yukikurage/timetracker-api/internal/models"
)

func isManagerRole(u *models.User) bool {
	return u.Role == models.RoleManager
}

func managesProject(u *models.User, p *models.Project) bool {
	return p != nil && p.IsManagedBy(u.ID)
}

// Users

// CanManageUsers covers admin user creation, update, role changes and deletion.
func CanManageUsers(u *models.User) bool {
	return u.IsSuperuser
}

// CanViewAllUsers covers listing every account and reading other profiles.
func CanViewAllUsers(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}

// CanSetHourlyRate covers changing a personal billing rate.
func CanSetHourlyRate(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}

// Projects

func CanCreateProject(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}

func CanReadProject(u *models.User, p *models.Project, isMember bool) bool {
	if u.IsSuperuser {
		return true
	}
	return p.OwnerID == u.ID || managesProject(u, p) || isManagerRole(u) || isMember
}

func CanUpdateProject(u *models.User, p *models.Project) bool {
	if u.IsSuperuser {
		return true
	}
	return p.OwnerID == u.ID || managesProject(u, p) || isManagerRole(u)
}

func CanDeleteProject(u *models.User, p *models.Project) bool {
	return u.IsSuperuser || managesProject(u, p)
}

func CanManageTeam(u *models.User, p *models.Project) bool {
	return u.IsSuperuser || managesProject(u, p)
}

// Tasks

// CanCreateTask requires the right to update the target project.
func CanCreateTask(u *models.User, p *models.Project) bool {
	return CanUpdateProject(u, p)
}

func CanReadTask(u *models.User, t *models.Task, p *models.Project, isMember bool) bool {
	if u.IsSuperuser {
		return true
	}
	return t.IsCreatedBy(u.ID) || t.IsAssignedTo(u.ID) || managesProject(u, p) || isMember
}

func CanUpdateTask(u *models.User, t *models.Task, p *models.Project) bool {
	if u.IsSuperuser {
		return true
	}
	return t.IsCreatedBy(u.ID) || t.IsAssignedTo(u.ID) || managesProject(u, p)
}

func CanAssignTask(u *models.User, t *models.Task, p *models.Project) bool {
	if u.IsSuperuser {
		return true
	}
	return t.IsCreatedBy(u.ID) || managesProject(u, p) || isManagerRole(u)
}

// CanUpdateTaskStatus also governs priority changes.
func CanUpdateTaskStatus(u *models.User, t *models.Task, p *models.Project) bool {
	if u.IsSuperuser {
		return true
	}
	return t.IsCreatedBy(u.ID) || t.IsAssignedTo(u.ID) || managesProject(u, p) || isManagerRole(u)
}

// CanDeleteTask requires the right to delete the task's project.
func CanDeleteTask(u *models.User, p *models.Project) bool {
	return CanDeleteProject(u, p)
}

// Time entries

func CanCreateTimeEntry(u *models.User, isMember bool) bool {
	return u.IsSuperuser || isMember
}

func CanReadTimeEntry(u *models.User, e *models.TimeEntry, p *models.Project) bool {
	if u.IsSuperuser {
		return true
	}
	return e.IsOwnedBy(u.ID) || isManagerRole(u) || managesProject(u, p)
}

// CanEditTimeEntry governs both field edits and deletion. APPROVED and
// BILLED entries are closed to everyone. Owners may only touch DRAFT or
// REJECTED entries; the project's manager may edit regardless of owner.
func CanEditTimeEntry(u *models.User, e *models.TimeEntry, p *models.Project) bool {
	if e.Status == models.TimeEntryStatusApproved || e.Status == models.TimeEntryStatusBilled {
		return false
	}
	if u.IsSuperuser || managesProject(u, p) {
		return true
	}
	if e.IsOwnedBy(u.ID) {
		return e.Status == models.TimeEntryStatusDraft || e.Status == models.TimeEntryStatusRejected
	}
	return false
}

// CanSubmitTimeEntry is owner only. There is no manager override.
func CanSubmitTimeEntry(u *models.User, e *models.TimeEntry) bool {
	return e.IsOwnedBy(u.ID)
}

// CanReviewTimeEntry covers approve and reject. Status is checked by the
// lifecycle, not here.
func CanReviewTimeEntry(u *models.User, p *models.Project) bool {
	return u.IsSuperuser || isManagerRole(u) || managesProject(u, p)
}

func CanMarkBilled(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}

// CanReopenTimeEntry lets the owner, or anyone who could edit it, pull a
// rejected entry back to DRAFT.
func CanReopenTimeEntry(u *models.User, e *models.TimeEntry, p *models.Project) bool {
	return CanEditTimeEntry(u, e, p)
}

// CanSeeAllTimeEntries widens time-entry listings beyond own and managed projects.
func CanSeeAllTimeEntries(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}

// Quotas

func CanManageQuotas(u *models.User) bool {
	return u.IsSuperuser || isManagerRole(u)
}
