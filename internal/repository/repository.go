package repository

import (
	"time"

	"github.com/yukikurage/timetracker-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// Update saves every column of the user
	Update(user *models.User) error

	// Count returns the number of users
	Count() (int64, error)

	// Delete removes the user together with their memberships, and clears
	// references to them on tasks, approvals and closed time entries. It fails
	// with ErrUserHasOpenTimeEntries or ErrUserOwnsProjects and changes
	// nothing when the user still has dependents.
	Delete(id uint64) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role       *models.Role
	ActiveOnly bool
	Page       int
	PageSize   int
}

// ProjectRepository defines the interface for project and team data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update saves every column of the project
	Update(project *models.Project) error

	// Delete deletes a project with its tasks, time entries and team
	Delete(id uint64) error

	// AddMember adds a user to the project team
	AddMember(member *models.ProjectTeamMember) error

	// UpdateMember saves a team member's rate override
	UpdateMember(member *models.ProjectTeamMember) error

	// RemoveMember removes a user from the project team
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(projectID, userID uint64) (*models.ProjectTeamMember, error)

	// IsMember reports whether the user is on the project team
	IsMember(projectID, userID uint64) (bool, error)

	// ListMembers lists the team with users preloaded
	ListMembers(projectID uint64) ([]models.ProjectTeamMember, error)
}

// ProjectFilter holds filtering options for listing projects. When All is
// false only projects owned by, managed by (if IncludeManaged) or staffed
// by UserID are returned.
type ProjectFilter struct {
	All            bool
	UserID         uint64
	IncludeManaged bool
	Status         *models.ProjectStatus
	Page           int
	PageSize       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every column of the task
	Update(task *models.Task) error

	// Delete deletes a task and its time entries
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks. Exactly one
// visibility mode applies: All, ManagerID (tasks of managed projects) or
// VisibleToUserID (assigned tasks plus tasks of projects the user staffs).
type TaskFilter struct {
	All             bool
	ManagerID       *uint64
	VisibleToUserID *uint64
	ProjectID       *uint64
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	Page            int
	PageSize        int
}

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	// Create creates a new time entry
	Create(entry *models.TimeEntry) error

	// FindByID finds a time entry by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TimeEntry, error)

	// List retrieves entries ordered by start time, newest first
	List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error)

	// UpdateIfStatus saves every column of the entry only while its stored
	// status still equals expected. It reports false when another writer
	// changed the status first.
	UpdateIfStatus(entry *models.TimeEntry, expected models.TimeEntryStatus) (bool, error)

	// DeleteIfStatus deletes the entry only while its stored status equals expected
	DeleteIfStatus(id uint64, expected models.TimeEntryStatus) (bool, error)
}

// TimeEntryFilter holds filtering options for listing time entries.
// VisibleToUserID restricts results to the user's own entries plus entries
// of projects the user manages.
type TimeEntryFilter struct {
	VisibleToUserID *uint64
	UserID          *uint64
	ProjectID       *uint64
	TaskID          *uint64
	Status          *models.TimeEntryStatus
	BillableOnly    bool
	From            *time.Time
	To              *time.Time
	Preload         []string
	Page            int
	PageSize        int
}

// MonthlyQuotaRepository defines the interface for monthly quota data access
type MonthlyQuotaRepository interface {
	// Create creates a new quota
	Create(quota *models.MonthlyQuota) error

	// FindByMonth finds the quota for a YYYY-MM month
	FindByMonth(month string) (*models.MonthlyQuota, error)

	// ListByYear lists quotas of a year ordered by month, or all quotas when year is 0
	ListByYear(year int) ([]models.MonthlyQuota, error)

	// Update saves every column of the quota
	Update(quota *models.MonthlyQuota) error

	// Delete deletes a quota by ID
	Delete(id uint64) error
}
