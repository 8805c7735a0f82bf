package repository

import (
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByPublicID finds a tenant's task by its public id token
	FindByPublicID(organizationID uint64, publicID string) (*models.Task, error)

	// FindBySeq finds a board's task by its per-board sequence number
	FindBySeq(boardID, seq uint64) (*models.Task, error)

	// Snapshot returns a board's non-archived tasks in creation order.
	// Resolution runs over this point-in-time view.
	Snapshot(boardID uint64) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// MaxPosition returns the highest ordering key in a column
	MaxPosition(columnID uint64) (float64, error)

	// NextSeq returns the next per-board sequence number
	NextSeq(boardID uint64) (uint64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OrganizationID uint64
	BoardID        *uint64
	ColumnID       *uint64
	Priority       *models.TaskPriority
	AssigneeID     *uint64
	DueBefore      *time.Time
	IncludeArchived bool
	Page           int
	PageSize       int
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	// Create creates a board together with its columns
	Create(board *models.Board) error

	// FindByID finds a board by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Board, error)

	// FindWithColumns finds a board with columns ordered by position
	FindWithColumns(id uint64) (*models.Board, error)

	// ListByOrganization lists a tenant's boards
	ListByOrganization(organizationID uint64) ([]models.Board, error)
}

// RuleRepository defines the interface for automation rule data access
type RuleRepository interface {
	// Create creates a new rule
	Create(rule *models.AutomationRule) error

	// FindByID finds a rule by ID
	FindByID(id uint64) (*models.AutomationRule, error)

	// ListByOrganization lists a tenant's rules
	ListByOrganization(organizationID uint64) ([]models.AutomationRule, error)

	// ListEnabled selects the enabled rules for a tenant whose trigger
	// matches, scoped to the board when the rule names one. Fetch order
	// (ascending id) is the execution order.
	ListEnabled(organizationID uint64, trigger models.RuleTrigger, boardID uint64) ([]models.AutomationRule, error)

	// Update updates a rule
	Update(rule *models.AutomationRule) error

	// Delete soft deletes a rule
	Delete(id uint64) error

	// RecordTrigger increments the trigger counter and stamps the last
	// trigger time. Called only after a successful execution.
	RecordTrigger(id uint64, at time.Time) error
}

// LinkRepository defines the interface for external link data access
type LinkRepository interface {
	// Upsert inserts a link or refreshes title/url/status of the
	// existing row keyed by the deterministic LinkKey
	Upsert(link *models.ExternalLink) error

	// ListByTask lists a task's external links
	ListByTask(taskID uint64) ([]models.ExternalLink, error)
}

// ActivityRepository defines the interface for the append-only audit
// log. There is deliberately no update or delete.
type ActivityRepository interface {
	// Create appends an activity record
	Create(activity *models.Activity) error

	// ListByTask lists a task's activity, newest first
	ListByTask(taskID uint64, limit int) ([]models.Activity, error)

	// ListByBoard lists a board's activity, newest first
	ListByBoard(boardID uint64, limit int) ([]models.Activity, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(code string) (*models.Organization, error)

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMember) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(userID uint64) ([]models.OrganizationMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// CreateWithPersonalOrganization creates a user, their personal
	// organization and the owner membership in one transaction
	CreateWithPersonalOrganization(user *models.User, org *models.Organization, member *models.OrganizationMember) error
}
