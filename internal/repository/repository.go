package repository

import (
	"context"
	"time"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves every column of the user
	Update(ctx context.Context, user *models.User) error

	// ListCommitteeExecutives lists users that derive committee membership
	// automatically, ordered by name then id, with designations preloaded
	ListCommitteeExecutives(ctx context.Context) ([]models.User, error)

	// LockCommitteeExecutives takes row locks on the auto-derived roster
	LockCommitteeExecutives(ctx context.Context) error

	// CountCommitteeExecutives counts the auto-derived roster
	CountCommitteeExecutives(ctx context.Context) (int64, error)

	// IsCommitteeExecutive reports whether the user is part of the auto-derived roster
	IsCommitteeExecutive(ctx context.Context, userID uint64) (bool, error)

	// DeactivateCommittee sets committee_status inactive for the given users,
	// restricted to rows that still match the auto-derived roster predicate
	DeactivateCommittee(ctx context.Context, userIDs []uint64) (int64, error)
}

// DesignationRepository defines the interface for designation catalog access
type DesignationRepository interface {
	// Create creates a new designation
	Create(ctx context.Context, designation *models.Designation) error

	// FindByID finds a designation by ID
	FindByID(ctx context.Context, id uint64) (*models.Designation, error)

	// FindByName finds a designation by its exact name
	FindByName(ctx context.Context, name string) (*models.Designation, error)

	// ListActive lists active designations ordered by sort_order
	ListActive(ctx context.Context) ([]models.Designation, error)
}

// AssignmentRepository defines the interface for the committee ledger
type AssignmentRepository interface {
	// Create inserts a ledger row
	Create(ctx context.Context, assignment *models.CommitteeAssignment) error

	// FindByID finds a ledger row by ID
	FindByID(ctx context.Context, id uint64) (*models.CommitteeAssignment, error)

	// FindCurrentByUser finds the current ledger row of a user
	FindCurrentByUser(ctx context.Context, userID uint64) (*models.CommitteeAssignment, error)

	// ListCurrent lists current rows by member_order then id, with user and designation preloaded
	ListCurrent(ctx context.Context) ([]models.CommitteeAssignment, error)

	// LockCurrent takes row locks on the current ledger rows
	LockCurrent(ctx context.Context) error

	// LatestCurrent returns the most recently inserted current row
	LatestCurrent(ctx context.Context) (*models.CommitteeAssignment, error)

	// MaxCurrentOrder returns the largest member_order among current rows, 0 when empty
	MaxCurrentOrder(ctx context.Context) (int, error)

	// CurrentOrders maps each current row id to its member_order
	CurrentOrders(ctx context.Context) (map[uint64]int, error)

	// CountCurrent counts current rows
	CountCurrent(ctx context.Context) (int64, error)

	// UpdateOrder sets member_order of one row
	UpdateOrder(ctx context.Context, id uint64, memberOrder int) error

	// Delete deletes a ledger row
	Delete(ctx context.Context, id uint64) error

	// CloseCurrent flips every current row to previous
	CloseCurrent(ctx context.Context, tenureEnd time.Time) (int64, error)

	// DistinctNumbers lists committee numbers present in the ledger
	DistinctNumbers(ctx context.Context) ([]string, error)
}

// CommitteeSummary is one archived committee with its size
type CommitteeSummary struct {
	CommitteeNumber string `json:"committee_number"`
	MemberCount     int64  `json:"member_count"`
}

// ArchiveRepository is append-only access to previous committee snapshots
type ArchiveRepository interface {
	// CreateBatch inserts snapshot rows in order
	CreateBatch(ctx context.Context, members []models.PreviousCommitteeMember) error

	// ListNumbers lists distinct archived committee numbers, descending
	ListNumbers(ctx context.Context) ([]string, error)

	// CountByNumber counts snapshot rows archived under a committee number
	CountByNumber(ctx context.Context, committeeNumber string) (int64, error)

	// ListCommittees lists archived committees with member counts, descending
	ListCommittees(ctx context.Context, params utils.PaginationParams) ([]CommitteeSummary, int64, error)

	// ListByNumber lists the snapshot rows of one committee by member_order
	ListByNumber(ctx context.Context, committeeNumber string) ([]models.PreviousCommitteeMember, error)
}

// TransitionRepository defines the interface for the tenure transition log
type TransitionRepository interface {
	// Create inserts a transition record
	Create(ctx context.Context, transition *models.TenureTransition) error

	// FindByIdempotencyKey finds the transition recorded under key
	FindByIdempotencyKey(ctx context.Context, key string) (*models.TenureTransition, error)

	// Latest returns the most recent transition
	Latest(ctx context.Context) (*models.TenureTransition, error)

	// List returns the most recent transitions, newest first
	List(ctx context.Context, limit int) ([]models.TenureTransition, error)
}

// Store bundles the repositories and scopes them to one transaction.
type Store interface {
	Users() UserRepository
	Designations() DesignationRepository
	Assignments() AssignmentRepository
	Archive() ArchiveRepository
	Transitions() TransitionRepository

	// Transaction runs fn against a Store bound to a single database transaction.
	// Returning an error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Lock takes a transaction-scoped advisory lock named key where the
	// database supports one.
	Lock(ctx context.Context, key string) error
}
