package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/society-committee-api/internal/events"
	"github.com/yukikurage/society-committee-api/internal/metrics"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommitteeService provides the current-committee operations.
type CommitteeService struct {
	store      repository.Store
	reconciler *Reconciler
	numbering  *Numbering
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewCommitteeService creates a new CommitteeService. publisher, m and
// logger may be nil.
func NewCommitteeService(store repository.Store, numbering *Numbering, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *CommitteeService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitteeService{
		store:      store,
		reconciler: NewReconciler(),
		numbering:  numbering,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// CurrentCommittee is the merged roster of the running cycle.
type CurrentCommittee struct {
	Members         []CommitteeMember
	CommitteeNumber string
	Total           int
}

// GetCurrentCommittee returns the merged roster. It never writes.
func (s *CommitteeService) GetCurrentCommittee(ctx context.Context) (*CurrentCommittee, error) {
	number, _, err := s.numbering.Current(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve committee number: %w", err)
	}

	members, err := s.reconciler.Roster(ctx, s.store, number)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRosterSize(len(members))

	return &CurrentCommittee{
		Members:         members,
		CommitteeNumber: number,
		Total:           len(members),
	}, nil
}

// AddMemberInput represents parameters to add a member to the ledger.
type AddMemberInput struct {
	UserID        uint64
	DesignationID uint64
	MemberOrder   *int
	// StagedNumber is an administrator-chosen committee number to use
	// instead of the resolved one.
	StagedNumber string
}

// AddMemberResult is the created row and where its committee number came from.
type AddMemberResult struct {
	Assignment   *models.CommitteeAssignment
	NumberSource NumberSource
}

// AddMember inserts a current ledger row for a user not yet on the committee.
func (s *CommitteeService) AddMember(ctx context.Context, input AddMemberInput) (*AddMemberResult, error) {
	if input.MemberOrder != nil && *input.MemberOrder < 1 {
		return nil, ErrInvalidMemberOrder
	}

	var result AddMemberResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := findUser(ctx, tx, input.UserID); err != nil {
			return err
		}
		if _, err := findDesignation(ctx, tx, input.DesignationID); err != nil {
			return err
		}

		onCommittee, err := s.isOnCommittee(ctx, tx, input.UserID)
		if err != nil {
			return err
		}
		if onCommittee {
			return ErrAlreadyInCommittee
		}

		memberOrder, err := s.resolveMemberOrder(ctx, tx, input.MemberOrder)
		if err != nil {
			return err
		}

		claimed, err := s.numbering.Claim(ctx, tx, input.StagedNumber)
		if err != nil {
			return fmt.Errorf("failed to resolve committee number: %w", err)
		}

		designationID := input.DesignationID
		assignment := &models.CommitteeAssignment{
			UserID:          input.UserID,
			DesignationID:   &designationID,
			CommitteeNumber: claimed.Number,
			Status:          models.AssignmentStatusCurrent,
			TenureStart:     s.now(),
			MemberOrder:     memberOrder,
		}
		if err := tx.Assignments().Create(ctx, assignment); err != nil {
			return err
		}

		result = AddMemberResult{Assignment: assignment, NumberSource: claimed.Source}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInCommittee
		}
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add committee member: %w", err)
	}

	s.metrics.MemberAdded()
	s.publish(ctx, events.New(events.TypeMemberAdded, events.MemberAddedPayload{
		AssignmentID:    result.Assignment.ID,
		UserID:          result.Assignment.UserID,
		CommitteeNumber: result.Assignment.CommitteeNumber,
	}))

	return &result, nil
}

// RemoveMember deletes a current ledger row. Archived snapshots are untouched.
func (s *CommitteeService) RemoveMember(ctx context.Context, assignmentID uint64) error {
	var removed *models.CommitteeAssignment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		assignment, err := tx.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}

		if !assignment.IsCurrent() {
			return ErrAssignmentNotCurrent
		}

		if err := tx.Assignments().Delete(ctx, assignmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}

		removed = assignment
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to remove committee member: %w", err)
	}

	s.metrics.MemberRemoved()
	s.publish(ctx, events.New(events.TypeMemberRemoved, events.MemberRemovedPayload{
		AssignmentID: removed.ID,
		UserID:       removed.UserID,
	}))

	return nil
}

// MemberOrderUpdate sets the display position of one ledger row.
type MemberOrderUpdate struct {
	ID          uint64
	MemberOrder int
}

// ReorderMembers applies all updates or none. The resulting current
// committee must not repeat a member_order.
func (s *CommitteeService) ReorderMembers(ctx context.Context, updates []MemberOrderUpdate) error {
	if len(updates) == 0 {
		return ErrEmptyReorder
	}
	for _, u := range updates {
		if u.MemberOrder < 1 {
			return ErrInvalidMemberOrder
		}
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		orders, err := tx.Assignments().CurrentOrders(ctx)
		if err != nil {
			return err
		}

		for _, u := range updates {
			if _, ok := orders[u.ID]; !ok {
				return ErrAssignmentNotFound
			}
			orders[u.ID] = u.MemberOrder
		}

		used := make(map[int]struct{}, len(orders))
		for _, order := range orders {
			if _, dup := used[order]; dup {
				return ErrDuplicateMemberOrder
			}
			used[order] = struct{}{}
		}

		for _, u := range updates {
			if err := tx.Assignments().UpdateOrder(ctx, u.ID, u.MemberOrder); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to update member order: %w", err)
	}

	return nil
}

// AutoAddExecutive puts an executive on the current committee. It returns
// false without error when the user is not an executive or already holds a
// current ledger row.
func (s *CommitteeService) AutoAddExecutive(ctx context.Context, userID uint64, designationID *uint64) (bool, error) {
	var created *models.CommitteeAssignment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := findUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		var designation *models.Designation
		if designationID != nil {
			if designation, err = findDesignation(ctx, tx, *designationID); err != nil {
				return err
			}
		}

		if !user.IsExecutive() {
			return nil
		}

		created, err = s.addExecutive(ctx, tx, user, designation)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		if isDomainError(err) {
			return false, err
		}
		s.logger.Error("failed to auto-add executive to committee",
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
		return false, fmt.Errorf("failed to auto-add executive: %w", err)
	}
	if created == nil {
		return false, nil
	}

	s.afterExecutiveAdded(ctx, created)
	return true, nil
}

// ApproveExecutiveApplication marks the applicant an approved executive with
// the designation and adds them to the current committee.
func (s *CommitteeService) ApproveExecutiveApplication(ctx context.Context, userID, designationID uint64) (*models.CommitteeAssignment, error) {
	var created *models.CommitteeAssignment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := findUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		designation, err := findDesignation(ctx, tx, designationID)
		if err != nil {
			return err
		}

		if _, err := tx.Assignments().FindCurrentByUser(ctx, userID); err == nil {
			return ErrAlreadyInCommittee
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user.UserType = models.UserTypeExecutive
		user.Approved = true

		created, err = s.addExecutive(ctx, tx, user, designation)
		if err != nil {
			return err
		}
		if created == nil {
			return ErrAlreadyInCommittee
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInCommittee
		}
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to approve executive application: %w", err)
	}

	s.afterExecutiveAdded(ctx, created)
	return created, nil
}

// addExecutive activates the user's committee status and inserts their
// ledger row. It returns nil when the user already holds a current row.
func (s *CommitteeService) addExecutive(ctx context.Context, tx repository.Store, user *models.User, designation *models.Designation) (*models.CommitteeAssignment, error) {
	if _, err := tx.Assignments().FindCurrentByUser(ctx, user.ID); err == nil {
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.now()
	if designation != nil {
		id := designation.ID
		user.DesignationID = &id
		user.DesignationAssignedAt = &now
	}
	user.CommitteeStatus = models.CommitteeStatusActive
	if err := tx.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	memberOrder, err := s.resolveMemberOrder(ctx, tx, nil)
	if err != nil {
		return nil, err
	}

	claimed, err := s.numbering.Claim(ctx, tx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve committee number: %w", err)
	}

	assignment := &models.CommitteeAssignment{
		UserID:          user.ID,
		DesignationID:   user.DesignationID,
		CommitteeNumber: claimed.Number,
		Status:          models.AssignmentStatusCurrent,
		TenureStart:     now,
		MemberOrder:     memberOrder,
	}
	if err := tx.Assignments().Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *CommitteeService) afterExecutiveAdded(ctx context.Context, assignment *models.CommitteeAssignment) {
	s.metrics.ExecutiveAutoAdded()
	s.publish(ctx, events.New(events.TypeMemberAdded, events.MemberAddedPayload{
		AssignmentID:    assignment.ID,
		UserID:          assignment.UserID,
		CommitteeNumber: assignment.CommitteeNumber,
		Automatic:       true,
	}))
}

// isOnCommittee reports whether the user already appears in the merged roster.
func (s *CommitteeService) isOnCommittee(ctx context.Context, tx repository.Store, userID uint64) (bool, error) {
	if _, err := tx.Assignments().FindCurrentByUser(ctx, userID); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	return tx.Users().IsCommitteeExecutive(ctx, userID)
}

// resolveMemberOrder returns requested when it is free, or the next free
// position after the current maximum.
func (s *CommitteeService) resolveMemberOrder(ctx context.Context, tx repository.Store, requested *int) (int, error) {
	if requested == nil {
		maxOrder, err := tx.Assignments().MaxCurrentOrder(ctx)
		if err != nil {
			return 0, err
		}
		return maxOrder + 1, nil
	}

	orders, err := tx.Assignments().CurrentOrders(ctx)
	if err != nil {
		return 0, err
	}
	for _, order := range orders {
		if order == *requested {
			return 0, ErrMemberOrderTaken
		}
	}
	return *requested, nil
}

// CommitteeStats summarises the current and historical committees.
type CommitteeStats struct {
	CurrentMembersCount    int64
	AutoMembersCount       int64
	TotalCommitteesHistory int
	CurrentCommitteeNumber string
	HasCurrentCommittee    bool
}

func (s *CommitteeService) Stats(ctx context.Context) (*CommitteeStats, error) {
	ledgerCount, err := s.store.Assignments().CountCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count current assignments: %w", err)
	}

	autoCount, err := s.store.Users().CountCommitteeExecutives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count committee executives: %w", err)
	}

	numbers, err := committeeNumbers(ctx, s.store)
	if err != nil {
		return nil, err
	}

	current, _, err := s.numbering.Current(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve committee number: %w", err)
	}

	return &CommitteeStats{
		CurrentMembersCount:    ledgerCount,
		AutoMembersCount:       autoCount,
		TotalCommitteesHistory: len(numbers),
		CurrentCommitteeNumber: current,
		HasCurrentCommittee:    ledgerCount+autoCount > 0,
	}, nil
}

func (s *CommitteeService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish committee event",
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	}
}

func findUser(ctx context.Context, store repository.Store, id uint64) (*models.User, error) {
	user, err := store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func findDesignation(ctx context.Context, store repository.Store, id uint64) (*models.Designation, error) {
	designation, err := store.Designations().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDesignationNotFound
		}
		return nil, fmt.Errorf("failed to find designation: %w", err)
	}
	return designation, nil
}

func isDomainError(err error) bool {
	var k *kindError
	return errors.As(err, &k) ||
		errors.Is(err, ErrEmptyRoster) ||
		errors.Is(err, ErrBadConfirmation)
}
