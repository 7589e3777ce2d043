package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/events"
	"github.com/yukikurage/society-committee-api/internal/metrics"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenureService ends a committee cycle and archives its roster.
type TenureService struct {
	store        repository.Store
	reconciler   *Reconciler
	numbering    *Numbering
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
	confirmation string
	now          func() time.Time
}

// NewTenureService creates a new TenureService. An empty confirmation
// falls back to "CONFIRM".
func NewTenureService(store repository.Store, numbering *Numbering, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger, confirmation string) *TenureService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirmation == "" {
		confirmation = constants.EndTenureConfirmation
	}
	return &TenureService{
		store:        store,
		reconciler:   NewReconciler(),
		numbering:    numbering,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		confirmation: confirmation,
		now:          time.Now,
	}
}

// WithClock overrides the time source.
func (s *TenureService) WithClock(now func() time.Time) *TenureService {
	s.now = now
	return s
}

// EndTenureInput represents parameters to end the current tenure.
type EndTenureInput struct {
	Confirmation       string
	NewCommitteeNumber string
	// IdempotencyKey makes retries return the first result instead of
	// running again. Optional.
	IdempotencyKey string
}

// EndTenureResult summarises a committed transition.
type EndTenureResult struct {
	TransitionID            string
	ArchivedCount           int
	ArchivedCommitteeNumber string
	NewCommitteeNumber      string
	// Replayed is true when the result was loaded from an earlier run.
	Replayed bool
}

// EndTenure archives the auto-derived roster, deactivates it, closes the
// ledger and records the transition, all in one transaction.
func (s *TenureService) EndTenure(ctx context.Context, input EndTenureInput) (*EndTenureResult, error) {
	if input.Confirmation != s.confirmation {
		return nil, ErrBadConfirmation
	}

	newNumber, err := ValidateCommitteeNumber(input.NewCommitteeNumber)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if len(key) > constants.MaxIdempotencyKeyLength {
		return nil, ErrInvalidIdempotencyKey
	}

	var (
		result     *EndTenureResult
		rosterSize int
		oldNumber  string
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Lock(ctx, constants.CommitteeTransitionLockName); err != nil {
			return err
		}

		if key != "" {
			previous, err := tx.Transitions().FindByIdempotencyKey(ctx, key)
			if err == nil {
				result = replayed(previous)
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up idempotency key: %w", err)
			}
		}

		if err := tx.Users().LockCommitteeExecutives(ctx); err != nil {
			return fmt.Errorf("failed to lock committee executives: %w", err)
		}
		if err := tx.Assignments().LockCurrent(ctx); err != nil {
			return fmt.Errorf("failed to lock current assignments: %w", err)
		}

		number, _, err := s.numbering.Current(ctx, tx)
		if err != nil {
			return err
		}
		oldNumber = number

		roster, err := s.reconciler.AutoRoster(ctx, tx, oldNumber)
		if err != nil {
			return err
		}
		rosterSize = len(roster)
		if rosterSize == 0 {
			return ErrEmptyRoster
		}

		if err := checkArchiveLabels(ctx, tx, oldNumber, newNumber); err != nil {
			return err
		}

		now := s.now()
		today := utils.Today(now)
		transitionID := uuid.NewString()

		snapshots := make([]models.PreviousCommitteeMember, len(roster))
		userIDs := make([]uint64, len(roster))
		for i, m := range roster {
			userID := m.UserID
			tenureStart := m.TenureStart
			tenureEnd := today
			snapshots[i] = models.PreviousCommitteeMember{
				UserID:                &userID,
				Name:                  m.UserName,
				Email:                 m.UserEmail,
				Designation:           m.DesignationName,
				DesignationIDSnapshot: m.DesignationID,
				Photo:                 m.UserImage,
				CommitteeNumber:       oldNumber,
				MemberOrder:           i + 1,
				TenureStart:           &tenureStart,
				TenureEnd:             &tenureEnd,
				TransitionID:          transitionID,
			}
			userIDs[i] = m.UserID
		}

		if err := tx.Archive().CreateBatch(ctx, snapshots); err != nil {
			return err
		}

		deactivated, err := tx.Users().DeactivateCommittee(ctx, userIDs)
		if err != nil {
			return fmt.Errorf("failed to deactivate committee executives: %w", err)
		}

		closed, err := tx.Assignments().CloseCurrent(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to close current assignments: %w", err)
		}

		transition := &models.TenureTransition{
			ID:                      transitionID,
			ArchivedCommitteeNumber: oldNumber,
			NewCommitteeNumber:      newNumber,
			ArchivedCount:           len(roster),
			DeactivatedCount:        deactivated,
			ClosedAssignments:       closed,
			CreatedAt:               now,
		}
		if key != "" {
			transition.IdempotencyKey = &key
		}
		if err := tx.Transitions().Create(ctx, transition); err != nil {
			return fmt.Errorf("failed to record tenure transition: %w", err)
		}

		result = &EndTenureResult{
			TransitionID:            transitionID,
			ArchivedCount:           len(roster),
			ArchivedCommitteeNumber: oldNumber,
			NewCommitteeNumber:      newNumber,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}

		// A concurrent run with the same key committed first.
		if key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if previous, lookupErr := s.store.Transitions().FindByIdempotencyKey(ctx, key); lookupErr == nil {
				return replayed(previous), nil
			}
		}

		s.metrics.TransitionFailed()
		transitionErr := &TransitionError{
			Cause:                   err,
			RosterSize:              rosterSize,
			ArchivedCommitteeNumber: oldNumber,
			NewCommitteeNumber:      newNumber,
		}
		s.logger.Error("failed to end committee tenure",
			zap.Int("roster_size", rosterSize),
			zap.String("archived_committee_number", oldNumber),
			zap.String("new_committee_number", newNumber),
			zap.Error(err),
		)
		return nil, transitionErr
	}

	if result.Replayed {
		return result, nil
	}

	s.numbering.Remember(ctx, result.NewCommitteeNumber)
	s.metrics.TenureEnded(result.ArchivedCount)
	s.logger.Info("committee tenure ended",
		zap.String("transition_id", result.TransitionID),
		zap.Int("archived_count", result.ArchivedCount),
		zap.String("archived_committee_number", result.ArchivedCommitteeNumber),
		zap.String("new_committee_number", result.NewCommitteeNumber),
	)

	if err := s.publisher.Publish(ctx, events.New(events.TypeTenureEnded, events.TenureEndedPayload{
		TransitionID:            result.TransitionID,
		ArchivedCount:           result.ArchivedCount,
		ArchivedCommitteeNumber: result.ArchivedCommitteeNumber,
		NewCommitteeNumber:      result.NewCommitteeNumber,
	})); err != nil {
		s.logger.Warn("failed to publish committee event",
			zap.String("event_type", events.TypeTenureEnded),
			zap.Error(err),
		)
	}

	return result, nil
}

// Transitions lists the most recent tenure transitions, newest first.
func (s *TenureService) Transitions(ctx context.Context, limit int) ([]models.TenureTransition, error) {
	transitions, err := s.store.Transitions().List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenure transitions: %w", err)
	}
	return transitions, nil
}

// checkArchiveLabels keeps one archived cycle per committee number.
func checkArchiveLabels(ctx context.Context, tx repository.Store, oldNumber, newNumber string) error {
	if newNumber == oldNumber {
		return ErrCommitteeNumberUnchanged
	}

	archived, err := tx.Archive().CountByNumber(ctx, oldNumber)
	if err != nil {
		return fmt.Errorf("failed to check archived committee: %w", err)
	}
	if archived > 0 {
		return ErrCommitteeAlreadyArchived
	}

	archived, err = tx.Archive().CountByNumber(ctx, newNumber)
	if err != nil {
		return fmt.Errorf("failed to check archived committee: %w", err)
	}
	if archived > 0 {
		return ErrCommitteeNumberArchived
	}
	return nil
}

func replayed(t *models.TenureTransition) *EndTenureResult {
	return &EndTenureResult{
		TransitionID:            t.ID,
		ArchivedCount:           t.ArchivedCount,
		ArchivedCommitteeNumber: t.ArchivedCommitteeNumber,
		NewCommitteeNumber:      t.NewCommitteeNumber,
		Replayed:                true,
	}
}
