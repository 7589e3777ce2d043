package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/utils"
)

// ArchiveService serves the read paths over previous committees.
type ArchiveService struct {
	store repository.Store
}

func NewArchiveService(store repository.Store) *ArchiveService {
	return &ArchiveService{store: store}
}

// ListCommitteeNumbers returns the numbers of archived committees, descending.
// The current committee is not listed until its tenure ends.
func (s *ArchiveService) ListCommitteeNumbers(ctx context.Context) ([]string, error) {
	numbers, err := s.store.Archive().ListNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived committee numbers: %w", err)
	}
	if numbers == nil {
		numbers = []string{}
	}
	return numbers, nil
}

// ListPreviousCommittees returns archived committees with their sizes, descending.
func (s *ArchiveService) ListPreviousCommittees(ctx context.Context, params utils.PaginationParams) ([]repository.CommitteeSummary, int64, error) {
	summaries, total, err := s.store.Archive().ListCommittees(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list previous committees: %w", err)
	}
	return summaries, total, nil
}

// GetPreviousCommittee returns the snapshot of one archived committee.
func (s *ArchiveService) GetPreviousCommittee(ctx context.Context, committeeNumber string) ([]models.PreviousCommitteeMember, error) {
	members, err := s.store.Archive().ListByNumber(ctx, committeeNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous committee: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrCommitteeNotFound
	}
	return members, nil
}

// committeeNumbers unions ledger and archive numbers for the history count.
func committeeNumbers(ctx context.Context, store repository.Store) ([]string, error) {
	ledger, err := store.Assignments().DistinctNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger committee numbers: %w", err)
	}

	archived, err := store.Archive().ListNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived committee numbers: %w", err)
	}

	seen := make(map[string]struct{}, len(ledger)+len(archived))
	numbers := make([]string, 0, len(ledger)+len(archived))
	for _, n := range append(ledger, archived...) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(numbers)))
	return numbers, nil
}
