package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/utils"
	"gorm.io/gorm"
)

// ErrArchiveWrite is returned when snapshot rows cannot be inserted.
var ErrArchiveWrite = errors.New("archive repository: insert snapshot failed")

// GormArchiveRepository is a GORM implementation of ArchiveRepository.
// Snapshots are immutable; the repository exposes no update or delete.
type GormArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new ArchiveRepository
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &GormArchiveRepository{db: db}
}

func (r *GormArchiveRepository) CreateBatch(ctx context.Context, members []models.PreviousCommitteeMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&members).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	return nil
}

func (r *GormArchiveRepository) CountByNumber(ctx context.Context, committeeNumber string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PreviousCommitteeMember{}).
		Where("committee_number = ?", committeeNumber).
		Count(&count).Error
	return count, err
}

func (r *GormArchiveRepository) ListNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.PreviousCommitteeMember{}).
		Distinct("committee_number").
		Order("committee_number DESC").
		Pluck("committee_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *GormArchiveRepository) ListCommittees(ctx context.Context, params utils.PaginationParams) ([]CommitteeSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PreviousCommitteeMember{}).
		Distinct("committee_number").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []CommitteeSummary
	query := r.db.WithContext(ctx).
		Model(&models.PreviousCommitteeMember{}).
		Select("committee_number, COUNT(*) AS member_count").
		Group("committee_number").
		Order("committee_number DESC")
	if params.Limit > 0 {
		query = query.Scopes(database.Paginate(params))
	}
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *GormArchiveRepository) ListByNumber(ctx context.Context, committeeNumber string) ([]models.PreviousCommitteeMember, error) {
	var members []models.PreviousCommitteeMember
	err := r.db.WithContext(ctx).
		Where("committee_number = ?", committeeNumber).
		Order("member_order ASC").
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
