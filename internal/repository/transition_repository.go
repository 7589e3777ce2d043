package repository

import (
	"context"

	"github.com/yukikurage/society-committee-api/internal/models"
	"gorm.io/gorm"
)

// GormTransitionRepository is a GORM implementation of TransitionRepository
type GormTransitionRepository struct {
	db *gorm.DB
}

// NewTransitionRepository creates a new TransitionRepository
func NewTransitionRepository(db *gorm.DB) TransitionRepository {
	return &GormTransitionRepository{db: db}
}

func (r *GormTransitionRepository) Create(ctx context.Context, transition *models.TenureTransition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

func (r *GormTransitionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.TenureTransition, error) {
	var transition models.TenureTransition
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&transition).Error; err != nil {
		return nil, err
	}
	return &transition, nil
}

// Latest orders by created_at with the primary key as tiebreaker; ids are
// random so the timestamp carries the ordering.
func (r *GormTransitionRepository) Latest(ctx context.Context) (*models.TenureTransition, error) {
	var transition models.TenureTransition
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		First(&transition).Error
	if err != nil {
		return nil, err
	}
	return &transition, nil
}

func (r *GormTransitionRepository) List(ctx context.Context, limit int) ([]models.TenureTransition, error) {
	var transitions []models.TenureTransition
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transitions).Error; err != nil {
		return nil, err
	}
	return transitions, nil
}
