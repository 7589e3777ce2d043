package repository

import (
	"context"

	"github.com/yukikurage/society-committee-api/internal/models"
	"gorm.io/gorm"
)

// GormDesignationRepository is a GORM implementation of DesignationRepository
type GormDesignationRepository struct {
	db *gorm.DB
}

// NewDesignationRepository creates a new DesignationRepository
func NewDesignationRepository(db *gorm.DB) DesignationRepository {
	return &GormDesignationRepository{db: db}
}

func (r *GormDesignationRepository) Create(ctx context.Context, designation *models.Designation) error {
	return r.db.WithContext(ctx).Create(designation).Error
}

func (r *GormDesignationRepository) FindByID(ctx context.Context, id uint64) (*models.Designation, error) {
	var designation models.Designation
	if err := r.db.WithContext(ctx).First(&designation, id).Error; err != nil {
		return nil, err
	}
	return &designation, nil
}

func (r *GormDesignationRepository) FindByName(ctx context.Context, name string) (*models.Designation, error) {
	var designation models.Designation
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&designation).Error; err != nil {
		return nil, err
	}
	return &designation, nil
}

func (r *GormDesignationRepository) ListActive(ctx context.Context) ([]models.Designation, error) {
	var designations []models.Designation
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&designations).Error
	if err != nil {
		return nil, err
	}
	return designations, nil
}
