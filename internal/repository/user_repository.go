package repository

import (
	"context"

	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Designation").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Designation").Save(user).Error
}

func (r *GormUserRepository) ListCommitteeExecutives(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(database.CommitteeRoster).
		Preload("Designation").
		Order("users.name ASC").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) LockCommitteeExecutives(ctx context.Context) error {
	if !supportsRowLocks(r.db) {
		return nil
	}
	var ids []uint64
	return forUpdate(r.db.WithContext(ctx)).
		Model(&models.User{}).
		Scopes(database.CommitteeRoster).
		Pluck("users.id", &ids).Error
}

func (r *GormUserRepository) CountCommitteeExecutives(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(database.CommitteeRoster).
		Count(&count).Error
	return count, err
}

func (r *GormUserRepository) IsCommitteeExecutive(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(database.CommitteeRoster).
		Where("users.id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) DeactivateCommittee(ctx context.Context, userIDs []uint64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(database.CommitteeRoster).
		Where("users.id IN ?", userIDs).
		Update("committee_status", models.CommitteeStatusInactive)
	return result.RowsAffected, result.Error
}
