package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create inserts the row; a current row carries its user id in CurrentUserID.
func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *models.CommitteeAssignment) error {
	if assignment.IsCurrent() {
		userID := assignment.UserID
		assignment.CurrentUserID = &userID
	}
	return r.db.WithContext(ctx).Omit("User", "Designation").Create(assignment).Error
}

func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uint64) (*models.CommitteeAssignment, error) {
	var assignment models.CommitteeAssignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) FindCurrentByUser(ctx context.Context, userID uint64) (*models.CommitteeAssignment, error) {
	var assignment models.CommitteeAssignment
	err := r.db.WithContext(ctx).
		Scopes(database.CurrentAssignments).
		Where("user_id = ?", userID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) ListCurrent(ctx context.Context) ([]models.CommitteeAssignment, error) {
	var assignments []models.CommitteeAssignment
	err := r.db.WithContext(ctx).
		Scopes(database.CurrentAssignments).
		Preload("User").
		Preload("Designation").
		Order("member_order ASC").
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *GormAssignmentRepository) LockCurrent(ctx context.Context) error {
	if !supportsRowLocks(r.db) {
		return nil
	}
	var ids []uint64
	return forUpdate(r.db.WithContext(ctx)).
		Model(&models.CommitteeAssignment{}).
		Scopes(database.CurrentAssignments).
		Pluck("id", &ids).Error
}

func (r *GormAssignmentRepository) LatestCurrent(ctx context.Context) (*models.CommitteeAssignment, error) {
	var assignment models.CommitteeAssignment
	err := r.db.WithContext(ctx).
		Scopes(database.CurrentAssignments).
		Order("id DESC").
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) MaxCurrentOrder(ctx context.Context) (int, error) {
	var maxOrder sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Scopes(database.CurrentAssignments).
		Select("MAX(member_order)").
		Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, err
	}
	return int(maxOrder.Int64), nil
}

func (r *GormAssignmentRepository) CurrentOrders(ctx context.Context) (map[uint64]int, error) {
	var rows []struct {
		ID          uint64
		MemberOrder int
	}
	err := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Scopes(database.CurrentAssignments).
		Select("id, member_order").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make(map[uint64]int, len(rows))
	for _, row := range rows {
		orders[row.ID] = row.MemberOrder
	}
	return orders, nil
}

func (r *GormAssignmentRepository) CountCurrent(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Scopes(database.CurrentAssignments).
		Count(&count).Error
	return count, err
}

func (r *GormAssignmentRepository) UpdateOrder(ctx context.Context, id uint64, memberOrder int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Where("id = ?", id).
		Update("member_order", memberOrder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormAssignmentRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.CommitteeAssignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CloseCurrent releases the single-current-row guard along with the status flip.
func (r *GormAssignmentRepository) CloseCurrent(ctx context.Context, tenureEnd time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Scopes(database.CurrentAssignments).
		Updates(map[string]interface{}{
			"status":          models.AssignmentStatusPrevious,
			"tenure_end":      tenureEnd,
			"current_user_id": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *GormAssignmentRepository) DistinctNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.CommitteeAssignment{}).
		Distinct("committee_number").
		Order("committee_number DESC").
		Pluck("committee_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}
