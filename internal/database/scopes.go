package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// CommitteeRoster restricts a users query to approved executives holding a
// designation with an active committee status.
func CommitteeRoster(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(TRIM(users.usertype)) = ?", string(models.UserTypeExecutive)).
		Where("users.is_approved = ?", true).
		Where("users.designation_id IS NOT NULL").
		Where("users.committee_status = ?", models.CommitteeStatusActive)
}

// CurrentAssignments restricts a ledger query to rows of the running cycle.
func CurrentAssignments(db *gorm.DB) *gorm.DB {
	return db.Where("committee_assignments.status = ?", models.AssignmentStatusCurrent)
}
