package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusCurrent  AssignmentStatus = "current"
	AssignmentStatusPrevious AssignmentStatus = "previous"
)

// CommitteeAssignment is a manually curated membership row in the committee ledger.
// CurrentUserID mirrors UserID while the row is current and is NULL afterwards; its
// unique index keeps at most one current row per user.
type CommitteeAssignment struct {
	ID              uint64           `gorm:"primarykey" json:"id"`
	UserID          uint64           `gorm:"not null;index" json:"user_id"`
	DesignationID   *uint64          `json:"designation_id"`
	CommitteeNumber string           `gorm:"type:varchar(50);not null" json:"committee_number"`
	Status          AssignmentStatus `gorm:"type:varchar(20);not null;default:'current'" json:"status"`
	TenureStart     time.Time        `gorm:"not null" json:"tenure_start"`
	TenureEnd       *time.Time       `json:"tenure_end"`
	MemberOrder     int              `gorm:"not null;default:1" json:"member_order"`
	CurrentUserID   *uint64          `gorm:"uniqueIndex" json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// Relations
	User        User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Designation *Designation `gorm:"foreignKey:DesignationID" json:"designation,omitempty"`
}

// IsCurrent reports whether the assignment belongs to the running cycle.
func (a CommitteeAssignment) IsCurrent() bool {
	return a.Status == AssignmentStatusCurrent
}
