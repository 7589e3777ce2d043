package models

import (
	"strings"
	"time"
)

type UserType string

const (
	UserTypeMember    UserType = "member"
	UserTypeVolunteer UserType = "volunteer"
	UserTypeExecutive UserType = "executive"
)

type CommitteeStatus string

const (
	CommitteeStatusActive   CommitteeStatus = "active"
	CommitteeStatusInactive CommitteeStatus = "inactive"
)

type User struct {
	ID                    uint64          `gorm:"primarykey" json:"id"`
	Name                  string          `gorm:"type:varchar(255);not null" json:"name"`
	Email                 string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Image                 string          `gorm:"type:varchar(255)" json:"image"`
	UserType              UserType        `gorm:"column:usertype;type:varchar(20);not null;default:'member'" json:"usertype"`
	DesignationID         *uint64         `gorm:"index" json:"designation_id"`
	CommitteeStatus       CommitteeStatus `gorm:"type:varchar(20);not null;default:'inactive'" json:"committee_status"`
	Approved              bool            `gorm:"column:is_approved;not null;default:false" json:"approved"`
	DesignationAssignedAt *time.Time      `json:"designation_assigned_at"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`

	// Relations
	Designation *Designation `gorm:"foreignKey:DesignationID" json:"designation,omitempty"`
}

// IsExecutive reports whether the user type is executive, ignoring case.
func (u User) IsExecutive() bool {
	return strings.EqualFold(strings.TrimSpace(string(u.UserType)), string(UserTypeExecutive))
}

// TenureStart returns when the user's current designation was assigned.
func (u User) TenureStart() time.Time {
	if u.DesignationAssignedAt != nil {
		return *u.DesignationAssignedAt
	}
	return u.UpdatedAt
}
