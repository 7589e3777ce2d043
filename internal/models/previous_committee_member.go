package models

import "time"

// PreviousCommitteeMember is a frozen snapshot of one member of an archived committee.
// Name and designation are copied at archive time and never joined back to live rows.
type PreviousCommitteeMember struct {
	ID                    uint64     `gorm:"primarykey" json:"id"`
	UserID                *uint64    `gorm:"index" json:"user_id"`
	Name                  string     `gorm:"type:varchar(255);not null" json:"name"`
	Email                 string     `gorm:"type:varchar(255)" json:"email"`
	Designation           string     `gorm:"type:varchar(255);not null" json:"designation"`
	DesignationIDSnapshot *uint64    `json:"designation_id_snapshot"`
	Photo                 string     `gorm:"type:varchar(255)" json:"photo"`
	CommitteeNumber       string     `gorm:"type:varchar(50);not null" json:"committee_number"`
	MemberOrder           int        `gorm:"not null;default:1" json:"member_order"`
	TenureStart           *time.Time `json:"tenure_start"`
	TenureEnd             *time.Time `json:"tenure_end"`
	TransitionID          string     `gorm:"type:varchar(36);index" json:"transition_id"`
	CreatedAt             time.Time  `json:"created_at"`
}
