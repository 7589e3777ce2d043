package models

import "time"

// TenureTransition records one completed End-Tenure run.
type TenureTransition struct {
	ID                      string    `gorm:"type:varchar(36);primarykey" json:"id"`
	IdempotencyKey          *string   `gorm:"type:varchar(100);uniqueIndex" json:"idempotency_key,omitempty"`
	ArchivedCommitteeNumber string    `gorm:"type:varchar(50);not null" json:"archived_committee_number"`
	NewCommitteeNumber      string    `gorm:"type:varchar(50);not null" json:"new_committee_number"`
	ArchivedCount           int       `gorm:"not null" json:"archived_count"`
	DeactivatedCount        int64     `gorm:"not null" json:"deactivated_count"`
	ClosedAssignments       int64     `gorm:"not null" json:"closed_assignments"`
	CreatedAt               time.Time `gorm:"index" json:"created_at"`
}
