package dto

import (
	"time"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/services"
)

// CommitteeMemberDTO represents one member of the current committee
type CommitteeMemberDTO struct {
	ID              string                  `json:"id"`
	AssignmentID    *uint64                 `json:"assignment_id,omitempty"`
	UserID          uint64                  `json:"user_id"`
	UserName        string                  `json:"user_name"`
	UserEmail       string                  `json:"user_email"`
	UserImage       string                  `json:"user_image"`
	DesignationName string                  `json:"designation_name"`
	DesignationID   *uint64                 `json:"designation_id"`
	CommitteeNumber string                  `json:"committee_number"`
	TenureStart     time.Time               `json:"tenure_start"`
	MemberOrder     int                     `json:"member_order"`
	Status          models.AssignmentStatus `json:"status"`
	IsAutoAssigned  bool                    `json:"is_auto_assigned"`
}

// CurrentCommitteeDTO represents the current committee response
type CurrentCommitteeDTO struct {
	Members         []CommitteeMemberDTO `json:"members"`
	CommitteeNumber string               `json:"committee_number"`
	Total           int                  `json:"total"`
}

// AssignmentDTO represents a ledger row in API responses
type AssignmentDTO struct {
	ID              uint64                  `json:"id"`
	UserID          uint64                  `json:"user_id"`
	DesignationID   *uint64                 `json:"designation_id"`
	CommitteeNumber string                  `json:"committee_number"`
	Status          models.AssignmentStatus `json:"status"`
	TenureStart     time.Time               `json:"tenure_start"`
	TenureEnd       *time.Time              `json:"tenure_end"`
	MemberOrder     int                     `json:"member_order"`
}

// AddMemberResponse represents the result of adding a member
type AddMemberResponse struct {
	Assignment   AssignmentDTO `json:"assignment"`
	NumberSource string        `json:"committee_number_source"`
}

// PreviousCommitteeMemberDTO represents an archived member snapshot
type PreviousCommitteeMemberDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Designation string     `json:"designation"`
	Photo       string     `json:"photo"`
	MemberOrder int        `json:"member_order"`
	TenureStart *time.Time `json:"tenure_start"`
	TenureEnd   *time.Time `json:"tenure_end"`
}

// PreviousCommitteeDTO represents one archived committee
type PreviousCommitteeDTO struct {
	CommitteeNumber string                       `json:"committee_number"`
	Members         []PreviousCommitteeMemberDTO `json:"members"`
	MemberCount     int                          `json:"member_count"`
}

// PreviousCommitteeListResponse represents a paginated list of archived committees
type PreviousCommitteeListResponse struct {
	Committees []repository.CommitteeSummary `json:"committees"`
	Page       int                           `json:"page"`
	PageSize   int                           `json:"page_size"`
	TotalCount int64                         `json:"total_count"`
	TotalPages int                           `json:"total_pages"`
}

// EndTenureResponse represents the result of ending a tenure
type EndTenureResponse struct {
	TransitionID            string `json:"transition_id"`
	ArchivedCount           int    `json:"archived_count"`
	ArchivedCommitteeNumber string `json:"archived_committee_number"`
	NewCommitteeNumber      string `json:"new_committee_number"`
	Replayed                bool   `json:"replayed"`
}

// CommitteeStatsDTO represents committee statistics
type CommitteeStatsDTO struct {
	CurrentMembersCount    int64  `json:"current_members_count"`
	AutoMembersCount       int64  `json:"auto_members_count"`
	TotalCommitteesHistory int    `json:"total_committees_history"`
	CurrentCommitteeNumber string `json:"current_committee_number"`
	HasCurrentCommittee    bool   `json:"has_current_committee"`
}

// DesignationDTO represents a designation in API responses
type DesignationDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	SortOrder int    `json:"sort_order"`
}

// TransitionDTO represents a tenure transition log entry
type TransitionDTO struct {
	ID                      string    `json:"id"`
	ArchivedCommitteeNumber string    `json:"archived_committee_number"`
	NewCommitteeNumber      string    `json:"new_committee_number"`
	ArchivedCount           int       `json:"archived_count"`
	DeactivatedCount        int64     `json:"deactivated_count"`
	ClosedAssignments       int64     `json:"closed_assignments"`
	CreatedAt               time.Time `json:"created_at"`
}

// Conversion functions

// ToCurrentCommitteeDTO converts the merged roster to its response
func ToCurrentCommitteeDTO(committee *services.CurrentCommittee) CurrentCommitteeDTO {
	members := make([]CommitteeMemberDTO, len(committee.Members))
	for i, m := range committee.Members {
		members[i] = CommitteeMemberDTO{
			ID:              m.ID,
			AssignmentID:    m.AssignmentID,
			UserID:          m.UserID,
			UserName:        m.UserName,
			UserEmail:       m.UserEmail,
			UserImage:       m.UserImage,
			DesignationName: m.DesignationName,
			DesignationID:   m.DesignationID,
			CommitteeNumber: m.CommitteeNumber,
			TenureStart:     m.TenureStart,
			MemberOrder:     m.MemberOrder,
			Status:          m.Status,
			IsAutoAssigned:  m.IsAutoAssigned,
		}
	}

	return CurrentCommitteeDTO{
		Members:         members,
		CommitteeNumber: committee.CommitteeNumber,
		Total:           committee.Total,
	}
}

// ToAssignmentDTO converts a CommitteeAssignment model to AssignmentDTO
func ToAssignmentDTO(a models.CommitteeAssignment) AssignmentDTO {
	return AssignmentDTO{
		ID:              a.ID,
		UserID:          a.UserID,
		DesignationID:   a.DesignationID,
		CommitteeNumber: a.CommitteeNumber,
		Status:          a.Status,
		TenureStart:     a.TenureStart,
		TenureEnd:       a.TenureEnd,
		MemberOrder:     a.MemberOrder,
	}
}

// ToPreviousCommitteeDTO converts archived snapshots of one committee
func ToPreviousCommitteeDTO(committeeNumber string, members []models.PreviousCommitteeMember) PreviousCommitteeDTO {
	items := make([]PreviousCommitteeMemberDTO, len(members))
	for i, m := range members {
		items[i] = PreviousCommitteeMemberDTO{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			Designation: m.Designation,
			Photo:       m.Photo,
			MemberOrder: m.MemberOrder,
			TenureStart: m.TenureStart,
			TenureEnd:   m.TenureEnd,
		}
	}

	return PreviousCommitteeDTO{
		CommitteeNumber: committeeNumber,
		Members:         items,
		MemberCount:     len(items),
	}
}

// ToPreviousCommitteeListResponse converts committee summaries to a paginated response
func ToPreviousCommitteeListResponse(summaries []repository.CommitteeSummary, page, pageSize int, totalCount int64) PreviousCommitteeListResponse {
	if summaries == nil {
		summaries = []repository.CommitteeSummary{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return PreviousCommitteeListResponse{
		Committees: summaries,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToEndTenureResponse converts an End-Tenure result
func ToEndTenureResponse(r *services.EndTenureResult) EndTenureResponse {
	return EndTenureResponse{
		TransitionID:            r.TransitionID,
		ArchivedCount:           r.ArchivedCount,
		ArchivedCommitteeNumber: r.ArchivedCommitteeNumber,
		NewCommitteeNumber:      r.NewCommitteeNumber,
		Replayed:                r.Replayed,
	}
}

// ToCommitteeStatsDTO converts committee statistics
func ToCommitteeStatsDTO(s *services.CommitteeStats) CommitteeStatsDTO {
	return CommitteeStatsDTO{
		CurrentMembersCount:    s.CurrentMembersCount,
		AutoMembersCount:       s.AutoMembersCount,
		TotalCommitteesHistory: s.TotalCommitteesHistory,
		CurrentCommitteeNumber: s.CurrentCommitteeNumber,
		HasCurrentCommittee:    s.HasCurrentCommittee,
	}
}

// ToDesignationDTOs converts designations
func ToDesignationDTOs(designations []models.Designation) []DesignationDTO {
	items := make([]DesignationDTO, len(designations))
	for i, d := range designations {
		items[i] = DesignationDTO{
			ID:        d.ID,
			Name:      d.Name,
			Level:     d.Level,
			SortOrder: d.SortOrder,
		}
	}
	return items
}

// ToTransitionDTOs converts transition log entries
func ToTransitionDTOs(transitions []models.TenureTransition) []TransitionDTO {
	items := make([]TransitionDTO, len(transitions))
	for i, t := range transitions {
		items[i] = TransitionDTO{
			ID:                      t.ID,
			ArchivedCommitteeNumber: t.ArchivedCommitteeNumber,
			NewCommitteeNumber:      t.NewCommitteeNumber,
			ArchivedCount:           t.ArchivedCount,
			DeactivatedCount:        t.DeactivatedCount,
			ClosedAssignments:       t.ClosedAssignments,
			CreatedAt:               t.CreatedAt,
		}
	}
	return items
}
