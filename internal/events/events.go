// Package events publishes committee lifecycle notifications after commit.
package events

import (
	"context"
	"time"
)

// Event types
const (
	TypeMemberAdded   = "committee.member_added"
	TypeMemberRemoved = "committee.member_removed"
	TypeTenureEnded   = "committee.tenure_ended"
)

// Event is a broker-agnostic committee notification.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// MemberAddedPayload accompanies TypeMemberAdded.
type MemberAddedPayload struct {
	AssignmentID    uint64 `json:"assignment_id"`
	UserID          uint64 `json:"user_id"`
	CommitteeNumber string `json:"committee_number"`
	Automatic       bool   `json:"automatic"`
}

// MemberRemovedPayload accompanies TypeMemberRemoved.
type MemberRemovedPayload struct {
	AssignmentID uint64 `json:"assignment_id"`
	UserID       uint64 `json:"user_id"`
}

// TenureEndedPayload accompanies TypeTenureEnded.
type TenureEndedPayload struct {
	TransitionID            string `json:"transition_id"`
	ArchivedCount           int    `json:"archived_count"`
	ArchivedCommitteeNumber string `json:"archived_committee_number"`
	NewCommitteeNumber      string `json:"new_committee_number"`
}

// Publisher delivers events. Publishing happens after the originating
// transaction commits; failures never undo committed state.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New stamps an event with the current time.
func New(eventType string, payload interface{}) Event {
	return Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
