package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
)

// CommitteeMember is one row of the current committee as displayed.
type CommitteeMember struct {
	ID              string
	AssignmentID    *uint64
	UserID          uint64
	UserName        string
	UserEmail       string
	UserImage       string
	DesignationID   *uint64
	DesignationName string
	CommitteeNumber string
	TenureStart     time.Time
	MemberOrder     int
	Status          models.AssignmentStatus
	IsAutoAssigned  bool
}

// rosterEntry is either an auto-derived executive or a ledger row.
type rosterEntry interface {
	userID() uint64
	member(committeeNumber string, position int) CommitteeMember
}

type autoEntry struct {
	user models.User
}

func (e autoEntry) userID() uint64 { return e.user.ID }

func (e autoEntry) member(committeeNumber string, ordinal int) CommitteeMember {
	m := CommitteeMember{
		ID:              constants.AutoAssignedIDPrefix + strconv.FormatUint(e.user.ID, 10),
		UserID:          e.user.ID,
		UserName:        e.user.Name,
		UserEmail:       e.user.Email,
		UserImage:       e.user.Image,
		DesignationID:   e.user.DesignationID,
		CommitteeNumber: committeeNumber,
		TenureStart:     e.user.TenureStart(),
		MemberOrder:     ordinal,
		Status:          models.AssignmentStatusCurrent,
		IsAutoAssigned:  true,
	}
	if e.user.Designation != nil {
		m.DesignationName = e.user.Designation.Name
	}
	return m
}

type manualEntry struct {
	assignment models.CommitteeAssignment
}

func (e manualEntry) userID() uint64 { return e.assignment.UserID }

// member places ledger rows after the auto-derived block: position is the
// number of auto members listed ahead of it.
func (e manualEntry) member(_ string, position int) CommitteeMember {
	a := e.assignment
	id := a.ID
	m := CommitteeMember{
		ID:              strconv.FormatUint(a.ID, 10),
		AssignmentID:    &id,
		UserID:          a.UserID,
		UserName:        a.User.Name,
		UserEmail:       a.User.Email,
		UserImage:       a.User.Image,
		DesignationID:   a.DesignationID,
		CommitteeNumber: a.CommitteeNumber,
		TenureStart:     a.TenureStart,
		MemberOrder:     position + a.MemberOrder,
		Status:          a.Status,
	}
	if a.Designation != nil {
		m.DesignationName = a.Designation.Name
	}
	return m
}

// Reconciler derives the current committee from the two membership sources.
// It holds no state; every call reads the store it is given.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// AutoRoster returns the auto-derived executives only, numbered 1..N by name.
func (r *Reconciler) AutoRoster(ctx context.Context, store repository.Store, committeeNumber string) ([]CommitteeMember, error) {
	users, err := store.Users().ListCommitteeExecutives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list committee executives: %w", err)
	}

	members := make([]CommitteeMember, len(users))
	for i, u := range users {
		members[i] = autoEntry{user: u}.member(committeeNumber, i+1)
	}
	return members, nil
}

// Roster merges the auto-derived executives with the ledger. Auto members
// come first; ledger rows follow for users not already listed.
func (r *Reconciler) Roster(ctx context.Context, store repository.Store, committeeNumber string) ([]CommitteeMember, error) {
	users, err := store.Users().ListCommitteeExecutives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list committee executives: %w", err)
	}

	assignments, err := store.Assignments().ListCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list current assignments: %w", err)
	}

	entries := make([]rosterEntry, 0, len(users)+len(assignments))
	for _, u := range users {
		entries = append(entries, autoEntry{user: u})
	}
	for _, a := range assignments {
		entries = append(entries, manualEntry{assignment: a})
	}

	return project(entries, committeeNumber), nil
}

func project(entries []rosterEntry, committeeNumber string) []CommitteeMember {
	seen := make(map[uint64]struct{}, len(entries))
	autos := make([]CommitteeMember, 0, len(entries))
	manuals := make([]rosterEntry, 0, len(entries))

	for _, e := range entries {
		if _, dup := seen[e.userID()]; dup {
			continue
		}
		seen[e.userID()] = struct{}{}

		if _, ok := e.(autoEntry); ok {
			autos = append(autos, e.member(committeeNumber, len(autos)+1))
			continue
		}
		manuals = append(manuals, e)
	}

	members := autos
	for _, e := range manuals {
		members = append(members, e.member(committeeNumber, len(autos)))
	}
	return members
}
