package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAdvisoryLock is returned when the transition lock cannot be taken.
var ErrAdvisoryLock = errors.New("store: advisory lock failed")

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *GormStore) Designations() DesignationRepository {
	return NewDesignationRepository(s.db)
}

func (s *GormStore) Assignments() AssignmentRepository {
	return NewAssignmentRepository(s.db)
}

func (s *GormStore) Archive() ArchiveRepository {
	return NewArchiveRepository(s.db)
}

func (s *GormStore) Transitions() TransitionRepository {
	return NewTransitionRepository(s.db)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Lock is a no-op outside postgres; mysql relies on row locks and sqlite
// serializes writers.
func (s *GormStore) Lock(ctx context.Context, key string) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrAdvisoryLock, err)
	}
	return nil
}

// supportsRowLocks reports whether SELECT ... FOR UPDATE is available.
func supportsRowLocks(db *gorm.DB) bool {
	switch db.Dialector.Name() {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}

// forUpdate adds a FOR UPDATE clause on dialects that support it.
func forUpdate(db *gorm.DB) *gorm.DB {
	if !supportsRowLocks(db) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
