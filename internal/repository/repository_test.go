package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, database.MigrateDatabase(db))

	return db
}

func createDesignation(t *testing.T, db *gorm.DB, name string, sortOrder int) *models.Designation {
	t.Helper()
	d := &models.Designation{Name: name, SortOrder: sortOrder, Active: true}
	require.NoError(t, db.Create(d).Error)
	return d
}

func createUser(t *testing.T, db *gorm.DB, name string, userType models.UserType, designationID *uint64, status models.CommitteeStatus, approved bool) *models.User {
	t.Helper()
	u := &models.User{
		Name:            name,
		Email:           name + "@society.test",
		UserType:        userType,
		DesignationID:   designationID,
		CommitteeStatus: status,
		Approved:        approved,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestUserRepository_CommitteeExecutivesPredicate(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	president := createDesignation(t, db, "President", 1)

	zed := createUser(t, db, "Zed", "EXECUTIVE", &president.ID, models.CommitteeStatusActive, true)
	amy := createUser(t, db, "Amy", models.UserTypeExecutive, &president.ID, models.CommitteeStatusActive, true)
	createUser(t, db, "Unapproved", models.UserTypeExecutive, &president.ID, models.CommitteeStatusActive, false)
	createUser(t, db, "NoDesignation", models.UserTypeExecutive, nil, models.CommitteeStatusActive, true)
	createUser(t, db, "Inactive", models.UserTypeExecutive, &president.ID, models.CommitteeStatusInactive, true)
	createUser(t, db, "Volunteer", models.UserTypeVolunteer, &president.ID, models.CommitteeStatusActive, true)

	users, err := repo.ListCommitteeExecutives(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, amy.ID, users[0].ID)
	assert.Equal(t, zed.ID, users[1].ID)
	require.NotNil(t, users[0].Designation)
	assert.Equal(t, "President", users[0].Designation.Name)

	count, err := repo.CountCommitteeExecutives(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ok, err := repo.IsCommitteeExecutive(ctx, zed.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.LockCommitteeExecutives(ctx))

	affected, err := repo.DeactivateCommittee(ctx, []uint64{zed.ID, amy.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	users, err = repo.ListCommitteeExecutives(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	affected, err = repo.DeactivateCommittee(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestAssignmentRepository_SingleCurrentRowPerUser(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)

	user := createUser(t, db, "Ben", models.UserTypeMember, nil, models.CommitteeStatusInactive, true)

	first := &models.CommitteeAssignment{
		UserID:          user.ID,
		CommitteeNumber: "24th",
		Status:          models.AssignmentStatusCurrent,
		TenureStart:     time.Now(),
		MemberOrder:     1,
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NotNil(t, first.CurrentUserID)
	assert.Equal(t, user.ID, *first.CurrentUserID)

	second := &models.CommitteeAssignment{
		UserID:          user.ID,
		CommitteeNumber: "24th",
		Status:          models.AssignmentStatusCurrent,
		TenureStart:     time.Now(),
		MemberOrder:     2,
	}
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	closed, err := repo.CloseCurrent(ctx, utils.Today(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	reloaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusPrevious, reloaded.Status)
	assert.Nil(t, reloaded.CurrentUserID)
	assert.NotNil(t, reloaded.TenureEnd)

	// the guard is released once the row is closed
	third := &models.CommitteeAssignment{
		UserID:          user.ID,
		CommitteeNumber: "25th",
		Status:          models.AssignmentStatusCurrent,
		TenureStart:     time.Now(),
		MemberOrder:     1,
	}
	require.NoError(t, repo.Create(ctx, third))
}

func TestAssignmentRepository_OrderingAndCounts(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)

	maxOrder, err := repo.MaxCurrentOrder(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxOrder)

	_, err = repo.LatestCurrent(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	a := createUser(t, db, "A", models.UserTypeMember, nil, "", true)
	b := createUser(t, db, "B", models.UserTypeMember, nil, "", true)

	rowA := &models.CommitteeAssignment{UserID: a.ID, CommitteeNumber: "24th", Status: models.AssignmentStatusCurrent, TenureStart: time.Now(), MemberOrder: 5}
	rowB := &models.CommitteeAssignment{UserID: b.ID, CommitteeNumber: "24th", Status: models.AssignmentStatusCurrent, TenureStart: time.Now(), MemberOrder: 2}
	require.NoError(t, repo.Create(ctx, rowA))
	require.NoError(t, repo.Create(ctx, rowB))

	current, err := repo.ListCurrent(ctx)
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, rowB.ID, current[0].ID)
	assert.Equal(t, "B", current[0].User.Name)

	maxOrder, err = repo.MaxCurrentOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, maxOrder)

	orders, err := repo.CurrentOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{rowA.ID: 5, rowB.ID: 2}, orders)

	latest, err := repo.LatestCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, rowB.ID, latest.ID)

	require.NoError(t, repo.UpdateOrder(ctx, rowA.ID, 1))
	current, err = repo.ListCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, rowA.ID, current[0].ID)

	assert.ErrorIs(t, repo.UpdateOrder(ctx, 999, 1), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 999), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, rowA.ID))
	count, err := repo.CountCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	numbers, err := repo.DistinctNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"24th"}, numbers)
}

func TestArchiveRepository_ReadPaths(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewArchiveRepository(db)

	require.NoError(t, repo.CreateBatch(ctx, nil))

	rows := []models.PreviousCommitteeMember{
		{Name: "Amy", Designation: "President", CommitteeNumber: "2023-2024", MemberOrder: 1},
		{Name: "Zed", Designation: "Secretary", CommitteeNumber: "2023-2024", MemberOrder: 2},
		{Name: "Lee", Designation: "President", CommitteeNumber: "2024-2025", MemberOrder: 1},
	}
	require.NoError(t, repo.CreateBatch(ctx, rows))

	numbers, err := repo.ListNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-2025", "2023-2024"}, numbers)

	summaries, total, err := repo.ListCommittees(ctx, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, summaries, 2)
	assert.Equal(t, CommitteeSummary{CommitteeNumber: "2024-2025", MemberCount: 1}, summaries[0])
	assert.Equal(t, CommitteeSummary{CommitteeNumber: "2023-2024", MemberCount: 2}, summaries[1])

	page2, total, err := repo.ListCommittees(ctx, utils.PaginationParams{Page: 2, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "2023-2024", page2[0].CommitteeNumber)

	members, err := repo.ListByNumber(ctx, "2023-2024")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Amy", members[0].Name)
	assert.Equal(t, "Zed", members[1].Name)
}

func TestTransitionRepository_LatestAndIdempotencyKey(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewTransitionRepository(db)

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	key := "run-1"
	older := &models.TenureTransition{ID: "a", NewCommitteeNumber: "24th", ArchivedCommitteeNumber: "23rd", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.TenureTransition{ID: "b", IdempotencyKey: &key, NewCommitteeNumber: "25th", ArchivedCommitteeNumber: "24th", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25th", latest.NewCommitteeNumber)

	found, err := repo.FindByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "b", found.ID)

	dup := &models.TenureTransition{ID: "c", IdempotencyKey: &key, NewCommitteeNumber: "26th"}
	assert.ErrorIs(t, repo.Create(ctx, dup), gorm.ErrDuplicatedKey)

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.Lock(ctx, "committee-transition"))
		if err := tx.Designations().Create(ctx, &models.Designation{Name: "Treasurer", Active: true}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Designations().FindByName(ctx, "Treasurer")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDesignationRepository_ListActive(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	repo := NewDesignationRepository(db)

	createDesignation(t, db, "Secretary", 2)
	createDesignation(t, db, "President", 1)
	require.NoError(t, repo.Create(ctx, &models.Designation{Name: "Retired", SortOrder: 0, Active: false}))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "President", list[0].Name)
	assert.Equal(t, "Secretary", list[1].Name)

	found, err := repo.FindByName(ctx, "Retired")
	require.NoError(t, err)
	assert.False(t, found.Active)
}
