package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/society-committee-api/internal/cache"
	"github.com/yukikurage/society-committee-api/internal/events"
	"github.com/yukikurage/society-committee-api/internal/metrics"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type serviceTestEnv struct {
	db          *gorm.DB
	store       repository.Store
	cache       *cache.MemoryCache
	numbering   *Numbering
	publisher   *events.MemoryPublisher
	metrics     *metrics.Metrics
	committee   *CommitteeService
	tenure      *TenureService
	archive     *ArchiveService
	designation *DesignationService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database shared and serializes transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...))

	clock := func() time.Time { return testNow }
	store := repository.NewStore(db)
	numberCache := cache.NewMemoryCache().WithClock(clock)
	numbering := NewNumbering(numberCache, time.Hour, zap.NewNop()).WithClock(clock)
	publisher := events.NewMemoryPublisher()
	m := metrics.New(prometheus.NewRegistry())

	committee := NewCommitteeService(store, numbering, publisher, m, zap.NewNop())
	committee.now = clock

	return serviceTestEnv{
		db:          db,
		store:       store,
		cache:       numberCache,
		numbering:   numbering,
		publisher:   publisher,
		metrics:     m,
		committee:   committee,
		tenure:      NewTenureService(store, numbering, publisher, m, zap.NewNop(), "").WithClock(clock),
		archive:     NewArchiveService(store),
		designation: NewDesignationService(store),
	}
}

func (env serviceTestEnv) newDesignation(t *testing.T, name string, sortOrder int) *models.Designation {
	t.Helper()
	d := &models.Designation{Name: name, SortOrder: sortOrder, Active: true}
	require.NoError(t, env.db.Create(d).Error)
	return d
}

// newExecutive creates an approved executive with an active committee status.
func (env serviceTestEnv) newExecutive(t *testing.T, name string, designation *models.Designation) *models.User {
	t.Helper()
	assignedAt := testNow.Add(-30 * 24 * time.Hour)
	u := &models.User{
		Name:                  name,
		Email:                 name + "@society.test",
		UserType:              models.UserTypeExecutive,
		DesignationID:         &designation.ID,
		DesignationAssignedAt: &assignedAt,
		CommitteeStatus:       models.CommitteeStatusActive,
		Approved:              true,
	}
	require.NoError(t, env.db.Create(u).Error)
	return u
}

func (env serviceTestEnv) newMember(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    name + "@society.test",
		UserType: models.UserTypeMember,
		Approved: true,
	}
	require.NoError(t, env.db.Create(u).Error)
	return u
}

func (env serviceTestEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}

func intPtr(v int) *int {
	return &v
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
