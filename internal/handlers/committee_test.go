package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/society-committee-api/internal/cache"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/dto"
	"github.com/yukikurage/society-committee-api/internal/events"
	"github.com/yukikurage/society-committee-api/internal/metrics"
	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CommitteeHandlerTestSuite drives the committee API through a real router.
type CommitteeHandlerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	router    *gin.Engine
	publisher *events.MemoryPublisher
	cookies   []*http.Cookie
}

func (suite *CommitteeHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(suite.T(), db.AutoMigrate(models.All()...))
	suite.db = db

	store := repository.NewStore(db)
	numbering := services.NewNumbering(cache.NewMemoryCache(), time.Hour, zap.NewNop())
	suite.publisher = events.NewMemoryPublisher()
	m := metrics.New(prometheus.NewRegistry())

	committeeHandler := NewCommitteeHandler(
		services.NewCommitteeService(store, numbering, suite.publisher, m, zap.NewNop()),
		services.NewTenureService(store, numbering, suite.publisher, m, zap.NewNop(), ""),
		services.NewDesignationService(store),
	)
	archiveHandler := NewArchiveHandler(services.NewArchiveService(store))

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	RegisterRoutes(r, committeeHandler, archiveHandler, NewHealthHandler("committee-api", db, nil), func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(1))
		c.Next()
	})
	suite.router = r
	suite.cookies = nil
}

func (suite *CommitteeHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func TestCommitteeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CommitteeHandlerTestSuite))
}

// do sends a request and carries session cookies across calls.
func (suite *CommitteeHandlerTestSuite) do(method, url string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, ck := range suite.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		suite.cookies = cookies
	}
	return w
}

func (suite *CommitteeHandlerTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), v))
}

func (suite *CommitteeHandlerTestSuite) createDesignation(name string, sortOrder int) *models.Designation {
	d := &models.Designation{Name: name, SortOrder: sortOrder, Active: true}
	require.NoError(suite.T(), suite.db.Create(d).Error)
	return d
}

func (suite *CommitteeHandlerTestSuite) createExecutive(name string, designation *models.Designation) *models.User {
	assignedAt := time.Now().Add(-24 * time.Hour)
	u := &models.User{
		Name:                  name,
		Email:                 name + "@society.test",
		UserType:              models.UserTypeExecutive,
		DesignationID:         &designation.ID,
		DesignationAssignedAt: &assignedAt,
		CommitteeStatus:       models.CommitteeStatusActive,
		Approved:              true,
	}
	require.NoError(suite.T(), suite.db.Create(u).Error)
	return u
}

func (suite *CommitteeHandlerTestSuite) createMember(name string) *models.User {
	u := &models.User{Name: name, Email: name + "@society.test", UserType: models.UserTypeMember, Approved: true}
	require.NoError(suite.T(), suite.db.Create(u).Error)
	return u
}

func (suite *CommitteeHandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	suite.decode(w, &body)
	code, _ := body["code"].(string)
	return code
}

func (suite *CommitteeHandlerTestSuite) TestGetCurrent_MergesExecutivesAndLedger() {
	president := suite.createDesignation("President", 1)
	secretary := suite.createDesignation("Secretary", 2)
	suite.createExecutive("alice", president)
	bob := suite.createMember("bob")

	w := suite.do(http.MethodPost, "/api/committee/members", gin.H{
		"user_id":        bob.ID,
		"designation_id": secretary.ID,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/committee/current", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.CurrentCommitteeDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), 2, response.Total)
	require.Len(suite.T(), response.Members, 2)

	autoCount := 0
	for _, m := range response.Members {
		if m.IsAutoAssigned {
			autoCount++
			assert.Equal(suite.T(), "President", m.DesignationName)
		}
	}
	assert.Equal(suite.T(), 1, autoCount)
}

func (suite *CommitteeHandlerTestSuite) TestAddMember_Validation() {
	d := suite.createDesignation("Treasurer", 3)
	u := suite.createMember("carol")

	w := suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": 9999, "designation_id": d.ID})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID, "member_order": 0})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", suite.errorCode(w))
}

func (suite *CommitteeHandlerTestSuite) TestStageNextNumber_UsedByNextAddAndCleared() {
	d := suite.createDesignation("Member", 5)
	first := suite.createMember("dave")
	second := suite.createMember("erin")

	w := suite.do(http.MethodPost, "/api/committee/next-number", gin.H{"committee_number": "  2031-2032  "})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"committee_number":"2031-2032"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": first.ID, "designation_id": d.ID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var added dto.AddMemberResponse
	suite.decode(w, &added)
	assert.Equal(suite.T(), "2031-2032", added.Assignment.CommitteeNumber)
	assert.Equal(suite.T(), string(services.NumberSourceStaged), added.NumberSource)

	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": second.ID, "designation_id": d.ID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	suite.decode(w, &added)
	assert.Equal(suite.T(), "2031-2032", added.Assignment.CommitteeNumber)
	assert.Equal(suite.T(), string(services.NumberSourceLedger), added.NumberSource)
}

func (suite *CommitteeHandlerTestSuite) TestStageNextNumber_RejectsBlank() {
	w := suite.do(http.MethodPost, "/api/committee/next-number", gin.H{"committee_number": "   "})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "UNPROCESSABLE", suite.errorCode(w))
}

func (suite *CommitteeHandlerTestSuite) TestRemoveMember() {
	d := suite.createDesignation("Member", 5)
	u := suite.createMember("frank")

	w := suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	var added dto.AddMemberResponse
	suite.decode(w, &added)

	w = suite.do(http.MethodDelete, "/api/committee/members/abc", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodDelete, "/api/committee/members/"+itoa(added.Assignment.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodDelete, "/api/committee/members/"+itoa(added.Assignment.ID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	assert.Equal(suite.T(), []string{events.TypeMemberAdded, events.TypeMemberRemoved}, suite.publisher.Types())
}

func (suite *CommitteeHandlerTestSuite) TestReorderMembers() {
	d := suite.createDesignation("Member", 5)
	var ids []uint64
	for _, name := range []string{"gina", "hank"} {
		u := suite.createMember(name)
		w := suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID})
		require.Equal(suite.T(), http.StatusCreated, w.Code)
		var added dto.AddMemberResponse
		suite.decode(w, &added)
		ids = append(ids, added.Assignment.ID)
	}

	w := suite.do(http.MethodPut, "/api/committee/members/order", gin.H{"members": []gin.H{
		{"id": ids[0], "member_order": 2},
	}})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPut, "/api/committee/members/order", gin.H{"members": []gin.H{
		{"id": ids[0], "member_order": 2},
		{"id": ids[1], "member_order": 1},
	}})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var orders []models.CommitteeAssignment
	require.NoError(suite.T(), suite.db.Order("member_order").Find(&orders).Error)
	require.Len(suite.T(), orders, 2)
	assert.Equal(suite.T(), ids[1], orders[0].ID)
	assert.Equal(suite.T(), ids[0], orders[1].ID)
}

func (suite *CommitteeHandlerTestSuite) TestEndTenure_ErrorMapping() {
	w := suite.do(http.MethodPost, "/api/committee/end-tenure", gin.H{
		"confirmation":         "confirm",
		"new_committee_number": "2026-2027",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_CONFIRMATION", suite.errorCode(w))

	w = suite.do(http.MethodPost, "/api/committee/end-tenure", gin.H{
		"confirmation":         "CONFIRM",
		"new_committee_number": "",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/end-tenure", gin.H{
		"confirmation":         "CONFIRM",
		"new_committee_number": "2026-2027",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "EMPTY_ROSTER", suite.errorCode(w))
}

func (suite *CommitteeHandlerTestSuite) TestEndTenure_ArchivedLabelConflict() {
	president := suite.createDesignation("President", 1)
	suite.createExecutive("olga", president)
	require.NoError(suite.T(), suite.db.Create(&models.PreviousCommitteeMember{
		Name: "pete", Designation: "President", CommitteeNumber: "2001-2002", MemberOrder: 1,
	}).Error)

	w := suite.do(http.MethodPost, "/api/committee/end-tenure", gin.H{
		"confirmation":         "CONFIRM",
		"new_committee_number": "2001-2002",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(suite.T(), "CONFLICT", suite.errorCode(w))

	var archived int64
	require.NoError(suite.T(), suite.db.Model(&models.PreviousCommitteeMember{}).Count(&archived).Error)
	assert.Equal(suite.T(), int64(1), archived)
}

func (suite *CommitteeHandlerTestSuite) TestEndTenure_ArchivesAndReplays() {
	president := suite.createDesignation("President", 1)
	suite.createExecutive("ivy", president)
	suite.createExecutive("jack", president)

	body := gin.H{"confirmation": "CONFIRM", "new_committee_number": "2099-2100"}
	w := suite.do(http.MethodPost, "/api/committee/end-tenure", body, constants.IdempotencyKeyHeader, "run-1")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var first dto.EndTenureResponse
	suite.decode(w, &first)
	assert.Equal(suite.T(), 2, first.ArchivedCount)
	assert.Equal(suite.T(), "2099-2100", first.NewCommitteeNumber)
	assert.False(suite.T(), first.Replayed)

	w = suite.do(http.MethodPost, "/api/committee/end-tenure", body, constants.IdempotencyKeyHeader, "run-1")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "true", w.Header().Get("Idempotent-Replayed"))

	var second dto.EndTenureResponse
	suite.decode(w, &second)
	assert.Equal(suite.T(), first.TransitionID, second.TransitionID)
	assert.True(suite.T(), second.Replayed)

	var archived int64
	require.NoError(suite.T(), suite.db.Model(&models.PreviousCommitteeMember{}).Count(&archived).Error)
	assert.Equal(suite.T(), int64(2), archived)

	w = suite.do(http.MethodGet, "/api/committee/current", nil)
	var current dto.CurrentCommitteeDTO
	suite.decode(w, &current)
	assert.Equal(suite.T(), 0, current.Total)
	assert.Equal(suite.T(), "2099-2100", current.CommitteeNumber)

	w = suite.do(http.MethodGet, "/api/committee/previous/"+first.ArchivedCommitteeNumber, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var previous dto.PreviousCommitteeDTO
	suite.decode(w, &previous)
	assert.Equal(suite.T(), 2, previous.MemberCount)

	w = suite.do(http.MethodGet, "/api/committee/previous?page=1&limit=10", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var list dto.PreviousCommitteeListResponse
	suite.decode(w, &list)
	assert.Equal(suite.T(), int64(1), list.TotalCount)
	require.Len(suite.T(), list.Committees, 1)
	assert.Equal(suite.T(), int64(2), list.Committees[0].MemberCount)

	w = suite.do(http.MethodGet, "/api/committee/transitions", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var transitions struct {
		Transitions []dto.TransitionDTO `json:"transitions"`
	}
	suite.decode(w, &transitions)
	require.Len(suite.T(), transitions.Transitions, 1)
	assert.Equal(suite.T(), first.TransitionID, transitions.Transitions[0].ID)
}

func (suite *CommitteeHandlerTestSuite) TestGetPrevious_NotFound() {
	w := suite.do(http.MethodGet, "/api/committee/previous/1999-2000", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *CommitteeHandlerTestSuite) TestStatsAndNumbers() {
	d := suite.createDesignation("President", 1)
	suite.createExecutive("kate", d)
	u := suite.createMember("liam")

	w := suite.do(http.MethodPost, "/api/committee/next-number", gin.H{"committee_number": "2030-2031"})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w = suite.do(http.MethodPost, "/api/committee/members", gin.H{"user_id": u.ID, "designation_id": d.ID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.do(http.MethodGet, "/api/committee/stats", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var stats dto.CommitteeStatsDTO
	suite.decode(w, &stats)
	assert.Equal(suite.T(), int64(1), stats.CurrentMembersCount)
	assert.Equal(suite.T(), int64(1), stats.AutoMembersCount)
	assert.Equal(suite.T(), 1, stats.TotalCommitteesHistory)
	assert.Equal(suite.T(), "2030-2031", stats.CurrentCommitteeNumber)
	assert.True(suite.T(), stats.HasCurrentCommittee)

	w = suite.do(http.MethodGet, "/api/committee/numbers", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"committee_numbers":[]}`, w.Body.String())

	require.NoError(suite.T(), suite.db.Create(&models.PreviousCommitteeMember{
		Name: "nora", Designation: "President", CommitteeNumber: "2029-2030", MemberOrder: 1,
	}).Error)

	w = suite.do(http.MethodGet, "/api/committee/numbers", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"committee_numbers":["2029-2030"]}`, w.Body.String())
}

func (suite *CommitteeHandlerTestSuite) TestApproveExecutive() {
	d := suite.createDesignation("Vice President", 2)
	u := suite.createMember("mia")

	w := suite.do(http.MethodPost, "/api/committee/executives/"+itoa(u.ID)+"/approve", gin.H{"designation_id": d.ID})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(suite.T(), suite.db.First(&reloaded, u.ID).Error)
	assert.True(suite.T(), reloaded.IsExecutive())
	assert.Equal(suite.T(), models.CommitteeStatusActive, reloaded.CommitteeStatus)

	w = suite.do(http.MethodPost, "/api/committee/executives/"+itoa(u.ID)+"/approve", gin.H{"designation_id": d.ID})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/api/committee/executives/x/approve", gin.H{"designation_id": d.ID})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *CommitteeHandlerTestSuite) TestListDesignations() {
	suite.createDesignation("Secretary", 2)
	suite.createDesignation("President", 1)
	retired := &models.Designation{Name: "Retired", SortOrder: 0, Active: false}
	require.NoError(suite.T(), suite.db.Create(retired).Error)

	w := suite.do(http.MethodGet, "/api/committee/designations", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Designations []dto.DesignationDTO `json:"designations"`
	}
	suite.decode(w, &response)
	require.Len(suite.T(), response.Designations, 2)
	assert.Equal(suite.T(), "President", response.Designations[0].Name)
	assert.Equal(suite.T(), "Secretary", response.Designations[1].Name)
}

func (suite *CommitteeHandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health/live", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"status":"ready","dependencies":{"database":"ok"}}`, w.Body.String())
}
