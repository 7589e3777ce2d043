package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/dto"
	apierrors "github.com/yukikurage/society-committee-api/internal/errors"
	"github.com/yukikurage/society-committee-api/internal/services"
)

// CommitteeHandler serves the current committee and its lifecycle operations.
type CommitteeHandler struct {
	committee    *services.CommitteeService
	tenure       *services.TenureService
	designations *services.DesignationService
}

// NewCommitteeHandler creates a new CommitteeHandler.
func NewCommitteeHandler(committee *services.CommitteeService, tenure *services.TenureService, designations *services.DesignationService) *CommitteeHandler {
	return &CommitteeHandler{
		committee:    committee,
		tenure:       tenure,
		designations: designations,
	}
}

// GetCurrent returns the merged current committee.
func (h *CommitteeHandler) GetCurrent(c *gin.Context) {
	committee, err := h.committee.GetCurrentCommittee(c.Request.Context())
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrentCommitteeDTO(committee))
}

// AddMember adds a user to the current committee ledger.
func (h *CommitteeHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		UserID        uint64 `json:"user_id" binding:"required"`
		DesignationID uint64 `json:"designation_id" binding:"required"`
		MemberOrder   *int   `json:"member_order"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	session := sessions.Default(c)
	staged, _ := session.Get(constants.SessionKeyStagedCommittee).(string)

	result, err := h.committee.AddMember(c.Request.Context(), services.AddMemberInput{
		UserID:        req.UserID,
		DesignationID: req.DesignationID,
		MemberOrder:   req.MemberOrder,
		StagedNumber:  staged,
	})
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	// A staged number is consumed by the first row that claims it.
	if result.NumberSource == services.NumberSourceStaged {
		session.Delete(constants.SessionKeyStagedCommittee)
		saveSession(c, session)
	}

	c.JSON(http.StatusCreated, dto.AddMemberResponse{
		Assignment:   dto.ToAssignmentDTO(*result.Assignment),
		NumberSource: string(result.NumberSource),
	})
}

// RemoveMember deletes a current ledger row.
func (h *CommitteeHandler) RemoveMember(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidFormat, "Invalid assignment ID")
		return
	}

	if err := h.committee.RemoveMember(c.Request.Context(), id); err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed from committee"})
}

// ReorderMembers updates display positions of current ledger rows.
func (h *CommitteeHandler) ReorderMembers(c *gin.Context) {
	type memberOrder struct {
		ID          uint64 `json:"id" binding:"required"`
		MemberOrder int    `json:"member_order"`
	}
	type ReorderRequest struct {
		Members []memberOrder `json:"members" binding:"required,dive"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updates := make([]services.MemberOrderUpdate, len(req.Members))
	for i, m := range req.Members {
		updates[i] = services.MemberOrderUpdate{ID: m.ID, MemberOrder: m.MemberOrder}
	}

	if err := h.committee.ReorderMembers(c.Request.Context(), updates); err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member order updated"})
}

// EndTenure archives the current committee and starts the next one.
func (h *CommitteeHandler) EndTenure(c *gin.Context) {
	type EndTenureRequest struct {
		Confirmation       string `json:"confirmation"`
		NewCommitteeNumber string `json:"new_committee_number"`
	}

	var req EndTenureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tenure.EndTenure(c.Request.Context(), services.EndTenureInput{
		Confirmation:       req.Confirmation,
		NewCommitteeNumber: req.NewCommitteeNumber,
		IdempotencyKey:     c.GetHeader(constants.IdempotencyKeyHeader),
	})
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyStagedCommittee, result.NewCommitteeNumber)
	saveSession(c, session)

	if result.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(http.StatusOK, dto.ToEndTenureResponse(result))
}

// StageNextNumber stores the committee number the next added member will use.
func (h *CommitteeHandler) StageNextNumber(c *gin.Context) {
	type StageRequest struct {
		CommitteeNumber string `json:"committee_number"`
	}

	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	number, err := services.ValidateCommitteeNumber(req.CommitteeNumber)
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyStagedCommittee, number)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"committee_number": number})
}

// Stats returns committee statistics.
func (h *CommitteeHandler) Stats(c *gin.Context) {
	stats, err := h.committee.Stats(c.Request.Context())
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommitteeStatsDTO(stats))
}

// ApproveExecutive approves an executive application and seats the user.
func (h *CommitteeHandler) ApproveExecutive(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidFormat, "Invalid user ID")
		return
	}

	type ApproveRequest struct {
		DesignationID uint64 `json:"designation_id" binding:"required"`
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.committee.ApproveExecutiveApplication(c.Request.Context(), userID, req.DesignationID)
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// ListDesignations returns active designations for the add-member form.
func (h *CommitteeHandler) ListDesignations(c *gin.Context) {
	designations, err := h.designations.ListActive(c.Request.Context())
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"designations": dto.ToDesignationDTOs(designations)})
}

// Transitions returns recent tenure transitions, newest first.
func (h *CommitteeHandler) Transitions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	transitions, err := h.tenure.Transitions(c.Request.Context(), limit)
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transitions": dto.ToTransitionDTOs(transitions)})
}

// saveSession records a failed save on the request instead of failing a
// write that has already committed.
func saveSession(c *gin.Context, session sessions.Session) {
	if err := session.Save(); err != nil {
		_ = c.Error(fmt.Errorf("failed to save session: %w", err))
	}
}
