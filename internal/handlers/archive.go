package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/society-committee-api/internal/dto"
	apierrors "github.com/yukikurage/society-committee-api/internal/errors"
	"github.com/yukikurage/society-committee-api/internal/services"
	"github.com/yukikurage/society-committee-api/internal/utils"
)

// ArchiveHandler serves archived committees.
type ArchiveHandler struct {
	archive *services.ArchiveService
}

func NewArchiveHandler(archive *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// ListPrevious returns archived committees, newest committee number first.
func (h *ArchiveHandler) ListPrevious(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	summaries, total, err := h.archive.ListPreviousCommittees(c.Request.Context(), params)
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPreviousCommitteeListResponse(summaries, params.Page, params.Limit, total))
}

// GetPrevious returns the archived members of one committee.
func (h *ArchiveHandler) GetPrevious(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		apierrors.BadRequest(c, "Committee number is required")
		return
	}

	members, err := h.archive.GetPreviousCommittee(c.Request.Context(), number)
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPreviousCommitteeDTO(number, members))
}

// Numbers lists the numbers of archived committees.
func (h *ArchiveHandler) Numbers(c *gin.Context) {
	numbers, err := h.archive.ListCommitteeNumbers(c.Request.Context())
	if err != nil {
		respondCommitteeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"committee_numbers": numbers})
}
