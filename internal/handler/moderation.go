package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) modGetComments(c *gin.Context) {
	var input dto.GetModerationCommentsDto
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	page, err := h.services.Moderation.FindForModeration(c.Request.Context(), h.getActor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) modModerateComment(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	var input dto.ModerateCommentDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	comment, err := h.services.Moderation.Moderate(c.Request.Context(), h.getActor(c), commentID, input.Action, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	if comment == nil {
		c.JSON(http.StatusOK, dto.NewBasicResponse(true, "comment deleted"))
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) modModerateBulk(c *gin.Context) {
	var input dto.ModerateBulkDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	result, err := h.services.Moderation.ModerateBulk(c.Request.Context(), h.getActor(c), input.CommentIDs, input.Action, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) modDismissReports(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	if err := h.services.Report.Dismiss(c.Request.Context(), h.getActor(c), commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "reports dismissed"))
}

func (h *Handler) modGetReports(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	reports, err := h.services.Report.FindByComment(c.Request.Context(), h.getActor(c), commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *Handler) modGetUserComments(c *gin.Context) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Param("userID")))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidID.Error()))
		return
	}

	comments, err := h.services.Moderation.FindUserComments(c.Request.Context(), h.getActor(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
