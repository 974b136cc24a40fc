package handler

import (
	"net/http"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	actor := h.getActor(c)

	var input dto.CreateCommentDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	createdComment, err := h.services.Comment.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdComment)
}

func (h *Handler) commentsGetByArticle(c *gin.Context) {
	articleID, err := parseID(c, "articleID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	var input dto.GetCommentsDto
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	comments, err := h.services.Comment.FindArticleComments(c.Request.Context(), h.getActor(c), articleID, input.Page, input.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Handler) commentsGetByID(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	comment, err := h.services.Comment.FindByID(c.Request.Context(), h.getActor(c), commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) commentsUpdate(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	var input dto.UpdateCommentDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	comment, err := h.services.Comment.Update(c.Request.Context(), h.getActor(c), commentID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) commentsDelete(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), h.getActor(c), commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "comment deleted"))
}

func (h *Handler) commentsLike(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	result, err := h.services.Comment.ToggleLike(c.Request.Context(), h.getActor(c), commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) commentsIsLiked(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	isLiked := h.services.Comment.IsLiked(c.Request.Context(), commentID, h.getActor(c).ID)

	c.JSON(http.StatusOK, gin.H{"isLiked": isLiked})
}

func (h *Handler) commentsReport(c *gin.Context) {
	commentID, err := parseID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	var input dto.ReportCommentDto
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
			return
		}
	}

	report, err := h.services.Report.Create(c.Request.Context(), h.getActor(c), commentID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}
