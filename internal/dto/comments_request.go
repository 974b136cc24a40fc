package dto

type CreateCommentDto struct {
	ArticleID int64  `json:"article_id" binding:"required,gt=0"`
	ParentID  *int64 `json:"parent_id" binding:"omitempty,gt=0"`
	Content   string `json:"content" binding:"required"`
}

type UpdateCommentDto struct {
	Content string `json:"content" binding:"required"`
}

type GetCommentsDto struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

type ReportCommentDto struct {
	Reason         string  `json:"reason"`
	AdditionalInfo *string `json:"additional_info"`
}
