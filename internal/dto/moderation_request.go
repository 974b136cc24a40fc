package dto

type ModerateCommentDto struct {
	Action string  `json:"action" binding:"required"`
	Reason *string `json:"reason"`
}

type ModerateBulkDto struct {
	CommentIDs []int64 `json:"comment_ids" binding:"required,min=1,dive,gt=0"`
	Action     string  `json:"action" binding:"required"`
	Reason     *string `json:"reason"`
}

type GetModerationCommentsDto struct {
	Status   string `form:"status"`
	Reported bool   `form:"reported"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
