package model

type Pagination struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type CommentPage struct {
	Comments []*FullComment `json:"comments"`
	Pagination
	// TotalAll counts roots and replies visible to the viewer.
	TotalAll int64 `json:"total_all_comments"`
}

type ModerationPage struct {
	Comments []*ModerationComment `json:"comments"`
	Pagination
}

type BulkResult struct {
	ProcessedCount int     `json:"processed_count"`
	SkippedIDs     []int64 `json:"skipped_ids"`
}
