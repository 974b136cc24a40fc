package model

import (
	"time"

	"github.com/google/uuid"
)

type ReportReason string

const (
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonMisinformation       ReportReason = "misinformation"
	ReasonOther                ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonInappropriateContent, ReasonSpam, ReasonHarassment, ReasonMisinformation, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

// Reports are removed on dismissal, so pending is the only stored status.
const ReportPending ReportStatus = "pending"

type CommentReport struct {
	ID         int64        `json:"id"`
	CommentID  int64        `json:"comment_id"`
	ReporterID uuid.UUID    `json:"reporter_id"`
	Reason     ReportReason `json:"reason"`
	Detail     *string      `json:"additional_info"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}
