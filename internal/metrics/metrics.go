package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	CommentsCreated   *prometheus.CounterVec
	CommentsDeleted   prometheus.Counter
	LikeToggles       *prometheus.CounterVec
	ReportsSubmitted  *prometheus.CounterVec
	ReportsDismissed  prometheus.Counter
	ModerationActions *prometheus.CounterVec
}

// New creates the engine collectors and registers them on reg.
// A nil registerer leaves them unregistered, which is what tests use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "comments_created_total",
			Help:      "Comments created, by initial status.",
		}, []string{"status"}),
		CommentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "comments_deleted_total",
			Help:      "Comments deleted by their author or an administrator.",
		}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "like_toggles_total",
			Help:      "Like toggles, by resulting state.",
		}, []string{"outcome"}),
		ReportsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "reports_submitted_total",
			Help:      "Comment reports, by reason.",
		}, []string{"reason"}),
		ReportsDismissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "reports_dismissed_total",
			Help:      "Dismiss-reports calls.",
		}),
		ModerationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comment_service",
			Name:      "moderation_actions_total",
			Help:      "Moderation actions applied to comments.",
		}, []string{"action", "mode"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CommentsCreated,
			m.CommentsDeleted,
			m.LikeToggles,
			m.ReportsSubmitted,
			m.ReportsDismissed,
			m.ModerationActions,
		)
	}

	return m
}
