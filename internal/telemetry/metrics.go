package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickpick_sessions_created_total",
		Help: "Number of sessions created.",
	})

	ParticipantsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickpick_participants_joined_total",
		Help: "Number of successful joins, host excluded.",
	})

	BallotsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickpick_ballots_submitted_total",
		Help: "Number of ranked ballots accepted.",
	})

	RecommendationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickpick_recommendations_generated_total",
		Help: "Number of shortlist generation runs that completed.",
	})
)
