package domain

const (
	EventNameSessionUpdated       = "session.updated"
	EventNameSessionEnded         = "session.ended"
	EventNameRecommendationsReady = "recommendations.ready"
	EventNameWinnerChosen         = "winner.chosen"
)

// EventSessionUpdated fires after any mutation of a session's stored state.
type EventSessionUpdated struct {
	Session Session
}

func (EventSessionUpdated) Name() string { return EventNameSessionUpdated }

// EventSessionEnded fires when a session is deleted (host left or expired).
type EventSessionEnded struct {
	RoomCode string
}

func (EventSessionEnded) Name() string { return EventNameSessionEnded }

type EventRecommendationsReady struct {
	Session Session
}

func (EventRecommendationsReady) Name() string { return EventNameRecommendationsReady }

type EventWinnerChosen struct {
	Session Session
}

func (EventWinnerChosen) Name() string { return EventNameWinnerChosen }
