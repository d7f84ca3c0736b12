package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a session. Transitions are linear:
// waiting -> preferences -> processing -> voting -> complete.
type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusPreferences Status = "preferences"
	StatusProcessing  Status = "processing"
	StatusVoting      Status = "voting"
	StatusComplete    Status = "complete"
)

var statusOrder = map[Status]int{
	StatusWaiting:     0,
	StatusPreferences: 1,
	StatusProcessing:  2,
	StatusVoting:      3,
	StatusComplete:    4,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next respects the linear
// order. Forward jumps are allowed, same-state is idempotent, backward is not.
func (s Status) CanTransitionTo(next Status) bool {
	a, ok1 := statusOrder[s]
	b, ok2 := statusOrder[next]
	return ok1 && ok2 && b >= a
}

type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodThrilling  Mood = "thrilling"
	MoodThoughtful Mood = "thoughtful"
	MoodFunny      Mood = "funny"
	MoodScary      Mood = "scary"
	MoodRomantic   Mood = "romantic"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodThrilling, MoodThoughtful, MoodFunny, MoodScary, MoodRomantic:
		return true
	}
	return false
}

type EnergyLevel string

const (
	EnergyChill    EnergyLevel = "chill"
	EnergyModerate EnergyLevel = "moderate"
	EnergyIntense  EnergyLevel = "intense"
)

func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyChill, EnergyModerate, EnergyIntense:
		return true
	}
	return false
}

type RuntimePreference string

const (
	RuntimeShort  RuntimePreference = "short"
	RuntimeMedium RuntimePreference = "medium"
	RuntimeLong   RuntimePreference = "long"
)

func (r RuntimePreference) Valid() bool {
	switch r {
	case RuntimeShort, RuntimeMedium, RuntimeLong:
		return true
	}
	return false
}

type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
	ContentBoth  ContentType = "both"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentMovie, ContentTV, ContentBoth:
		return true
	}
	return false
}

// Preferences is one participant's submitted selections. A resubmission
// replaces the previous value wholesale.
type Preferences struct {
	Mood        Mood              `json:"mood"`
	Energy      EnergyLevel       `json:"energy"`
	Runtime     RuntimePreference `json:"runtime"`
	ContentType ContentType       `json:"content_type"`
}

func (p Preferences) Valid() bool {
	return p.Mood.Valid() && p.Energy.Valid() && p.Runtime.Valid() && p.ContentType.Valid()
}

// Participant is one member of a session. Exactly one participant per
// session has IsHost set, assigned at creation and never transferred.
type Participant struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IsHost      bool         `json:"is_host"`
	HasPrefs    bool         `json:"has_submitted_preferences"`
	JoinedAt    time.Time    `json:"joined_at"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Recommendation is a scored shortlist candidate. Once it has been shown to
// participants its score and reason are never recalculated.
type Recommendation struct {
	ID           string          `json:"id"`
	SourceID     int64           `json:"source_id"`
	Title        string          `json:"title"`
	Overview     string          `json:"overview"`
	PosterPath   string          `json:"poster_path,omitempty"`
	BackdropPath string          `json:"backdrop_path,omitempty"`
	ReleaseDate  string          `json:"release_date"`
	VoteAverage  decimal.Decimal `json:"vote_average"`
	Genres       []Genre         `json:"genres"`
	Runtime      *int            `json:"runtime,omitempty"`
	SeasonCount  *int            `json:"season_count,omitempty"`
	ContentType  ContentType     `json:"content_type"`
	MatchScore   int             `json:"match_score"`
	MatchReason  string          `json:"match_reason"`
}

// Vote is one ballot entry: a participant assigning a rank (1..3) to a
// shortlisted recommendation. Votes accumulate, they are never overwritten.
type Vote struct {
	ID               string    `json:"id"`
	ParticipantID    string    `json:"participant_id"`
	RecommendationID string    `json:"recommendation_id"`
	Rank             int       `json:"rank"`
	CastAt           time.Time `json:"cast_at"`
}

// VotingResult is derived from the vote list on demand, never stored.
type VotingResult struct {
	RecommendationID string `json:"recommendation_id"`
	TotalPoints      int    `json:"total_points"`
	VoteCount        int    `json:"vote_count"`
	FirstPlaceVotes  int    `json:"first_place_votes"`
}

// Session is the shared state of one group decision, keyed by room code.
type Session struct {
	ID              string           `json:"id"`
	RoomCode        string           `json:"room_code"`
	HostID          string           `json:"host_id"`
	Status          Status           `json:"status"`
	Participants    []Participant    `json:"participants"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Votes           []Vote           `json:"votes,omitempty"`
	Winner          *Recommendation  `json:"winner,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ExpiresAt       time.Time        `json:"expires_at"`
}

// Expired reports whether the session's expiry has passed at t.
func (s *Session) Expired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// FindParticipant returns the participant with the given id, or nil.
func (s *Session) FindParticipant(id string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}
