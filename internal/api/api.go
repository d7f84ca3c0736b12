// Package api exposes the session transport over HTTP. It is the only
// surface a client-facing layer needs: create, join, leave, preferences,
// recommendations, votes, winner, and a pollable session snapshot.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/victornm/quickpick/internal/domain"
	"github.com/victornm/quickpick/internal/errors"
	"github.com/victornm/quickpick/internal/event"
	"github.com/victornm/quickpick/internal/recommend"
	"github.com/victornm/quickpick/internal/roomcode"
	"github.com/victornm/quickpick/internal/session"
	"github.com/victornm/quickpick/internal/telemetry"
	"github.com/victornm/quickpick/internal/vote"
)

type Config struct {
	Router       gin.IRouter
	EventBus     *event.Bus
	Session      *session.Service
	Recommend    *recommend.Service
	Redis        Redis
	PubsubPrefix string
}

type API struct {
	ss *session.Service
	rs *recommend.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		ss:     c.Session,
		rs:     c.Recommend,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	v1 := c.Router.Group("/v1")
	v1.POST("/sessions", a.createSession)
	v1.GET("/sessions/:code", a.getSession)
	v1.POST("/sessions/:code/join", a.join)
	v1.POST("/sessions/:code/leave", a.leave)
	v1.PUT("/sessions/:code/status", a.setStatus)
	v1.PUT("/sessions/:code/preferences", a.submitPreferences)
	v1.POST("/sessions/:code/recommendations", a.generateRecommendations)
	v1.POST("/sessions/:code/votes", a.submitVotes)
	v1.POST("/sessions/:code/winner", a.chooseWinner)
	v1.GET("/sessions/:code/results", a.votingResults)

	if c.EventBus != nil {
		c.EventBus.Subscribe(domain.EventNameSessionUpdated, func(ctx context.Context, e event.Event) error {
			return a.PublishSessionUpdated(ctx, e.(domain.EventSessionUpdated))
		})
	}

	return a
}

type createSessionRequest struct {
	HostName string `json:"host_name" binding:"required"`
}

type shareInfo struct {
	RoomCode    string `json:"room_code"`
	DisplayCode string `json:"display_code"`
	DeepLink    string `json:"deep_link"`
}

type sessionResponse struct {
	Session     *domain.Session     `json:"session"`
	Participant *domain.Participant `json:"participant,omitempty"`
	Share       *shareInfo          `json:"share,omitempty"`
}

func (a *API) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	sess, err := a.ss.Create(c.Request.Context(), req.HostName)
	if err != nil {
		a.abortError(c, err)
		return
	}

	telemetry.SessionsCreated.Inc()
	c.JSON(http.StatusCreated, sessionResponse{
		Session:     sess,
		Participant: &sess.Participants[0],
		Share: &shareInfo{
			RoomCode:    sess.RoomCode,
			DisplayCode: roomcode.Format(sess.RoomCode),
			DeepLink:    roomcode.DeepLink(sess.RoomCode),
		},
	})
}

func (a *API) getSession(c *gin.Context) {
	sess, err := a.ss.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

type joinRequest struct {
	Name string `json:"name" binding:"required"`
}

func (a *API) join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	sess, participant, err := a.ss.Join(c.Request.Context(), c.Param("code"), req.Name)
	if err != nil {
		a.abortError(c, err)
		return
	}

	telemetry.ParticipantsJoined.Inc()
	c.JSON(http.StatusOK, sessionResponse{Session: sess, Participant: participant})
}

type leaveRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

func (a *API) leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	if err := a.ss.Leave(c.Request.Context(), c.Param("code"), req.ParticipantID); err != nil {
		a.abortError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type setStatusRequest struct {
	Status domain.Status `json:"status" binding:"required"`
}

func (a *API) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	sess, err := a.ss.SetStatus(c.Request.Context(), c.Param("code"), req.Status)
	if err != nil {
		a.abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

type submitPreferencesRequest struct {
	ParticipantID string             `json:"participant_id" binding:"required"`
	Preferences   domain.Preferences `json:"preferences" binding:"required"`
}

func (a *API) submitPreferences(c *gin.Context) {
	var req submitPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	err := a.ss.SubmitPreferences(c.Request.Context(), c.Param("code"), req.ParticipantID, req.Preferences)
	if err != nil {
		a.abortError(c, err)
		return
	}

	allIn, err := a.ss.AllPreferencesSubmitted(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"all_submitted": allIn})
}

// generateRecommendations runs the scoring pipeline and stores the
// shortlist. Long-running by contract; the request context cancels it.
func (a *API) generateRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	allIn, err := a.ss.AllPreferencesSubmitted(ctx, code)
	if err != nil {
		a.abortError(c, err)
		return
	}
	if !allIn {
		a.abortError(c, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("not all participants have submitted preferences")))
		return
	}

	sess, err := a.ss.SetStatus(ctx, code, domain.StatusProcessing)
	if err != nil {
		a.abortError(c, err)
		return
	}

	recs, err := a.rs.Generate(ctx, sess.Participants)
	if err != nil {
		a.abortError(c, err)
		return
	}

	sess, err = a.ss.SetRecommendations(ctx, code, recs)
	if err != nil {
		a.abortError(c, err)
		return
	}

	telemetry.RecommendationsGenerated.Inc()
	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

type ballotPick struct {
	RecommendationID string `json:"recommendation_id" binding:"required"`
	Rank             int    `json:"rank" binding:"required"`
}

type submitVotesRequest struct {
	ParticipantID string       `json:"participant_id" binding:"required"`
	Picks         []ballotPick `json:"picks" binding:"required"`
}

func (a *API) submitVotes(c *gin.Context) {
	var req submitVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	votes := make([]domain.Vote, 0, len(req.Picks))
	for _, p := range req.Picks {
		votes = append(votes, domain.Vote{
			ParticipantID:    req.ParticipantID,
			RecommendationID: p.RecommendationID,
			Rank:             p.Rank,
		})
	}

	if err := a.ss.SubmitVotes(c.Request.Context(), c.Param("code"), votes); err != nil {
		a.abortError(c, err)
		return
	}

	telemetry.BallotsSubmitted.Inc()
	c.Status(http.StatusCreated)
}

// chooseWinner computes the full tally over all accumulated ballots and
// finalizes the session with its top entry.
func (a *API) chooseWinner(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	sess, err := a.ss.Get(ctx, code)
	if err != nil {
		a.abortError(c, err)
		return
	}

	winner := vote.Winner(sess.Votes, sess.Recommendations)
	if winner == nil {
		a.abortError(c, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session %s has no recommendations to choose from", code)))
		return
	}

	sess, err = a.ss.SetWinner(ctx, code, *winner)
	if err != nil {
		a.abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

func (a *API) votingResults(c *gin.Context) {
	sess, err := a.ss.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.abortError(c, err)
		return
	}

	ids := make([]string, 0, len(sess.Recommendations))
	for _, r := range sess.Recommendations {
		ids = append(ids, r.ID)
	}

	c.JSON(http.StatusOK, gin.H{"results": vote.Results(sess.Votes, ids)})
}

func (a *API) abortError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "api: request failed",
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(e.HTTPStatusCode(), gin.H{
		"code":    e.Code,
		"message": e.Message,
	})
}
