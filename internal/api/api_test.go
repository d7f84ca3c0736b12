package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quickpick/internal/api"
	"github.com/victornm/quickpick/internal/catalog"
	"github.com/victornm/quickpick/internal/domain"
	"github.com/victornm/quickpick/internal/recommend"
	"github.com/victornm/quickpick/internal/session"
)

type fakeCatalog struct{}

func (fakeCatalog) Discover(_ context.Context, f catalog.Filter) ([]catalog.Item, error) {
	if f.Type == domain.ContentTV {
		return []catalog.Item{
			{ID: 1396, Title: "Breaking Bad", GenreIDs: []int{18, 80}, Type: domain.ContentTV},
		}, nil
	}
	return []catalog.Item{
		{ID: 603, Title: "The Matrix", GenreIDs: []int{28, 878}, Type: domain.ContentMovie},
		{ID: 680, Title: "Pulp Fiction", GenreIDs: []int{80, 53}, Type: domain.ContentMovie},
	}, nil
}

func (fakeCatalog) Search(context.Context, string, int) ([]catalog.Item, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ss := session.NewService(session.Config{
		Store: session.NewRedisStore(client, "test"),
	})
	rs := recommend.NewService(recommend.Config{
		Catalog:    fakeCatalog{},
		MinLatency: time.Millisecond,
	})

	router := gin.New()
	api.New(api.Config{
		Router:    router,
		Session:   ss,
		Recommend: rs,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent && resp.ContentLength != 0 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func createSession(t *testing.T, srv *httptest.Server, host string) (code, hostID string) {
	t.Helper()

	resp, body := do(t, srv, http.MethodPost, "/v1/sessions", gin.H{"host_name": host})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sess := body["session"].(map[string]any)
	participant := body["participant"].(map[string]any)
	return sess["room_code"].(string), participant["id"].(string)
}

func joinSession(t *testing.T, srv *httptest.Server, code, name string) string {
	t.Helper()

	resp, body := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/join", gin.H{"name": name})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["participant"].(map[string]any)["id"].(string)
}

func submitPreferences(t *testing.T, srv *httptest.Server, code, participantID string) {
	t.Helper()

	resp, _ := do(t, srv, http.MethodPut, "/v1/sessions/"+code+"/preferences", gin.H{
		"participant_id": participantID,
		"preferences": gin.H{
			"mood":         "thrilling",
			"energy":       "intense",
			"runtime":      "medium",
			"content_type": "movie",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/v1/sessions", gin.H{"host_name": "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sess := body["session"].(map[string]any)
	assert.Equal(t, "waiting", sess["status"])

	share := body["share"].(map[string]any)
	code := share["room_code"].(string)
	assert.Len(t, code, 4)
	assert.Equal(t, "quickpick://join/"+code, share["deep_link"])
	assert.Len(t, share["display_code"], 7) // "A B C D"
}

func TestCreateSession_BadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/v1/sessions", gin.H{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSession_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodGet, "/v1/sessions/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoin_Conflicts(t *testing.T) {
	srv := newTestServer(t)
	code, _ := createSession(t, srv, "Ana")

	t.Run("after the session started", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPut, "/v1/sessions/"+code+"/status", gin.H{"status": "preferences"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/join", gin.H{"name": "Ben"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("when the session is full", func(t *testing.T) {
		code, _ := createSession(t, srv, "Ana")
		for i := 1; i < session.MaxParticipants; i++ {
			joinSession(t, srv, code, fmt.Sprintf("guest-%d", i))
		}

		resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/join", gin.H{"name": "late"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestSetStatus_BackwardRejected(t *testing.T) {
	srv := newTestServer(t)
	code, _ := createSession(t, srv, "Ana")

	resp, _ := do(t, srv, http.MethodPut, "/v1/sessions/"+code+"/status", gin.H{"status": "voting"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPut, "/v1/sessions/"+code+"/status", gin.H{"status": "waiting"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateRecommendations_RequiresAllPreferences(t *testing.T) {
	srv := newTestServer(t)
	code, hostID := createSession(t, srv, "Ana")
	joinSession(t, srv, code, "Ben")

	submitPreferences(t, srv, code, hostID)

	resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/recommendations", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFullDecisionFlow(t *testing.T) {
	srv := newTestServer(t)

	code, hostID := createSession(t, srv, "Ana")
	guestID := joinSession(t, srv, code, "Ben")

	submitPreferences(t, srv, code, hostID)
	submitPreferences(t, srv, code, guestID)

	resp, body := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sess := body["session"].(map[string]any)
	require.Equal(t, "voting", sess["status"])

	recs := sess["recommendations"].([]any)
	require.Len(t, recs, 3)
	first := recs[0].(map[string]any)
	assert.Equal(t, "movie_680", first["id"]) // two matching genres beat one

	// Both ballots put Breaking Bad first.
	for _, pid := range []string{hostID, guestID} {
		resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/votes", gin.H{
			"participant_id": pid,
			"picks": []gin.H{
				{"recommendation_id": "tv_1396", "rank": 1},
				{"recommendation_id": "movie_680", "rank": 2},
				{"recommendation_id": "movie_603", "rank": 3},
			},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body = do(t, srv, http.MethodGet, "/v1/sessions/"+code+"/results", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	results := body["results"].([]any)
	require.Len(t, results, 3)
	top := results[0].(map[string]any)
	assert.Equal(t, "tv_1396", top["recommendation_id"])
	assert.Equal(t, float64(6), top["total_points"])

	resp, body = do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/winner", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sess = body["session"].(map[string]any)
	assert.Equal(t, "complete", sess["status"])
	assert.Equal(t, "tv_1396", sess["winner"].(map[string]any)["id"])
}

func TestSubmitVotes_InvalidBallot(t *testing.T) {
	srv := newTestServer(t)
	code, hostID := createSession(t, srv, "Ana")

	resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/votes", gin.H{
		"participant_id": hostID,
		"picks": []gin.H{
			{"recommendation_id": "movie_1", "rank": 1},
			{"recommendation_id": "movie_1", "rank": 2},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChooseWinner_WithoutRecommendations(t *testing.T) {
	srv := newTestServer(t)
	code, _ := createSession(t, srv, "Ana")

	resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/winner", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLeave(t *testing.T) {
	srv := newTestServer(t)
	code, hostID := createSession(t, srv, "Ana")

	resp, _ := do(t, srv, http.MethodPost, "/v1/sessions/"+code+"/leave", gin.H{"participant_id": hostID})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/v1/sessions/"+code, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
