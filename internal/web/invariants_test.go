package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hiddenTargets(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	raw := decode(t, rr)["targets"].([]interface{})
	out := make([]map[string]interface{}, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]interface{})
	}
	return out
}

// TestCORSHeadersAlwaysPresentOnPreflightRequests ensures browsers can call
// the API from another origin.
func TestCORSHeadersAlwaysPresentOnPreflightRequests(t *testing.T) {
	h := newTestHandler(t, false)

	req := httptest.NewRequest("OPTIONS", "/api/games/abc/moves", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type, authorization")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "authorization"))

	// simple methods are implied, anything else is echoed back
	req = httptest.NewRequest("OPTIONS", "/api/games/abc", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	req.Header.Set("Access-Control-Request-Headers", "authorization")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DELETE", w.Header().Get("Access-Control-Allow-Methods"))
}

// TestHiddenTargetNeverVisibleToOpponent checks that a seat only ever sees its
// own hidden target while the game is running.
func TestHiddenTargetNeverVisibleToOpponent(t *testing.T) {
	h := newTestHandler(t, false)
	seed := int64(1)
	g := createGame(t, h, CreateGameRequest{Seed: &seed})
	path := "/api/games/" + g.GameID + "/hidden"

	rr := doRequest(t, h, "GET", path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	white := hiddenTargets(t, doRequest(t, h, "GET", path, g.Seats.White, nil))
	require.Len(t, white, 1)
	assert.Equal(t, "white", white[0]["color"])
	assert.Equal(t, "armed", white[0]["state"])
	assert.NotEqual(t, "pawn", white[0]["kind"])

	black := hiddenTargets(t, doRequest(t, h, "GET", path, g.Seats.Black, nil))
	require.Len(t, black, 1)
	assert.Equal(t, "black", black[0]["color"])

	snapshot := doRequest(t, h, "GET", "/api/games/"+g.GameID, "", nil)
	assert.NotContains(t, snapshot.Body.String(), "armed")
}

func TestHiddenTargetsRevealedAfterGameEnds(t *testing.T) {
	h := newTestHandler(t, false)
	g := createGame(t, h, CreateGameRequest{})

	rr := doRequest(t, h, "POST", "/api/games/"+g.GameID+"/resign", g.Seats.Black, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	targets := hiddenTargets(t, doRequest(t, h, "GET", "/api/games/"+g.GameID+"/hidden", "", nil))
	require.Len(t, targets, 2)
	assert.Equal(t, "white", targets[0]["color"])
	assert.Equal(t, "black", targets[1]["color"])
}

func TestHiddenTargetsVisibleInDebugMode(t *testing.T) {
	h := newTestHandler(t, true)
	g := createGame(t, h, CreateGameRequest{})

	targets := hiddenTargets(t, doRequest(t, h, "GET", "/api/games/"+g.GameID+"/hidden", "", nil))
	assert.Len(t, targets, 2)
}

// TestSameSeedSameTargets makes hidden-target selection reproducible for a
// given seed.
func TestSameSeedSameTargets(t *testing.T) {
	h := newTestHandler(t, true)
	seed := int64(1234)

	first := createGame(t, h, CreateGameRequest{Seed: &seed})
	second := createGame(t, h, CreateGameRequest{Seed: &seed})

	a := hiddenTargets(t, doRequest(t, h, "GET", "/api/games/"+first.GameID+"/hidden", "", nil))
	b := hiddenTargets(t, doRequest(t, h, "GET", "/api/games/"+second.GameID+"/hidden", "", nil))
	assert.Equal(t, a, b)
}
