package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/catalog"
	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/store"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

const gameplayBody = `{"name":"api","edition":"north_america","hosts":[
	{"name":"MEX","order":1,"federation":"CONCACAF"},
	{"name":"USA","order":2,"federation":"CONCACAF"},
	{"name":"CAN","order":3,"federation":"CONCACAF"}]}`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)
	svc := tournament.NewService(store.NewMemStore(), cat, league.NewLockedRand(3), entry)
	return WithCORS(NewRouter(svc, entry), []string{"http://localhost:3000"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response %d: %v", rec.Code, err)
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("body %v", body)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", league.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("x: %w", league.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", league.ErrConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", league.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("x: %w", league.ErrInvariant), http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestGameplayLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/gameplays", gameplayBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create gameplay: status %d: %s", rec.Code, rec.Body)
	}
	var g league.Gameplay
	decodeBody(t, rec, &g)
	base := "/api/v1/gameplays/" + g.ID

	for _, step := range []string{"/teams", "/rounds"} {
		if rec := do(t, h, http.MethodPost, base+step, ""); rec.Code != http.StatusCreated {
			t.Fatalf("POST %s: status %d: %s", step, rec.Code, rec.Body)
		}
	}

	rec = do(t, h, http.MethodPost, base+"/rounds/OFC-2nd/schedule", `{"groups":[["NZL","FIJ"],["TAH","SOL"]]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: status %d: %s", rec.Code, rec.Body)
	}
	var fixtures []league.Match
	decodeBody(t, rec, &fixtures)
	if len(fixtures) != 2 {
		t.Fatalf("got %d fixtures", len(fixtures))
	}

	rec = do(t, h, http.MethodGet, base+"/rounds/OFC-2nd/matches?matchday=1", "")
	var listed []league.Match
	decodeBody(t, rec, &listed)
	if len(listed) != 2 {
		t.Errorf("listed %d fixtures", len(listed))
	}

	simulate := fmt.Sprintf("%s/matches/%d/simulate", base, fixtures[0].ID)
	rec = do(t, h, http.MethodPost, simulate, `{"homeGoals":1,"awayGoals":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate: status %d: %s", rec.Code, rec.Body)
	}
	var played league.Match
	decodeBody(t, rec, &played)
	if played.HomeGoals == nil || *played.HomeGoals != 1 {
		t.Errorf("played %+v", played)
	}
	if rec := do(t, h, http.MethodPost, simulate, ""); rec.Code != http.StatusConflict {
		t.Errorf("re-simulate: status %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPost, base+"/rounds/OFC-2nd/knockout-advancement", fmt.Sprintf(`{"matchIds":[%d]}`, fixtures[0].ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("advancement: status %d: %s", rec.Code, rec.Body)
	}
	var round league.Round
	decodeBody(t, rec, &round)
	if e := round.Team(played.Home); e == nil || e.Status != league.StatusAdvanced {
		t.Errorf("winner entry %+v", e)
	}

	rec = do(t, h, http.MethodGet, base+"/head-to-head?team1="+played.Home+"&team2="+played.Away, "")
	var h2h tournament.HeadToHeadResult
	decodeBody(t, rec, &h2h)
	if h2h.Overview.TotalMatches != 1 || h2h.Overview.Team1Wins != 1 {
		t.Errorf("head-to-head %+v", h2h.Overview)
	}
}

func TestErrorResponses(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/v1/gameplays", gameplayBody)
	var g league.Gameplay
	decodeBody(t, rec, &g)
	base := "/api/v1/gameplays/" + g.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed body", http.MethodPost, "/api/v1/gameplays", `{"name":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/gameplays", `{"name":"x","colour":"red"}`, http.StatusBadRequest},
		{"missing body", http.MethodPost, "/api/v1/gameplays", "", http.StatusBadRequest},
		{"gameplay id not a uuid", http.MethodPost, "/api/v1/gameplays/abc/teams", "", http.StatusBadRequest},
		{"unknown gameplay", http.MethodPost, "/api/v1/gameplays/" + uuid.NewString() + "/teams", "", http.StatusNotFound},
		{"unknown match", http.MethodPost, base + "/matches/777/simulate", "", http.StatusNotFound},
		{"bad matchday", http.MethodGet, base + "/rounds/OFC-1st/matches?matchday=x", "", http.StatusBadRequest},
		{"unknown group", http.MethodGet, base + "/rounds/OFC-1st/groups/Z", "", http.StatusNotFound},
		{"bad match date", http.MethodPost, base + "/rounds/OFC-1st/group-advancement", `{"matchDate":"soon"}`, http.StatusBadRequest},
		{"same team twice", http.MethodGet, base + "/head-to-head?team1=NZL&team2=NZL", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] == "" {
				t.Errorf("no error message")
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/gameplays", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
