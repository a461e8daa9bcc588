package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

const defaultOddsRuns = 1000

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query %s=%q: %w", name, raw, league.ErrValidation)
	}
	return n, nil
}

func (s *Server) createGameplay(w http.ResponseWriter, r *http.Request) {
	var req tournament.CreateGameplayRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.svc.CreateGameplay(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) createTeams(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	teams, err := s.svc.CreateTeams(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, teams)
}

func (s *Server) createRounds(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rounds, err := s.svc.CreateRounds(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rounds)
}

func (s *Server) createVenues(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req tournament.CreateVenuesRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID = id
	venues, err := s.svc.CreateCustomVenues(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, venues)
}

func (s *Server) allocateVenues(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req tournament.AllocateVenuesRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID = id
	plan, err := s.svc.AllocateVenues(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) publishRankings(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := decode(r, &body, true); err != nil {
		s.fail(w, r, err)
		return
	}
	var on *time.Time
	if body.Date != "" {
		d, err := league.ParseDate(body.Date)
		if err != nil {
			s.fail(w, r, fmt.Errorf("date %q: %w", body.Date, league.ErrValidation))
			return
		}
		on = &d
	}
	ranks, err := s.svc.PublishRankings(r.Context(), id, on)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ranks)
}

func (s *Server) headToHead(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := s.svc.HeadToHead(r.Context(), id, q.Get("team1"), q.Get("team2"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) teamRankings(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ranks, err := s.svc.TeamRankings(r.Context(), id, mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranks)
}

func (s *Server) simulateMatch(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matchID, err := strconv.ParseInt(mux.Vars(r)["matchId"], 10, 64)
	if err != nil {
		s.fail(w, r, fmt.Errorf("match id: %w", league.ErrValidation))
		return
	}
	var req tournament.SimulateMatchRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID, req.MatchID = id, matchID
	m, err := s.svc.SimulateMatch(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) scheduleRound(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req tournament.ScheduleRoundRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID, req.RoundCode = id, mux.Vars(r)["code"]
	matches, err := s.svc.ScheduleRound(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, matches)
}

func (s *Server) recomputeStandings(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req tournament.RecomputeStandingsRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID, req.RoundCode = id, mux.Vars(r)["code"]
	round, err := s.svc.RecomputeStandings(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) knockoutAdvancement(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req tournament.ResolveKnockoutAdvancementRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	req.GameplayID, req.RoundCode = id, mux.Vars(r)["code"]
	round, err := s.svc.ResolveKnockoutAdvancement(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) groupAdvancement(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body struct {
		MatchDate string   `json:"matchDate"`
		Groups    []string `json:"groups"`
	}
	if err := decode(r, &body, false); err != nil {
		s.fail(w, r, err)
		return
	}
	date, err := league.ParseDate(body.MatchDate)
	if err != nil {
		s.fail(w, r, fmt.Errorf("matchDate %q: %w", body.MatchDate, league.ErrValidation))
		return
	}
	round, err := s.svc.ResolveGroupAdvancement(r.Context(), tournament.ResolveGroupAdvancementRequest{
		GameplayID: id,
		RoundCode:  mux.Vars(r)["code"],
		MatchDate:  date,
		Groups:     body.Groups,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) matchesByRound(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matchday, err := queryInt(r, "matchday", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matches, err := s.svc.MatchesByRound(r.Context(), id, mux.Vars(r)["code"], matchday, r.URL.Query()["group"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if matches == nil {
		matches = []*league.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) groupTable(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	vars := mux.Vars(r)
	grp, err := s.svc.GroupTable(r.Context(), id, vars["code"], vars["group"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grp)
}

func (s *Server) qualificationOdds(w http.ResponseWriter, r *http.Request) {
	id, err := gameplayID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	runs, err := queryInt(r, "runs", defaultOddsRuns)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	vars := mux.Vars(r)
	preds, err := s.svc.QualificationOdds(r.Context(), tournament.QualificationOddsRequest{
		GameplayID: id,
		RoundCode:  vars["code"],
		Group:      vars["group"],
		Runs:       runs,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preds)
}
