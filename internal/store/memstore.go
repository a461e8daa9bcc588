package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

// MemStore is an in-memory tournament.Repository. Stored records are never
// handed out; every read and write copies.
type MemStore struct {
	mu sync.RWMutex
	st *memState
}

var _ tournament.Repository = (*MemStore)(nil)

type memState struct {
	gameplays  map[string]*league.Gameplay
	teams      map[string]*league.Team  // gameplay/code
	rounds     map[string]*league.Round // gameplay/code
	matches    map[int64]*league.Match
	matchCodes map[string]int64 // gameplay/code
	rankings   []league.Ranking
	venues     []*league.Venue
	nextMatch  int64
	nextVenue  int64
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{st: &memState{
		gameplays:  map[string]*league.Gameplay{},
		teams:      map[string]*league.Team{},
		rounds:     map[string]*league.Round{},
		matches:    map[int64]*league.Match{},
		matchCodes: map[string]int64{},
	}}
}

func key(gameplayID, code string) string { return gameplayID + "/" + code }

// clone copies the maps and slices; records are replaced, never mutated, so
// sharing them between states is safe.
func (st *memState) clone() *memState {
	out := &memState{
		gameplays:  make(map[string]*league.Gameplay, len(st.gameplays)),
		teams:      make(map[string]*league.Team, len(st.teams)),
		rounds:     make(map[string]*league.Round, len(st.rounds)),
		matches:    make(map[int64]*league.Match, len(st.matches)),
		matchCodes: make(map[string]int64, len(st.matchCodes)),
		rankings:   append([]league.Ranking{}, st.rankings...),
		venues:     append([]*league.Venue{}, st.venues...),
		nextMatch:  st.nextMatch,
		nextVenue:  st.nextVenue,
	}
	for k, v := range st.gameplays {
		out.gameplays[k] = v
	}
	for k, v := range st.teams {
		out.teams[k] = v
	}
	for k, v := range st.rounds {
		out.rounds[k] = v
	}
	for k, v := range st.matches {
		out.matches[k] = v
	}
	for k, v := range st.matchCodes {
		out.matchCodes[k] = v
	}
	return out
}

func copyGameplay(g *league.Gameplay) *league.Gameplay {
	c := *g
	c.Hosts = append([]league.Host(nil), g.Hosts...)
	return &c
}

func copyTeam(t *league.Team) *league.Team {
	c := *t
	return &c
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyMatch(m *league.Match) *league.Match {
	c := *m
	c.HomeGoals, c.AwayGoals = copyInt(m.HomeGoals), copyInt(m.AwayGoals)
	c.HomeExtraTimeGoals, c.AwayExtraTimeGoals = copyInt(m.HomeExtraTimeGoals), copyInt(m.AwayExtraTimeGoals)
	c.HomeAggs, c.AwayAggs = copyInt(m.HomeAggs), copyInt(m.AwayAggs)
	c.HomeGoalMinutes = append([]float64(nil), m.HomeGoalMinutes...)
	c.AwayGoalMinutes = append([]float64(nil), m.AwayGoalMinutes...)
	if m.Shootout != nil {
		sh := *m.Shootout
		sh.HomeKicks = append([]bool(nil), m.Shootout.HomeKicks...)
		sh.AwayKicks = append([]bool(nil), m.Shootout.AwayKicks...)
		c.Shootout = &sh
	}
	return &c
}

func copyRound(r *league.Round) *league.Round {
	c := *r
	c.Teams = make([]league.RoundTeam, len(r.Teams))
	for i, t := range r.Teams {
		if t.QualifiedDate != nil {
			d := *t.QualifiedDate
			t.QualifiedDate = &d
		}
		c.Teams[i] = t
	}
	if r.Groups != nil {
		c.Groups = make([]league.Group, len(r.Groups))
		for i, g := range r.Groups {
			c.Groups[i] = league.Group{Name: g.Name, Rows: append([]league.GroupRow{}, g.Rows...)}
		}
	}
	return &c
}

func copyVenue(v *league.Venue) *league.Venue {
	c := *v
	return &c
}

// Gameplay loads one gameplay.
func (s *MemStore) Gameplay(_ context.Context, id string) (*league.Gameplay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.st.gameplays[id]
	if !ok {
		return nil, fmt.Errorf("gameplay %s: %w", id, league.ErrNotFound)
	}
	return copyGameplay(g), nil
}

// Teams lists a gameplay's teams ordered by code.
func (s *MemStore) Teams(_ context.Context, gameplayID string) ([]*league.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*league.Team
	for _, t := range s.st.teams {
		if t.GameplayID == gameplayID {
			out = append(out, copyTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// LatestRankings picks, per team, the newest gameplay entry, else the newest global one.
func (s *MemStore) LatestRankings(_ context.Context, gameplayID string) (map[string]league.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scoped := map[string]league.Ranking{}
	global := map[string]league.Ranking{}
	for _, r := range s.st.rankings {
		var m map[string]league.Ranking
		switch r.GameplayID {
		case gameplayID:
			m = scoped
		case "":
			m = global
		default:
			continue
		}
		if cur, ok := m[r.Team]; !ok || r.Date.After(cur.Date) {
			m[r.Team] = r
		}
	}
	for team, r := range global {
		if _, ok := scoped[team]; !ok {
			scoped[team] = r
		}
	}
	return scoped, nil
}

// RankingHistory lists a team's entries, newest first.
func (s *MemStore) RankingHistory(_ context.Context, gameplayID, team string) ([]league.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []league.Ranking
	for _, r := range s.st.rankings {
		if r.Team == team && (r.GameplayID == gameplayID || r.GameplayID == "") {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].GameplayID > out[j].GameplayID
	})
	return out, nil
}

// Round loads one round.
func (s *MemStore) Round(_ context.Context, gameplayID, code string) (*league.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.st.rounds[key(gameplayID, code)]
	if !ok {
		return nil, fmt.Errorf("round %s: %w", code, league.ErrNotFound)
	}
	return copyRound(r), nil
}

// Match loads a match by id.
func (s *MemStore) Match(_ context.Context, gameplayID string, id int64) (*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.st.matches[id]
	if !ok || m.GameplayID != gameplayID {
		return nil, fmt.Errorf("match %d: %w", id, league.ErrNotFound)
	}
	return copyMatch(m), nil
}

// MatchByCode loads a match by its fixture code.
func (s *MemStore) MatchByCode(_ context.Context, gameplayID, code string) (*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.st.matchCodes[key(gameplayID, code)]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", code, league.ErrNotFound)
	}
	return copyMatch(s.st.matches[id]), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func passes(f tournament.MatchFilter, m *league.Match) bool {
	if m.GameplayID != f.GameplayID {
		return false
	}
	if f.Round != "" && m.Round != f.Round {
		return false
	}
	if len(f.Groups) > 0 && !contains(f.Groups, m.Group) {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == m.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Between) == 2 {
		a, b := f.Between[0], f.Between[1]
		if !(m.Home == a && m.Away == b) && !(m.Home == b && m.Away == a) {
			return false
		}
	}
	return !f.PlayedOnly || m.Played()
}

// Matches lists the matches passing the filter, ordered by date then id.
func (s *MemStore) Matches(_ context.Context, f tournament.MatchFilter) ([]*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*league.Match
	for _, m := range s.st.matches {
		if passes(f, m) {
			out = append(out, copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Venues lists a gameplay's custom venues ordered by id.
func (s *MemStore) Venues(_ context.Context, gameplayID string) ([]*league.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*league.Venue
	for _, v := range s.st.venues {
		if v.GameplayID == gameplayID {
			out = append(out, copyVenue(v))
		}
	}
	return out, nil
}

// Save applies the changes to a staged copy of the state and publishes it
// only when every change succeeded.
func (s *MemStore) Save(_ context.Context, ch *tournament.Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st.clone()

	if g := ch.NewGameplay; g != nil {
		if _, ok := st.gameplays[g.ID]; ok {
			return fmt.Errorf("gameplay %s: %w", g.ID, league.ErrConflict)
		}
		st.gameplays[g.ID] = copyGameplay(g)
	}
	if g := ch.Gameplay; g != nil {
		cur, ok := st.gameplays[g.ID]
		if !ok {
			return fmt.Errorf("updating gameplay %s: %w", g.ID, league.ErrNotFound)
		}
		upd := copyGameplay(cur)
		upd.CurrentDate = g.CurrentDate
		st.gameplays[g.ID] = upd
	}

	for _, t := range ch.NewTeams {
		k := key(t.GameplayID, t.Code)
		if _, ok := st.teams[k]; ok {
			return fmt.Errorf("team %s: %w", t.Code, league.ErrConflict)
		}
		st.teams[k] = copyTeam(t)
	}
	for _, t := range ch.Teams {
		k := key(t.GameplayID, t.Code)
		if _, ok := st.teams[k]; !ok {
			return fmt.Errorf("updating team %s: %w", t.Code, league.ErrNotFound)
		}
		st.teams[k] = copyTeam(t)
	}

	for _, r := range ch.Rankings {
		replaced := false
		for i, cur := range st.rankings {
			if cur.GameplayID == r.GameplayID && cur.Team == r.Team && cur.Date.Equal(r.Date) {
				st.rankings[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			st.rankings = append(st.rankings, r)
		}
	}

	for _, r := range ch.NewRounds {
		k := key(r.GameplayID, r.Code)
		if _, ok := st.rounds[k]; ok {
			return fmt.Errorf("round %s: %w", r.Code, league.ErrConflict)
		}
		st.rounds[k] = copyRound(r)
	}
	for _, r := range ch.Rounds {
		k := key(r.GameplayID, r.Code)
		if _, ok := st.rounds[k]; !ok {
			return fmt.Errorf("updating round %s: %w", r.Code, league.ErrNotFound)
		}
		st.rounds[k] = copyRound(r)
	}

	var assigned []int64
	for _, m := range ch.NewMatches {
		k := key(m.GameplayID, m.Code)
		if _, ok := st.matchCodes[k]; ok {
			return fmt.Errorf("match %s: %w", m.Code, league.ErrConflict)
		}
		st.nextMatch++
		c := copyMatch(m)
		c.ID = st.nextMatch
		st.matches[c.ID] = c
		st.matchCodes[k] = c.ID
		assigned = append(assigned, c.ID)
	}
	for _, m := range ch.Matches {
		cur, ok := st.matches[m.ID]
		if !ok || cur.GameplayID != m.GameplayID {
			return fmt.Errorf("updating match %d: %w", m.ID, league.ErrNotFound)
		}
		st.matches[m.ID] = copyMatch(m)
	}

	var venueIDs []int64
	for _, v := range ch.NewVenues {
		for _, cur := range st.venues {
			if cur.GameplayID == v.GameplayID && cur.Name == v.Name {
				return fmt.Errorf("venue %s: %w", v.Name, league.ErrConflict)
			}
		}
		st.nextVenue++
		c := copyVenue(v)
		c.ID = st.nextVenue
		st.venues = append(st.venues, c)
		venueIDs = append(venueIDs, c.ID)
	}

	// publish, then hand the new ids back
	s.st = st
	for i, m := range ch.NewMatches {
		m.ID = assigned[i]
	}
	for i, v := range ch.NewVenues {
		v.ID = venueIDs[i]
	}
	return nil
}
