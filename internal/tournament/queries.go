package tournament

import (
	"context"
	"fmt"
	"sort"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// MatchesByRound lists a round's fixtures. A positive matchday keeps only the
// fixtures of that matchday (or leg, for knockout ties); groups narrows the
// list to the named groups.
func (s *Service) MatchesByRound(ctx context.Context, gameplayID, round string, matchday int, groups []string) ([]*league.Match, error) {
	if _, err := s.repo.Gameplay(ctx, gameplayID); err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", gameplayID, err)
	}
	if matchday < 0 {
		return nil, fmt.Errorf("matchday %d: %w", matchday, league.ErrValidation)
	}
	matches, err := s.repo.Matches(ctx, MatchFilter{GameplayID: gameplayID, Round: round, Groups: groups})
	if err != nil {
		return nil, fmt.Errorf("loading matches of %s: %w", round, err)
	}
	if matchday == 0 {
		return matches, nil
	}
	out := make([]*league.Match, 0, len(matches))
	for _, m := range matches {
		switch {
		case m.Matchday == matchday, m.Matchday == 0 && m.Leg == matchday:
			out = append(out, m)
		case m.Matchday == 0 && m.Leg == 0:
			out = append(out, m)
		}
	}
	return out, nil
}

// GroupTable returns one group's current table.
func (s *Service) GroupTable(ctx context.Context, gameplayID, round, group string) (*league.Group, error) {
	r, err := s.repo.Round(ctx, gameplayID, round)
	if err != nil {
		return nil, fmt.Errorf("loading round %s: %w", round, err)
	}
	g := r.Group(group)
	if g == nil {
		return nil, fmt.Errorf("group %s of %s: %w", group, round, league.ErrNotFound)
	}
	return g, nil
}

// Overview sums up every meeting between two teams.
type Overview struct {
	TotalMatches int `json:"totalMatches"`
	Team1Wins    int `json:"team1Wins"`
	Team2Wins    int `json:"team2Wins"`
	Draws        int `json:"draws"`
	Team1Goals   int `json:"team1Goals"`
	Team2Goals   int `json:"team2Goals"`
}

// HeadToHeadResult is the meeting history of two teams.
type HeadToHeadResult struct {
	Team1    string          `json:"team1"`
	Team2    string          `json:"team2"`
	Overview Overview        `json:"overview"`
	Recent   []*league.Match `json:"recentMatches"`
}

// HeadToHead summarises the played matches between two teams. Draws are
// counted on the final score, so a tie settled on penalties is a draw. Recent
// holds at most limit matches, newest first.
func (s *Service) HeadToHead(ctx context.Context, gameplayID, team1, team2 string, limit int) (*HeadToHeadResult, error) {
	if team1 == "" || team2 == "" || team1 == team2 {
		return nil, fmt.Errorf("head-to-head needs two different teams: %w", league.ErrValidation)
	}
	if limit <= 0 {
		limit = 5
	}
	teams, err := s.teamsByCode(ctx, gameplayID)
	if err != nil {
		return nil, err
	}
	for _, code := range []string{team1, team2} {
		if teams[code] == nil {
			return nil, fmt.Errorf("team %s: %w", code, league.ErrNotFound)
		}
	}
	matches, err := s.repo.Matches(ctx, MatchFilter{GameplayID: gameplayID, Between: []string{team1, team2}, PlayedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("loading meetings of %s and %s: %w", team1, team2, err)
	}

	res := &HeadToHeadResult{Team1: team1, Team2: team2}
	for _, m := range matches {
		g1, g2 := *m.HomeGoals, *m.AwayGoals
		if m.Home != team1 {
			g1, g2 = g2, g1
		}
		res.Overview.TotalMatches++
		res.Overview.Team1Goals += g1
		res.Overview.Team2Goals += g2
		switch {
		case g1 > g2:
			res.Overview.Team1Wins++
		case g1 < g2:
			res.Overview.Team2Wins++
		default:
			res.Overview.Draws++
		}
	}

	recent := append([]*league.Match{}, matches...)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].Date.Equal(recent[j].Date) {
			return recent[i].Date.After(recent[j].Date)
		}
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	res.Recent = recent
	return res, nil
}

// TeamRankings returns a team's ranking history, newest first, ending with
// its catalog entry.
func (s *Service) TeamRankings(ctx context.Context, gameplayID, team string) ([]league.Ranking, error) {
	if _, ok := s.catalog.Team(team); !ok {
		return nil, fmt.Errorf("team %s: %w", team, league.ErrNotFound)
	}
	history, err := s.repo.RankingHistory(ctx, gameplayID, team)
	if err != nil {
		return nil, fmt.Errorf("loading rankings of %s: %w", team, err)
	}
	initial, err := s.catalog.InitialRankings()
	if err != nil {
		return nil, err
	}
	for _, r := range initial {
		if r.Team != team {
			continue
		}
		dup := false
		for _, h := range history {
			if h.GameplayID == "" && h.Date.Equal(r.Date) {
				dup = true
				break
			}
		}
		if !dup {
			history = append(history, r)
		}
		break
	}
	return history, nil
}

// QualificationOddsRequest asks for finishing-position odds of one group.
type QualificationOddsRequest struct {
	GameplayID string `validate:"required"`
	RoundCode  string `validate:"required"`
	Group      string `validate:"required"`
	Runs       int    `validate:"gte=1,lte=100000"`
}

// QualificationOdds plays the group's remaining matches Runs times.
func (s *Service) QualificationOdds(ctx context.Context, req QualificationOddsRequest) ([]league.Prediction, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	grp, err := s.GroupTable(ctx, req.GameplayID, req.RoundCode, req.Group)
	if err != nil {
		return nil, err
	}
	if len(grp.Rows) == 0 {
		return nil, fmt.Errorf("group %s is not drawn yet: %w", req.Group, league.ErrInvalidState)
	}
	matches, err := s.repo.Matches(ctx, MatchFilter{GameplayID: req.GameplayID, Round: req.RoundCode, Groups: []string{req.Group}})
	if err != nil {
		return nil, fmt.Errorf("loading matches of group %s: %w", req.Group, err)
	}
	var played, remaining []*league.Match
	for _, m := range matches {
		if m.Played() {
			played = append(played, m)
		} else {
			remaining = append(remaining, m)
		}
	}
	teams, err := s.teamsByCode(ctx, req.GameplayID)
	if err != nil {
		return nil, err
	}
	codes := groupTeams(grp)
	ranks, err := s.rankings(ctx, req.GameplayID, codes)
	if err != nil {
		return nil, err
	}
	return league.QualificationOdds(grp.Rows, played, remaining, teams, ranks, s.rng, req.Runs)
}
