package tournament

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// RecomputeStandingsRequest names the matches whose results changed.
type RecomputeStandingsRequest struct {
	GameplayID string   `validate:"required"`
	RoundCode  string   `validate:"required"`
	MatchIDs   []int64  `json:"matchIds" validate:"dive,gt=0"`
	Groups     []string `json:"groups" validate:"omitempty,dive,required"`
}

// selectGroups resolves requested group names against the round. An empty
// request selects every group.
func selectGroups(round *league.Round, names []string) ([]*league.Group, error) {
	if len(round.Groups) == 0 {
		return nil, fmt.Errorf("round %s has no group stage: %w", round.Code, league.ErrInvalidState)
	}
	if len(names) == 0 {
		out := make([]*league.Group, len(round.Groups))
		for i := range round.Groups {
			out[i] = &round.Groups[i]
		}
		return out, nil
	}
	out := make([]*league.Group, 0, len(names))
	for _, name := range names {
		g := round.Group(name)
		if g == nil {
			return nil, fmt.Errorf("group %s of round %s: %w", name, round.Code, league.ErrInvariant)
		}
		out = append(out, g)
	}
	return out, nil
}

func groupTeams(g *league.Group) []string {
	teams := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		teams[i] = r.Team
	}
	return teams
}

// RecomputeStandings rebuilds the selected group tables by replaying every
// played match of each group, then sorts them with the tie-breakers. The
// given matches must belong to the round and be played.
func (s *Service) RecomputeStandings(ctx context.Context, req RecomputeStandingsRequest) (*league.Round, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	g, _, round, err := s.loadRound(ctx, req.GameplayID, req.RoundCode)
	if err != nil {
		return nil, err
	}
	names := req.Groups

	// 1) validate the reported matches
	if len(req.MatchIDs) > 0 {
		reported, err := s.repo.Matches(ctx, MatchFilter{GameplayID: g.ID, IDs: req.MatchIDs})
		if err != nil {
			return nil, fmt.Errorf("loading matches: %w", err)
		}
		if len(reported) != len(req.MatchIDs) {
			return nil, fmt.Errorf("%d of %d matches: %w", len(reported), len(req.MatchIDs), league.ErrNotFound)
		}
		for _, m := range reported {
			if m.Round != round.Code {
				return nil, fmt.Errorf("match %s is not part of %s: %w", m.Code, round.Code, league.ErrValidation)
			}
			if !m.Played() {
				return nil, fmt.Errorf("match %s not played: %w", m.Code, league.ErrInvalidState)
			}
		}
	}
	groups, err := selectGroups(round, names)
	if err != nil {
		return nil, err
	}

	// 2) replay and sort each group
	for _, grp := range groups {
		if len(grp.Rows) == 0 {
			return nil, fmt.Errorf("group %s of %s is not drawn yet: %w", grp.Name, round.Code, league.ErrInvalidState)
		}
		matches, err := s.repo.Matches(ctx, MatchFilter{GameplayID: g.ID, Round: round.Code, Groups: []string{grp.Name}, PlayedOnly: true})
		if err != nil {
			return nil, fmt.Errorf("loading matches of group %s: %w", grp.Name, err)
		}
		teams := groupTeams(grp)
		fresh := []league.Group{{Name: grp.Name, Rows: league.NewRows(teams)}}
		if err := league.ApplyResults(fresh, matches); err != nil {
			return nil, fmt.Errorf("group %s: %w", grp.Name, err)
		}
		ranks, err := s.rankings(ctx, g.ID, teams)
		if err != nil {
			return nil, err
		}
		sorted, err := league.SortGroup(fresh[0].Rows, matches, ranks)
		if err != nil {
			return nil, fmt.Errorf("sorting group %s: %w", grp.Name, err)
		}
		grp.Rows = sorted
	}

	if err := s.repo.Save(ctx, &Changes{Rounds: []*league.Round{round}}); err != nil {
		return nil, fmt.Errorf("saving round %s: %w", round.Code, err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay": g.ID,
		"round":    round.Code,
		"groups":   len(groups),
	}).Info("standings recomputed")
	return round, nil
}

// ResolveGroupAdvancementRequest asks for advancement verdicts as of a match date.
type ResolveGroupAdvancementRequest struct {
	GameplayID string    `validate:"required"`
	RoundCode  string    `validate:"required"`
	MatchDate  time.Time `json:"matchDate" validate:"required"`
	Groups     []string  `json:"groups" validate:"omitempty,dive,required"`
}

// ranges picks the sharpest finish-range analysis the group's state allows:
// once every team has played all its matches the sorted table pins positions;
// with two matches or fewer left for any team the remaining outcomes are
// enumerated; otherwise the analytic bound is used.
func (s *Service) ranges(ctx context.Context, gameplayID, round string, grp *league.Group, legs int) (map[string]league.FinishRange, error) {
	left := league.MatchesLeft(grp.Rows, legs)
	if left <= 0 {
		return league.FixedRanges(grp.Rows), nil
	}
	if left > 2 {
		return league.FinishRanges(grp.Rows, legs), nil
	}
	all, err := s.repo.Matches(ctx, MatchFilter{GameplayID: gameplayID, Round: round, Groups: []string{grp.Name}})
	if err != nil {
		return nil, fmt.Errorf("loading matches of group %s: %w", grp.Name, err)
	}
	var remaining []*league.Match
	for _, m := range all {
		if !m.Played() {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 || len(remaining) > league.MaxEnumeratedMatches {
		return league.FinishRanges(grp.Rows, legs), nil
	}
	return league.FinishRangesExhaustive(grp.Rows, remaining)
}

// ResolveGroupAdvancement marks teams advanced, eliminated or finished as far
// as the group tables allow and enters qualifiers into their next rounds.
// Group tables must be current (see RecomputeStandings).
func (s *Service) ResolveGroupAdvancement(ctx context.Context, req ResolveGroupAdvancementRequest) (*league.Round, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	g, tmpl, round, err := s.loadRound(ctx, req.GameplayID, req.RoundCode)
	if err != nil {
		return nil, err
	}
	if tmpl.Kind != league.KindRoundRobin {
		return nil, fmt.Errorf("round %s is a knockout round: %w", round.Code, league.ErrInvalidState)
	}
	groups, err := selectGroups(round, req.Groups)
	if err != nil {
		return nil, err
	}
	next, err := s.nextRounds(ctx, g.ID, tmpl)
	if err != nil {
		return nil, err
	}

	// 1) per-group verdicts
	var decisions []league.Decision
	for _, grp := range groups {
		if len(grp.Rows) == 0 {
			return nil, fmt.Errorf("group %s of %s is not drawn yet: %w", grp.Name, round.Code, league.ErrInvalidState)
		}
		ranges, err := s.ranges(ctx, g.ID, round.Code, grp, tmpl.Legs)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, league.GroupDecisions(tmpl, grp.Name, ranges, req.MatchDate)...)
	}

	// 2) cross-group edge position
	if pos, _, ok := tmpl.EdgePosition(); ok {
		var candidates []string
		for _, grp := range round.Groups {
			if len(grp.Rows) >= pos {
				candidates = append(candidates, grp.Rows[pos-1].Team)
			}
		}
		ranks, err := s.rankings(ctx, g.ID, candidates)
		if err != nil {
			return nil, err
		}
		total := league.TotalMatchdays(len(round.Groups[0].Rows), tmpl.Legs)
		edge, err := league.EdgeDecisions(tmpl, round.Groups, total, ranks, req.MatchDate)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, edge...)
	}

	// 3) write back
	if err := league.ApplyDecisions(round, next, decisions); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &Changes{Rounds: roundList(round, next)}); err != nil {
		return nil, fmt.Errorf("saving advancement of %s: %w", round.Code, err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay":  g.ID,
		"round":     round.Code,
		"decisions": len(decisions),
	}).Info("group advancement resolved")
	return round, nil
}

// ResolveKnockoutAdvancementRequest names the deciding matches of a knockout round.
type ResolveKnockoutAdvancementRequest struct {
	GameplayID string  `validate:"required"`
	RoundCode  string  `validate:"required"`
	MatchIDs   []int64 `json:"matchIds" validate:"required,min=1,dive,gt=0"`
}

// ResolveKnockoutAdvancement settles every decided tie among the matches and
// sends winners and losers on.
func (s *Service) ResolveKnockoutAdvancement(ctx context.Context, req ResolveKnockoutAdvancementRequest) (*league.Round, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	g, tmpl, round, err := s.loadRound(ctx, req.GameplayID, req.RoundCode)
	if err != nil {
		return nil, err
	}
	if tmpl.Kind != league.KindKnockout {
		return nil, fmt.Errorf("round %s is not a knockout round: %w", round.Code, league.ErrInvalidState)
	}
	matches, err := s.repo.Matches(ctx, MatchFilter{GameplayID: g.ID, IDs: req.MatchIDs})
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	if len(matches) != len(req.MatchIDs) {
		return nil, fmt.Errorf("%d of %d matches: %w", len(matches), len(req.MatchIDs), league.ErrNotFound)
	}
	for _, m := range matches {
		if m.Round != round.Code {
			return nil, fmt.Errorf("match %s is not part of %s: %w", m.Code, round.Code, league.ErrValidation)
		}
	}

	decisions, err := league.KnockoutDecisions(tmpl, matches)
	if err != nil {
		return nil, err
	}
	next, err := s.nextRounds(ctx, g.ID, tmpl)
	if err != nil {
		return nil, err
	}
	if err := league.ApplyDecisions(round, next, decisions); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &Changes{Rounds: roundList(round, next)}); err != nil {
		return nil, fmt.Errorf("saving advancement of %s: %w", round.Code, err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay": g.ID,
		"round":    round.Code,
		"ties":     len(decisions) / 2,
	}).Info("knockout advancement resolved")
	return round, nil
}
