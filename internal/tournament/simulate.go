package tournament

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// SimulateMatchRequest plays one fixture. Any goal field that is set forces
// that part of the score.
type SimulateMatchRequest struct {
	GameplayID         string `validate:"required"`
	MatchID            int64  `validate:"gt=0"`
	HomeGoals          *int   `json:"homeGoals" validate:"omitempty,gte=0,lt=20"`
	AwayGoals          *int   `json:"awayGoals" validate:"omitempty,gte=0,lt=20"`
	HomeExtraTimeGoals *int   `json:"homeExtraTimeGoals" validate:"omitempty,gte=0,lt=10"`
	AwayExtraTimeGoals *int   `json:"awayExtraTimeGoals" validate:"omitempty,gte=0,lt=10"`
	PenaltyWinner      string `json:"penaltyWinner"`
}

// SimulateMatch plays a scheduled match, updates both teams' ratings and
// goal models, seeds the return leg of a first leg and moves the gameplay
// clock forward.
func (s *Service) SimulateMatch(ctx context.Context, req SimulateMatchRequest) (*league.Match, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	// 1) load
	g, err := s.repo.Gameplay(ctx, req.GameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", req.GameplayID, err)
	}
	m, err := s.repo.Match(ctx, g.ID, req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("loading match %d: %w", req.MatchID, err)
	}
	if m.Played() {
		return nil, fmt.Errorf("match %s already played: %w", m.Code, league.ErrInvalidState)
	}
	teams, err := s.teamsByCode(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	home, away := teams[m.Home], teams[m.Away]
	if home == nil || away == nil {
		return nil, fmt.Errorf("teams of match %s: %w", m.Code, league.ErrNotFound)
	}
	ranks, err := s.rankings(ctx, g.ID, []string{m.Home, m.Away})
	if err != nil {
		return nil, err
	}
	rankDiff := ranks[m.Home] - ranks[m.Away]

	// 2) play
	out, err := league.Play(m, home, away, rankDiff, s.rng, league.Overrides{
		HomeGoals:          req.HomeGoals,
		AwayGoals:          req.AwayGoals,
		HomeExtraTimeGoals: req.HomeExtraTimeGoals,
		AwayExtraTimeGoals: req.AwayExtraTimeGoals,
		PenaltyWinner:      req.PenaltyWinner,
	})
	if err != nil {
		return nil, err
	}

	// 3) ratings move on the final score, extra time included, while the goal
	// models learn from regulation goals only
	league.UpdateRatings(home, away, m.Round, out)
	league.RecordGoals(home, out.HomeRegulation, out.AwayRegulation, rankDiff)
	league.RecordGoals(away, out.AwayRegulation, out.HomeRegulation, -rankDiff)

	ch := &Changes{Matches: []*league.Match{m}, Teams: []*league.Team{home, away}}

	// 4) return leg
	if code, ok := league.SecondLegCode(m.Code); ok && m.Leg == 1 {
		second, err := s.repo.MatchByCode(ctx, g.ID, code)
		switch {
		case err == nil:
			if err := league.CarryAggregates(m, second); err != nil {
				return nil, err
			}
			ch.Matches = append(ch.Matches, second)
		case !isNotFound(err):
			return nil, fmt.Errorf("loading second leg %s: %w", code, err)
		}
	}

	// 5) clock
	if m.Date.After(g.CurrentDate) {
		g.CurrentDate = m.Date
		ch.Gameplay = g
	}

	if err := s.repo.Save(ctx, ch); err != nil {
		return nil, fmt.Errorf("saving match %s: %w", m.Code, err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay": g.ID,
		"match":    m.Code,
		"score":    m.ScoreLine(),
	}).Info("match simulated")
	return m, nil
}
