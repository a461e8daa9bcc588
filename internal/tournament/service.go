// Package tournament drives a gameplay forward: every exported operation is
// one unit of work that loads state, runs the league core and persists the
// result through a single Repository.Save call.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/catalog"
	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// Service is the progression orchestrator.
type Service struct {
	repo     Repository
	catalog  *catalog.Catalog
	rng      league.Rand
	log      *logrus.Entry
	validate *validator.Validate
}

// NewService wires a service. rng must be safe for concurrent use when the
// service is shared between requests (see league.NewLockedRand).
func NewService(repo Repository, cat *catalog.Catalog, rng league.Rand, logger *logrus.Entry) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		rng:      rng,
		log:      logger.WithField("component", "tournament"),
		validate: validator.New(),
	}
}

func (s *Service) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, league.ErrValidation)
	}
	return nil
}

// loadRound fetches the gameplay, the template that applies to its hosts and
// the gameplay's round.
func (s *Service) loadRound(ctx context.Context, gameplayID, code string) (*league.Gameplay, *league.RoundTemplate, *league.Round, error) {
	g, err := s.repo.Gameplay(ctx, gameplayID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading gameplay %s: %w", gameplayID, err)
	}
	tmpl, err := s.catalog.Template(g.Hosts, code)
	if err != nil {
		return nil, nil, nil, err
	}
	round, err := s.repo.Round(ctx, gameplayID, code)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading round %s: %w", code, err)
	}
	return g, tmpl, round, nil
}

// rankings returns the current ranking position of each requested team:
// the newest gameplay-scoped entry, else the newest global one, else the
// catalog's initial ranking. A team without any ranking is an error.
func (s *Service) rankings(ctx context.Context, gameplayID string, teams []string) (map[string]int, error) {
	latest, err := s.repo.LatestRankings(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading rankings: %w", err)
	}
	var initial map[string]int
	out := make(map[string]int, len(teams))
	for _, code := range teams {
		if r, ok := latest[code]; ok {
			out[code] = r.Position
			continue
		}
		if initial == nil {
			initial, err = s.initialPositions()
			if err != nil {
				return nil, err
			}
		}
		pos, ok := initial[code]
		if !ok {
			return nil, fmt.Errorf("ranking of %s: %w", code, league.ErrNotFound)
		}
		out[code] = pos
	}
	return out, nil
}

func (s *Service) initialPositions() (map[string]int, error) {
	ranks, err := s.catalog.InitialRankings()
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(ranks))
	for _, r := range ranks {
		m[r.Team] = r.Position
	}
	return m, nil
}

// teamsByCode loads the gameplay's teams keyed by code.
func (s *Service) teamsByCode(ctx context.Context, gameplayID string) (map[string]*league.Team, error) {
	teams, err := s.repo.Teams(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	m := make(map[string]*league.Team, len(teams))
	for _, t := range teams {
		m[t.Code] = t
	}
	return m, nil
}

// nextRounds loads the rounds a template can send teams to. Rounds missing
// from the gameplay are left out; ApplyDecisions reports them if needed.
func (s *Service) nextRounds(ctx context.Context, gameplayID string, tmpl *league.RoundTemplate) (map[string]*league.Round, error) {
	out := map[string]*league.Round{}
	for _, code := range tmpl.NextRounds() {
		r, err := s.repo.Round(ctx, gameplayID, code)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("loading next round %s: %w", code, err)
		}
		out[code] = r
	}
	return out, nil
}

func roundList(current *league.Round, next map[string]*league.Round) []*league.Round {
	out := []*league.Round{current}
	codes := make([]string, 0, len(next))
	for code := range next {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		out = append(out, next[code])
	}
	return out
}

// venuePool is the gameplay's custom venues or its edition's catalog pool.
func (s *Service) venuePool(ctx context.Context, g *league.Gameplay) ([]*league.Venue, error) {
	if g.Edition == league.EditionCustom {
		venues, err := s.repo.Venues(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("loading custom venues: %w", err)
		}
		return venues, nil
	}
	venues := s.catalog.EditionVenues(g.Edition)
	if len(venues) == 0 {
		return nil, fmt.Errorf("venues of edition %s: %w", g.Edition, league.ErrNotFound)
	}
	return venues, nil
}

func isNotFound(err error) bool { return errors.Is(err, league.ErrNotFound) }
