package tournament

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// CreateGameplayRequest starts a new playthrough.
type CreateGameplayRequest struct {
	Name    string         `json:"name" validate:"required,max=100"`
	Edition league.Edition `json:"edition" validate:"required,oneof=north_america centenario custom"`
	Hosts   []league.Host  `json:"hosts" validate:"required,min=1,max=4,dive"`
}

// CreateGameplay registers a gameplay starting on the catalog's start date.
func (s *Service) CreateGameplay(ctx context.Context, req CreateGameplayRequest) (*league.Gameplay, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, h := range req.Hosts {
		if seen[h.Name] {
			return nil, fmt.Errorf("host %s listed twice: %w", h.Name, league.ErrValidation)
		}
		seen[h.Name] = true
		ref, ok := s.catalog.Team(h.Name)
		if !ok {
			return nil, fmt.Errorf("host %s: %w", h.Name, league.ErrNotFound)
		}
		if ref.Federation != h.Federation {
			return nil, fmt.Errorf("host %s belongs to %s, not %s: %w", h.Name, ref.Federation, h.Federation, league.ErrValidation)
		}
	}
	start, err := s.catalog.Start()
	if err != nil {
		return nil, err
	}

	g := &league.Gameplay{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Edition:     req.Edition,
		Hosts:       append([]league.Host{}, req.Hosts...),
		CurrentDate: start,
	}
	if err := s.repo.Save(ctx, &Changes{NewGameplay: g}); err != nil {
		return nil, fmt.Errorf("saving gameplay: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay": g.ID,
		"edition":  g.Edition,
		"hosts":    g.HostsOrdered(),
	}).Info("gameplay created")
	return g, nil
}

// fallbackParams is used when a team's history cannot support a regression:
// a flat line at its average goals.
func fallbackParams(sum, n int) league.LinearParams {
	if n == 0 {
		return league.LinearParams{Intercept: 1}
	}
	return league.LinearParams{Intercept: float64(sum) / float64(n)}
}

// CreateTeams instantiates every catalog team for the gameplay.
func (s *Service) CreateTeams(ctx context.Context, gameplayID string) ([]*league.Team, error) {
	g, err := s.repo.Gameplay(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", gameplayID, err)
	}

	teams := make([]*league.Team, 0, len(s.catalog.Teams))
	for _, ref := range s.catalog.Teams {
		t := &league.Team{
			GameplayID: g.ID,
			Code:       ref.Code,
			Federation: ref.Federation,
			IsHost:     g.IsHost(ref.Code),
			Points:     ref.InitialPoints,
			XGoalData:  ref.XGoalData,
		}
		var ok bool
		if t.XGoalFor, t.XGoalAgainst, ok = league.LinearFit(ref.XGoalData); !ok {
			t.XGoalFor = fallbackParams(ref.XGoalData.SumGoalsFor, ref.XGoalData.N)
			t.XGoalAgainst = fallbackParams(ref.XGoalData.SumGoalsAgainst, ref.XGoalData.N)
		}
		teams = append(teams, t)
	}
	if err := s.repo.Save(ctx, &Changes{NewTeams: teams}); err != nil {
		return nil, fmt.Errorf("saving teams: %w", err)
	}
	s.log.WithFields(logrus.Fields{"gameplay": g.ID, "teams": len(teams)}).Info("teams created")
	return teams, nil
}

// CreateRounds instantiates every template that applies to the gameplay's
// hosts, with entry teams and empty groups.
func (s *Service) CreateRounds(ctx context.Context, gameplayID string) ([]*league.Round, error) {
	g, err := s.repo.Gameplay(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", gameplayID, err)
	}

	var rounds []*league.Round
	for _, tmpl := range s.catalog.RoundsForHosts(g.Hosts) {
		rounds = append(rounds, tmpl.NewRound(g.ID, s.catalog.EntryTeams(tmpl, g.Hosts)))
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("no round applies to the hosts of %s: %w", g.ID, league.ErrInvariant)
	}
	if err := s.repo.Save(ctx, &Changes{NewRounds: rounds}); err != nil {
		return nil, fmt.Errorf("saving rounds: %w", err)
	}
	s.log.WithFields(logrus.Fields{"gameplay": g.ID, "rounds": len(rounds)}).Info("rounds created")
	return rounds, nil
}

// CreateVenuesRequest supplies the venue pool of a custom gameplay.
type CreateVenuesRequest struct {
	GameplayID string         `validate:"required"`
	Venues     []league.Venue `json:"venues" validate:"required,min=1,dive"`
}

// CreateCustomVenues stores the venues of a custom-edition gameplay.
func (s *Service) CreateCustomVenues(ctx context.Context, req CreateVenuesRequest) ([]*league.Venue, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	g, err := s.repo.Gameplay(ctx, req.GameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", req.GameplayID, err)
	}
	if g.Edition != league.EditionCustom {
		return nil, fmt.Errorf("gameplay %s uses the %s venue pool: %w", g.ID, g.Edition, league.ErrInvalidState)
	}

	venues := make([]*league.Venue, len(req.Venues))
	for i := range req.Venues {
		v := req.Venues[i]
		v.ID = 0
		v.GameplayID = g.ID
		v.Edition = league.EditionCustom
		venues[i] = &v
	}
	if err := s.repo.Save(ctx, &Changes{NewVenues: venues}); err != nil {
		return nil, fmt.Errorf("saving venues: %w", err)
	}
	s.log.WithFields(logrus.Fields{"gameplay": g.ID, "venues": len(venues)}).Info("custom venues created")
	return venues, nil
}

// PublishRankings writes a gameplay-scoped ranking table from the teams'
// current points. date defaults to the gameplay's current date.
func (s *Service) PublishRankings(ctx context.Context, gameplayID string, date *time.Time) ([]league.Ranking, error) {
	g, err := s.repo.Gameplay(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", gameplayID, err)
	}
	teams, err := s.repo.Teams(ctx, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("gameplay %s has no teams: %w", gameplayID, league.ErrInvalidState)
	}
	on := g.CurrentDate
	if date != nil {
		on = *date
	}

	sorted := append([]*league.Team{}, teams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].Code < sorted[j].Code
	})
	ranks := make([]league.Ranking, len(sorted))
	for i, t := range sorted {
		ranks[i] = league.Ranking{GameplayID: g.ID, Team: t.Code, Date: on, Position: i + 1, Points: t.Points}
	}
	if err := s.repo.Save(ctx, &Changes{Rankings: ranks}); err != nil {
		return nil, fmt.Errorf("saving rankings: %w", err)
	}
	s.log.WithFields(logrus.Fields{"gameplay": g.ID, "date": on.Format("2006-01-02")}).Info("rankings published")
	return ranks, nil
}
