package tournament

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// ScheduleRoundRequest carries the draw of a round: one team list per group,
// or a single bracket-ordered list (or pairs) for a knockout round.
type ScheduleRoundRequest struct {
	GameplayID string     `validate:"required"`
	RoundCode  string     `validate:"required"`
	Groups     [][]string `json:"groups" validate:"required,min=1,dive,min=2,dive,required"`
}

// ScheduleRound creates every fixture of a round and fills its group tables
// with the drawn teams.
func (s *Service) ScheduleRound(ctx context.Context, req ScheduleRoundRequest) ([]*league.Match, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	// 1) gameplay, template and round
	g, tmpl, round, err := s.loadRound(ctx, req.GameplayID, req.RoundCode)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Matches(ctx, MatchFilter{GameplayID: g.ID, Round: round.Code})
	if err != nil {
		return nil, fmt.Errorf("loading matches of %s: %w", round.Code, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("round %s already has %d fixtures: %w", round.Code, len(existing), league.ErrConflict)
	}
	teams, err := s.teamsByCode(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	for _, group := range req.Groups {
		for _, code := range group {
			if _, ok := teams[code]; !ok {
				return nil, fmt.Errorf("team %s: %w", code, league.ErrNotFound)
			}
		}
	}

	// 2) venues by match number
	var venues []*league.Venue
	switch {
	case tmpl.AllocateVenues:
		if venues, err = s.allocate(ctx, g); err != nil {
			return nil, err
		}
	case len(tmpl.VenueSlotGroups) > 0:
		pool, err := s.venuePool(ctx, g)
		if err != nil {
			return nil, err
		}
		venues = league.FixedSlotVenues(pool, tmpl.VenueSlotGroups)
	}

	// 3) fixtures
	matches, err := league.Schedule(league.ScheduleInput{
		GameplayID: g.ID,
		Template:   tmpl,
		Groups:     req.Groups,
		Venues:     venues,
		HomeVenues: s.catalog.HomeVenues(),
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling %s: %w", round.Code, err)
	}

	// 4) group tables and late entries
	if tmpl.Kind == league.KindRoundRobin {
		for i, group := range req.Groups {
			name := tmpl.GroupName(i)
			grp := round.Group(name)
			if grp == nil {
				round.Groups = append(round.Groups, league.Group{Name: name})
				grp = &round.Groups[len(round.Groups)-1]
			}
			grp.Rows = league.NewRows(group)
		}
	}
	for _, group := range req.Groups {
		for _, code := range group {
			if round.Team(code) == nil {
				round.Teams = append(round.Teams, league.RoundTeam{Team: code, Status: league.StatusUndetermined})
			}
		}
	}

	if err := s.repo.Save(ctx, &Changes{NewMatches: matches, Rounds: []*league.Round{round}}); err != nil {
		return nil, fmt.Errorf("saving fixtures of %s: %w", round.Code, err)
	}
	s.log.WithFields(logrus.Fields{
		"gameplay": g.ID,
		"round":    round.Code,
		"matches":  len(matches),
	}).Info("round scheduled")
	return matches, nil
}

// venueSeed seeds every venue allocation, so the plan shown before the draw
// is the plan the group stage is scheduled with.
const venueSeed = 42

func (s *Service) allocate(ctx context.Context, g *league.Gameplay) ([]*league.Venue, error) {
	return s.venuePlan(ctx, g, g.HostsOrdered())
}

func (s *Service) venuePlan(ctx context.Context, g *league.Gameplay, hostOrder []string) ([]*league.Venue, error) {
	pool, err := s.venuePool(ctx, g)
	if err != nil {
		return nil, err
	}
	plan, err := league.AllocateVenues(pool, hostOrder, league.NewLockedRand(venueSeed))
	if err != nil {
		return nil, fmt.Errorf("allocating venues: %w", err)
	}
	return plan, nil
}

// AllocateVenuesRequest asks for the group-stage venue plan of a gameplay.
// Edition and HostOrder default to the gameplay's own.
type AllocateVenuesRequest struct {
	GameplayID string         `validate:"required"`
	Edition    league.Edition `json:"edition" validate:"omitempty,oneof=north_america centenario custom"`
	HostOrder  []string       `json:"hostOrder" validate:"omitempty,dive,required"`
}

// VenueSlot is one entry of the venue plan.
type VenueSlot struct {
	Number int           `json:"number"`
	Venue  *league.Venue `json:"venue"`
}

// AllocateVenues returns the venue of each group-stage match number.
func (s *Service) AllocateVenues(ctx context.Context, req AllocateVenuesRequest) ([]VenueSlot, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	g, err := s.repo.Gameplay(ctx, req.GameplayID)
	if err != nil {
		return nil, fmt.Errorf("loading gameplay %s: %w", req.GameplayID, err)
	}
	view := *g
	if req.Edition != "" {
		view.Edition = req.Edition
	}
	hostOrder := g.HostsOrdered()
	if len(req.HostOrder) > 0 {
		hostOrder = req.HostOrder
	}
	plan, err := s.venuePlan(ctx, &view, hostOrder)
	if err != nil {
		return nil, err
	}
	out := make([]VenueSlot, len(plan))
	for i, v := range plan {
		out[i] = VenueSlot{Number: i + 1, Venue: v}
	}
	return out, nil
}
