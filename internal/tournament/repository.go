package tournament

import (
	"context"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

// Repository is the persistence contract of the orchestrator. Reads return
// league.ErrNotFound for unknown records; Save applies every change of one
// operation atomically.
type Repository interface {
	Gameplay(ctx context.Context, id string) (*league.Gameplay, error)
	Teams(ctx context.Context, gameplayID string) ([]*league.Team, error)
	// LatestRankings returns, per team, the newest ranking scoped to the
	// gameplay, falling back to the newest global entry.
	LatestRankings(ctx context.Context, gameplayID string) (map[string]league.Ranking, error)
	// RankingHistory lists gameplay-scoped and global entries of a team, newest first.
	RankingHistory(ctx context.Context, gameplayID, team string) ([]league.Ranking, error)
	Round(ctx context.Context, gameplayID, code string) (*league.Round, error)
	Match(ctx context.Context, gameplayID string, id int64) (*league.Match, error)
	MatchByCode(ctx context.Context, gameplayID, code string) (*league.Match, error)
	// Matches lists matches ordered by date, then id.
	Matches(ctx context.Context, f MatchFilter) ([]*league.Match, error)
	Venues(ctx context.Context, gameplayID string) ([]*league.Venue, error)
	Save(ctx context.Context, ch *Changes) error
}

// MatchFilter narrows Matches. Zero fields do not filter.
type MatchFilter struct {
	GameplayID string
	Round      string
	Groups     []string
	IDs        []int64
	// Between holds two team codes; only matches between them are returned.
	Between    []string
	PlayedOnly bool
}

// Changes is the unit of work of one operation. New* records are inserted
// (duplicates fail with league.ErrConflict); the others are updated in place.
type Changes struct {
	NewGameplay *league.Gameplay
	Gameplay    *league.Gameplay
	NewTeams    []*league.Team
	Teams       []*league.Team
	Rankings    []league.Ranking
	NewRounds   []*league.Round
	Rounds      []*league.Round
	// NewMatches get their IDs assigned by Save.
	NewMatches []*league.Match
	Matches    []*league.Match
	NewVenues  []*league.Venue
}
