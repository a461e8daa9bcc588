package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

func TestDBErrKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, league.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), league.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505", Constraint: "matches_gameplay_id_code_key"}, league.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dbErr(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("dbErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	other := &pq.Error{Code: "23503"}
	if got := dbErr(other); errors.Is(got, league.ErrConflict) || errors.Is(got, league.ErrNotFound) {
		t.Errorf("foreign key violation mapped to %v", got)
	}
}

// TestPostgresRoundTrip runs against a live database named by
// WCSIM_TEST_DATABASE_URL.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("WCSIM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WCSIM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	id := uuid.NewString()
	m := &league.Match{GameplayID: id, Code: "R1-A-1", Round: "R1", Group: "A", Date: day(2), Home: "ESP", Away: "BEL"}
	err = s.Save(ctx, &tournament.Changes{
		NewGameplay: &league.Gameplay{ID: id, Name: "pg", Edition: league.EditionCustom, CurrentDate: day(1),
			Hosts: []league.Host{{Name: "ESP", Federation: "UEFA"}}},
		NewTeams:   []*league.Team{{GameplayID: id, Code: "ESP", Federation: "UEFA", Points: 1800}},
		NewRounds:  []*league.Round{{GameplayID: id, Code: "R1", Kind: league.KindRoundRobin, Legs: 1}},
		NewMatches: []*league.Match{m},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("match id not assigned")
	}

	m.HomeGoals, m.AwayGoals = league.IntPtr(1), league.IntPtr(1)
	m.HomeGoalMinutes, m.AwayGoalMinutes = []float64{12.5}, []float64{88}
	m.Shootout = &league.Shootout{HomeKicks: []bool{true}, AwayKicks: []bool{false}, HomeScore: 1, FirstKicker: "ESP"}
	if err := s.Save(ctx, &tournament.Changes{Matches: []*league.Match{m}}); err != nil {
		t.Fatalf("Save result: %v", err)
	}
	got, err := s.MatchByCode(ctx, id, "R1-A-1")
	if err != nil {
		t.Fatalf("MatchByCode: %v", err)
	}
	if !got.Played() || got.Shootout == nil || got.Shootout.FirstKicker != "ESP" || len(got.HomeGoalMinutes) != 1 {
		t.Errorf("round trip lost data: %+v", got)
	}

	err = s.Save(ctx, &tournament.Changes{NewMatches: []*league.Match{{GameplayID: id, Code: "R1-A-1", Round: "R1", Date: day(3), Home: "ESP", Away: "BEL"}}})
	if !errors.Is(err, league.ErrConflict) {
		t.Errorf("duplicate match: err = %v, want ErrConflict", err)
	}
	if _, err := s.Gameplay(ctx, uuid.NewString()); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown gameplay: err = %v, want ErrNotFound", err)
	}
}
