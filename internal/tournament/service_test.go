package tournament_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/catalog"
	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/store"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

var northAmerica = []league.Host{
	{Name: "MEX", Order: 1, Federation: "CONCACAF"},
	{Name: "USA", Order: 2, Federation: "CONCACAF"},
	{Name: "CAN", Order: 3, Federation: "CONCACAF"},
}

var ofcGroups = [][]string{{"NZL", "FIJ", "TAH", "SOL"}, {"VAN", "PNG", "NCL", "SAM"}}

type fixture struct {
	svc  *tournament.Service
	repo *store.MemStore
	g    *league.Gameplay
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newService(t *testing.T) (*tournament.Service, *store.MemStore) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	repo := store.NewMemStore()
	return tournament.NewService(repo, cat, league.NewLockedRand(11), quietLogger()), repo
}

// setup creates a north_america gameplay with its teams and rounds.
func setup(t *testing.T) *fixture {
	t.Helper()
	svc, repo := newService(t)
	ctx := context.Background()
	g, err := svc.CreateGameplay(ctx, tournament.CreateGameplayRequest{
		Name: "test", Edition: league.EditionNorthAmerica, Hosts: northAmerica,
	})
	if err != nil {
		t.Fatalf("CreateGameplay: %v", err)
	}
	if _, err := svc.CreateTeams(ctx, g.ID); err != nil {
		t.Fatalf("CreateTeams: %v", err)
	}
	if _, err := svc.CreateRounds(ctx, g.ID); err != nil {
		t.Fatalf("CreateRounds: %v", err)
	}
	return &fixture{svc: svc, repo: repo, g: g}
}

func (f *fixture) schedule(t *testing.T, round string, groups [][]string) []*league.Match {
	t.Helper()
	matches, err := f.svc.ScheduleRound(context.Background(), tournament.ScheduleRoundRequest{
		GameplayID: f.g.ID, RoundCode: round, Groups: groups,
	})
	if err != nil {
		t.Fatalf("ScheduleRound %s: %v", round, err)
	}
	return matches
}

func (f *fixture) play(t *testing.T, id int64, home, away int) *league.Match {
	t.Helper()
	m, err := f.svc.SimulateMatch(context.Background(), tournament.SimulateMatchRequest{
		GameplayID: f.g.ID, MatchID: id, HomeGoals: league.IntPtr(home), AwayGoals: league.IntPtr(away),
	})
	if err != nil {
		t.Fatalf("SimulateMatch %d: %v", id, err)
	}
	return m
}

// playByStrength decides every match by the teams' order in their group: the
// team listed first wins 2-0.
func (f *fixture) playByStrength(t *testing.T, matches []*league.Match, groups [][]string) {
	t.Helper()
	strength := map[string]int{}
	for _, g := range groups {
		for i, team := range g {
			strength[team] = len(g) - i
		}
	}
	for _, m := range matches {
		if strength[m.Home] > strength[m.Away] {
			f.play(t, m.ID, 2, 0)
		} else {
			f.play(t, m.ID, 0, 2)
		}
	}
}

func TestCreateGameplayValidation(t *testing.T) {
	svc, _ := newService(t)
	tests := []struct {
		name string
		req  tournament.CreateGameplayRequest
		want error
	}{
		{"missing name", tournament.CreateGameplayRequest{Edition: league.EditionNorthAmerica, Hosts: northAmerica}, league.ErrValidation},
		{"bad edition", tournament.CreateGameplayRequest{Name: "x", Edition: "moon", Hosts: northAmerica}, league.ErrValidation},
		{"no hosts", tournament.CreateGameplayRequest{Name: "x", Edition: league.EditionNorthAmerica}, league.ErrValidation},
		{"duplicate host", tournament.CreateGameplayRequest{Name: "x", Edition: league.EditionNorthAmerica,
			Hosts: []league.Host{{Name: "USA", Federation: "CONCACAF"}, {Name: "USA", Order: 1, Federation: "CONCACAF"}}}, league.ErrValidation},
		{"unknown host", tournament.CreateGameplayRequest{Name: "x", Edition: league.EditionCustom,
			Hosts: []league.Host{{Name: "ATL", Federation: "UEFA"}}}, league.ErrNotFound},
		{"wrong federation", tournament.CreateGameplayRequest{Name: "x", Edition: league.EditionCustom,
			Hosts: []league.Host{{Name: "USA", Federation: "UEFA"}}}, league.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGameplay(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetupCreatesTeamsAndRounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	teams, err := f.repo.Teams(ctx, f.g.ID)
	if err != nil {
		t.Fatal(err)
	}
	hosts := 0
	for _, tm := range teams {
		if tm.IsHost {
			hosts++
		}
	}
	if hosts != 3 {
		t.Errorf("%d host teams, want 3", hosts)
	}

	ofc, err := f.repo.Round(ctx, f.g.ID, "OFC-1st")
	if err != nil {
		t.Fatal(err)
	}
	if len(ofc.Teams) != 8 || len(ofc.Groups) != 2 {
		t.Errorf("OFC-1st has %d teams and %d groups", len(ofc.Teams), len(ofc.Groups))
	}
	gs, err := f.repo.Round(ctx, f.g.ID, "FIFA-WC-GS")
	if err != nil {
		t.Fatal(err)
	}
	if len(gs.Teams) != 3 || gs.Teams[0].Team != "MEX" {
		t.Errorf("final tournament entries %+v", gs.Teams)
	}

	if _, err := f.svc.CreateTeams(ctx, f.g.ID); !errors.Is(err, league.ErrConflict) {
		t.Errorf("second CreateTeams: err = %v, want ErrConflict", err)
	}
	if _, err := f.svc.CreateTeams(ctx, "missing"); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown gameplay: err = %v, want ErrNotFound", err)
	}
}

func TestScheduleRound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	matches := f.schedule(t, "OFC-1st", ofcGroups)
	if len(matches) != 12 {
		t.Fatalf("got %d fixtures, want 12", len(matches))
	}
	for _, m := range matches {
		if m.ID == 0 || m.Venue == "" || m.Date.IsZero() {
			t.Errorf("incomplete fixture %+v", m)
		}
	}
	round, _ := f.repo.Round(ctx, f.g.ID, "OFC-1st")
	if len(round.Group("A").Rows) != 4 || len(round.Group("B").Rows) != 4 {
		t.Errorf("group tables not drawn: %+v", round.Groups)
	}

	md1, err := f.svc.MatchesByRound(ctx, f.g.ID, "OFC-1st", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(md1) != 4 {
		t.Errorf("matchday 1 has %d fixtures, want 4", len(md1))
	}
	groupA, _ := f.svc.MatchesByRound(ctx, f.g.ID, "OFC-1st", 0, []string{"A"})
	if len(groupA) != 6 {
		t.Errorf("group A has %d fixtures, want 6", len(groupA))
	}

	_, err = f.svc.ScheduleRound(ctx, tournament.ScheduleRoundRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", Groups: ofcGroups})
	if !errors.Is(err, league.ErrConflict) {
		t.Errorf("rescheduling: err = %v, want ErrConflict", err)
	}
	_, err = f.svc.ScheduleRound(ctx, tournament.ScheduleRoundRequest{GameplayID: f.g.ID, RoundCode: "OFC-2nd", Groups: [][]string{{"NZL", "XXX", "FIJ", "TAH"}}})
	if !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown team: err = %v, want ErrNotFound", err)
	}
	_, err = f.svc.ScheduleRound(ctx, tournament.ScheduleRoundRequest{GameplayID: f.g.ID, RoundCode: "OFC-2nd", Groups: [][]string{{"NZL"}}})
	if !errors.Is(err, league.ErrValidation) {
		t.Errorf("one-team group: err = %v, want ErrValidation", err)
	}
}

func TestSimulateMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	matches := f.schedule(t, "OFC-1st", ofcGroups)
	first := matches[0]

	before, _ := f.repo.Teams(ctx, f.g.ID)
	points := map[string]float64{}
	samples := map[string]int{}
	for _, tm := range before {
		points[tm.Code] = tm.Points
		samples[tm.Code] = tm.XGoalData.N
	}

	m := f.play(t, first.ID, 2, 1)
	if *m.HomeGoals != 2 || *m.AwayGoals != 1 || len(m.HomeGoalMinutes) != 2 || len(m.AwayGoalMinutes) != 1 {
		t.Errorf("unexpected result %s %v %v", m.ScoreLine(), m.HomeGoalMinutes, m.AwayGoalMinutes)
	}

	after, _ := f.repo.Teams(ctx, f.g.ID)
	for _, tm := range after {
		switch tm.Code {
		case m.Home:
			if tm.Points <= points[tm.Code] {
				t.Errorf("winner %s points %v -> %v", tm.Code, points[tm.Code], tm.Points)
			}
			if tm.XGoalData.N != samples[tm.Code]+1 {
				t.Errorf("goal statistics of %s not recorded", tm.Code)
			}
		case m.Away:
			if tm.Points > points[tm.Code] {
				t.Errorf("loser %s points %v -> %v", tm.Code, points[tm.Code], tm.Points)
			}
		}
	}

	g, _ := f.repo.Gameplay(ctx, f.g.ID)
	if !g.CurrentDate.Equal(m.Date) {
		t.Errorf("clock at %v, want %v", g.CurrentDate, m.Date)
	}

	_, err := f.svc.SimulateMatch(ctx, tournament.SimulateMatchRequest{GameplayID: f.g.ID, MatchID: first.ID})
	if !errors.Is(err, league.ErrInvalidState) {
		t.Errorf("re-simulating: err = %v, want ErrInvalidState", err)
	}
	_, err = f.svc.SimulateMatch(ctx, tournament.SimulateMatchRequest{GameplayID: f.g.ID, MatchID: 9999})
	if !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown match: err = %v, want ErrNotFound", err)
	}
	_, err = f.svc.SimulateMatch(ctx, tournament.SimulateMatchRequest{GameplayID: f.g.ID, MatchID: matches[1].ID, HomeGoals: league.IntPtr(25)})
	if !errors.Is(err, league.ErrValidation) {
		t.Errorf("absurd score: err = %v, want ErrValidation", err)
	}
}

func TestGroupStageFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	matches := f.schedule(t, "OFC-1st", ofcGroups)
	f.playByStrength(t, matches, ofcGroups)

	round, err := f.svc.RecomputeStandings(ctx, tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st"})
	if err != nil {
		t.Fatalf("RecomputeStandings: %v", err)
	}
	for i, name := range []string{"A", "B"} {
		rows := round.Group(name).Rows
		for pos, team := range ofcGroups[i] {
			if rows[pos].Team != team {
				t.Fatalf("group %s position %d = %s, want %s", name, pos+1, rows[pos].Team, team)
			}
		}
		if rows[0].Points != 9 || rows[3].Points != 0 {
			t.Errorf("group %s points %d..%d", name, rows[0].Points, rows[3].Points)
		}
	}

	// idempotent
	again, err := f.svc.RecomputeStandings(ctx, tournament.RecomputeStandingsRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchIDs: []int64{matches[0].ID}, Groups: []string{matches[0].Group},
	})
	if err != nil {
		t.Fatalf("RecomputeStandings again: %v", err)
	}
	if again.Group("A").Rows[0].Played != 3 {
		t.Errorf("replay double counted: %+v", again.Group("A").Rows[0])
	}

	date := matches[len(matches)-1].Date
	round, err = f.svc.ResolveGroupAdvancement(ctx, tournament.ResolveGroupAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchDate: date,
	})
	if err != nil {
		t.Fatalf("ResolveGroupAdvancement: %v", err)
	}
	want := map[string]league.TeamStatus{
		"NZL": league.StatusAdvanced, "FIJ": league.StatusAdvanced,
		"TAH": league.StatusEliminated, "SOL": league.StatusEliminated,
		"VAN": league.StatusAdvanced, "SAM": league.StatusEliminated,
	}
	for team, status := range want {
		if got := round.Team(team); got == nil || got.Status != status {
			t.Errorf("%s status %+v, want %s", team, got, status)
		}
	}

	next, _ := f.repo.Round(ctx, f.g.ID, "OFC-2nd")
	if len(next.Teams) != 4 {
		t.Fatalf("OFC-2nd has %d teams, want 4", len(next.Teams))
	}
	nzl := next.Team("NZL")
	if nzl == nil || nzl.QualifiedAs != "OFC-1st-A-1" || nzl.QualifiedDate == nil || !nzl.QualifiedDate.Equal(date) {
		t.Errorf("NZL entry %+v", nzl)
	}

	// resolving twice does not duplicate entries
	if _, err := f.svc.ResolveGroupAdvancement(ctx, tournament.ResolveGroupAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchDate: date,
	}); err != nil {
		t.Fatal(err)
	}
	next, _ = f.repo.Round(ctx, f.g.ID, "OFC-2nd")
	if len(next.Teams) != 4 {
		t.Errorf("OFC-2nd has %d teams after a second resolve", len(next.Teams))
	}
}

func TestOddGroupAdvancementWaitsForLastMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	groups := [][]string{{"JPN", "KOR", "AUS"}, {"IRN", "QAT", "KSA"}}
	matches := f.schedule(t, "AFC-4th", groups)

	var last time.Time
	for _, m := range matches {
		if m.Group != "A" || !m.Involves("JPN") {
			continue
		}
		if m.Home == "JPN" {
			f.play(t, m.ID, 2, 0)
		} else {
			f.play(t, m.ID, 0, 2)
		}
		if m.Date.After(last) {
			last = m.Date
		}
	}

	if _, err := f.svc.RecomputeStandings(ctx, tournament.RecomputeStandingsRequest{
		GameplayID: f.g.ID, RoundCode: "AFC-4th", Groups: []string{"A"},
	}); err != nil {
		t.Fatalf("RecomputeStandings: %v", err)
	}
	round, err := f.svc.ResolveGroupAdvancement(ctx, tournament.ResolveGroupAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "AFC-4th", MatchDate: last, Groups: []string{"A"},
	})
	if err != nil {
		t.Fatalf("ResolveGroupAdvancement: %v", err)
	}

	if e := round.Team("JPN"); e == nil || e.Status != league.StatusAdvanced || e.AdvancedTo != "FIFA-WC-GS" {
		t.Errorf("JPN entry %+v", e)
	}
	for _, team := range []string{"KOR", "AUS"} {
		if e := round.Team(team); e == nil || e.Status != league.StatusUndetermined {
			t.Errorf("%s decided with its match against the other still unplayed: %+v", team, e)
		}
	}
	next, _ := f.repo.Round(ctx, f.g.ID, "AFC-5th")
	for _, team := range []string{"KOR", "AUS"} {
		if next.Team(team) != nil {
			t.Errorf("%s entered into AFC-5th early", team)
		}
	}
}

func TestStandingsErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	matches := f.schedule(t, "OFC-1st", ofcGroups)

	tests := []struct {
		name string
		req  tournament.RecomputeStandingsRequest
		want error
	}{
		{"unknown group", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", Groups: []string{"Z"}}, league.ErrInvariant},
		{"unplayed match", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchIDs: []int64{matches[0].ID}}, league.ErrInvalidState},
		{"unknown match", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchIDs: []int64{4242}}, league.ErrNotFound},
		{"knockout round", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "OFC-2nd"}, league.ErrInvalidState},
		{"unknown round", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID, RoundCode: "NOPE"}, league.ErrNotFound},
		{"missing round code", tournament.RecomputeStandingsRequest{GameplayID: f.g.ID}, league.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecomputeStandings(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKnockoutFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ties := f.schedule(t, "OFC-2nd", [][]string{{"NZL", "PNG", "VAN", "FIJ"}})
	if len(ties) != 2 {
		t.Fatalf("got %d ties, want 2", len(ties))
	}
	ids := make([]int64, len(ties))
	for i, m := range ties {
		f.play(t, m.ID, 1, 0)
		ids[i] = m.ID
	}

	round, err := f.svc.ResolveKnockoutAdvancement(ctx, tournament.ResolveKnockoutAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-2nd", MatchIDs: ids,
	})
	if err != nil {
		t.Fatalf("ResolveKnockoutAdvancement: %v", err)
	}
	final, _ := f.repo.Round(ctx, f.g.ID, "OFC-3rd")
	if len(final.Teams) != 2 {
		t.Fatalf("OFC-3rd has %d teams, want 2", len(final.Teams))
	}
	for _, m := range ties {
		if e := round.Team(m.Home); e == nil || e.Status != league.StatusAdvanced || e.AdvancedTo != "OFC-3rd" {
			t.Errorf("winner %s entry %+v", m.Home, e)
		}
		if e := round.Team(m.Away); e == nil || e.Status != league.StatusEliminated {
			t.Errorf("loser %s entry %+v", m.Away, e)
		}
		if final.Team(m.Home) == nil {
			t.Errorf("%s missing from the final", m.Home)
		}
	}

	_, err = f.svc.ResolveKnockoutAdvancement(ctx, tournament.ResolveKnockoutAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-1st", MatchIDs: ids,
	})
	if !errors.Is(err, league.ErrInvalidState) {
		t.Errorf("group round: err = %v, want ErrInvalidState", err)
	}
}

func TestTwoLeggedTie(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	legs := f.schedule(t, "AFC-5th", [][]string{{"QAT", "IRN"}})
	if len(legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(legs))
	}
	first := legs[0]
	if first.Leg != 1 {
		first = legs[1]
	}

	f.play(t, first.ID, 2, 1)
	code, _ := league.SecondLegCode(first.Code)
	second, err := f.repo.MatchByCode(ctx, f.g.ID, code)
	if err != nil {
		t.Fatal(err)
	}
	if second.HomeAggs == nil || *second.HomeAggs != 1 || *second.AwayAggs != 2 {
		t.Fatalf("second leg aggregates %v %v, want 1-2", second.HomeAggs, second.AwayAggs)
	}

	// return leg home side wins 2-0: 3-2 on aggregate
	f.play(t, second.ID, 2, 0)
	round, err := f.svc.ResolveKnockoutAdvancement(ctx, tournament.ResolveKnockoutAdvancementRequest{
		GameplayID: f.g.ID, RoundCode: "AFC-5th", MatchIDs: []int64{first.ID, second.ID},
	})
	if err != nil {
		t.Fatalf("ResolveKnockoutAdvancement: %v", err)
	}
	if e := round.Team(second.Home); e == nil || e.AdvancedTo != "FIFA-INTERPO-SF" {
		t.Errorf("aggregate winner %s entry %+v", second.Home, e)
	}
	po, _ := f.repo.Round(ctx, f.g.ID, "FIFA-INTERPO-SF")
	if po.Team(second.Home) == nil {
		t.Errorf("%s not entered into the play-off", second.Home)
	}
}

func TestQualificationOdds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	matches := f.schedule(t, "OFC-1st", ofcGroups)
	for _, m := range matches {
		if m.Group == "A" && m.Matchday == 1 {
			f.play(t, m.ID, 1, 1)
		}
	}

	preds, err := f.svc.QualificationOdds(ctx, tournament.QualificationOddsRequest{
		GameplayID: f.g.ID, RoundCode: "OFC-1st", Group: "A", Runs: 300,
	})
	if err != nil {
		t.Fatalf("QualificationOdds: %v", err)
	}
	if len(preds) != 4 {
		t.Fatalf("got %d predictions", len(preds))
	}
	for _, p := range preds {
		sum := 0.0
		for _, v := range p.Positions {
			sum += v
		}
		if math.Abs(sum-100) > 0.1 {
			t.Errorf("%s positions sum to %v", p.Team, sum)
		}
	}

	_, err = f.svc.QualificationOdds(ctx, tournament.QualificationOddsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", Group: "A"})
	if !errors.Is(err, league.ErrValidation) {
		t.Errorf("zero runs: err = %v, want ErrValidation", err)
	}
	_, err = f.svc.QualificationOdds(ctx, tournament.QualificationOddsRequest{GameplayID: f.g.ID, RoundCode: "OFC-1st", Group: "Q", Runs: 10})
	if !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown group: err = %v, want ErrNotFound", err)
	}
}

func TestHeadToHead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ties := f.schedule(t, "OFC-2nd", [][]string{{"NZL", "FIJ"}, {"TAH", "SOL"}})
	var nzlFij *league.Match
	for _, m := range ties {
		if m.Involves("NZL") {
			nzlFij = m
		}
	}
	played := f.play(t, nzlFij.ID, 3, 1)

	res, err := f.svc.HeadToHead(ctx, f.g.ID, "FIJ", "NZL", 5)
	if err != nil {
		t.Fatalf("HeadToHead: %v", err)
	}
	ov := res.Overview
	if ov.TotalMatches != 1 || len(res.Recent) != 1 {
		t.Fatalf("overview %+v recent %d", ov, len(res.Recent))
	}
	fijGoals, nzlGoals := *played.AwayGoals, *played.HomeGoals
	if played.Home == "FIJ" {
		fijGoals, nzlGoals = nzlGoals, fijGoals
	}
	if ov.Team1Goals != fijGoals || ov.Team2Goals != nzlGoals {
		t.Errorf("goals %d-%d, want %d-%d", ov.Team1Goals, ov.Team2Goals, fijGoals, nzlGoals)
	}
	if ov.Team1Wins+ov.Team2Wins+ov.Draws != 1 {
		t.Errorf("overview %+v", ov)
	}

	if _, err := f.svc.HeadToHead(ctx, f.g.ID, "NZL", "NZL", 5); !errors.Is(err, league.ErrValidation) {
		t.Errorf("same team: err = %v, want ErrValidation", err)
	}
	if _, err := f.svc.HeadToHead(ctx, f.g.ID, "NZL", "XXX", 5); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown team: err = %v, want ErrNotFound", err)
	}
}

func TestRankings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	on := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	ranks, err := f.svc.PublishRankings(ctx, f.g.ID, &on)
	if err != nil {
		t.Fatalf("PublishRankings: %v", err)
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i].Points > ranks[i-1].Points || ranks[i].Position != i+1 {
			t.Fatalf("rankings out of order at %d: %+v", i, ranks[i])
		}
	}

	hist, err := f.svc.TeamRankings(ctx, f.g.ID, "ARG")
	if err != nil {
		t.Fatalf("TeamRankings: %v", err)
	}
	if len(hist) != 2 || hist[0].GameplayID != f.g.ID || hist[1].GameplayID != "" {
		t.Errorf("history %+v, want the published entry then the catalog entry", hist)
	}
	if _, err := f.svc.TeamRankings(ctx, f.g.ID, "XXX"); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown team: err = %v, want ErrNotFound", err)
	}
}

func TestVenues(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	plan, err := f.svc.AllocateVenues(ctx, tournament.AllocateVenuesRequest{GameplayID: f.g.ID})
	if err != nil {
		t.Fatalf("AllocateVenues: %v", err)
	}
	if len(plan) != 72 || plan[0].Number != 1 || plan[0].Venue.HostOpeningMatch == "" {
		t.Errorf("plan starts with %+v (len %d)", plan[0], len(plan))
	}

	// the plan does not depend on the service's random stream
	cat, _ := catalog.Default()
	other := tournament.NewService(f.repo, cat, league.NewLockedRand(99), quietLogger())
	for i, svc := range []*tournament.Service{f.svc, f.svc, other} {
		again, err := svc.AllocateVenues(ctx, tournament.AllocateVenuesRequest{GameplayID: f.g.ID})
		if err != nil {
			t.Fatalf("AllocateVenues #%d: %v", i+2, err)
		}
		for n := range plan {
			if again[n].Venue.Name != plan[n].Venue.Name {
				t.Fatalf("call #%d: match %d at %s, first plan had %s", i+2, n+1, again[n].Venue.Name, plan[n].Venue.Name)
			}
		}
	}

	_, err = f.svc.CreateCustomVenues(ctx, tournament.CreateVenuesRequest{GameplayID: f.g.ID, Venues: []league.Venue{{
		Name: "Field", City: "Town", HostCountry: "USA", Capacity: 30000, SlotGroup: 1,
	}}})
	if !errors.Is(err, league.ErrInvalidState) {
		t.Errorf("custom venues on a catalog edition: err = %v, want ErrInvalidState", err)
	}
}

func TestCustomVenues(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	g, err := svc.CreateGameplay(ctx, tournament.CreateGameplayRequest{
		Name: "custom", Edition: league.EditionCustom, Hosts: []league.Host{{Name: "ESP", Federation: "UEFA"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CreateCustomVenues(ctx, tournament.CreateVenuesRequest{GameplayID: g.ID, Venues: []league.Venue{{
		Name: "Tiny", City: "Town", HostCountry: "ESP", Capacity: 500, SlotGroup: 1,
	}}})
	if !errors.Is(err, league.ErrValidation) {
		t.Errorf("small venue: err = %v, want ErrValidation", err)
	}

	venues, err := svc.CreateCustomVenues(ctx, tournament.CreateVenuesRequest{GameplayID: g.ID, Venues: []league.Venue{
		{Name: "Metropolitano", City: "Madrid", HostCountry: "ESP", Capacity: 70000, SlotGroup: 3, Lat: 40.43, Lon: -3.6},
	}})
	if err != nil {
		t.Fatalf("CreateCustomVenues: %v", err)
	}
	stored, _ := repo.Venues(ctx, g.ID)
	if len(stored) != 1 || stored[0].ID != venues[0].ID || stored[0].Edition != league.EditionCustom {
		t.Errorf("stored venues %+v", stored)
	}
}
