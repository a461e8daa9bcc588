package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

var northAmerica = []league.Host{
	{Name: "USA", Order: 2, Federation: "CONCACAF"},
	{Name: "MEX", Order: 1, Federation: "CONCACAF"},
	{Name: "CAN", Order: 3, Federation: "CONCACAF"},
}

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return c
}

func TestDefaultCatalogLoads(t *testing.T) {
	c := mustDefault(t)
	if len(c.Teams) == 0 || len(c.Rounds) == 0 {
		t.Fatalf("empty catalog: %d teams, %d rounds", len(c.Teams), len(c.Rounds))
	}
	for _, ed := range []league.Edition{league.EditionNorthAmerica, league.EditionCentenario} {
		venues := c.EditionVenues(ed)
		if len(venues) != 20 {
			t.Errorf("%s has %d venues, want 20", ed, len(venues))
		}
		for _, v := range venues {
			if v.Edition != ed {
				t.Errorf("%s tagged with edition %q", v.Name, v.Edition)
			}
		}
	}
	gs, err := c.Template(northAmerica, "FIFA-WC-GS")
	if err != nil {
		t.Fatal(err)
	}
	if len(gs.MatchOrder) != 72 || len(gs.OfficialDates) != 72 {
		t.Errorf("group stage has %d match numbers and %d official dates", len(gs.MatchOrder), len(gs.OfficialDates))
	}
	if _, ok := c.Team("ARG"); !ok {
		t.Error("ARG missing")
	}
}

func TestNorthAmericaAllocationFromCatalog(t *testing.T) {
	c := mustDefault(t)
	plan, err := league.AllocateVenues(c.EditionVenues(league.EditionNorthAmerica), []string{"MEX", "USA", "CAN"}, league.NewLockedRand(7))
	if err != nil {
		t.Fatal(err)
	}
	if plan[0].HostOpeningMatch == "" {
		t.Errorf("opening match at %s", plan[0].Name)
	}
}

// Every slot of the final tournament is filled exactly once when the qualifiers
// of a north_america gameplay are followed to completion.
func TestNorthAmericaSlotsAddUp(t *testing.T) {
	c := mustDefault(t)
	rounds := c.RoundsForHosts(northAmerica)
	byCode := map[string]*league.RoundTemplate{}
	for _, r := range rounds {
		if byCode[r.Code] != nil {
			t.Fatalf("template %s applies twice", r.Code)
		}
		byCode[r.Code] = r
	}

	incoming := map[string]int{}
	for _, r := range rounds {
		incoming[r.Code] += len(c.EntryTeams(r, northAmerica))
		if r.Kind == league.KindKnockout {
			ties := r.NumberOfTeams / 2
			for _, key := range []string{"W", "L"} {
				if s, ok := r.AdvancedTo[key]; ok {
					incoming[s.Next] += ties
				}
			}
			continue
		}
		for _, s := range r.AdvancedTo {
			if s.IsEdge() {
				for _, next := range s.Edge {
					incoming[next]++
				}
				continue
			}
			incoming[s.Next] += r.NumberOfGroups
		}
	}
	for code, r := range byCode {
		if incoming[code] != r.NumberOfTeams {
			t.Errorf("%s receives %d teams, holds %d", code, incoming[code], r.NumberOfTeams)
		}
	}
}

func TestRoundsForHosts(t *testing.T) {
	c := mustDefault(t)
	find := func(hosts []league.Host) map[string]*int {
		m := map[string]*int{}
		for _, r := range c.RoundsForHosts(hosts) {
			m[r.Code] = r.Hosts
		}
		return m
	}

	na := find(northAmerica)
	if h := na["CONCACAF-3rd"]; h == nil || *h != 3 {
		t.Errorf("north america picks CONCACAF-3rd with hosts %v, want 3", h)
	}

	elsewhere := find([]league.Host{
		{Name: "ESP", Order: 1, Federation: "UEFA"},
		{Name: "POR", Order: 2, Federation: "UEFA"},
	})
	if h := elsewhere["CONCACAF-3rd"]; h == nil || *h != 0 {
		t.Errorf("non-CONCACAF hosts pick CONCACAF-3rd with hosts %v, want 0", h)
	}
	if _, ok := elsewhere["FIFA-WC-GS"]; !ok {
		t.Error("final tournament missing")
	}
}

func TestAppliesRules(t *testing.T) {
	two := []league.Host{{Name: "ESP", Federation: "UEFA"}, {Name: "MAR", Federation: "CAF"}}
	feds := hostFederations(two)
	tests := []struct {
		name string
		tmpl league.RoundTemplate
		want bool
	}{
		{"no host count", league.RoundTemplate{Federation: "UEFA"}, true},
		{"federation hosts match", league.RoundTemplate{Federation: "UEFA", Hosts: league.IntPtr(2)}, true},
		{"federation hosts mismatch", league.RoundTemplate{Federation: "UEFA", Hosts: league.IntPtr(1)}, false},
		{"non-hosting federation", league.RoundTemplate{Federation: "AFC", Hosts: league.IntPtr(0)}, true},
		{"hosting federation wants zero", league.RoundTemplate{Federation: "CAF", Hosts: league.IntPtr(0)}, false},
		{"fifa counts federations", league.RoundTemplate{Federation: "FIFA", Hosts: league.IntPtr(2)}, true},
		{"fifa wrong federation count", league.RoundTemplate{Federation: "FIFA", Hosts: league.IntPtr(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applies(&tt.tmpl, two, feds); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryOrder(t *testing.T) {
	c := &Catalog{Teams: []league.TeamReference{
		{Code: "ESP", Federation: "UEFA", InitialPoints: 1860, InitialUEFARanking: 1},
		{Code: "ITA", Federation: "UEFA", InitialPoints: 1730, InitialUEFARanking: 3},
		{Code: "FRA", Federation: "UEFA", InitialPoints: 1880},
		{Code: "WAL", Federation: "UEFA", InitialPoints: 1580},
		{Code: "ENG", Federation: "UEFA", InitialPoints: 1800},
		{Code: "BRA", Federation: "CONMEBOL", InitialPoints: 1790},
	}}
	got := c.EntryOrder("UEFA", []league.Host{{Name: "ENG", Federation: "UEFA"}})
	want := []string{"FRA", "WAL", "ESP", "ITA"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	tmpl := &league.RoundTemplate{Code: "UEFA-Q", Federation: "UEFA", EntryTeams: []int{1, 9}}
	entries := c.EntryTeams(tmpl, nil)
	if len(entries) != 4 || entries[0].Team != "ENG" {
		t.Errorf("entries %+v", entries)
	}
}

func TestEntryTeamsHostsOpenFinalTournament(t *testing.T) {
	c := mustDefault(t)
	gs, err := c.Template(northAmerica, "FIFA-WC-GS")
	if err != nil {
		t.Fatal(err)
	}
	entries := c.EntryTeams(gs, northAmerica)
	if len(entries) != 3 || entries[0].Team != "MEX" || entries[2].Team != "CAN" {
		t.Fatalf("entries %+v", entries)
	}
	for _, e := range entries {
		if e.QualifiedAs != "Host" {
			t.Errorf("%s qualified as %q", e.Team, e.QualifiedAs)
		}
	}

	q, err := c.Template(northAmerica, "CONCACAF-3rd")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range c.EntryTeams(q, northAmerica) {
		if e.Team == "USA" || e.Team == "MEX" || e.Team == "CAN" {
			t.Errorf("host %s entered qualifiers", e.Team)
		}
	}
}

func TestInitialRankings(t *testing.T) {
	c := mustDefault(t)
	ranks, err := c.InitialRankings()
	if err != nil {
		t.Fatal(err)
	}
	if len(ranks) != len(c.Teams) {
		t.Fatalf("got %d rankings", len(ranks))
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i].Points > ranks[i-1].Points || ranks[i].Position != i+1 {
			t.Fatalf("ranking out of order at %d: %+v", i, ranks[i])
		}
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "catalog.txt")
	if err := os.WriteFile(txt, []byte("rounds: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(txt); !errors.Is(err, league.ErrValidation) {
		t.Errorf("txt: got %v, want ErrValidation", err)
	}

	dangling := filepath.Join(dir, "catalog.yaml")
	body := `startDate: "2024-09-01"
rankingDate: "2024-07-18"
rounds:
  - federation: OFC
    code: OFC-2nd
    kind: knockout
    legs: 1
    numberOfTeams: 4
    advancedTo:
      "W": OFC-3rd
`
	if err := os.WriteFile(dangling, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dangling); !errors.Is(err, league.ErrInvariant) {
		t.Errorf("dangling slot: got %v, want ErrInvariant", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
