package league

import (
	"fmt"
	"math"
	"sort"
)

// Prediction holds a team's chance, in percent, of finishing in each position.
type Prediction struct {
	Team      string    `json:"team"`
	Positions []float64 `json:"positions"`
}

// QualificationOdds plays out the remaining matches of a group runs times and
// counts where every team finishes. played holds the group's matches so far;
// remaining must be unplayed. teams and ranks cover every group team.
func QualificationOdds(
	rows []GroupRow,
	played, remaining []*Match,
	teams map[string]*Team,
	ranks map[string]int,
	rng Rand,
	runs int,
) ([]Prediction, error) {
	if runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d: %w", runs, ErrValidation)
	}
	for _, r := range rows {
		if teams[r.Team] == nil {
			return nil, fmt.Errorf("no team data for %s: %w", r.Team, ErrNotFound)
		}
	}

	// 1) precompute both score distributions per fixture
	type fixture struct {
		home, away string
		homeDist   []float64
		awayDist   []float64
	}
	fixtures := make([]fixture, 0, len(remaining))
	for _, m := range remaining {
		if m.Played() {
			return nil, fmt.Errorf("match %s already played: %w", m.Code, ErrInvalidState)
		}
		home, away := teams[m.Home], teams[m.Away]
		if home == nil || away == nil {
			return nil, fmt.Errorf("match %s: unknown team: %w", m.Code, ErrNotFound)
		}
		rd := ranks[m.Home] - ranks[m.Away]
		fixtures = append(fixtures, fixture{
			home:     m.Home,
			away:     m.Away,
			homeDist: ScoreDistribution(ExpectedGoals(home, away, rd)),
			awayDist: ScoreDistribution(ExpectedGoals(away, home, -rd)),
		})
	}

	// 2) count finishing positions across runs
	counts := make(map[string][]int, len(rows))
	for _, r := range rows {
		counts[r.Team] = make([]int, len(rows))
	}
	simulated := make([]*Match, len(fixtures))
	for run := 0; run < runs; run++ {
		table := make([]GroupRow, len(rows))
		copy(table, rows)
		idx := make(map[string]int, len(table))
		for i, r := range table {
			idx[r.Team] = i
		}
		for i, f := range fixtures {
			hg := SampleGoals(f.homeDist, rng, nil, false)
			ag := SampleGoals(f.awayDist, rng, nil, false)
			table[idx[f.home]].Record(hg, ag)
			table[idx[f.away]].Record(ag, hg)
			simulated[i] = &Match{Home: f.home, Away: f.away, HomeGoals: IntPtr(hg), AwayGoals: IntPtr(ag)}
		}

		sorted, err := SortGroup(table, append(append([]*Match{}, played...), simulated...), ranks)
		if err != nil {
			return nil, fmt.Errorf("sorting simulated table: %w", err)
		}
		for pos, r := range sorted {
			counts[r.Team][pos]++
		}
	}

	// 3) turn counts into percentages
	preds := make([]Prediction, 0, len(rows))
	for _, r := range rows {
		p := Prediction{Team: r.Team, Positions: make([]float64, len(rows))}
		for pos, c := range counts[r.Team] {
			pct := float64(c) / float64(runs) * 100
			p.Positions[pos] = math.Round(pct*100) / 100
		}
		preds = append(preds, p)
	}

	// 4) most likely group winners first
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Positions[0] > preds[j].Positions[0]
	})
	return preds, nil
}
