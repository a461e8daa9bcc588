package league

import (
	"fmt"
	"sort"
)

type tableKey struct{ points, goalDiff, goalsFor int }

func keyOf(r GroupRow) tableKey { return tableKey{r.Points, r.GoalDiff, r.GoalsFor} }

func (a tableKey) better(b tableKey) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	if a.goalDiff != b.goalDiff {
		return a.goalDiff > b.goalDiff
	}
	return a.goalsFor > b.goalsFor
}

// blocks splits teams, already sorted by key, into runs of equal keys.
func blocks(teams []string, key func(string) tableKey) [][]string {
	var out [][]string
	for i := 0; i < len(teams); {
		j := i + 1
		for j < len(teams) && key(teams[j]) == key(teams[i]) {
			j++
		}
		out = append(out, teams[i:j])
		i = j
	}
	return out
}

func matchesAmong(set []string, matches []*Match) []*Match {
	in := make(map[string]bool, len(set))
	for _, t := range set {
		in[t] = true
	}
	var out []*Match
	for _, m := range matches {
		if in[m.Home] && in[m.Away] {
			out = append(out, m)
		}
	}
	return out
}

// SortGroup orders a group table by points, goal difference and goals scored.
// Teams level on all three are separated by a head-to-head mini-table built
// from their matches against each other, applied recursively to any subset
// that remains level, and finally by ranking position (lower is better).
// Ranking positions of teams still level must differ.
func SortGroup(rows []GroupRow, matches []*Match, ranks map[string]int) ([]GroupRow, error) {
	byTeam := make(map[string]GroupRow, len(rows))
	teams := make([]string, len(rows))
	for i, r := range rows {
		byTeam[r.Team] = r
		teams[i] = r.Team
	}
	key := func(t string) tableKey { return keyOf(byTeam[t]) }
	sort.SliceStable(teams, func(i, j int) bool { return key(teams[i]).better(key(teams[j])) })

	var ordered []string
	for _, b := range blocks(teams, key) {
		if len(b) == 1 {
			ordered = append(ordered, b[0])
			continue
		}
		sub, err := breakTie(b, matches, ranks)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, sub...)
	}

	out := make([]GroupRow, len(ordered))
	for i, t := range ordered {
		out[i] = byTeam[t]
	}
	return out, nil
}

func breakTie(set []string, matches []*Match, ranks map[string]int) ([]string, error) {
	mini := CalculateTable(set, matchesAmong(set, matches))
	byTeam := make(map[string]GroupRow, len(mini))
	for _, r := range mini {
		byTeam[r.Team] = r
	}
	key := func(t string) tableKey { return keyOf(byTeam[t]) }

	teams := append([]string{}, set...)
	sort.SliceStable(teams, func(i, j int) bool { return key(teams[i]).better(key(teams[j])) })

	var ordered []string
	for _, b := range blocks(teams, key) {
		switch {
		case len(b) == 1:
			ordered = append(ordered, b[0])
		case len(b) < len(set):
			sub, err := breakTie(b, matches, ranks)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, sub...)
		default:
			sub, err := byRanking(b, ranks)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, sub...)
		}
	}
	return ordered, nil
}

func byRanking(set []string, ranks map[string]int) ([]string, error) {
	seen := make(map[int]string, len(set))
	for _, t := range set {
		pos, ok := ranks[t]
		if !ok {
			return nil, fmt.Errorf("no ranking position for %s: %w", t, ErrInvariant)
		}
		if other, dup := seen[pos]; dup {
			return nil, fmt.Errorf("%s and %s share ranking position %d: %w", other, t, pos, ErrInvariant)
		}
		seen[pos] = t
	}
	out := append([]string{}, set...)
	sort.Slice(out, func(i, j int) bool { return ranks[out[i]] < ranks[out[j]] })
	return out, nil
}
