package league

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxEnumeratedMatches caps the exhaustive outcome enumeration (3^n cases).
const MaxEnumeratedMatches = 12

// FinishRange is the best (Min) and worst (Max) position a team can still reach.
type FinishRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TotalMatchdays is the number of matchdays of a full round-robin group.
func TotalMatchdays(teams, legs int) int {
	if teams < 2 {
		return 0
	}
	return (teams - 1) * legs
}

// MatchesLeft is the most matches any team of the group still has to play.
// It is zero only once every team has completed its schedule, which in odd
// groups is later than the first team to finish.
func MatchesLeft(rows []GroupRow, legs int) int {
	total := TotalMatchdays(len(rows), legs)
	left := 0
	for _, r := range rows {
		if total-r.Played > left {
			left = total - r.Played
		}
	}
	return left
}

// FinishRanges bounds every team's finish by assuming it, or any rival, wins
// all its remaining matches.
func FinishRanges(rows []GroupRow, legs int) map[string]FinishRange {
	total := TotalMatchdays(len(rows), legs)
	ceiling := func(r GroupRow) int { return r.Points + (total-r.Played)*3 }

	out := make(map[string]FinishRange, len(rows))
	for _, t := range rows {
		fr := FinishRange{Min: len(rows)}
		for _, o := range rows {
			if ceiling(o) >= t.Points {
				fr.Max++
			}
			if o.Team != t.Team && ceiling(t) >= o.Points {
				fr.Min--
			}
		}
		out[t.Team] = fr
	}
	return out
}

// FixedRanges pins every team to its position in an already sorted, complete table.
func FixedRanges(sorted []GroupRow) map[string]FinishRange {
	out := make(map[string]FinishRange, len(sorted))
	for i, r := range sorted {
		out[r.Team] = FinishRange{Min: i + 1, Max: i + 1}
	}
	return out
}

// FinishRangesExhaustive enumerates every home/draw/away combination of the
// remaining matches and keeps each team's best and worst position by points.
// Teams level on points share the whole span of positions they occupy.
func FinishRangesExhaustive(rows []GroupRow, remaining []*Match) (map[string]FinishRange, error) {
	if len(remaining) > MaxEnumeratedMatches {
		return nil, fmt.Errorf("%d remaining matches exceed the enumeration cap of %d: %w",
			len(remaining), MaxEnumeratedMatches, ErrInvalidState)
	}
	idx := make(map[string]int, len(rows))
	base := make([]int, len(rows))
	for i, r := range rows {
		idx[r.Team] = i
		base[i] = r.Points
	}
	type fixture struct{ home, away int }
	fixtures := make([]fixture, len(remaining))
	for i, m := range remaining {
		h, okH := idx[m.Home]
		a, okA := idx[m.Away]
		if !okH || !okA {
			return nil, fmt.Errorf("remaining match %s is not between group teams: %w", m.Code, ErrInvariant)
		}
		fixtures[i] = fixture{h, a}
	}

	best := make([]int, len(rows))
	worst := make([]int, len(rows))
	for i := range best {
		best[i] = len(rows) + 1
	}

	cases := 1
	for range fixtures {
		cases *= 3
	}
	points := make([]int, len(rows))
	sorted := make([]int, len(rows))
	for c := 0; c < cases; c++ {
		copy(points, base)
		code := c
		for _, f := range fixtures {
			switch code % 3 {
			case 0:
				points[f.home] += 3
			case 1:
				points[f.home]++
				points[f.away]++
			default:
				points[f.away] += 3
			}
			code /= 3
		}

		copy(sorted, points)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		for i, p := range points {
			first := sort.Search(len(sorted), func(k int) bool { return sorted[k] <= p })
			last := sort.Search(len(sorted), func(k int) bool { return sorted[k] < p })
			if first+1 < best[i] {
				best[i] = first + 1
			}
			if last > worst[i] {
				worst[i] = last
			}
		}
	}

	out := make(map[string]FinishRange, len(rows))
	for i, r := range rows {
		out[r.Team] = FinishRange{Min: best[i], Max: worst[i]}
	}
	return out, nil
}

// Decision is the advancement verdict for one team.
type Decision struct {
	Team        string
	Status      TeamStatus
	AdvancedTo  string
	QualifiedAs string
	Date        time.Time
}

// GroupDecisions maps finish ranges onto the template's slots.
func GroupDecisions(t *RoundTemplate, group string, ranges map[string]FinishRange, date time.Time) []Decision {
	teams := make([]string, 0, len(ranges))
	for team := range ranges {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	out := make([]Decision, 0, len(teams))
	for _, team := range teams {
		fr := ranges[team]
		d := Decision{Team: team, Status: StatusUndetermined, Date: date}
		minSlot, okMin := t.SlotAt(fr.Min)
		maxSlot, okMax := t.SlotAt(fr.Max)

		switch {
		case !okMin && t.NoElimination:
			if fr.Min == fr.Max {
				d.Status = StatusFinished
			}
		case !okMin:
			d.Status = StatusEliminated
		case minSlot.IsEdge():
			// left to EdgeDecisions
		case fr.Min == fr.Max:
			d.Status = StatusAdvanced
			d.AdvancedTo = minSlot.Next
			d.QualifiedAs = fmt.Sprintf("%s-%s-%d", t.Code, group, fr.Min)
		case okMax && !maxSlot.IsEdge() && minSlot.Next == maxSlot.Next:
			d.Status = StatusAdvanced
			d.AdvancedTo = minSlot.Next
			d.QualifiedAs = fmt.Sprintf("%s-%s-%d/%d", t.Code, group, fr.Min, fr.Max)
		}
		out = append(out, d)
	}
	return out
}

// EdgeDecisions ranks the teams holding the edge position across groups.
// groups must hold sorted tables. Only teams whose group has finished take
// part, a group being finished once every team in it has played
// totalMatchdays matches. While some groups are still playing, the ranking
// assumes every unfinished group's edge team finishes above them.
func EdgeDecisions(t *RoundTemplate, groups []Group, totalMatchdays int, ranks map[string]int, date time.Time) ([]Decision, error) {
	pos, slot, ok := t.EdgePosition()
	if !ok || len(groups) == 0 {
		return nil, nil
	}

	var candidates []GroupRow
	groupOf := map[string]string{}
	for _, g := range groups {
		if len(g.Rows) < pos {
			continue
		}
		row := g.Rows[pos-1]
		if groupComplete(g.Rows, totalMatchdays) {
			candidates = append(candidates, row)
			groupOf[row.Team] = g.Name
		}
	}

	notFinished := len(groups) - len(candidates)
	if len(slot.Edge)-notFinished <= 0 {
		return nil, nil
	}

	sorted, err := SortGroup(candidates, nil, ranks)
	if err != nil {
		return nil, fmt.Errorf("ranking edge position %d: %w", pos, err)
	}

	distinct := map[string]bool{}
	for _, next := range slot.Edge {
		distinct[next] = true
	}
	allFinished := notFinished == 0
	decidable := len(distinct) == 1 || allFinished

	out := make([]Decision, 0, len(sorted))
	for i, row := range sorted {
		d := Decision{Team: row.Team, Date: date}
		next, ok := slot.Edge[strconv.Itoa(i+1+notFinished)]
		switch {
		case ok:
			d.Status = StatusAdvanced
			if decidable {
				d.AdvancedTo = next
				d.QualifiedAs = fmt.Sprintf("%s-%s-%d", t.Code, groupOf[row.Team], pos)
			}
		case allFinished:
			d.Status = StatusEliminated
		default:
			d.Status = StatusUndetermined
		}
		out = append(out, d)
	}
	return out, nil
}

func groupComplete(rows []GroupRow, total int) bool {
	for _, r := range rows {
		if r.Played < total {
			return false
		}
	}
	return true
}

// TieWinner decides a knockout tie from its deciding match: the single match,
// or the second leg carrying the aggregate. It returns the winner and loser.
func TieWinner(m *Match, legs int) (string, string, error) {
	if !m.Played() {
		return "", "", fmt.Errorf("match %s not played: %w", m.Code, ErrInvalidState)
	}
	winner := ""
	switch {
	case m.Shootout != nil:
		winner = m.Away
		if m.Shootout.HomeScore > m.Shootout.AwayScore {
			winner = m.Home
		}
	case legs != 2:
		if *m.HomeGoals == *m.AwayGoals {
			return "", "", fmt.Errorf("match %s level without a shootout: %w", m.Code, ErrInvalidState)
		}
		winner = m.Away
		if *m.HomeGoals > *m.AwayGoals {
			winner = m.Home
		}
	default:
		if m.HomeAggs == nil || m.AwayAggs == nil {
			return "", "", fmt.Errorf("second leg %s has no aggregate: %w", m.Code, ErrInvalidState)
		}
		homeAway := *m.HomeAggs - *m.HomeGoals // home side's goals in the first leg, away from home
		awayAway := *m.AwayGoals
		switch {
		case *m.HomeAggs > *m.AwayAggs:
			winner = m.Home
		case *m.HomeAggs < *m.AwayAggs:
			winner = m.Away
		case homeAway > awayAway:
			winner = m.Home
		case homeAway < awayAway:
			winner = m.Away
		default:
			return "", "", fmt.Errorf("tie %s undecided on aggregate and away goals: %w", m.Code, ErrInvalidState)
		}
	}
	loser := m.Home
	if winner == m.Home {
		loser = m.Away
	}
	return winner, loser, nil
}

// KnockoutDecisions resolves every decided tie among matches. In two-legged
// rounds only second legs decide a tie.
func KnockoutDecisions(t *RoundTemplate, matches []*Match) ([]Decision, error) {
	win, hasWin := t.AdvancedTo["W"]
	lose, hasLose := t.AdvancedTo["L"]
	if !t.Terminal && !hasWin {
		return nil, fmt.Errorf("round %s has no winner slot: %w", t.Code, ErrInvariant)
	}

	var out []Decision
	for _, m := range matches {
		if !m.Played() || (t.Legs == 2 && m.Leg != 2) {
			continue
		}
		winner, loser, err := TieWinner(m, t.Legs)
		if err != nil {
			return nil, err
		}
		tie := m.Code
		if t.Legs == 2 {
			tie = strings.TrimSuffix(m.Code, "-L2")
		}

		w := Decision{Team: winner, Status: StatusAdvanced, QualifiedAs: tie + "-W", Date: m.Date}
		if t.Terminal {
			w.Status = StatusFinished
		} else {
			w.AdvancedTo = win.Next
		}

		l := Decision{Team: loser, Status: StatusEliminated, QualifiedAs: tie + "-L", Date: m.Date}
		switch {
		case hasLose:
			l.Status, l.AdvancedTo = StatusAdvanced, lose.Next
		case t.Terminal || t.NoElimination:
			l.Status = StatusFinished
		}
		out = append(out, w, l)
	}
	return out, nil
}

// ApplyDecisions writes decisions into the current round and appends
// advancing teams to their next rounds.
func ApplyDecisions(current *Round, next map[string]*Round, decisions []Decision) error {
	for _, d := range decisions {
		entry := current.Team(d.Team)
		if entry == nil {
			return fmt.Errorf("team %s not in round %s: %w", d.Team, current.Code, ErrInvariant)
		}
		entry.Status = d.Status
		if d.AdvancedTo == "" {
			continue
		}
		entry.AdvancedTo = d.AdvancedTo

		nr, ok := next[d.AdvancedTo]
		if !ok || nr == nil {
			return fmt.Errorf("next round %s of %s not found: %w", d.AdvancedTo, current.Code, ErrInvariant)
		}
		if existing := nr.Team(d.Team); existing != nil {
			existing.QualifiedAs = d.QualifiedAs
			continue
		}
		date := d.Date
		nr.Teams = append(nr.Teams, RoundTeam{Team: d.Team, QualifiedAs: d.QualifiedAs, QualifiedDate: &date, Status: StatusUndetermined})
	}
	return nil
}
