// internal/league/logic.go
package league

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ScoreLine renders a played match as "HOME 2 - 1 AWAY".
func (m *Match) ScoreLine() string {
	if !m.Played() {
		return fmt.Sprintf("%s vs %s", m.Home, m.Away)
	}
	line := fmt.Sprintf("%s %d - %d %s", m.Home, *m.HomeGoals, *m.AwayGoals, m.Away)
	if m.Shootout != nil {
		line += fmt.Sprintf(" (%d-%d pens)", m.Shootout.HomeScore, m.Shootout.AwayScore)
	}
	return line
}

// Record adds one result to the row.
func (r *GroupRow) Record(goalsFor, goalsAgainst int) {
	r.Played++
	r.GoalsFor += goalsFor
	r.GoalsAgainst += goalsAgainst
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		r.Wins++
		r.Points += 3
	case goalsFor < goalsAgainst:
		r.Losses++
	default:
		r.Draws++
		r.Points++
	}
}

// NewRows returns empty table rows for teams.
func NewRows(teams []string) []GroupRow {
	rows := make([]GroupRow, len(teams))
	for i, t := range teams {
		rows[i] = GroupRow{Team: t}
	}
	return rows
}

// ApplyResults records every played match onto its group's table. Unplayed
// matches are skipped.
func ApplyResults(groups []Group, matches []*Match) error {
	byName := make(map[string]map[string]*GroupRow, len(groups))
	for gi := range groups {
		rows := make(map[string]*GroupRow, len(groups[gi].Rows))
		for ri := range groups[gi].Rows {
			rows[groups[gi].Rows[ri].Team] = &groups[gi].Rows[ri]
		}
		byName[groups[gi].Name] = rows
	}

	for _, m := range matches {
		if m.Group == "" || m.Home == "" || m.Away == "" {
			return fmt.Errorf("match %s has no group: %w", m.Code, ErrValidation)
		}
		rows, ok := byName[m.Group]
		if !ok {
			return fmt.Errorf("match %s: group %s not found: %w", m.Code, m.Group, ErrInvariant)
		}
		if !m.Played() {
			continue
		}
		home, away := rows[m.Home], rows[m.Away]
		if home == nil || away == nil {
			return fmt.Errorf("match %s: %s or %s not in group %s: %w", m.Code, m.Home, m.Away, m.Group, ErrInvariant)
		}
		home.Record(*m.HomeGoals, *m.AwayGoals)
		away.Record(*m.AwayGoals, *m.HomeGoals)
	}
	return nil
}

// CalculateTable replays matches into a fresh table for the given teams.
func CalculateTable(teams []string, matches []*Match) []GroupRow {
	rows := NewRows(teams)
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		idx[r.Team] = i
	}
	for _, m := range matches {
		hi, okH := idx[m.Home]
		ai, okA := idx[m.Away]
		if !okH || !okA || !m.Played() {
			continue
		}
		rows[hi].Record(*m.HomeGoals, *m.AwayGoals)
		rows[ai].Record(*m.AwayGoals, *m.HomeGoals)
	}
	return rows
}

// WriteTable prints a group table.
func WriteTable(w io.Writer, label string, rows []GroupRow) error {
	if _, err := fmt.Fprintln(w, label); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "#\tTeam\tP\tW\tD\tL\tGF\tGA\tGD\tPts")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			i+1, r.Team, r.Played, r.Wins, r.Draws, r.Losses,
			r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points,
		)
	}
	return tw.Flush()
}
