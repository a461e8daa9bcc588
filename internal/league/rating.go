package league

import (
	"math"
	"strings"
)

// RatingScale is the divisor of the rating difference in the expected result.
const RatingScale = 600.0

// ExpectedResult is the Elo-style expected result for a side rated diff points
// above its opponent.
func ExpectedResult(diff float64) float64 {
	return 1 / (math.Pow(10, -diff/RatingScale) + 1)
}

// Importance weights a result by the stage it was played in.
func Importance(round string) float64 {
	switch {
	case round == "FIFA-WC-GS" || round == "FIFA-WC-R32" || round == "FIFA-WC-R16":
		return 50
	case strings.HasPrefix(round, "FIFA-WC"):
		return 60
	case round == "UEFA-NL-A" || round == "UEFA-NL-B" || round == "UEFA-NL-C" || round == "UEFA-NL-D":
		return 15
	default:
		return 25
	}
}

// HighStakes reports whether an underperforming result leaves ratings untouched.
func HighStakes(round string) bool {
	if strings.HasPrefix(round, "FIFA-WC") && round != "FIFA-WC-GS" {
		return true
	}
	switch round {
	case "UEFA-NL-QF", "UEFA-NL-SF", "UEFA-NL-3P", "UEFA-NL-F":
		return true
	}
	return false
}

// NewRating returns the rating of a team that scored result (1 win, 0.5 draw,
// 0 loss, 0.75 shootout win) against an opponent, both rated before the match.
func NewRating(rating, opponent float64, round string, result float64) float64 {
	expected := ExpectedResult(rating - opponent)
	if HighStakes(round) && result < expected {
		return rating
	}
	next := rating + Importance(round)*(result-expected)
	return math.Round(next*100) / 100
}

// UpdateRatings applies a match outcome to both teams' ratings.
func UpdateRatings(home, away *Team, round string, o *Outcome) {
	homePrev, awayPrev := home.Points, away.Points
	home.Points = NewRating(homePrev, awayPrev, round, o.HomeResult)
	away.Points = NewRating(awayPrev, homePrev, round, o.AwayResult)
}

// RecordGoals adds one result to the team's expected-goals statistics and refits
// the for/against lines.
func RecordGoals(t *Team, goalsFor, goalsAgainst, rankDiff int) {
	d := &t.XGoalData
	d.N++
	d.SumRankDiff += rankDiff
	d.SumGoalsFor += goalsFor
	d.SumGoalsAgainst += goalsAgainst
	d.SumRankDiffSquare += rankDiff * rankDiff
	d.SumDotFor += goalsFor * rankDiff
	d.SumDotAgainst += goalsAgainst * rankDiff

	if f, a, ok := LinearFit(*d); ok {
		t.XGoalFor, t.XGoalAgainst = f, a
	}
}

// LinearFit solves the ordinary least squares lines for goals scored and
// conceded against rank differential. ok is false when the rank differentials
// have no variance.
func LinearFit(d XGoalData) (goalsFor, goalsAgainst LinearParams, ok bool) {
	if d.N == 0 {
		return LinearParams{}, LinearParams{}, false
	}
	n := float64(d.N)
	sx := float64(d.SumRankDiff)
	meanX := sx / n
	denom := float64(d.SumRankDiffSquare) - meanX*sx
	if math.Abs(denom) < 1e-9 {
		return LinearParams{}, LinearParams{}, false
	}

	meanFor := float64(d.SumGoalsFor) / n
	meanAgainst := float64(d.SumGoalsAgainst) / n

	goalsFor.Slope = (float64(d.SumDotFor) - meanFor*sx) / denom
	goalsFor.Intercept = meanFor - goalsFor.Slope*meanX
	goalsAgainst.Slope = (float64(d.SumDotAgainst) - meanAgainst*sx) / denom
	goalsAgainst.Intercept = meanAgainst - goalsAgainst.Slope*meanX
	return goalsFor, goalsAgainst, true
}
