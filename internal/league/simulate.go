package league

import (
	"fmt"
	"math"
	"sort"
)

const (
	// MaxGoals is the number of goal counts (0..MaxGoals-1) in a score distribution.
	MaxGoals = 20
	// MinExpectedGoals floors the linear model so extreme rank gaps keep a valid Poisson rate.
	MinExpectedGoals = 0.05
)

// ExpectedGoals averages the team's attacking line and the opponent's defensive line.
// rankDiff is the team's ranking position minus the opponent's.
func ExpectedGoals(team, opponent *Team, rankDiff int) float64 {
	rd := float64(rankDiff)
	xg := (team.XGoalFor.At(rd) + opponent.XGoalAgainst.At(-rd)) / 2
	if math.IsNaN(xg) || xg < MinExpectedGoals {
		return MinExpectedGoals
	}
	return xg
}

// ScoreDistribution returns the Poisson probabilities of scoring 0..MaxGoals-1
// goals, renormalised over the truncated support.
func ScoreDistribution(xg float64) []float64 {
	dist := make([]float64, MaxGoals)
	// p(k) = xg^k e^-xg / k!, accumulated iteratively
	p := math.Exp(-xg)
	sum := 0.0
	for k := 0; k < MaxGoals; k++ {
		if k > 0 {
			p *= xg / float64(k)
		}
		dist[k] = p
		sum += p
	}
	for k := range dist {
		dist[k] /= sum
	}
	return dist
}

// SampleGoals draws a goal count by inverse-CDF sampling. A non-nil forced
// count is returned unchanged. Extra time divides the drawn count by three.
func SampleGoals(dist []float64, rng Rand, forced *int, extraTime bool) int {
	if forced != nil {
		return *forced
	}
	u := rng.Float64()
	score := len(dist) - 1
	acc := 0.0
	for k, p := range dist {
		acc += p
		if u < acc {
			score = k
			break
		}
	}
	if extraTime {
		score = int(math.Round(float64(score) / 3))
	}
	return score
}

type period struct {
	from, to, stoppage int
}

func buildMinutePool(periods ...period) []float64 {
	var pool []float64
	for _, p := range periods {
		for m := p.from; m <= p.to; m++ {
			pool = append(pool, float64(m))
		}
		for k := 1; k <= p.stoppage; k++ {
			pool = append(pool, float64(p.to*100+k)/100)
		}
	}
	return pool
}

var (
	regulationMinutes = buildMinutePool(period{1, 45, 5}, period{46, 90, 10})
	extraTimeMinutes  = buildMinutePool(period{91, 105, 3}, period{106, 120, 5})
)

// GoalMinutes draws distinct goal minutes for both sides, each list sorted.
func GoalMinutes(rng Rand, homeGoals, awayGoals int, extraTime bool) ([]float64, []float64, error) {
	src := regulationMinutes
	if extraTime {
		src = extraTimeMinutes
	}
	n := homeGoals + awayGoals
	if homeGoals < 0 || awayGoals < 0 || n > len(src) {
		return nil, nil, fmt.Errorf("cannot place %d-%d goals in %d minutes: %w", homeGoals, awayGoals, len(src), ErrValidation)
	}
	pool := make([]float64, len(src))
	copy(pool, src)
	// partial Fisher-Yates: the first n entries become the draw
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	home := append([]float64{}, pool[:homeGoals]...)
	away := append([]float64{}, pool[homeGoals:n]...)
	sort.Float64s(home)
	sort.Float64s(away)
	return home, away, nil
}

// Overrides force parts of a simulation ("manual" mode).
type Overrides struct {
	HomeGoals          *int
	AwayGoals          *int
	HomeExtraTimeGoals *int
	AwayExtraTimeGoals *int
	PenaltyWinner      string
}

// Outcome summarises a simulated match for the rating update.
type Outcome struct {
	RankDiff       int
	HomeRegulation int
	AwayRegulation int
	ExtraTime      bool
	HomeResult     float64
	AwayResult     float64
}

// Play simulates m between home and away and writes the result onto m.
// rankDiff is the home ranking position minus the away ranking position.
func Play(m *Match, home, away *Team, rankDiff int, rng Rand, o Overrides) (*Outcome, error) {
	// 1) guards
	if m.Played() {
		return nil, fmt.Errorf("match %s already played: %w", m.Code, ErrInvalidState)
	}
	if m.Leg == 2 && (m.HomeAggs == nil || m.AwayAggs == nil) {
		return nil, fmt.Errorf("second leg %s has no first-leg aggregate: %w", m.Code, ErrInvalidState)
	}
	if o.PenaltyWinner != "" && !m.Involves(o.PenaltyWinner) {
		return nil, fmt.Errorf("penalty winner %s does not play %s: %w", o.PenaltyWinner, m.Code, ErrValidation)
	}

	// 2) regulation score
	homeDist := ScoreDistribution(ExpectedGoals(home, away, rankDiff))
	awayDist := ScoreDistribution(ExpectedGoals(away, home, -rankDiff))
	hg := SampleGoals(homeDist, rng, o.HomeGoals, false)
	ag := SampleGoals(awayDist, rng, o.AwayGoals, false)
	homeMinutes, awayMinutes, err := GoalMinutes(rng, hg, ag, false)
	if err != nil {
		return nil, fmt.Errorf("goal minutes for %s: %w", m.Code, err)
	}

	out := &Outcome{RankDiff: rankDiff, HomeRegulation: hg, AwayRegulation: ag}
	homeTotal, awayTotal := hg, ag

	// 3) sudden-death contexts
	var homeAggs, awayAggs int
	extraTime := false
	switch {
	case m.Leg == 2:
		homeAggs, awayAggs = *m.HomeAggs+hg, *m.AwayAggs+ag
		// level on aggregate and on away goals
		extraTime = homeAggs == awayAggs && homeAggs-hg == ag
	case m.Leg == 0 && m.Group == "":
		extraTime = hg == ag
	}

	if extraTime {
		out.ExtraTime = true
		het := SampleGoals(homeDist, rng, o.HomeExtraTimeGoals, true)
		aet := SampleGoals(awayDist, rng, o.AwayExtraTimeGoals, true)
		homeET, awayET, err := GoalMinutes(rng, het, aet, true)
		if err != nil {
			return nil, fmt.Errorf("extra-time minutes for %s: %w", m.Code, err)
		}
		homeMinutes = append(homeMinutes, homeET...)
		awayMinutes = append(awayMinutes, awayET...)
		homeTotal += het
		awayTotal += aet
		homeAggs += het
		awayAggs += aet
		m.HomeExtraTimeGoals, m.AwayExtraTimeGoals = IntPtr(het), IntPtr(aet)

		if (m.Leg == 2 && het == 0 && aet == 0) || (m.Leg == 0 && het == aet) {
			m.Shootout = PenaltyShootout(rng, m.Home, m.Away, o.PenaltyWinner)
		}
	}

	m.HomeGoals, m.AwayGoals = IntPtr(homeTotal), IntPtr(awayTotal)
	m.HomeGoalMinutes, m.AwayGoalMinutes = homeMinutes, awayMinutes
	if m.Leg == 2 {
		m.HomeAggs, m.AwayAggs = IntPtr(homeAggs), IntPtr(awayAggs)
	}

	// 4) rating results follow the final score, extra time included; the goal
	// models only ever see regulation goals
	switch {
	case homeTotal > awayTotal:
		out.HomeResult, out.AwayResult = 1, 0
	case homeTotal < awayTotal:
		out.HomeResult, out.AwayResult = 0, 1
	case m.Shootout != nil && m.Shootout.HomeScore > m.Shootout.AwayScore:
		out.HomeResult, out.AwayResult = 0.75, 0.5
	case m.Shootout != nil:
		out.HomeResult, out.AwayResult = 0.5, 0.75
	default:
		out.HomeResult, out.AwayResult = 0.5, 0.5
	}
	return out, nil
}

// CarryAggregates seeds the second leg with the first leg's score, seen from
// the second leg's home side.
func CarryAggregates(first, second *Match) error {
	if !first.Played() {
		return fmt.Errorf("first leg %s not played: %w", first.Code, ErrInvalidState)
	}
	if first.Home != second.Away || first.Away != second.Home {
		return fmt.Errorf("legs %s and %s are not the same tie: %w", first.Code, second.Code, ErrInvariant)
	}
	second.HomeAggs = IntPtr(*first.AwayGoals)
	second.AwayAggs = IntPtr(*first.HomeGoals)
	return nil
}

// SecondLegCode returns the code of the return leg of a first-leg fixture.
func SecondLegCode(code string) (string, bool) {
	const suffix = "-L1"
	if len(code) < len(suffix) || code[len(code)-len(suffix):] != suffix {
		return "", false
	}
	return code[:len(code)-1] + "2", true
}
