package league

const (
	// PenaltyScoreProbability is the chance that a single kick is converted.
	PenaltyScoreProbability = 0.75
	shootoutRounds          = 5
	// maxShootoutRounds bounds sudden death for degenerate random sources.
	maxShootoutRounds = 50
)

type kicker struct {
	team  string
	kicks []bool
	score int
}

func (k *kicker) take(scored bool) {
	k.kicks = append(k.kicks, scored)
	if scored {
		k.score++
	}
}

func (k *kicker) left() int {
	if len(k.kicks) >= shootoutRounds {
		return 0
	}
	return shootoutRounds - len(k.kicks)
}

// decided reports whether one side can no longer be caught within the
// regulation kicks.
func decided(a, b *kicker) bool {
	return a.score+a.left() < b.score || b.score+b.left() < a.score
}

// PenaltyShootout simulates a shootout between home and away. When winner
// names a side that lost the simulation, the two kick sequences are swapped
// so that side is recorded as the winner.
func PenaltyShootout(rng Rand, home, away, winner string) *Shootout {
	first, second := &kicker{team: home}, &kicker{team: away}
	if rng.Float64() < 0.5 {
		first, second = second, first
	}

	for round := 1; ; round++ {
		first.take(rng.Float64() < PenaltyScoreProbability)
		if len(second.kicks) < shootoutRounds && decided(first, second) {
			break
		}

		scored := rng.Float64() < PenaltyScoreProbability
		if round >= maxShootoutRounds {
			scored = !first.kicks[len(first.kicks)-1]
		}
		second.take(scored)
		if len(second.kicks) < shootoutRounds && decided(first, second) {
			break
		}
		if len(second.kicks) >= shootoutRounds && first.score != second.score {
			break
		}
	}

	if winner != "" {
		simulated := first.team
		if second.score > first.score {
			simulated = second.team
		}
		if simulated != winner {
			// the kick sequences stay in order; only the sides trade places
			first.team, second.team = second.team, first.team
		}
	}

	s := &Shootout{FirstKicker: first.team}
	for _, k := range []*kicker{first, second} {
		if k.team == home {
			s.HomeKicks, s.HomeScore = k.kicks, k.score
		} else {
			s.AwayKicks, s.AwayScore = k.kicks, k.score
		}
	}
	return s
}
