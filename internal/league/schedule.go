package league

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Bye pads groups with an odd number of teams.
const Bye = "BYE"

// matchdayOrder remaps generated matchdays so that long trips do not cluster,
// keyed by padded team count.
var matchdayOrder = map[int][]int{
	4:  {3, 2, 1, 5, 4, 6},
	6:  {5, 4, 3, 2, 1, 6, 10, 8, 9, 7},
	8:  {7, 6, 5, 4, 3, 2, 1, 12, 10, 9, 14, 11, 8, 13, 18, 16, 19, 15, 20, 17, 21},
	10: {9, 8, 7, 6, 5, 4, 3, 2, 1, 15, 12, 16, 10, 11, 14, 18, 13, 17},
}

// ScheduleInput is everything the scheduler needs for one round.
type ScheduleInput struct {
	GameplayID string
	Template   *RoundTemplate
	// Groups holds one team list per group. A knockout round takes either
	// pairs or a single bracket-ordered list.
	Groups [][]string
	// Venues is indexed by match number - 1 (allocator plan or fixed slot venues).
	Venues []*Venue
	// HomeVenues maps a team code to its home stadium.
	HomeVenues map[string]string
}

// BracketPairs pairs a bracket-ordered list: teams[i] plays teams[n-1-i].
func BracketPairs(teams []string) ([][]string, error) {
	n := len(teams)
	if n == 0 || n%2 != 0 {
		return nil, fmt.Errorf("bracket needs an even number of teams, got %d: %w", n, ErrValidation)
	}
	pairs := make([][]string, 0, n/2)
	for i := 0; i < n/2; i++ {
		pairs = append(pairs, []string{teams[i], teams[n-1-i]})
	}
	return pairs, nil
}

func validateGroups(t *RoundTemplate, groups [][]string) error {
	if len(groups) == 0 {
		return fmt.Errorf("round %s: no teams to schedule: %w", t.Code, ErrValidation)
	}
	if t.Kind == KindRoundRobin && t.NumberOfGroups > 0 && len(groups) != t.NumberOfGroups {
		return fmt.Errorf("round %s: expected %d groups, got %d: %w", t.Code, t.NumberOfGroups, len(groups), ErrValidation)
	}
	seen := map[string]bool{}
	for i, g := range groups {
		if len(g) < 2 {
			return fmt.Errorf("round %s: group %d has %d teams: %w", t.Code, i+1, len(g), ErrValidation)
		}
		if t.Kind == KindKnockout && len(g) != 2 {
			return fmt.Errorf("round %s: knockout tie %d has %d teams: %w", t.Code, i+1, len(g), ErrValidation)
		}
		for _, team := range g {
			if team == "" || team == Bye {
				return fmt.Errorf("round %s: invalid team %q: %w", t.Code, team, ErrValidation)
			}
			if seen[team] {
				return fmt.Errorf("round %s: team %s listed twice: %w", t.Code, team, ErrValidation)
			}
			seen[team] = true
		}
	}
	return nil
}

func parseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, len(values))
	for i, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", v, ErrInvariant)
		}
		dates[i] = d
	}
	return dates, nil
}

// Schedule builds every fixture of a round: pairings by the circle method,
// dates, venues and fixture codes.
func Schedule(in ScheduleInput) ([]*Match, error) {
	t := in.Template
	groups := in.Groups
	if t.Kind == KindKnockout && len(groups) == 1 && len(groups[0]) > 2 {
		pairs, err := BracketPairs(groups[0])
		if err != nil {
			return nil, err
		}
		groups = pairs
	}
	if err := validateGroups(t, groups); err != nil {
		return nil, err
	}

	matchdayDates, err := parseDates(t.MatchdayDates)
	if err != nil {
		return nil, fmt.Errorf("round %s matchday dates: %w", t.Code, err)
	}
	officialDates, err := parseDates(t.OfficialDates)
	if err != nil {
		return nil, fmt.Errorf("round %s official dates: %w", t.Code, err)
	}
	if len(matchdayDates) == 0 && len(officialDates) == 0 {
		return nil, fmt.Errorf("round %s has no dates: %w", t.Code, ErrInvariant)
	}

	span := 1
	if t.NumberOfGroups > 0 {
		span = int(math.Ceil(float64(t.NumberOfTeams) / float64(t.NumberOfGroups)))
	}

	var matches []*Match
	counter := 0 // running match number across groups

	for idx, group := range groups {
		teams := append([]string{}, group...)
		initialSize := len(teams)
		if len(teams)%2 != 0 {
			teams = append(teams, Bye)
		}
		n := len(teams)
		matchdays := (n - 1) * t.Legs
		perMatchday := n / 2
		groupName := t.GroupName(idx)
		dateOffset := int(math.Round(float64(idx) / (float64(len(groups)) / float64(span))))

		for md := 0; md < matchdays; md++ {
			swap := md + 1
			if order, ok := matchdayOrder[n]; ok && md < len(order) {
				swap = order[md]
			}

			leg := 0
			if n == 2 && t.Legs == 2 {
				leg = md + 1
			}
			display := 0
			if n > 2 {
				display = swap
			}

			inMatchday := 0
			for j := 0; j < perMatchday; j++ {
				home, away := teams[j], teams[n-1-j]
				if md >= matchdays/t.Legs && !(md%2 == 0 && home == teams[0]) {
					home, away = away, home
				}
				if md < matchdays/t.Legs && md%2 == 1 && home == teams[0] {
					home, away = away, home
				}
				if home == Bye || away == Bye {
					continue
				}

				index := idx + 1
				if n != 2 {
					index = perMatchday*(swap-1) + inMatchday + 1
					if initialSize%2 != 0 {
						index -= swap - 1
					}
				}
				inMatchday++
				counter++

				number := counter
				if len(t.MatchOrder) > 0 {
					if counter > len(t.MatchOrder) {
						return nil, fmt.Errorf("round %s: match %d beyond match order table: %w", t.Code, counter, ErrInvariant)
					}
					number = t.MatchOrder[counter-1]
				}

				m := &Match{
					GameplayID: in.GameplayID,
					Round:      t.Code,
					Group:      groupName,
					Leg:        leg,
					Matchday:   display,
					Home:       home,
					Away:       away,
				}

				// venue
				var venue *Venue
				if number-1 < len(in.Venues) {
					venue = in.Venues[number-1]
				}
				switch {
				case venue != nil:
					m.Venue = venue.Label()
				case len(t.NeutralVenues) > 0:
					m.Venue = t.NeutralVenues[(counter-1)%len(t.NeutralVenues)]
				default:
					m.Venue = in.HomeVenues[home]
				}

				// date
				switch {
				case len(officialDates) > 0:
					if number-1 >= len(officialDates) {
						return nil, fmt.Errorf("round %s: no official date for match %d: %w", t.Code, number, ErrInvariant)
					}
					m.Date = officialDates[number-1]
					if venue != nil {
						m.Date = KickoffUTC(m.Date, venue.Lon)
					}
				default:
					if swap-1 >= len(matchdayDates) {
						return nil, fmt.Errorf("round %s: no date for matchday %d: %w", t.Code, swap, ErrInvariant)
					}
					m.Date = matchdayDates[swap-1].AddDate(0, 0, dateOffset)
				}

				// code
				switch {
				case len(t.MatchOrder) > 0:
					m.Code = t.Code + "-M" + strconv.Itoa(number)
				case t.Kind == KindKnockout:
					m.Code = t.Code + "-M" + strconv.Itoa(index)
					if leg > 0 {
						m.Code += "-L" + strconv.Itoa(leg)
					}
				case leg > 0:
					m.Code = fmt.Sprintf("%s-%s-M%d-L%d", t.Code, groupName, index, leg)
				case display == 0:
					m.Code = fmt.Sprintf("%s-%s-M%d", t.Code, groupName, index)
				default:
					m.Code = fmt.Sprintf("%s-%s-MD%d-M%d", t.Code, groupName, display, index)
				}

				matches = append(matches, m)
			}

			// rotate: last team moves to index 1, index 0 stays fixed
			last := teams[n-1]
			copy(teams[2:], teams[1:n-1])
			teams[1] = last
		}
	}
	return matches, nil
}
