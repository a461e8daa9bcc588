package league

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RoundKind is the format of a round.
type RoundKind string

const (
	KindKnockout   RoundKind = "knockout"
	KindRoundRobin RoundKind = "roundrobin"
)

// Slot is where a finishing position leads: either a single next round, or
// for an edge position, a ranking across groups mapped to next rounds.
type Slot struct {
	Next string
	Edge map[string]string
}

// IsEdge reports whether the slot is decided across groups.
func (s Slot) IsEdge() bool { return len(s.Edge) > 0 }

// UnmarshalYAML accepts either a round code or an edge map.
func (s *Slot) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var code string
	if err := unmarshal(&code); err == nil {
		s.Next = code
		return nil
	}
	var edge map[string]string
	if err := unmarshal(&edge); err != nil {
		return fmt.Errorf("slot is neither a round code nor an edge map: %w", err)
	}
	s.Edge = edge
	return nil
}

// RoundTemplate is the immutable definition of a round, shared by every gameplay.
type RoundTemplate struct {
	Federation     string          `yaml:"federation"`
	Hosts          *int            `yaml:"hosts"`
	Code           string          `yaml:"code"`
	Name           string          `yaml:"name"`
	Kind           RoundKind       `yaml:"kind"`
	Legs           int             `yaml:"legs"`
	NumberOfTeams  int             `yaml:"numberOfTeams"`
	NumberOfGroups int             `yaml:"numberOfGroups"`
	EntryTeams     []int           `yaml:"entryTeams"`
	AdvancedTo     map[string]Slot `yaml:"advancedTo"`

	MatchdayDates   []string `yaml:"matchdayDates"`
	OfficialDates   []string `yaml:"officialDates"`
	MatchOrder      []int    `yaml:"matchOrder"`
	NeutralVenues   []string `yaml:"neutralVenues"`
	VenueSlotGroups []int    `yaml:"venueSlotGroups"`
	AllocateVenues  bool     `yaml:"allocateVenues"`
	NoElimination   bool     `yaml:"noElimination"`
	Terminal        bool     `yaml:"terminal"`
}

// Validate checks the template's internal consistency.
func (t *RoundTemplate) Validate() error {
	if t.Code == "" {
		return fmt.Errorf("template without code: %w", ErrInvariant)
	}
	if t.Kind != KindKnockout && t.Kind != KindRoundRobin {
		return fmt.Errorf("template %s: unknown kind %q: %w", t.Code, t.Kind, ErrInvariant)
	}
	if t.Legs != 1 && t.Legs != 2 {
		return fmt.Errorf("template %s: legs must be 1 or 2: %w", t.Code, ErrInvariant)
	}
	if len(t.EntryTeams) != 0 && len(t.EntryTeams) != 2 {
		return fmt.Errorf("template %s: entry teams must be a [start, end) pair: %w", t.Code, ErrInvariant)
	}
	edges := 0
	for pos, slot := range t.AdvancedTo {
		if slot.Next == "" && !slot.IsEdge() {
			return fmt.Errorf("template %s: empty slot %s: %w", t.Code, pos, ErrInvariant)
		}
		if slot.IsEdge() {
			edges++
		}
	}
	if edges > 1 {
		return fmt.Errorf("template %s: more than one edge position: %w", t.Code, ErrInvariant)
	}
	return nil
}

// IsTopTier reports whether the round belongs to the final tournament.
func (t *RoundTemplate) IsTopTier() bool {
	return strings.HasPrefix(t.Code, "FIFA")
}

// SlotAt returns the slot for a finishing position.
func (t *RoundTemplate) SlotAt(position int) (Slot, bool) {
	s, ok := t.AdvancedTo[strconv.Itoa(position)]
	return s, ok
}

// EdgePosition returns the finishing position decided across groups, if any.
func (t *RoundTemplate) EdgePosition() (int, Slot, bool) {
	for key, slot := range t.AdvancedTo {
		if !slot.IsEdge() {
			continue
		}
		pos, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		return pos, slot, true
	}
	return 0, Slot{}, false
}

// NextRounds lists every round code reachable from this round, sorted.
func (t *RoundTemplate) NextRounds() []string {
	seen := map[string]bool{}
	for _, slot := range t.AdvancedTo {
		if slot.Next != "" {
			seen[slot.Next] = true
		}
		for _, next := range slot.Edge {
			seen[next] = true
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// GroupName returns the display name of the idx-th group (0-based).
func (t *RoundTemplate) GroupName(idx int) string {
	switch {
	case t.NumberOfGroups == 1:
		return "GS"
	case t.NumberOfGroups > 1 && strings.HasPrefix(t.Code, "UEFA-NL"):
		parts := strings.Split(t.Code, "-")
		return parts[len(parts)-1] + strconv.Itoa(idx+1)
	case t.NumberOfGroups > 1:
		return string(rune('A' + idx))
	default:
		return ""
	}
}

// NewRound instantiates the template for a gameplay with the given entries.
func (t *RoundTemplate) NewRound(gameplayID string, teams []RoundTeam) *Round {
	r := &Round{
		GameplayID:     gameplayID,
		Code:           t.Code,
		Name:           t.Name,
		Kind:           t.Kind,
		Legs:           t.Legs,
		NumberOfTeams:  t.NumberOfTeams,
		NumberOfGroups: t.NumberOfGroups,
		Teams:          teams,
	}
	if r.Teams == nil {
		r.Teams = []RoundTeam{}
	}
	for i := 0; i < t.NumberOfGroups; i++ {
		r.Groups = append(r.Groups, Group{Name: t.GroupName(i), Rows: []GroupRow{}})
	}
	return r
}
