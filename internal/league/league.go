package league

import (
	"sort"
	"time"
)

// Edition selects the venue pool and the special fixture numbering of a gameplay.
type Edition string

const (
	EditionNorthAmerica Edition = "north_america"
	EditionCentenario   Edition = "centenario"
	EditionCustom       Edition = "custom"
)

// Host is one host country of a gameplay.
type Host struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	Order      int    `json:"order" yaml:"order" validate:"gte=0"`
	Federation string `json:"federation" yaml:"federation" validate:"required"`
}

// Gameplay is one independent playthrough of the tournament.
type Gameplay struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Edition     Edition   `json:"edition"`
	Hosts       []Host    `json:"hosts"`
	CurrentDate time.Time `json:"currentDate"`
}

// HostsOrdered returns the host country names sorted by display order.
func (g *Gameplay) HostsOrdered() []string {
	hosts := make([]Host, len(g.Hosts))
	copy(hosts, g.Hosts)
	sort.SliceStable(hosts, func(i, j int) bool {
		return hosts[i].Order < hosts[j].Order
	})
	names := make([]string, len(hosts))
	for i, h := range hosts {
		names[i] = h.Name
	}
	return names
}

// IsHost reports whether code is one of the gameplay's host countries.
func (g *Gameplay) IsHost(code string) bool {
	for _, h := range g.Hosts {
		if h.Name == code {
			return true
		}
	}
	return false
}

// XGoalData holds the cumulative sufficient statistics of the expected-goals regression.
type XGoalData struct {
	N                 int `json:"n" yaml:"n"`
	SumRankDiff       int `json:"sumRankDiff" yaml:"sumRankDiff"`
	SumGoalsFor       int `json:"sumGoalsFor" yaml:"sumGoalsFor"`
	SumGoalsAgainst   int `json:"sumGoalsAgainst" yaml:"sumGoalsAgainst"`
	SumRankDiffSquare int `json:"sumRankDiffSquare" yaml:"sumRankDiffSquare"`
	SumDotFor         int `json:"sumDotFor" yaml:"sumDotFor"`
	SumDotAgainst     int `json:"sumDotAgainst" yaml:"sumDotAgainst"`
}

// LinearParams maps a rank differential to expected goals.
type LinearParams struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at x.
func (p LinearParams) At(x float64) float64 {
	return p.Slope*x + p.Intercept
}

// Team is a national team inside one gameplay.
type Team struct {
	GameplayID   string       `json:"gameplayId"`
	Code         string       `json:"code"`
	Federation   string       `json:"federation"`
	IsHost       bool         `json:"isHost"`
	Points       float64      `json:"points"`
	XGoalData    XGoalData    `json:"xGoalData"`
	XGoalFor     LinearParams `json:"xGoalFor"`
	XGoalAgainst LinearParams `json:"xGoalAgainst"`
}

// PastPlacement is a historic World Cup finish.
type PastPlacement struct {
	Year  int    `json:"year" yaml:"year"`
	Place string `json:"place" yaml:"place"`
}

// TeamReference is the static, edition-wide record of a national team.
type TeamReference struct {
	Code               string          `json:"code" yaml:"code"`
	Name               string          `json:"name" yaml:"name"`
	Federation         string          `json:"federation" yaml:"federation"`
	HomeVenue          string          `json:"homeVenue" yaml:"homeVenue"`
	InitialPoints      float64         `json:"initialPoints" yaml:"initialPoints"`
	InitialUEFARanking int             `json:"initialUefaRanking,omitempty" yaml:"initialUefaRanking"`
	PastWorldCups      []PastPlacement `json:"pastWorldCups" yaml:"pastWorldCups"`
	XGoalData          XGoalData       `json:"xGoalData" yaml:"xGoalData"`
}

// Ranking is one ranking table entry. An empty GameplayID marks global history.
type Ranking struct {
	GameplayID string    `json:"gameplayId,omitempty"`
	Team       string    `json:"team"`
	Date       time.Time `json:"date"`
	Position   int       `json:"position"`
	Points     float64   `json:"points"`
}

// TeamStatus is a team's standing within a round.
type TeamStatus string

const (
	StatusUndetermined TeamStatus = "undetermined"
	StatusAdvanced     TeamStatus = "advanced"
	StatusEliminated   TeamStatus = "eliminated"
	StatusFinished     TeamStatus = "finished"
)

// RoundTeam is a team entry of a round.
type RoundTeam struct {
	Team          string     `json:"team"`
	QualifiedAs   string     `json:"qualifiedAs,omitempty"`
	QualifiedDate *time.Time `json:"qualifiedDate,omitempty"`
	Status        TeamStatus `json:"status,omitempty"`
	AdvancedTo    string     `json:"advancedTo,omitempty"`
}

// GroupRow is one line of a group table.
type GroupRow struct {
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
	GoalDiff     int    `json:"goalDiff"`
	Points       int    `json:"points"`
}

// Group is a named group table.
type Group struct {
	Name string     `json:"name"`
	Rows []GroupRow `json:"rows"`
}

// Round is one competitive stage within a gameplay.
type Round struct {
	GameplayID     string      `json:"gameplayId"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Kind           RoundKind   `json:"kind"`
	Legs           int         `json:"legs"`
	NumberOfTeams  int         `json:"numberOfTeams"`
	NumberOfGroups int         `json:"numberOfGroups,omitempty"`
	Teams          []RoundTeam `json:"teams"`
	Groups         []Group     `json:"groups,omitempty"`
}

// Group returns the named group, or nil.
func (r *Round) Group(name string) *Group {
	for i := range r.Groups {
		if r.Groups[i].Name == name {
			return &r.Groups[i]
		}
	}
	return nil
}

// Team returns the entry for code, or nil.
func (r *Round) Team(code string) *RoundTeam {
	for i := range r.Teams {
		if r.Teams[i].Team == code {
			return &r.Teams[i]
		}
	}
	return nil
}

// Shootout is a penalty shootout record. Kicks are listed in the order taken.
type Shootout struct {
	HomeKicks   []bool `json:"homeKicks"`
	AwayKicks   []bool `json:"awayKicks"`
	HomeScore   int    `json:"homeScore"`
	AwayScore   int    `json:"awayScore"`
	FirstKicker string `json:"firstKicker"`
}

// Match represents a fixture between two teams.
type Match struct {
	ID         int64     `json:"id"`
	GameplayID string    `json:"gameplayId"`
	Code       string    `json:"code"`
	Round      string    `json:"round"`
	Group      string    `json:"group,omitempty"`
	Leg        int       `json:"leg,omitempty"`
	Matchday   int       `json:"matchday,omitempty"`
	Date       time.Time `json:"date"`
	Venue      string    `json:"venue,omitempty"`
	Home       string    `json:"homeTeam"`
	Away       string    `json:"awayTeam"`

	HomeGoals          *int      `json:"homeGoals,omitempty"`
	AwayGoals          *int      `json:"awayGoals,omitempty"`
	HomeExtraTimeGoals *int      `json:"homeExtraTimeGoals,omitempty"`
	AwayExtraTimeGoals *int      `json:"awayExtraTimeGoals,omitempty"`
	HomeAggs           *int      `json:"homeAggs,omitempty"`
	AwayAggs           *int      `json:"awayAggs,omitempty"`
	HomeGoalMinutes    []float64 `json:"homeGoalMinutes,omitempty"`
	AwayGoalMinutes    []float64 `json:"awayGoalMinutes,omitempty"`
	Shootout           *Shootout `json:"shootout,omitempty"`
}

// Played reports whether the match has a final score.
func (m *Match) Played() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Involves reports whether code plays in the match.
func (m *Match) Involves(code string) bool {
	return m.Home == code || m.Away == code
}

// Venue is a stadium that can host tournament matches.
type Venue struct {
	ID               int64   `json:"id,omitempty"`
	GameplayID       string  `json:"gameplayId,omitempty" yaml:"-"`
	Name             string  `json:"name" yaml:"name" validate:"required"`
	City             string  `json:"city" yaml:"city" validate:"required"`
	HostCountry      string  `json:"hostCountry" yaml:"hostCountry" validate:"required"`
	HostOpeningMatch string  `json:"hostOpeningMatch,omitempty" yaml:"hostOpeningMatch"`
	Capacity         int     `json:"capacity" yaml:"capacity" validate:"gte=20000"`
	Edition          Edition `json:"edition" yaml:"-"`
	SlotGroup        int     `json:"slotGroup" yaml:"slotGroup" validate:"gte=1,lte=8"`
	Lat              float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon              float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

// Label is the venue string written onto fixtures.
func (v Venue) Label() string {
	return v.Name + ", " + v.City
}

// Tier returns how many group-stage matches the venue is pre-assigned to host.
func (v Venue) Tier() int {
	switch v.SlotGroup {
	case 3, 7, 8:
		return 4
	default:
		return 3
	}
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
