// Package catalog holds the static tournament data shared by every gameplay:
// round templates, team references and the venue pool of each edition.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v2"

	"github.com/utakatalp/world-cup-simulator/internal/league"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is loaded once at startup and never mutated afterwards.
type Catalog struct {
	StartDate   string                            `yaml:"startDate"`
	RankingDate string                            `yaml:"rankingDate"`
	Teams       []league.TeamReference            `yaml:"teams"`
	Rounds      []*league.RoundTemplate           `yaml:"rounds"`
	Venues      map[league.Edition][]league.Venue `yaml:"venues"`

	teamIdx map[string]int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. JSON is accepted as well since it is a subset of YAML.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported catalog format %q: %w", ext, league.ErrValidation)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for ed, venues := range c.Venues {
		for i := range venues {
			venues[i].Edition = ed
		}
	}
	c.teamIdx = make(map[string]int, len(c.Teams))
	for i, t := range c.Teams {
		c.teamIdx[t.Code] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks templates, team references and venues.
func (c *Catalog) Validate() error {
	if _, err := c.Start(); err != nil {
		return err
	}
	if _, err := league.ParseDate(c.RankingDate); err != nil {
		return fmt.Errorf("catalog ranking date: %w", league.ErrValidation)
	}
	if len(c.teamIdx) != len(c.Teams) {
		return fmt.Errorf("catalog has duplicate team codes: %w", league.ErrInvariant)
	}
	for _, t := range c.Teams {
		if t.Code == "" || t.Federation == "" {
			return fmt.Errorf("team reference %q lacks code or federation: %w", t.Name, league.ErrInvariant)
		}
	}
	codes := map[string]bool{}
	for _, t := range c.Rounds {
		if err := t.Validate(); err != nil {
			return err
		}
		codes[t.Code] = true
	}
	for _, t := range c.Rounds {
		for _, next := range t.NextRounds() {
			if !codes[next] {
				return fmt.Errorf("template %s advances to unknown round %s: %w", t.Code, next, league.ErrInvariant)
			}
		}
	}

	validate := validator.New()
	for ed, venues := range c.Venues {
		for _, v := range venues {
			if err := validate.Struct(v); err != nil {
				return fmt.Errorf("venue %q of %s: %v: %w", v.Name, ed, err, league.ErrValidation)
			}
		}
	}
	return nil
}

// Start is the in-game date every new gameplay begins on.
func (c *Catalog) Start() (time.Time, error) {
	d, err := league.ParseDate(c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("catalog start date %q: %w", c.StartDate, league.ErrValidation)
	}
	return d, nil
}

// Team looks up a team reference by code.
func (c *Catalog) Team(code string) (*league.TeamReference, bool) {
	i, ok := c.teamIdx[code]
	if !ok {
		return nil, false
	}
	return &c.Teams[i], true
}

// HomeVenues maps every team code to its home venue label.
func (c *Catalog) HomeVenues() map[string]string {
	m := make(map[string]string, len(c.Teams))
	for _, t := range c.Teams {
		m[t.Code] = t.HomeVenue
	}
	return m
}

func hostFederations(hosts []league.Host) map[string]bool {
	feds := map[string]bool{}
	for _, h := range hosts {
		feds[h.Federation] = true
	}
	return feds
}

// applies decides whether a template is part of a gameplay with the given hosts.
// Templates without a host count always apply; federation templates bind to
// how many hosts their federation provides, and FIFA templates to how many
// federations are hosting.
func applies(t *league.RoundTemplate, hosts []league.Host, feds map[string]bool) bool {
	if t.Hosts == nil {
		return true
	}
	n := *t.Hosts
	switch {
	case n == len(hosts) && feds[t.Federation]:
		return true
	case n == 0 && !feds[t.Federation]:
		return true
	case t.Federation == "FIFA" && n == len(feds):
		return true
	}
	return false
}

// RoundsForHosts returns the templates that apply to a host configuration,
// in catalog order.
func (c *Catalog) RoundsForHosts(hosts []league.Host) []*league.RoundTemplate {
	feds := hostFederations(hosts)
	var out []*league.RoundTemplate
	for _, t := range c.Rounds {
		if applies(t, hosts, feds) {
			out = append(out, t)
		}
	}
	return out
}

// Template returns the template with code that applies to the hosts.
func (c *Catalog) Template(hosts []league.Host, code string) (*league.RoundTemplate, error) {
	for _, t := range c.RoundsForHosts(hosts) {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, fmt.Errorf("round template %s: %w", code, league.ErrNotFound)
}

// EntryOrder lists a federation's teams in seeding order, hosts excluded:
// teams without a continental ranking first, then by that ranking, then by
// initial points descending.
func (c *Catalog) EntryOrder(federation string, hosts []league.Host) []string {
	isHost := map[string]bool{}
	for _, h := range hosts {
		isHost[h.Name] = true
	}
	var refs []league.TeamReference
	for _, t := range c.Teams {
		if t.Federation == federation && !isHost[t.Code] {
			refs = append(refs, t)
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		ri, rj := refs[i].InitialUEFARanking > 0, refs[j].InitialUEFARanking > 0
		if ri != rj {
			return !ri
		}
		if refs[i].InitialUEFARanking != refs[j].InitialUEFARanking {
			return refs[i].InitialUEFARanking < refs[j].InitialUEFARanking
		}
		return refs[i].InitialPoints > refs[j].InitialPoints
	})
	codes := make([]string, len(refs))
	for i, t := range refs {
		codes[i] = t.Code
	}
	return codes
}

// EntryTeams returns the teams a template starts with. The group stage of the
// final tournament starts with the hosts; other templates take their slice of
// the federation's entry order.
func (c *Catalog) EntryTeams(t *league.RoundTemplate, hosts []league.Host) []league.RoundTeam {
	if t.Code == "FIFA-WC-GS" {
		sorted := make([]league.Host, len(hosts))
		copy(sorted, hosts)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
		teams := make([]league.RoundTeam, len(sorted))
		for i, h := range sorted {
			teams[i] = league.RoundTeam{Team: h.Name, QualifiedAs: "Host", Status: league.StatusUndetermined}
		}
		return teams
	}
	if t.Federation == "FIFA" || len(t.EntryTeams) != 2 {
		return nil
	}
	order := c.EntryOrder(t.Federation, hosts)
	start, end := t.EntryTeams[0], t.EntryTeams[1]
	if start > len(order) {
		start = len(order)
	}
	if end > len(order) {
		end = len(order)
	}
	var teams []league.RoundTeam
	for _, code := range order[start:end] {
		teams = append(teams, league.RoundTeam{Team: code, Status: league.StatusUndetermined})
	}
	return teams
}

// EditionVenues returns copies of the venue pool of an edition.
func (c *Catalog) EditionVenues(ed league.Edition) []*league.Venue {
	pool := c.Venues[ed]
	out := make([]*league.Venue, len(pool))
	for i := range pool {
		v := pool[i]
		out[i] = &v
	}
	return out
}

// InitialRankings ranks every team by initial points on the ranking date.
// These entries are global history shared by all gameplays.
func (c *Catalog) InitialRankings() ([]league.Ranking, error) {
	date, err := league.ParseDate(c.RankingDate)
	if err != nil {
		return nil, fmt.Errorf("catalog ranking date: %w", league.ErrValidation)
	}
	refs := make([]league.TeamReference, len(c.Teams))
	copy(refs, c.Teams)
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].InitialPoints != refs[j].InitialPoints {
			return refs[i].InitialPoints > refs[j].InitialPoints
		}
		return refs[i].Code < refs[j].Code
	})
	out := make([]league.Ranking, len(refs))
	for i, t := range refs {
		out[i] = league.Ranking{Team: t.Code, Date: date, Position: i + 1, Points: t.InitialPoints}
	}
	return out, nil
}
