// Command groupsim plays a round-robin qualifying round offline and prints
// its group tables with the qualification odds of every team.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/catalog"
	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/store"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

func main() {
	roundCode := flag.String("round", "OFC-1st", "round-robin round to play")
	matchdays := flag.Int("matchdays", 2, "matchdays to play before computing odds (0 plays all)")
	runs := flag.Int("runs", 10000, "simulations per group")
	seed := flag.Int64("seed", 1, "random seed")
	catalogPath := flag.String("catalog", "", "catalog file (defaults to the embedded one)")
	verbose := flag.Bool("v", false, "log every step")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.InfoLevel)
	}
	log := logrus.NewEntry(logger).WithField("component", "groupsim")

	if err := run(context.Background(), log, options{
		round:     *roundCode,
		matchdays: *matchdays,
		runs:      *runs,
		seed:      *seed,
		catalog:   *catalogPath,
	}); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	round     string
	matchdays int
	runs      int
	seed      int64
	catalog   string
}

func run(ctx context.Context, log *logrus.Entry, opt options) error {
	cat, err := catalog.Default()
	if opt.catalog != "" {
		cat, err = catalog.Load(opt.catalog)
	}
	if err != nil {
		return err
	}
	svc := tournament.NewService(store.NewMemStore(), cat, league.NewLockedRand(opt.seed), log)

	// 1) gameplay with the default hosts
	g, err := svc.CreateGameplay(ctx, tournament.CreateGameplayRequest{
		Name:    "groupsim",
		Edition: league.EditionNorthAmerica,
		Hosts: []league.Host{
			{Name: "MEX", Order: 1, Federation: "CONCACAF"},
			{Name: "USA", Order: 2, Federation: "CONCACAF"},
			{Name: "CAN", Order: 3, Federation: "CONCACAF"},
		},
	})
	if err != nil {
		return err
	}
	if _, err := svc.CreateTeams(ctx, g.ID); err != nil {
		return err
	}
	rounds, err := svc.CreateRounds(ctx, g.ID)
	if err != nil {
		return err
	}

	// 2) draw in seeding order
	var round *league.Round
	for _, r := range rounds {
		if r.Code == opt.round {
			round = r
		}
	}
	if round == nil {
		return fmt.Errorf("round %s: %w", opt.round, league.ErrNotFound)
	}
	if round.Kind != league.KindRoundRobin || round.NumberOfGroups == 0 {
		return fmt.Errorf("round %s is not a group round: %w", opt.round, league.ErrValidation)
	}
	groups := draw(round)
	matches, err := svc.ScheduleRound(ctx, tournament.ScheduleRoundRequest{GameplayID: g.ID, RoundCode: round.Code, Groups: groups})
	if err != nil {
		return err
	}

	// 3) play
	for _, m := range matches {
		if opt.matchdays > 0 && m.Matchday > opt.matchdays {
			continue
		}
		if _, err := svc.SimulateMatch(ctx, tournament.SimulateMatchRequest{GameplayID: g.ID, MatchID: m.ID}); err != nil {
			return err
		}
	}
	standings, err := svc.RecomputeStandings(ctx, tournament.RecomputeStandingsRequest{GameplayID: g.ID, RoundCode: round.Code})
	if err != nil {
		return err
	}

	// 4) report
	for _, grp := range standings.Groups {
		if err := league.WriteTable(os.Stdout, fmt.Sprintf("%s group %s", round.Name, grp.Name), grp.Rows); err != nil {
			return err
		}
		preds, err := svc.QualificationOdds(ctx, tournament.QualificationOddsRequest{
			GameplayID: g.ID, RoundCode: round.Code, Group: grp.Name, Runs: opt.runs,
		})
		if err != nil {
			return err
		}
		if err := writeOdds(preds); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

// draw deals the round's entries into its groups one pot at a time.
func draw(r *league.Round) [][]string {
	groups := make([][]string, r.NumberOfGroups)
	for i, t := range r.Teams {
		pot, idx := i/r.NumberOfGroups, i%r.NumberOfGroups
		if pot%2 == 1 {
			idx = r.NumberOfGroups - 1 - idx
		}
		groups[idx] = append(groups[idx], t.Team)
	}
	return groups
}

func writeOdds(preds []league.Prediction) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	header := []string{"Team"}
	if len(preds) > 0 {
		for i := range preds[0].Positions {
			header = append(header, fmt.Sprintf("%d%%", i+1))
		}
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, p := range preds {
		cells := []string{p.Team}
		for _, v := range p.Positions {
			cells = append(cells, fmt.Sprintf("%.2f", v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}
