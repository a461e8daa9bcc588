package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

// uniqueViolation is the Postgres SQLSTATE of a duplicate key.
const uniqueViolation = "23505"

// Store wraps a Postgres connection and implements tournament.Repository.
type Store struct {
	DB *sql.DB
}

var _ tournament.Repository = (*Store)(nil)

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

// InitStore connects and migrates, exiting the process on failure.
func InitStore(ctx context.Context, connStr string, logger *logrus.Entry) *Store {
	s, err := NewStore(ctx, connStr)
	if err != nil {
		logger.Fatalf("failed to connect to DB: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate DB: %v", err)
	}
	logger.Info("database ready")
	return s
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.DB.Close() }

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS gameplays (
		    id         TEXT PRIMARY KEY,
		    name       TEXT NOT NULL,
		    edition    TEXT NOT NULL,
		    hosts      JSONB NOT NULL,
		    game_date  TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS teams (
		    gameplay_id   TEXT NOT NULL REFERENCES gameplays(id) ON DELETE CASCADE,
		    code          TEXT NOT NULL,
		    federation    TEXT NOT NULL,
		    is_host       BOOLEAN NOT NULL DEFAULT FALSE,
		    points        DOUBLE PRECISION NOT NULL,
		    xgoal_data    JSONB NOT NULL,
		    xgoal_for     JSONB NOT NULL,
		    xgoal_against JSONB NOT NULL,
		    PRIMARY KEY (gameplay_id, code)
		);`,
		`CREATE TABLE IF NOT EXISTS rankings (
		    id          SERIAL PRIMARY KEY,
		    gameplay_id TEXT NOT NULL DEFAULT '',
		    team        TEXT NOT NULL,
		    date        TIMESTAMPTZ NOT NULL,
		    position    INT NOT NULL,
		    points      DOUBLE PRECISION NOT NULL,
		    UNIQUE (gameplay_id, team, date)
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
		    gameplay_id      TEXT NOT NULL REFERENCES gameplays(id) ON DELETE CASCADE,
		    code             TEXT NOT NULL,
		    name             TEXT NOT NULL,
		    kind             TEXT NOT NULL,
		    legs             INT NOT NULL,
		    number_of_teams  INT NOT NULL,
		    number_of_groups INT NOT NULL DEFAULT 0,
		    teams            JSONB NOT NULL,
		    groups           JSONB NOT NULL,
		    PRIMARY KEY (gameplay_id, code)
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
		    id                BIGSERIAL PRIMARY KEY,
		    gameplay_id       TEXT NOT NULL REFERENCES gameplays(id) ON DELETE CASCADE,
		    code              TEXT NOT NULL,
		    round             TEXT NOT NULL,
		    grp               TEXT NOT NULL DEFAULT '',
		    leg               INT NOT NULL DEFAULT 0,
		    matchday          INT NOT NULL DEFAULT 0,
		    date              TIMESTAMPTZ NOT NULL,
		    venue             TEXT NOT NULL DEFAULT '',
		    home_team         TEXT NOT NULL,
		    away_team         TEXT NOT NULL,
		    home_goals        INT,
		    away_goals        INT,
		    home_et_goals     INT,
		    away_et_goals     INT,
		    home_aggs         INT,
		    away_aggs         INT,
		    home_goal_minutes DOUBLE PRECISION[],
		    away_goal_minutes DOUBLE PRECISION[],
		    home_kicks        BOOLEAN[],
		    away_kicks        BOOLEAN[],
		    shootout_home     INT,
		    shootout_away     INT,
		    first_kicker      TEXT,
		    UNIQUE (gameplay_id, code)
		);`,
		`CREATE TABLE IF NOT EXISTS venues (
		    id                 BIGSERIAL PRIMARY KEY,
		    gameplay_id        TEXT NOT NULL REFERENCES gameplays(id) ON DELETE CASCADE,
		    name               TEXT NOT NULL,
		    city               TEXT NOT NULL,
		    host_country       TEXT NOT NULL,
		    host_opening_match TEXT NOT NULL DEFAULT '',
		    capacity           INT NOT NULL,
		    edition            TEXT NOT NULL,
		    slot_group         INT NOT NULL,
		    lat                DOUBLE PRECISION NOT NULL,
		    lon                DOUBLE PRECISION NOT NULL,
		    UNIQUE (gameplay_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS matches_round_idx ON matches (gameplay_id, round, grp);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// dbErr maps driver errors onto the league error kinds.
func dbErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return league.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pqErr.Constraint, league.ErrConflict)
	}
	return err
}

// execOne runs an UPDATE that must touch exactly one row.
func execOne(ctx context.Context, tx *sql.Tx, what, q string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", what, dbErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s: %w", what, league.ErrNotFound)
	}
	return nil
}

// Gameplay loads one gameplay.
func (s *Store) Gameplay(ctx context.Context, id string) (*league.Gameplay, error) {
	const q = `SELECT id, name, edition, hosts, game_date FROM gameplays WHERE id = $1`
	g := &league.Gameplay{}
	var hosts []byte
	err := s.DB.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Name, &g.Edition, &hosts, &g.CurrentDate)
	if err != nil {
		return nil, fmt.Errorf("querying gameplay %s: %w", id, dbErr(err))
	}
	if err := json.Unmarshal(hosts, &g.Hosts); err != nil {
		return nil, fmt.Errorf("decoding hosts of %s: %w", id, err)
	}
	return g, nil
}

// Teams loads every team of a gameplay ordered by code.
func (s *Store) Teams(ctx context.Context, gameplayID string) ([]*league.Team, error) {
	const q = `
    SELECT gameplay_id, code, federation, is_host, points, xgoal_data, xgoal_for, xgoal_against
    FROM teams
    WHERE gameplay_id = $1
    ORDER BY code
    `
	rows, err := s.DB.QueryContext(ctx, q, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*league.Team
	for rows.Next() {
		t := &league.Team{}
		var data, xf, xa []byte
		if err := rows.Scan(&t.GameplayID, &t.Code, &t.Federation, &t.IsHost, &t.Points, &data, &xf, &xa); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		for _, f := range []struct {
			raw []byte
			dst interface{}
		}{{data, &t.XGoalData}, {xf, &t.XGoalFor}, {xa, &t.XGoalAgainst}} {
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return nil, fmt.Errorf("decoding team %s: %w", t.Code, err)
			}
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams rows: %w", err)
	}
	return teams, nil
}

func scanRankings(rows *sql.Rows) ([]league.Ranking, error) {
	defer rows.Close()
	var out []league.Ranking
	for rows.Next() {
		var r league.Ranking
		if err := rows.Scan(&r.GameplayID, &r.Team, &r.Date, &r.Position, &r.Points); err != nil {
			return nil, fmt.Errorf("scanning ranking row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ranking rows: %w", err)
	}
	return out, nil
}

// LatestRankings picks, per team, the newest gameplay entry, else the newest global one.
func (s *Store) LatestRankings(ctx context.Context, gameplayID string) (map[string]league.Ranking, error) {
	const q = `
    SELECT DISTINCT ON (team) gameplay_id, team, date, position, points
    FROM rankings
    WHERE gameplay_id = $1 OR gameplay_id = ''
    ORDER BY team, (gameplay_id = '') ASC, date DESC
    `
	rows, err := s.DB.QueryContext(ctx, q, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("querying rankings: %w", err)
	}
	list, err := scanRankings(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]league.Ranking, len(list))
	for _, r := range list {
		out[r.Team] = r
	}
	return out, nil
}

// RankingHistory lists a team's entries, newest first.
func (s *Store) RankingHistory(ctx context.Context, gameplayID, team string) ([]league.Ranking, error) {
	const q = `
    SELECT gameplay_id, team, date, position, points
    FROM rankings
    WHERE team = $2 AND (gameplay_id = $1 OR gameplay_id = '')
    ORDER BY date DESC, gameplay_id DESC
    `
	rows, err := s.DB.QueryContext(ctx, q, gameplayID, team)
	if err != nil {
		return nil, fmt.Errorf("querying rankings of %s: %w", team, err)
	}
	return scanRankings(rows)
}

// Round loads one round with its entries and tables.
func (s *Store) Round(ctx context.Context, gameplayID, code string) (*league.Round, error) {
	const q = `
    SELECT gameplay_id, code, name, kind, legs, number_of_teams, number_of_groups, teams, groups
    FROM rounds
    WHERE gameplay_id = $1 AND code = $2
    `
	r := &league.Round{}
	var teams, groups []byte
	err := s.DB.QueryRowContext(ctx, q, gameplayID, code).Scan(
		&r.GameplayID, &r.Code, &r.Name, &r.Kind, &r.Legs,
		&r.NumberOfTeams, &r.NumberOfGroups, &teams, &groups,
	)
	if err != nil {
		return nil, fmt.Errorf("querying round %s: %w", code, dbErr(err))
	}
	if err := json.Unmarshal(teams, &r.Teams); err != nil {
		return nil, fmt.Errorf("decoding teams of %s: %w", code, err)
	}
	if err := json.Unmarshal(groups, &r.Groups); err != nil {
		return nil, fmt.Errorf("decoding groups of %s: %w", code, err)
	}
	return r, nil
}

const matchColumns = `
    id, gameplay_id, code, round, grp, leg, matchday, date, venue, home_team, away_team,
    home_goals, away_goals, home_et_goals, away_et_goals, home_aggs, away_aggs,
    home_goal_minutes, away_goal_minutes, home_kicks, away_kicks,
    shootout_home, shootout_away, first_kicker`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func scanMatch(row rowScanner) (*league.Match, error) {
	m := &league.Match{}
	var (
		hg, ag, het, aet, hagg, aagg sql.NullInt64
		shHome, shAway               sql.NullInt64
		firstKicker                  sql.NullString
		homeMin, awayMin             pq.Float64Array
		homeKicks, awayKicks         pq.BoolArray
	)
	err := row.Scan(
		&m.ID, &m.GameplayID, &m.Code, &m.Round, &m.Group, &m.Leg, &m.Matchday, &m.Date, &m.Venue, &m.Home, &m.Away,
		&hg, &ag, &het, &aet, &hagg, &aagg,
		&homeMin, &awayMin, &homeKicks, &awayKicks,
		&shHome, &shAway, &firstKicker,
	)
	if err != nil {
		return nil, err
	}
	m.HomeGoals, m.AwayGoals = intPtr(hg), intPtr(ag)
	m.HomeExtraTimeGoals, m.AwayExtraTimeGoals = intPtr(het), intPtr(aet)
	m.HomeAggs, m.AwayAggs = intPtr(hagg), intPtr(aagg)
	m.HomeGoalMinutes, m.AwayGoalMinutes = homeMin, awayMin
	if firstKicker.Valid {
		m.Shootout = &league.Shootout{
			HomeKicks:   homeKicks,
			AwayKicks:   awayKicks,
			HomeScore:   int(shHome.Int64),
			AwayScore:   int(shAway.Int64),
			FirstKicker: firstKicker.String,
		}
	}
	return m, nil
}

// Match loads a match by id.
func (s *Store) Match(ctx context.Context, gameplayID string, id int64) (*league.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches WHERE gameplay_id = $1 AND id = $2`
	m, err := scanMatch(s.DB.QueryRowContext(ctx, q, gameplayID, id))
	if err != nil {
		return nil, fmt.Errorf("querying match %d: %w", id, dbErr(err))
	}
	return m, nil
}

// MatchByCode loads a match by its fixture code.
func (s *Store) MatchByCode(ctx context.Context, gameplayID, code string) (*league.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches WHERE gameplay_id = $1 AND code = $2`
	m, err := scanMatch(s.DB.QueryRowContext(ctx, q, gameplayID, code))
	if err != nil {
		return nil, fmt.Errorf("querying match %s: %w", code, dbErr(err))
	}
	return m, nil
}

// Matches lists the matches passing the filter, ordered by date then id.
func (s *Store) Matches(ctx context.Context, f tournament.MatchFilter) ([]*league.Match, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	conds = append(conds, "gameplay_id = "+arg(f.GameplayID))
	if f.Round != "" {
		conds = append(conds, "round = "+arg(f.Round))
	}
	if len(f.Groups) > 0 {
		conds = append(conds, "grp = ANY("+arg(pq.Array(f.Groups))+")")
	}
	if len(f.IDs) > 0 {
		conds = append(conds, "id = ANY("+arg(pq.Array(f.IDs))+")")
	}
	if len(f.Between) == 2 {
		a, b := arg(f.Between[0]), arg(f.Between[1])
		conds = append(conds, fmt.Sprintf("((home_team = %s AND away_team = %s) OR (home_team = %s AND away_team = %s))", a, b, b, a))
	}
	if f.PlayedOnly {
		conds = append(conds, "home_goals IS NOT NULL AND away_goals IS NOT NULL")
	}
	q := `SELECT ` + matchColumns + ` FROM matches WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY date, id`

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*league.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Venues lists a gameplay's custom venues ordered by id.
func (s *Store) Venues(ctx context.Context, gameplayID string) ([]*league.Venue, error) {
	const q = `
    SELECT id, gameplay_id, name, city, host_country, host_opening_match, capacity, edition, slot_group, lat, lon
    FROM venues
    WHERE gameplay_id = $1
    ORDER BY id
    `
	rows, err := s.DB.QueryContext(ctx, q, gameplayID)
	if err != nil {
		return nil, fmt.Errorf("querying venues: %w", err)
	}
	defer rows.Close()

	var venues []*league.Venue
	for rows.Next() {
		v := &league.Venue{}
		if err := rows.Scan(&v.ID, &v.GameplayID, &v.Name, &v.City, &v.HostCountry, &v.HostOpeningMatch,
			&v.Capacity, &v.Edition, &v.SlotGroup, &v.Lat, &v.Lon); err != nil {
			return nil, fmt.Errorf("scanning venue row: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating venue rows: %w", err)
	}
	return venues, nil
}

// Save applies one operation's changes in a single transaction.
func (s *Store) Save(ctx context.Context, ch *tournament.Changes) error {
	// 1) Begin a transaction
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer tx.Rollback()

	// 2) Gameplay
	if g := ch.NewGameplay; g != nil {
		hosts, err := json.Marshal(g.Hosts)
		if err != nil {
			return fmt.Errorf("encoding hosts: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gameplays (id, name, edition, hosts, game_date) VALUES ($1, $2, $3, $4, $5)`,
			g.ID, g.Name, g.Edition, hosts, g.CurrentDate,
		); err != nil {
			return fmt.Errorf("inserting gameplay %s: %w", g.ID, dbErr(err))
		}
	}
	if g := ch.Gameplay; g != nil {
		if err := execOne(ctx, tx, "gameplay "+g.ID,
			`UPDATE gameplays SET game_date = $1 WHERE id = $2`, g.CurrentDate, g.ID,
		); err != nil {
			return err
		}
	}

	// 3) Teams
	for _, t := range ch.NewTeams {
		data, xf, xa, err := teamJSON(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO teams (gameplay_id, code, federation, is_host, points, xgoal_data, xgoal_for, xgoal_against)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.GameplayID, t.Code, t.Federation, t.IsHost, t.Points, data, xf, xa,
		); err != nil {
			return fmt.Errorf("inserting team %s: %w", t.Code, dbErr(err))
		}
	}
	for _, t := range ch.Teams {
		data, xf, xa, err := teamJSON(t)
		if err != nil {
			return err
		}
		if err := execOne(ctx, tx, "team "+t.Code, `
        UPDATE teams SET points = $1, xgoal_data = $2, xgoal_for = $3, xgoal_against = $4
        WHERE gameplay_id = $5 AND code = $6`,
			t.Points, data, xf, xa, t.GameplayID, t.Code,
		); err != nil {
			return err
		}
	}

	// 4) Rankings
	for _, r := range ch.Rankings {
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO rankings (gameplay_id, team, date, position, points)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (gameplay_id, team, date) DO UPDATE SET position = EXCLUDED.position, points = EXCLUDED.points`,
			r.GameplayID, r.Team, r.Date, r.Position, r.Points,
		); err != nil {
			return fmt.Errorf("saving ranking of %s: %w", r.Team, dbErr(err))
		}
	}

	// 5) Rounds
	for _, r := range ch.NewRounds {
		teams, groups, err := roundJSON(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO rounds (gameplay_id, code, name, kind, legs, number_of_teams, number_of_groups, teams, groups)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.GameplayID, r.Code, r.Name, r.Kind, r.Legs, r.NumberOfTeams, r.NumberOfGroups, teams, groups,
		); err != nil {
			return fmt.Errorf("inserting round %s: %w", r.Code, dbErr(err))
		}
	}
	for _, r := range ch.Rounds {
		teams, groups, err := roundJSON(r)
		if err != nil {
			return err
		}
		if err := execOne(ctx, tx, "round "+r.Code,
			`UPDATE rounds SET teams = $1, groups = $2 WHERE gameplay_id = $3 AND code = $4`,
			teams, groups, r.GameplayID, r.Code,
		); err != nil {
			return err
		}
	}

	// 6) Matches
	for _, m := range ch.NewMatches {
		if err := tx.QueryRowContext(ctx, `
        INSERT INTO matches (gameplay_id, code, round, grp, leg, matchday, date, venue, home_team, away_team)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`,
			m.GameplayID, m.Code, m.Round, m.Group, m.Leg, m.Matchday, m.Date, m.Venue, m.Home, m.Away,
		).Scan(&m.ID); err != nil {
			return fmt.Errorf("inserting match %s: %w", m.Code, dbErr(err))
		}
	}
	for _, m := range ch.Matches {
		var homeKicks, awayKicks []bool
		var shHome, shAway, firstKicker interface{}
		if sh := m.Shootout; sh != nil {
			homeKicks, awayKicks = sh.HomeKicks, sh.AwayKicks
			shHome, shAway, firstKicker = sh.HomeScore, sh.AwayScore, sh.FirstKicker
		}
		if err := execOne(ctx, tx, "match "+m.Code, `
        UPDATE matches SET
          home_goals = $1, away_goals = $2,
          home_et_goals = $3, away_et_goals = $4,
          home_aggs = $5, away_aggs = $6,
          home_goal_minutes = $7, away_goal_minutes = $8,
          home_kicks = $9, away_kicks = $10,
          shootout_home = $11, shootout_away = $12, first_kicker = $13
        WHERE gameplay_id = $14 AND id = $15`,
			nullInt(m.HomeGoals), nullInt(m.AwayGoals),
			nullInt(m.HomeExtraTimeGoals), nullInt(m.AwayExtraTimeGoals),
			nullInt(m.HomeAggs), nullInt(m.AwayAggs),
			pq.Array(m.HomeGoalMinutes), pq.Array(m.AwayGoalMinutes),
			pq.Array(homeKicks), pq.Array(awayKicks),
			shHome, shAway, firstKicker,
			m.GameplayID, m.ID,
		); err != nil {
			return err
		}
	}

	// 7) Venues
	for _, v := range ch.NewVenues {
		if err := tx.QueryRowContext(ctx, `
        INSERT INTO venues (gameplay_id, name, city, host_country, host_opening_match, capacity, edition, slot_group, lat, lon)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`,
			v.GameplayID, v.Name, v.City, v.HostCountry, v.HostOpeningMatch, v.Capacity, v.Edition, v.SlotGroup, v.Lat, v.Lon,
		).Scan(&v.ID); err != nil {
			return fmt.Errorf("inserting venue %s: %w", v.Name, dbErr(err))
		}
	}

	// 8) Commit
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func teamJSON(t *league.Team) (data, xf, xa []byte, err error) {
	if data, err = json.Marshal(t.XGoalData); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding team %s: %w", t.Code, err)
	}
	if xf, err = json.Marshal(t.XGoalFor); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding team %s: %w", t.Code, err)
	}
	if xa, err = json.Marshal(t.XGoalAgainst); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding team %s: %w", t.Code, err)
	}
	return data, xf, xa, nil
}

func roundJSON(r *league.Round) (teams, groups []byte, err error) {
	ts := r.Teams
	if ts == nil {
		ts = []league.RoundTeam{}
	}
	gs := r.Groups
	if gs == nil {
		gs = []league.Group{}
	}
	if teams, err = json.Marshal(ts); err != nil {
		return nil, nil, fmt.Errorf("encoding round %s: %w", r.Code, err)
	}
	if groups, err = json.Marshal(gs); err != nil {
		return nil, nil, fmt.Errorf("encoding round %s: %w", r.Code, err)
	}
	return teams, groups, nil
}
