package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

type Store struct {
	db *sql.DB
}

type ItemRecord struct {
	Platform  string
	Entity    string
	Item      string
	Status    string
	ClaimedAt time.Time
}

type RunRecord struct {
	RunID      string
	Game       string
	Reward     string
	Outcome    string
	Detail     string
	Percentage int
	Minutes    int
	StartedAt  time.Time
	EndedAt    time.Time
}

type PointsRecord struct {
	Day     string
	Source  string
	Claimed string
	Total   string
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS claim_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        platform TEXT NOT NULL,
        entity TEXT NOT NULL,
        item TEXT NOT NULL,
        status TEXT NOT NULL,
        claimed_at TEXT NOT NULL
    )`,
		`CREATE TABLE IF NOT EXISTS reward_runs (
        run_id TEXT PRIMARY KEY,
        game TEXT NOT NULL,
        reward TEXT NOT NULL,
        started_at TEXT NOT NULL,
        ended_at TEXT,
        outcome TEXT,
        detail TEXT
    )`,
		`CREATE TABLE IF NOT EXISTS points_log (
        claimed_date TEXT NOT NULL,
        source TEXT NOT NULL,
        claimed_points TEXT,
        total_points TEXT,
        PRIMARY KEY(claimed_date, source)
    )`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.ensureColumns("reward_runs", []column{
		{"last_percentage", `ALTER TABLE reward_runs ADD COLUMN last_percentage INTEGER NOT NULL DEFAULT 0`},
		{"last_minutes", `ALTER TABLE reward_runs ADD COLUMN last_minutes INTEGER NOT NULL DEFAULT 0`},
	})
}

type column struct {
	name       string
	definition string
}

func (s *Store) ensureColumns(table string, wanted []column) error {
	columns := map[string]bool{}
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		columns[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, c := range wanted {
		if columns[c.name] {
			continue
		}
		if _, err := s.db.Exec(c.definition); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RecordItem(platform, entity, item, status string, at time.Time) error {
	_, err := s.db.Exec(`INSERT INTO claim_items(platform, entity, item, status, claimed_at) VALUES(?, ?, ?, ?, ?)`,
		platform, entity, item, status, at.UTC().Format(timeLayout))
	return err
}

func (s *Store) StartRun(runID, game, reward string, at time.Time) error {
	_, err := s.db.Exec(`INSERT INTO reward_runs(run_id, game, reward, started_at)
    VALUES(?, ?, ?, ?)
    ON CONFLICT(run_id) DO UPDATE SET started_at = excluded.started_at`, runID, game, reward, at.UTC().Format(timeLayout))
	return err
}

func (s *Store) UpdateRunProgress(runID string, percentage, minutes int) error {
	_, err := s.db.Exec(`UPDATE reward_runs SET last_percentage = ?, last_minutes = ? WHERE run_id = ?`, percentage, minutes, runID)
	return err
}

func (s *Store) FinishRun(runID, outcome, detail string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE reward_runs SET outcome = ?, detail = ?, ended_at = ? WHERE run_id = ?`,
		outcome, detail, at.UTC().Format(timeLayout), runID)
	return err
}

func (s *Store) RecordPoints(day time.Time, source, claimed, total string) error {
	_, err := s.db.Exec(`INSERT INTO points_log(claimed_date, source, claimed_points, total_points)
    VALUES(?, ?, ?, ?)
    ON CONFLICT(claimed_date, source) DO UPDATE SET claimed_points = excluded.claimed_points, total_points = excluded.total_points`,
		day.UTC().Format(dateLayout), source, claimed, total)
	return err
}

func (s *Store) RecentItems(limit int) ([]ItemRecord, error) {
	rows, err := s.db.Query(`SELECT platform, entity, item, status, claimed_at FROM claim_items ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemRecord
	for rows.Next() {
		var r ItemRecord
		var at string
		if err := rows.Scan(&r.Platform, &r.Entity, &r.Item, &r.Status, &at); err != nil {
			return nil, err
		}
		r.ClaimedAt = parseTime(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`SELECT run_id, game, reward, outcome, detail, last_percentage, last_minutes, started_at, ended_at
    FROM reward_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var outcome, detail, ended sql.NullString
		var started string
		if err := rows.Scan(&r.RunID, &r.Game, &r.Reward, &outcome, &detail, &r.Percentage, &r.Minutes, &started, &ended); err != nil {
			return nil, err
		}
		r.Outcome = outcome.String
		r.Detail = detail.String
		r.StartedAt = parseTime(started)
		if ended.Valid {
			r.EndedAt = parseTime(ended.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RecentPoints(limit int) ([]PointsRecord, error) {
	rows, err := s.db.Query(`SELECT claimed_date, source, claimed_points, total_points FROM points_log ORDER BY claimed_date DESC, source LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PointsRecord
	for rows.Next() {
		var r PointsRecord
		var claimed, total sql.NullString
		if err := rows.Scan(&r.Day, &r.Source, &claimed, &total); err != nil {
			return nil, err
		}
		r.Claimed = claimed.String
		r.Total = total.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
