package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadops-cli/internal/model"
)

// SQLiteHistory records runs, stage outcomes, and assignment history in a
// local SQLite database using modernc.org/sqlite.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteHistory{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	command    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	started_at DATETIME NOT NULL DEFAULT (datetime('now')),
	ended_at   DATETIME
);

CREATE TABLE IF NOT EXISTS stage_results (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	stage       TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	detail      TEXT,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assignment_history (
	id               TEXT PRIMARY KEY,
	business_name    TEXT NOT NULL,
	business_address TEXT,
	salesperson_id   TEXT NOT NULL,
	salesperson_name TEXT NOT NULL,
	location         TEXT,
	expertise        TEXT,
	experience       TEXT,
	assigned_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);
CREATE INDEX IF NOT EXISTS idx_stage_results_run_id ON stage_results(run_id);
CREATE INDEX IF NOT EXISTS idx_assignment_history_business ON assignment_history(business_name);
CREATE INDEX IF NOT EXISTS idx_assignment_history_salesperson ON assignment_history(salesperson_id);
`

func (s *SQLiteHistory) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

// BeginRun opens a run record and returns its ID.
func (s *SQLiteHistory) BeginRun(ctx context.Context, command string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, status, started_at) VALUES (?, ?, ?, ?)`,
		id, command, string(model.RunStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}
	return id, nil
}

// EndRun closes a run with its final status.
func (s *SQLiteHistory) EndRun(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: end run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// RecordStage appends one stage outcome to a run.
func (s *SQLiteHistory) RecordStage(ctx context.Context, runID, stage string, ok bool, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_results (id, run_id, stage, ok, detail, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, stage, boolInt(ok), detail, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: record stage %s", stage)
}

// RecordAssignment appends an assignment to the history. The history is
// append-only; the CSV assignments file holds the current view.
func (s *SQLiteHistory) RecordAssignment(ctx context.Context, a model.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignment_history
		 (id, business_name, business_address, salesperson_id, salesperson_name, location, expertise, experience, assigned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), a.BusinessName, a.BusinessAddress,
		a.SalespersonID, a.SalespersonName, a.Location, a.Expertise, a.Experience,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: record assignment %s", a.BusinessName)
}

// LastAssignment returns the most recent assignment for a business, or nil
// when none is recorded.
func (s *SQLiteHistory) LastAssignment(ctx context.Context, businessName string) (*model.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT business_name, business_address, salesperson_id, salesperson_name, location, expertise, experience
		 FROM assignment_history
		 WHERE business_name = ?
		 ORDER BY assigned_at DESC LIMIT 1`,
		businessName,
	)

	var a model.Assignment
	err := row.Scan(&a.BusinessName, &a.BusinessAddress, &a.SalespersonID, &a.SalespersonName,
		&a.Location, &a.Expertise, &a.Experience)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last assignment")
	}
	return &a, nil
}

// LeastRecentlyAssigned picks the roster member whose latest assignment is
// oldest. Members with no recorded assignments win, in roster order, which
// keeps the choice deterministic for a given history.
func (s *SQLiteHistory) LeastRecentlyAssigned(ctx context.Context, roster []model.Salesperson) (*model.Salesperson, error) {
	if len(roster) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT salesperson_id FROM assignment_history GROUP BY salesperson_id ORDER BY MAX(assigned_at) ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: assignment recency")
	}
	defer rows.Close()

	recency := make(map[string]int)
	pos := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assignment recency")
		}
		recency[id] = pos
		pos++
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: assignment recency iterate")
	}

	var pick *model.Salesperson
	pickPos := 0
	for i := range roster {
		p, assigned := recency[roster[i].ID]
		if !assigned {
			return &roster[i], nil
		}
		if pick == nil || p < pickPos {
			pick = &roster[i]
			pickPos = p
		}
	}
	return pick, nil
}

// RunFilter narrows ListRuns output.
type RunFilter struct {
	Command string
	Status  model.RunStatus
	Limit   int
}

// ListRuns returns recorded runs, newest first.
func (s *SQLiteHistory) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, command, status, started_at, ended_at FROM runs WHERE 1=1`
	var args []any

	if filter.Command != "" {
		query += ` AND command = ?`
		args = append(args, filter.Command)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var ended sql.NullTime
		if err := rows.Scan(&r.ID, &r.Command, &r.Status, &r.StartedAt, &ended); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if ended.Valid {
			r.EndedAt = ended.Time
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// StageResults returns the stage outcomes recorded for a run, oldest first.
func (s *SQLiteHistory) StageResults(ctx context.Context, runID string) ([]model.StageResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, stage, ok, detail FROM stage_results WHERE run_id = ? ORDER BY recorded_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: stage results %s", runID)
	}
	defer rows.Close()

	var results []model.StageResult
	for rows.Next() {
		var sr model.StageResult
		var ok int
		var detail sql.NullString
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Stage, &ok, &detail); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stage result")
		}
		sr.OK = ok != 0
		sr.Detail = detail.String
		results = append(results, sr)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: stage results iterate")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
