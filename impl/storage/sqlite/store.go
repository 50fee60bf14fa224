package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	_ "modernc.org/sqlite"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at    TEXT    NOT NULL,
	parameters    TEXT    NOT NULL,
	trials        INTEGER NOT NULL,
	successes     INTEGER NOT NULL,
	failures      INTEGER NOT NULL,
	stopped_early INTEGER NOT NULL,
	messages_mean REAL    NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS trials (
	run_id                INTEGER NOT NULL REFERENCES runs(id),
	idx                   INTEGER NOT NULL,
	commander             INTEGER NOT NULL,
	traitors              TEXT    NOT NULL,
	first_commander_loyal INTEGER NOT NULL,
	original_order        TEXT    NOT NULL,
	ic1                   INTEGER NOT NULL,
	ic2                   INTEGER NOT NULL,
	messages_sent         INTEGER NOT NULL,
	decisions             TEXT    NOT NULL,
	PRIMARY KEY (run_id, idx)
)`}

// Run is a stored experiment run summary.
type Run struct {
	ID           int64
	StartedAt    time.Time
	Parameters   parameters.Parameters
	Trials       int
	Successes    int
	Failures     int
	StoppedEarly bool
	MessagesMean float64
}

// Trial is a stored trial outcome. Generals are identified by id.
type Trial struct {
	RunID               int64
	Index               int
	Commander           int
	Traitors            []int
	FirstCommanderLoyal bool
	OriginalOrder       messages.Order
	IC1                 bool
	IC2                 bool
	MessagesSent        int
	Decisions           map[int]messages.Order
}

func (t *Trial) Successful() bool {
	return t.IC1 && t.IC2
}

// Store keeps experiment results in a SQLite database. Only outcomes are
// stored, never in-flight protocol state.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "omsim.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores the report summary and every trial it carries in a single
// transaction, returning the new run id.
func (s *Store) SaveRun(report *experiment.Report, startedAt time.Time) (runID int64, retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(report.Parameters)
	if err != nil {
		return 0, fmt.Errorf("encode parameters: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, parameters, trials, successes, failures, stopped_early, messages_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339Nano),
		string(params),
		report.Trials,
		report.Successes,
		report.Failures,
		boolToInt(report.StoppedEarly),
		report.MessagesMean,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, result := range report.Results {
		if err := saveTrial(tx, runID, result); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// SaveTrial appends a single trial to an existing run.
func (s *Store) SaveTrial(runID int64, result *experiment.TrialResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTrial(s.db, runID, result)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveTrial(db execer, runID int64, result *experiment.TrialResult) error {
	traitors, err := json.Marshal(result.Traitors)
	if err != nil {
		return fmt.Errorf("encode traitors: %w", err)
	}
	decisions, err := json.Marshal(result.Decisions)
	if err != nil {
		return fmt.Errorf("encode decisions: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO trials (run_id, idx, commander, traitors, first_commander_loyal, original_order,
			ic1, ic2, messages_sent, decisions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.Index,
		result.Commander,
		string(traitors),
		boolToInt(result.FirstCommanderLoyal),
		result.OriginalOrder.String(),
		boolToInt(result.Verdict.IC1),
		boolToInt(result.Verdict.IC2),
		result.Stats.MessagesSent,
		string(decisions),
	)
	if err != nil {
		return fmt.Errorf("insert trial %d: %w", result.Index, err)
	}
	return nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, parameters, trials, successes, failures, stopped_early, messages_mean
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r            Run
			startedAt    string
			params       string
			stoppedEarly int
		)
		if err := rows.Scan(
			&r.ID, &startedAt, &params, &r.Trials, &r.Successes, &r.Failures, &stoppedEarly, &r.MessagesMean,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("decode started_at of run %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(params), &r.Parameters); err != nil {
			return nil, fmt.Errorf("decode parameters of run %d: %w", r.ID, err)
		}
		r.StoppedEarly = stoppedEarly != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Trials lists the trials of a run in execution order.
func (s *Store) Trials(runID int64) ([]Trial, error) {
	rows, err := s.db.Query(
		`SELECT idx, commander, traitors, first_commander_loyal, original_order, ic1, ic2, messages_sent, decisions
		FROM trials WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("select trials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trials []Trial
	for rows.Next() {
		var (
			t                   Trial
			traitors, decisions string
			order               string
			loyal, ic1, ic2     int
		)
		if err := rows.Scan(
			&t.Index, &t.Commander, &traitors, &loyal, &order, &ic1, &ic2, &t.MessagesSent, &decisions,
		); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		t.RunID = runID
		t.FirstCommanderLoyal = loyal != 0
		t.IC1 = ic1 != 0
		t.IC2 = ic2 != 0
		if t.OriginalOrder, err = messages.ParseOrder(order); err != nil {
			return nil, fmt.Errorf("decode order of trial %d: %w", t.Index, err)
		}
		if err := json.Unmarshal([]byte(traitors), &t.Traitors); err != nil {
			return nil, fmt.Errorf("decode traitors of trial %d: %w", t.Index, err)
		}
		if err := json.Unmarshal([]byte(decisions), &t.Decisions); err != nil {
			return nil, fmt.Errorf("decode decisions of trial %d: %w", t.Index, err)
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
