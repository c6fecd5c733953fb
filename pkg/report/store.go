package report

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS eval_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	task_suite TEXT NOT NULL,
	episodes INTEGER NOT NULL,
	successes INTEGER NOT NULL,
	success_rate REAL NOT NULL,
	recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS eval_results_session ON eval_results (session_id);
`

// StoredResult is one row of the results table.
type StoredResult struct {
	ID          int64     `db:"id"`
	SessionID   string    `db:"session_id"`
	TaskSuite   string    `db:"task_suite"`
	Episodes    int       `db:"episodes"`
	Successes   int       `db:"successes"`
	SuccessRate float64   `db:"success_rate"`
	RecordedAt  time.Time `db:"recorded_at"`
}

// Store persists parsed evaluation results in a sqlite database so success
// rates of past sessions can be compared.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens (and if needed creates) the results database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open results database %q", path)
	}
	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create results schema")
	}
	return &Store{db: db}, nil
}

// Save records one parsed evaluation result under the given session id.
func (s *Store) Save(sessionID string, result Result) error {
	_, err := s.db.Exec(
		`INSERT INTO eval_results (session_id, task_suite, episodes, successes, success_rate, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, result.TaskSuite, result.Episodes, result.Successes, result.TotalSuccessRate, time.Now().UTC())
	return errors.Wrap(err, "could not insert evaluation result")
}

// BySuite returns all recorded results for one task suite, newest first.
func (s *Store) BySuite(taskSuite string) ([]StoredResult, error) {
	results := []StoredResult{}
	err := s.db.Select(&results,
		`SELECT * FROM eval_results WHERE task_suite = ? ORDER BY recorded_at DESC`, taskSuite)
	return results, errors.Wrapf(err, "could not query results for suite %q", taskSuite)
}

// All returns every recorded result, newest first.
func (s *Store) All() ([]StoredResult, error) {
	results := []StoredResult{}
	err := s.db.Select(&results, `SELECT * FROM eval_results ORDER BY recorded_at DESC`)
	return results, errors.Wrap(err, "could not query results")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
