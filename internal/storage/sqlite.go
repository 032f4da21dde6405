package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

// sqlite keeps one row per body per step. Only one writer is useful at a
// time; the DB handle itself is safe for concurrent readers.

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created     INTEGER,
	dt          REAL,
	g           REAL,
	softening   REAL,
	outcome     TEXT,
	diverged_at INTEGER);

CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT,
	step   INTEGER,
	time   REAL,
	energy REAL,
	body   INTEGER,
	x      REAL,
	y      REAL,
	vx     REAL,
	vy     REAL);

CREATE INDEX IF NOT EXISTS idx_samples_run ON samples (run_id, step, body);
`

const insertRun = `INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?);`
const insertSample = `INSERT INTO samples VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
const querySamples = `SELECT step, time, energy, body, x, y, vx, vy FROM samples WHERE run_id = ? ORDER BY step, body;`
const queryRuns = `SELECT id FROM runs ORDER BY created;`

// DB is a SQLite trajectory sink, the bulk alternative to the per-run
// directory Store when many runs land in one file.
type DB struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the database at path. Journaling is
// off: trajectory data is cheap to regenerate and insert volume dominates.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// SaveRun writes one run's metadata and full trajectory in a single
// transaction.
func (d *DB) SaveRun(runID string, cfg *config.Config, result *sim.Result) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}

	divergedAt := 0
	if result.Failure != nil {
		divergedAt = result.Failure.Step
	}
	if _, err := tx.Exec(insertRun,
		runID, time.Now().Unix(), cfg.Dt, cfg.G, cfg.Softening,
		result.Outcome.String(), divergedAt); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(insertSample)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, sample := range result.Trajectory.Samples() {
		for b := 0; b < physics.NumBodies; b++ {
			off := b * 4
			if _, err := stmt.Exec(
				runID, sample.Step, sample.Time, sample.Energy, b,
				sample.State[off], sample.State[off+1],
				sample.State[off+2], sample.State[off+3]); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadRun reassembles a run's samples from the per-body rows.
func (d *DB) LoadRun(runID string) ([]sim.Sample, error) {
	rows, err := d.db.Query(querySamples, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []sim.Sample
	for rows.Next() {
		var step, body int
		var t, energy, x, y, vx, vy float64
		if err := rows.Scan(&step, &t, &energy, &body, &x, &y, &vx, &vy); err != nil {
			return nil, err
		}
		if body == 0 {
			samples = append(samples, sim.Sample{
				Step:   step,
				Time:   t,
				State:  make(dynamo.State, physics.StateDim),
				Energy: energy,
			})
		}
		if len(samples) == 0 || samples[len(samples)-1].Step != step {
			return nil, fmt.Errorf("run %s: body %d row without body 0 at step %d", runID, body, step)
		}
		off := body * 4
		state := samples[len(samples)-1].State
		state[off], state[off+1], state[off+2], state[off+3] = x, y, vx, vy
	}
	return samples, rows.Err()
}

// ListRuns returns stored run IDs in insertion order.
func (d *DB) ListRuns() ([]string, error) {
	rows, err := d.db.Query(queryRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
