package signal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"autotrader/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	time INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	confidence REAL NOT NULL,
	price REAL NOT NULL,
	spread_points INTEGER NOT NULL,
	stop_points REAL NOT NULL,
	take_points REAL NOT NULL,
	executed INTEGER NOT NULL,
	note TEXT NOT NULL,
	PRIMARY KEY (time, symbol)
);
`

// Store persists signals to SQLite. The whole ledger is rewritten on save,
// matching the append-and-merge model: the merged in-memory view is the
// source of truth.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Load returns all persisted signals.
func (s *Store) Load() ([]Signal, error) {
	rows, err := s.db.Query(`
		SELECT time, symbol, direction, confidence, price, spread_points,
		       stop_points, take_points, executed, note
		FROM signals ORDER BY time DESC, confidence DESC`)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}
	defer rows.Close()

	var out []Signal
	for rows.Next() {
		var (
			sig      Signal
			unix     int64
			dir      string
			executed int
		)
		if err := rows.Scan(&unix, &sig.Symbol, &dir, &sig.Confidence, &sig.Price,
			&sig.SpreadPoints, &sig.StopPoints, &sig.TakePoints, &executed, &sig.Note); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Time = time.Unix(unix, 0).UTC()
		sig.Direction = market.Direction(dir)
		sig.Executed = executed != 0
		out = append(out, sig)
	}
	return out, rows.Err()
}

// Save replaces the persisted set with the given signals, atomically.
func (s *Store) Save(signals []Signal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM signals`); err != nil {
		return fmt.Errorf("clear signals: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO signals
		(time, symbol, direction, confidence, price, spread_points,
		 stop_points, take_points, executed, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sig := range signals {
		executed := 0
		if sig.Executed {
			executed = 1
		}
		if _, err := stmt.Exec(sig.Time.UTC().Unix(), sig.Symbol, string(sig.Direction),
			sig.Confidence, sig.Price, sig.SpreadPoints,
			sig.StopPoints, sig.TakePoints, executed, sig.Note); err != nil {
			return fmt.Errorf("insert signal %s/%s: %w", sig.Symbol, sig.Time, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
