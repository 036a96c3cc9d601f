package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(r OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(request_id, time, symbol, direction, volume, price, stop_loss,
		 take_profit, comment, order_id, deal_id, retcode, retcode_text, result_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequestID, r.Time.UTC(), r.Symbol, r.Direction, r.Volume, r.Price,
		r.StopLoss, r.TakeProfit, r.Comment, r.OrderID, r.DealID,
		r.Retcode, r.RetcodeText, r.ResultComment,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, balance, equity, margin_used, margin_free, margin_level, floating_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Balance, e.Equity, e.MarginUsed, e.MarginFree,
		e.MarginLevel, e.FloatingProfit,
	)
	return err
}

// GetOrder looks an order record up by its client request id.
func (j *SQLiteJournal) GetOrder(requestID string) (OrderRecord, error) {
	row := j.db.QueryRow(`
		SELECT request_id, time, symbol, direction, volume, price, stop_loss,
		       take_profit, comment, order_id, deal_id, retcode, retcode_text, result_comment
		FROM orders WHERE request_id = ?`, requestID)
	rec, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("order %s not found", requestID)
	}
	return rec, err
}

// ListOrdersBetween returns order records in [start, end), oldest first.
func (j *SQLiteJournal) ListOrdersBetween(start, end time.Time) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT request_id, time, symbol, direction, volume, price, stop_loss,
		       take_profit, comment, order_id, deal_id, retcode, retcode_text, result_comment
		FROM orders WHERE time >= ? AND time < ? ORDER BY time`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (OrderRecord, error) {
	var r OrderRecord
	err := s.Scan(&r.RequestID, &r.Time, &r.Symbol, &r.Direction, &r.Volume,
		&r.Price, &r.StopLoss, &r.TakeProfit, &r.Comment, &r.OrderID,
		&r.DealID, &r.Retcode, &r.RetcodeText, &r.ResultComment)
	return r, err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
