package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordOrder upserts by order ID so the same row tracks the order
// from PENDING through its terminal state.
func (j *SQLite) RecordOrder(r OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, symbol, action, volume, price, status, broker_ticket, filled_price, filled_volume, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			status = excluded.status,
			broker_ticket = excluded.broker_ticket,
			filled_price = excluded.filled_price,
			filled_volume = excluded.filled_volume,
			updated_at = excluded.updated_at`,
		r.OrderID, r.Symbol, r.Action, r.Volume, r.Price, r.Status,
		r.BrokerTicket, r.FilledPrice, r.FilledVolume, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (j *SQLite) RecordEvent(e EventRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO events (time, kind, detail) VALUES (?, ?, ?)`,
		e.Time, e.Kind, e.Detail,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
