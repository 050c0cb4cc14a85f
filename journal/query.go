package journal

import (
	"database/sql"
	"fmt"
)

// GetOrder returns a single order record by ID.
func (j *SQLite) GetOrder(orderID string) (OrderRecord, error) {
	var rec OrderRecord

	row := j.db.QueryRow(`
		SELECT order_id, symbol, action, volume, price, status, broker_ticket, filled_price, filled_volume, created_at, updated_at
		FROM orders
		WHERE order_id = ?`, orderID)

	err := row.Scan(
		&rec.OrderID,
		&rec.Symbol,
		&rec.Action,
		&rec.Volume,
		&rec.Price,
		&rec.Status,
		&rec.BrokerTicket,
		&rec.FilledPrice,
		&rec.FilledVolume,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return OrderRecord{}, fmt.Errorf("order %q not found", orderID)
		}
		return OrderRecord{}, err
	}
	return rec, nil
}

// ListOrders returns up to limit orders, most recent first. ULIDs sort
// by creation time, so order_id ordering is creation ordering.
func (j *SQLite) ListOrders(limit int) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, symbol, action, volume, price, status, broker_ticket, filled_price, filled_volume, created_at, updated_at
		FROM orders
		ORDER BY order_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		if err := rows.Scan(
			&rec.OrderID,
			&rec.Symbol,
			&rec.Action,
			&rec.Volume,
			&rec.Price,
			&rec.Status,
			&rec.BrokerTicket,
			&rec.FilledPrice,
			&rec.FilledVolume,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEvents returns up to limit events, most recent first.
func (j *SQLite) ListEvents(limit int) ([]EventRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, kind, detail
		FROM events
		ORDER BY time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.Time, &rec.Kind, &rec.Detail); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
