package shop

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteOrderRepository archives orders in a local database file opened
// with db.OpenSQLite.
type SQLiteOrderRepository struct {
	db *sql.DB
}

func NewSQLiteOrderRepository(db *sql.DB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{db: db}
}

func (r *SQLiteOrderRepository) Save(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (id, session_id, items, item_count, subtotal, tax_rate, tax, total, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.SessionID, string(items), o.ItemCount, o.Subtotal, o.TaxRate, o.Tax, o.Total, o.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepository) ListBySession(ctx context.Context, sessionID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, items, item_count, subtotal, tax_rate, tax, total, created_at_ms
		FROM orders
		WHERE session_id = ?
		ORDER BY created_at_ms ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		var (
			o         Order
			items     string
			createdMS int64
		)
		if err := rows.Scan(&o.ID, &o.SessionID, &items, &o.ItemCount, &o.Subtotal, &o.TaxRate, &o.Tax, &o.Total, &createdMS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
		o.CreatedAt = time.UnixMilli(createdMS).UTC()
		out = append(out, &o)
	}
	return out, rows.Err()
}
