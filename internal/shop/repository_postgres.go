package shop

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// --------------------------------------------------
// Save Order
// --------------------------------------------------
func (r *PostgresOrderRepository) Save(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (
			id,
			session_id,
			items,
			item_count,
			subtotal,
			tax_rate,
			tax,
			total,
			created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		o.ID,
		o.SessionID,
		items,
		o.ItemCount,
		o.Subtotal,
		o.TaxRate,
		o.Tax,
		o.Total,
		o.CreatedAt,
	)
	return err
}

// --------------------------------------------------
// List Orders by Session
// --------------------------------------------------
func (r *PostgresOrderRepository) ListBySession(ctx context.Context, sessionID string) ([]*Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id::text,
			session_id,
			items,
			item_count,
			subtotal,
			tax_rate,
			tax,
			total,
			created_at
		FROM orders
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		var (
			o     Order
			items []byte
		)
		if err := rows.Scan(
			&o.ID,
			&o.SessionID,
			&items,
			&o.ItemCount,
			&o.Subtotal,
			&o.TaxRate,
			&o.Tax,
			&o.Total,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
