package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// repo implements Repository on PostgreSQL. Window bounds compare on the
// interaction_date day so "last 30 days" includes everything from the
// boundary date onwards.
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reporting repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count)
	return count, err
}

func (r *repo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM interactions WHERE interaction_date::date >= $1`, since).Scan(&count)
	return count, err
}

func (r *repo) ChannelDirectionCounts(ctx context.Context, since time.Time) ([]ChannelDirectionCount, error) {
	query := `SELECT channel, direction, COUNT(*)
	          FROM interactions
	          WHERE interaction_date::date >= $1
	          GROUP BY channel, direction
	          ORDER BY channel, direction`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ChannelDirectionCount
	for rows.Next() {
		var c ChannelDirectionCount
		if err := rows.Scan(&c.Channel, &c.Direction, &c.Count); err != nil {
			return nil, err
		}
		c.ChannelLabel = c.Channel.Label()
		c.DirectionLabel = c.Direction.Label()
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *repo) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	query := `SELECT status, COUNT(*)
	          FROM interactions
	          GROUP BY status
	          ORDER BY status`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		c.StatusLabel = c.Status.Label()
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *repo) TopCustomers(ctx context.Context, since time.Time, limit int) ([]TopCustomer, error) {
	query := `SELECT c.id, c.name, COUNT(i.id) AS interaction_count
	          FROM customers c
	          JOIN interactions i ON i.customer_id = c.id
	          WHERE i.interaction_date::date >= $1
	          GROUP BY c.id, c.name
	          ORDER BY interaction_count DESC, c.id ASC
	          LIMIT $2`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []TopCustomer
	for rows.Next() {
		var t TopCustomer
		if err := rows.Scan(&t.CustomerID, &t.Name, &t.InteractionCount); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}
