package interactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/platform/db"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

const listColumns = `i.id, c.name, i.channel, i.direction, i.status, i.interaction_date, i.summary`

// repo implements Repository on PostgreSQL. The customer reference is a
// foreign key with ON DELETE CASCADE; a violation at insert means the
// customer does not exist.
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new interaction repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, in Input) (Interaction, error) {
	query := `INSERT INTO interactions (customer_id, channel, direction, status, interaction_date, summary, notes, created_by)
	          VALUES ($1, $2, $3, $4, NOW(), $5, $6, $7)
	          RETURNING id, interaction_date`
	it := Interaction{
		CustomerID: in.CustomerID,
		Channel:    in.Channel,
		Direction:  in.Direction,
		Status:     in.Status,
		Summary:    in.Summary,
		Notes:      in.Notes,
		CreatedBy:  in.CreatedBy,
	}
	// Insert and the customer-name read run in one transaction so the
	// returned record reflects a single consistent snapshot.
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, in.CustomerID, in.Channel, in.Direction, in.Status, in.Summary, in.Notes, in.CreatedBy).
			Scan(&it.ID, &it.InteractionDate); err != nil {
			return mapCustomerFK(err)
		}
		return tx.QueryRow(ctx, `SELECT name FROM customers WHERE id = $1`, in.CustomerID).Scan(&it.CustomerName)
	})
	if err != nil {
		return Interaction{}, err
	}
	return it, nil
}

func (r *repo) Update(ctx context.Context, id int64, in Input) (Interaction, error) {
	// interaction_date stays as assigned at creation.
	query := `UPDATE interactions
	          SET customer_id = $1, channel = $2, direction = $3, status = $4, summary = $5, notes = $6, created_by = $7
	          WHERE id = $8
	          RETURNING id, interaction_date`
	it := Interaction{
		CustomerID: in.CustomerID,
		Channel:    in.Channel,
		Direction:  in.Direction,
		Status:     in.Status,
		Summary:    in.Summary,
		Notes:      in.Notes,
		CreatedBy:  in.CreatedBy,
	}
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, in.CustomerID, in.Channel, in.Direction, in.Status, in.Summary, in.Notes, in.CreatedBy, id).
			Scan(&it.ID, &it.InteractionDate); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return mapCustomerFK(err)
		}
		return tx.QueryRow(ctx, `SELECT name FROM customers WHERE id = $1`, in.CustomerID).Scan(&it.CustomerName)
	})
	if err != nil {
		return Interaction{}, err
	}
	return it, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM interactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repo) Get(ctx context.Context, id int64) (Interaction, error) {
	query := `SELECT i.id, i.customer_id, c.name, i.channel, i.direction, i.status,
	                 i.interaction_date, i.summary, i.notes, i.created_by
	          FROM interactions i
	          JOIN customers c ON c.id = i.customer_id
	          WHERE i.id = $1`
	var it Interaction
	err := r.db.QueryRow(ctx, query, id).
		Scan(&it.ID, &it.CustomerID, &it.CustomerName, &it.Channel, &it.Direction, &it.Status,
			&it.InteractionDate, &it.Summary, &it.Notes, &it.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interaction{}, shared.ErrNotFound
		}
		return Interaction{}, err
	}
	return it, nil
}

func (r *repo) List(ctx context.Context, filters ListFilters) ([]ListItem, int, error) {
	where := ``
	args := []any{}
	argIndex := 1

	addCond := func(cond string, value any) {
		where += ` AND ` + cond + `$` + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	if filters.CustomerID > 0 {
		addCond(`i.customer_id = `, filters.CustomerID)
	}
	if filters.Channel != "" {
		addCond(`i.channel = `, filters.Channel)
	}
	if filters.Direction != "" {
		addCond(`i.direction = `, filters.Direction)
	}
	if filters.Status != "" {
		addCond(`i.status = `, filters.Status)
	}
	if filters.DateFrom != nil {
		addCond(`i.interaction_date::date >= `, *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCond(`i.interaction_date::date <= `, *filters.DateTo)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM interactions i WHERE 1=1` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + listColumns + `
	          FROM interactions i
	          JOIN customers c ON c.id = i.customer_id
	          WHERE 1=1` + where + `
	          ORDER BY i.interaction_date DESC, i.id DESC`
	page, limit := shared.ClampPageSize(filters.Page, filters.Limit)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanListItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListRecentForCustomer(ctx context.Context, customerID int64, limit int) ([]ListItem, error) {
	query := `SELECT ` + listColumns + `
	          FROM interactions i
	          JOIN customers c ON c.id = i.customer_id
	          WHERE i.customer_id = $1
	          ORDER BY i.interaction_date DESC, i.id DESC
	          LIMIT $2`
	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListItems(rows)
}

func (r *repo) StatsForCustomer(ctx context.Context, customerID int64) (CustomerStats, error) {
	query := `SELECT COUNT(*),
	                 COUNT(*) FILTER (WHERE date_trunc('month', interaction_date) = date_trunc('month', NOW()))
	          FROM interactions
	          WHERE customer_id = $1`
	var stats CustomerStats
	err := r.db.QueryRow(ctx, query, customerID).Scan(&stats.Total, &stats.ThisMonth)
	return stats, err
}

func scanListItems(rows pgx.Rows) ([]ListItem, error) {
	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.CustomerName, &it.Channel, &it.Direction, &it.Status, &it.InteractionDate, &it.Summary); err != nil {
			return nil, err
		}
		it.ChannelLabel = it.Channel.Label()
		it.DirectionLabel = it.Direction.Label()
		it.StatusLabel = it.Status.Label()
		items = append(items, it)
	}
	return items, rows.Err()
}

func mapCustomerFK(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("customer: %w", shared.ErrNotFound)
	}
	return err
}
