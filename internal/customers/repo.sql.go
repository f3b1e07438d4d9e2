package customers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// repo implements Repository on PostgreSQL. Email uniqueness is enforced
// by the customers_email_lower_key index so concurrent creations resolve
// at commit time, never via check-then-insert.
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new customer repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, in Input) (Customer, error) {
	query := `INSERT INTO customers (name, email, phone, address, social_media, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
	          RETURNING id, is_active, created_at, updated_at`
	c := Customer{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address, SocialMedia: in.SocialMedia}
	err := r.db.QueryRow(ctx, query, in.Name, in.Email, in.Phone, in.Address, in.SocialMedia).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Customer{}, mapEmailConflict(err)
	}
	return c, nil
}

func (r *repo) Update(ctx context.Context, id int64, in Input) (Customer, error) {
	query := `UPDATE customers
	          SET name = $1, email = $2, phone = $3, address = $4, social_media = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING id, is_active, created_at, updated_at`
	c := Customer{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address, SocialMedia: in.SocialMedia}
	err := r.db.QueryRow(ctx, query, in.Name, in.Email, in.Phone, in.Address, in.SocialMedia, id).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, mapEmailConflict(err)
	}
	return c, nil
}

func (r *repo) Deactivate(ctx context.Context, id int64) (Customer, error) {
	query := `UPDATE customers SET is_active = FALSE, updated_at = NOW()
	          WHERE id = $1
	          RETURNING id, name, email, phone, address, social_media, is_active, created_at, updated_at`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.SocialMedia, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repo) Get(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT c.id, c.name, c.email, c.phone, c.address, c.social_media, c.is_active,
	                 c.created_at, c.updated_at,
	                 COUNT(i.id), MAX(i.interaction_date)
	          FROM customers c
	          LEFT JOIN interactions i ON i.customer_id = c.id
	          WHERE c.id = $1
	          GROUP BY c.id`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.SocialMedia, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt, &c.InteractionCount, &c.LastInteractionAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repo) List(ctx context.Context, filters ListFilters) ([]ListItem, int, error) {
	where := ``
	args := []any{}
	argIndex := 1

	if filters.ActiveOnly == nil || *filters.ActiveOnly {
		where += ` AND c.is_active = TRUE`
	}
	if filters.Search != "" {
		n := strconv.Itoa(argIndex)
		where += ` AND (c.name ILIKE $` + n + ` OR c.email ILIKE $` + n + ` OR c.phone ILIKE $` + n + `)`
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM customers c WHERE 1=1` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT c.id, c.name, c.email, c.phone, c.is_active, COUNT(i.id) AS interaction_count
	          FROM customers c
	          LEFT JOIN interactions i ON i.customer_id = c.id
	          WHERE 1=1` + where + `
	          GROUP BY c.id
	          ORDER BY c.name ASC, c.id ASC`
	page, limit := shared.ClampPageSize(filters.Page, filters.Limit)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Email, &it.Phone, &it.IsActive, &it.InteractionCount); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *repo) Search(ctx context.Context, query string, limit int) ([]ListItem, error) {
	sql := `SELECT c.id, c.name, c.email, c.phone, c.is_active, COUNT(i.id)
	        FROM customers c
	        LEFT JOIN interactions i ON i.customer_id = c.id
	        WHERE c.is_active = TRUE AND (c.name ILIKE $1 OR c.email ILIKE $1)
	        GROUP BY c.id
	        ORDER BY c.name ASC, c.id ASC
	        LIMIT $2`
	rows, err := r.db.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Email, &it.Phone, &it.IsActive, &it.InteractionCount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func mapEmailConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.Conflict("email", "a customer with this email already exists")
	}
	return err
}
