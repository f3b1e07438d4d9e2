// Package customers implements the customer store: validated CRUD,
// soft-deactivation, list filtering, and autocomplete search.
package customers

import (
	"context"
	"time"
)

// Customer represents a customer record including query-time derived fields.
type Customer struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Address           string     `json:"address"`
	SocialMedia       string     `json:"social_media,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	InteractionCount  int64      `json:"interaction_count"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
}

// ListItem is the lightweight representation used by list and autocomplete views.
type ListItem struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	InteractionCount int64  `json:"interaction_count"`
	IsActive         bool   `json:"is_active"`
}

// Input carries the writable customer fields for create and update.
type Input struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	SocialMedia string
}

// ListFilters narrows customer listings. A nil ActiveOnly applies the
// default of showing active customers only; an explicit false shows all.
type ListFilters struct {
	Search     string
	ActiveOnly *bool
	Page       int
	Limit      int
}

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, in Input) (Customer, error)
	Update(ctx context.Context, id int64, in Input) (Customer, error)
	Deactivate(ctx context.Context, id int64) (Customer, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context, filters ListFilters) ([]ListItem, int, error)
	Search(ctx context.Context, query string, limit int) ([]ListItem, error)
}
