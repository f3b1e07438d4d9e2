// Package reporting computes read-only aggregates over the interaction
// and customer stores.
package reporting

import (
	"context"
	"time"

	"github.com/meridian-crm/meridian-crm/internal/interactions"
)

// ChannelDirectionCount is one (channel, direction) bucket of a summary.
type ChannelDirectionCount struct {
	Channel        interactions.Channel   `json:"channel"`
	ChannelLabel   string                 `json:"channel_label"`
	Direction      interactions.Direction `json:"direction"`
	DirectionLabel string                 `json:"direction_label"`
	Count          int64                  `json:"count"`
}

// StatusCount is one status bucket of a summary.
type StatusCount struct {
	Status      interactions.Status `json:"status"`
	StatusLabel string              `json:"status_label"`
	Count       int64               `json:"count"`
}

// TopCustomer ranks a customer by interaction volume inside a window.
type TopCustomer struct {
	CustomerID       int64  `json:"customer_id"`
	Name             string `json:"name"`
	InteractionCount int64  `json:"interaction_count"`
}

// Summary aggregates interactions inside a trailing day window.
type Summary struct {
	WindowDays int                     `json:"window_days"`
	DateRange  string                  `json:"date_range"`
	Count      int64                   `json:"count"`
	Breakdown  []ChannelDirectionCount `json:"breakdown"`
}

// ExtendedSummary is the full analytics payload for the dashboard.
type ExtendedSummary struct {
	Total            int64                   `json:"total"`
	Last30Days       int64                   `json:"last_30_days"`
	Last7Days        int64                   `json:"last_7_days"`
	ChannelBreakdown []ChannelDirectionCount `json:"channel_breakdown"`
	StatusBreakdown  []StatusCount           `json:"status_breakdown"`
	TopCustomers     []TopCustomer           `json:"top_customers"`
	DateRange        string                  `json:"date_range"`
}

// Repository exposes the aggregate queries required by the service.
type Repository interface {
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	ChannelDirectionCounts(ctx context.Context, since time.Time) ([]ChannelDirectionCount, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	TopCustomers(ctx context.Context, since time.Time, limit int) ([]TopCustomer, error)
}
