// Package interactions implements the interaction store: communication
// records linked to customers, with enum-checked fields and date-range
// filtered listings.
package interactions

import (
	"context"
	"time"
)

// Channel is the communication medium of an interaction.
type Channel string

// Channel values.
const (
	ChannelPhone       Channel = "phone"
	ChannelSMS         Channel = "sms"
	ChannelEmail       Channel = "email"
	ChannelLetter      Channel = "letter"
	ChannelSocialMedia Channel = "social_media"
	ChannelInPerson    Channel = "in_person"
	ChannelChat        Channel = "chat"
)

var channelLabels = map[Channel]string{
	ChannelPhone:       "Phone",
	ChannelSMS:         "SMS",
	ChannelEmail:       "Email",
	ChannelLetter:      "Letter",
	ChannelSocialMedia: "Social Media",
	ChannelInPerson:    "In Person",
	ChannelChat:        "Live Chat",
}

// Valid reports whether the channel is one of the enumerated values.
func (c Channel) Valid() bool {
	_, ok := channelLabels[c]
	return ok
}

// Label returns the display label for the channel.
func (c Channel) Label() string {
	return channelLabels[c]
}

// Direction indicates who initiated the interaction.
type Direction string

// Direction values.
const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

var directionLabels = map[Direction]string{
	DirectionInbound:  "Inbound",
	DirectionOutbound: "Outbound",
}

// Valid reports whether the direction is one of the enumerated values.
func (d Direction) Valid() bool {
	_, ok := directionLabels[d]
	return ok
}

// Label returns the display label for the direction.
func (d Direction) Label() string {
	return directionLabels[d]
}

// Status tracks follow-up state. Every transition between statuses is
// permitted via explicit update; nothing moves automatically.
type Status string

// Status values.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFollowUp  Status = "follow_up"
)

// DefaultStatus applies when a creation request omits the status.
const DefaultStatus = StatusCompleted

var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusCompleted: "Completed",
	StatusFollowUp:  "Follow-up Required",
}

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label for the status.
func (s Status) Label() string {
	return statusLabels[s]
}

// Interaction represents a stored interaction record.
type Interaction struct {
	ID              int64     `json:"id"`
	CustomerID      int64     `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	Channel         Channel   `json:"channel"`
	Direction       Direction `json:"direction"`
	Status          Status    `json:"status"`
	InteractionDate time.Time `json:"interaction_date"`
	Summary         string    `json:"summary"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
}

// ListItem is the lightweight representation used by list views.
type ListItem struct {
	ID              int64     `json:"id"`
	CustomerName    string    `json:"customer_name"`
	Channel         Channel   `json:"channel"`
	ChannelLabel    string    `json:"channel_label"`
	Direction       Direction `json:"direction"`
	DirectionLabel  string    `json:"direction_label"`
	Status          Status    `json:"status"`
	StatusLabel     string    `json:"status_label"`
	InteractionDate time.Time `json:"interaction_date"`
	Summary         string    `json:"summary"`
}

// Input carries the writable interaction fields for create and update.
// InteractionDate is server-assigned at creation and immutable afterwards.
type Input struct {
	CustomerID int64
	Channel    Channel
	Direction  Direction
	Status     Status
	Summary    string
	Notes      string
	CreatedBy  string
}

// ListFilters narrows interaction listings; every predicate is optional
// and they combine conjunctively. Date bounds compare on the
// interaction_date day, inclusive.
type ListFilters struct {
	CustomerID int64
	Channel    Channel
	Direction  Direction
	Status     Status
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

// CustomerStats summarises a customer's interaction history for detail views.
type CustomerStats struct {
	Total     int64 `json:"total"`
	ThisMonth int64 `json:"this_month"`
}

// Repository persists interactions.
type Repository interface {
	Create(ctx context.Context, in Input) (Interaction, error)
	Update(ctx context.Context, id int64, in Input) (Interaction, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (Interaction, error)
	List(ctx context.Context, filters ListFilters) ([]ListItem, int, error)
	ListRecentForCustomer(ctx context.Context, customerID int64, limit int) ([]ListItem, error)
	StatsForCustomer(ctx context.Context, customerID int64) (CustomerStats, error)
}
