package interactions

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// memStore fakes both sides of the customer relationship so the cascade
// and soft-delete semantics can be exercised without a database.
type memStore struct {
	customerNames  map[int64]string
	activeCustomer map[int64]bool
	interactions   map[int64]*Interaction
	nextID         int64
}

func newMemStore() *memStore {
	return &memStore{
		customerNames:  make(map[int64]string),
		activeCustomer: make(map[int64]bool),
		interactions:   make(map[int64]*Interaction),
	}
}

func (s *memStore) addCustomer(id int64, name string) {
	s.customerNames[id] = name
	s.activeCustomer[id] = true
}

func (s *memStore) deactivateCustomer(id int64) {
	s.activeCustomer[id] = false
}

func (s *memStore) deleteCustomer(id int64) {
	delete(s.customerNames, id)
	delete(s.activeCustomer, id)
	for iid, it := range s.interactions {
		if it.CustomerID == id {
			delete(s.interactions, iid)
		}
	}
}

func (s *memStore) Create(ctx context.Context, in Input) (Interaction, error) {
	name, ok := s.customerNames[in.CustomerID]
	if !ok {
		return Interaction{}, shared.ErrNotFound
	}
	s.nextID++
	it := Interaction{
		ID:              s.nextID,
		CustomerID:      in.CustomerID,
		CustomerName:    name,
		Channel:         in.Channel,
		Direction:       in.Direction,
		Status:          in.Status,
		InteractionDate: time.Now(),
		Summary:         in.Summary,
		Notes:           in.Notes,
		CreatedBy:       in.CreatedBy,
	}
	s.interactions[it.ID] = &it
	return it, nil
}

func (s *memStore) Update(ctx context.Context, id int64, in Input) (Interaction, error) {
	it, ok := s.interactions[id]
	if !ok {
		return Interaction{}, shared.ErrNotFound
	}
	name, ok := s.customerNames[in.CustomerID]
	if !ok {
		return Interaction{}, shared.ErrNotFound
	}
	it.CustomerID = in.CustomerID
	it.CustomerName = name
	it.Channel = in.Channel
	it.Direction = in.Direction
	it.Status = in.Status
	it.Summary = in.Summary
	it.Notes = in.Notes
	it.CreatedBy = in.CreatedBy
	return *it, nil
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.interactions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.interactions, id)
	return nil
}

func (s *memStore) Get(ctx context.Context, id int64) (Interaction, error) {
	it, ok := s.interactions[id]
	if !ok {
		return Interaction{}, shared.ErrNotFound
	}
	return *it, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *memStore) matches(it *Interaction, filters ListFilters) bool {
	if filters.CustomerID > 0 && it.CustomerID != filters.CustomerID {
		return false
	}
	if filters.Channel != "" && it.Channel != filters.Channel {
		return false
	}
	if filters.Direction != "" && it.Direction != filters.Direction {
		return false
	}
	if filters.Status != "" && it.Status != filters.Status {
		return false
	}
	day := dateOnly(it.InteractionDate)
	if filters.DateFrom != nil && day.Before(dateOnly(*filters.DateFrom)) {
		return false
	}
	if filters.DateTo != nil && day.After(dateOnly(*filters.DateTo)) {
		return false
	}
	return true
}

func (s *memStore) listItem(it *Interaction) ListItem {
	return ListItem{
		ID:              it.ID,
		CustomerName:    it.CustomerName,
		Channel:         it.Channel,
		ChannelLabel:    it.Channel.Label(),
		Direction:       it.Direction,
		DirectionLabel:  it.Direction.Label(),
		Status:          it.Status,
		StatusLabel:     it.Status.Label(),
		InteractionDate: it.InteractionDate,
		Summary:         it.Summary,
	}
}

func (s *memStore) List(ctx context.Context, filters ListFilters) ([]ListItem, int, error) {
	var items []ListItem
	for _, it := range s.interactions {
		if s.matches(it, filters) {
			items = append(items, s.listItem(it))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].InteractionDate.Equal(items[j].InteractionDate) {
			return items[i].InteractionDate.After(items[j].InteractionDate)
		}
		return items[i].ID > items[j].ID
	})
	return items, len(items), nil
}

func (s *memStore) ListRecentForCustomer(ctx context.Context, customerID int64, limit int) ([]ListItem, error) {
	items, _, err := s.List(ctx, ListFilters{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *memStore) StatsForCustomer(ctx context.Context, customerID int64) (CustomerStats, error) {
	var stats CustomerStats
	now := time.Now()
	for _, it := range s.interactions {
		if it.CustomerID != customerID {
			continue
		}
		stats.Total++
		if it.InteractionDate.Year() == now.Year() && it.InteractionDate.Month() == now.Month() {
			stats.ThisMonth++
		}
	}
	return stats, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	store.addCustomer(1, "John Doe")
	store.addCustomer(2, "Jane Smith")
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store, nil), store
}

func validCreate() Input {
	return Input{
		CustomerID: 1,
		Channel:    ChannelPhone,
		Direction:  DirectionInbound,
		Summary:    "Called customer about billing",
	}
}

func TestCreateInteraction(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	it, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	require.NotZero(t, it.ID)
	require.Equal(t, "John Doe", it.CustomerName)
	require.Equal(t, StatusCompleted, it.Status, "status defaults to completed")
	require.False(t, it.InteractionDate.IsZero())
}

func TestCreateInteractionShortSummary(t *testing.T) {
	svc, _ := newTestService()

	in := validCreate()
	in.Summary = "Hi"
	_, err := svc.Create(context.Background(), in)
	var vErr shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "summary", vErr.Field)

	// Padding with whitespace does not help; the limit applies after trimming.
	in.Summary = "   Hi       "
	_, err = svc.Create(context.Background(), in)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "summary", vErr.Field)
}

func TestCreateInteractionValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing customer id", func(in *Input) { in.CustomerID = 0 }, "customer_id"},
		{"bad channel", func(in *Input) { in.Channel = "telepathy" }, "channel"},
		{"bad direction", func(in *Input) { in.Direction = "sideways" }, "direction"},
		{"bad status", func(in *Input) { in.Status = "done" }, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreate()
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			var vErr shared.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestCreateInteractionMissingCustomer(t *testing.T) {
	svc, _ := newTestService()

	in := validCreate()
	in.CustomerID = 99
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStatusTransitionsAreUnrestricted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	it, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	for _, status := range []Status{StatusPending, StatusFollowUp, StatusCompleted, StatusPending} {
		in := validCreate()
		in.Status = status
		updated, err := svc.Update(ctx, it.ID, in)
		require.NoError(t, err)
		require.Equal(t, status, updated.Status)
		require.True(t, updated.InteractionDate.Equal(it.InteractionDate), "interaction date is immutable")
	}
}

func TestDeleteInteractionIsHard(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	it, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, it.ID))
	_, err = svc.Get(ctx, it.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, it.ID), shared.ErrNotFound)
}

func TestListFiltersCombineConjunctively(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	seed := []Input{
		{CustomerID: 1, Channel: ChannelPhone, Direction: DirectionInbound, Summary: "Asked about the renewal quote"},
		{CustomerID: 1, Channel: ChannelEmail, Direction: DirectionOutbound, Summary: "Sent the renewal quote over email"},
		{CustomerID: 2, Channel: ChannelPhone, Direction: DirectionInbound, Summary: "Reported an issue with login"},
	}
	for _, in := range seed {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	items, pagination, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Equal(t, 3, pagination.Total)
	for i := 1; i < len(items); i++ {
		require.False(t, items[i-1].InteractionDate.Before(items[i].InteractionDate), "ordered newest first")
	}

	items, _, err = svc.List(ctx, ListFilters{CustomerID: 1, Channel: ChannelPhone})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Asked about the renewal quote", items[0].Summary)

	items, _, err = svc.List(ctx, ListFilters{Direction: DirectionOutbound})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, ChannelEmail, items[0].Channel)
	require.Equal(t, "Email", items[0].ChannelLabel)
}

func TestListDateRangeInclusive(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	it, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	today := dateOnly(store.interactions[it.ID].InteractionDate)

	items, _, err := svc.List(ctx, ListFilters{DateFrom: &today, DateTo: &today})
	require.NoError(t, err)
	require.Len(t, items, 1)

	tomorrow := today.AddDate(0, 0, 1)
	items, _, err = svc.List(ctx, ListFilters{DateFrom: &tomorrow})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListRejectsUnknownFilterValues(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.List(context.Background(), ListFilters{Channel: "pigeon"})
	var vErr shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "channel", vErr.Field)
}

func TestCustomerDeactivationPreservesInteractions(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	before, _, err := svc.List(ctx, ListFilters{CustomerID: 1})
	require.NoError(t, err)

	store.deactivateCustomer(1)

	after, _, err := svc.List(ctx, ListFilters{CustomerID: 1})
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCustomerDeletionCascades(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validCreate())
	require.NoError(t, err)

	store.deleteCustomer(1)

	items, _, err := svc.List(ctx, ListFilters{CustomerID: 1})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestRecentForCustomer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < RecentLimit+3; i++ {
		_, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)
	}

	items, stats, err := svc.RecentForCustomer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, RecentLimit)
	require.Equal(t, int64(RecentLimit+3), stats.Total)
}
