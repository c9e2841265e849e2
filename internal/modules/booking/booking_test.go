// README: Booking service tests (state machine, flow, invalid requests) on an in-memory repository.
package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"freightquote/internal/modules/pricing"
	"freightquote/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanTransition verifies the state machine transition table.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy path
		{StatusQuoted, StatusConfirmed, true},
		{StatusConfirmed, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		// cancels before dispatch
		{StatusQuoted, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		// no cancel once moving
		{StatusInTransit, StatusCancelled, false},
		// terminal states
		{StatusDelivered, StatusQuoted, false},
		{StatusCancelled, StatusConfirmed, false},
		// skipping states
		{StatusQuoted, StatusInTransit, false},
		{StatusQuoted, StatusDelivered, false},
		{StatusNone, StatusConfirmed, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

type memRepo struct {
	mu       sync.Mutex
	bookings map[types.ID]Booking
	events   []Event
	eventErr error
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[types.ID]Booking{}}
}

func (m *memRepo) Create(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memRepo) Get(ctx context.Context, id types.ID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memRepo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Booking{}
	for _, b := range m.bookings {
		if b.CustomerID == customerID && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, ch StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[ch.ID]
	if !ok || b.Status != ch.From || b.StatusVersion != ch.Version {
		return false, nil
	}
	b.Status = ch.To
	b.StatusVersion++
	if ch.Reason != nil {
		b.CancelReason = ch.Reason
	}
	if ch.Proof != nil {
		b.Proof = ch.Proof
	}
	m.bookings[ch.ID] = b
	return true, nil
}

func (m *memRepo) AppendEvent(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eventErr != nil {
		return m.eventErr
	}
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

func (m *memRepo) Events(ctx context.Context, id types.ID) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Event{}
	for _, e := range m.events {
		if e.BookingID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubQuoter struct {
	last pricing.QuoteRequest
	err  error
}

func (q *stubQuoter) Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.PriceBreakdown, error) {
	q.last = req
	if q.err != nil {
		return pricing.PriceBreakdown{}, q.err
	}
	return pricing.PriceBreakdown{
		BasePrice:  decimal.NewFromInt(1000),
		Subtotal:   decimal.NewFromInt(1000),
		FinalPrice: decimal.RequireFromString("930.00"),
	}, nil
}

func shipment() pricing.RouteSimulation {
	return pricing.RouteSimulation{
		Origin:      "Manchester",
		Destination: "Birmingham",
		Distance:    140,
		Duration:    150,
		VehicleType: pricing.VehicleTruck,
		Urgency:     pricing.UrgencyStandard,
	}
}

func mustCreate(t *testing.T, svc *Service, customerID string) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateCommand{CustomerID: customerID, Simulation: shipment()})
	require.NoError(t, err)
	return b
}

func handover(id types.ID) DeliverCommand {
	return DeliverCommand{
		BookingID:     id,
		RecipientName: "J. Okafor",
		Signature:     "data:image/png;base64,iVBORw0KGgo=",
		Notes:         "left at goods-in bay 3",
	}
}

func assertStatus(t *testing.T, svc *Service, id types.ID, want Status) {
	t.Helper()
	b, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, b.Status)
}

func TestBookingFlowHappyPath(t *testing.T) {
	repo := newMemRepo()
	quoter := &stubQuoter{}
	svc := NewService(repo, quoter, "GBP", nil)
	ctx := context.Background()

	b := mustCreate(t, svc, "cust-global")
	assert.Equal(t, StatusQuoted, b.Status)
	assert.Equal(t, "cust-global", quoter.last.Simulation.CustomerID)
	assert.True(t, decimal.RequireFromString("930").Equal(b.Price.Amount))
	assert.Equal(t, "GBP", b.Price.Currency)

	require.NoError(t, svc.Confirm(ctx, b.ID))
	assertStatus(t, svc, b.ID, StatusConfirmed)
	require.NoError(t, svc.Dispatch(ctx, b.ID))
	assertStatus(t, svc, b.ID, StatusInTransit)
	require.NoError(t, svc.Deliver(ctx, handover(b.ID)))
	assertStatus(t, svc, b.ID, StatusDelivered)

	events, err := svc.Events(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, StatusNone, events[0].FromStatus)
	assert.Equal(t, StatusDelivered, events[3].ToStatus)
	require.NotNil(t, events[1].ActorID)
	assert.Equal(t, "cust-global", *events[1].ActorID)
	assert.Equal(t, "dispatcher", events[2].ActorType)
}

func TestBookingDeliverRecordsProof(t *testing.T) {
	svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
	ctx := context.Background()

	b := mustCreate(t, svc, "cust-build")
	require.NoError(t, svc.Confirm(ctx, b.ID))
	require.NoError(t, svc.Dispatch(ctx, b.ID))

	cmd := handover(b.ID)
	cmd.RecipientName = "  J. Okafor "
	require.NoError(t, svc.Deliver(ctx, cmd))

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)
	require.NotNil(t, got.Proof)
	assert.Equal(t, "J. Okafor", got.Proof.RecipientName)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", got.Proof.Signature)
	assert.Equal(t, "left at goods-in bay 3", got.Proof.Notes)
}

func TestBookingDeliverNeedsRecipientAndSignature(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		mod  func(*DeliverCommand)
	}{
		{"no recipient", func(c *DeliverCommand) { c.RecipientName = "" }},
		{"blank recipient", func(c *DeliverCommand) { c.RecipientName = "   " }},
		{"no signature", func(c *DeliverCommand) { c.Signature = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
			b := mustCreate(t, svc, "cust-1")
			require.NoError(t, svc.Confirm(ctx, b.ID))
			require.NoError(t, svc.Dispatch(ctx, b.ID))

			cmd := handover(b.ID)
			tc.mod(&cmd)
			assert.ErrorIs(t, svc.Deliver(ctx, cmd), ErrBadRequest)
			assertStatus(t, svc, b.ID, StatusInTransit)
		})
	}

	t.Run("notes optional", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		b := mustCreate(t, svc, "cust-1")
		require.NoError(t, svc.Confirm(ctx, b.ID))
		require.NoError(t, svc.Dispatch(ctx, b.ID))
		cmd := handover(b.ID)
		cmd.Notes = ""
		require.NoError(t, svc.Deliver(ctx, cmd))
	})
}

func TestBookingCancel(t *testing.T) {
	svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
	ctx := context.Background()

	b := mustCreate(t, svc, "cust-fresh")
	require.NoError(t, svc.Cancel(ctx, CancelCommand{BookingID: b.ID, Reason: "  found cheaper  "}))

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	require.NotNil(t, got.CancelReason)
	assert.Equal(t, "found cheaper", *got.CancelReason)

	assert.ErrorIs(t, svc.Confirm(ctx, b.ID), ErrInvalidState)
}

func TestBookingInvalidRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("missing customer", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		_, err := svc.Create(ctx, CreateCommand{CustomerID: "  ", Simulation: shipment()})
		assert.ErrorIs(t, err, ErrBadRequest)
	})
	t.Run("pricing rejects shipment", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{err: pricing.ErrInvalidInput}, "GBP", nil)
		_, err := svc.Create(ctx, CreateCommand{CustomerID: "cust-1", Simulation: shipment()})
		assert.ErrorIs(t, err, pricing.ErrInvalidInput)
	})
	t.Run("unknown booking", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		assert.ErrorIs(t, svc.Dispatch(ctx, "missing"), ErrNotFound)
		_, err := svc.Events(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("dispatch before confirm", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		b := mustCreate(t, svc, "cust-1")
		assert.ErrorIs(t, svc.Dispatch(ctx, b.ID), ErrInvalidState)
	})
	t.Run("no cancel in transit", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		b := mustCreate(t, svc, "cust-1")
		require.NoError(t, svc.Confirm(ctx, b.ID))
		require.NoError(t, svc.Dispatch(ctx, b.ID))
		assert.ErrorIs(t, svc.Cancel(ctx, CancelCommand{BookingID: b.ID}), ErrInvalidState)
	})
	t.Run("list needs a customer", func(t *testing.T) {
		svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
		_, err := svc.ListByCustomer(ctx, "", 10)
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestBookingEventFailureKeepsTransition(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &stubQuoter{}, "GBP", nil)
	b := mustCreate(t, svc, "cust-1")

	repo.eventErr = errors.New("disk full")
	require.NoError(t, svc.Confirm(context.Background(), b.ID))
	assertStatus(t, svc, b.ID, StatusConfirmed)
}

func TestConcurrentDispatchVsCancel(t *testing.T) {
	svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
	ctx := context.Background()
	b := mustCreate(t, svc, "cust-1")
	require.NoError(t, svc.Confirm(ctx, b.ID))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- svc.Dispatch(ctx, b.ID)
	}()
	go func() {
		defer wg.Done()
		errs <- svc.Cancel(ctx, CancelCommand{BookingID: b.ID, ActorType: "dispatcher"})
	}()
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestListByCustomer(t *testing.T) {
	svc := NewService(newMemRepo(), &stubQuoter{}, "GBP", nil)
	mustCreate(t, svc, "cust-a")
	mustCreate(t, svc, "cust-a")
	mustCreate(t, svc, "cust-b")

	got, err := svc.ListByCustomer(context.Background(), "cust-a", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
