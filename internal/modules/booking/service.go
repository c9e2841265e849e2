// README: Booking service prices bookings server-side and drives their state transitions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freightquote/internal/modules/pricing"
	"freightquote/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("booking not found")
	ErrConflict     = errors.New("booking state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Quoter interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.PriceBreakdown, error)
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Booking, error)
	UpdateStatus(ctx context.Context, ch StatusChange) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, id types.ID) ([]Event, error)
}

type Service struct {
	repo     Repository
	quoter   Quoter
	currency string
	log      *zap.Logger
}

func NewService(repo Repository, quoter Quoter, currency string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, quoter: quoter, currency: currency, log: log}
}

type CreateCommand struct {
	CustomerID string                  `json:"customer_id"`
	Simulation pricing.RouteSimulation `json:"simulation"`
}

type DeliverCommand struct {
	BookingID     types.ID
	RecipientName string `json:"recipient_name"`
	Signature     string `json:"signature"`
	Notes         string `json:"notes"`
}

type CancelCommand struct {
	BookingID types.ID
	ActorType string
	ActorID   *string
	Reason    string
}

// Create quotes the shipment and stores it as a quoted booking. Clients never
// supply the price.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	customerID := strings.TrimSpace(cmd.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrBadRequest)
	}
	if s.quoter == nil {
		return nil, errors.New("booking: no quoter configured")
	}

	sim := cmd.Simulation
	sim.CustomerID = customerID
	bd, err := s.quoter.Quote(ctx, pricing.QuoteRequest{Simulation: sim})
	if err != nil {
		return nil, fmt.Errorf("quote booking: %w", err)
	}

	now := time.Now().UTC()
	b := &Booking{
		ID:            types.ID(uuid.NewString()),
		CustomerID:    customerID,
		Status:        StatusQuoted,
		StatusVersion: 0,
		Simulation:    sim,
		Breakdown:     bd,
		Price:         types.Money{Amount: bd.FinalPrice, Currency: s.currency},
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, &Event{
		BookingID:  b.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusQuoted,
		ActorType:  "customer",
		ActorID:    &customerID,
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit int) ([]Booking, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrBadRequest
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByCustomer(ctx, customerID, limit)
}

func (s *Service) Events(ctx context.Context, id types.ID) ([]Event, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Events(ctx, id)
}

func (s *Service) Confirm(ctx context.Context, id types.ID) error {
	return s.transition(ctx, StatusChange{ID: id, To: StatusConfirmed}, "customer", nil)
}

func (s *Service) Dispatch(ctx context.Context, id types.ID) error {
	return s.transition(ctx, StatusChange{ID: id, To: StatusInTransit}, "dispatcher", nil)
}

// Deliver closes a shipment with proof of delivery. Recipient name and signature
// are required; notes are optional.
func (s *Service) Deliver(ctx context.Context, cmd DeliverCommand) error {
	proof := DeliveryProof{
		RecipientName: strings.TrimSpace(cmd.RecipientName),
		Signature:     strings.TrimSpace(cmd.Signature),
		Notes:         strings.TrimSpace(cmd.Notes),
	}
	if proof.RecipientName == "" {
		return fmt.Errorf("%w: recipient_name is required", ErrBadRequest)
	}
	if proof.Signature == "" {
		return fmt.Errorf("%w: signature is required", ErrBadRequest)
	}
	return s.transition(ctx, StatusChange{ID: cmd.BookingID, To: StatusDelivered, Proof: &proof}, "dispatcher", nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	actor := cmd.ActorType
	if actor == "" {
		actor = "customer"
	}
	var reason *string
	if r := strings.TrimSpace(cmd.Reason); r != "" {
		reason = &r
	}
	return s.transition(ctx, StatusChange{ID: cmd.BookingID, To: StatusCancelled, Reason: reason}, actor, cmd.ActorID)
}

// transition moves a booking to ch.To with an optimistic status_version check.
func (s *Service) transition(ctx context.Context, ch StatusChange, actorType string, actorID *string) error {
	b, err := s.repo.Get(ctx, ch.ID)
	if err != nil {
		return err
	}
	to := ch.To
	if !CanTransition(b.Status, to) {
		return ErrInvalidState
	}
	ch.ID, ch.From, ch.Version = b.ID, b.Status, b.StatusVersion
	ok, err := s.repo.UpdateStatus(ctx, ch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if actorID == nil && actorType == "customer" {
		actorID = &b.CustomerID
	}
	s.appendEvent(ctx, &Event{
		BookingID:  b.ID,
		FromStatus: b.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// appendEvent records history; a failed write never undoes the transition.
func (s *Service) appendEvent(ctx context.Context, e *Event) {
	if err := s.repo.AppendEvent(ctx, e); err != nil {
		s.log.Warn("append booking event failed",
			zap.String("booking_id", string(e.BookingID)),
			zap.String("to_status", string(e.ToStatus)),
			zap.Error(err),
		)
	}
}
