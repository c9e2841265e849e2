// README: Booking store backed by PostgreSQL; breakdowns are kept as JSONB snapshots.
package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"freightquote/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, b *Booking) error {
	sim, err := json.Marshal(b.Simulation)
	if err != nil {
		return err
	}
	bd, err := json.Marshal(b.Breakdown)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO bookings (
            id, customer_id, status, status_version,
            simulation, breakdown, final_price, currency, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`,
		string(b.ID),
		b.CustomerID,
		string(b.Status),
		b.StatusVersion,
		sim,
		bd,
		b.Price.Amount.String(),
		b.Price.Currency,
		b.CreatedAt,
	)
	return err
}

const bookingColumns = `
        id, customer_id, status, status_version, simulation, breakdown,
        final_price::text, currency, created_at,
        confirmed_at, dispatched_at, delivered_at, cancelled_at, cancellation_reason,
        recipient_name, signature, delivery_notes`

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT`+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID string, limit int) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT`+bookingColumns+`
        FROM bookings
        WHERE customer_id = $1
        ORDER BY created_at DESC
        LIMIT $2`, customerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, ch StatusChange) (bool, error) {
	var recipient, signature, notes *string
	if p := ch.Proof; p != nil {
		recipient, signature = &p.RecipientName, &p.Signature
		if p.Notes != "" {
			notes = &p.Notes
		}
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = $1,
            status_version = status_version + 1,
            confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
            dispatched_at = CASE WHEN $1 = 'in_transit' THEN NOW() ELSE dispatched_at END,
            delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
            cancellation_reason = COALESCE($2, cancellation_reason),
            recipient_name = COALESCE($6, recipient_name),
            signature = COALESCE($7, signature),
            delivery_notes = COALESCE($8, delivery_notes)
        WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(ch.To),
		ch.Reason,
		string(ch.ID),
		string(ch.From),
		ch.Version,
		recipient,
		signature,
		notes,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO booking_state_events (
            booking_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.BookingID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.ActorID,
		e.CreatedAt,
	)
	return err
}

func (s *Store) Events(ctx context.Context, id types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, booking_id, from_status, to_status, actor_type, actor_id, created_at
        FROM booking_state_events
        WHERE booking_id = $1
        ORDER BY id`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		var actorID sql.NullString
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.ActorType, &actorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var sim, bd []byte
	var price string
	var confirmedAt, dispatchedAt, deliveredAt, cancelledAt sql.NullTime
	var cancelReason, recipient, signature, notes sql.NullString

	err := row.Scan(
		&b.ID, &b.CustomerID, &b.Status, &b.StatusVersion, &sim, &bd,
		&price, &b.Price.Currency, &b.CreatedAt,
		&confirmedAt, &dispatchedAt, &deliveredAt, &cancelledAt, &cancelReason,
		&recipient, &signature, &notes,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sim, &b.Simulation); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bd, &b.Breakdown); err != nil {
		return nil, err
	}
	if b.Price.Amount, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	b.ConfirmedAt = toTimePtr(confirmedAt)
	b.DispatchedAt = toTimePtr(dispatchedAt)
	b.DeliveredAt = toTimePtr(deliveredAt)
	b.CancelledAt = toTimePtr(cancelledAt)
	if cancelReason.Valid {
		b.CancelReason = &cancelReason.String
	}
	if recipient.Valid {
		b.Proof = &DeliveryProof{
			RecipientName: recipient.String,
			Signature:     signature.String,
			Notes:         notes.String,
		}
	}
	return &b, nil
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
