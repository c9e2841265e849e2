// README: Booking aggregate and status definitions.
package booking

import (
	"time"

	"freightquote/internal/modules/pricing"
	"freightquote/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusQuoted    Status = "quoted"
	StatusConfirmed Status = "confirmed"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Booking is a priced shipment. Breakdown is fixed at creation and never re-priced.
type Booking struct {
	ID            types.ID                `json:"id"`
	CustomerID    string                  `json:"customer_id"`
	Status        Status                  `json:"status"`
	StatusVersion int                     `json:"status_version"`
	Simulation    pricing.RouteSimulation `json:"simulation"`
	Breakdown     pricing.PriceBreakdown  `json:"breakdown"`
	Price         types.Money             `json:"price"`
	CreatedAt     time.Time               `json:"created_at"`
	ConfirmedAt   *time.Time              `json:"confirmed_at,omitempty"`
	DispatchedAt  *time.Time              `json:"dispatched_at,omitempty"`
	DeliveredAt   *time.Time              `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason  *string                 `json:"cancel_reason,omitempty"`
	Proof         *DeliveryProof          `json:"proof_of_delivery,omitempty"`
}

// DeliveryProof is captured at handover. Signature is the signed image as a data URL.
type DeliveryProof struct {
	RecipientName string `json:"recipient_name"`
	Signature     string `json:"signature"`
	Notes         string `json:"notes,omitempty"`
}

// StatusChange is one optimistic status update; it applies only while the stored
// status and version still equal From and Version.
type StatusChange struct {
	ID      types.ID
	From    Status
	To      Status
	Version int
	Reason  *string
	Proof   *DeliveryProof
}

type Event struct {
	ID         int64     `json:"id"`
	BookingID  types.ID  `json:"booking_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorType  string    `json:"actor_type"`
	ActorID    *string   `json:"actor_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllowedTransitions represents the booking state flow (diagram) as code.
var AllowedTransitions = map[Status][]Status{
	StatusQuoted:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
