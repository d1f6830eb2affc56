package models

import "time"

// ReservationLeeway is how long before event start a reservation expires.
const ReservationLeeway = 30 * time.Minute

// TicketReserved, TicketPurchased and TicketCancelled are three disjoint
// views of a ticket's lifecycle. Each view is fetched independently; the
// client never tracks a single ticket object through all three states.

type TicketReserved struct {
	ID         uint
	EventID    uint
	EventTitle string
	EventDate  time.Time
	Price      float64
	RowNumber  int
	SeatNumber int
}

// ExpiresAt is the end of the reservation hold, eventDate - 30min.
func (t *TicketReserved) ExpiresAt() time.Time {
	return t.EventDate.Add(-ReservationLeeway)
}

type TicketPurchased struct {
	ID         uint
	EventTitle string
	EventDate  time.Time
	Price      float64
	RowNumber  int
	SeatNumber int
	InvoiceID  uint
}

type TicketCancelled struct {
	ID              uint
	EventTitle      string
	EventDate       time.Time
	Price           float64
	CreditInvoiceID uint
}
