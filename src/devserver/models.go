package devserver

import (
	"time"

	"ticketline/src/types"
)

// Persistence model of the development server. A deliberately small,
// single-user rendition of the real backend: one cart, no tenants.

type Event struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug,omitempty"`
	Location string `json:"location,omitempty"`
	DateTime *time.Time `json:"dateTime,omitempty"`

	StagePosition  types.StagePosition `json:"stagePosition,omitempty"`
	StageLabel     string              `json:"stageLabel,omitempty"`
	StageRowStart  int                 `json:"stageRowStart,omitempty"`
	StageRowEnd    int                 `json:"stageRowEnd,omitempty"`
	StageColStart  int                 `json:"stageColStart,omitempty"`
	StageColEnd    int                 `json:"stageColEnd,omitempty"`
	StageWidthPx   int                 `json:"stageWidthPx,omitempty"`
	StageHeightPx  int                 `json:"stageHeightPx,omitempty"`
	RunwayWidthPx  int                 `json:"runwayWidthPx,omitempty"`
	RunwayLengthPx int                 `json:"runwayLengthPx,omitempty"`
	RunwayOffsetPx int                 `json:"runwayOffsetPx,omitempty"`

	Seats []Seat `json:"seats,omitempty"`
}

type Seat struct {
	ID         uint             `gorm:"primarykey" json:"id"`
	EventID    uint             `json:"eventId"`
	RowNumber  int              `json:"rowNumber"`
	SeatNumber int              `json:"seatNumber"`
	Status     types.SeatStatus `gorm:"default:'FREE'" json:"status"`
	// PriceCategory stays free text on purpose; the client normalizes it.
	PriceCategory string  `json:"priceCategory"`
	Price         float64 `json:"price"`
}

const (
	TICKET_CREATED   = "created"
	TICKET_RESERVED  = "reserved"
	TICKET_PURCHASED = "purchased"
	TICKET_CANCELLED = "cancelled"
)

type Ticket struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	EventID         uint       `json:"eventId"`
	SeatID          uint       `json:"seatId"`
	Status          string     `gorm:"default:'created'" json:"status"`
	Price           float64    `json:"price"`
	InvoiceID       uint       `json:"invoiceId,omitempty"`
	CreditInvoiceID uint       `json:"creditInvoiceId,omitempty"`
	ReservedAt      *time.Time `json:"reservedAt,omitempty"`

	Event Event `json:"event,omitempty"`
	Seat  Seat  `json:"seat,omitempty"`
}

type Merchandise struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Points uint    `json:"points,omitempty"`
	Stock  int     `json:"stock"`
}

type CartItem struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	Type          types.CartItemType `json:"type"`
	MerchandiseID uint               `json:"merchandiseId,omitempty"`
	Quantity      int                `json:"quantity,omitempty"`
	TicketID      uint               `json:"ticketId,omitempty"`
}

const (
	INVOICE_TICKET      = "ticket"
	INVOICE_MERCHANDISE = "merchandise"
	INVOICE_REWARD      = "reward"
	INVOICE_CREDIT      = "credit"
)

type Invoice struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	Kind     string    `json:"kind"`
	Number   string    `json:"number"`
	IssuedAt time.Time `json:"issuedAt"`
}
