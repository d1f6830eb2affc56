package types

import "time"

type SeatStatus string

const (
	SEAT_FREE     SeatStatus = "FREE"
	SEAT_RESERVED SeatStatus = "RESERVED"
	SEAT_SOLD     SeatStatus = "SOLD"
	// SEAT_SELECTED exists only client-side; the backend never reports it.
	SEAT_SELECTED SeatStatus = "SELECTED"
)

type PriceCategory string

const (
	CATEGORY_FREE      PriceCategory = "FREE"
	CATEGORY_CHEAP     PriceCategory = "CHEAP"
	CATEGORY_MIDDLE    PriceCategory = "MIDDLE"
	CATEGORY_EXPENSIVE PriceCategory = "EXPENSIVE"
)

type StagePosition string

const (
	STAGE_TOP    StagePosition = "TOP"
	STAGE_BOTTOM StagePosition = "BOTTOM"
	STAGE_LEFT   StagePosition = "LEFT"
	STAGE_RIGHT  StagePosition = "RIGHT"
	STAGE_CENTER StagePosition = "CENTER"
)

type CartItemType string

const (
	ITEM_MERCHANDISE CartItemType = "MERCHANDISE"
	ITEM_REWARD      CartItemType = "REWARD"
	ITEM_TICKET      CartItemType = "TICKET"
)

type PaymentMethod string

const (
	PAYMENT_CREDIT_CARD PaymentMethod = "CREDIT_CARD"
	PAYMENT_PAYPAL      PaymentMethod = "PAYPAL"
)

type TicketCreate struct {
	EventID uint `json:"eventId" binding:"required"`
	SeatID  uint `json:"seatId" binding:"required"`
}

type CartItemUpdateRequestBody struct {
	Quantity int `json:"quantity" binding:"required"`
}

type AddCartItemRequestBody struct {
	MerchandiseID uint         `json:"merchandiseId" binding:"required"`
	Type          CartItemType `json:"type,omitempty"`
	Quantity      int          `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequestBody struct {
	PaymentMethod PaymentMethod `json:"paymentMethod" binding:"required"`
	PaymentDetail string        `json:"paymentDetail" binding:"required"`
}

type CheckoutResponse struct {
	TicketInvoiceID      uint `json:"ticketInvoiceId"`
	MerchandiseInvoiceID uint `json:"merchandiseInvoiceId"`
	RewardInvoiceID      uint `json:"rewardInvoiceId"`
}

type APIResponseSeat struct {
	ID            uint       `json:"id"`
	RowNumber     int        `json:"rowNumber"`
	SeatNumber    int        `json:"seatNumber"`
	Status        SeatStatus `json:"status"`
	PriceCategory string     `json:"priceCategory"`
}

type APIResponseSeatmap struct {
	StagePosition  StagePosition     `json:"stagePosition,omitempty"`
	StageLabel     string            `json:"stageLabel,omitempty"`
	StageRowStart  int               `json:"stageRowStart,omitempty"`
	StageRowEnd    int               `json:"stageRowEnd,omitempty"`
	StageColStart  int               `json:"stageColStart,omitempty"`
	StageColEnd    int               `json:"stageColEnd,omitempty"`
	StageWidthPx   int               `json:"stageWidthPx,omitempty"`
	StageHeightPx  int               `json:"stageHeightPx,omitempty"`
	RunwayWidthPx  int               `json:"runwayWidthPx,omitempty"`
	RunwayLengthPx int               `json:"runwayLengthPx,omitempty"`
	RunwayOffsetPx int               `json:"runwayOffsetPx,omitempty"`
	Seats          []APIResponseSeat `json:"seats"`
}

type APIResponseTicket struct {
	ID              uint       `json:"id"`
	EventID         uint       `json:"eventId,omitempty"`
	EventTitle      string     `json:"eventTitle,omitempty"`
	EventDate       *time.Time `json:"eventDate,omitempty"`
	Price           float64    `json:"price,omitempty"`
	RowNumber       int        `json:"rowNumber,omitempty"`
	SeatNumber      int        `json:"seatNumber,omitempty"`
	InvoiceID       uint       `json:"invoiceId,omitempty"`
	CreditInvoiceID uint       `json:"creditInvoiceId,omitempty"`
}

type APIResponseCartItem struct {
	ID                uint         `json:"id"`
	Type              CartItemType `json:"type"`
	MerchandiseID     uint         `json:"merchandiseId,omitempty"`
	Name              string       `json:"name,omitempty"`
	UnitPrice         float64      `json:"unitPrice"`
	Quantity          int          `json:"quantity,omitempty"`
	RemainingQuantity int          `json:"remainingQuantity,omitempty"`
	TicketID          uint         `json:"ticketId,omitempty"`
	EventID           uint         `json:"eventId,omitempty"`
	EventTitle        string       `json:"eventTitle,omitempty"`
	RowNumber         int          `json:"rowNumber,omitempty"`
	SeatNumber        int          `json:"seatNumber,omitempty"`
}

type APIResponseCart struct {
	ID    uint                  `json:"id"`
	Items []APIResponseCartItem `json:"items"`
}

type APIResponseEvent struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug,omitempty"`
	Location string     `json:"location,omitempty"`
	DateTime *time.Time `json:"dateTime,omitempty"`
}

type APIResponseCreditInvoice struct {
	ID        uint                `json:"id"`
	IssuedAt  *time.Time          `json:"issuedAt,omitempty"`
	Positions []APIResponseTicket `json:"positions,omitempty"`
}
