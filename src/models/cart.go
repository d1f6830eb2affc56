package models

import "ticketline/src/types"

// CartItem is one line of the cart mirror. The union is discriminated by
// Type: MERCHANDISE and REWARD lines carry merchandise fields and a
// quantity, TICKET lines carry ticket fields and always count as one.
type CartItem struct {
	ID   uint
	Type types.CartItemType

	MerchandiseID     uint
	Name              string
	UnitPrice         float64
	Quantity          int
	RemainingQuantity int

	TicketID   uint
	EventID    uint
	EventTitle string
	RowNumber  int
	SeatNumber int
}

// MaxQuantity is the user-visible stock ceiling for a merchandise line: the
// quantity already held in the cart plus whatever the server reports as
// still available. Re-derived from every server response.
func (i *CartItem) MaxQuantity() int {
	return i.Quantity + i.RemainingQuantity
}

// Cart mirrors the server-side cart. It is always replaced wholesale from a
// server response, never patched field by field.
type Cart struct {
	ID    uint
	Items []*CartItem
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// CartFromResponse converts the wire shape into the client mirror.
func CartFromResponse(resp *types.APIResponseCart) *Cart {
	if resp == nil {
		return &Cart{}
	}
	cart := &Cart{ID: resp.ID, Items: make([]*CartItem, 0, len(resp.Items))}
	for _, it := range resp.Items {
		cart.Items = append(cart.Items, &CartItem{
			ID:                it.ID,
			Type:              it.Type,
			MerchandiseID:     it.MerchandiseID,
			Name:              it.Name,
			UnitPrice:         it.UnitPrice,
			Quantity:          it.Quantity,
			RemainingQuantity: it.RemainingQuantity,
			TicketID:          it.TicketID,
			EventID:           it.EventID,
			EventTitle:        it.EventTitle,
			RowNumber:         it.RowNumber,
			SeatNumber:        it.SeatNumber,
		})
	}
	return cart
}
