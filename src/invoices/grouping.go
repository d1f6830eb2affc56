package invoices

import (
	"fmt"
	"time"

	"ticketline/src/models"
	"ticketline/src/types"
)

// GroupTicketsByInvoice partitions tickets into disjoint buckets keyed by
// invoice id. Cancellation acts per invoice (a credit note is issued per
// invoice, not per ticket), so bulk actions run off these buckets.
func GroupTicketsByInvoice(tickets []*models.TicketPurchased) map[uint][]uint {
	groups := make(map[uint][]uint)
	for _, ticket := range tickets {
		groups[ticket.InvoiceID] = append(groups[ticket.InvoiceID], ticket.ID)
	}
	return groups
}

// CreditPosition is one "N seats at Event on Date" line of a credit
// invoice summary.
type CreditPosition struct {
	EventTitle string
	EventDate  time.Time
	Seats      int
}

func (p CreditPosition) String() string {
	return fmt.Sprintf("%d seat(s) at %s on %s", p.Seats, p.EventTitle, p.EventDate.Format("2006-01-02"))
}

// SummarizeCreditInvoice groups the positions of one credit invoice by
// (event title, event date), in first-occurrence order.
func SummarizeCreditInvoice(invoice *types.APIResponseCreditInvoice) []CreditPosition {
	type groupKey struct {
		title string
		date  string
	}
	index := make(map[groupKey]int)
	positions := make([]CreditPosition, 0)
	for _, ticket := range invoice.Positions {
		var date time.Time
		if ticket.EventDate != nil {
			date = *ticket.EventDate
		}
		key := groupKey{title: ticket.EventTitle, date: date.Format(time.RFC3339)}
		i, ok := index[key]
		if !ok {
			i = len(positions)
			index[key] = i
			positions = append(positions, CreditPosition{EventTitle: ticket.EventTitle, EventDate: date})
		}
		positions[i].Seats++
	}
	return positions
}

func reservedFromResponse(tickets []types.APIResponseTicket) []*models.TicketReserved {
	out := make([]*models.TicketReserved, 0, len(tickets))
	for _, t := range tickets {
		var date time.Time
		if t.EventDate != nil {
			date = *t.EventDate
		}
		out = append(out, &models.TicketReserved{
			ID:         t.ID,
			EventID:    t.EventID,
			EventTitle: t.EventTitle,
			EventDate:  date,
			Price:      t.Price,
			RowNumber:  t.RowNumber,
			SeatNumber: t.SeatNumber,
		})
	}
	return out
}

func purchasedFromResponse(tickets []types.APIResponseTicket) []*models.TicketPurchased {
	out := make([]*models.TicketPurchased, 0, len(tickets))
	for _, t := range tickets {
		var date time.Time
		if t.EventDate != nil {
			date = *t.EventDate
		}
		out = append(out, &models.TicketPurchased{
			ID:         t.ID,
			EventTitle: t.EventTitle,
			EventDate:  date,
			Price:      t.Price,
			RowNumber:  t.RowNumber,
			SeatNumber: t.SeatNumber,
			InvoiceID:  t.InvoiceID,
		})
	}
	return out
}

func cancelledFromResponse(tickets []types.APIResponseTicket) []*models.TicketCancelled {
	out := make([]*models.TicketCancelled, 0, len(tickets))
	for _, t := range tickets {
		var date time.Time
		if t.EventDate != nil {
			date = *t.EventDate
		}
		out = append(out, &models.TicketCancelled{
			ID:              t.ID,
			EventTitle:      t.EventTitle,
			EventDate:       date,
			Price:           t.Price,
			CreditInvoiceID: t.CreditInvoiceID,
		})
	}
	return out
}
