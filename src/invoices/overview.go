package invoices

import (
	"context"
	"fmt"
	"log"
	"sort"

	"ticketline/src/config"
	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/utils"
)

// Overview backs the purchase-history views: the three ticket lifecycle
// lists plus the bulk actions on a selection of them. Every bulk action
// refuses an empty selection with a user-visible warning and never
// partially applies.
type Overview struct {
	api      *lib.Client
	notifier utils.Notifier
}

func NewOverview(api *lib.Client, notifier utils.Notifier) *Overview {
	return &Overview{api: api, notifier: notifier}
}

func (o *Overview) Reserved(ctx context.Context) ([]*models.TicketReserved, error) {
	tickets, err := o.api.GetReservedTickets(ctx)
	if err != nil {
		o.notifier.Error(utils.FormatError(err))
		return nil, err
	}
	return reservedFromResponse(tickets), nil
}

func (o *Overview) Purchased(ctx context.Context) ([]*models.TicketPurchased, error) {
	tickets, err := o.api.GetPurchasedTickets(ctx)
	if err != nil {
		o.notifier.Error(utils.FormatError(err))
		return nil, err
	}
	return purchasedFromResponse(tickets), nil
}

func (o *Overview) Cancelled(ctx context.Context) ([]*models.TicketCancelled, error) {
	tickets, err := o.api.GetCancelledTickets(ctx)
	if err != nil {
		o.notifier.Error(utils.FormatError(err))
		return nil, err
	}
	return cancelledFromResponse(tickets), nil
}

// BulkAddToCart moves selected reservations into the cart.
func (o *Overview) BulkAddToCart(ctx context.Context, ticketIDs []uint) error {
	if len(ticketIDs) == 0 {
		o.notifier.Warning("No tickets selected")
		return nil
	}
	if _, err := o.api.AddTicketsToCart(ctx, ticketIDs); err != nil {
		o.notifier.Error(utils.FormatError(err))
		return err
	}
	o.notifier.Success(fmt.Sprintf("Added %d ticket(s) to the cart", len(ticketIDs)))
	return nil
}

// BulkCancelReservations releases selected reserved tickets.
func (o *Overview) BulkCancelReservations(ctx context.Context, ticketIDs []uint) error {
	if len(ticketIDs) == 0 {
		o.notifier.Warning("No tickets selected")
		return nil
	}
	if err := o.api.CancelReservations(ctx, ticketIDs); err != nil {
		o.notifier.Error(utils.FormatError(err))
		return err
	}
	o.notifier.Success(fmt.Sprintf("Cancelled %d reservation(s)", len(ticketIDs)))
	return nil
}

// BulkPurchaseReserved buys selected reserved tickets outright.
func (o *Overview) BulkPurchaseReserved(ctx context.Context, ticketIDs []uint) error {
	if len(ticketIDs) == 0 {
		o.notifier.Warning("No tickets selected")
		return nil
	}
	if _, err := o.api.PurchaseTickets(ctx, ticketIDs); err != nil {
		o.notifier.Error(utils.FormatError(err))
		return err
	}
	o.notifier.Success(fmt.Sprintf("Purchased %d ticket(s)", len(ticketIDs)))
	return nil
}

// BulkCancelPurchased cancels selected purchased tickets. One credit
// invoice request is issued per distinct invoice; aggregate success is
// reported only when the whole batch went through.
func (o *Overview) BulkCancelPurchased(ctx context.Context, selected []*models.TicketPurchased) error {
	if len(selected) == 0 {
		o.notifier.Warning("No tickets selected")
		return nil
	}
	groups := GroupTicketsByInvoice(selected)
	invoiceIDs := make([]uint, 0, len(groups))
	for id := range groups {
		invoiceIDs = append(invoiceIDs, id)
	}
	sort.Slice(invoiceIDs, func(i, j int) bool { return invoiceIDs[i] < invoiceIDs[j] })
	for _, invoiceID := range invoiceIDs {
		if _, err := o.api.CreateCreditInvoice(ctx, groups[invoiceID]); err != nil {
			o.notifier.Error(utils.FormatError(err))
			return err
		}
	}
	o.notifier.Success(fmt.Sprintf("Cancelled %d ticket(s) across %d invoice(s)", len(selected), len(invoiceIDs)))
	return nil
}

// DownloadSelectedInvoices downloads one PDF per distinct invoice id among
// the selected tickets. Downloads fire independently; one failure does not
// stop the rest.
func (o *Overview) DownloadSelectedInvoices(ctx context.Context, selected []*models.TicketPurchased) []string {
	if len(selected) == 0 {
		o.notifier.Warning("No tickets selected")
		return nil
	}
	seen := make(map[uint]bool)
	saved := make([]string, 0)
	dir := config.GetDownloadsDir()
	for _, ticket := range selected {
		if ticket.InvoiceID == 0 || seen[ticket.InvoiceID] {
			continue
		}
		seen[ticket.InvoiceID] = true
		data, err := o.api.DownloadInvoice(ctx, ticket.InvoiceID)
		if err != nil {
			log.Printf("Could not download invoice [%d]: %s\n", ticket.InvoiceID, err.Error())
			continue
		}
		filepath, err := utils.SaveInvoicePDF(dir, ticket.InvoiceID, data)
		if err != nil {
			log.Printf("Could not save invoice [%d]: %s\n", ticket.InvoiceID, err.Error())
			continue
		}
		saved = append(saved, filepath)
	}
	return saved
}
