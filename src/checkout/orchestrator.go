package checkout

import (
	"context"
	"log"

	"ticketline/src/config"
	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/types"
	"ticketline/src/utils"

	"github.com/go-playground/validator/v10"
)

type MerchandiseLine struct {
	MerchandiseID uint
	Name          string
	UnitPrice     float64
	Quantity      int
	TotalPrice    float64
}

type TicketLine struct {
	EventTitle  string
	UnitPrice   float64
	TicketCount int
	TotalPrice  float64
}

// PaymentForm is the client-side submit gate: nothing leaves the machine
// until these pass validation.
type PaymentForm struct {
	PaymentMethod types.PaymentMethod `validate:"required,oneof=CREDIT_CARD PAYPAL"`
	PaymentDetail string              `validate:"required"`
}

// Orchestrator drives the two-phase checkout: Submit stages the current
// cart items as pending and opens the payment/invoice modal, Confirm sends
// the checkout request and dispatches invoice downloads. A failed Confirm
// leaves the modal open and the pending items intact so the user can retry.
type Orchestrator struct {
	api      *lib.Client
	notifier utils.Notifier
	validate *validator.Validate

	cart         *models.Cart
	pendingItems []*models.CartItem
	form         PaymentForm

	ShowInvoiceModal bool
	DownloadInvoices bool
	NavigatedHome    bool
}

func NewOrchestrator(api *lib.Client, notifier utils.Notifier) *Orchestrator {
	return &Orchestrator{
		api:      api,
		notifier: notifier,
		validate: validator.New(),
		cart:     &models.Cart{},
	}
}

// SetCart installs the cart snapshot the summaries are built from.
func (o *Orchestrator) SetCart(cart *models.Cart) {
	o.cart = cart
}

func (o *Orchestrator) PendingItems() []*models.CartItem {
	return o.pendingItems
}

// MerchandiseLines lists one row per merchandise or reward item that has a
// merchandise id and a positive quantity.
func (o *Orchestrator) MerchandiseLines() []MerchandiseLine {
	lines := make([]MerchandiseLine, 0)
	for _, item := range o.cart.Items {
		if item.Type == types.ITEM_TICKET {
			continue
		}
		if item.MerchandiseID == 0 || item.Quantity <= 0 {
			continue
		}
		lines = append(lines, MerchandiseLine{
			MerchandiseID: item.MerchandiseID,
			Name:          item.Name,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			TotalPrice:    item.UnitPrice * float64(item.Quantity),
		})
	}
	return lines
}

// TicketLines groups ticket items by (event title, unit price), so the same
// event at two price points yields two lines. Count and total accumulate
// within each group; lines keep first-occurrence order.
func (o *Orchestrator) TicketLines() []TicketLine {
	type groupKey struct {
		title string
		price float64
	}
	index := make(map[groupKey]int)
	lines := make([]TicketLine, 0)
	for _, item := range o.cart.Items {
		if item.Type != types.ITEM_TICKET {
			continue
		}
		key := groupKey{title: item.EventTitle, price: item.UnitPrice}
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, TicketLine{EventTitle: item.EventTitle, UnitPrice: item.UnitPrice})
		}
		lines[i].TicketCount++
		lines[i].TotalPrice += item.UnitPrice
	}
	return lines
}

// Submit validates the payment form, stages all current cart items as
// pending and opens the invoice-choice modal. No network traffic yet.
func (o *Orchestrator) Submit(form PaymentForm) bool {
	if err := o.validate.Struct(form); err != nil {
		o.notifier.Error("Please check your payment details")
		return false
	}
	o.form = form
	o.pendingItems = append([]*models.CartItem(nil), o.cart.Items...)
	o.ShowInvoiceModal = true
	return true
}

// SubmitPayPal is the PayPal button: identical to Submit except the payment
// method is forced before the same gate runs.
func (o *Orchestrator) SubmitPayPal(form PaymentForm) bool {
	form.PaymentMethod = types.PAYMENT_PAYPAL
	return o.Submit(form)
}

// ConfirmCheckout issues the checkout request for the pending items. With
// nothing pending it is a no-op and the modal state is untouched.
func (o *Orchestrator) ConfirmCheckout(ctx context.Context) error {
	if len(o.pendingItems) == 0 {
		return nil
	}
	resp, err := o.api.Checkout(ctx, types.CheckoutRequestBody{
		PaymentMethod: o.form.PaymentMethod,
		PaymentDetail: o.form.PaymentDetail,
	})
	if err != nil {
		o.notifier.Error(utils.FormatError(err))
		return err
	}
	if o.DownloadInvoices {
		o.downloadInvoices(ctx, resp)
	}
	o.ShowInvoiceModal = false
	o.pendingItems = nil
	o.NavigatedHome = true
	o.notifier.Success("Your purchase was successful")
	return nil
}

// downloadInvoices fetches one PDF per non-zero invoice id. The downloads
// are independent of each other; a failed one is logged and the rest still
// run.
func (o *Orchestrator) downloadInvoices(ctx context.Context, resp *types.CheckoutResponse) {
	dir := config.GetDownloadsDir()
	for _, id := range []uint{resp.TicketInvoiceID, resp.MerchandiseInvoiceID, resp.RewardInvoiceID} {
		if id == 0 {
			continue
		}
		data, err := o.api.DownloadInvoice(ctx, id)
		if err != nil {
			log.Printf("Could not download invoice [%d]: %s\n", id, err.Error())
			continue
		}
		if _, err := utils.SaveInvoicePDF(dir, id, data); err != nil {
			log.Printf("Could not save invoice [%d]: %s\n", id, err.Error())
		}
	}
}
