package cart

import (
	"context"
	"log"

	"ticketline/src/config"
	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/types"
	"ticketline/src/utils"
)

// Reconciler owns the client-side mirror of the server cart. The server is
// the single source of truth: every successful mutation response replaces
// the whole mirror, every failed mutation forces a reload. An optimistic
// local value never outlives the round trip that carried it.
type Reconciler struct {
	api      *lib.Client
	notifier utils.Notifier
	cart     *models.Cart
}

func NewReconciler(api *lib.Client, notifier utils.Notifier) *Reconciler {
	return &Reconciler{api: api, notifier: notifier, cart: &models.Cart{}}
}

func (r *Reconciler) Cart() *models.Cart {
	return r.cart
}

// Reconcile is the only place the mirror is written from server state.
func (r *Reconciler) Reconcile(resp *types.APIResponseCart) {
	r.cart = models.CartFromResponse(resp)
}

func (r *Reconciler) Load(ctx context.Context) error {
	resp, err := r.api.GetCart(ctx)
	if err != nil {
		r.notifier.Error(utils.FormatError(err))
		return err
	}
	r.Reconcile(resp)
	return nil
}

// ClampQuantity bounds a requested quantity to [1, quantity+remaining]. The
// ceiling includes the quantity already in the cart because that stock is
// reserved for this line and part of the user-visible maximum.
func ClampQuantity(item *models.CartItem, requested int) int {
	max := item.MaxQuantity()
	if max < 1 {
		max = 1
	}
	if requested < 1 {
		return 1
	}
	if requested > max {
		return max
	}
	return requested
}

// QuantityOptions returns the selectable quantities for a line. Small
// stocks list every value; beyond the window size only a sliding window
// around the current quantity is offered, re-anchored at the boundaries so
// it always contains the current quantity.
func QuantityOptions(item *models.CartItem) []int {
	max := item.MaxQuantity()
	if max < 1 {
		max = 1
	}
	window := config.QuantityWindowSize
	start, end := 1, max
	if max > window {
		half := window / 2
		start = item.Quantity - half
		end = item.Quantity + half
		if end > max {
			start -= end - max
			end = max
		}
		if start < 1 {
			start = 1
		}
	}
	options := make([]int, 0, end-start+1)
	for q := start; q <= end; q++ {
		options = append(options, q)
	}
	return options
}

// UpdateQuantity applies a bounded quantity edit: set locally, send the
// update, then replace the mirror with the response. On failure the
// optimistic value is discarded by an unconditional reload.
func (r *Reconciler) UpdateQuantity(ctx context.Context, item *models.CartItem, requested int) error {
	quantity := ClampQuantity(item, requested)
	item.Quantity = quantity
	resp, err := r.api.UpdateCartItem(ctx, item.ID, quantity)
	if err != nil {
		r.notifier.Error(utils.FormatError(err))
		r.reload(ctx)
		return err
	}
	r.Reconcile(resp)
	return nil
}

// RemoveItem removes a line. Merchandise and reward lines remove by cart
// item id, ticket lines by the underlying ticket id; the two identifier
// spaces must not be mixed up.
func (r *Reconciler) RemoveItem(ctx context.Context, item *models.CartItem) error {
	var resp *types.APIResponseCart
	var err error
	if item.Type == types.ITEM_TICKET {
		resp, err = r.api.RemoveTicketFromCart(ctx, item.TicketID)
	} else {
		resp, err = r.api.DeleteCartItem(ctx, item.ID)
	}
	if err != nil {
		r.notifier.Error(utils.FormatError(err))
		r.reload(ctx)
		return err
	}
	r.Reconcile(resp)
	return nil
}

// AddMerchandise puts a merchandise or reward line into the cart.
func (r *Reconciler) AddMerchandise(ctx context.Context, merchandiseID uint, itemType types.CartItemType, quantity int) error {
	resp, err := r.api.AddCartItem(ctx, types.AddCartItemRequestBody{
		MerchandiseID: merchandiseID,
		Type:          itemType,
		Quantity:      quantity,
	})
	if err != nil {
		r.notifier.Error(utils.FormatError(err))
		r.reload(ctx)
		return err
	}
	r.Reconcile(resp)
	return nil
}

// AddTickets puts already-reserved tickets into the cart.
func (r *Reconciler) AddTickets(ctx context.Context, ticketIDs []uint) error {
	resp, err := r.api.AddTicketsToCart(ctx, ticketIDs)
	if err != nil {
		r.notifier.Error(utils.FormatError(err))
		r.reload(ctx)
		return err
	}
	r.Reconcile(resp)
	return nil
}

// ProceedToCheckout gates the checkout step: an empty cart is refused with
// a user-visible error and no navigation. Stock and price validation is
// deferred to the checkout step and ultimately the server.
func (r *Reconciler) ProceedToCheckout() bool {
	if r.cart.Empty() {
		r.notifier.Error("Your cart is empty")
		return false
	}
	return true
}

func (r *Reconciler) reload(ctx context.Context) {
	resp, err := r.api.GetCart(ctx)
	if err != nil {
		log.Printf("Could not reload cart: %s\n", err.Error())
		return
	}
	r.Reconcile(resp)
}
