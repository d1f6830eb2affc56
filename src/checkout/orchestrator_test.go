package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/types"
	"ticketline/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotCart() *models.Cart {
	return &models.Cart{
		ID: 1,
		Items: []*models.CartItem{
			{ID: 1, Type: types.ITEM_MERCHANDISE, MerchandiseID: 9, Name: "Poster", UnitPrice: 10, Quantity: 2, RemainingQuantity: 5},
			{ID: 2, Type: types.ITEM_TICKET, TicketID: 100, EventTitle: "Arena Spektakel", UnitPrice: 50},
		},
	}
}

func TestMerchandiseAndTicketLines(t *testing.T) {
	o := NewOrchestrator(lib.NewClient("http://unused", ""), &utils.LogNotifier{})
	o.SetCart(snapshotCart())

	merch := o.MerchandiseLines()
	require.Len(t, merch, 1)
	assert.Equal(t, 2, merch[0].Quantity)
	assert.Equal(t, 10.0, merch[0].UnitPrice)
	assert.Equal(t, 20.0, merch[0].TotalPrice)

	tickets := o.TicketLines()
	require.Len(t, tickets, 1)
	assert.Equal(t, 1, tickets[0].TicketCount)
	assert.Equal(t, 50.0, tickets[0].TotalPrice)
}

func TestMerchandiseLinesSkipEmpty(t *testing.T) {
	o := NewOrchestrator(lib.NewClient("http://unused", ""), &utils.LogNotifier{})
	o.SetCart(&models.Cart{Items: []*models.CartItem{
		{ID: 1, Type: types.ITEM_MERCHANDISE, MerchandiseID: 0, Quantity: 2},
		{ID: 2, Type: types.ITEM_REWARD, MerchandiseID: 9, Quantity: 0},
	}})
	assert.Empty(t, o.MerchandiseLines())
}

func TestTicketLinesGroupByEventAndPrice(t *testing.T) {
	o := NewOrchestrator(lib.NewClient("http://unused", ""), &utils.LogNotifier{})
	o.SetCart(&models.Cart{Items: []*models.CartItem{
		{ID: 1, Type: types.ITEM_TICKET, EventTitle: "A", UnitPrice: 50},
		{ID: 2, Type: types.ITEM_TICKET, EventTitle: "A", UnitPrice: 50},
		{ID: 3, Type: types.ITEM_TICKET, EventTitle: "A", UnitPrice: 80},
		{ID: 4, Type: types.ITEM_TICKET, EventTitle: "B", UnitPrice: 50},
	}})

	lines := o.TicketLines()
	require.Len(t, lines, 3)
	assert.Equal(t, TicketLine{EventTitle: "A", UnitPrice: 50, TicketCount: 2, TotalPrice: 100}, lines[0])
	assert.Equal(t, TicketLine{EventTitle: "A", UnitPrice: 80, TicketCount: 1, TotalPrice: 80}, lines[1])
	assert.Equal(t, TicketLine{EventTitle: "B", UnitPrice: 50, TicketCount: 1, TotalPrice: 50}, lines[2])

	total := 0
	for _, line := range lines {
		total += line.TicketCount
	}
	assert.Equal(t, 4, total)
}

func TestSubmitGate(t *testing.T) {
	notifier := &utils.LogNotifier{}
	o := NewOrchestrator(lib.NewClient("http://unused", ""), notifier)
	o.SetCart(snapshotCart())

	ok := o.Submit(PaymentForm{PaymentMethod: types.PAYMENT_CREDIT_CARD})
	assert.False(t, ok)
	assert.False(t, o.ShowInvoiceModal)
	assert.Empty(t, o.PendingItems())
	assert.Len(t, notifier.Errors, 1)

	ok = o.Submit(PaymentForm{PaymentMethod: types.PAYMENT_CREDIT_CARD, PaymentDetail: "4242 4242 4242 4242"})
	assert.True(t, ok)
	assert.True(t, o.ShowInvoiceModal)
	assert.Len(t, o.PendingItems(), 2)
}

func TestSubmitPayPalForcesMethod(t *testing.T) {
	o := NewOrchestrator(lib.NewClient("http://unused", ""), &utils.LogNotifier{})
	o.SetCart(snapshotCart())

	ok := o.SubmitPayPal(PaymentForm{PaymentMethod: types.PAYMENT_CREDIT_CARD, PaymentDetail: "buyer@example.com"})
	assert.True(t, ok)
	assert.Equal(t, types.PAYMENT_PAYPAL, o.form.PaymentMethod)
}

func TestConfirmCheckoutNothingPending(t *testing.T) {
	calls := 0
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/cart/checkout", func(ctx *gin.Context) {
		calls++
		ctx.JSON(http.StatusOK, types.CheckoutResponse{})
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	o := NewOrchestrator(lib.NewClient(server.URL, ""), &utils.LogNotifier{})
	require.NoError(t, o.ConfirmCheckout(context.Background()))
	assert.Equal(t, 0, calls)
	assert.False(t, o.ShowInvoiceModal)
}

func TestConfirmCheckoutFailureKeepsPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/cart/checkout", func(ctx *gin.Context) {
		ctx.JSON(http.StatusConflict, gin.H{"error": "prices changed"})
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	notifier := &utils.LogNotifier{}
	o := NewOrchestrator(lib.NewClient(server.URL, ""), notifier)
	o.SetCart(snapshotCart())
	require.True(t, o.Submit(PaymentForm{PaymentMethod: types.PAYMENT_CREDIT_CARD, PaymentDetail: "4242"}))

	err := o.ConfirmCheckout(context.Background())
	require.Error(t, err)
	// The user can retry without re-entering anything.
	assert.True(t, o.ShowInvoiceModal)
	assert.Len(t, o.PendingItems(), 2)
	assert.False(t, o.NavigatedHome)
	require.Len(t, notifier.Errors, 1)
	assert.Contains(t, notifier.Errors[0], "prices changed")
}

func TestConfirmCheckoutSuccessDownloadsInvoices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/cart/checkout", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, types.CheckoutResponse{TicketInvoiceID: 11, MerchandiseInvoiceID: 12})
	})
	downloads := 0
	engine.GET("/invoices/:id/download", func(ctx *gin.Context) {
		downloads++
		ctx.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4"))
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	dir := t.TempDir()
	t.Setenv("TICKETLINE_DOWNLOADS_DIR", dir)

	notifier := &utils.LogNotifier{}
	o := NewOrchestrator(lib.NewClient(server.URL, ""), notifier)
	o.SetCart(snapshotCart())
	o.DownloadInvoices = true
	require.True(t, o.Submit(PaymentForm{PaymentMethod: types.PAYMENT_CREDIT_CARD, PaymentDetail: "4242"}))

	require.NoError(t, o.ConfirmCheckout(context.Background()))
	assert.False(t, o.ShowInvoiceModal)
	assert.Empty(t, o.PendingItems())
	assert.True(t, o.NavigatedHome)
	assert.Len(t, notifier.Successes, 1)

	// One PDF per non-zero invoice id; the reward id was zero.
	assert.Equal(t, 2, downloads)
	for _, id := range []int{11, 12} {
		_, err := os.Stat(path.Join(dir, fmt.Sprintf("invoice-%d.pdf", id)))
		assert.NoError(t, err)
	}
}
