package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/types"
	"ticketline/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(quantity int, remaining int) *models.CartItem {
	return &models.CartItem{
		ID:                7,
		Type:              types.ITEM_MERCHANDISE,
		MerchandiseID:     1,
		Name:              "Poster",
		UnitPrice:         9.90,
		Quantity:          quantity,
		RemainingQuantity: remaining,
	}
}

func TestClampQuantity(t *testing.T) {
	item := testItem(5, 10)
	assert.Equal(t, 1, ClampQuantity(item, 0))
	assert.Equal(t, 1, ClampQuantity(item, -3))
	assert.Equal(t, 15, ClampQuantity(item, 999))
	assert.Equal(t, 15, ClampQuantity(item, 15))
	assert.Equal(t, 7, ClampQuantity(item, 7))
	// Idempotent: clamping a clamped value changes nothing.
	assert.Equal(t, ClampQuantity(item, 999), ClampQuantity(item, ClampQuantity(item, 999)))
}

func TestQuantityOptionsSmallStock(t *testing.T) {
	options := QuantityOptions(testItem(5, 10))
	require.Len(t, options, 15)
	assert.Equal(t, 1, options[0])
	assert.Equal(t, 15, options[len(options)-1])
}

func TestQuantityOptionsWindow(t *testing.T) {
	options := QuantityOptions(testItem(500, 500))
	require.Len(t, options, 101)
	assert.Equal(t, 450, options[0])
	assert.Equal(t, 550, options[len(options)-1])
	assert.Contains(t, options, 500)
}

func TestQuantityOptionsNearMax(t *testing.T) {
	options := QuantityOptions(testItem(995, 5))
	require.Len(t, options, 101)
	assert.Equal(t, 900, options[0])
	assert.Equal(t, 1000, options[len(options)-1])
	assert.Contains(t, options, 995)
}

func TestQuantityOptionsNearFloor(t *testing.T) {
	options := QuantityOptions(testItem(3, 5000))
	assert.Equal(t, 1, options[0])
	assert.Equal(t, 53, options[len(options)-1])
	assert.LessOrEqual(t, len(options), 101)
	assert.Contains(t, options, 3)
}

func cartJSON(quantity int, remaining int) types.APIResponseCart {
	return types.APIResponseCart{
		ID: 1,
		Items: []types.APIResponseCartItem{{
			ID:                7,
			Type:              types.ITEM_MERCHANDISE,
			MerchandiseID:     1,
			Name:              "Poster",
			UnitPrice:         9.90,
			Quantity:          quantity,
			RemainingQuantity: remaining,
		}},
	}
}

func TestUpdateQuantityReplacesFromResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.PATCH("/cart/items/:id", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, cartJSON(9, 2))
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	notifier := &utils.LogNotifier{}
	reconciler := NewReconciler(lib.NewClient(server.URL, ""), notifier)
	item := testItem(5, 10)
	reconciler.Reconcile(&types.APIResponseCart{ID: 1, Items: []types.APIResponseCartItem{}})

	require.NoError(t, reconciler.UpdateQuantity(context.Background(), item, 9))
	require.Len(t, reconciler.Cart().Items, 1)
	assert.Equal(t, 9, reconciler.Cart().Items[0].Quantity)
	assert.Equal(t, 2, reconciler.Cart().Items[0].RemainingQuantity)
	assert.Empty(t, notifier.Errors)
}

func TestUpdateQuantityFailureReloads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.PATCH("/cart/items/:id", func(ctx *gin.Context) {
		ctx.JSON(http.StatusConflict, gin.H{"error": "not enough stock"})
	})
	engine.GET("/cart", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, cartJSON(4, 0))
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	notifier := &utils.LogNotifier{}
	reconciler := NewReconciler(lib.NewClient(server.URL, ""), notifier)
	item := testItem(5, 10)

	err := reconciler.UpdateQuantity(context.Background(), item, 12)
	require.Error(t, err)
	// The optimistic value is gone; the mirror is server truth again.
	require.Len(t, reconciler.Cart().Items, 1)
	assert.Equal(t, 4, reconciler.Cart().Items[0].Quantity)
	require.Len(t, notifier.Errors, 1)
	assert.Contains(t, notifier.Errors[0], "not enough stock")
}

func TestRemoveItemIdentifierSpaces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var paths []string
	engine := gin.New()
	engine.DELETE("/cart/items/:id", func(ctx *gin.Context) {
		paths = append(paths, ctx.Request.URL.Path)
		ctx.JSON(http.StatusOK, types.APIResponseCart{ID: 1})
	})
	engine.DELETE("/cart/tickets/:ticketId", func(ctx *gin.Context) {
		paths = append(paths, ctx.Request.URL.Path)
		ctx.JSON(http.StatusOK, types.APIResponseCart{ID: 1})
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	reconciler := NewReconciler(lib.NewClient(server.URL, ""), &utils.LogNotifier{})

	merch := testItem(1, 1)
	require.NoError(t, reconciler.RemoveItem(context.Background(), merch))

	ticket := &models.CartItem{ID: 8, Type: types.ITEM_TICKET, TicketID: 33}
	require.NoError(t, reconciler.RemoveItem(context.Background(), ticket))

	// Merchandise removes by cart item id, tickets by ticket id.
	require.Equal(t, []string{"/cart/items/7", "/cart/tickets/33"}, paths)
}

func TestProceedToCheckoutGate(t *testing.T) {
	notifier := &utils.LogNotifier{}
	reconciler := NewReconciler(lib.NewClient("http://unused", ""), notifier)

	assert.False(t, reconciler.ProceedToCheckout())
	require.Len(t, notifier.Errors, 1)

	reconciler.Reconcile(&cartWithOneItem)
	assert.True(t, reconciler.ProceedToCheckout())
	assert.Len(t, notifier.Errors, 1)
}

var cartWithOneItem = types.APIResponseCart{
	ID:    1,
	Items: []types.APIResponseCartItem{{ID: 7, Type: types.ITEM_MERCHANDISE, MerchandiseID: 1, Quantity: 1}},
}
