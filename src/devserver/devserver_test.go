package devserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ticketline/src/lib"
	"ticketline/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *lib.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	// One shared in-memory database per test, named after it.
	s, err := New(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, s.Seed())
	server := httptest.NewServer(s.Engine)
	t.Cleanup(server.Close)
	return s, lib.NewClient(server.URL+"/api/v1", "")
}

func freeSeats(t *testing.T, seatmap *types.APIResponseSeatmap, n int) []types.APIResponseSeat {
	t.Helper()
	out := make([]types.APIResponseSeat, 0, n)
	for _, seat := range seatmap.Seats {
		if seat.Status == types.SEAT_FREE {
			out = append(out, seat)
			if len(out) == n {
				return out
			}
		}
	}
	t.Fatalf("wanted %d free seats, found %d", n, len(out))
	return nil
}

func TestSeedCatalog(t *testing.T) {
	_, client := newTestServer(t)

	events, err := client.GetEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Kabarett der Namenlosen", events[0].Title)
	assert.Equal(t, "kabarett-der-namenlosen", events[0].Slug)

	hall, err := client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	assert.Equal(t, types.STAGE_TOP, hall.StagePosition)
	// Three rows of 10, three of 8, minus the gap at 4-3.
	assert.Len(t, hall.Seats, 53)

	arena, err := client.GetSeatmap(context.Background(), events[1].ID)
	require.NoError(t, err)
	assert.Equal(t, types.STAGE_CENTER, arena.StagePosition)
	assert.Equal(t, 5, arena.StageRowStart)
	assert.Equal(t, 15, arena.StageColEnd)
	for _, seat := range arena.Seats {
		inStage := seat.RowNumber >= arena.StageRowStart && seat.RowNumber <= arena.StageRowEnd &&
			seat.SeatNumber >= arena.StageColStart && seat.SeatNumber <= arena.StageColEnd
		assert.False(t, inStage, "seat %d-%d overlaps the stage block", seat.RowNumber, seat.SeatNumber)
	}
}

func TestTicketLifecycle(t *testing.T) {
	s, client := newTestServer(t)

	events, err := client.GetEvents(context.Background())
	require.NoError(t, err)
	seatmap, err := client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	seats := freeSeats(t, seatmap, 2)

	tickets, err := client.CreateTickets(context.Background(), []types.TicketCreate{
		{EventID: events[0].ID, SeatID: seats[0].ID},
		{EventID: events[0].ID, SeatID: seats[1].ID},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	ids := []uint{tickets[0].ID, tickets[1].ID}
	require.NoError(t, client.ReserveTickets(context.Background(), ids))

	reserved, err := client.GetReservedTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, reserved, 2)
	assert.Equal(t, "Kabarett der Namenlosen", reserved[0].EventTitle)

	seatmap, err = client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	statuses := make(map[uint]types.SeatStatus)
	for _, seat := range seatmap.Seats {
		statuses[seat.ID] = seat.Status
	}
	assert.Equal(t, types.SEAT_RESERVED, statuses[seats[0].ID])
	assert.Equal(t, types.SEAT_RESERVED, statuses[seats[1].ID])

	cart, err := client.AddTicketsToCart(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, types.ITEM_TICKET, cart.Items[0].Type)
	assert.Equal(t, seats[0].RowNumber, cart.Items[0].RowNumber)

	var shirt Merchandise
	require.NoError(t, s.DB.Where("name = ?", "Tour Shirt").First(&shirt).Error)
	cart, err = client.AddCartItem(context.Background(), types.AddCartItemRequestBody{MerchandiseID: shirt.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 3)

	resp, err := client.Checkout(context.Background(), types.CheckoutRequestBody{
		PaymentMethod: types.PAYMENT_CREDIT_CARD,
		PaymentDetail: "4242 4242 4242 4242",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.TicketInvoiceID)
	assert.NotZero(t, resp.MerchandiseInvoiceID)
	assert.Zero(t, resp.RewardInvoiceID)

	cart, err = client.GetCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	purchased, err := client.GetPurchasedTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, purchased, 2)
	assert.Equal(t, resp.TicketInvoiceID, purchased[0].InvoiceID)

	pdf, err := client.DownloadInvoice(context.Background(), resp.TicketInvoiceID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	// Cancelling the purchase issues a credit invoice and frees the seats.
	invoice, err := client.CreateCreditInvoice(context.Background(), []uint{purchased[0].ID, purchased[1].ID})
	require.NoError(t, err)
	assert.Len(t, invoice.Positions, 2)

	cancelled, err := client.GetCancelledTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	assert.Equal(t, invoice.ID, cancelled[0].CreditInvoiceID)

	seatmap, err = client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	for _, seat := range seatmap.Seats {
		if seat.ID == seats[0].ID || seat.ID == seats[1].ID {
			assert.Equal(t, types.SEAT_FREE, seat.Status)
		}
	}

	credits, err := client.GetCreditInvoices(context.Background())
	require.NoError(t, err)
	assert.Len(t, credits, 1)
}

func TestSeatConflict(t *testing.T) {
	_, client := newTestServer(t)

	events, err := client.GetEvents(context.Background())
	require.NoError(t, err)
	seatmap, err := client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	seat := freeSeats(t, seatmap, 1)[0]

	creates := []types.TicketCreate{{EventID: events[0].ID, SeatID: seat.ID}}
	tickets, err := client.CreateTickets(context.Background(), creates)
	require.NoError(t, err)
	require.NoError(t, client.ReserveTickets(context.Background(), []uint{tickets[0].ID}))

	_, err = client.CreateTickets(context.Background(), creates)
	require.Error(t, err)
	var apiErr *lib.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestCartClampsToStock(t *testing.T) {
	s, client := newTestServer(t)

	var vinyl Merchandise
	require.NoError(t, s.DB.Where("name = ?", "Vinyl").First(&vinyl).Error)
	require.Equal(t, 5, vinyl.Stock)

	cart, err := client.AddCartItem(context.Background(), types.AddCartItemRequestBody{MerchandiseID: vinyl.ID, Quantity: 10})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 0, cart.Items[0].RemainingQuantity)

	cart, err = client.UpdateCartItem(context.Background(), cart.Items[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.Items[0].RemainingQuantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.Checkout(context.Background(), types.CheckoutRequestBody{
		PaymentMethod: types.PAYMENT_CREDIT_CARD,
		PaymentDetail: "4242",
	})
	require.Error(t, err)
	var apiErr *lib.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestReleaseExpiredReservations(t *testing.T) {
	s, client := newTestServer(t)

	events, err := client.GetEvents(context.Background())
	require.NoError(t, err)
	seatmap, err := client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	seat := freeSeats(t, seatmap, 1)[0]

	tickets, err := client.CreateTickets(context.Background(), []types.TicketCreate{{EventID: events[0].ID, SeatID: seat.ID}})
	require.NoError(t, err)
	require.NoError(t, client.ReserveTickets(context.Background(), []uint{tickets[0].ID}))
	_, err = client.AddTicketsToCart(context.Background(), []uint{tickets[0].ID})
	require.NoError(t, err)

	// The event is weeks away, so a sweep at the current time keeps the hold.
	require.NoError(t, s.ReleaseExpiredReservations(time.Now()))
	reserved, err := client.GetReservedTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, reserved, 1)

	// A sweep inside the last 30 minutes before the event releases it.
	require.NoError(t, s.ReleaseExpiredReservations(events[0].DateTime.Add(-10*time.Minute)))

	reserved, err = client.GetReservedTickets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reserved)

	cart, err := client.GetCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	seatmap, err = client.GetSeatmap(context.Background(), events[0].ID)
	require.NoError(t, err)
	for _, got := range seatmap.Seats {
		if got.ID == seat.ID {
			assert.Equal(t, types.SEAT_FREE, got.Status)
		}
	}
}
