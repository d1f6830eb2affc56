package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"ticketline/src/types"

	"github.com/google/uuid"
)

// APIError is any non-2xx backend response. The raw body is kept so the
// error formatter can extract the backend's message.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Status)
}

// Client talks to the ticketline backend. All mutating state lives server
// side; the client only ships request bodies and decodes responses.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Printf("%s %s: status %d\n", method, path, res.StatusCode)
		return &APIError{Status: res.StatusCode, Body: raw}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) GetEvents(ctx context.Context) ([]types.APIResponseEvent, error) {
	var events []types.APIResponseEvent
	if err := c.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetSeatmap(ctx context.Context, eventID uint) (*types.APIResponseSeatmap, error) {
	var seatmap types.APIResponseSeatmap
	path := fmt.Sprintf("/events/%d/seatmap", eventID)
	if err := c.do(ctx, http.MethodGet, path, nil, &seatmap); err != nil {
		return nil, err
	}
	return &seatmap, nil
}

func (c *Client) CreateTickets(ctx context.Context, creates []types.TicketCreate) ([]types.APIResponseTicket, error) {
	var tickets []types.APIResponseTicket
	if err := c.do(ctx, http.MethodPost, "/tickets", creates, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) ReserveTickets(ctx context.Context, ids []uint) error {
	return c.do(ctx, http.MethodPatch, "/reservations", ids, nil)
}

func (c *Client) PurchaseTickets(ctx context.Context, ids []uint) ([]types.APIResponseTicket, error) {
	var tickets []types.APIResponseTicket
	if err := c.do(ctx, http.MethodPatch, "/tickets/purchasing", ids, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) CancelReservations(ctx context.Context, ids []uint) error {
	return c.do(ctx, http.MethodPatch, "/reservations/cancellation", ids, nil)
}

func (c *Client) DeleteTickets(ctx context.Context, ids []uint) error {
	return c.do(ctx, http.MethodDelete, "/tickets", ids, nil)
}

func (c *Client) GetReservedTickets(ctx context.Context) ([]types.APIResponseTicket, error) {
	var tickets []types.APIResponseTicket
	if err := c.do(ctx, http.MethodGet, "/tickets/reserved", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) GetPurchasedTickets(ctx context.Context) ([]types.APIResponseTicket, error) {
	var tickets []types.APIResponseTicket
	if err := c.do(ctx, http.MethodGet, "/tickets/purchased", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) GetCancelledTickets(ctx context.Context) ([]types.APIResponseTicket, error) {
	var tickets []types.APIResponseTicket
	if err := c.do(ctx, http.MethodGet, "/tickets/cancelled", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) GetCart(ctx context.Context) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, body types.AddCartItemRequestBody) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	if err := c.do(ctx, http.MethodPost, "/cart/items", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, id uint, quantity int) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	path := fmt.Sprintf("/cart/items/%d", id)
	body := types.CartItemUpdateRequestBody{Quantity: quantity}
	if err := c.do(ctx, http.MethodPatch, path, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, id uint) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	path := fmt.Sprintf("/cart/items/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddTicketsToCart(ctx context.Context, ids []uint) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	if err := c.do(ctx, http.MethodPost, "/cart/tickets", ids, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveTicketFromCart(ctx context.Context, ticketID uint) (*types.APIResponseCart, error) {
	var cart types.APIResponseCart
	path := fmt.Sprintf("/cart/tickets/%d", ticketID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) Checkout(ctx context.Context, body types.CheckoutRequestBody) (*types.CheckoutResponse, error) {
	var resp types.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DownloadInvoice(ctx context.Context, id uint) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/invoices/%d/download", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Body: raw}
	}
	return raw, nil
}

func (c *Client) CreateCreditInvoice(ctx context.Context, ticketIDs []uint) (*types.APIResponseCreditInvoice, error) {
	var invoice types.APIResponseCreditInvoice
	if err := c.do(ctx, http.MethodPost, "/invoices/credit", ticketIDs, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (c *Client) GetCreditInvoices(ctx context.Context) ([]types.APIResponseCreditInvoice, error) {
	var invoices []types.APIResponseCreditInvoice
	if err := c.do(ctx, http.MethodGet, "/invoices/credit", nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}
