package booking

import (
	"context"
	"fmt"
	"log"

	"ticketline/src/lib"
	"ticketline/src/seatmap"
	"ticketline/src/types"
	"ticketline/src/utils"
)

// Destination is where the UI navigates after a pipeline run.
type Destination string

const (
	DEST_NONE       Destination = ""
	DEST_MY_TICKETS Destination = "my-tickets"
	DEST_CART       Destination = "cart"
)

type Step string

const (
	STEP_CREATE      Step = "create tickets"
	STEP_RESERVE     Step = "reserve tickets"
	STEP_ADD_TO_CART Step = "add tickets to cart"
)

// StepError records which step of the chain failed and whether the
// compensating action for earlier steps ran cleanly.
type StepError struct {
	Step            Step
	Err             error
	CompensationErr error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Err.Error())
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline turns a seat selection into created, reserved and optionally
// carted tickets. Steps run strictly in order; a failure aborts the rest of
// the chain and compensates so no created-but-unreserved ticket survives.
type Pipeline struct {
	api      *lib.Client
	notifier utils.Notifier
}

func NewPipeline(api *lib.Client, notifier utils.Notifier) *Pipeline {
	return &Pipeline{api: api, notifier: notifier}
}

// BuildTicketCreates resolves every selected seat back to its backend seat
// id through the current seatmap. Selection entries that no longer resolve
// (stale after a reload) are skipped, not errored.
func BuildTicketCreates(eventID uint, sel *seatmap.Selection, m *seatmap.Seatmap) []types.TicketCreate {
	creates := make([]types.TicketCreate, 0, sel.Len())
	for _, selected := range sel.Seats() {
		seat := m.Lookup(selected.RowNumber, selected.SeatNumber)
		if seat == nil {
			continue
		}
		creates = append(creates, types.TicketCreate{EventID: eventID, SeatID: seat.ID})
	}
	return creates
}

// Reserve runs the reserve-only path: create, reserve, land in "my tickets".
func (p *Pipeline) Reserve(ctx context.Context, eventID uint, sel *seatmap.Selection, m *seatmap.Seatmap) (Destination, error) {
	ids, err := p.createAndReserve(ctx, eventID, sel, m)
	if err != nil || ids == nil {
		return DEST_NONE, err
	}
	p.notifier.Success(fmt.Sprintf("Reserved %d ticket(s)", len(ids)))
	return DEST_MY_TICKETS, nil
}

// AddToCart runs the cart path: create, reserve, add the reserved tickets
// to the cart, land in the cart.
func (p *Pipeline) AddToCart(ctx context.Context, eventID uint, sel *seatmap.Selection, m *seatmap.Seatmap) (Destination, error) {
	ids, err := p.createAndReserve(ctx, eventID, sel, m)
	if err != nil || ids == nil {
		return DEST_NONE, err
	}
	if _, err := p.api.AddTicketsToCart(ctx, ids); err != nil {
		// The reservation survives a failed cart add and stays visible
		// under reserved tickets.
		p.notifier.Error(utils.FormatError(err) + ". The tickets remain reserved under my tickets")
		return DEST_NONE, &StepError{Step: STEP_ADD_TO_CART, Err: err}
	}
	p.notifier.Success(fmt.Sprintf("Added %d ticket(s) to the cart", len(ids)))
	return DEST_CART, nil
}

// createAndReserve is the shared front of both paths. Returns (nil, nil)
// for an empty selection: a no-op without network calls.
func (p *Pipeline) createAndReserve(ctx context.Context, eventID uint, sel *seatmap.Selection, m *seatmap.Seatmap) ([]uint, error) {
	creates := BuildTicketCreates(eventID, sel, m)
	if len(creates) == 0 {
		p.notifier.Warning("No seats selected")
		return nil, nil
	}
	tickets, err := p.api.CreateTickets(ctx, creates)
	if err != nil {
		p.notifier.Error(utils.FormatError(err))
		return nil, &StepError{Step: STEP_CREATE, Err: err}
	}
	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	if err := p.api.ReserveTickets(ctx, ids); err != nil {
		stepErr := &StepError{Step: STEP_RESERVE, Err: err}
		// Release the created tickets so they are not presented as held.
		if cerr := p.api.DeleteTickets(ctx, ids); cerr != nil {
			log.Printf("Could not release %d created ticket(s): %s\n", len(ids), cerr.Error())
			stepErr.CompensationErr = cerr
		}
		p.notifier.Error(utils.FormatError(err))
		return nil, stepErr
	}
	return ids, nil
}
