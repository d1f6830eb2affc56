package devserver

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"ticketline/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Server) ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets", func(ctx *gin.Context) {
			var creates []types.TicketCreate
			if err := ctx.ShouldBindJSON(&creates); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var tickets []Ticket
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				for _, create := range creates {
					var seat Seat
					err := tx.
						Model(&Seat{}).
						Where(&Seat{ID: create.SeatID, EventID: create.EventID}).
						First(&seat).
						Error
					if err != nil {
						return err
					}
					if seat.Status != types.SEAT_FREE {
						return fmt.Errorf("seat %d-%d is no longer available", seat.RowNumber, seat.SeatNumber)
					}
					ticket := Ticket{
						EventID: create.EventID,
						SeatID:  create.SeatID,
						Status:  TICKET_CREATED,
						Price:   seat.Price,
					}
					if err := tx.Create(&ticket).Error; err != nil {
						return err
					}
					tickets = append(tickets, ticket)
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			out := make([]types.APIResponseTicket, 0, len(tickets))
			for _, t := range tickets {
				out = append(out, types.APIResponseTicket{ID: t.ID, EventID: t.EventID, Price: t.Price})
			}
			ctx.JSON(http.StatusCreated, out)
		}).
		PATCH("/reservations", func(ctx *gin.Context) {
			var ids []uint
			if err := ctx.ShouldBindJSON(&ids); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				now := time.Now()
				for _, id := range ids {
					var ticket Ticket
					if err := tx.First(&ticket, id).Error; err != nil {
						return err
					}
					if ticket.Status != TICKET_CREATED {
						return fmt.Errorf("ticket [%d] cannot be reserved", id)
					}
					var seat Seat
					if err := tx.First(&seat, ticket.SeatID).Error; err != nil {
						return err
					}
					if seat.Status != types.SEAT_FREE {
						return fmt.Errorf("seat %d-%d is no longer available", seat.RowNumber, seat.SeatNumber)
					}
					err := tx.
						Model(&Ticket{}).
						Where("id = ?", id).
						Updates(map[string]any{"status": TICKET_RESERVED, "reserved_at": &now}).
						Error
					if err != nil {
						return err
					}
					err = tx.
						Model(&Seat{}).
						Where("id = ?", seat.ID).
						Update("status", types.SEAT_RESERVED).
						Error
					if err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PATCH("/reservations/cancellation", func(ctx *gin.Context) {
			var ids []uint
			if err := ctx.ShouldBindJSON(&ids); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				for _, id := range ids {
					var ticket Ticket
					if err := tx.First(&ticket, id).Error; err != nil {
						return err
					}
					if ticket.Status != TICKET_RESERVED {
						return fmt.Errorf("ticket [%d] is not reserved", id)
					}
					if err := releaseTicket(tx, &ticket); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/tickets", func(ctx *gin.Context) {
			var ids []uint
			if err := ctx.ShouldBindJSON(&ids); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				for _, id := range ids {
					var ticket Ticket
					if err := tx.First(&ticket, id).Error; err != nil {
						return err
					}
					if ticket.Status == TICKET_PURCHASED || ticket.Status == TICKET_CANCELLED {
						return fmt.Errorf("ticket [%d] cannot be deleted", id)
					}
					if err := releaseTicket(tx, &ticket); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PATCH("/tickets/purchasing", func(ctx *gin.Context) {
			var ids []uint
			if err := ctx.ShouldBindJSON(&ids); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var tickets []Ticket
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				invoice := Invoice{Kind: INVOICE_TICKET, Number: uuid.NewString(), IssuedAt: time.Now()}
				if err := tx.Create(&invoice).Error; err != nil {
					return err
				}
				for _, id := range ids {
					ticket, err := purchaseTicket(tx, id, invoice.ID)
					if err != nil {
						return err
					}
					tickets = append(tickets, *ticket)
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, s.ticketResponses(tickets))
		}).
		GET("/tickets/reserved", func(ctx *gin.Context) {
			s.listTickets(ctx, TICKET_RESERVED)
		}).
		GET("/tickets/purchased", func(ctx *gin.Context) {
			s.listTickets(ctx, TICKET_PURCHASED)
		}).
		GET("/tickets/cancelled", func(ctx *gin.Context) {
			s.listTickets(ctx, TICKET_CANCELLED)
		})
	return g
}

// purchaseTicket flips one reserved ticket to purchased under the given
// invoice and marks its seat sold.
func purchaseTicket(tx *gorm.DB, id uint, invoiceID uint) (*Ticket, error) {
	var ticket Ticket
	if err := tx.First(&ticket, id).Error; err != nil {
		return nil, err
	}
	if ticket.Status != TICKET_RESERVED {
		return nil, fmt.Errorf("ticket [%d] is not reserved", id)
	}
	err := tx.
		Model(&Ticket{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": TICKET_PURCHASED, "invoice_id": invoiceID}).
		Error
	if err != nil {
		return nil, err
	}
	err = tx.
		Model(&Seat{}).
		Where("id = ?", ticket.SeatID).
		Update("status", types.SEAT_SOLD).
		Error
	if err != nil {
		return nil, err
	}
	ticket.Status = TICKET_PURCHASED
	ticket.InvoiceID = invoiceID
	return &ticket, nil
}

func (s *Server) listTickets(ctx *gin.Context, status string) {
	var tickets []Ticket
	err := s.DB.
		Model(&Ticket{}).
		Where("tickets.status = ?", status).
		Preload("Event").
		Preload("Seat").
		Find(&tickets).
		Error
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, s.ticketResponses(tickets))
}

func (s *Server) ticketResponses(tickets []Ticket) []types.APIResponseTicket {
	out := make([]types.APIResponseTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.Event.ID == 0 {
			s.DB.First(&t.Event, t.EventID)
		}
		if t.Seat.ID == 0 {
			s.DB.First(&t.Seat, t.SeatID)
		}
		out = append(out, types.APIResponseTicket{
			ID:              t.ID,
			EventID:         t.EventID,
			EventTitle:      t.Event.Title,
			EventDate:       t.Event.DateTime,
			Price:           t.Price,
			RowNumber:       t.Seat.RowNumber,
			SeatNumber:      t.Seat.SeatNumber,
			InvoiceID:       t.InvoiceID,
			CreditInvoiceID: t.CreditInvoiceID,
		})
	}
	return out
}
