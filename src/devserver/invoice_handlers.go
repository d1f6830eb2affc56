package devserver

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"ticketline/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Server) invoiceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/invoices/:id/download", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var invoice Invoice
			if err := s.DB.First(&invoice, uint(atoi)).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.Data(http.StatusOK, "application/pdf", renderInvoicePDF(&invoice))
		}).
		POST("/invoices/credit", func(ctx *gin.Context) {
			var ids []uint
			if err := ctx.ShouldBindJSON(&ids); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var invoice Invoice
			var tickets []Ticket
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				invoice = Invoice{Kind: INVOICE_CREDIT, Number: uuid.NewString(), IssuedAt: time.Now()}
				if err := tx.Create(&invoice).Error; err != nil {
					return err
				}
				for _, id := range ids {
					var ticket Ticket
					if err := tx.First(&ticket, id).Error; err != nil {
						return err
					}
					if ticket.Status != TICKET_PURCHASED {
						return fmt.Errorf("ticket [%d] is not purchased", id)
					}
					err := tx.
						Model(&Ticket{}).
						Where("id = ?", id).
						Updates(map[string]any{"status": TICKET_CANCELLED, "credit_invoice_id": invoice.ID}).
						Error
					if err != nil {
						return err
					}
					err = tx.
						Model(&Seat{}).
						Where("id = ?", ticket.SeatID).
						Update("status", types.SEAT_FREE).
						Error
					if err != nil {
						return err
					}
					ticket.Status = TICKET_CANCELLED
					ticket.CreditInvoiceID = invoice.ID
					tickets = append(tickets, ticket)
				}
				return nil
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			issuedAt := invoice.IssuedAt
			ctx.JSON(http.StatusCreated, types.APIResponseCreditInvoice{
				ID:        invoice.ID,
				IssuedAt:  &issuedAt,
				Positions: s.ticketResponses(tickets),
			})
		}).
		GET("/invoices/credit", func(ctx *gin.Context) {
			var invoices []Invoice
			err := s.DB.
				Model(&Invoice{}).
				Where("kind = ?", INVOICE_CREDIT).
				Find(&invoices).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			out := make([]types.APIResponseCreditInvoice, 0, len(invoices))
			for _, invoice := range invoices {
				var tickets []Ticket
				err := s.DB.
					Model(&Ticket{}).
					Where("credit_invoice_id = ?", invoice.ID).
					Preload("Event").
					Preload("Seat").
					Find(&tickets).
					Error
				if err != nil {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
				issuedAt := invoice.IssuedAt
				out = append(out, types.APIResponseCreditInvoice{
					ID:        invoice.ID,
					IssuedAt:  &issuedAt,
					Positions: s.ticketResponses(tickets),
				})
			}
			ctx.JSON(http.StatusOK, out)
		})
	return g
}

// renderInvoicePDF produces a minimal single-page document. Enough for the
// client's download path; nobody prints these.
func renderInvoicePDF(invoice *Invoice) []byte {
	text := fmt.Sprintf("Invoice %s (%s), issued %s", invoice.Number, invoice.Kind, invoice.IssuedAt.Format("2006-01-02"))
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	body := fmt.Sprintf(`%%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >> endobj
4 0 obj << /Length %d >> stream
%s
endstream endobj
5 0 obj << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> endobj
trailer << /Root 1 0 R >>
%%%%EOF`, len(content), content)
	return []byte(body)
}
