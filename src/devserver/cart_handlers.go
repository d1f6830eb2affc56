package devserver

import (
	"errors"
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

// The development server keeps a single cart; the real backend scopes one
// per authenticated user.
const cartID uint = 1

func (s *Server) cartHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cart", func(ctx *gin.Context) {
			s.respondCart(ctx)
		}).
		POST("/cart/items", func(ctx *gin.Context) {
			var body types.AddCartItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.Type == "" {
				body.Type = types.ITEM_MERCHANDISE
			}
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				var merch Merchandise
				if err := tx.First(&merch, body.MerchandiseID).Error; err != nil {
					return err
				}
				var item CartItem
				err := tx.
					Where(&CartItem{MerchandiseID: body.MerchandiseID, Type: body.Type}).
					First(&item).
					Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					item = CartItem{Type: body.Type, MerchandiseID: body.MerchandiseID}
				} else if err != nil {
					return err
				}
				quantity := clamp(item.Quantity+body.Quantity, 1, merch.Stock)
				item.Quantity = quantity
				return tx.Save(&item).Error
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			s.respondCart(ctx)
		}).
		PATCH("/cart/items/:id", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CartItemUpdateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err = s.DB.Transaction(func(tx *gorm.DB) error {
				var item CartItem
				if err := tx.First(&item, uint(atoi)).Error; err != nil {
					return err
				}
				if item.Type == types.ITEM_TICKET {
					return fmt.Errorf("cart item [%d] has no quantity", item.ID)
				}
				var merch Merchandise
				if err := tx.First(&merch, item.MerchandiseID).Error; err != nil {
					return err
				}
				// The server, not the client, has the final word on stock.
				item.Quantity = clamp(body.Quantity, 1, merch.Stock)
				return tx.Save(&item).Error
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			s.respondCart(ctx)
		}).
		DELETE("/cart/items/:id", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := s.DB.Delete(&CartItem{}, uint(atoi)).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			s.respondCart(ctx)
		}).
		POST("/cart/tickets", func(ctx *gin.Context) {
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
					var count int64
					err := tx.
						Model(&CartItem{}).
						Where("ticket_id = ?", id).
						Count(&count).
						Error
					if err != nil {
						return err
					}
					if count > 0 {
						continue
					}
					item := CartItem{Type: types.ITEM_TICKET, TicketID: id}
					if err := tx.Create(&item).Error; err != nil {
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
			s.respondCart(ctx)
		}).
		DELETE("/cart/tickets/:ticketId", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("ticketId")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err = s.DB.
				Where("ticket_id = ?", uint(atoi)).
				Delete(&CartItem{}).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			s.respondCart(ctx)
		}).
		POST("/cart/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var resp types.CheckoutResponse
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				var items []CartItem
				if err := tx.Find(&items).Error; err != nil {
					return err
				}
				if len(items) == 0 {
					return errors.New("cart is empty")
				}
				return s.checkout(tx, items, &resp)
			})
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, resp)
		})
	return g
}

// checkout turns every cart line into its invoice: tickets are purchased,
// merchandise stock is decremented, reward lines settle in points. One
// invoice per kind actually present in the cart.
func (s *Server) checkout(tx *gorm.DB, items []CartItem, resp *types.CheckoutResponse) error {
	now := time.Now()
	var ticketInvoice, merchInvoice, rewardInvoice *Invoice
	for _, item := range items {
		switch item.Type {
		case types.ITEM_TICKET:
			if ticketInvoice == nil {
				ticketInvoice = &Invoice{Kind: INVOICE_TICKET, Number: uuid.NewString(), IssuedAt: now}
				if err := tx.Create(ticketInvoice).Error; err != nil {
					return err
				}
			}
			if _, err := purchaseTicket(tx, item.TicketID, ticketInvoice.ID); err != nil {
				return err
			}
		case types.ITEM_REWARD:
			if rewardInvoice == nil {
				rewardInvoice = &Invoice{Kind: INVOICE_REWARD, Number: uuid.NewString(), IssuedAt: now}
				if err := tx.Create(rewardInvoice).Error; err != nil {
					return err
				}
			}
			if err := takeStock(tx, item); err != nil {
				return err
			}
		default:
			if merchInvoice == nil {
				merchInvoice = &Invoice{Kind: INVOICE_MERCHANDISE, Number: uuid.NewString(), IssuedAt: now}
				if err := tx.Create(merchInvoice).Error; err != nil {
					return err
				}
			}
			if err := takeStock(tx, item); err != nil {
				return err
			}
		}
	}
	if err := tx.Where("1 = 1").Delete(&CartItem{}).Error; err != nil {
		return err
	}
	if ticketInvoice != nil {
		resp.TicketInvoiceID = ticketInvoice.ID
	}
	if merchInvoice != nil {
		resp.MerchandiseInvoiceID = merchInvoice.ID
	}
	if rewardInvoice != nil {
		resp.RewardInvoiceID = rewardInvoice.ID
	}
	return nil
}

func takeStock(tx *gorm.DB, item CartItem) error {
	var merch Merchandise
	if err := tx.First(&merch, item.MerchandiseID).Error; err != nil {
		return err
	}
	if merch.Stock < item.Quantity {
		return fmt.Errorf("not enough stock for %s", merch.Name)
	}
	return tx.
		Model(&Merchandise{}).
		Where("id = ?", merch.ID).
		Update("stock", merch.Stock-item.Quantity).
		Error
}

func (s *Server) respondCart(ctx *gin.Context) {
	var items []CartItem
	if err := s.DB.Find(&items).Error; err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	out := types.APIResponseCart{ID: cartID, Items: make([]types.APIResponseCartItem, 0, len(items))}
	for _, item := range items {
		if item.Type == types.ITEM_TICKET {
			var ticket Ticket
			err := s.DB.
				Preload("Event").
				Preload("Seat").
				First(&ticket, item.TicketID).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			out.Items = append(out.Items, types.APIResponseCartItem{
				ID:         item.ID,
				Type:       item.Type,
				UnitPrice:  ticket.Price,
				TicketID:   ticket.ID,
				EventID:    ticket.EventID,
				EventTitle: ticket.Event.Title,
				RowNumber:  ticket.Seat.RowNumber,
				SeatNumber: ticket.Seat.SeatNumber,
			})
			continue
		}
		var merch Merchandise
		if err := s.DB.First(&merch, item.MerchandiseID).Error; err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		price := merch.Price
		if item.Type == types.ITEM_REWARD {
			price = 0
		}
		out.Items = append(out.Items, types.APIResponseCartItem{
			ID:                item.ID,
			Type:              item.Type,
			MerchandiseID:     merch.ID,
			Name:              merch.Name,
			UnitPrice:         price,
			Quantity:          item.Quantity,
			RemainingQuantity: merch.Stock - item.Quantity,
		})
	}
	ctx.JSON(http.StatusOK, out)
}

func clamp(v int, lo int, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
