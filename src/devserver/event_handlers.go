package devserver

import (
	"log"
	"net/http"
	"strconv"

	"ticketline/src/types"

	"github.com/gin-gonic/gin"
)

func (s *Server) eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var events []Event
			if err := s.DB.Find(&events).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			out := make([]types.APIResponseEvent, 0, len(events))
			for _, e := range events {
				out = append(out, types.APIResponseEvent{
					ID:       e.ID,
					Title:    e.Title,
					Slug:     e.Slug,
					Location: e.Location,
					DateTime: e.DateTime,
				})
			}
			ctx.JSON(http.StatusOK, out)
		}).
		GET("/events/:id/seatmap", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			eventId := uint(atoi)
			var event Event
			err = s.DB.
				Model(&Event{}).
				Where("id = ?", eventId).
				Preload("Seats").
				First(&event).
				Error
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			seats := make([]types.APIResponseSeat, 0, len(event.Seats))
			for _, seat := range event.Seats {
				seats = append(seats, types.APIResponseSeat{
					ID:            seat.ID,
					RowNumber:     seat.RowNumber,
					SeatNumber:    seat.SeatNumber,
					Status:        seat.Status,
					PriceCategory: seat.PriceCategory,
				})
			}
			ctx.JSON(http.StatusOK, types.APIResponseSeatmap{
				StagePosition:  event.StagePosition,
				StageLabel:     event.StageLabel,
				StageRowStart:  event.StageRowStart,
				StageRowEnd:    event.StageRowEnd,
				StageColStart:  event.StageColStart,
				StageColEnd:    event.StageColEnd,
				StageWidthPx:   event.StageWidthPx,
				StageHeightPx:  event.StageHeightPx,
				RunwayWidthPx:  event.RunwayWidthPx,
				RunwayLengthPx: event.RunwayLengthPx,
				RunwayOffsetPx: event.RunwayOffsetPx,
				Seats:          seats,
			})
		})
	return g
}
