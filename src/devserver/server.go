package devserver

import (
	"log"
	"time"

	"ticketline/src/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Server is the development stub of the ticketline backend. It implements
// the same HTTP contract the real backend exposes, backed by sqlite, so the
// client and its tests can run without any infrastructure.
type Server struct {
	DB     *gorm.DB
	Engine *gin.Engine

	scheduler gocron.Scheduler
}

func New(dsn string) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Event{}, &Seat{}, &Ticket{}, &Merchandise{}, &CartItem{}, &Invoice{}); err != nil {
		return nil, err
	}

	s := &Server{DB: db}
	engine := gin.Default()
	api := engine.Group("/api/v1")
	s.eventHandlers(api)
	s.ticketHandlers(api)
	s.cartHandlers(api)
	s.invoiceHandlers(api)
	s.Engine = engine
	return s, nil
}

// Run starts the scheduler and serves until the process ends. Used by
// `ticketline serve`; tests mount s.Engine in an httptest server instead.
func (s *Server) Run(addr string) error {
	if err := s.StartScheduler(); err != nil {
		return err
	}
	s.Engine.Use(cors.Default())
	log.Printf("devserver listening on %s\n", addr)
	return s.Engine.Run(addr)
}

// StartScheduler launches the reservation-expiry sweep. Reservations lapse
// 30 minutes before event start; the sweep releases the seats of any hold
// past that point.
func (s *Server) StartScheduler() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			if err := s.ReleaseExpiredReservations(time.Now()); err != nil {
				log.Printf("Error releasing expired reservations: %s\n", err.Error())
			}
		}),
	)
	if err != nil {
		return err
	}
	s.scheduler = scheduler
	scheduler.Start()
	return nil
}

func (s *Server) Shutdown() {
	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(); err != nil {
			log.Printf("Error shutting down scheduler: %s\n", err.Error())
		}
	}
}

// ReleaseExpiredReservations frees every seat whose reservation hold has
// lapsed and drops the ticket plus any cart line holding it.
func (s *Server) ReleaseExpiredReservations(now time.Time) error {
	cutoff := now.Add(models.ReservationLeeway)
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var tickets []Ticket
		err := tx.
			Model(&Ticket{}).
			Joins("Event").
			Where("tickets.status = ?", TICKET_RESERVED).
			Where("Event.date_time <= ?", cutoff).
			Find(&tickets).
			Error
		if err != nil {
			return err
		}
		for _, ticket := range tickets {
			if err := releaseTicket(tx, &ticket); err != nil {
				return err
			}
			log.Printf("Released expired reservation for ticket [%d]\n", ticket.ID)
		}
		return nil
	})
}

// releaseTicket frees the ticket's seat and removes the ticket and its cart
// line. Shared by reservation cancellation, ticket deletion and the sweep.
func releaseTicket(tx *gorm.DB, ticket *Ticket) error {
	if ticket.Status == TICKET_RESERVED {
		err := tx.
			Model(&Seat{}).
			Where("id = ?", ticket.SeatID).
			Update("status", "FREE").
			Error
		if err != nil {
			return err
		}
	}
	if err := tx.Where("ticket_id = ?", ticket.ID).Delete(&CartItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Ticket{}, ticket.ID).Error
}
