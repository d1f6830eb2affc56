package seatmap

import (
	"sort"

	"ticketline/src/models"
	"ticketline/src/types"
)

// Selection is the set of seats the user has picked, keyed "{row}-{number}".
// Set membership and the seat's own status field always change together;
// there is no state where they disagree.
type Selection struct {
	seats map[string]*models.Seat
}

func NewSelection() *Selection {
	return &Selection{seats: make(map[string]*models.Seat)}
}

// Toggle flips a seat between FREE and SELECTED. RESERVED and SOLD seats
// belong to the server and toggling them is a no-op. Reports whether the
// seat changed.
func (s *Selection) Toggle(seat *models.Seat) bool {
	switch seat.Status {
	case types.SEAT_FREE:
		seat.Status = types.SEAT_SELECTED
		s.seats[seat.Key()] = seat
		return true
	case types.SEAT_SELECTED:
		seat.Status = types.SEAT_FREE
		delete(s.seats, seat.Key())
		return true
	default:
		return false
	}
}

func (s *Selection) Has(key string) bool {
	_, ok := s.seats[key]
	return ok
}

func (s *Selection) Len() int {
	return len(s.seats)
}

// Seats returns the selected seats ordered by row then seat number.
func (s *Selection) Seats() []*models.Seat {
	seats := make([]*models.Seat, 0, len(s.seats))
	for _, seat := range s.seats {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowNumber != seats[j].RowNumber {
			return seats[i].RowNumber < seats[j].RowNumber
		}
		return seats[i].SeatNumber < seats[j].SeatNumber
	})
	return seats
}

// Clear empties the selection, flipping any still-selected seat back to
// FREE first. Called unconditionally on seatmap reload.
func (s *Selection) Clear() {
	for key, seat := range s.seats {
		if seat.Status == types.SEAT_SELECTED {
			seat.Status = types.SEAT_FREE
		}
		delete(s.seats, key)
	}
}
