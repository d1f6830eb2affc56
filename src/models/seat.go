package models

import (
	"fmt"

	"ticketline/src/types"
)

// Seat is the client-side view of one seat in a loaded seatmap. Identity
// within a seatmap is (RowNumber, SeatNumber); ID is the backend seat
// identifier used when tickets are created for it.
type Seat struct {
	ID            uint
	RowNumber     int
	SeatNumber    int
	Status        types.SeatStatus
	PriceCategory types.PriceCategory
}

// Key returns the selection key for the seat, "{row}-{number}".
func (s *Seat) Key() string {
	return SeatKey(s.RowNumber, s.SeatNumber)
}

func SeatKey(row int, number int) string {
	return fmt.Sprintf("%d-%d", row, number)
}

// StageBlock is the rectangular performance area inside a seatmap. Only a
// CENTER position changes how seats are addressed; for every other position
// the block is pure display metadata.
type StageBlock struct {
	Position StagePositionInfo
	RowStart int
	RowEnd   int
	ColStart int
	ColEnd   int
}

type StagePositionInfo struct {
	Position types.StagePosition
	Label    string
	WidthPx  int
	HeightPx int
	// Runway metrics are zero when the stage has no runway extension.
	RunwayWidthPx  int
	RunwayLengthPx int
	RunwayOffsetPx int
}

func (b *StageBlock) Centered() bool {
	return b != nil && b.Position.Position == types.STAGE_CENTER
}

// Covers reports whether the given grid cell lies inside the stage rectangle.
func (b *StageBlock) Covers(row int, col int) bool {
	if b == nil {
		return false
	}
	return row >= b.RowStart && row <= b.RowEnd && col >= b.ColStart && col <= b.ColEnd
}
