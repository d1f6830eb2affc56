package seatmap

import (
	"sort"
	"strings"

	"ticketline/src/config"
	"ticketline/src/models"
	"ticketline/src/types"
)

// Seatmap is the loaded, renderable view of one event's hall. Exactly one
// of Rows and Cells is populated: Rows for ragged per-row layout, Cells for
// the fixed-width grid a centered stage requires.
type Seatmap struct {
	Stage *models.StageBlock

	Rows [][]*models.Seat

	Cells    []*models.Seat
	Cols     int
	GridRows int

	index map[string]*models.Seat
}

// New builds the client view from the backend seatmap response.
func New(resp *types.APIResponseSeatmap) *Seatmap {
	stage := stageFromResponse(resp)
	seats := seatsFromResponse(resp)

	m := &Seatmap{Stage: stage, index: make(map[string]*models.Seat, len(seats))}
	for _, seat := range seats {
		m.index[seat.Key()] = seat
	}
	if stage.Centered() {
		m.Cols = config.SeatmapColumns
		m.Cells, m.GridRows = BuildGrid(seats, m.Cols)
	} else {
		m.Rows = BuildRows(seats)
	}
	return m
}

func (m *Seatmap) Grid() bool {
	return m.Cells != nil
}

// Lookup resolves a (row, number) key back to the seat object, or nil when
// no seat exists at that position.
func (m *Seatmap) Lookup(row int, number int) *models.Seat {
	return m.index[models.SeatKey(row, number)]
}

func (m *Seatmap) LookupKey(key string) *models.Seat {
	return m.index[key]
}

// BuildRows groups seats by row into dense arrays indexed 1..max seat
// number per row, with nil marking positions where no seat exists. Rows
// come out ascending by row number; gaps between row numbers simply produce
// fewer rows.
func BuildRows(seats []*models.Seat) [][]*models.Seat {
	byRow := make(map[int][]*models.Seat)
	maxSeat := make(map[int]int)
	for _, seat := range seats {
		if seat.SeatNumber < 1 {
			continue
		}
		byRow[seat.RowNumber] = append(byRow[seat.RowNumber], seat)
		if seat.SeatNumber > maxSeat[seat.RowNumber] {
			maxSeat[seat.RowNumber] = seat.SeatNumber
		}
	}
	rowNumbers := make([]int, 0, len(byRow))
	for row := range byRow {
		rowNumbers = append(rowNumbers, row)
	}
	sort.Ints(rowNumbers)

	rows := make([][]*models.Seat, 0, len(rowNumbers))
	for _, rowNumber := range rowNumbers {
		row := make([]*models.Seat, maxSeat[rowNumber])
		for _, seat := range byRow[rowNumber] {
			row[seat.SeatNumber-1] = seat
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildGrid lays seats out on a fixed-width grid spanning rows 1..maxRow,
// returned as a row-major cell array. Seats whose position falls outside
// the grid are dropped rather than failing the whole map.
func BuildGrid(seats []*models.Seat, cols int) ([]*models.Seat, int) {
	maxRow := 0
	for _, seat := range seats {
		if seat.RowNumber > maxRow {
			maxRow = seat.RowNumber
		}
	}
	cells := make([]*models.Seat, maxRow*cols)
	for _, seat := range seats {
		if seat.RowNumber < 1 || seat.SeatNumber < 1 || seat.SeatNumber > cols {
			continue
		}
		cells[(seat.RowNumber-1)*cols+seat.SeatNumber-1] = seat
	}
	return cells, maxRow
}

// NormalizePriceCategory maps a free-text backend category label onto one
// of the four canonical categories. Unrecognized labels degrade to MIDDLE
// so rendering never breaks on new backend wording.
func NormalizePriceCategory(label string) types.PriceCategory {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case "free":
		return types.CATEGORY_FREE
	case "cheap":
		return types.CATEGORY_CHEAP
	case "middle", "standard":
		return types.CATEGORY_MIDDLE
	case "expensive", "premium":
		return types.CATEGORY_EXPENSIVE
	}
	switch {
	case strings.Contains(l, "steh"):
		return types.CATEGORY_FREE
	case strings.Contains(l, "günst"), strings.Contains(l, "guenst"):
		return types.CATEGORY_CHEAP
	case strings.Contains(l, "standard"):
		return types.CATEGORY_MIDDLE
	case strings.Contains(l, "premium"):
		return types.CATEGORY_EXPENSIVE
	}
	return types.CATEGORY_MIDDLE
}

func seatsFromResponse(resp *types.APIResponseSeatmap) []*models.Seat {
	if resp == nil {
		return nil
	}
	seats := make([]*models.Seat, 0, len(resp.Seats))
	for _, s := range resp.Seats {
		seats = append(seats, &models.Seat{
			ID:            s.ID,
			RowNumber:     s.RowNumber,
			SeatNumber:    s.SeatNumber,
			Status:        s.Status,
			PriceCategory: NormalizePriceCategory(s.PriceCategory),
		})
	}
	return seats
}

func stageFromResponse(resp *types.APIResponseSeatmap) *models.StageBlock {
	if resp == nil || resp.StagePosition == "" {
		return nil
	}
	return &models.StageBlock{
		Position: models.StagePositionInfo{
			Position:       resp.StagePosition,
			Label:          resp.StageLabel,
			WidthPx:        resp.StageWidthPx,
			HeightPx:       resp.StageHeightPx,
			RunwayWidthPx:  resp.RunwayWidthPx,
			RunwayLengthPx: resp.RunwayLengthPx,
			RunwayOffsetPx: resp.RunwayOffsetPx,
		},
		RowStart: resp.StageRowStart,
		RowEnd:   resp.StageRowEnd,
		ColStart: resp.StageColStart,
		ColEnd:   resp.StageColEnd,
	}
}
