package devserver

import (
	"time"

	"ticketline/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Seed loads demo data: one hall with a plain front stage and ragged rows,
// one arena with a centered stage, and a small merchandise catalog. Idempotent.
func (s *Server) Seed() error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Event{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		in60d := time.Now().Add(60 * 24 * time.Hour).Truncate(time.Minute)
		hall := Event{
			Title:         "Kabarett der Namenlosen",
			Slug:          slug.Make("Kabarett der Namenlosen"),
			Location:      "Stadtsaal",
			DateTime:      &in60d,
			StagePosition: types.STAGE_TOP,
			StageLabel:    "Stage",
			StageWidthPx:  640,
			StageHeightPx: 120,
		}
		if err := tx.Create(&hall).Error; err != nil {
			return err
		}
		// Ragged rows: row widths differ and row 4 has a gap at seat 3.
		for row := 1; row <= 6; row++ {
			width := 10
			if row%2 == 0 {
				width = 8
			}
			for number := 1; number <= width; number++ {
				if row == 4 && number == 3 {
					continue
				}
				category, price := "Standard", 45.0
				switch {
				case row <= 2:
					category, price = "Premium", 80.0
				case row >= 6:
					category, price = "günstig", 25.0
				}
				seat := Seat{
					EventID:       hall.ID,
					RowNumber:     row,
					SeatNumber:    number,
					Status:        types.SEAT_FREE,
					PriceCategory: category,
					Price:         price,
				}
				if err := tx.Create(&seat).Error; err != nil {
					return err
				}
			}
		}

		in90d := time.Now().Add(90 * 24 * time.Hour).Truncate(time.Minute)
		arena := Event{
			Title:          "Arena Spektakel",
			Slug:           slug.Make("Arena Spektakel"),
			Location:       "Stadthalle",
			DateTime:       &in90d,
			StagePosition:  types.STAGE_CENTER,
			StageLabel:     "Center Stage",
			StageRowStart:  5,
			StageRowEnd:    8,
			StageColStart:  9,
			StageColEnd:    15,
			StageWidthPx:   420,
			StageHeightPx:  240,
			RunwayWidthPx:  60,
			RunwayLengthPx: 180,
			RunwayOffsetPx: 30,
		}
		if err := tx.Create(&arena).Error; err != nil {
			return err
		}
		for row := 1; row <= 12; row++ {
			for number := 1; number <= 23; number++ {
				if row >= arena.StageRowStart && row <= arena.StageRowEnd &&
					number >= arena.StageColStart && number <= arena.StageColEnd {
					continue
				}
				category, price := "Standard", 55.0
				switch {
				case row >= 11:
					category, price = "Stehplatz", 20.0
				case row <= 2:
					category, price = "Premium", 95.0
				}
				seat := Seat{
					EventID:       arena.ID,
					RowNumber:     row,
					SeatNumber:    number,
					Status:        types.SEAT_FREE,
					PriceCategory: category,
					Price:         price,
				}
				if err := tx.Create(&seat).Error; err != nil {
					return err
				}
			}
		}

		merchandise := []Merchandise{
			{Name: "Tour Shirt", Price: 29.90, Points: 300, Stock: 12},
			{Name: "Poster", Price: 9.90, Points: 100, Stock: 500},
			{Name: "Vinyl", Price: 34.90, Points: 350, Stock: 5},
		}
		for i := range merchandise {
			if err := tx.Create(&merchandise[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
