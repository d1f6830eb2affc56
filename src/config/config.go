package config

import (
	"os"
	"path"
)

// TIME_DISPLAY_FORMAT is how event dates and expiry times are printed.
const TIME_DISPLAY_FORMAT = "2006-01-02 15:04"

// SeatmapColumns is the fixed column count used when a centered stage forces
// true 2D grid addressing. A constant so the rendered grid is stable across
// loads regardless of which seats happen to be sold.
const SeatmapColumns = 23

// QuantityWindowSize caps how many quantity options are offered at once for
// high-stock merchandise lines.
const QuantityWindowSize = 101

func GetAPIBaseURL() string {
	url := os.Getenv("TICKETLINE_API_URL")
	if url == "" {
		url = "http://localhost:8080/api/v1"
	}
	return url
}

func GetAPIToken() string {
	return os.Getenv("TICKETLINE_TOKEN")
}

func GetDownloadsDir() string {
	dir := os.Getenv("TICKETLINE_DOWNLOADS_DIR")
	if dir == "" {
		cwd, _ := os.Getwd()
		dir = path.Join(cwd, "downloads")
	}
	return dir
}

func GetServeAddr() string {
	addr := os.Getenv("TICKETLINE_SERVE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return addr
}

// GetDSN returns the sqlite DSN for the development server. The default is
// an in-memory database so `ticketline serve` is fully self-contained.
func GetDSN() string {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	return dsn
}
