package lib

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"

	"ticketline/src/models"

	"github.com/yeqown/go-qrcode"
)

// SaveTicketQR renders the admission payload of a purchased ticket as a QR
// image under dir and returns the file path. The payload is what admission
// scanners expect: ticket id plus invoice id.
func SaveTicketQR(ticket *models.TicketPurchased, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	rawData := map[string]any{
		"ticketId":  ticket.ID,
		"invoiceId": ticket.InvoiceID,
	}
	rawBytes, _ := json.Marshal(rawData)
	qrc, err := qrcode.New(string(rawBytes))
	if err != nil {
		return "", err
	}
	filepath := path.Join(dir, fmt.Sprintf("eticket-%d.jpeg", ticket.ID))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
