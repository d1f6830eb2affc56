package utils

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"ticketline/src/lib"

	"github.com/tidwall/gjson"
)

// Notifier is the toast/notification surface of the surrounding UI. The
// core never throws raw transport errors at the user; everything goes
// through here as formatted text.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// LogNotifier is the default sink when no UI is attached (CLI runs, tests).
type LogNotifier struct {
	Successes []string
	Warnings  []string
	Errors    []string
}

func (n *LogNotifier) Success(msg string) {
	n.Successes = append(n.Successes, msg)
	fmt.Println(msg)
}

func (n *LogNotifier) Warning(msg string) {
	n.Warnings = append(n.Warnings, msg)
	fmt.Println("warning: " + msg)
}

func (n *LogNotifier) Error(msg string) {
	n.Errors = append(n.Errors, msg)
	fmt.Fprintln(os.Stderr, "error: "+msg)
}

// FormatError turns any error from the transport layer into user-facing
// text. Backend errors carry their message in an `error` or `message` body
// field; everything else degrades to the same generic wording, there is no
// distinct fatal class visible to the user.
func FormatError(err error) string {
	var apiErr *lib.APIError
	if errors.As(err, &apiErr) {
		msg := gjson.GetBytes(apiErr.Body, "error").String()
		if msg == "" {
			msg = gjson.GetBytes(apiErr.Body, "message").String()
		}
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return "Your session has expired, please log in again"
		case http.StatusConflict:
			return fmt.Sprintf("The requested change conflicts with the current stock or prices: %s", msg)
		default:
			return fmt.Sprintf("Something went wrong: %s", msg)
		}
	}
	return fmt.Sprintf("Something went wrong: %s", err.Error())
}

// SaveInvoicePDF writes a downloaded invoice document under dir. Stands in
// for the browser's object-URL download.
func SaveInvoicePDF(dir string, invoiceID uint, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filepath := path.Join(dir, fmt.Sprintf("invoice-%d.pdf", invoiceID))
	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return "", err
	}
	return filepath, nil
}
