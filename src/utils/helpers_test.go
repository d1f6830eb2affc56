package utils

import (
	"errors"
	"os"
	"testing"

	"ticketline/src/lib"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unauthorized",
			err:  &lib.APIError{Status: 401, Body: []byte(`{"error":"token expired"}`)},
			want: "Your session has expired, please log in again",
		},
		{
			name: "conflict with backend message",
			err:  &lib.APIError{Status: 409, Body: []byte(`{"error":"not enough stock for Vinyl"}`)},
			want: "The requested change conflicts with the current stock or prices: not enough stock for Vinyl",
		},
		{
			name: "message field fallback",
			err:  &lib.APIError{Status: 422, Body: []byte(`{"message":"validation failed"}`)},
			want: "Something went wrong: validation failed",
		},
		{
			name: "empty body falls back to status text",
			err:  &lib.APIError{Status: 404, Body: nil},
			want: "Something went wrong: Not Found",
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
			want: "Something went wrong: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatError(tt.err))
		})
	}
}

func TestSaveInvoicePDF(t *testing.T) {
	dir := t.TempDir()
	filepath, err := SaveInvoicePDF(dir, 42, []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Contains(t, filepath, "invoice-42.pdf")

	data, err := os.ReadFile(filepath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestLogNotifierRecords(t *testing.T) {
	n := &LogNotifier{}
	n.Success("bought")
	n.Warning("nothing selected")
	n.Error("stock conflict")

	assert.Equal(t, []string{"bought"}, n.Successes)
	assert.Equal(t, []string{"nothing selected"}, n.Warnings)
	assert.Equal(t, []string{"stock conflict"}, n.Errors)
}
