package billing

import (
	"fmt"
	"time"
)

// Document number prefixes. Quotes are devis ("D"), invoices are
// factures ("F").
const (
	QuoteNumberPrefix   = "D"
	InvoiceNumberPrefix = "F"
)

// numberSeqWidth is the minimum zero-padded width of the sequence part.
// Sequences beyond 999 widen naturally; ordering queries sort on the
// counter value, never on the formatted string.
const numberSeqWidth = 3

// FormatNumber renders a document number as PREFIX-YEAR-SEQ,
// e.g. F-2025-001.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, numberSeqWidth, seq)
}

// NumberCounter is the per-(prefix, year) source of document numbers.
// A row is created lazily on first use and mutated only through a
// single atomic increment performed by the storage layer.
type NumberCounter struct {
	Prefix    string
	Year      int
	LastValue int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
