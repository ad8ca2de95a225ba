// Package export serializes canonical transactions for tax software.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/chainfolio/backend/src/models"
	"github.com/username/chainfolio/backend/src/security/validation"
)

// Column order is fixed by the tax-software import format; never reorder.
var header = []string{
	"Date",
	"Received Quantity",
	"Received Currency",
	"Sent Quantity",
	"Sent Currency",
	"Fee Amount",
	"Fee Currency",
	"Notes",
	"Tag",
	"Transaction Hash",
}

const dateLayout = "01/02/2006 15:04:05" // MM/DD/YYYY HH:MM:SS, UTC

// WriteCSV serializes transactions in the fixed export column order. The
// explorer link is appended to the notes column; free-text cells are
// sanitized against spreadsheet formula injection.
func WriteCSV(w io.Writer, txs []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i := range txs {
		tx := &txs[i]
		notes := tx.Notes
		if tx.Link != "" {
			notes = fmt.Sprintf("%s (%s)", notes, tx.Link)
		}
		record := []string{
			tx.Timestamp.UTC().Format(dateLayout),
			tx.ReceivedQuantity,
			tx.ReceivedCurrency,
			tx.SentQuantity,
			tx.SentCurrency,
			tx.FeeAmount,
			tx.FeeCurrency,
			validation.SanitizeForFormulaInjection(validation.StripUnprintable(notes)),
			tx.Tag,
			tx.Hash,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV record %s: %w", tx.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
