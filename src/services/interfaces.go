package services

import (
	"context"
	"io"

	"github.com/username/chainfolio/backend/src/models"
)

// ImportService is the core import/export pipeline: explorer payload in,
// canonical transactions persisted, CSV out.
type ImportService interface {
	ProcessImport(ctx context.Context, payload io.Reader, wallet, chain string) (*models.ImportResult, error)
	GetTransactions(ctx context.Context, wallet string) ([]models.Transaction, error)
	ExportCSV(ctx context.Context, w io.Writer, wallet string) error
}
