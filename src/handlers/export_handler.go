package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/services"
	"github.com/username/chainfolio/backend/src/utils"
)

type ExportHandler struct {
	importService services.ImportService
}

func NewExportHandler(service services.ImportService) *ExportHandler {
	return &ExportHandler{importService: service}
}

// HandleExportCSV streams the wallet's transactions as a tax-software CSV.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		utils.SendJSONError(w, "'wallet' query parameter is required", http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("chainfolio-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.importService.ExportCSV(r.Context(), w, wallet); err != nil {
		// Headers may already be sent; log rather than rewrite the response.
		logger.L.Error("CSV export failed", "wallet", wallet, "error", err)
	}
}
