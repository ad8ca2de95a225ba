package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/chainfolio/backend/src/config"
	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/services"
	"github.com/username/chainfolio/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{importService: service}
}

// HandleImport accepts a raw explorer payload in the request body and
// normalizes it for the wallet/chain pair given in query parameters.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	chain := r.URL.Query().Get("chain")
	if wallet == "" || chain == "" {
		utils.SendJSONError(w, "both 'wallet' and 'chain' query parameters are required", http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, config.Cfg.MaxImportSizeBytes)
	defer body.Close()

	result, err := h.importService.ProcessImport(r.Context(), body, wallet, chain)
	if err != nil {
		logger.L.Warn("Import failed", "wallet", wallet, "chain", chain, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrUnknownChain) || errors.Is(err, services.ErrParsingFailed) {
			status = http.StatusBadRequest
		}
		utils.SendJSONError(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding import result", "wallet", wallet, "error", err)
	}
}
