package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/models"
	"github.com/username/chainfolio/backend/src/services"
	"github.com/username/chainfolio/backend/src/utils"
)

type TransactionHandler struct {
	importService services.ImportService
}

func NewTransactionHandler(service services.ImportService) *TransactionHandler {
	return &TransactionHandler{importService: service}
}

// HandleGetTransactions lists a wallet's canonical transactions, with ETag
// support so the UI can poll cheaply.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		utils.SendJSONError(w, "'wallet' query parameter is required", http.StatusBadRequest)
		return
	}

	txs, err := h.importService.GetTransactions(r.Context(), wallet)
	if err != nil {
		utils.SendJSONError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	etag, err := utils.GenerateETag(txs)
	if err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(txs); err != nil {
		logger.L.Error("Error generating JSON response for transactions", "wallet", wallet, "error", err)
	}
}
