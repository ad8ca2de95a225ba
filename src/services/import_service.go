package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/chainfolio/backend/src/chains"
	"github.com/username/chainfolio/backend/src/database"
	"github.com/username/chainfolio/backend/src/export"
	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/models"
)

var (
	ErrUnknownChain  = errors.New("unknown chain")
	ErrParsingFailed = errors.New("failed to parse explorer payload")
)

const (
	ckWalletTransactions = "res_wallet_transactions_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type importServiceImpl struct {
	resultCache *cache.Cache
}

func NewImportService(resultCache *cache.Cache) ImportService {
	return &importServiceImpl{resultCache: resultCache}
}

// ProcessImport normalizes one explorer payload through the chain adapter and
// persists the canonical transactions. Already-imported entries (same wallet,
// same canonical id) are counted as duplicates and skipped.
func (s *importServiceImpl) ProcessImport(ctx context.Context, payload io.Reader, wallet, chain string) (*models.ImportResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessImport START", "wallet", wallet, "chain", chain)

	adapter, err := chains.GetAdapter(chain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChain, err)
	}

	txs, err := adapter.Parse(ctx, payload, wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result := &models.ImportResult{
		BatchID: uuid.NewString(),
		Chain:   chain,
		Wallet:  wallet,
	}
	if len(txs) == 0 {
		logger.L.Info("ProcessImport END (no records)", "wallet", wallet, "duration", time.Since(overallStartTime))
		return result, nil
	}

	dbTx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (wallet, chain, tx_id, hash, timestamp, received_quantity, received_currency, sent_quantity, sent_currency, fee_amount, fee_currency, notes, status, tx_type, link, tag) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i := range txs {
		tx := &txs[i]
		_, err := stmt.Exec(wallet, chain, tx.ID, tx.Hash, tx.Timestamp.UTC().Format(time.RFC3339),
			tx.ReceivedQuantity, tx.ReceivedCurrency, tx.SentQuantity, tx.SentCurrency,
			tx.FeeAmount, tx.FeeCurrency, tx.Notes, string(tx.Status), string(tx.Type), tx.Link, tx.Tag)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on import", "wallet", wallet, "txId", tx.ID)
				result.Duplicates++
				continue
			}
			return nil, fmt.Errorf("error inserting transaction (id: %s): %w", tx.ID, err)
		}
		result.Imported++
		if tx.Tag == "" {
			result.Unclassified++
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transactions: %w", err)
	}

	s.invalidateWalletCache(wallet)

	logger.L.Info("ProcessImport END", "wallet", wallet, "imported", result.Imported,
		"duplicates", result.Duplicates, "duration", time.Since(overallStartTime))
	return result, nil
}

// GetTransactions returns all canonical transactions for a wallet, newest
// first, consulting the result cache before the database.
func (s *importServiceImpl) GetTransactions(ctx context.Context, wallet string) ([]models.Transaction, error) {
	cacheKey := fmt.Sprintf(ckWalletTransactions, strings.ToLower(wallet))
	if cached, found := s.resultCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for wallet transactions", "wallet", wallet)
		return cached.([]models.Transaction), nil
	}

	txs, err := fetchWalletTransactions(ctx, wallet)
	if err != nil {
		return nil, err
	}
	s.resultCache.Set(cacheKey, txs, DefaultCacheExpiration)
	return txs, nil
}

// ExportCSV streams the wallet's transactions in the tax-export column order.
func (s *importServiceImpl) ExportCSV(ctx context.Context, w io.Writer, wallet string) error {
	txs, err := s.GetTransactions(ctx, wallet)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, txs)
}

func (s *importServiceImpl) invalidateWalletCache(wallet string) {
	s.resultCache.Delete(fmt.Sprintf(ckWalletTransactions, strings.ToLower(wallet)))
	logger.L.Info("Invalidated cache for wallet", "wallet", wallet)
}

func fetchWalletTransactions(ctx context.Context, wallet string) ([]models.Transaction, error) {
	logger.L.Debug("Fetching transactions from DB", "wallet", wallet)
	rows, err := database.DB.QueryContext(ctx, `SELECT tx_id, hash, timestamp, received_quantity, received_currency, sent_quantity, sent_currency, fee_amount, fee_currency, notes, status, tx_type, link, tag FROM transactions WHERE wallet = ? ORDER BY timestamp DESC, id DESC`, wallet)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for wallet %s: %w", wallet, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var ts, status, txType string
		scanErr := rows.Scan(&tx.ID, &tx.Hash, &ts,
			&tx.ReceivedQuantity, &tx.ReceivedCurrency, &tx.SentQuantity, &tx.SentCurrency,
			&tx.FeeAmount, &tx.FeeCurrency, &tx.Notes, &status, &txType, &tx.Link, &tx.Tag)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning transaction row for wallet %s: %w", wallet, scanErr)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			tx.Timestamp = parsed
		}
		tx.Status = models.TxStatus(status)
		tx.Type = models.TxType(txType)
		transactions = append(transactions, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction rows for wallet %s: %w", wallet, err)
	}
	logger.L.Info("DB fetch complete.", "wallet", wallet, "transactionCount", len(transactions))
	return transactions, nil
}
