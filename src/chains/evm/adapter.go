// Package evm normalizes account-based (EVM-style) explorer records into
// canonical transactions: etherscan-family txlist and tokentx rows.
package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/username/chainfolio/backend/src/intent"
	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/metrics"
	"github.com/username/chainfolio/backend/src/models"
	"github.com/username/chainfolio/backend/src/taxlabel"
	"github.com/username/chainfolio/backend/src/utils"
)

// ErrMissingHash rejects a record without its primary identity. A transaction
// that cannot be deduplicated or linked must not be emitted.
var ErrMissingHash = errors.New("raw record is missing transaction hash")

// RawTransaction is the explorer-shaped record for account-based chains.
// Token-transfer rows carry the three token fields; native rows leave them
// empty. All numeric fields are decimal strings as the explorers send them.
type RawTransaction struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Input           string `json:"input"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash" validate:"required"`
	TxReceiptStatus string `json:"txreceipt_status"`
	IsError         string `json:"isError"`

	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	ContractAddress string `json:"contractAddress"`
}

// isTokenRecord reports whether this row came from a token-transfer listing.
func (r *RawTransaction) isTokenRecord() bool {
	return r.TokenSymbol != ""
}

var validate = validator.New()

type Adapter struct {
	spec models.ChainSpec
}

func NewAdapter(spec models.ChainSpec) *Adapter {
	return &Adapter{spec: spec}
}

// Parse normalizes an explorer payload (either a bare record array or the
// etherscan {status,message,result} envelope) for one user address. Records
// missing their hash are skipped and logged; the caller sees only the
// records that could be identified.
func (a *Adapter) Parse(ctx context.Context, file io.Reader, userAddress string) ([]models.Transaction, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer payload: %w", err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Result) > 0 {
		data = envelope.Result
	}

	var records []RawTransaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode explorer records: %w", err)
	}

	// Count canonical entries per on-chain hash so multi-leg transactions
	// (token leg + native leg) get index-suffixed ids.
	perHash := make(map[string]int, len(records))
	for i := range records {
		perHash[records[i].Hash]++
	}

	seen := make(map[string]int, len(perHash))
	var txs []models.Transaction
	for i := range records {
		rec := &records[i]
		tx, err := a.NormalizeTransaction(rec, userAddress)
		if err != nil {
			logger.L.Warn("Skipping record", "chain", a.spec.Name, "error", err)
			metrics.RecordsRejected.WithLabelValues(a.spec.Name).Inc()
			continue
		}
		if perHash[rec.Hash] > 1 {
			tx.ID = fmt.Sprintf("%s-%d", rec.Hash, seen[rec.Hash])
			seen[rec.Hash]++
		}
		metrics.RecordsNormalized.WithLabelValues(a.spec.Name).Inc()
		if tx.Tag == "" {
			metrics.UnclassifiedIntents.WithLabelValues(a.spec.Name).Inc()
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// NormalizeTransaction builds one canonical transaction from one raw record.
// It never fails on malformed numerics (those clamp to zero) but rejects a
// record without its identifying hash.
func (a *Adapter) NormalizeTransaction(rec *RawTransaction, userAddress string) (models.Transaction, error) {
	if err := validate.Struct(rec); err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrMissingHash, err)
	}

	var kind intent.Kind
	if rec.isTokenRecord() {
		kind = intent.TokenTransfer
	} else {
		kind = ClassifyIntent(rec, a.spec.Name)
	}

	// Account-based direction is binary: the user either signed the
	// transaction or received it. Token rows compare against the token
	// event's own from/to fields, which explorers surface in place of the
	// outer transaction's.
	isSender := strings.EqualFold(strings.TrimSpace(rec.From), strings.TrimSpace(userAddress))

	symbol := a.spec.Symbol
	decimals := a.spec.Decimals
	if rec.isTokenRecord() {
		symbol = rec.TokenSymbol
		if d, err := strconv.Atoi(rec.TokenDecimal); err == nil && d >= 0 {
			decimals = d
		}
	}
	amount := utils.FormatAmount(rec.Value, decimals)

	tx := models.Transaction{
		ID:        rec.Hash,
		Hash:      rec.Hash,
		Timestamp: parseUnixSeconds(rec.TimeStamp),
		Status:    mapStatus(rec),
		Link:      a.spec.TxLink(rec.Hash),
		Notes:     taxlabel.NoteFor(kind, symbol, isSender),
		Tag:       taxlabel.MapToTaxLabel(kind, kind == intent.NativeTransfer, isSender),
	}

	// Transfers always carry their pair, even for a zero amount. Other
	// kinds only report value that actually moved to or from the user.
	populate := kind.IsTransfer() || amount != "0"
	if populate {
		if isSender {
			tx.SentQuantity = amount
			tx.SentCurrency = symbol
		} else {
			tx.ReceivedQuantity = amount
			tx.ReceivedCurrency = symbol
		}
	}

	// Only the sender bears gas.
	if isSender {
		if fee := feeMinorUnits(rec.GasUsed, rec.GasPrice); fee != "0" {
			tx.FeeAmount = utils.FormatAmount(fee, a.spec.Decimals)
			tx.FeeCurrency = a.spec.Symbol
		}
	}

	switch {
	case kind.IsSwap():
		tx.Type = models.TypeSwap
	case kind.IsTransfer():
		if isSender {
			tx.Type = models.TypeSend
		} else {
			tx.Type = models.TypeReceive
		}
	default:
		tx.Type = models.TypeContractInteraction
	}

	return tx, nil
}

// mapStatus translates the explorer's receipt fields. Post-byzantium rows
// carry txreceipt_status '1'/'0'; older rows only isError; unmined rows
// neither.
func mapStatus(rec *RawTransaction) models.TxStatus {
	switch rec.TxReceiptStatus {
	case "1":
		return models.StatusSuccess
	case "0":
		return models.StatusFailed
	}
	switch rec.IsError {
	case "0":
		return models.StatusSuccess
	case "1":
		return models.StatusFailed
	}
	if rec.TxReceiptStatus == "" && rec.IsError == "" {
		return models.StatusPending
	}
	return models.StatusUnknown
}

// feeMinorUnits multiplies gasUsed by gasPrice with exact integer arithmetic.
// Either field malformed means a "0" fee, per the defensive numeric rule.
func feeMinorUnits(gasUsed, gasPrice string) string {
	used, okUsed := new(big.Int).SetString(strings.TrimSpace(gasUsed), 10)
	price, okPrice := new(big.Int).SetString(strings.TrimSpace(gasPrice), 10)
	if !okUsed || !okPrice || used.Sign() < 0 || price.Sign() < 0 {
		return "0"
	}
	return new(big.Int).Mul(used, price).String()
}

func parseUnixSeconds(ts string) time.Time {
	sec, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
