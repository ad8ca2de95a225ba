// Package kaspa normalizes UTXO-model explorer records into canonical
// transactions. Direction comes from output net flow, not from call data;
// fees require tracing every input back to its originating output.
package kaspa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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

// ErrMissingTransactionID rejects a record without its primary identity.
var ErrMissingTransactionID = errors.New("raw record is missing transaction id")

// nativeSubnetworkID marks plain value transfers. Anything else is a
// non-trivial script, the closest UTXO analog of a contract call.
const nativeSubnetworkID = "0000000000000000000000000000000000000000"

// RawTransaction is the explorer-shaped UTXO record.
type RawTransaction struct {
	TransactionID string   `json:"transactionId" validate:"required"`
	BlockTime     int64    `json:"blockTime"` // ms since epoch
	IsAccepted    bool     `json:"isAccepted"`
	SubnetworkID  string   `json:"subnetworkId"`
	Payload       string   `json:"payload,omitempty"`
	Inputs        []Input  `json:"inputs"`
	Outputs       []Output `json:"outputs"`
}

// Input references the output it spends. Owner is present only when the API
// resolved previous outpoints.
type Input struct {
	PreviousOutpointHash  string `json:"previousOutpointHash"`
	PreviousOutpointIndex uint32 `json:"previousOutpointIndex"`
	Owner                 string `json:"owner,omitempty"`
}

type Output struct {
	ScriptPublicKeyAddress string `json:"scriptPublicKeyAddress"`
	Amount                 uint64 `json:"amount"`
}

// NetFlowPolicy names the treatment of transactions where the user both
// funded the transaction and received an output back.
type NetFlowPolicy int

const (
	// PolicyCollapseChange reports such a transaction as a pure send of
	// the externally-bound amount: change returned to the spender is not a
	// taxable receipt. This is a product decision, not a derived fact, and
	// the default; porting to a chain with different change semantics
	// needs product sign-off.
	PolicyCollapseChange NetFlowPolicy = iota
	// PolicySeparateChange additionally emits the self-bound amount as a
	// distinct receive entry.
	PolicySeparateChange
)

// Direction is the resolved flow of funds relative to the user address.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionSent
	DirectionReceived
)

// NetFlow is the resolved per-user accounting of one UTXO record.
type NetFlow struct {
	Direction      Direction
	SentToOthers   uint64
	ReceivedToSelf uint64
}

var validate = validator.New()

type Adapter struct {
	spec   models.ChainSpec
	policy NetFlowPolicy
	tracer *FeeTracer
}

// NewAdapter builds a kaspa adapter. A nil tracer disables fee reporting;
// fees are then omitted, never guessed.
func NewAdapter(spec models.ChainSpec, tracer *FeeTracer) *Adapter {
	return &Adapter{spec: spec, policy: PolicyCollapseChange, tracer: tracer}
}

// WithPolicy overrides the change-handling policy.
func (a *Adapter) WithPolicy(p NetFlowPolicy) *Adapter {
	a.policy = p
	return a
}

// Parse normalizes an explorer payload (a bare record array) for one user
// address. Records missing their id are skipped and logged.
func (a *Adapter) Parse(ctx context.Context, file io.Reader, userAddress string) ([]models.Transaction, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer payload: %w", err)
	}
	var records []RawTransaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode explorer records: %w", err)
	}

	var txs []models.Transaction
	for i := range records {
		rec := &records[i]
		legs, err := a.NormalizeTransaction(ctx, rec, userAddress)
		if err != nil {
			logger.L.Warn("Skipping record", "chain", a.spec.Name, "error", err)
			metrics.RecordsRejected.WithLabelValues(a.spec.Name).Inc()
			continue
		}
		for _, tx := range legs {
			metrics.RecordsNormalized.WithLabelValues(a.spec.Name).Inc()
			if tx.Tag == "" {
				metrics.UnclassifiedIntents.WithLabelValues(a.spec.Name).Inc()
			}
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

// ClassifyIntent determines the semantic kind from structure. UTXO chains
// have no call data, so the signals are the subnetwork id and the payload.
func ClassifyIntent(rec *RawTransaction) intent.Kind {
	sub := strings.TrimSpace(rec.SubnetworkID)
	if sub != "" && sub != nativeSubnetworkID {
		return intent.SubnetworkCall
	}
	if strings.TrimSpace(rec.Payload) != "" {
		return intent.DataTransfer
	}
	return intent.NativeTransfer
}

// ResolveNetFlow sums outputs toward and away from the user. Any externally
// bound amount makes the transaction a send; change back to the user is
// resolved here and treated by the builder according to the active policy.
func ResolveNetFlow(rec *RawTransaction, userAddress string) NetFlow {
	var flow NetFlow
	for _, out := range rec.Outputs {
		if strings.EqualFold(out.ScriptPublicKeyAddress, userAddress) {
			flow.ReceivedToSelf += out.Amount
		} else {
			flow.SentToOthers += out.Amount
		}
	}
	switch {
	case flow.SentToOthers > 0:
		flow.Direction = DirectionSent
	case flow.ReceivedToSelf > 0:
		flow.Direction = DirectionReceived
	default:
		flow.Direction = DirectionNone
	}
	return flow
}

// NormalizeTransaction builds the canonical entries for one raw record. One
// record usually yields one entry; PolicySeparateChange can yield two.
func (a *Adapter) NormalizeTransaction(ctx context.Context, rec *RawTransaction, userAddress string) ([]models.Transaction, error) {
	if err := validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingTransactionID, err)
	}

	kind := ClassifyIntent(rec)
	flow := ResolveNetFlow(rec, userAddress)
	isSender := flow.Direction == DirectionSent

	status := models.StatusPending
	if rec.IsAccepted {
		status = models.StatusSuccess
	}

	base := models.Transaction{
		ID:        rec.TransactionID,
		Hash:      rec.TransactionID,
		Timestamp: time.UnixMilli(rec.BlockTime).UTC(),
		Status:    status,
		Link:      a.spec.TxLink(rec.TransactionID),
		Notes:     taxlabel.NoteFor(kind, a.spec.Symbol, isSender),
		Tag:       taxlabel.MapToTaxLabel(kind, kind == intent.NativeTransfer, isSender),
	}

	switch flow.Direction {
	case DirectionSent:
		base.Type = models.TypeSend
		base.SentQuantity = a.format(flow.SentToOthers)
		base.SentCurrency = a.spec.Symbol
		if fee, ok := a.traceFee(ctx, rec); ok {
			base.FeeAmount = a.format(fee)
			base.FeeCurrency = a.spec.Symbol
		}
	case DirectionReceived:
		base.Type = models.TypeReceive
		base.ReceivedQuantity = a.format(flow.ReceivedToSelf)
		base.ReceivedCurrency = a.spec.Symbol
	default:
		// No value moved to or from the user; keep the identity so the
		// record still deduplicates, but report no amounts.
		base.Type = models.TypeUnknown
	}
	if kind == intent.SubnetworkCall {
		base.Type = models.TypeContractInteraction
	}

	txs := []models.Transaction{base}
	if a.policy == PolicySeparateChange && flow.Direction == DirectionSent && flow.ReceivedToSelf > 0 {
		change := base
		txs[0].ID = rec.TransactionID + "-0"
		change.ID = rec.TransactionID + "-1"
		change.Type = models.TypeReceive
		change.SentQuantity, change.SentCurrency = "", ""
		change.FeeAmount, change.FeeCurrency = "", ""
		change.ReceivedQuantity = a.format(flow.ReceivedToSelf)
		change.ReceivedCurrency = a.spec.Symbol
		change.Tag = taxlabel.MapToTaxLabel(kind, kind == intent.NativeTransfer, false)
		change.Notes = taxlabel.NoteFor(kind, a.spec.Symbol, false)
		txs = append(txs, change)
	}
	return txs, nil
}

// traceFee computes fee = sum(inputs) - sum(outputs), reported only when
// every input's originating output is traceable. Any failure omits the fee.
func (a *Adapter) traceFee(ctx context.Context, rec *RawTransaction) (uint64, bool) {
	if a.tracer == nil || len(rec.Inputs) == 0 {
		return 0, false
	}
	return a.tracer.TraceFee(ctx, rec)
}

func (a *Adapter) format(amount uint64) string {
	return utils.FormatAmount(strconv.FormatUint(amount, 10), a.spec.Decimals)
}
