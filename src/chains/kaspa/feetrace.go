package kaspa

import (
	"context"
	"fmt"

	"github.com/username/chainfolio/backend/src/logger"
	"golang.org/x/time/rate"
)

// OutpointSource resolves the amount of a previously created output. The
// production implementation is a REST lookup against the chain explorer; it
// is network I/O, so every call is rate limited and context cancellable.
type OutpointSource interface {
	OutputAmount(ctx context.Context, txID string, index uint32) (uint64, error)
}

// OutpointCache remembers resolved outpoints. Outputs are immutable once
// created, so entries never need invalidation beyond TTL housekeeping.
type OutpointCache interface {
	Get(ctx context.Context, key string) (uint64, bool)
	Set(ctx context.Context, key string, amount uint64)
}

// FeeTracer computes UTXO fees as sum(inputs) - sum(outputs). The fee exists
// only if every input's originating output can be traced; a single missing
// input means the fee is omitted rather than guessed.
type FeeTracer struct {
	source  OutpointSource
	cache   OutpointCache
	limiter *rate.Limiter
}

func NewFeeTracer(source OutpointSource, cache OutpointCache, ratePerSec float64, burst int) *FeeTracer {
	return &FeeTracer{
		source:  source,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

// TraceFee returns (fee, true) when all inputs were traced, (0, false)
// otherwise. Cache hits bypass the rate limiter; only real lookups wait.
func (t *FeeTracer) TraceFee(ctx context.Context, rec *RawTransaction) (uint64, bool) {
	var inputSum uint64
	for _, in := range rec.Inputs {
		amount, err := t.outputAmount(ctx, in.PreviousOutpointHash, in.PreviousOutpointIndex)
		if err != nil {
			logger.L.Debug("Fee trace incomplete, omitting fee",
				"txId", rec.TransactionID,
				"outpoint", in.PreviousOutpointHash,
				"error", err)
			return 0, false
		}
		inputSum += amount
	}

	var outputSum uint64
	for _, out := range rec.Outputs {
		outputSum += out.Amount
	}
	if inputSum < outputSum {
		// Inconsistent explorer data; a negative fee is meaningless.
		return 0, false
	}
	return inputSum - outputSum, true
}

func (t *FeeTracer) outputAmount(ctx context.Context, txID string, index uint32) (uint64, error) {
	key := fmt.Sprintf("%s:%d", txID, index)
	if t.cache != nil {
		if amount, ok := t.cache.Get(ctx, key); ok {
			return amount, nil
		}
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter wait aborted: %w", err)
	}
	amount, err := t.source.OutputAmount(ctx, txID, index)
	if err != nil {
		return 0, err
	}
	if t.cache != nil {
		t.cache.Set(ctx, key, amount)
	}
	return amount, nil
}
