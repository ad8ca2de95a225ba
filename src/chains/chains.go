// Package chains is the registry of supported chains and the factory that
// hands out the adapter for each one.
package chains

import (
	"context"
	"fmt"
	"io"

	"github.com/username/chainfolio/backend/src/chains/evm"
	"github.com/username/chainfolio/backend/src/chains/kaspa"
	"github.com/username/chainfolio/backend/src/models"
)

// Adapter normalizes one explorer payload into canonical transactions for the
// given user address. Implementations are pure apart from optional fee
// tracing, and safe for concurrent use across independent payloads.
type Adapter interface {
	Parse(ctx context.Context, file io.Reader, userAddress string) ([]models.Transaction, error)
}

var registry = map[string]models.ChainSpec{
	"ethereum": {
		Name:          "ethereum",
		Symbol:        "ETH",
		Decimals:      18,
		ExplorerTxURL: "https://etherscan.io/tx/%s",
		Model:         models.ModelAccount,
	},
	"bsc": {
		Name:          "bsc",
		Symbol:        "BNB",
		Decimals:      18,
		ExplorerTxURL: "https://bscscan.com/tx/%s",
		Model:         models.ModelAccount,
	},
	"kaspa": {
		Name:          "kaspa",
		Symbol:        "KAS",
		Decimals:      8,
		ExplorerTxURL: "https://explorer.kaspa.org/txs/%s",
		Model:         models.ModelUTXO,
	},
}

// kaspaFeeTracer is wired once at startup. Left nil, the kaspa adapter simply
// omits fees, which is the documented degraded behavior.
var kaspaFeeTracer *kaspa.FeeTracer

// SetKaspaFeeTracer installs the tracer used for UTXO fee computation.
// Call before serving requests; adapters constructed afterwards pick it up.
func SetKaspaFeeTracer(t *kaspa.FeeTracer) {
	kaspaFeeTracer = t
}

// SpecFor returns the static spec for a chain.
func SpecFor(chain string) (models.ChainSpec, bool) {
	spec, ok := registry[chain]
	return spec, ok
}

// Supported lists the registered chain names.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// GetAdapter returns the adapter for a chain name.
func GetAdapter(chain string) (Adapter, error) {
	spec, ok := registry[chain]
	if !ok {
		return nil, fmt.Errorf("no adapter available for chain: %s", chain)
	}
	switch spec.Model {
	case models.ModelAccount:
		return evm.NewAdapter(spec), nil
	case models.ModelUTXO:
		return kaspa.NewAdapter(spec, kaspaFeeTracer), nil
	default:
		return nil, fmt.Errorf("unsupported chain model: %s", spec.Model)
	}
}
