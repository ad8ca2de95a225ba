package models

import "fmt"

// ChainModel is the accounting model a chain uses.
type ChainModel string

const (
	ModelAccount ChainModel = "account"
	ModelUTXO    ChainModel = "utxo"
)

// ChainSpec carries the static, per-chain facts the adapters need: the native
// asset, its minor-unit scale and the explorer URL template.
type ChainSpec struct {
	Name          string
	Symbol        string
	Decimals      int
	ExplorerTxURL string // template with a single %s for the tx hash
	Model         ChainModel
}

// TxLink builds the explorer URL for a transaction hash. The link is
// constructed, never fetched.
func (s ChainSpec) TxLink(hash string) string {
	if s.ExplorerTxURL == "" || hash == "" {
		return ""
	}
	return fmt.Sprintf(s.ExplorerTxURL, hash)
}
