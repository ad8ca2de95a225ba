package models

import "time"

// TxStatus is the chain-agnostic confirmation state of a transaction.
type TxStatus string

const (
	StatusSuccess TxStatus = "SUCCESS"
	StatusFailed  TxStatus = "FAILED"
	StatusPending TxStatus = "PENDING"
	StatusUnknown TxStatus = "UNKNOWN"
)

// TxType is the coarse category shown to the user and written to exports.
// It is deliberately smaller than the intent vocabulary used internally for
// tagging: the UI only needs to know which way funds moved.
type TxType string

const (
	TypeSend                TxType = "SEND"
	TypeReceive             TxType = "RECEIVE"
	TypeSwap                TxType = "SWAP"
	TypeContractInteraction TxType = "CONTRACT_INTERACTION"
	TypeUnknown             TxType = "UNKNOWN"
)

// Transaction is the unified, canonical representation of a chain transaction.
// Each chain adapter is responsible for populating it fully from the raw
// explorer record; it is never mutated after construction.
type Transaction struct {
	// ID is unique per canonical entry. It is the on-chain hash, suffixed
	// with an index when one on-chain transaction yields several entries
	// (e.g. a token leg and a native leg).
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Exactly one of the received/sent pairs is populated for simple
	// transfers; both may be empty for pure contract interactions.
	ReceivedQuantity string `json:"received_quantity"`
	ReceivedCurrency string `json:"received_currency"`
	SentQuantity     string `json:"sent_quantity"`
	SentCurrency     string `json:"sent_currency"`

	// Fee fields are populated only on the sender's copy.
	FeeAmount   string `json:"fee_amount"`
	FeeCurrency string `json:"fee_currency"`

	Hash   string   `json:"hash"`
	Notes  string   `json:"notes"`
	Status TxStatus `json:"status"`
	Type   TxType   `json:"type"`
	Link   string   `json:"link"`

	// Tag is either empty or drawn from the closed tax vocabulary in the
	// taxlabel package. Ambiguous transactions stay untagged.
	Tag string `json:"tag"`
}

// HasReceived reports whether the received pair is populated.
func (t *Transaction) HasReceived() bool {
	return t.ReceivedQuantity != "" && t.ReceivedCurrency != ""
}

// HasSent reports whether the sent pair is populated.
func (t *Transaction) HasSent() bool {
	return t.SentQuantity != "" && t.SentCurrency != ""
}

// ImportResult summarizes one explorer payload import.
type ImportResult struct {
	BatchID      string `json:"batch_id"`
	Chain        string `json:"chain"`
	Wallet       string `json:"wallet"`
	Imported     int    `json:"imported"`
	Duplicates   int    `json:"duplicates"`
	Rejected     int    `json:"rejected"`
	Unclassified int    `json:"unclassified"`
}
