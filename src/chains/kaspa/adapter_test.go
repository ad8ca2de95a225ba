package kaspa

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/chainfolio/backend/src/intent"
	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func kasSpec() models.ChainSpec {
	return models.ChainSpec{
		Name:          "kaspa",
		Symbol:        "KAS",
		Decimals:      8,
		ExplorerTxURL: "https://explorer.kaspa.org/txs/%s",
		Model:         models.ModelUTXO,
	}
}

const (
	userAddr  = "kaspa:qqself"
	otherAddr = "kaspa:qqother"
)

func TestClassifyIntentStructural(t *testing.T) {
	tests := []struct {
		name string
		rec  RawTransaction
		want intent.Kind
	}{
		{"native subnetwork no payload", RawTransaction{SubnetworkID: nativeSubnetworkID}, intent.NativeTransfer},
		{"empty subnetwork id", RawTransaction{SubnetworkID: ""}, intent.NativeTransfer},
		{"payload present", RawTransaction{SubnetworkID: nativeSubnetworkID, Payload: "deadbeef"}, intent.DataTransfer},
		{"non-native subnetwork", RawTransaction{SubnetworkID: "0000000000000000000000000000000000000001"}, intent.SubnetworkCall},
		{"non-native subnetwork wins over payload", RawTransaction{SubnetworkID: "ff", Payload: "aa"}, intent.SubnetworkCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(&tt.rec))
		})
	}
}

func TestResolveNetFlow(t *testing.T) {
	tests := []struct {
		name    string
		outputs []Output
		want    NetFlow
	}{
		{
			name: "send with change",
			outputs: []Output{
				{ScriptPublicKeyAddress: otherAddr, Amount: 150000000},
				{ScriptPublicKeyAddress: userAddr, Amount: 49990000},
			},
			want: NetFlow{Direction: DirectionSent, SentToOthers: 150000000, ReceivedToSelf: 49990000},
		},
		{
			name: "pure receive",
			outputs: []Output{
				{ScriptPublicKeyAddress: userAddr, Amount: 500000000},
			},
			want: NetFlow{Direction: DirectionReceived, ReceivedToSelf: 500000000},
		},
		{
			name:    "no outputs touch the user or anyone",
			outputs: nil,
			want:    NetFlow{Direction: DirectionNone},
		},
		{
			name: "case-insensitive address match",
			outputs: []Output{
				{ScriptPublicKeyAddress: strings.ToUpper(userAddr), Amount: 100},
			},
			want: NetFlow{Direction: DirectionReceived, ReceivedToSelf: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RawTransaction{Outputs: tt.outputs}
			assert.Equal(t, tt.want, ResolveNetFlow(&rec, userAddr))
		})
	}
}

func TestNormalizeTransactionCollapsesChange(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{
		TransactionID: "abc123",
		BlockTime:     1700000000000,
		IsAccepted:    true,
		SubnetworkID:  nativeSubnetworkID,
		Outputs: []Output{
			{ScriptPublicKeyAddress: otherAddr, Amount: 150000000},
			{ScriptPublicKeyAddress: userAddr, Amount: 49990000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	// Change back to the spender is not a receipt under the default policy:
	// only the externally bound amount is reported.
	assert.Equal(t, "1.5", tx.SentQuantity)
	assert.Equal(t, "KAS", tx.SentCurrency)
	assert.Empty(t, tx.ReceivedQuantity)
	assert.Equal(t, models.TypeSend, tx.Type)
	assert.Equal(t, models.StatusSuccess, tx.Status)
	assert.Equal(t, "payment", tx.Tag)
	assert.Equal(t, "abc123", tx.ID)
	assert.Equal(t, "https://explorer.kaspa.org/txs/abc123", tx.Link)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), tx.Timestamp)
	// No tracer configured, so the fee is omitted rather than guessed.
	assert.Empty(t, tx.FeeAmount)
	assert.Empty(t, tx.FeeCurrency)
}

func TestNormalizeTransactionSeparateChangePolicy(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil).WithPolicy(PolicySeparateChange)
	rec := &RawTransaction{
		TransactionID: "abc123",
		BlockTime:     1700000000000,
		IsAccepted:    true,
		Outputs: []Output{
			{ScriptPublicKeyAddress: otherAddr, Amount: 150000000},
			{ScriptPublicKeyAddress: userAddr, Amount: 49990000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "abc123-0", txs[0].ID)
	assert.Equal(t, models.TypeSend, txs[0].Type)
	assert.Equal(t, "1.5", txs[0].SentQuantity)

	assert.Equal(t, "abc123-1", txs[1].ID)
	assert.Equal(t, models.TypeReceive, txs[1].Type)
	assert.Equal(t, "0.4999", txs[1].ReceivedQuantity)
	assert.Equal(t, "KAS", txs[1].ReceivedCurrency)
	assert.Empty(t, txs[1].SentQuantity)
	assert.Empty(t, txs[1].FeeAmount)
	assert.Equal(t, "receive", txs[1].Tag)
}

func TestNormalizeTransactionPureReceive(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{
		TransactionID: "def456",
		BlockTime:     1700000000000,
		IsAccepted:    true,
		Outputs: []Output{
			{ScriptPublicKeyAddress: userAddr, Amount: 500000000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, "5", tx.ReceivedQuantity)
	assert.Equal(t, "KAS", tx.ReceivedCurrency)
	assert.Empty(t, tx.SentQuantity)
	assert.Empty(t, tx.FeeAmount)
	assert.Equal(t, models.TypeReceive, tx.Type)
	assert.Equal(t, "receive", tx.Tag)
}

func TestNormalizeTransactionNotAcceptedIsPending(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{
		TransactionID: "ghi789",
		BlockTime:     1700000000000,
		IsAccepted:    false,
		Outputs: []Output{
			{ScriptPublicKeyAddress: userAddr, Amount: 100000000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.StatusPending, txs[0].Status)
}

func TestNormalizeTransactionSubnetworkCall(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{
		TransactionID: "sub1",
		BlockTime:     1700000000000,
		IsAccepted:    true,
		SubnetworkID:  "0000000000000000000000000000000000000001",
		Outputs: []Output{
			{ScriptPublicKeyAddress: otherAddr, Amount: 100000000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TypeContractInteraction, txs[0].Type)
	assert.Empty(t, txs[0].Tag)
}

func TestNormalizeTransactionNoUserFlow(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{
		TransactionID: "none1",
		BlockTime:     1700000000000,
		IsAccepted:    true,
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TypeUnknown, txs[0].Type)
	assert.Empty(t, txs[0].SentQuantity)
	assert.Empty(t, txs[0].ReceivedQuantity)
	assert.Equal(t, "none1", txs[0].ID)
}

func TestNormalizeTransactionMissingID(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	rec := &RawTransaction{BlockTime: 1700000000000}

	_, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTransactionID)
}

func TestNormalizeTransactionWithFeeTracer(t *testing.T) {
	source := &fakeOutpointSource{amounts: map[string]uint64{
		"prev1:0": 100000000,
		"prev2:1": 100000000,
	}}
	tracer := NewFeeTracer(source, nil, 1000, 1000)
	adapter := NewAdapter(kasSpec(), tracer)
	rec := &RawTransaction{
		TransactionID: "fee1",
		BlockTime:     1700000000000,
		IsAccepted:    true,
		Inputs: []Input{
			{PreviousOutpointHash: "prev1", PreviousOutpointIndex: 0},
			{PreviousOutpointHash: "prev2", PreviousOutpointIndex: 1},
		},
		Outputs: []Output{
			{ScriptPublicKeyAddress: otherAddr, Amount: 150000000},
			{ScriptPublicKeyAddress: userAddr, Amount: 49990000},
		},
	}

	txs, err := adapter.NormalizeTransaction(context.Background(), rec, userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	// fee = 200000000 - 199990000 = 10000 sompi
	assert.Equal(t, "0.0001", txs[0].FeeAmount)
	assert.Equal(t, "KAS", txs[0].FeeCurrency)
}

func TestParseSkipsRecordsWithoutID(t *testing.T) {
	adapter := NewAdapter(kasSpec(), nil)
	payload := `[
		{"transactionId":"ok1","blockTime":1700000000000,"isAccepted":true,
		 "outputs":[{"scriptPublicKeyAddress":"kaspa:qqself","amount":100000000}]},
		{"blockTime":1700000000000,"isAccepted":true,
		 "outputs":[{"scriptPublicKeyAddress":"kaspa:qqself","amount":100000000}]}
	]`

	txs, err := adapter.Parse(context.Background(), strings.NewReader(payload), userAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "ok1", txs[0].ID)
}
