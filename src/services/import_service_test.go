package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/chainfolio/backend/src/database"
	"github.com/username/chainfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestService(t *testing.T) ImportService {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
	return NewImportService(cache.New(DefaultCacheExpiration, CacheCleanupInterval))
}

const ethPayload = `[
	{"from":"0xA","to":"0xB","value":"2000000000000000000","input":"0x","gasUsed":"21000","gasPrice":"1000000000","timeStamp":"1700000000","hash":"0xdead","txreceipt_status":"1"},
	{"from":"0xC","to":"0xA","value":"500000000000000000","input":"0x","gasUsed":"21000","gasPrice":"1000000000","timeStamp":"1700000100","hash":"0xbeef","txreceipt_status":"1"},
	{"from":"0xA","to":"0xcontract","value":"0","input":"0xdeadbeef","gasUsed":"90000","gasPrice":"1000000000","timeStamp":"1700000200","hash":"0xcafe","txreceipt_status":"1"}
]`

func TestProcessImport(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ProcessImport(context.Background(), strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, "ethereum", result.Chain)
	assert.Equal(t, "0xA", result.Wallet)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	// The bare contract call has no tax label.
	assert.Equal(t, 1, result.Unclassified)

	txs, err := svc.GetTransactions(context.Background(), "0xA")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	// Newest first.
	assert.Equal(t, "0xcafe", txs[0].ID)
	assert.Equal(t, "0xbeef", txs[1].ID)
	assert.Equal(t, "0xdead", txs[2].ID)

	// Round trip through storage preserves the normalized fields.
	assert.Equal(t, "0.5", txs[1].ReceivedQuantity)
	assert.Equal(t, "ETH", txs[1].ReceivedCurrency)
	assert.Equal(t, "2", txs[2].SentQuantity)
	assert.Equal(t, "0.000021", txs[2].FeeAmount)
	assert.Equal(t, "payment", txs[2].Tag)
}

func TestProcessImportDeduplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Duplicates)

	txs, err := svc.GetTransactions(ctx, "0xA")
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestProcessImportIsolatesWallets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// The same on-chain transactions viewed by the counterparty are a
	// distinct wallet's rows, not duplicates.
	_, err := svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)
	result, err := svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xB", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	txsA, err := svc.GetTransactions(ctx, "0xA")
	require.NoError(t, err)
	txsB, err := svc.GetTransactions(ctx, "0xB")
	require.NoError(t, err)
	assert.Len(t, txsA, 3)
	assert.Len(t, txsB, 3)

	// Direction flips with the viewing wallet.
	assert.Equal(t, "2", txsA[2].SentQuantity)
	assert.Equal(t, "2", txsB[2].ReceivedQuantity)
}

func TestProcessImportUnknownChain(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessImport(context.Background(), strings.NewReader("[]"), "0xA", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestProcessImportMalformedPayload(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessImport(context.Background(), strings.NewReader("{not json"), "0xA", "ethereum")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestProcessImportEmptyPayload(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ProcessImport(context.Background(), strings.NewReader("[]"), "0xA", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.NotEmpty(t, result.BatchID)
}

func TestProcessImportInvalidatesCache(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Prime the cache with the empty wallet.
	txs, err := svc.GetTransactions(ctx, "0xA")
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)

	txs, err = svc.GetTransactions(ctx, "0xA")
	require.NoError(t, err)
	assert.Len(t, txs, 3, "import must invalidate the cached result")
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessImport(ctx, strings.NewReader(ethPayload), "0xA", "ethereum")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, "0xA"))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Transaction Hash", rows[0][9])
	assert.Equal(t, "0xcafe", rows[1][9])
	assert.Equal(t, "11/14/2023 22:16:40", rows[1][0])
	assert.Equal(t, "0xdead", rows[3][9])
	assert.Equal(t, "11/14/2023 22:13:20", rows[3][0])
}
