package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/logger"
)

func sampleRecords() []contracts.OutputRecord {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	return []contracts.OutputRecord{
		{
			Item:   contracts.WorkItem{Ticker: "AAPL", Strategy: contracts.StrategyLongCall, Bias: contracts.BiasBullish, AsOf: asOf},
			Status: contracts.StatusSuccess,
		},
		{
			Item:   contracts.WorkItem{Ticker: "XYZ", Strategy: contracts.StrategyIronCondor, Bias: contracts.BiasNeutral, AsOf: asOf},
			Status: contracts.StatusFastReject,
			Reason: "no near-the-money liquidity",
		},
		{
			Item:   contracts.WorkItem{Ticker: "QQQ", Strategy: contracts.StrategyStraddle, Bias: contracts.BiasNeutral, AsOf: asOf},
			Status: contracts.StatusSuccess,
		},
	}
}

func TestBuild(t *testing.T) {
	rep := Build(sampleRecords(), "abc123")

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "abc123", rep.ConfigHash)
	assert.Equal(t, 3, rep.ItemCount)
	assert.Equal(t, 2, rep.Counts[contracts.StatusSuccess])
	assert.Equal(t, 1, rep.Counts[contracts.StatusFastReject])
	assert.Len(t, rep.Records, 3)
}

func TestWriteAndLoadLatest(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, logger.NewNop())

	rep := Build(sampleRecords(), "abc123")
	path, err := writer.Write(rep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, rep.RunID+".json"), path)

	// Both the run file and latest.json exist
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "latest.json"))
	require.NoError(t, err)

	got, err := LoadLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, got.RunID)
	assert.Equal(t, rep.ItemCount, got.ItemCount)
	assert.Equal(t, 2, got.Counts[contracts.StatusSuccess])
	require.Len(t, got.Records, 3)
	assert.Equal(t, "AAPL", got.Records[0].Item.Ticker)
}

func TestLoadLatest_Missing(t *testing.T) {
	_, err := LoadLatest(t.TempDir())
	require.Error(t, err)
}

func TestWrite_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	writer := NewWriter(dir, logger.NewNop())

	_, err := writer.Write(Build(sampleRecords(), "h"))
	require.NoError(t, err)
}
