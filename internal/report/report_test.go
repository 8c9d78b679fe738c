package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/predmarkets/internal/market"
)

// stubFetcher returns canned platform reports.
type stubFetcher struct {
	polymarket market.PlatformReport
	manifold   market.PlatformReport
	kalshi     market.PlatformReport
}

func (s *stubFetcher) Polymarket(context.Context, market.Window) market.PlatformReport {
	return s.polymarket
}
func (s *stubFetcher) Manifold(context.Context, market.Window) market.PlatformReport {
	return s.manifold
}
func (s *stubFetcher) Kalshi(context.Context, market.Window) market.PlatformReport {
	return s.kalshi
}

func okReport(value float64) market.PlatformReport {
	return market.PlatformReport{
		Primary: market.PrimaryMetric{
			Name:         "当日成交合约总量",
			Value:        &value,
			Unit:         "USDC",
			SourceMetric: "test",
		},
		Derived:   map[string]any{"traded_contract_entries": 5},
		Auxiliary: map[string]any{"new_market_count": nil, "new_contract_listing_count": nil},
		Status:    market.StatusPartial,
		Note:      "test note",
	}
}

func missingReport() market.PlatformReport {
	return market.PlatformReport{
		Primary:   market.PrimaryMetric{Name: "当日成交合约总量", Unit: "接口失败", SourceMetric: "n/a"},
		Derived:   map[string]any{},
		Auxiliary: map[string]any{"new_market_count": nil, "new_contract_listing_count": nil},
		Status:    market.StatusMissing,
		Note:      "down",
	}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	}
}

func TestBuildCompleteness(t *testing.T) {
	fetcher := &stubFetcher{
		polymarket: okReport(100.5),
		manifold:   okReport(200),
		kalshi:     missingReport(),
	}
	gen := NewGenerator(fetcher, time.UTC).WithClock(fixedClock())

	r := gen.Build(context.Background())

	assert.Equal(t, "2/3", r.Completeness)
	assert.Equal(t, "2026-08-30", r.DateShanghai)
	assert.Equal(t, "UTC", r.Timezone)
	assert.Equal(t, "today_traded_contract_volume_primary", r.Metric)
	assert.Len(t, r.Platforms, 3)
}

func TestWriteProducesAllArtifacts(t *testing.T) {
	fetcher := &stubFetcher{
		polymarket: okReport(100.5),
		manifold:   okReport(200),
		kalshi:     okReport(300),
	}
	gen := NewGenerator(fetcher, time.UTC).WithClock(fixedClock())
	r := gen.Build(context.Background())

	repoPath := t.TempDir()
	var stdout bytes.Buffer
	require.NoError(t, gen.Write(repoPath, r, &stdout))

	dataJSON, err := os.ReadFile(filepath.Join(repoPath, DataJSONPath))
	require.NoError(t, err)
	rootJSON, err := os.ReadFile(filepath.Join(repoPath, RootJSONPath))
	require.NoError(t, err)

	// Root duplicate is byte-identical to the data file.
	assert.Equal(t, dataJSON, rootJSON)

	var decoded Report
	require.NoError(t, json.Unmarshal(dataJSON, &decoded))
	assert.Equal(t, "3/3", decoded.Completeness)

	html, err := os.ReadFile(filepath.Join(repoPath, HTMLPath))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Polymarket")
	assert.Contains(t, string(html), "Kalshi")

	// The payload is echoed to stdout for cron summary consumers.
	assert.True(t, strings.Contains(stdout.String(), `"completeness": "3/3"`))
}

func TestWriteStableForIdenticalInput(t *testing.T) {
	fetcher := &stubFetcher{
		polymarket: okReport(100.5),
		manifold:   okReport(200),
		kalshi:     okReport(300),
	}
	gen := NewGenerator(fetcher, time.UTC).WithClock(fixedClock())
	r := gen.Build(context.Background())

	repoPath := t.TempDir()
	require.NoError(t, gen.Write(repoPath, r, nil))
	first, err := os.ReadFile(filepath.Join(repoPath, RootJSONPath))
	require.NoError(t, err)

	// A second run over identical data produces identical bytes; the publish
	// pipeline relies on this for its no-op path.
	require.NoError(t, gen.Write(repoPath, gen.Build(context.Background()), nil))
	second, err := os.ReadFile(filepath.Join(repoPath, RootJSONPath))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567", formatInt(1234567))
	assert.Equal(t, "12", formatInt(12))
	assert.Equal(t, "1,234.50", formatFloat(1234.5))
	assert.Equal(t, "1,000,000", formatFloat(1000000))
	assert.Equal(t, "—", formatCount(nil))
	assert.Equal(t, "42", formatCount(42))
}
