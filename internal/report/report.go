// Package report assembles and writes the daily prediction-market report:
// a JSON payload (written twice, under data/ and at the repo root) and a
// self-contained HTML dashboard.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openclaw/predmarkets/internal/logfields"
	"github.com/openclaw/predmarkets/internal/market"
	"github.com/openclaw/predmarkets/internal/metrics"
)

// Artifact paths relative to the repository root.
const (
	DataJSONPath = "data/prediction-markets-today.json"
	RootJSONPath = "prediction-markets-today.json"
	HTMLPath     = "prediction-markets-today.html"
)

// Fetcher supplies per-platform reports. *market.Client is the production
// implementation; tests substitute stubs.
type Fetcher interface {
	Polymarket(ctx context.Context, w market.Window) market.PlatformReport
	Manifold(ctx context.Context, w market.Window) market.PlatformReport
	Kalshi(ctx context.Context, w market.Window) market.PlatformReport
}

// WindowBounds is the reporting window in both zones, serialized verbatim.
type WindowBounds struct {
	StartLocal string `json:"start_local"`
	EndLocal   string `json:"end_local"`
	StartUTC   string `json:"start_utc"`
	EndUTC     string `json:"end_utc"`
}

// Report is the published JSON payload.
type Report struct {
	Metric       string                           `json:"metric"`
	Timezone     string                           `json:"timezone"`
	DateShanghai string                           `json:"date_shanghai"`
	Window       WindowBounds                     `json:"window"`
	GeneratedAt  string                           `json:"generated_at"`
	Definition   map[string]string                `json:"definition"`
	Platforms    map[string]market.PlatformReport `json:"platforms"`
	Completeness string                           `json:"completeness"`
}

// Generator builds and writes today's report.
type Generator struct {
	fetcher  Fetcher
	location *time.Location
	recorder metrics.Recorder
	now      func() time.Time
}

// NewGenerator creates a report generator for the given fetcher and zone.
func NewGenerator(fetcher Fetcher, loc *time.Location) *Generator {
	return &Generator{
		fetcher:  fetcher,
		location: loc,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// WithRecorder injects a metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithClock injects a clock (tests pin the reporting day).
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build fetches all platforms and assembles the payload. A platform whose API
// fails contributes a "missing" block; it never aborts the report.
func (g *Generator) Build(ctx context.Context) *Report {
	w := market.TodayWindow(g.location, g.now())

	platforms := map[string]market.PlatformReport{
		market.PlatformPolymarket: g.fetcher.Polymarket(ctx, w),
		market.PlatformManifold:   g.fetcher.Manifold(ctx, w),
		market.PlatformKalshi:     g.fetcher.Kalshi(ctx, w),
	}

	complete := 0
	for name, p := range platforms {
		g.recorder.IncPlatformFetch(name, string(p.Status))
		slog.Info("Platform fetched", logfields.Platform(name), logfields.Status(string(p.Status)))
		if p.Status != market.StatusMissing {
			complete++
		}
	}

	return &Report{
		Metric:       "today_traded_contract_volume_primary",
		Timezone:     g.location.String(),
		DateShanghai: w.LocalDate(),
		Window: WindowBounds{
			StartLocal: w.StartLocal.Format(time.RFC3339),
			EndLocal:   w.EndLocal.Format(time.RFC3339),
			StartUTC:   w.StartUTC.Format(time.RFC3339),
			EndUTC:     w.EndUTC.Format(time.RFC3339),
		},
		GeneratedAt: w.NowLocal.Format(time.RFC3339),
		Definition: map[string]string{
			"primary":   "当日成交合约总量（Kalshi主口径=公开日度总值T+1）",
			"auxiliary": "新增市场/新增合约条目（listing口径）",
			"note":      "Kalshi展示最新已公布交易日整数contracts并标注日期；Robinhood=Kalshi×0.5（整数）；跨平台单位不可直接求和",
		},
		Platforms:    platforms,
		Completeness: fmt.Sprintf("%d/3", complete),
	}
}

// Write persists the payload twice (data/ and repo root) plus the HTML page,
// creating data/ if needed, and echoes the JSON to out for cron summaries.
func (g *Generator) Write(repoPath string, r *Report, out io.Writer) error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dataPath := filepath.Join(repoPath, DataJSONPath)
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	for _, path := range []string{dataPath, filepath.Join(repoPath, RootJSONPath)} {
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	html, err := renderHTML(r)
	if err != nil {
		return fmt.Errorf("failed to render report HTML: %w", err)
	}
	htmlPath := filepath.Join(repoPath, HTMLPath)
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}

	if out != nil {
		fmt.Fprintln(out, string(payload))
	}
	slog.Info("Report written", logfields.Path(repoPath), slog.String("date", r.DateShanghai))
	return nil
}
