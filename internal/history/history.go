// Package history maintains the rolling 90-day daily-history dataset: one
// record per (date, platform), trimmed to recent dates with known values.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/openclaw/predmarkets/internal/logfields"
	"github.com/openclaw/predmarkets/internal/market"
)

// Artifact paths relative to the repository root.
const (
	DataJSONPath = "data/prediction-markets-daily-history.json"
	HTMLPath     = "prediction-markets-daily.html"
)

// retainDays is the coverage window: today plus the 89 prior days.
const retainDays = 89

// Record is one platform's daily total for one date.
type Record struct {
	Date            string   `json:"date"`
	Platform        string   `json:"platform"`
	DailyTotalValue *float64 `json:"daily_total_value"`
	Unit            string   `json:"unit"`
	Source          string   `json:"source"`
	Method          string   `json:"method"`
	Status          string   `json:"status"`
}

// Coverage is the date span of the retained records.
type Coverage struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Payload is the persisted dataset.
type Payload struct {
	Dataset     string   `json:"dataset"`
	Timezone    string   `json:"timezone"`
	GeneratedAt string   `json:"generated_at"`
	Coverage    Coverage `json:"coverage"`
	Records     []Record `json:"records"`
}

// Fetcher supplies the daily values for the history dataset. *market.Client is
// the production implementation.
type Fetcher interface {
	Polymarket(ctx context.Context, w market.Window) market.PlatformReport
	Manifold(ctx context.Context, w market.Window) market.PlatformReport
	KalshiPublished(ctx context.Context, todayLocal string) market.PublishedDaily
}

// Updater loads, refreshes, and persists the history dataset.
type Updater struct {
	fetcher  Fetcher
	location *time.Location
	now      func() time.Time
}

// NewUpdater creates a history updater for the given fetcher and zone.
func NewUpdater(fetcher Fetcher, loc *time.Location) *Updater {
	return &Updater{fetcher: fetcher, location: loc, now: time.Now}
}

// WithClock injects a clock (tests pin the reporting day).
func (u *Updater) WithClock(now func() time.Time) *Updater {
	u.now = now
	return u
}

// Run refreshes today's records, trims the dataset, writes both artifacts, and
// prints a one-line JSON summary of the latest values to out.
func (u *Updater) Run(ctx context.Context, repoPath string, out io.Writer) error {
	w := market.TodayWindow(u.location, u.now())
	today := w.LocalDate()

	records := Load(filepath.Join(repoPath, DataJSONPath))

	poly := u.fetcher.Polymarket(ctx, w)
	Upsert(&records, Record{
		Date:            today,
		Platform:        market.PlatformPolymarket,
		DailyTotalValue: poly.Primary.Value,
		Unit:            "USDC(volume24hr sum, proxy)",
		Source:          "https://gamma-api.polymarket.com/markets",
		Method:          poly.MethodDetail,
		Status:          string(poly.Status),
	})

	manifold := u.fetcher.Manifold(ctx, w)
	Upsert(&records, Record{
		Date:            today,
		Platform:        market.PlatformManifold,
		DailyTotalValue: manifold.Primary.Value,
		Unit:            "shares(today, paged)",
		Source:          "https://api.manifold.markets/v0/bets",
		Method:          manifold.MethodDetail,
		Status:          string(manifold.Status),
	})

	kalshi := u.fetcher.KalshiPublished(ctx, today)
	if kalshi.Date != "" {
		Upsert(&records, Record{
			Date:            kalshi.Date,
			Platform:        market.PlatformKalshi,
			DailyTotalValue: kalshi.Value,
			Unit:            "USD(trading_volume_change, T+1)",
			Source:          "https://www.kalshidata.com/api/analytics/historical-snapshots",
			Method:          kalshi.Method,
			Status:          string(kalshi.Status),
		})
	}

	cutoff := cutoffDate(today)
	trimmed := Trim(records, cutoff)
	payload := &Payload{
		Dataset:     "prediction_markets_daily_history",
		Timezone:    u.location.String(),
		GeneratedAt: w.NowLocal.Format(time.RFC3339),
		Coverage:    Coverage{StartDate: cutoff, EndDate: today},
		Records:     trimmed,
	}

	if err := u.write(repoPath, payload); err != nil {
		return err
	}

	if out != nil {
		summary := map[string]any{
			"date":                  today,
			"polymarket":            poly.Primary.Value,
			"manifold":              manifold.Primary.Value,
			"kalshi_published_date": kalshi.Date,
			"kalshi":                kalshi.Value,
		}
		line, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		fmt.Fprintln(out, string(line))
	}
	return nil
}

func (u *Updater) write(repoPath string, payload *Payload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history payload: %w", err)
	}
	dataPath := filepath.Join(repoPath, DataJSONPath)
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(dataPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dataPath, err)
	}

	htmlPath := filepath.Join(repoPath, HTMLPath)
	if err := os.WriteFile(htmlPath, renderHTML(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	slog.Info("History written", logfields.Path(repoPath), logfields.Count(len(payload.Records)))
	return nil
}

// Load reads the existing records; a missing or unreadable file yields an
// empty dataset rather than an error.
func Load(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload.Records
}

// Upsert replaces the record matching (date, platform) or appends a new one.
func Upsert(records *[]Record, rec Record) {
	for i, r := range *records {
		if r.Date == rec.Date && r.Platform == rec.Platform {
			(*records)[i] = rec
			return
		}
	}
	*records = append(*records, rec)
}

// Trim sorts by (date, platform) and keeps records at or after the cutoff with
// known values.
func Trim(records []Record, cutoff string) []Record {
	trimmed := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date >= cutoff && r.DailyTotalValue != nil {
			trimmed = append(trimmed, r)
		}
	}
	sort.Slice(trimmed, func(i, j int) bool {
		if trimmed[i].Date != trimmed[j].Date {
			return trimmed[i].Date < trimmed[j].Date
		}
		return trimmed[i].Platform < trimmed[j].Platform
	})
	return trimmed
}

// cutoffDate returns the ISO date retainDays before the given ISO date.
func cutoffDate(today string) string {
	d, err := time.Parse("2006-01-02", today)
	if err != nil {
		return today
	}
	return d.AddDate(0, 0, -retainDays).Format("2006-01-02")
}
