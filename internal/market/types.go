// Package market fetches daily activity totals from the public APIs of the
// tracked prediction-market platforms. Each platform reports a primary metric
// in its own unit; values are never summed across platforms.
package market

// Platform names, also used as JSON keys and metric labels.
const (
	PlatformPolymarket = "Polymarket"
	PlatformManifold   = "Manifold"
	PlatformKalshi     = "Kalshi"
)

// Platforms lists the tracked platforms in report order.
var Platforms = []string{PlatformPolymarket, PlatformManifold, PlatformKalshi}

// Status classifies the quality of a platform's fetched value.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusMissing Status = "missing"
)

// Primary metric display names. The published report is consumed by a
// Chinese-language dashboard, so these are part of the data contract.
const (
	primaryNameToday     = "当日成交合约总量"
	primaryNamePublished = "最新已公布交易日成交合约总量"
)

// PrimaryMetric is a platform's headline value.
type PrimaryMetric struct {
	Name         string   `json:"name"`
	Value        *float64 `json:"value"`
	Unit         string   `json:"unit"`
	SourceMetric string   `json:"source_metric"`
}

// PlatformReport mirrors the per-platform block of the published JSON. Derived
// and auxiliary fields vary by platform, so they stay schemaless.
type PlatformReport struct {
	Primary   PrimaryMetric  `json:"primary"`
	Derived   map[string]any `json:"derived"`
	Auxiliary map[string]any `json:"auxiliary"`
	Status    Status         `json:"status"`
	Note      string         `json:"note"`

	// MethodDetail is the descriptive method string the daily-history dataset
	// records (fetch counts on success, the failure reason otherwise). The
	// today report does not publish it.
	MethodDetail string `json:"-"`
}

// PublishedDaily is a T+1 published daily total (Kalshi public data), keyed by
// the trading date it was published for.
type PublishedDaily struct {
	Date   string
	Value  *float64
	Status Status
	Method string
}

func floatPtr(v float64) *float64 { return &v }
func intAny(v int) any            { return v }

// missingReport builds the standard block for a platform whose API failed.
func missingReport(name, note, methodDetail string) PlatformReport {
	return PlatformReport{
		Primary: PrimaryMetric{Name: name, Value: nil, Unit: "接口失败", SourceMetric: "n/a"},
		Derived: map[string]any{"traded_contract_entries": nil},
		Auxiliary: map[string]any{
			"new_market_count":           nil,
			"new_contract_listing_count": nil,
		},
		Status:       StatusMissing,
		Note:         note,
		MethodDetail: methodDetail,
	}
}
