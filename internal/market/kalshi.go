package market

import (
	"context"
	"fmt"
	"math"
	"sort"
)

type kalshiSnapshot struct {
	Date                       string   `json:"date"`
	TotalContractsTraded       *float64 `json:"total_contracts_traded"`
	TotalContractsTradedChange *float64 `json:"total_contracts_traded_change"`
	TradingVolume              *float64 `json:"trading_volume"`
	TradingVolumeChange        *float64 `json:"trading_volume_change"`
}

type kalshiSnapshots struct {
	Snapshots []kalshiSnapshot `json:"snapshots"`
}

// Kalshi reports the latest published trading day's daily contract total
// (T+1 public data), with the Robinhood proxy inferred at half of it.
func (c *Client) Kalshi(ctx context.Context, w Window) PlatformReport {
	published, err := c.kalshiPublishedSnapshots(ctx, w.LocalDate())
	if err != nil || len(published) == 0 {
		return PlatformReport{
			Primary: PrimaryMetric{Name: primaryNamePublished, Value: nil, Unit: "接口失败", SourceMetric: "n/a"},
			Derived: map[string]any{"method": "missing", "published_date": nil, "robinhood_inferred_contracts": nil},
			Auxiliary: map[string]any{
				"new_market_count":             nil,
				"new_contract_listing_count":   nil,
				"robinhood_inferred_contracts": nil,
			},
			Status:       StatusMissing,
			Note:         "Kalshi公开日度接口未返回可用历史快照。",
			MethodDetail: "Kalshi historical snapshots unavailable",
		}
	}

	latest := published[len(published)-1]

	dailyChange := latest.TotalContractsTradedChange
	if dailyChange == nil && len(published) >= 2 {
		prev := published[len(published)-2]
		diff := floatOrZero(latest.TotalContractsTraded) - floatOrZero(prev.TotalContractsTraded)
		dailyChange = &diff
	}

	kalshiMain := int(math.Round(floatOrZero(dailyChange)))
	robinhoodInferred := int(math.Round(float64(kalshiMain) * 0.5))

	return PlatformReport{
		Primary: PrimaryMetric{
			Name:         primaryNamePublished,
			Value:        floatPtr(float64(kalshiMain)),
			Unit:         "contracts（整数）",
			SourceMetric: "kalshidata historical-snapshots.total_contracts_traded_change",
		},
		Derived: map[string]any{
			"method":                       "published_daily_t_plus_1",
			"published_date":               latest.Date,
			"total_contracts_traded_cum":   intAny(int(math.Round(floatOrZero(latest.TotalContractsTraded)))),
			"robinhood_inferred_contracts": intAny(robinhoodInferred),
		},
		Auxiliary: map[string]any{
			"new_market_count":             nil,
			"new_contract_listing_count":   nil,
			"robinhood_inferred_contracts": intAny(robinhoodInferred),
		},
		Status: StatusOK,
		Note: fmt.Sprintf("采用公开日度口径（T+1）：展示最新已公布交易日 %s 的Kalshi日度总值=%d contracts；Robinhood反推=%d（=Kalshi×0.5，整数）。",
			latest.Date, kalshiMain, robinhoodInferred),
		MethodDetail: "published_daily_t_plus_1 from kalshidata historical-snapshots.total_contracts_traded_change",
	}
}

// KalshiPublished returns the latest published trading day's USD volume change
// for the daily history dataset (comparable with Polymarket USDC volume).
func (c *Client) KalshiPublished(ctx context.Context, todayLocal string) PublishedDaily {
	published, err := c.kalshiPublishedSnapshots(ctx, todayLocal)
	if err != nil || len(published) == 0 {
		return PublishedDaily{Status: StatusMissing, Method: "Kalshi historical snapshots unavailable"}
	}

	latest := published[len(published)-1]
	daily := latest.TradingVolumeChange
	if daily == nil && len(published) >= 2 {
		prev := published[len(published)-2]
		diff := floatOrZero(latest.TradingVolume) - floatOrZero(prev.TradingVolume)
		daily = &diff
	}
	if daily == nil {
		return PublishedDaily{Date: latest.Date, Status: StatusMissing, Method: "Kalshi trading volume daily change missing"}
	}
	rounded := math.Round(*daily*100) / 100
	return PublishedDaily{
		Date:   latest.Date,
		Value:  &rounded,
		Status: StatusOK,
		Method: "published_daily_t_plus_1 from kalshidata historical-snapshots.trading_volume_change",
	}
}

// kalshiPublishedSnapshots fetches the snapshots published strictly before the
// current local date, sorted ascending by date.
func (c *Client) kalshiPublishedSnapshots(ctx context.Context, todayLocal string) ([]kalshiSnapshot, error) {
	var snapshots kalshiSnapshots
	if err := c.getJSON(ctx, c.kalshiURL, &snapshots); err != nil {
		return nil, err
	}
	published := make([]kalshiSnapshot, 0, len(snapshots.Snapshots))
	for _, s := range snapshots.Snapshots {
		if s.Date != "" && s.Date < todayLocal {
			published = append(published, s)
		}
	}
	sort.Slice(published, func(i, j int) bool { return published[i].Date < published[j].Date })
	return published, nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
