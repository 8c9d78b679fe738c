package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	manifoldBetLimit    = 500
	manifoldBetMaxPages = 4
	manifoldMktLimit    = 1000
)

type manifoldBet struct {
	CreatedTime int64   `json:"createdTime"` // epoch millis
	Shares      float64 `json:"shares"`
	ContractID  string  `json:"contractId"`
}

type manifoldMarket struct {
	CreatedTime int64  `json:"createdTime"`
	OutcomeType string `json:"outcomeType"`
}

// Manifold pages backwards through recent bets and sums the absolute shares
// traded inside the window, plus listing counts from the recent markets feed.
func (c *Client) Manifold(ctx context.Context, w Window) PlatformReport {
	volume := decimal.Zero
	contracts := map[string]struct{}{}
	scanned := 0
	var before *int64

	for page := 0; page < manifoldBetMaxPages; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(manifoldBetLimit))
		if before != nil {
			params.Set("beforeTime", strconv.FormatInt(*before, 10))
		}

		var bets []manifoldBet
		if err := c.getJSON(ctx, c.manifoldBetsURL+"?"+params.Encode(), &bets); err != nil {
			break
		}
		if len(bets) == 0 {
			break
		}
		scanned += len(bets)

		var minTS *int64
		stop := false
		for _, b := range bets {
			ts := b.CreatedTime
			if minTS == nil || ts < *minTS {
				minTS = &ts
			}
			created := time.UnixMilli(ts).UTC()
			if created.Before(w.StartUTC) {
				stop = true
				continue
			}
			volume = volume.Add(decimal.NewFromFloat(b.Shares).Abs())
			if b.ContractID != "" {
				contracts[b.ContractID] = struct{}{}
			}
		}
		if minTS == nil {
			break
		}
		next := *minTS - 1
		before = &next
		if stop {
			break
		}
	}

	if scanned == 0 {
		return missingReport(primaryNameToday, "Manifold接口失败。", "Manifold bets API failed")
	}

	newMarkets, newContracts := c.manifoldListingCounts(ctx, w)

	value, _ := volume.Round(2).Float64()
	return PlatformReport{
		Primary: PrimaryMetric{
			Name:         primaryNameToday,
			Value:        floatPtr(value),
			Unit:         "shares(today, paged)",
			SourceMetric: "sum(abs(bets.shares))",
		},
		Derived: map[string]any{
			"traded_contract_entries": intAny(len(contracts)),
			"bets_scanned":            intAny(scanned),
		},
		Auxiliary: map[string]any{
			"new_market_count":           newMarkets,
			"new_contract_listing_count": newContracts,
		},
		Status:       StatusPartial,
		Note:         fmt.Sprintf("分页扫描%d条bets，累加当日shares绝对值近似。", scanned),
		MethodDetail: fmt.Sprintf("sum(abs(bets.shares)) from paged recent bets, scanned=%d", scanned),
	}
}

// manifoldListingCounts counts markets created inside the window; a binary
// market lists two contract entries, everything else one. Failure leaves the
// auxiliary counts null rather than degrading the primary value.
func (c *Client) manifoldListingCounts(ctx context.Context, w Window) (any, any) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(manifoldMktLimit))

	var markets []manifoldMarket
	if err := c.getJSON(ctx, c.manifoldMktsURL+"?"+params.Encode(), &markets); err != nil {
		return nil, nil
	}

	newMarkets := 0
	newContracts := 0
	for _, m := range markets {
		created := time.UnixMilli(m.CreatedTime).UTC()
		if created.Before(w.StartUTC) {
			continue
		}
		newMarkets++
		if strings.EqualFold(m.OutcomeType, "BINARY") {
			newContracts += 2
		} else {
			newContracts++
		}
	}
	return intAny(newMarkets), intAny(newContracts)
}
