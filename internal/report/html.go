package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/openclaw/predmarkets/internal/market"
)

// card is the per-platform view model for the HTML template.
type card struct {
	Name          string
	Class         string
	Focus         bool
	Status        string
	Value         string
	Unit          string
	SourceMetric  string
	NewMarkets    string
	NewContracts  string
	PublishedDate string
	Robinhood     string
	Note          string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang='zh-CN'>
<head>
<meta charset='utf-8'>
<meta name='viewport' content='width=device-width, initial-scale=1'>
<title>预测市场日报（主指标：当日成交合约总量）</title>
<style>
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:980px;margin:0 auto;padding:14px;background:#fafafa;color:#111}
.h{font-size:20px;font-weight:700;margin:6px 0 10px}
.meta{font-size:13px;color:#444;margin-bottom:10px}
.box{background:#fff;border:1px solid #e6e6e6;border-radius:12px;padding:12px;margin:10px 0;line-height:1.45}
.grid{display:grid;grid-template-columns:1fr;gap:10px}
.card{background:#fff;border:1px solid #e7e7e7;border-radius:12px;padding:12px}
.card h3{margin:0 0 8px;font-size:16px;display:flex;justify-content:space-between;align-items:center}
.card.kalshi{border:2px solid #9b5cff;background:linear-gradient(180deg,#faf6ff,#fff)}
.focus{display:inline-block;font-size:11px;color:#6b2bd9;background:#f1e8ff;border:1px solid #d6bfff;border-radius:999px;padding:3px 8px;margin-bottom:6px}
.big{font-size:28px;font-weight:800;line-height:1.1;word-break:break-word}
.sub{font-size:12px;color:#666;margin-top:2px;margin-bottom:8px;word-break:break-word}
ul{padding-left:18px;margin:6px 0 0} li{margin:4px 0;font-size:13px;line-height:1.45}
.tag{font-size:11px;padding:2px 6px;border-radius:999px;border:1px solid #ddd;background:#f7f7f7}
.tag.partial{background:#fff6e8;border-color:#f1d39f} .tag.missing{background:#ffeef0;border-color:#ffccd5} .tag.ok{background:#eaf7ea;border-color:#bce0bc}
@media (min-width: 860px){.grid{grid-template-columns:1fr 1fr 1fr}}
</style>
</head>
<body>
<div class='h'>预测市场日报：主指标=当日成交合约总量</div>
<div class='meta'>日期：<b>{{.Report.DateShanghai}}</b> ｜ 生成：{{.Report.GeneratedAt}} ｜ 完整性：{{.Report.Completeness}}</div>
<div class='box'><b>口径说明</b>：
主指标为“当日成交合约总量”。Kalshi主口径切换为<b>公开日度总值（T+1）</b>，展示“最新已公布交易日”的整数contracts，并标注该日期；Robinhood同步展示反推值（Kalshi×0.5，整数）。不同平台单位不同，<b>不做跨平台直接加总</b>。
</div>
<div class='grid'>
{{- range .Cards}}
<section class='{{.Class}}'>
  <h3>{{.Name}} <span class='tag {{.Status}}'>{{.Status}}</span></h3>
  {{- if .Focus}}
  <div class='focus'>Kalshi主值（优先展示）</div>
  {{- end}}
  <div class='big'>{{.Value}}</div>
  <div class='sub'>{{.Unit}}</div>
  <ul>
    <li><b>主指标来源：</b>{{.SourceMetric}}</li>
    <li><b>辅助-新增市场：</b>{{.NewMarkets}}</li>
    <li><b>辅助-新增合约条目：</b>{{.NewContracts}}</li>
    {{- if .PublishedDate}}
    <li><b>公布交易日：</b>{{.PublishedDate}}</li>
    {{- end}}
    {{- if .Robinhood}}
    <li><b>Robinhood反推：</b>{{.Robinhood}} contracts（=Kalshi×0.5，整数）</li>
    {{- end}}
    <li><b>说明：</b>{{.Note}}</li>
  </ul>
</section>
{{- end}}
</div>
</body></html>
`))

func renderHTML(r *Report) ([]byte, error) {
	cards := make([]card, 0, len(market.Platforms))
	for _, name := range market.Platforms {
		p := r.Platforms[name]
		c := card{
			Name:         name,
			Class:        "card",
			Status:       string(p.Status),
			Unit:         p.Primary.Unit,
			SourceMetric: p.Primary.SourceMetric,
			NewMarkets:   formatCount(p.Auxiliary["new_market_count"]),
			NewContracts: formatCount(p.Auxiliary["new_contract_listing_count"]),
			Note:         p.Note,
		}
		if p.Primary.Value == nil {
			c.Value = "接口失败"
		} else if name == market.PlatformKalshi {
			c.Value = formatInt(int64(*p.Primary.Value))
		} else {
			c.Value = formatFloat(*p.Primary.Value)
		}
		if name == market.PlatformKalshi {
			c.Class = "card kalshi"
			c.Focus = true
			if d, ok := p.Derived["published_date"].(string); ok {
				c.PublishedDate = d
			}
			if rh, ok := asInt(p.Auxiliary["robinhood_inferred_contracts"]); ok {
				c.Robinhood = formatInt(int64(rh))
			}
		}
		cards = append(cards, c)
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Report *Report
		Cards  []card
	}{Report: r, Cards: cards})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCount(v any) string {
	if n, ok := asInt(v); ok {
		return formatInt(int64(n))
	}
	return "—"
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// formatInt renders an integer with thousands separators.
func formatInt(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var buf bytes.Buffer
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf.WriteByte(',')
		}
		buf.WriteRune(ch)
	}
	if neg {
		return "-" + buf.String()
	}
	return buf.String()
}

// formatFloat renders a value with thousands separators, keeping decimals only
// when present.
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return formatInt(int64(v))
	}
	s := fmt.Sprintf("%.2f", v)
	if i := bytes.IndexByte([]byte(s), '.'); i >= 0 {
		var whole int64
		fmt.Sscanf(s[:i], "%d", &whole)
		return formatInt(whole) + s[i:]
	}
	return s
}
