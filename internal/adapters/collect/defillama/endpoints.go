package defillama

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"narrativeradar/internal/core/signals"
)

const (
	tvlWindow      = 14
	protocolsTop   = 30
	feesTop        = 20
	dexTop         = 10
	stablecoinsTop = 10
	bridgesTop     = 5
	overviewQuery  = "?excludeTotalDataChart=true&excludeTotalDataChartBreakdown=true"
)

// round2 rounds half away from zero to two decimals
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func hasChain(chains []string) bool { return slices.Contains(chains, chain) }

type tvlPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

// TVL returns the chain's TVL over the last fourteen daily points
func (c *Collector) TVL(ctx context.Context) (signals.TVL, error) {
	var pts []tvlPoint
	if err := c.get(ctx, Upstream, c.baseURL+"/v2/historicalChainTvl/"+chain, &pts); err != nil {
		return signals.TVL{}, err
	}
	return tvlFrom(pts), nil
}

func tvlFrom(pts []tvlPoint) signals.TVL {
	if len(pts) == 0 {
		return signals.TVL{}
	}
	if len(pts) > tvlWindow {
		pts = pts[len(pts)-tvlWindow:]
	}
	cur, prev := pts[len(pts)-1].TVL, pts[0].TVL
	out := signals.TVL{
		CurrentUSD:   math.Round(cur),
		Prev14dUSD:   math.Round(prev),
		Change14dPct: round2((cur - prev) / math.Max(prev, 1) * 100),
		Daily:        make([]signals.TVLPoint, 0, len(pts)),
	}
	for _, p := range pts {
		out.Daily = append(out.Daily, signals.TVLPoint{
			Date: time.Unix(p.Date, 0).UTC().Format("2006-01-02"),
			TVL:  math.Round(p.TVL),
		})
	}
	return out
}

type protocolItem struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	TVL      float64  `json:"tvl"`
	Change1d float64  `json:"change_1d"`
	Change7d float64  `json:"change_7d"`
	Slug     string   `json:"slug"`
	Chains   []string `json:"chains"`
}

// Protocols returns the chain's largest protocols by TVL
func (c *Collector) Protocols(ctx context.Context) ([]signals.Protocol, error) {
	var items []protocolItem
	if err := c.get(ctx, Upstream, c.baseURL+"/protocols", &items); err != nil {
		return nil, err
	}
	return protocolsFrom(items), nil
}

func protocolsFrom(items []protocolItem) []signals.Protocol {
	var on []protocolItem
	for _, p := range items {
		if hasChain(p.Chains) {
			on = append(on, p)
		}
	}
	slices.SortStableFunc(on, func(a, b protocolItem) int { return cmp.Compare(b.TVL, a.TVL) })
	out := make([]signals.Protocol, 0, min(len(on), protocolsTop))
	for _, p := range on[:min(len(on), protocolsTop)] {
		out = append(out, signals.Protocol{
			Name:        p.Name,
			Category:    p.Category,
			TVLUSD:      math.Round(p.TVL),
			Change1dPct: round2(p.Change1d),
			Change7dPct: round2(p.Change7d),
			Slug:        p.Slug,
		})
	}
	return out
}

type overviewItem struct {
	Name     string  `json:"name"`
	Total24h float64 `json:"total24h"`
	Total7d  float64 `json:"total7d"`
	Change7d float64 `json:"change_7d"`
}

type overview struct {
	Total24h  float64        `json:"total24h"`
	Total7d   float64        `json:"total7d"`
	Change7d  float64        `json:"change_7d"`
	Protocols []overviewItem `json:"protocols"`
}

func byVolume(items []overviewItem) []overviewItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b overviewItem) int { return cmp.Compare(b.Total24h, a.Total24h) })
	return out
}

// Fees returns the top fee earners with non-zero 24h fees
func (c *Collector) Fees(ctx context.Context) ([]signals.Fee, error) {
	var ov overview
	if err := c.get(ctx, Upstream, c.baseURL+"/overview/fees/solana"+overviewQuery, &ov); err != nil {
		return nil, err
	}
	return feesFrom(ov), nil
}

func feesFrom(ov overview) []signals.Fee {
	sorted := byVolume(ov.Protocols)
	out := []signals.Fee{}
	for _, p := range sorted[:min(len(sorted), feesTop)] {
		if p.Total24h <= 0 {
			continue
		}
		out = append(out, signals.Fee{
			Name:        p.Name,
			Fees24h:     math.Round(p.Total24h),
			Fees7d:      math.Round(p.Total7d),
			Change7dPct: round2(p.Change7d),
		})
	}
	return out
}

// DEX returns chain-wide DEX volume and the busiest venues
func (c *Collector) DEX(ctx context.Context) (signals.DEXOverview, error) {
	var ov overview
	if err := c.get(ctx, Upstream, c.baseURL+"/overview/dexs/solana"+overviewQuery+"&dataType=dailyVolume", &ov); err != nil {
		return signals.DEXOverview{}, err
	}
	return dexFrom(ov), nil
}

func dexFrom(ov overview) signals.DEXOverview {
	sorted := byVolume(ov.Protocols)
	out := signals.DEXOverview{
		Total24hUSD: math.Round(ov.Total24h),
		Total7dUSD:  math.Round(ov.Total7d),
		Change7dPct: round2(ov.Change7d),
		TopDEXes:    make([]signals.DEX, 0, min(len(sorted), dexTop)),
	}
	for _, p := range sorted[:min(len(sorted), dexTop)] {
		out.TopDEXes = append(out.TopDEXes, signals.DEX{
			Name:        p.Name,
			Volume24h:   math.Round(p.Total24h),
			Change7dPct: round2(p.Change7d),
		})
	}
	return out
}

type peggedAsset struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	ChainCirculating map[string]struct {
		Current struct {
			PeggedUSD float64 `json:"peggedUSD"`
		} `json:"current"`
	} `json:"chainCirculating"`
}

// Stablecoins returns stablecoin supply circulating on the chain
func (c *Collector) Stablecoins(ctx context.Context) (signals.Stablecoins, error) {
	var body struct {
		PeggedAssets []peggedAsset `json:"peggedAssets"`
	}
	if err := c.get(ctx, StablecoinsUpstream, c.stablecoinsURL+"/stablecoins?includePrices=true", &body); err != nil {
		return signals.Stablecoins{}, err
	}
	return stablecoinsFrom(body.PeggedAssets), nil
}

func stablecoinsFrom(assets []peggedAsset) signals.Stablecoins {
	var on []signals.Stablecoin
	for _, a := range assets {
		circ, ok := a.ChainCirculating[chain]
		if !ok || circ.Current.PeggedUSD <= 0 {
			continue
		}
		on = append(on, signals.Stablecoin{Name: a.Name, Symbol: a.Symbol, MCapUSD: math.Round(circ.Current.PeggedUSD)})
	}
	slices.SortStableFunc(on, func(a, b signals.Stablecoin) int { return cmp.Compare(b.MCapUSD, a.MCapUSD) })
	out := signals.Stablecoins{Assets: make([]signals.Stablecoin, 0, min(len(on), stablecoinsTop))}
	for _, s := range on {
		out.TotalMCapUSD += s.MCapUSD
	}
	out.Assets = append(out.Assets, on[:min(len(on), stablecoinsTop)]...)
	return out
}

type bridgeItem struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName"`
	Chains           []string `json:"chains"`
	DestinationChain string   `json:"destinationChain"`
	LastDailyVolume  float64  `json:"lastDailyVolume"`
}

// Bridges returns the bridges touching the chain
func (c *Collector) Bridges(ctx context.Context) (signals.Bridges, error) {
	var body struct {
		Bridges []bridgeItem `json:"bridges"`
	}
	if err := c.get(ctx, Upstream, c.baseURL+"/v2/bridges", &body); err != nil {
		return signals.Bridges{}, err
	}
	return bridgesFrom(body.Bridges), nil
}

func bridgesFrom(items []bridgeItem) signals.Bridges {
	var on []bridgeItem
	for _, b := range items {
		if b.Chains != nil && hasChain(b.Chains) || b.Chains == nil && b.DestinationChain == chain {
			on = append(on, b)
		}
	}
	out := signals.Bridges{BridgeCount: len(on), Bridges: make([]signals.Bridge, 0, min(len(on), bridgesTop))}
	for _, b := range on[:min(len(on), bridgesTop)] {
		name := b.DisplayName
		if name == "" {
			name = b.Name
		}
		out.Bridges = append(out.Bridges, signals.Bridge{Name: name, Volume24h: b.LastDailyVolume})
	}
	return out
}
