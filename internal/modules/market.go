package modules

import (
	"context"
	"strings"

	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

// MarketBackend is the part of the API client the market module uses.
type MarketBackend interface {
	MarketPrices(ctx context.Context, crop, market string) (*types.MarketPricesResponse, error)
	PriceTrends(ctx context.Context, crop string, days int) (*types.PriceTrendsResponse, error)
}

// MarketOptions configures the initial selection of the market module.
type MarketOptions struct {
	Crop   string
	Market string
	// TrendsDays is the trend window fetched after every successful price
	// fetch. Zero disables the automatic trends fetch.
	TrendsDays int
}

// Market shows current quotes for a crop across markets with a comparison
// chart and a price trend table.
type Market struct {
	*machine
	backend    MarketBackend
	charter    render.Charter
	trendsDays int

	// Guarded by machine.mu.
	crop   string
	market string
	prices *types.MarketPriceSet
	trends *types.PriceTrends
}

// NewMarket creates the market prices module.
func NewMarket(backend MarketBackend, charter render.Charter, deps Deps, opts MarketOptions) *Market {
	return &Market{
		machine:    newMachine(string(types.TabMarket), deps),
		backend:    backend,
		charter:    charter,
		trendsDays: opts.TrendsDays,
		crop:       opts.Crop,
		market:     opts.Market,
	}
}

// Activate fetches prices the first time the tab is shown.
func (m *Market) Activate(ctx context.Context) error {
	if !m.firstActivation() {
		return nil
	}
	return m.Fetch(ctx)
}

// Selection returns the selected crop and market.
func (m *Market) Selection() (crop, market string) {
	m.locked(func() { crop, market = m.crop, m.market })
	return crop, market
}

// SetCrop replaces the selected crop and fetches prices for it.
func (m *Market) SetCrop(ctx context.Context, crop string) error {
	if err := validateSelection("crop", crop); err != nil {
		return err
	}
	m.locked(func() { m.crop = crop })
	return m.Fetch(ctx)
}

// SetMarket replaces the selected market and fetches prices for it.
func (m *Market) SetMarket(ctx context.Context, market string) error {
	if err := validateSelection("market", market); err != nil {
		return err
	}
	m.locked(func() { m.market = market })
	return m.Fetch(ctx)
}

// Fetch loads prices for the current selection. When at least one quote was
// rendered the price trends are fetched as a secondary request.
func (m *Market) Fetch(ctx context.Context) error {
	crop, market := m.Selection()

	seq, err := primary(ctx, m.machine, "market_prices", "fetching_prices", "Failed to fetch prices",
		func(ctx context.Context) (*types.MarketPricesResponse, error) {
			return m.backend.MarketPrices(ctx, crop, market)
		},
		func(resp *types.MarketPricesResponse) {
			set := resp.Prices
			if set.Crop == "" {
				set.Crop = crop
			}
			m.prices = &set
			m.trends = nil
			m.draw()
		},
	)
	if err != nil {
		return err
	}
	if m.trendsDays > 0 {
		m.trendsFor(ctx, seq, crop, m.trendsDays)
	}
	return nil
}

// Trends fetches the price trend for the selected crop over days and appends
// it below the rendered prices. Nothing is fetched while no prices are shown.
// Failures are logged only.
func (m *Market) Trends(ctx context.Context, days int) {
	var (
		crop string
		seq  uint64
	)
	m.locked(func() { crop, seq = m.crop, m.seq })
	m.trendsFor(ctx, seq, crop, days)
}

func (m *Market) trendsFor(ctx context.Context, seq uint64, crop string, days int) {
	var enrich bool
	m.locked(func() {
		enrich = seq == m.seq && m.prices != nil && len(m.prices.Prices) > 0
	})
	if !enrich {
		return
	}
	secondary(ctx, m.machine, seq, "price_trends",
		func(ctx context.Context) (*types.PriceTrendsResponse, error) {
			return m.backend.PriceTrends(ctx, crop, days)
		},
		func(resp *types.PriceTrendsResponse) {
			trends := resp.Trends
			m.trends = &trends
			m.pane.Append(m.trendsSection(&trends))
		},
	)
}

// Prices returns the last rendered price set.
func (m *Market) Prices() *types.MarketPriceSet {
	var p *types.MarketPriceSet
	m.locked(func() { p = m.prices })
	return p
}

// Rerender redraws the retained prices and trends in the active language.
func (m *Market) Rerender() {
	m.locked(func() {
		if m.prices != nil {
			m.draw()
		}
	})
}

// draw renders the retained data. Callers hold machine.mu.
func (m *Market) draw() {
	set := m.prices
	if len(set.Prices) == 0 {
		m.pane.Replace(render.Muted(m.deps.Localizer.Translatef("no_price_data_for", map[string]string{"crop": set.Crop})))
		return
	}

	lines := []string{
		render.Heading(m.t("market_information")),
		render.Field(m.t("crop"), set.Crop),
		render.Field(m.t("source"), set.Source),
		render.Field(m.t("last_updated"), render.FormatDateTime(set.LastUpdated)),
		"",
	}
	labels := make([]string, 0, len(set.Prices))
	values := make([]float64, 0, len(set.Prices))
	for _, p := range set.Prices {
		lines = append(lines, render.Heading(render.FormatCurrency(p.Price))+"  "+p.Market+"  "+
			render.Muted(m.deps.Localizer.Translatef("per_unit", map[string]string{"unit": p.Unit})+"  "+p.Date))
		labels = append(labels, p.Market)
		values = append(values, p.Price)
	}
	m.pane.Replace(strings.Join(lines, "\n"))
	m.pane.Append(m.charter.Bar(m.t("price_comparison"), labels, values))

	if m.trends != nil {
		m.pane.Append(m.trendsSection(m.trends))
	}
}

func (m *Market) trendsSection(t *types.PriceTrends) string {
	lines := []string{render.Heading(m.t("price_trends") + " (" + t.Period + ")")}
	lines = append(lines, m.t("date")+"\t"+m.t("price")+"\t"+m.t("change"))
	for _, p := range t.Trends {
		level := types.LevelSuccess
		if p.Change < 0 {
			level = types.LevelDanger
		}
		lines = append(lines, p.Date+"\t"+render.FormatCurrency(p.Price)+"\t"+render.Leveled(level, render.FormatChange(p.Change)))
	}
	return strings.Join(lines, "\n")
}
