// Package roi ranks a clinic's services by realized profit and classifies
// them into a frequency/profit quadrant, using medians as thresholds so a
// single outlier service cannot drag the whole grid.
package roi

import (
	"sort"

	"github.com/odontoflow/economics-engine/internal/money"
)

// Category is a service's quadrant in the frequency/profit grid.
type Category string

const (
	CategoryStar   Category = "star"   // high frequency, high profit per sale
	CategoryGem    Category = "gem"    // low frequency, high profit per sale
	CategoryVolume Category = "volume" // high frequency, low profit per sale
	CategoryReview Category = "review" // low frequency, low profit per sale
)

// TreatmentRecord is one realized treatment with its snapshot costs, joined
// to its service.
type TreatmentRecord struct {
	ServiceID               string
	ServiceName             string
	PriceCents              int64
	FixedCostPerMinuteCents int64
	VariableCostCents       int64
	Minutes                 int
}

// ServiceROI is one service's aggregated economics over the period.
type ServiceROI struct {
	ServiceID          string   `json:"service_id"`
	ServiceName        string   `json:"service_name"`
	TotalSales         int      `json:"total_sales"`
	TotalRevenueCents  int64    `json:"total_revenue_cents"`
	TotalCostCents     int64    `json:"total_cost_cents"`
	TotalProfitCents   int64    `json:"total_profit_cents"`
	AvgProfitPerSale   int64    `json:"avg_profit_per_sale_cents"`
	AvgRevenuePerSale  int64    `json:"avg_revenue_per_sale_cents"`
	AvgCostPerSale     int64    `json:"avg_cost_per_sale_cents"`
	TotalMinutes       int      `json:"total_minutes"`
	ProfitPerHourCents int64    `json:"profit_per_hour_cents"`
	ROIPct             int64    `json:"roi_pct"`
	Category           Category `json:"category"`
}

// Totals sums the whole period across services.
type Totals struct {
	TotalProfitCents  int64 `json:"total_profit_cents"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	TotalSales        int   `json:"total_sales"`
	AvgROIPct         int64 `json:"avg_roi_pct"`
}

// Insights are the headline findings derived from the classified list.
type Insights struct {
	TopProfitService        *ServiceROI  `json:"top_profit_service"`
	TopProfitPerSaleService *ServiceROI  `json:"top_profit_per_sale_service"`
	TopFrequencyService     *ServiceROI  `json:"top_frequency_service"`
	HiddenGems              []ServiceROI `json:"hidden_gems"`
	NeedsReview             []ServiceROI `json:"needs_review"`
}

// Analysis is the full ROI report for one clinic and period.
type Analysis struct {
	Services    []ServiceROI `json:"services"`
	PeriodStart string       `json:"period_start"`
	PeriodEnd   string       `json:"period_end"`
	Totals      Totals       `json:"totals"`
	Insights    Insights     `json:"insights"`
}

// Median of a sorted-or-not list; an even-length list yields the mean of the
// two middle values, never either endpoint.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Classify places one service in the quadrant grid. Both thresholds are
// inclusive on the high side.
func Classify(totalSales int, avgProfitPerSaleCents int64, medianSales, medianProfit float64) Category {
	highFrequency := float64(totalSales) >= medianSales
	highProfit := float64(avgProfitPerSaleCents) >= medianProfit

	switch {
	case highFrequency && highProfit:
		return CategoryStar
	case highProfit:
		return CategoryGem
	case highFrequency:
		return CategoryVolume
	default:
		return CategoryReview
	}
}

// Analyze aggregates treatments per service, classifies every service, and
// derives totals and insights. The fixed share of each treatment is the
// snapshot per-minute rate times its recorded minutes; nothing is re-priced
// from current configuration.
func Analyze(records []TreatmentRecord, periodStart, periodEnd string) Analysis {
	analysis := Analysis{
		Services:    []ServiceROI{},
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Insights:    Insights{HiddenGems: []ServiceROI{}, NeedsReview: []ServiceROI{}},
	}
	if len(records) == 0 {
		return analysis
	}

	type bucket struct {
		name     string
		sales    int
		revenue  int64
		fixed    int64
		variable int64
		minutes  int
	}
	buckets := make(map[string]*bucket)
	var order []string
	for _, rec := range records {
		b, ok := buckets[rec.ServiceID]
		if !ok {
			b = &bucket{name: rec.ServiceName}
			buckets[rec.ServiceID] = b
			order = append(order, rec.ServiceID)
		}
		b.sales++
		b.revenue += rec.PriceCents
		b.fixed += money.Round(float64(rec.FixedCostPerMinuteCents) * float64(rec.Minutes))
		b.variable += rec.VariableCostCents
		b.minutes += rec.Minutes
	}

	services := make([]ServiceROI, 0, len(buckets))
	for _, id := range order {
		b := buckets[id]
		cost := b.fixed + b.variable
		profit := b.revenue - cost

		s := ServiceROI{
			ServiceID:         id,
			ServiceName:       b.name,
			TotalSales:        b.sales,
			TotalRevenueCents: b.revenue,
			TotalCostCents:    cost,
			TotalProfitCents:  profit,
			AvgProfitPerSale:  money.RoundRatio(profit, int64(b.sales)),
			AvgRevenuePerSale: money.RoundRatio(b.revenue, int64(b.sales)),
			AvgCostPerSale:    money.RoundRatio(cost, int64(b.sales)),
			TotalMinutes:      b.minutes,
		}
		if b.minutes > 0 {
			s.ProfitPerHourCents = money.Round(float64(profit) / float64(b.minutes) * 60)
		}
		if cost > 0 {
			s.ROIPct = money.Round(float64(profit) / float64(cost) * 100)
		}
		services = append(services, s)
	}

	salesValues := make([]float64, len(services))
	profitValues := make([]float64, len(services))
	for i, s := range services {
		salesValues[i] = float64(s.TotalSales)
		profitValues[i] = float64(s.AvgProfitPerSale)
	}
	medianSales := Median(salesValues)
	medianProfit := Median(profitValues)

	for i := range services {
		services[i].Category = Classify(services[i].TotalSales, services[i].AvgProfitPerSale, medianSales, medianProfit)
	}

	// Profit-descending with a stable id tiebreak keeps output deterministic.
	sort.Slice(services, func(i, j int) bool {
		if services[i].TotalProfitCents != services[j].TotalProfitCents {
			return services[i].TotalProfitCents > services[j].TotalProfitCents
		}
		return services[i].ServiceID < services[j].ServiceID
	})
	analysis.Services = services

	var roiSum int64
	for _, s := range services {
		analysis.Totals.TotalProfitCents += s.TotalProfitCents
		analysis.Totals.TotalRevenueCents += s.TotalRevenueCents
		analysis.Totals.TotalSales += s.TotalSales
		roiSum += s.ROIPct
	}
	analysis.Totals.AvgROIPct = money.RoundRatio(roiSum, int64(len(services)))

	analysis.Insights.TopProfitService = &services[0]
	analysis.Insights.TopProfitPerSaleService = maxBy(services, func(s ServiceROI) int64 { return s.AvgProfitPerSale })
	analysis.Insights.TopFrequencyService = maxBy(services, func(s ServiceROI) int64 { return int64(s.TotalSales) })
	for _, s := range services {
		switch s.Category {
		case CategoryGem:
			analysis.Insights.HiddenGems = append(analysis.Insights.HiddenGems, s)
		case CategoryReview:
			analysis.Insights.NeedsReview = append(analysis.Insights.NeedsReview, s)
		}
	}
	return analysis
}

func maxBy(services []ServiceROI, key func(ServiceROI) int64) *ServiceROI {
	best := 0
	for i := 1; i < len(services); i++ {
		if key(services[i]) > key(services[best]) {
			best = i
		}
	}
	return &services[best]
}
