// Package export renders clinic reports as xlsx workbooks.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/odontoflow/economics-engine/internal/roi"
	"github.com/odontoflow/economics-engine/internal/tariffs"
)

// TariffLister reads the clinic's tariffs. Satisfied by *tariffs.Engine.
type TariffLister interface {
	ListTariffs(ctx context.Context, clinicID string) ([]tariffs.Tariff, error)
}

// ROIReporter builds the period's ROI analysis. Satisfied by *roi.Analyzer.
type ROIReporter interface {
	Report(ctx context.Context, clinicID, startStr, endStr string, now time.Time) (roi.Analysis, error)
}

// Exporter assembles report workbooks.
type Exporter struct {
	tariffs TariffLister
	roi     ROIReporter
}

// NewExporter creates a workbook exporter.
func NewExporter(tariffs TariffLister, roi ROIReporter) *Exporter {
	return &Exporter{tariffs: tariffs, roi: roi}
}

const (
	sheetTariffs = "Tariffs"
	sheetROI     = "Service ROI"
)

// Workbook renders one clinic's tariffs and ROI analysis into an xlsx file.
// All money columns stay in integer cents, matching the API.
func (e *Exporter) Workbook(ctx context.Context, clinicID, startStr, endStr string, now time.Time) ([]byte, error) {
	list, err := e.tariffs.ListTariffs(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("export: list tariffs: %w", err)
	}
	analysis, err := e.roi.Report(ctx, clinicID, startStr, endStr, now)
	if err != nil {
		return nil, fmt.Errorf("export: roi report: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetTariffs); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeTariffSheet(f, list); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetROI); err != nil {
		return nil, fmt.Errorf("export: add roi sheet: %w", err)
	}
	if err := writeROISheet(f, analysis); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTariffSheet(f *excelize.File, list []tariffs.Tariff) error {
	header := []interface{}{
		"service_id", "version", "valid_from",
		"fixed_cost_per_minute_cents", "variable_cost_cents", "margin_pct",
		"price_cents", "rounded_price_cents", "is_active",
	}
	if err := f.SetSheetRow(sheetTariffs, "A1", &header); err != nil {
		return fmt.Errorf("export: tariff header: %w", err)
	}

	for i, t := range list {
		row := []interface{}{
			t.ServiceID, t.Version, t.ValidFrom.Format("2006-01-02"),
			t.FixedCostPerMinuteCents, t.VariableCostCents, t.MarginPct,
			t.PriceCents, t.RoundedPriceCents, t.IsActive,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: tariff cell: %w", err)
		}
		if err := f.SetSheetRow(sheetTariffs, cell, &row); err != nil {
			return fmt.Errorf("export: tariff row: %w", err)
		}
	}
	return nil
}

func writeROISheet(f *excelize.File, analysis roi.Analysis) error {
	header := []interface{}{
		"service_id", "service_name", "category",
		"total_sales", "total_revenue_cents", "total_cost_cents", "total_profit_cents",
		"avg_profit_per_sale_cents", "profit_per_hour_cents", "roi_pct",
	}
	if err := f.SetSheetRow(sheetROI, "A1", &header); err != nil {
		return fmt.Errorf("export: roi header: %w", err)
	}

	for i, s := range analysis.Services {
		row := []interface{}{
			s.ServiceID, s.ServiceName, string(s.Category),
			s.TotalSales, s.TotalRevenueCents, s.TotalCostCents, s.TotalProfitCents,
			s.AvgProfitPerSale, s.ProfitPerHourCents, s.ROIPct,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: roi cell: %w", err)
		}
		if err := f.SetSheetRow(sheetROI, cell, &row); err != nil {
			return fmt.Errorf("export: roi row: %w", err)
		}
	}
	return nil
}
