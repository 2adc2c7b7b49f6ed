package tariffs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontoflow/economics-engine/internal/costing"
)

type fakeConfig struct {
	settings *costing.TimeSettings
	fixed    []costing.FixedCostItem
	assets   []costing.Asset
	resolves int
}

func (f *fakeConfig) GetTimeSettings(_ context.Context, _ string) (*costing.TimeSettings, error) {
	f.resolves++
	return f.settings, nil
}

func (f *fakeConfig) ListFixedCosts(_ context.Context, _ string) ([]costing.FixedCostItem, error) {
	return f.fixed, nil
}

func (f *fakeConfig) ListAssets(_ context.Context, _ string) ([]costing.Asset, error) {
	return f.assets, nil
}

type fakeServices struct {
	services map[string]*costing.Service
	recipes  map[string][]costing.RecipeLine
}

func (f *fakeServices) GetService(_ context.Context, _, serviceID string) (*costing.Service, error) {
	return f.services[serviceID], nil
}

func (f *fakeServices) ListRecipeLines(_ context.Context, serviceID string) ([]costing.RecipeLine, error) {
	return f.recipes[serviceID], nil
}

type fakeRepo struct {
	upserts []Tariff
	listed  []Tariff
	failOn  string
}

func (f *fakeRepo) Upsert(_ context.Context, t *Tariff) error {
	if f.failOn != "" && t.ServiceID == f.failOn {
		return errors.New("boom")
	}
	if t.ID == "" {
		t.ID = "generated"
	}
	f.upserts = append(f.upserts, *t)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ string) ([]Tariff, error) {
	return f.listed, nil
}

// readyConfig yields 5 880 effective minutes and a 1 883 333 cent pool,
// which resolves to 320 cents per minute.
func readyConfig() *fakeConfig {
	return &fakeConfig{
		settings: &costing.TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: 70},
		fixed: []costing.FixedCostItem{
			{ID: "rent", Name: "Rent", AmountCents: 1_500_000},
			{ID: "misc", Name: "Misc", AmountCents: 300_000},
		},
		assets: []costing.Asset{
			{ID: "chair", Name: "Chair", PurchasePriceCents: 5_000_000, DepreciationMonths: 60},
		},
	}
}

func newTestEngine(cfg *fakeConfig, svcs *fakeServices, repo *fakeRepo) *Engine {
	resolver := costing.NewResolver(cfg, nil)
	return NewEngine(resolver, svcs, repo, nil, nil)
}

func TestSaveTariffsBatch(t *testing.T) {
	cfg := readyConfig()
	svcs := &fakeServices{
		services: map[string]*costing.Service{
			"svc-1": {ID: "svc-1", Name: "Cleaning", EstMinutes: 60},
			"svc-2": {ID: "svc-2", Name: "Whitening", EstMinutes: 45},
		},
		recipes: map[string][]costing.RecipeLine{
			"svc-1": {{SupplyID: "sup-1", Qty: 2, SupplyPrice: 10_000, SupplyPortions: 4}},
		},
	}
	repo := &fakeRepo{}
	engine := newTestEngine(cfg, svcs, repo)

	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	saved, err := engine.SaveTariffs(context.Background(), "clinic-1", []SaveItem{
		{ServiceID: "svc-1", MarginPct: 30, FinalPriceCents: 31_000},
		{ServiceID: "svc-2", MarginPct: 20, FinalPriceCents: 17_500},
	}, now)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	first := saved[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, int64(320), first.FixedCostPerMinuteCents)
	assert.Equal(t, int64(5_000), first.VariableCostCents)
	// 320*60 + 5000 = 24 200 base, +30% margin.
	assert.Equal(t, int64(31_460), first.PriceCents)
	assert.Equal(t, int64(31_000), first.RoundedPriceCents)
	assert.True(t, first.IsActive)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), first.ValidFrom)

	second := saved[1]
	assert.Equal(t, int64(0), second.VariableCostCents)
	// 320*45 = 14 400 base, +20% margin.
	assert.Equal(t, int64(17_280), second.PriceCents)

	// One cost context resolution serves the whole batch.
	assert.Equal(t, 1, cfg.resolves)
	assert.Len(t, repo.upserts, 2)
}

func TestSaveTariffsNotReady(t *testing.T) {
	cfg := &fakeConfig{settings: nil}
	repo := &fakeRepo{}
	engine := newTestEngine(cfg, &fakeServices{}, repo)

	saved, err := engine.SaveTariffs(context.Background(), "clinic-1",
		[]SaveItem{{ServiceID: "svc-1", MarginPct: 10}}, time.Now())
	assert.ErrorIs(t, err, costing.ErrNotReady)
	assert.Empty(t, saved)
	assert.Empty(t, repo.upserts)
}

func TestSaveTariffsUnknownService(t *testing.T) {
	engine := newTestEngine(readyConfig(), &fakeServices{services: map[string]*costing.Service{}}, &fakeRepo{})

	_, err := engine.SaveTariffs(context.Background(), "clinic-1",
		[]SaveItem{{ServiceID: "ghost", MarginPct: 10}}, time.Now())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestSaveTariffsInvalidDuration(t *testing.T) {
	svcs := &fakeServices{services: map[string]*costing.Service{
		"svc-0": {ID: "svc-0", Name: "Consult", EstMinutes: 0},
	}}
	engine := newTestEngine(readyConfig(), svcs, &fakeRepo{})

	_, err := engine.SaveTariffs(context.Background(), "clinic-1",
		[]SaveItem{{ServiceID: "svc-0", MarginPct: 10}}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidServiceDuration)
}

func TestSaveTariffsPartialSuccess(t *testing.T) {
	svcs := &fakeServices{
		services: map[string]*costing.Service{
			"svc-1": {ID: "svc-1", EstMinutes: 60},
			"svc-2": {ID: "svc-2", EstMinutes: 30},
		},
	}
	repo := &fakeRepo{failOn: "svc-2"}
	engine := newTestEngine(readyConfig(), svcs, repo)

	saved, err := engine.SaveTariffs(context.Background(), "clinic-1", []SaveItem{
		{ServiceID: "svc-1", MarginPct: 10},
		{ServiceID: "svc-2", MarginPct: 10},
	}, time.Now())
	assert.Error(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "svc-1", saved[0].ServiceID)
}

func TestSaveTariffsMalformedSupplySkipped(t *testing.T) {
	svcs := &fakeServices{
		services: map[string]*costing.Service{"svc-1": {ID: "svc-1", EstMinutes: 60}},
		recipes: map[string][]costing.RecipeLine{
			"svc-1": {
				{SupplyID: "good", Qty: 1, SupplyPrice: 3_000, SupplyPortions: 3},
				{SupplyID: "bad", Qty: 1, SupplyPrice: 9_000, SupplyPortions: 0},
			},
		},
	}
	engine := newTestEngine(readyConfig(), svcs, &fakeRepo{})

	saved, err := engine.SaveTariffs(context.Background(), "clinic-1",
		[]SaveItem{{ServiceID: "svc-1", MarginPct: 0}}, time.Now())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	// Only the well-formed supply line counts.
	assert.Equal(t, int64(1_000), saved[0].VariableCostCents)
}

func TestSaveTariffsExplicitInactive(t *testing.T) {
	svcs := &fakeServices{services: map[string]*costing.Service{"svc-1": {ID: "svc-1", EstMinutes: 60}}}
	repo := &fakeRepo{}
	engine := newTestEngine(readyConfig(), svcs, repo)

	inactive := false
	saved, err := engine.SaveTariffs(context.Background(), "clinic-1",
		[]SaveItem{{ServiceID: "svc-1", MarginPct: 10, IsActive: &inactive}}, time.Now())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.False(t, saved[0].IsActive)
}
