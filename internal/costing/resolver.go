package costing

import (
	"context"

	"github.com/odontoflow/economics-engine/pkg/logging"
)

// ConfigReader is what the resolver needs from the store. Satisfied by *Store.
type ConfigReader interface {
	GetTimeSettings(ctx context.Context, clinicID string) (*TimeSettings, error)
	ListFixedCosts(ctx context.Context, clinicID string) ([]FixedCostItem, error)
	ListAssets(ctx context.Context, clinicID string) ([]Asset, error)
}

// Resolver builds clinic cost contexts from stored configuration.
type Resolver struct {
	store  ConfigReader
	logger *logging.Logger
}

// NewResolver creates a cost context resolver.
func NewResolver(store ConfigReader, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve computes the clinic's cost context from current configuration.
func (r *Resolver) Resolve(ctx context.Context, clinicID string) (CostContext, error) {
	settings, err := r.store.GetTimeSettings(ctx, clinicID)
	if err != nil {
		return CostContext{}, err
	}
	items, err := r.store.ListFixedCosts(ctx, clinicID)
	if err != nil {
		return CostContext{}, err
	}
	assets, err := r.store.ListAssets(ctx, clinicID)
	if err != nil {
		return CostContext{}, err
	}

	cc, malformed := BuildCostContext(clinicID, settings, items, assets)
	for _, id := range malformed {
		r.logger.Warn("asset with non-positive depreciation horizon skipped",
			"clinic_id", clinicID, "asset_id", id)
	}
	return cc, nil
}

// Memo caches resolved cost contexts for the lifetime of one request or
// batch. It is deliberately a plain value handed down the call path instead
// of a process-wide map, so a context can never go stale across requests.
// Not safe for concurrent use; each request builds its own.
type Memo struct {
	resolver *Resolver
	contexts map[string]CostContext
}

// NewMemo creates a request-scoped memo over the resolver.
func NewMemo(resolver *Resolver) *Memo {
	return &Memo{resolver: resolver, contexts: make(map[string]CostContext)}
}

// Get resolves the clinic's cost context, computing it at most once per memo.
func (m *Memo) Get(ctx context.Context, clinicID string) (CostContext, error) {
	if cc, ok := m.contexts[clinicID]; ok {
		return cc, nil
	}
	cc, err := m.resolver.Resolve(ctx, clinicID)
	if err != nil {
		return CostContext{}, err
	}
	m.contexts[clinicID] = cc
	return cc, nil
}
