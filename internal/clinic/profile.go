// Package clinic stores per-clinic display and planning preferences.
package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Profile holds a clinic's presentation settings and the planning defaults
// used when a report request supplies no explicit values.
type Profile struct {
	ClinicID string `json:"clinic_id"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency"`

	// WorkDays, VariableCostPct, and SafetyMarginPct seed the equilibrium
	// calculator when the caller does not override them.
	WorkDays        int     `json:"work_days"`
	VariableCostPct float64 `json:"variable_cost_pct"`
	SafetyMarginPct float64 `json:"safety_margin_pct"`

	// PriceStepCents rounds suggested display prices to a charge-friendly
	// step, e.g. 5000 for 50-peso steps. Zero disables the suggestion.
	PriceStepCents int64 `json:"price_step_cents"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DefaultProfile is what a clinic gets before it saves anything.
func DefaultProfile(clinicID string) *Profile {
	return &Profile{
		ClinicID:        clinicID,
		Currency:        "MXN",
		WorkDays:        20,
		VariableCostPct: 35,
		SafetyMarginPct: 20,
	}
}

// Store keeps profiles in Redis, one JSON blob per clinic.
type Store struct {
	redis *redis.Client
}

// NewStore creates a profile store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(clinicID string) string {
	return fmt.Sprintf("clinic:profile:%s", clinicID)
}

// Get retrieves a clinic profile, returning the default if none is stored.
func (s *Store) Get(ctx context.Context, clinicID string) (*Profile, error) {
	data, err := s.redis.Get(ctx, s.key(clinicID)).Bytes()
	if err == redis.Nil {
		return DefaultProfile(clinicID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal profile: %w", err)
	}
	return &p, nil
}

// Set saves a clinic profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("clinic: marshal profile: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(p.ClinicID), data, 0).Err(); err != nil {
		return fmt.Errorf("clinic: set profile: %w", err)
	}
	return nil
}

// PlanningDefaults reports the stored planning values. ok is false when the
// clinic has never saved a profile, so callers can apply their own defaults.
func (s *Store) PlanningDefaults(ctx context.Context, clinicID string) (workDays int, variableCostPct, safetyMarginPct float64, ok bool, err error) {
	data, err := s.redis.Get(ctx, s.key(clinicID)).Bytes()
	if err == redis.Nil {
		return 0, 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("clinic: planning defaults: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, 0, 0, false, fmt.Errorf("clinic: unmarshal profile: %w", err)
	}
	return p.WorkDays, p.VariableCostPct, p.SafetyMarginPct, true, nil
}
