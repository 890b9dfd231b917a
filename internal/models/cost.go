package models

import "time"

// HealthCheck is the /api/v1/health response body.
type HealthCheck struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Market    string    `json:"market"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// CostSummary is the /api/v1/summary response body.
type CostSummary struct {
	TotalCostINR        float64   `json:"total_cost_inr"`
	MonthlyCostINR      float64   `json:"monthly_cost_inr"`
	PotentialSavingsINR float64   `json:"potential_savings_inr"`
	OptimizationScore   int       `json:"optimization_score"`
	LastUpdated         time.Time `json:"last_updated"`
}

// Period is a half-open analysis window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProviderCosts is one provider's contribution to an analysis.
type ProviderCosts struct {
	Provider     string             `json:"provider"`
	Currency     string             `json:"currency"`
	TotalCostINR float64            `json:"total_cost_inr"`
	ByService    map[string]float64 `json:"by_service,omitempty"`
	Period       Period             `json:"period"`
}

// CostAnalysis is the aggregated multi-provider analysis result.
type CostAnalysis struct {
	Period              Period                   `json:"period"`
	Currency            string                   `json:"currency"`
	TotalCostINR        float64                  `json:"total_cost_inr"`
	Providers           map[string]ProviderCosts `json:"providers"`
	PotentialSavingsINR float64                  `json:"potential_savings_inr"`
	OptimizationScore   int                      `json:"optimization_score"`
	GeneratedAt         time.Time                `json:"generated_at"`
}
