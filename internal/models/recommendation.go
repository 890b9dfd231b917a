package models

import "time"

// Recommendation types.
const (
	RecommendationRightsize         = "rightsize"
	RecommendationDeleteStorage     = "delete_unused_storage"
	RecommendationReservedInstances = "reserved_instances"
)

// Priority levels.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is one cost optimization action.
type Recommendation struct {
	ID                       string    `json:"id"`
	Type                     string    `json:"type"`
	ResourceID               string    `json:"resource_id,omitempty"`
	ResourceType             string    `json:"resource_type"`
	ResourceCount            int       `json:"resource_count,omitempty"`
	CurrentInstanceType      string    `json:"current_instance_type,omitempty"`
	RecommendedInstanceType  string    `json:"recommended_instance_type,omitempty"`
	Reason                   string    `json:"reason"`
	EstimatedMonthlySavings  float64   `json:"estimated_monthly_savings_inr"`
	Confidence               float64   `json:"confidence"`
	Priority                 string    `json:"priority"`
	ImplementationEffort     string    `json:"implementation_effort"`
	RiskLevel                string    `json:"risk_level"`
	CommitmentPeriod         string    `json:"commitment_period,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
}

// PriorityBreakdown counts recommendations per priority tier.
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// SavingsSummary aggregates all recommendations.
type SavingsSummary struct {
	TotalRecommendations       int               `json:"total_recommendations"`
	EstimatedMonthlySavingsINR float64           `json:"estimated_monthly_savings_inr"`
	EstimatedAnnualSavingsINR  float64           `json:"estimated_annual_savings_inr"`
	PriorityBreakdown          PriorityBreakdown `json:"priority_breakdown"`
	Currency                   string            `json:"currency"`
	GeneratedAt                time.Time         `json:"generated_at"`
}
