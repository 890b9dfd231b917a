// Package optimizer turns inventory and utilization data into cost
// optimization recommendations.
package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cost-optimizer/internal/analyzer/vm"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/common/metrics"
	"cost-optimizer/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Baseline monthly savings estimates in INR, used when the price list
// cannot supply a concrete figure.
const (
	baselineRightsizeSavings = 8500
	baselineStorageSavings   = 3200
	baselineRISavings        = 15000
)

// Minimum running instances before a Reserved Instance purchase pays off.
const minInstancesForRI = 3

// Engine generates recommendations from the rule set.
type Engine struct {
	vmAnalyzer *vm.Analyzer
	rates      InstanceRates
	downsize   map[string]string
	logger     logger.Logger
	now        func() time.Time
}

func NewEngine(vmAnalyzer *vm.Analyzer, rates InstanceRates, log logger.Logger) *Engine {
	return &Engine{
		vmAnalyzer: vmAnalyzer,
		rates:      rates,
		downsize: map[string]string{
			"t3.medium": "t3.small",
			"t3.large":  "t3.medium",
			"m5.large":  "t3.medium",
			"m5.xlarge": "m5.large",
			"c5.large":  "t3.medium",
		},
		logger: log.WithFields(map[string]interface{}{"component": "optimizer"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate runs every rule over the inventory and returns the
// recommendations sorted by estimated monthly savings, highest first.
func (e *Engine) Generate(
	ctx context.Context,
	inventory []models.Resource,
	utilization map[string]*models.UtilizationMetrics,
) []models.Recommendation {
	recommendations := []models.Recommendation{}

	recommendations = append(recommendations, e.rightsizing(ctx, inventory, utilization)...)
	recommendations = append(recommendations, e.unusedStorage(inventory)...)
	recommendations = append(recommendations, e.reservedInstances(inventory)...)

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].EstimatedMonthlySavings > recommendations[j].EstimatedMonthlySavings
	})

	for _, rec := range recommendations {
		metrics.RecommendationsGenerated.WithLabelValues(rec.Type, rec.Priority).Inc()
	}

	return recommendations
}

func (e *Engine) rightsizing(
	ctx context.Context,
	inventory []models.Resource,
	utilization map[string]*models.UtilizationMetrics,
) []models.Recommendation {
	recommendations := []models.Recommendation{}

	for _, resource := range inventory {
		if resource.Type != models.ResourceTypeEC2 || resource.State != "running" {
			continue
		}

		usage, ok := utilization[resource.ID]
		if !ok || !e.vmAnalyzer.Underutilized(usage) {
			continue
		}

		target, ok := e.downsize[resource.InstanceType]
		if !ok {
			continue
		}

		savings := e.rightsizeSavings(ctx, resource.InstanceType, target)
		priority, confidence := classify(savings)

		recommendations = append(recommendations, models.Recommendation{
			ID:                      uuid.NewString(),
			Type:                    models.RecommendationRightsize,
			ResourceID:              resource.ID,
			ResourceType:            models.ResourceTypeEC2,
			CurrentInstanceType:     resource.InstanceType,
			RecommendedInstanceType: target,
			Reason:                  fmt.Sprintf("Low CPU utilization (avg: %.1f%%)", usage.CPUUtilization.Average),
			EstimatedMonthlySavings: savings,
			Confidence:              confidence,
			Priority:                priority,
			ImplementationEffort:    "low",
			RiskLevel:               "low",
			CreatedAt:               e.now(),
		})
	}

	return recommendations
}

// rightsizeSavings estimates the monthly delta between the current and
// recommended instance types, falling back to the baseline figure when
// the price list has no answer.
func (e *Engine) rightsizeSavings(ctx context.Context, current, target string) float64 {
	if e.rates == nil {
		return baselineRightsizeSavings
	}

	currentCost, err := e.rates.MonthlyCostINR(ctx, current)
	if err != nil {
		e.logger.WithError(err).Warn("price lookup failed", map[string]interface{}{
			"instanceType": current,
		})
		return baselineRightsizeSavings
	}

	targetCost, err := e.rates.MonthlyCostINR(ctx, target)
	if err != nil {
		e.logger.WithError(err).Warn("price lookup failed", map[string]interface{}{
			"instanceType": target,
		})
		return baselineRightsizeSavings
	}

	delta := currentCost.Sub(targetCost)
	if delta.LessThanOrEqual(decimal.Zero) {
		return baselineRightsizeSavings
	}
	return delta.InexactFloat64()
}

func (e *Engine) unusedStorage(inventory []models.Resource) []models.Recommendation {
	recommendations := []models.Recommendation{}

	for _, resource := range inventory {
		if resource.Type != models.ResourceTypeEBS || len(resource.Attachments) > 0 {
			continue
		}

		priority, confidence := classify(baselineStorageSavings)

		recommendations = append(recommendations, models.Recommendation{
			ID:                      uuid.NewString(),
			Type:                    models.RecommendationDeleteStorage,
			ResourceID:              resource.ID,
			ResourceType:            models.ResourceTypeEBS,
			Reason:                  "Unattached EBS volume",
			EstimatedMonthlySavings: baselineStorageSavings,
			Confidence:              confidence,
			Priority:                priority,
			ImplementationEffort:    "low",
			RiskLevel:               "low",
			CreatedAt:               e.now(),
		})
	}

	return recommendations
}

func (e *Engine) reservedInstances(inventory []models.Resource) []models.Recommendation {
	running := 0
	for _, resource := range inventory {
		if resource.Type == models.ResourceTypeEC2 && resource.State == "running" {
			running++
		}
	}

	if running < minInstancesForRI {
		return nil
	}

	priority, confidence := classify(baselineRISavings)

	return []models.Recommendation{{
		ID:                      uuid.NewString(),
		Type:                    models.RecommendationReservedInstances,
		ResourceType:            models.ResourceTypeEC2,
		ResourceCount:           running,
		Reason:                  fmt.Sprintf("%d running instances suitable for Reserved Instances", running),
		EstimatedMonthlySavings: baselineRISavings,
		Confidence:              confidence,
		Priority:                priority,
		ImplementationEffort:    "medium",
		RiskLevel:               "low",
		CommitmentPeriod:        "1 year",
		CreatedAt:               e.now(),
	}}
}

// classify maps estimated monthly savings to a priority tier and the
// confidence attached to that tier.
func classify(savingsINR float64) (priority string, confidence float64) {
	switch {
	case savingsINR >= 10000:
		return models.PriorityHigh, 0.9
	case savingsINR >= 5000:
		return models.PriorityMedium, 0.7
	default:
		return models.PriorityLow, 0.5
	}
}

// Totals aggregates recommendations into a savings summary.
func (e *Engine) Totals(recommendations []models.Recommendation) models.SavingsSummary {
	summary := models.SavingsSummary{
		TotalRecommendations: len(recommendations),
		Currency:             "INR",
		GeneratedAt:          e.now(),
	}

	for _, rec := range recommendations {
		summary.EstimatedMonthlySavingsINR += rec.EstimatedMonthlySavings

		switch rec.Priority {
		case models.PriorityHigh:
			summary.PriorityBreakdown.High++
		case models.PriorityMedium:
			summary.PriorityBreakdown.Medium++
		case models.PriorityLow:
			summary.PriorityBreakdown.Low++
		}
	}

	summary.EstimatedAnnualSavingsINR = summary.EstimatedMonthlySavingsINR * 12
	return summary
}
