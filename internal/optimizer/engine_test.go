// internal/optimizer/engine_test.go
package optimizer

import (
	"context"
	"errors"
	"testing"

	"cost-optimizer/internal/analyzer/vm"
	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRates struct {
	monthly map[string]float64
	err     error
}

func (f *fakeRates) MonthlyCostINR(ctx context.Context, instanceType string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	cost, ok := f.monthly[instanceType]
	if !ok {
		return decimal.Zero, errors.New("no price")
	}
	return decimal.NewFromFloat(cost), nil
}

func newTestEngine(t *testing.T, rates InstanceRates) *Engine {
	t.Helper()
	analyzer := vm.NewAnalyzer(config.AnalyzerConfig{
		CPUThresholdLow:    20,
		CPUThresholdHigh:   80,
		MemoryThresholdLow: 30,
	})
	return NewEngine(analyzer, rates, logger.NewTestLogger(t))
}

func runningInstance(id, instanceType string) models.Resource {
	return models.Resource{
		ID:           id,
		Type:         models.ResourceTypeEC2,
		Provider:     "AWS",
		InstanceType: instanceType,
		State:        "running",
	}
}

func lowUtilization(id string) *models.UtilizationMetrics {
	return &models.UtilizationMetrics{
		ResourceID: id,
		CPUUtilization: models.CPUUtilization{
			Average: 15,
			Maximum: 25,
		},
	}
}

func TestGenerateRightsizing(t *testing.T) {
	engine := newTestEngine(t, nil)

	inventory := []models.Resource{runningInstance("i-low", "t3.medium")}
	utilization := map[string]*models.UtilizationMetrics{"i-low": lowUtilization("i-low")}

	recommendations := engine.Generate(context.Background(), inventory, utilization)
	require.Len(t, recommendations, 1)

	rec := recommendations[0]
	assert.Equal(t, models.RecommendationRightsize, rec.Type)
	assert.Equal(t, "i-low", rec.ResourceID)
	assert.Equal(t, "t3.medium", rec.CurrentInstanceType)
	assert.Equal(t, "t3.small", rec.RecommendedInstanceType)
	assert.Equal(t, "Low CPU utilization (avg: 15.0%)", rec.Reason)
	assert.InDelta(t, 8500.0, rec.EstimatedMonthlySavings, 0.01)
	assert.Equal(t, models.PriorityMedium, rec.Priority)
	assert.InDelta(t, 0.7, rec.Confidence, 0.001)
	assert.NotEmpty(t, rec.ID)
}

func TestRightsizingSkipsHealthyAndUnknownTypes(t *testing.T) {
	engine := newTestEngine(t, nil)

	inventory := []models.Resource{
		runningInstance("i-busy", "t3.medium"),
		runningInstance("i-odd", "x1e.xlarge"),
		{ID: "i-stopped", Type: models.ResourceTypeEC2, InstanceType: "t3.medium", State: "stopped"},
	}
	utilization := map[string]*models.UtilizationMetrics{
		"i-busy": {ResourceID: "i-busy", CPUUtilization: models.CPUUtilization{Average: 60, Maximum: 90}},
		"i-odd":  lowUtilization("i-odd"),
	}

	recommendations := engine.Generate(context.Background(), inventory, utilization)
	assert.Empty(t, recommendations)
}

func TestRightsizingUsesPriceList(t *testing.T) {
	rates := &fakeRates{monthly: map[string]float64{
		"t3.medium": 2600,
		"t3.small":  1300,
	}}
	engine := newTestEngine(t, rates)

	inventory := []models.Resource{runningInstance("i-low", "t3.medium")}
	utilization := map[string]*models.UtilizationMetrics{"i-low": lowUtilization("i-low")}

	recommendations := engine.Generate(context.Background(), inventory, utilization)
	require.Len(t, recommendations, 1)
	assert.InDelta(t, 1300.0, recommendations[0].EstimatedMonthlySavings, 0.01)
	assert.Equal(t, models.PriorityLow, recommendations[0].Priority)
}

func TestRightsizingFallsBackWhenPriceLookupFails(t *testing.T) {
	engine := newTestEngine(t, &fakeRates{err: errors.New("endpoint down")})

	inventory := []models.Resource{runningInstance("i-low", "t3.medium")}
	utilization := map[string]*models.UtilizationMetrics{"i-low": lowUtilization("i-low")}

	recommendations := engine.Generate(context.Background(), inventory, utilization)
	require.Len(t, recommendations, 1)
	assert.InDelta(t, 8500.0, recommendations[0].EstimatedMonthlySavings, 0.01)
}

func TestUnattachedStorage(t *testing.T) {
	engine := newTestEngine(t, nil)

	inventory := []models.Resource{
		{ID: "vol-orphan", Type: models.ResourceTypeEBS, Provider: "AWS"},
		{ID: "vol-used", Type: models.ResourceTypeEBS, Provider: "AWS", Attachments: []string{"i-1"}},
	}

	recommendations := engine.Generate(context.Background(), inventory, nil)
	require.Len(t, recommendations, 1)

	rec := recommendations[0]
	assert.Equal(t, models.RecommendationDeleteStorage, rec.Type)
	assert.Equal(t, "vol-orphan", rec.ResourceID)
	assert.Equal(t, "Unattached EBS volume", rec.Reason)
	assert.InDelta(t, 3200.0, rec.EstimatedMonthlySavings, 0.01)
	assert.Equal(t, models.PriorityLow, rec.Priority)
}

func TestReservedInstancesThreshold(t *testing.T) {
	engine := newTestEngine(t, nil)

	two := []models.Resource{
		runningInstance("i-1", "m5.2xlarge"),
		runningInstance("i-2", "m5.2xlarge"),
	}
	assert.Empty(t, engine.Generate(context.Background(), two, nil))

	three := append(two, runningInstance("i-3", "m5.2xlarge"))
	recommendations := engine.Generate(context.Background(), three, nil)
	require.Len(t, recommendations, 1)

	rec := recommendations[0]
	assert.Equal(t, models.RecommendationReservedInstances, rec.Type)
	assert.Equal(t, 3, rec.ResourceCount)
	assert.Equal(t, "3 running instances suitable for Reserved Instances", rec.Reason)
	assert.InDelta(t, 15000.0, rec.EstimatedMonthlySavings, 0.01)
	assert.Equal(t, models.PriorityHigh, rec.Priority)
	assert.Equal(t, "1 year", rec.CommitmentPeriod)
}

func TestGenerateSortsBySavings(t *testing.T) {
	engine := newTestEngine(t, nil)

	inventory := []models.Resource{
		runningInstance("i-1", "t3.medium"),
		runningInstance("i-2", "t3.medium"),
		runningInstance("i-3", "t3.medium"),
		{ID: "vol-orphan", Type: models.ResourceTypeEBS},
	}
	utilization := map[string]*models.UtilizationMetrics{
		"i-1": lowUtilization("i-1"),
	}

	recommendations := engine.Generate(context.Background(), inventory, utilization)
	require.Len(t, recommendations, 3)

	assert.Equal(t, models.RecommendationReservedInstances, recommendations[0].Type)
	assert.Equal(t, models.RecommendationRightsize, recommendations[1].Type)
	assert.Equal(t, models.RecommendationDeleteStorage, recommendations[2].Type)
}

func TestTotals(t *testing.T) {
	engine := newTestEngine(t, nil)

	summary := engine.Totals([]models.Recommendation{
		{EstimatedMonthlySavings: 15000, Priority: models.PriorityHigh},
		{EstimatedMonthlySavings: 8500, Priority: models.PriorityMedium},
		{EstimatedMonthlySavings: 3200, Priority: models.PriorityLow},
	})

	assert.Equal(t, 3, summary.TotalRecommendations)
	assert.InDelta(t, 26700.0, summary.EstimatedMonthlySavingsINR, 0.01)
	assert.InDelta(t, 320400.0, summary.EstimatedAnnualSavingsINR, 0.01)
	assert.Equal(t, 1, summary.PriorityBreakdown.High)
	assert.Equal(t, 1, summary.PriorityBreakdown.Medium)
	assert.Equal(t, 1, summary.PriorityBreakdown.Low)
	assert.Equal(t, "INR", summary.Currency)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestPriceListDocumentParsing(t *testing.T) {
	doc := `{
		"terms": {
			"OnDemand": {
				"SKU.JRTCKXETXF": {
					"priceDimensions": {
						"SKU.JRTCKXETXF.6YS6EN2CT7": {
							"pricePerUnit": {"USD": "0.0416000000"}
						}
					}
				}
			}
		}
	}`

	hourly, err := parseOnDemandHourlyUSD(doc)
	require.NoError(t, err)
	assert.True(t, hourly.Equal(decimal.RequireFromString("0.0416")))

	_, err = parseOnDemandHourlyUSD(`{"terms":{"OnDemand":{}}}`)
	assert.Error(t, err)
}
