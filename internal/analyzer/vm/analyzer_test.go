// internal/analyzer/vm/analyzer_test.go
package vm

import (
	"testing"

	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/models"

	"github.com/stretchr/testify/assert"
)

func testConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{
		CPUThresholdLow:    20,
		CPUThresholdHigh:   80,
		MemoryThresholdLow: 30,
	}
}

func metricsWithCPU(avg, maximum float64) *models.UtilizationMetrics {
	return &models.UtilizationMetrics{
		ResourceID: "i-test",
		PeriodDays: 7,
		CPUUtilization: models.CPUUtilization{
			Average: avg,
			Maximum: maximum,
		},
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name   string
		avgCPU float64
		want   int
	}{
		{"idle", 0, 20},
		{"underutilized", 15, 50},
		{"band lower edge", 40, 100},
		{"band middle", 55, 100},
		{"band upper edge", 70, 100},
		{"overutilized", 85, 77},
		{"saturated", 100, 55},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.avgCPU))
		})
	}
}

func TestAssessClassifications(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	underutilized := analyzer.Assess(metricsWithCPU(12, 35))
	assert.Equal(t, ClassUnderutilized, underutilized.Classification)
	assert.Equal(t, 44, underutilized.Score)

	healthy := analyzer.Assess(metricsWithCPU(55, 75))
	assert.Equal(t, ClassHealthy, healthy.Classification)
	assert.Equal(t, 100, healthy.Score)

	overutilized := analyzer.Assess(metricsWithCPU(92, 100))
	assert.Equal(t, ClassOverutilized, overutilized.Classification)
}

func TestUnderutilizedRequiresLowPeak(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	assert.True(t, analyzer.Underutilized(metricsWithCPU(12, 35)))

	// Bursty workload: low average but high peaks.
	assert.False(t, analyzer.Underutilized(metricsWithCPU(12, 85)))
	assert.Equal(t, ClassHealthy, analyzer.Assess(metricsWithCPU(12, 85)).Classification)
}

func TestThresholdBoundaries(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	// Exactly on a threshold is not over the line.
	assert.Equal(t, ClassHealthy, analyzer.Assess(metricsWithCPU(20, 40)).Classification)
	assert.Equal(t, ClassHealthy, analyzer.Assess(metricsWithCPU(80, 95)).Classification)
}
