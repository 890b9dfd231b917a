// Package vm classifies virtual machine utilization for rightsizing.
package vm

import (
	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/models"
)

// Classification labels.
const (
	ClassUnderutilized = "underutilized"
	ClassOverutilized  = "overutilized"
	ClassHealthy       = "healthy"
)

// Peak utilization above this disqualifies an instance from downsizing
// even when the average is low.
const peakCPUDownsizeLimit = 50

// Assessment is the analyzer's verdict for one instance.
type Assessment struct {
	ResourceID     string  `json:"resource_id"`
	Classification string  `json:"classification"`
	CPUAverage     float64 `json:"cpu_average"`
	CPUMaximum     float64 `json:"cpu_maximum"`
	Score          int     `json:"score"`
}

// Analyzer classifies instances by CPU utilization against configured
// thresholds.
type Analyzer struct {
	cpuLow  float64
	cpuHigh float64
	memLow  float64
}

func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	return &Analyzer{
		cpuLow:  cfg.CPUThresholdLow,
		cpuHigh: cfg.CPUThresholdHigh,
		memLow:  cfg.MemoryThresholdLow,
	}
}

// Assess classifies one instance from its utilization metrics.
func (a *Analyzer) Assess(utilization *models.UtilizationMetrics) Assessment {
	assessment := Assessment{
		ResourceID:     utilization.ResourceID,
		Classification: ClassHealthy,
		CPUAverage:     utilization.CPUUtilization.Average,
		CPUMaximum:     utilization.CPUUtilization.Maximum,
		Score:          Score(utilization.CPUUtilization.Average),
	}

	switch {
	case a.Underutilized(utilization):
		assessment.Classification = ClassUnderutilized
	case utilization.CPUUtilization.Average > a.cpuHigh:
		assessment.Classification = ClassOverutilized
	}

	return assessment
}

// Underutilized reports whether an instance is a downsizing candidate.
// A low average alone is not enough; a bursty instance with high peaks
// stays where it is.
func (a *Analyzer) Underutilized(utilization *models.UtilizationMetrics) bool {
	return utilization.CPUUtilization.Average < a.cpuLow &&
		utilization.CPUUtilization.Maximum < peakCPUDownsizeLimit
}

// Score maps average CPU utilization to a 0..100 efficiency score.
// The 40..70 band scores 100; utilization below it loses 2 points per
// percentage point of distance, above it 1.5 points.
func Score(avgCPU float64) int {
	switch {
	case avgCPU >= 40 && avgCPU <= 70:
		return 100
	case avgCPU < 40:
		return max(0, int(100-(40-avgCPU)*2))
	default:
		return max(0, int(100-(avgCPU-70)*1.5))
	}
}
