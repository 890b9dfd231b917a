package models

import "time"

// Resource types reported by connectors.
const (
	ResourceTypeEC2 = "EC2"
	ResourceTypeEBS = "EBS"
)

// Resource is a single cloud resource from a connector inventory.
type Resource struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Provider     string            `json:"provider"`
	InstanceType string            `json:"instance_type,omitempty"`
	State        string            `json:"state,omitempty"`
	Region       string            `json:"region"`
	LaunchTime   *time.Time        `json:"launch_time,omitempty"`
	Attachments  []string          `json:"attachments,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// CPUUtilization holds aggregated CPU statistics for one resource.
type CPUUtilization struct {
	Average float64 `json:"average"`
	Maximum float64 `json:"maximum"`
}

// UtilizationMetrics is the per-resource metric sample set used for
// rightsizing analysis.
type UtilizationMetrics struct {
	ResourceID     string         `json:"resource_id"`
	PeriodDays     int            `json:"period_days"`
	CPUUtilization CPUUtilization `json:"cpu_utilization"`
	AnalysisDate   time.Time      `json:"analysis_date"`
}
