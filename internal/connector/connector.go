// Package connector defines the cloud provider connector contract.
package connector

import (
	"context"
	"time"

	"cost-optimizer/internal/models"
)

// Permissions reports which API scopes a connector's credentials grant.
type Permissions struct {
	CostRead       bool `json:"cost_read"`
	ResourceRead   bool `json:"resource_read"`
	ResourceModify bool `json:"resource_modify"`
	BillingRead    bool `json:"billing_read"`
}

// Connector is implemented by each cloud provider integration.
type Connector interface {
	// Name returns the provider name, e.g. "AWS".
	Name() string

	// Authenticate establishes provider clients and probes the connection.
	Authenticate(ctx context.Context) error

	// IsAuthenticated reports whether Authenticate has succeeded.
	IsAuthenticated() bool

	// CostData returns provider costs in INR for the window [start, end).
	CostData(ctx context.Context, start, end time.Time) (*models.ProviderCosts, error)

	// Inventory lists the provider's resources.
	Inventory(ctx context.Context) ([]models.Resource, error)

	// UtilizationMetrics returns utilization statistics for one resource
	// over the trailing number of days.
	UtilizationMetrics(ctx context.Context, resourceID string, days int) (*models.UtilizationMetrics, error)

	// Permissions probes which scopes the credentials grant.
	Permissions(ctx context.Context) (Permissions, error)
}
