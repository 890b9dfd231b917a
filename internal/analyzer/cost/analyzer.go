// Package cost aggregates spend across cloud provider connectors.
package cost

import (
	"context"
	"sync"
	"time"

	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/common/metrics"
	"cost-optimizer/internal/common/observability"
	"cost-optimizer/internal/connector"
	"cost-optimizer/internal/models"
)

// Analyzer fans cost queries out to every connector and aggregates the
// results into a single INR view.
type Analyzer struct {
	connectors []connector.Connector
	cfg        config.AnalyzerConfig
	obs        *observability.Observability
	logger     logger.Logger
}

func NewAnalyzer(connectors []connector.Connector, cfg config.AnalyzerConfig, obs *observability.Observability, log logger.Logger) *Analyzer {
	return &Analyzer{
		connectors: connectors,
		cfg:        cfg,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "cost-analyzer"}),
	}
}

// AnalyzeCosts aggregates provider costs for the window [start, end).
// Connectors that fail are logged and skipped so one broken provider
// never blanks the whole report.
func (a *Analyzer) AnalyzeCosts(ctx context.Context, start, end time.Time) (*models.CostAnalysis, error) {
	began := time.Now()

	analysis := &models.CostAnalysis{
		Period:      models.Period{Start: start, End: end},
		Currency:    "INR",
		Providers:   map[string]models.ProviderCosts{},
		GeneratedAt: time.Now().UTC(),
	}

	timeout := time.Duration(a.cfg.ConnectorTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	type result struct {
		provider string
		costs    *models.ProviderCosts
		err      error
	}

	results := make(chan result, len(a.connectors))
	var wg sync.WaitGroup

	for _, conn := range a.connectors {
		if !conn.IsAuthenticated() {
			a.logger.Warn("skipping unauthenticated connector", map[string]interface{}{
				"provider": conn.Name(),
			})
			continue
		}

		wg.Add(1)
		go func(conn connector.Connector) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			costs, err := conn.CostData(callCtx, start, end)
			results <- result{provider: conn.Name(), costs: costs, err: err}
		}(conn)
	}

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			a.logger.WithError(res.err).Error("failed to get provider costs", map[string]interface{}{
				"provider": res.provider,
			})
			continue
		}
		analysis.Providers[res.provider] = *res.costs
		analysis.TotalCostINR += res.costs.TotalCostINR
	}

	analysis.PotentialSavingsINR = analysis.TotalCostINR * a.cfg.SavingsRatio

	if a.obs != nil {
		a.obs.RecordAnalysis(ctx, "success")
		a.obs.RecordAnalysisDuration(ctx, time.Since(began), "success")
	}
	metrics.AnalysesTotal.WithLabelValues("success").Inc()

	return analysis, nil
}

// Trends aggregates costs over the trailing number of days. A
// non-positive days falls back to the configured default.
func (a *Analyzer) Trends(ctx context.Context, days int) (*models.CostAnalysis, error) {
	if days <= 0 {
		days = a.cfg.DefaultTrendDays
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	return a.AnalyzeCosts(ctx, start, end)
}
