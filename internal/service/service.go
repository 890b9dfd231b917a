// Package service orchestrates connectors, analyzers and stores behind
// the API handlers.
package service

import (
	"context"
	"errors"
	"time"

	"cost-optimizer/internal/analyzer/cost"
	"cost-optimizer/internal/analyzer/vm"
	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/connector"
	"cost-optimizer/internal/models"
	"cost-optimizer/internal/optimizer"
	"cost-optimizer/internal/store"
)

// Score reported when no utilization data is available.
const defaultOptimizationScore = 75

// Metrics window used for rightsizing decisions.
const utilizationWindowDays = 7

// SummaryCache is the slice of the cache the service needs.
type SummaryCache interface {
	Summary(ctx context.Context) (*models.CostSummary, error)
	LastSummary(ctx context.Context) (*models.CostSummary, error)
	PutSummary(ctx context.Context, summary *models.CostSummary) error
	Metrics(ctx context.Context, resourceID string) (*models.UtilizationMetrics, error)
	PutMetrics(ctx context.Context, utilization *models.UtilizationMetrics) error
}

// AnalysisArchive persists analysis snapshots.
type AnalysisArchive interface {
	Save(ctx context.Context, analysis *models.CostAnalysis) error
	History(ctx context.Context, limit int) ([]models.CostAnalysis, error)
}

// BudgetChecker fires budget alerts.
type BudgetChecker interface {
	CheckBudget(ctx context.Context, summary *models.CostSummary) (bool, error)
}

// Service wires the analysis pipeline together.
type Service struct {
	cfg        *config.Config
	connectors []connector.Connector
	analyzer   *cost.Analyzer
	vmAnalyzer *vm.Analyzer
	engine     *optimizer.Engine
	cache      SummaryCache
	archive    AnalysisArchive
	notifier   BudgetChecker
	logger     logger.Logger
}

func New(
	cfg *config.Config,
	connectors []connector.Connector,
	analyzer *cost.Analyzer,
	vmAnalyzer *vm.Analyzer,
	engine *optimizer.Engine,
	cache SummaryCache,
	archive AnalysisArchive,
	notifier BudgetChecker,
	log logger.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		connectors: connectors,
		analyzer:   analyzer,
		vmAnalyzer: vmAnalyzer,
		engine:     engine,
		cache:      cache,
		archive:    archive,
		notifier:   notifier,
		logger:     log.WithFields(map[string]interface{}{"component": "service"}),
	}
}

// Summary returns the cost summary, served from cache when fresh.
func (s *Service) Summary(ctx context.Context) (*models.CostSummary, error) {
	if cached, err := s.cache.Summary(ctx); err == nil {
		return cached, nil
	} else if !errors.Is(err, store.ErrCacheMiss) {
		s.logger.WithError(err).Warn("summary cache read failed", nil)
	}

	monthly, err := s.analyzer.Trends(ctx, s.cfg.Analyzer.DefaultTrendDays)
	if err != nil {
		return nil, err
	}

	quarter, err := s.analyzer.Trends(ctx, 3*s.cfg.Analyzer.DefaultTrendDays)
	if err != nil {
		return nil, err
	}

	// When no connector produced data, serve the last known copy rather
	// than report and cache a zeroed summary.
	hasData := len(monthly.Providers) > 0 || len(quarter.Providers) > 0
	if !hasData {
		if last, err := s.cache.LastSummary(ctx); err == nil {
			s.logger.Warn("no provider data, serving last known summary", nil)
			return last, nil
		}
	}

	summary := &models.CostSummary{
		TotalCostINR:        quarter.TotalCostINR,
		MonthlyCostINR:      monthly.TotalCostINR,
		PotentialSavingsINR: quarter.PotentialSavingsINR,
		OptimizationScore:   s.optimizationScore(ctx),
		LastUpdated:         time.Now().UTC(),
	}

	if hasData {
		if err := s.cache.PutSummary(ctx, summary); err != nil {
			s.logger.WithError(err).Warn("summary cache write failed", nil)
		}
	}

	if s.notifier != nil {
		if fired, err := s.notifier.CheckBudget(ctx, summary); err != nil {
			s.logger.WithError(err).Warn("budget alert failed", nil)
		} else if fired {
			s.logger.Info("budget alert sent", map[string]interface{}{
				"monthlyCostInr": summary.MonthlyCostINR,
			})
		}
	}

	return summary, nil
}

// Resources lists inventory across every authenticated connector.
// Failing connectors are logged and skipped.
func (s *Service) Resources(ctx context.Context) ([]models.Resource, error) {
	resources := []models.Resource{}

	for _, conn := range s.connectors {
		if !conn.IsAuthenticated() {
			continue
		}

		inventory, err := conn.Inventory(ctx)
		if err != nil {
			s.logger.WithError(err).Error("inventory fetch failed", map[string]interface{}{
				"provider": conn.Name(),
			})
			continue
		}
		resources = append(resources, inventory...)
	}

	return resources, nil
}

// Recommendations runs the rule engine over current inventory and
// utilization data.
func (s *Service) Recommendations(ctx context.Context) ([]models.Recommendation, error) {
	resources, err := s.Resources(ctx)
	if err != nil {
		return nil, err
	}

	utilization := s.collectUtilization(ctx, resources)
	return s.engine.Generate(ctx, resources, utilization), nil
}

// RecommendationsSummary aggregates the current recommendations.
func (s *Service) RecommendationsSummary(ctx context.Context) (models.SavingsSummary, error) {
	recommendations, err := s.Recommendations(ctx)
	if err != nil {
		return models.SavingsSummary{}, err
	}
	return s.engine.Totals(recommendations), nil
}

// Trends runs a cost analysis over the trailing number of days and
// archives the snapshot.
func (s *Service) Trends(ctx context.Context, days int) (*models.CostAnalysis, error) {
	analysis, err := s.analyzer.Trends(ctx, days)
	if err != nil {
		return nil, err
	}

	analysis.OptimizationScore = s.optimizationScore(ctx)

	if s.archive != nil {
		if err := s.archive.Save(ctx, analysis); err != nil {
			s.logger.WithError(err).Warn("analysis archive failed", nil)
		}
	}

	return analysis, nil
}

// History returns archived analysis snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.CostAnalysis, error) {
	if s.archive == nil {
		return []models.CostAnalysis{}, nil
	}
	return s.archive.History(ctx, limit)
}

// collectUtilization gathers CPU metrics for running instances, going
// through the metrics cache before hitting the provider.
func (s *Service) collectUtilization(ctx context.Context, resources []models.Resource) map[string]*models.UtilizationMetrics {
	byProvider := map[string]connector.Connector{}
	for _, conn := range s.connectors {
		byProvider[conn.Name()] = conn
	}

	utilization := map[string]*models.UtilizationMetrics{}

	for _, resource := range resources {
		if resource.Type != models.ResourceTypeEC2 || resource.State != "running" {
			continue
		}

		if cached, err := s.cache.Metrics(ctx, resource.ID); err == nil {
			utilization[resource.ID] = cached
			continue
		}

		conn, ok := byProvider[resource.Provider]
		if !ok {
			continue
		}

		usage, err := conn.UtilizationMetrics(ctx, resource.ID, utilizationWindowDays)
		if err != nil {
			s.logger.WithError(err).Warn("utilization fetch failed", map[string]interface{}{
				"resourceId": resource.ID,
			})
			continue
		}

		utilization[resource.ID] = usage
		if err := s.cache.PutMetrics(ctx, usage); err != nil {
			s.logger.WithError(err).Warn("metrics cache write failed", map[string]interface{}{
				"resourceId": resource.ID,
			})
		}
	}

	return utilization
}

// optimizationScore averages VM utilization scores across running
// instances, falling back to the default when no data exists.
func (s *Service) optimizationScore(ctx context.Context) int {
	resources, err := s.Resources(ctx)
	if err != nil {
		return defaultOptimizationScore
	}

	utilization := s.collectUtilization(ctx, resources)
	if len(utilization) == 0 {
		return defaultOptimizationScore
	}

	total := 0
	for _, usage := range utilization {
		total += s.vmAnalyzer.Assess(usage).Score
	}
	return total / len(utilization)
}
