// cmd/cost-optimizer/main.go
package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"go.uber.org/zap"

	costanalyzer "cost-optimizer/internal/analyzer/cost"
	"cost-optimizer/internal/analyzer/vm"
	"cost-optimizer/internal/auth"
	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/database"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/common/observability"
	"cost-optimizer/internal/connector"
	awsconn "cost-optimizer/internal/connector/aws"
	"cost-optimizer/internal/fx"
	"cost-optimizer/internal/notify"
	"cost-optimizer/internal/optimizer"
	"cost-optimizer/internal/server"
	"cost-optimizer/internal/service"
	"cost-optimizer/internal/store"
	"cost-optimizer/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting cost optimizer...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// PostgreSQL
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// Redis
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// Elasticsearch
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// Exchange rates
	rates := fx.NewConverter(
		cfg.Market.USDToINR,
		cfg.RateSource.URL,
		time.Duration(cfg.RateSource.Timeout)*time.Millisecond,
		log,
	)
	if cfg.RateSource.RefreshInterval > 0 {
		rates.StartRefreshing(ctx, time.Duration(cfg.RateSource.RefreshInterval)*time.Second)
	}

	// Connector registry and connectors
	catalog, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("connector registry load failed", zap.Error(err))
	}

	connectors := []connector.Connector{}
	if cfg.Providers.AWS.Enabled {
		err := catalog.ValidateConfig("aws", map[string]interface{}{
			"region":            cfg.Providers.AWS.Region,
			"access_key_id":     cfg.Providers.AWS.AccessKeyID,
			"secret_access_key": cfg.Providers.AWS.SecretAccessKey,
		})
		if err != nil {
			zapLog.Fatal("AWS connector config invalid", zap.Error(err))
		}

		aws := awsconn.NewConnector(cfg.Providers, rates, log)
		if err := aws.Authenticate(ctx); err != nil {
			zapLog.Warn("AWS connector authentication failed, continuing without it", zap.Error(err))
		}
		connectors = append(connectors, aws)
	}

	// Analysis pipeline
	vmAnalyzer := vm.NewAnalyzer(cfg.Analyzer)
	analyzer := costanalyzer.NewAnalyzer(connectors, cfg.Analyzer, obs, log)

	var instanceRates optimizer.InstanceRates
	if cfg.Providers.AWS.Enabled {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Providers.AWS.Region),
		}
		if cfg.Providers.AWS.AccessKeyID != "" && cfg.Providers.AWS.SecretAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.Providers.AWS.AccessKeyID, cfg.Providers.AWS.SecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			zapLog.Warn("price list client init failed, using baseline savings", zap.Error(err))
		} else {
			instanceRates = optimizer.NewPriceListRates(pricing.NewFromConfig(awsCfg), rates, log)
		}
	}

	engine := optimizer.NewEngine(vmAnalyzer, instanceRates, log)

	cache := store.NewSummaryCache(redis,
		time.Duration(cfg.Database.Redis.SummaryTTL)*time.Second,
		time.Duration(cfg.Analyzer.MetricsCacheTTL)*time.Second,
	)
	archive := store.NewAnalysisIndex(esClient, cfg.Database.Elasticsearch.Index)

	users := store.NewUserStore(pg)
	if err := users.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("users schema init failed", zap.Error(err))
	}

	notifier, err := notify.NewBudgetNotifier(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("budget notifier init failed", zap.Error(err))
	}

	svc := service.New(cfg, connectors, analyzer, vmAnalyzer, engine, cache, archive, notifier, log)

	srv := server.New(cfg, svc, users, auth.NewManager(cfg.Auth), map[string]server.Pinger{
		"postgres":      pg,
		"redis":         redis,
		"elasticsearch": esClient,
	}, log)

	if err := srv.Run(); err != nil {
		zapLog.Fatal("server exited", zap.Error(err))
	}
}
