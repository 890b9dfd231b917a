// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like AWS_ACCESS_KEY_ID
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root,
// so the binary and tests behave the same from any directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the environment when the YAML
// left them empty after placeholder expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Providers.AWS.AccessKeyID == "" {
		if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
			cfg.Providers.AWS.AccessKeyID = val
		}
	}
	if cfg.Providers.AWS.SecretAccessKey == "" {
		if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
			cfg.Providers.AWS.SecretAccessKey = val
		}
	}
	if cfg.Auth.SecretKey == "" {
		if val := os.Getenv("AUTH_SECRET_KEY"); val != "" {
			cfg.Auth.SecretKey = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("POSTGRES_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cost-optimizer"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.SummaryTTL == 0 {
		cfg.Database.Redis.SummaryTTL = 300
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "cost-analysis"
	}

	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "access_token"
	}

	if cfg.Providers.AWS.Region == "" {
		cfg.Providers.AWS.Region = "ap-south-1"
	}

	if cfg.Market.Currency == "" {
		cfg.Market.Currency = "INR"
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "Asia/Kolkata"
	}
	if cfg.Market.Language == "" {
		cfg.Market.Language = "en-IN"
	}
	if cfg.Market.Market == "" {
		cfg.Market.Market = "India"
	}
	if cfg.Market.USDToINR == 0 {
		cfg.Market.USDToINR = 83.0
	}

	if cfg.Analyzer.CPUThresholdLow == 0 {
		cfg.Analyzer.CPUThresholdLow = 20.0
	}
	if cfg.Analyzer.CPUThresholdHigh == 0 {
		cfg.Analyzer.CPUThresholdHigh = 80.0
	}
	if cfg.Analyzer.MemoryThresholdLow == 0 {
		cfg.Analyzer.MemoryThresholdLow = 30.0
	}
	if cfg.Analyzer.DefaultTrendDays == 0 {
		cfg.Analyzer.DefaultTrendDays = 30
	}
	if cfg.Analyzer.SavingsRatio == 0 {
		cfg.Analyzer.SavingsRatio = 0.25
	}
	if cfg.Analyzer.ConnectorTimeout == 0 {
		cfg.Analyzer.ConnectorTimeout = 15000
	}
	if cfg.Analyzer.MetricsCacheTTL == 0 {
		cfg.Analyzer.MetricsCacheTTL = 600
	}

	if cfg.Alerts.AWS.Region == "" {
		cfg.Alerts.AWS.Region = cfg.Providers.AWS.Region
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/connectors.json"
	}

	if cfg.RateSource.Timeout == 0 {
		cfg.RateSource.Timeout = 5000
	}
	if cfg.RateSource.RefreshInterval == 0 {
		cfg.RateSource.RefreshInterval = 3600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Market.USDToINR <= 0 {
		return fmt.Errorf("market.usd_to_inr must be positive, got %f", cfg.Market.USDToINR)
	}
	if cfg.Analyzer.SavingsRatio < 0 || cfg.Analyzer.SavingsRatio > 1 {
		return fmt.Errorf("analyzer.savings_ratio must be in [0,1], got %f", cfg.Analyzer.SavingsRatio)
	}
	if cfg.Analyzer.CPUThresholdLow >= cfg.Analyzer.CPUThresholdHigh {
		return fmt.Errorf("analyzer.cpu_threshold_low must be below cpu_threshold_high")
	}
	if cfg.App.Environment == "production" && cfg.Auth.SecretKey == "" {
		return fmt.Errorf("auth.secret_key is required in production")
	}
	return nil
}
