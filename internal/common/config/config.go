// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Market     MarketConfig     `mapstructure:"market"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Alerts     AlertConfig      `mapstructure:"alerts"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	RateSource RateSourceConfig `mapstructure:"rate_source"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	SummaryTTL int    `mapstructure:"summary_ttl"` // seconds
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// --- Authentication Config ---

// AuthConfig holds JWT and API key settings for the HTTP surface.
type AuthConfig struct {
	SecretKey     string   `mapstructure:"secret_key"`
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	CookieName    string   `mapstructure:"cookie_name"`
	APIKeys       []string `mapstructure:"api_keys"`
}

// --- Cloud Provider Config ---

// ProvidersConfig holds credentials for each cloud provider connector.
// Azure and GCP are configuration stubs; only AWS is wired to a connector.
type ProvidersConfig struct {
	AWS struct {
		Enabled         bool   `mapstructure:"enabled"`
		Region          string `mapstructure:"region"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	} `mapstructure:"aws"`

	Azure struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		TenantID     string `mapstructure:"tenant_id"`
	} `mapstructure:"azure"`

	GCP struct {
		ProjectID       string `mapstructure:"project_id"`
		CredentialsFile string `mapstructure:"credentials_file"`
	} `mapstructure:"gcp"`
}

// MarketConfig holds Indian market settings.
type MarketConfig struct {
	Currency string  `mapstructure:"currency"`
	Timezone string  `mapstructure:"timezone"`
	Language string  `mapstructure:"language"`
	Market   string  `mapstructure:"market"`
	USDToINR float64 `mapstructure:"usd_to_inr"`
}

// AnalyzerConfig holds tunables for the cost and VM analyzers.
type AnalyzerConfig struct {
	CPUThresholdLow    float64 `mapstructure:"cpu_threshold_low"`
	CPUThresholdHigh   float64 `mapstructure:"cpu_threshold_high"`
	MemoryThresholdLow float64 `mapstructure:"memory_threshold_low"`
	DefaultTrendDays   int     `mapstructure:"default_trend_days"`
	SavingsRatio       float64 `mapstructure:"savings_ratio"`
	ConnectorTimeout   int     `mapstructure:"connector_timeout"` // milliseconds
	MetricsCacheTTL    int     `mapstructure:"metrics_cache_ttl"` // seconds
}

// AlertConfig holds settings for budget alert notifications.
type AlertConfig struct {
	MonthlyBudgetINR float64 `mapstructure:"monthly_budget_inr"`
	Email            struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
		SenderID    string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// RegistryConfig points at the connector catalog file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// RateSourceConfig holds the optional USD/INR exchange rate endpoint.
type RateSourceConfig struct {
	URL             string `mapstructure:"url"`
	Timeout         int    `mapstructure:"timeout"`          // milliseconds
	RefreshInterval int    `mapstructure:"refresh_interval"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
