package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Lifecycle LifecycleConfig
	Grading   GradingConfig
	Planner   PlannerConfig
	Calendar  CalendarConfig
	ERP       ERPConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// LifecycleConfig holds purchase order lifecycle settings
type LifecycleConfig struct {
	MaxRevisions  int // delivery-date commitments before auto-cancel
	UpdateRetries int // attempts on optimistic-lock conflicts
}

// GradingConfig holds supplier reliability scoring settings
type GradingConfig struct {
	ConfidenceOrders float64
	Prior            float64
	ThresholdA       float64
	ThresholdB       float64
	CacheTTL         time.Duration
}

// VehicleConfig is one entry of the vehicle catalog
type VehicleConfig struct {
	Name        string  `mapstructure:"name"`
	CapacityKg  float64 `mapstructure:"capacity_kg"`
	CapacityCBM float64 `mapstructure:"capacity_cbm"`
}

// PlannerConfig holds consolidation planner settings
type PlannerConfig struct {
	DispatchThreshold  float64
	MinimumLoad        float64
	WaitWindowDays     int
	FallbackUnitWeight float64
	FallbackUnitVolume float64
	Destination        string
	HomeRegion         string
	EligibleStatuses   []string
	Vehicles           []VehicleConfig
}

// CalendarConfig holds the dispatch calendar
type CalendarConfig struct {
	DispatchWeekdays []string
	Holidays         []string // YYYY-MM-DD
	Timezone         string
}

// ERPConfig holds settings for the upstream system-of-record notifier
type ERPConfig struct {
	Enabled    bool
	SystemName string
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	Enabled         bool
	BacklogInterval time.Duration
	JobTimeout      time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool // dev only
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled  bool
	PyroscopeEndpoint string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PORTAL_ prefix (e.g., PORTAL_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var vehicles []VehicleConfig
	if err := v.UnmarshalKey("planner.vehicles", &vehicles); err != nil {
		return nil, fmt.Errorf("error reading planner.vehicles: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			RequestTimeout:    v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Lifecycle: LifecycleConfig{
			MaxRevisions:  v.GetInt("lifecycle.max_revisions"),
			UpdateRetries: v.GetInt("lifecycle.update_retries"),
		},
		Grading: GradingConfig{
			ConfidenceOrders: v.GetFloat64("grading.confidence_orders"),
			Prior:            v.GetFloat64("grading.prior"),
			ThresholdA:       v.GetFloat64("grading.threshold_a"),
			ThresholdB:       v.GetFloat64("grading.threshold_b"),
			CacheTTL:         v.GetDuration("grading.cache_ttl"),
		},
		Planner: PlannerConfig{
			DispatchThreshold:  v.GetFloat64("planner.dispatch_threshold"),
			MinimumLoad:        v.GetFloat64("planner.minimum_load"),
			WaitWindowDays:     v.GetInt("planner.wait_window_days"),
			FallbackUnitWeight: v.GetFloat64("planner.fallback_unit_weight"),
			FallbackUnitVolume: v.GetFloat64("planner.fallback_unit_volume"),
			Destination:        v.GetString("planner.destination"),
			HomeRegion:         v.GetString("planner.home_region"),
			EligibleStatuses:   v.GetStringSlice("planner.eligible_statuses"),
			Vehicles:           vehicles,
		},
		Calendar: CalendarConfig{
			DispatchWeekdays: v.GetStringSlice("calendar.dispatch_weekdays"),
			Holidays:         v.GetStringSlice("calendar.holidays"),
			Timezone:         v.GetString("calendar.timezone"),
		},
		ERP: ERPConfig{
			Enabled:    v.GetBool("erp.enabled"),
			SystemName: v.GetString("erp.system_name"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("scheduler.enabled"),
			BacklogInterval: v.GetDuration("scheduler.backlog_interval"),
			JobTimeout:      v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "smart-logistic-portal"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "logistics"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "portal.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// No CORS origin default: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Portal-Role"}
	}
	if cfg.Lifecycle.MaxRevisions == 0 {
		cfg.Lifecycle.MaxRevisions = 3
	}
	if cfg.Lifecycle.UpdateRetries == 0 {
		cfg.Lifecycle.UpdateRetries = 3
	}
	if cfg.Grading.ConfidenceOrders == 0 {
		cfg.Grading.ConfidenceOrders = 5
	}
	if cfg.Grading.Prior == 0 {
		cfg.Grading.Prior = 0.7
	}
	if cfg.Grading.ThresholdA == 0 {
		cfg.Grading.ThresholdA = 90
	}
	if cfg.Grading.ThresholdB == 0 {
		cfg.Grading.ThresholdB = 70
	}
	if cfg.Grading.CacheTTL == 0 {
		cfg.Grading.CacheTTL = 5 * time.Minute
	}
	if cfg.Planner.DispatchThreshold == 0 {
		cfg.Planner.DispatchThreshold = 0.8
	}
	if cfg.Planner.MinimumLoad == 0 {
		cfg.Planner.MinimumLoad = 0.3
	}
	if cfg.Planner.WaitWindowDays == 0 {
		cfg.Planner.WaitWindowDays = 3
	}
	if cfg.Planner.Destination == "" {
		cfg.Planner.Destination = "BIHAR FACTORY"
	}
	if cfg.Planner.HomeRegion == "" {
		cfg.Planner.HomeRegion = "Bihar"
	}
	if len(cfg.Planner.EligibleStatuses) == 0 {
		cfg.Planner.EligibleStatuses = []string{"OPEN", "CONFIRMED"}
	}
	if len(cfg.Planner.Vehicles) == 0 {
		cfg.Planner.Vehicles = []VehicleConfig{
			{Name: "Other", CapacityKg: 750},
			{Name: "Pickup", CapacityKg: 1500},
			{Name: "Truck", CapacityKg: 5000},
		}
	}
	if len(cfg.Calendar.DispatchWeekdays) == 0 {
		cfg.Calendar.DispatchWeekdays = []string{"Tuesday", "Friday"}
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = "Asia/Kolkata"
	}
	if cfg.ERP.SystemName == "" {
		cfg.ERP.SystemName = "ERPNext"
	}
	if cfg.Scheduler.BacklogInterval == 0 {
		cfg.Scheduler.BacklogInterval = 15 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "smart-logistic-portal"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeEndpoint == "" {
		cfg.Telemetry.PyroscopeEndpoint = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Lifecycle.MaxRevisions < 1 {
		return fmt.Errorf("lifecycle.max_revisions must be at least 1")
	}
	if c.Lifecycle.UpdateRetries < 1 {
		return fmt.Errorf("lifecycle.update_retries must be at least 1")
	}
	if c.Grading.ThresholdB > c.Grading.ThresholdA {
		return fmt.Errorf("grading.threshold_b (%.1f) cannot exceed grading.threshold_a (%.1f)",
			c.Grading.ThresholdB, c.Grading.ThresholdA)
	}
	if c.Grading.Prior < 0 || c.Grading.Prior > 1 {
		return fmt.Errorf("grading.prior must be between 0.0 and 1.0, got %f", c.Grading.Prior)
	}
	if c.Planner.DispatchThreshold <= 0 || c.Planner.DispatchThreshold > 1 {
		return fmt.Errorf("planner.dispatch_threshold must be in (0, 1], got %f", c.Planner.DispatchThreshold)
	}
	for _, vc := range c.Planner.Vehicles {
		if vc.Name == "" || vc.CapacityKg <= 0 {
			return fmt.Errorf("planner.vehicles entries need a name and a positive capacity_kg")
		}
	}

	if c.App.Env == "production" {
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
