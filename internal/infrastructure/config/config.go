package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Capture   CaptureConfig
	Target    TargetConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
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

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	// Capture requests per client per window; 0 disables the limit
	CaptureRateLimit  int
	CaptureRateWindow time.Duration
}

// CaptureConfig holds the initial capture settings and pipeline knobs.
// Settings may be edited at runtime; these are the values loaded at startup.
type CaptureConfig struct {
	PaperSize           string
	PaperWidthMM        float64 // CUSTOM only
	PaperHeightMM       float64 // CUSTOM only
	Swap                bool
	DPI                 float64
	DPIToPPIRatio       float64
	MaximumPixels       int64
	PixelFormat         string // RGBA32, RGB24
	Naming              string // TIMESTAMP, FIXED
	Collision           string // OVERWRITE, SUFFIX
	YieldsAfterAllocate int
	YieldsAfterRender   int
	TickInterval        time.Duration // host frame clock
	Locale              string        // status text language
	HistoryEnabled      bool
}

// TargetConfig selects and configures the render target
type TargetConfig struct {
	Kind       string // image, chromedp
	ScenePath  string // image: PNG or JPEG scene; empty renders a blank scene
	URL        string // chromedp: page to render
	HTML       string // chromedp: inline page when URL is empty
	RemoteURL  string // chromedp: remote browser, empty launches one
	NoSandbox  bool
	Timeout    time.Duration
	StartIdle  bool // start inactive until activated through the API
	Background string
}

// StorageConfig holds output storage settings
type StorageConfig struct {
	Kind string // filesystem, s3

	// filesystem
	BasePath string

	// s3
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// DatabaseConfig holds capture history database settings
type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	Path            string // sqlite file, ":memory:" allowed
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for status fan-out
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	Channel   string
	StatusKey string
	StatusTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration

	LogsEnabled bool // bridge zap records to the collector

	ProfilingEnabled       bool
	ProfilingServerAddress string // Pyroscope server, e.g. "http://localhost:4040"

	DBTraceEnabled    bool
	DBLogFullSQL      bool          // include query variables in spans (development only)
	DBSlowQueryThresh time.Duration // queries slower than this are flagged
}

// Supported backend kinds
var (
	targetKinds   = []string{"image", "chromedp"}
	storageKinds  = []string{"filesystem", "s3"}
	databaseKinds = []string{"sqlite", "postgres"}
)

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CAPTURE_ prefix (e.g., CAPTURE_CAPTURE_DPI)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches
// the working directory and /app for config.toml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/app")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("CAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			CaptureRateLimit:  v.GetInt("http.capture_rate_limit"),
			CaptureRateWindow: v.GetDuration("http.capture_rate_window"),
		},
		Capture: CaptureConfig{
			PaperSize:           v.GetString("capture.paper_size"),
			PaperWidthMM:        v.GetFloat64("capture.paper_width_mm"),
			PaperHeightMM:       v.GetFloat64("capture.paper_height_mm"),
			Swap:                v.GetBool("capture.swap"),
			DPI:                 v.GetFloat64("capture.dpi"),
			DPIToPPIRatio:       v.GetFloat64("capture.dpi_to_ppi_ratio"),
			MaximumPixels:       v.GetInt64("capture.maximum_pixels"),
			PixelFormat:         v.GetString("capture.pixel_format"),
			Naming:              v.GetString("capture.naming"),
			Collision:           v.GetString("capture.collision"),
			YieldsAfterAllocate: v.GetInt("capture.yields_after_allocate"),
			YieldsAfterRender:   v.GetInt("capture.yields_after_render"),
			TickInterval:        v.GetDuration("capture.tick_interval"),
			Locale:              v.GetString("capture.locale"),
			HistoryEnabled:      !v.IsSet("capture.history_enabled") || v.GetBool("capture.history_enabled"),
		},
		Target: TargetConfig{
			Kind:       v.GetString("target.kind"),
			ScenePath:  v.GetString("target.scene_path"),
			URL:        v.GetString("target.url"),
			HTML:       v.GetString("target.html"),
			RemoteURL:  v.GetString("target.remote_url"),
			NoSandbox:  v.GetBool("target.no_sandbox"),
			Timeout:    v.GetDuration("target.timeout"),
			StartIdle:  v.GetBool("target.start_idle"),
			Background: v.GetString("target.background"),
		},
		Storage: StorageConfig{
			Kind:         v.GetString("storage.kind"),
			BasePath:     v.GetString("storage.base_path"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			Prefix:       v.GetString("storage.prefix"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			Channel:   v.GetString("redis.channel"),
			StatusKey: v.GetString("redis.status_key"),
			StatusTTL: v.GetDuration("redis.status_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),

			LogsEnabled: v.GetBool("telemetry.logs_enabled"),

			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),

			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "camera-capture"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.CaptureRateWindow == 0 {
		cfg.HTTP.CaptureRateWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "Accept-Language"}
	}

	// Capture defaults match the legacy tool: A4 portrait at 350 dpi
	if cfg.Capture.PaperSize == "" {
		cfg.Capture.PaperSize = "A4"
	}
	if cfg.Capture.PaperWidthMM == 0 {
		cfg.Capture.PaperWidthMM = 210
	}
	if cfg.Capture.PaperHeightMM == 0 {
		cfg.Capture.PaperHeightMM = 297
	}
	if cfg.Capture.DPI == 0 {
		cfg.Capture.DPI = 350
	}
	if cfg.Capture.DPIToPPIRatio == 0 {
		cfg.Capture.DPIToPPIRatio = 1
	}
	if cfg.Capture.MaximumPixels == 0 {
		cfg.Capture.MaximumPixels = 18_000_000
	}
	if cfg.Capture.PixelFormat == "" {
		cfg.Capture.PixelFormat = "RGB24"
	}
	if cfg.Capture.Naming == "" {
		cfg.Capture.Naming = "TIMESTAMP"
	}
	if cfg.Capture.Collision == "" {
		cfg.Capture.Collision = "OVERWRITE"
	}
	if cfg.Capture.YieldsAfterAllocate == 0 {
		cfg.Capture.YieldsAfterAllocate = 1
	}
	if cfg.Capture.YieldsAfterRender == 0 {
		cfg.Capture.YieldsAfterRender = 1
	}
	if cfg.Capture.TickInterval == 0 {
		cfg.Capture.TickInterval = 16 * time.Millisecond // ~60 fps
	}
	if cfg.Capture.Locale == "" {
		cfg.Capture.Locale = "en"
	}

	if cfg.Target.Kind == "" {
		cfg.Target.Kind = "image"
	}
	if cfg.Target.Timeout == 0 {
		cfg.Target.Timeout = 60 * time.Second
	}

	if cfg.Storage.Kind == "" {
		cfg.Storage.Kind = "filesystem"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./captures"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "captures.db"
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
		cfg.Database.DBName = "captures"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
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
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "capture:events"
	}
	if cfg.Redis.StatusKey == "" {
		cfg.Redis.StatusKey = "capture:status"
	}
	if cfg.Redis.StatusTTL == 0 {
		cfg.Redis.StatusTTL = 24 * time.Hour
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "camera-capture"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.ProfilingServerAddress == "" {
		cfg.Telemetry.ProfilingServerAddress = "http://localhost:4040"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if !slices.Contains(targetKinds, c.Target.Kind) {
		return fmt.Errorf("target.kind must be one of %v, got %q", targetKinds, c.Target.Kind)
	}
	if c.Target.Kind == "chromedp" && c.Target.URL == "" && strings.TrimSpace(c.Target.HTML) == "" {
		return fmt.Errorf("target.url or target.html is required for the chromedp target")
	}

	if !slices.Contains(storageKinds, c.Storage.Kind) {
		return fmt.Errorf("storage.kind must be one of %v, got %q", storageKinds, c.Storage.Kind)
	}
	if c.Storage.Kind == "s3" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required for s3 storage")
	}

	if !slices.Contains(databaseKinds, c.Database.Driver) {
		return fmt.Errorf("database.driver must be one of %v, got %q", databaseKinds, c.Database.Driver)
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

	if c.HTTP.CaptureRateLimit < 0 {
		return fmt.Errorf("http.capture_rate_limit cannot be negative")
	}

	if c.Capture.YieldsAfterAllocate < 1 {
		return fmt.Errorf("capture.yields_after_allocate must be at least 1")
	}
	if c.Capture.YieldsAfterRender < 1 {
		return fmt.Errorf("capture.yields_after_render must be at least 1")
	}
	if c.Capture.TickInterval < 0 {
		return fmt.Errorf("capture.tick_interval cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.App.Env == "production" && c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql cannot be enabled in production")
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
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

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
