package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultJWTSecret = "storefront-dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	PayPal    PayPalConfig
	Display   DisplayConfig
	Storage   StorageConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Swagger   SwaggerConfig
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

// IsProduction reports whether the app runs in production mode
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings.
// URI and Name are used by the document store, the remaining
// fields by the SQL drivers.
type DatabaseConfig struct {
	Driver          string
	URI             string
	Name            string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file, ":memory:" allowed
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	ConnectTimeout  time.Duration
	SlowQueryThresh time.Duration
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

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// PayPalConfig holds PayPal REST credentials.
// ClientSecret is optional; without it captures are not verified server-side.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string // sandbox or live
	Currency     string
	BaseURL      string // overrides the mode-derived API host
	Timeout      time.Duration
}

// DisplayConfig holds the currency used for display pricing
type DisplayConfig struct {
	Currency string
	Rate     float64
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Bucket            string
	AccessKey         string
	SecretKey         string
	Region            string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
	PublicBaseURL     string // prefix for public object URLs
	MaxUploadSize     int64
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
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

// SwaggerConfig controls the API documentation endpoints
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // access token required
	AllowedIPs  []string // IPs or CIDRs; empty allows all
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // traces
	MetricsEnabled    bool    // OTLP metrics export
	LogsEnabled       bool    // zap -> OTLP logs bridge
	CollectorEndpoint string  // e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	Profiling         ProfilingConfig
}

// ProfilingConfig holds pyroscope settings
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string
	AuthUser      string
	AuthPassword  string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_DATABASE_URI)
// 2. Legacy MONGO_URI and PORT variables
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			URI:             v.GetString("database.uri"),
			Name:            v.GetString("database.name"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			ConnectTimeout:  v.GetDuration("database.connect_timeout"),
			SlowQueryThresh: v.GetDuration("database.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
		},
		PayPal: PayPalConfig{
			ClientID:     v.GetString("paypal.client_id"),
			ClientSecret: v.GetString("paypal.client_secret"),
			Mode:         strings.ToLower(v.GetString("paypal.mode")),
			Currency:     strings.ToUpper(v.GetString("paypal.currency")),
			BaseURL:      v.GetString("paypal.base_url"),
			Timeout:      v.GetDuration("paypal.timeout"),
		},
		Display: DisplayConfig{
			Currency: strings.ToUpper(v.GetString("display.currency")),
			Rate:     v.GetFloat64("display.rate"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Region:            v.GetString("storage.region"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			MaxUploadSize:     v.GetInt64("storage.max_upload_size"),
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
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
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
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			Profiling: ProfilingConfig{
				Enabled:       v.GetBool("telemetry.profiling.enabled"),
				ServerAddress: v.GetString("telemetry.profiling.server_address"),
				AuthUser:      v.GetString("telemetry.profiling.auth_user"),
				AuthPassword:  v.GetString("telemetry.profiling.auth_password"),
			},
		},
	}

	applyLegacyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyLegacyEnv honours MONGO_URI and PORT when the prefixed keys are unset
func applyLegacyEnv(cfg *Config) {
	if cfg.Database.URI == "" {
		cfg.Database.URI = os.Getenv("MONGO_URI")
	}
	if cfg.App.Port == "" {
		cfg.App.Port = os.Getenv("PORT")
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5000"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverMongoDB
	}
	if cfg.Database.URI == "" {
		cfg.Database.URI = "mongodb://localhost:27017"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "storefront"
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
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "storefront.db"
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
	if cfg.Database.ConnectTimeout == 0 {
		cfg.Database.ConnectTimeout = 10 * time.Second
	}
	if cfg.Database.SlowQueryThresh == 0 {
		cfg.Database.SlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = defaultJWTSecret
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 30 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront-backend"
	}

	if cfg.PayPal.Mode == "" {
		cfg.PayPal.Mode = "sandbox"
	}
	if cfg.PayPal.Currency == "" {
		cfg.PayPal.Currency = "USD"
	}
	if cfg.PayPal.Timeout == 0 {
		cfg.PayPal.Timeout = 15 * time.Second
	}

	if cfg.Display.Currency == "" {
		cfg.Display.Currency = "INR"
	}
	if cfg.Display.Rate == 0 {
		cfg.Display.Rate = 83
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 5 << 20 // 5MB
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
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
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
	// No CORS origin default: cross-origin requests stay disabled until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Telemetry.Profiling.ServerAddress == "" {
		cfg.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMongoDB, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be one of mongodb, postgres, sqlite, got %q", c.Database.Driver)
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

	if c.PayPal.Mode != "sandbox" && c.PayPal.Mode != "live" {
		return fmt.Errorf("paypal.mode must be sandbox or live, got %q", c.PayPal.Mode)
	}
	if len(c.PayPal.Currency) != 3 {
		return fmt.Errorf("paypal.currency must be a 3-letter ISO code, got %q", c.PayPal.Currency)
	}

	if len(c.Display.Currency) != 3 {
		return fmt.Errorf("display.currency must be a 3-letter ISO code, got %q", c.Display.Currency)
	}
	if c.Display.Rate <= 0 {
		return fmt.Errorf("display.rate must be positive, got %f", c.Display.Rate)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("jwt.secret must be set in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == DriverPostgres && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Database.Driver == DriverSQLite {
			return fmt.Errorf("database.driver sqlite is not supported in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger must be disabled, require authentication, or have an IP restriction in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
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

// MongoHost returns the host portion of the Mongo URI for logging, without credentials
func (d *DatabaseConfig) MongoHost() string {
	u, err := url.Parse(d.URI)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// PayPalBaseURL returns the REST API host for the configured mode
func (p PayPalConfig) PayPalBaseURL() string {
	if p.BaseURL != "" {
		return strings.TrimRight(p.BaseURL, "/")
	}
	if p.Mode == "live" {
		return "https://api-m.paypal.com"
	}
	return "https://api-m.sandbox.paypal.com"
}

// VerificationEnabled reports whether captures can be verified against PayPal
func (p PayPalConfig) VerificationEnabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}
