package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/earsip/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Upstream   UpstreamConfig
	Mock       MockConfig
	Pagination PaginationConfig
	Auth       AuthConfig
	Archive    ArchiveConfig
	Storage    StorageConfig
	Secrets    SecretsConfig
	Telemetry  TelemetryConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        int
}

// UpstreamConfig describes the archive REST API every façade call is sent to
type UpstreamConfig struct {
	BaseURL string
	// Timeout bounds a single attempt in seconds. Retries get a fresh budget.
	Timeout int
	// CategoryCacheTTL is how long the category catalogue is reused (seconds)
	CategoryCacheTTL int
}

// MockConfig switches every façade call to the in-process fixture backend
type MockConfig struct {
	Enabled bool
	Seed    int64
	// Letters is the number of seeded letters per kind
	Letters int
	Email   string
	// Password for the fixture user; any non-empty password is accepted when empty
	Password string
}

type PaginationConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

// AuthConfig holds the upstream auth endpoints and the admin session cookie settings
type AuthConfig struct {
	LoginPath    string
	LogoutPath   string
	UserPath     string
	CookieName   string
	CookieSecure bool
	// TokenFile is where the CLI persists the bearer token
	TokenFile string
}

// ArchiveConfig controls the monthly report archive job
type ArchiveConfig struct {
	Enabled         bool
	Cron            string
	Timeout         int // seconds
	Entity          string
	ServiceEmail    string
	ServicePassword string
	RunOnStartup    bool
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	S3Endpoint            string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type TelemetryConfig struct {
	TracingEnabled bool
	MetricsEnabled bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for requests without a session (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for requests carrying a session cookie
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	// WhitelistPaths bypass rate limiting; a trailing /* matches a prefix
	WhitelistPaths []string
}

// TimeoutDuration returns the per-attempt upstream timeout
func (u *UpstreamConfig) TimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

// CategoryCacheTTLDuration returns the category catalogue cache lifetime
func (u *UpstreamConfig) CategoryCacheTTLDuration() time.Duration {
	return time.Duration(u.CategoryCacheTTL) * time.Second
}

// TimeoutDuration returns the archive job timeout
func (a *ArchiveConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Short names used by the deployment manifests
	if baseURL := v.GetString("API_BASE_URL"); baseURL != "" {
		cfg.Upstream.BaseURL = baseURL
	}
	if v.GetBool("USE_MOCK") {
		cfg.Mock.Enabled = true
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Archive service credentials and the storage connection string come from Azure Key Vault
// when USE_AZURE_KEY_VAULT=true and the environment is staging or production.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := ApplySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource is the subset of secrets.Provider used to fill configuration
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ApplySecrets copies resolved secrets into cfg. Missing secrets keep the existing value.
func ApplySecrets(ctx context.Context, cfg *Config, src SecretSource) error {
	if email, err := src.GetSecretOrEnv(ctx, "archive-service-email", "ARCHIVE_SERVICEEMAIL"); err == nil && email != "" {
		cfg.Archive.ServiceEmail = email
	}
	if password, err := src.GetSecretOrEnv(ctx, "archive-service-password", "ARCHIVE_SERVICEPASSWORD"); err == nil && password != "" {
		cfg.Archive.ServicePassword = password
	}
	if connStr, err := src.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}
	if key, err := src.GetSecretOrEnv(ctx, "s3-access-key", "STORAGE_S3ACCESSKEY"); err == nil && key != "" {
		cfg.Storage.S3AccessKey = key
	}
	if secret, err := src.GetSecretOrEnv(ctx, "s3-secret-key", "STORAGE_S3SECRETKEY"); err == nil && secret != "" {
		cfg.Storage.S3SecretKey = secret
	}

	if cfg.Archive.Enabled && (cfg.Archive.ServiceEmail == "" || cfg.Archive.ServicePassword == "") {
		return fmt.Errorf("archive job enabled but service credentials are missing")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "E-Arsip")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Upstream defaults
	v.SetDefault("upstream.baseURL", "http://localhost:8000/api")
	v.SetDefault("upstream.timeout", 15)
	v.SetDefault("upstream.categoryCacheTTL", 300)

	// Mock backend defaults
	v.SetDefault("mock.enabled", false)
	v.SetDefault("mock.seed", 42)
	v.SetDefault("mock.letters", 36)
	v.SetDefault("mock.email", "admin@earsip.local")
	v.SetDefault("mock.password", "")

	// Pagination defaults
	v.SetDefault("pagination.defaultPerPage", 10)
	v.SetDefault("pagination.maxPerPage", 100)

	// Auth defaults
	v.SetDefault("auth.loginPath", "/login")
	v.SetDefault("auth.logoutPath", "/logout")
	v.SetDefault("auth.userPath", "/user")
	v.SetDefault("auth.cookieName", "earsip_session")
	v.SetDefault("auth.cookieSecure", false)
	v.SetDefault("auth.tokenFile", "")

	// Archive job defaults: 02:00 on the first day of every month
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.cron", "0 0 2 1 * *")
	v.SetDefault("archive.timeout", 120)
	v.SetDefault("archive.entity", "all")
	v.SetDefault("archive.runOnStartup", false)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "laporan")
	v.SetDefault("storage.s3Region", "us-east-1")
	v.SetDefault("storage.s3Bucket", "earsip-laporan")

	// Telemetry defaults
	v.SetDefault("telemetry.tracingEnabled", false)
	v.SetDefault("telemetry.metricsEnabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 90)
	v.SetDefault("server.requestTimeout", 60)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-Id"})
	v.SetDefault("cors.exposedHeaders", []string{"Content-Disposition", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready", "/metrics"})
}
