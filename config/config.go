package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/greez/greez/pkg/crypto"
	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Security    SecurityConfig
	Tracing     TracingConfig
	SMTP        SMTPConfig
	Shopify     ShopifyConfig
	Storage     StorageConfig
	AI          AIConfig
	Reviews     ReviewsConfig
	Cache       CacheConfig
	Workflow    WorkflowConfig
	RootEmail   string
	Environment string
	APIEndpoint string
	PartnerURL  string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
	SSL  SSLConfig
	// CORSAllowOrigin is the origin allowed to call the API, "*" for any
	CORSAllowOrigin string
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SecurityConfig struct {
	// JWTSecret signs session tokens (HS256)
	JWTSecret []byte
	// SecretKey encrypts integration credentials stored at rest
	SecretKey string
	// SessionTTL is the lifetime of an issued session token
	SessionTTL time.Duration
	// MagicCodeCost is the bcrypt cost used for sign-in codes
	MagicCodeCost int
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64

	// "jaeger", "stackdriver", "zipkin", "datadog", "xray", "none"
	TraceExporter string

	JaegerEndpoint       string
	ZipkinEndpoint       string
	StackdriverProjectID string
	DatadogAgentAddress  string
	DatadogAPIKey        string
	XRayRegion           string
	AgentEndpoint        string

	// "prometheus", "stackdriver", "datadog", "none" or comma-separated list
	MetricsExporter string
	PrometheusPort  int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	// RequestsPerSecond paces calls to the Admin API
	RequestsPerSecond float64
	Burst             int
	// PublishTimeout bounds a single publication call
	PublishTimeout time.Duration
	// BulkConcurrency caps parallel publications for a submission
	BulkConcurrency int
	// ClaimTTL is how long a publishing claim holds before another caller may take it over
	ClaimTTL time.Duration
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	ForcePathStyle  bool
	MaxImageBytes   int64
}

type AIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

type ReviewsConfig struct {
	APIEndpoint   string
	APIKey        string
	WebhookSecret string
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	InvitationTTL time.Duration
}

type WorkflowConfig struct {
	// MaxProductsPerSubmission caps Product Collection growth, 0 means unlimited
	MaxProductsPerSubmission int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "greez")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "10m")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("MAGIC_CODE_COST", 10)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Greez")

	v.SetDefault("SHOPIFY_API_VERSION", "2024-10")
	v.SetDefault("SHOPIFY_REQUESTS_PER_SECOND", 2.0)
	v.SetDefault("SHOPIFY_BURST", 4)
	v.SetDefault("SHOPIFY_PUBLISH_TIMEOUT", "30s")
	v.SetDefault("SHOPIFY_BULK_CONCURRENCY", 4)
	v.SetDefault("SHOPIFY_CLAIM_TTL", "5m")

	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_MAX_IMAGE_BYTES", 10<<20)

	v.SetDefault("AI_MODEL", "claude-sonnet-4-5")
	v.SetDefault("AI_MAX_TOKENS", 1024)

	v.SetDefault("CACHE_KEY_PREFIX", "greez:")
	v.SetDefault("CACHE_INVITATION_TTL", "10m")

	v.SetDefault("WORKFLOW_MAX_PRODUCTS_PER_SUBMISSION", 0)

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "greez-api")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")
	v.SetDefault("TRACING_STACKDRIVER_PROJECT_ID", "")
	v.SetDefault("TRACING_DATADOG_AGENT_ADDRESS", "localhost:8126")
	v.SetDefault("TRACING_DATADOG_API_KEY", "")
	v.SetDefault("TRACING_XRAY_REGION", "us-west-2")
	v.SetDefault("TRACING_AGENT_ENDPOINT", "localhost:8126")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")
	v.SetDefault("TRACING_PROMETHEUS_PORT", 9464)

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	secretKey := v.GetString("SECRET_KEY")
	if secretKey == "" {
		secretKey = jwtSecret
	}

	config := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Security: SecurityConfig{
			JWTSecret:     []byte(jwtSecret),
			SecretKey:     secretKey,
			SessionTTL:    v.GetDuration("SESSION_TTL"),
			MagicCodeCost: v.GetInt("MAGIC_CODE_COST"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:        v.GetString("SHOPIFY_SHOP_DOMAIN"),
			AccessToken:       v.GetString("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:        v.GetString("SHOPIFY_API_VERSION"),
			RequestsPerSecond: v.GetFloat64("SHOPIFY_REQUESTS_PER_SECOND"),
			Burst:             v.GetInt("SHOPIFY_BURST"),
			PublishTimeout:    v.GetDuration("SHOPIFY_PUBLISH_TIMEOUT"),
			BulkConcurrency:   v.GetInt("SHOPIFY_BULK_CONCURRENCY"),
			ClaimTTL:          v.GetDuration("SHOPIFY_CLAIM_TTL"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			Bucket:          v.GetString("STORAGE_BUCKET"),
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
			ForcePathStyle:  v.GetBool("STORAGE_FORCE_PATH_STYLE"),
			MaxImageBytes:   v.GetInt64("STORAGE_MAX_IMAGE_BYTES"),
		},
		AI: AIConfig{
			APIKey:    v.GetString("AI_API_KEY"),
			Model:     v.GetString("AI_MODEL"),
			MaxTokens: v.GetInt64("AI_MAX_TOKENS"),
		},
		Reviews: ReviewsConfig{
			APIEndpoint:   v.GetString("REVIEWS_API_ENDPOINT"),
			APIKey:        v.GetString("REVIEWS_API_KEY"),
			WebhookSecret: v.GetString("REVIEWS_WEBHOOK_SECRET"),
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			KeyPrefix:     v.GetString("CACHE_KEY_PREFIX"),
			InvitationTTL: v.GetDuration("CACHE_INVITATION_TTL"),
		},
		Workflow: WorkflowConfig{
			MaxProductsPerSubmission: v.GetInt("WORKFLOW_MAX_PRODUCTS_PER_SUBMISSION"),
		},
		Tracing: TracingConfig{
			Enabled:              v.GetBool("TRACING_ENABLED"),
			ServiceName:          v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability:  v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:        v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:       v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:       v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			StackdriverProjectID: v.GetString("TRACING_STACKDRIVER_PROJECT_ID"),
			DatadogAgentAddress:  v.GetString("TRACING_DATADOG_AGENT_ADDRESS"),
			DatadogAPIKey:        v.GetString("TRACING_DATADOG_API_KEY"),
			XRayRegion:           v.GetString("TRACING_XRAY_REGION"),
			AgentEndpoint:        v.GetString("TRACING_AGENT_ENDPOINT"),
			MetricsExporter:      v.GetString("TRACING_METRICS_EXPORTER"),
			PrometheusPort:       v.GetInt("TRACING_PROMETHEUS_PORT"),
		},
		RootEmail:   v.GetString("ROOT_EMAIL"),
		Environment: v.GetString("ENVIRONMENT"),
		APIEndpoint: v.GetString("API_ENDPOINT"),
		PartnerURL:  v.GetString("PARTNER_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	// SHOPIFY_ACCESS_TOKEN_ENCRYPTED holds the token encrypted with SECRET_KEY
	if encrypted := v.GetString("SHOPIFY_ACCESS_TOKEN_ENCRYPTED"); encrypted != "" && config.Shopify.AccessToken == "" {
		token, err := crypto.DecryptFromHexString(encrypted, secretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt SHOPIFY_ACCESS_TOKEN_ENCRYPTED: %w", err)
		}
		config.Shopify.AccessToken = token
	}

	if config.PartnerURL == "" {
		config.PartnerURL = config.APIEndpoint
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ShopifyEnabled reports whether a storefront is configured for publication
func (c *Config) ShopifyEnabled() bool {
	return c.Shopify.ShopDomain != "" && c.Shopify.AccessToken != ""
}
