package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Env            string
	FrontendURL    string
	AllowedOrigins []string
	BusinessName   string
	RequestTimeout time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTimeZone string

	MongoURI string
	MongoDB  string

	RedisURL string

	ProductStore        string
	DynamoProductsTable string
	S3Bucket            string
	OrderEventsTopicARN string
	NotificationDLQURL  string
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
	AWSUseSecrets       bool
	AppSecretName       string
	CacheTTL            time.Duration
	RateLimitPerMinute  int
	RateLimitBurst      int

	JWTSecret string

	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPass         string
	EmailFromName    string
	EmailFromAddress string
	AdminEmail       string
	AdminPhone       string

	WhatsAppProvider      string
	WhatsAppAPIURL        string
	WhatsAppAPIToken      string
	WhatsAppPhoneNumberID string
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioFromNumber      string

	Cart   CartConfig
	Notify NotifyConfig
	Order  OrderConfig
}

type CartConfig struct {
	FlushInterval  time.Duration
	SessionIdle    time.Duration
	TTL            time.Duration
	PersistTimeout time.Duration
}

type NotifyConfig struct {
	Workers     int
	QueueSize   int
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type OrderConfig struct {
	AllowStatusSkip bool
	TotalEpsilon    float64
}

// Load reads .env (if present) and the environment. When AWS_USE_SECRETS is
// true, credentials are overridden from the configured Secrets Manager secret.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Env:            getEnv("APP_ENV", "development"),
		FrontendURL:    os.Getenv("FRONTEND_URL"),
		BusinessName:   getEnv("BUSINESS_NAME", "Hruday Sparshi"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnv("POSTGRES_DB", "hruday_sparshi"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "hruday_sparshi"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		ProductStore:        getEnv("PRODUCT_STORE", "mongo"),
		DynamoProductsTable: getEnv("DYNAMODB_PRODUCTS_TABLE", "products"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		NotificationDLQURL:  os.Getenv("NOTIFICATION_DLQ_URL"),
		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "HrudaySparshi"),
		CloudWatchLogGroup:  os.Getenv("CLOUDWATCH_LOG_GROUP"),
		AWSUseSecrets:       getBool("AWS_USE_SECRETS", false),
		AppSecretName:       getEnv("APP_SECRET_NAME", "hruday-sparshi/backend"),
		CacheTTL:            getDuration("CACHE_TTL", 10*time.Minute),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:      getInt("RATE_LIMIT_BURST", 50),

		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),

		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Hruday Sparshi"),
		EmailFromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPhone:       os.Getenv("ADMIN_PHONE"),

		WhatsAppProvider:      getEnv("WHATSAPP_PROVIDER", "cloud"),
		WhatsAppAPIURL:        getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
		WhatsAppAPIToken:      os.Getenv("WHATSAPP_API_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		TwilioAccountSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:      os.Getenv("TWILIO_FROM_NUMBER"),

		Cart: CartConfig{
			FlushInterval:  getDuration("CART_FLUSH_INTERVAL", 30*time.Second),
			SessionIdle:    getDuration("CART_SESSION_IDLE", 30*time.Minute),
			TTL:            getDuration("CART_TTL", 30*24*time.Hour),
			PersistTimeout: getDuration("CART_PERSIST_TIMEOUT", 5*time.Second),
		},
		Notify: NotifyConfig{
			Workers:     getInt("NOTIFY_WORKERS", 4),
			QueueSize:   getInt("NOTIFY_QUEUE_SIZE", 256),
			Timeout:     getDuration("NOTIFY_TIMEOUT", 10*time.Second),
			MaxAttempts: getInt("NOTIFY_MAX_ATTEMPTS", 3),
			Backoff:     getDuration("NOTIFY_BACKOFF", time.Second),
		},
		Order: OrderConfig{
			AllowStatusSkip: getBool("ORDER_ALLOW_STATUS_SKIP", false),
			TotalEpsilon:    getFloat("ORDER_TOTAL_EPSILON", 0.01),
		},
	}

	cfg.AllowedOrigins = allowedOrigins(cfg.FrontendURL, os.Getenv("ALLOWED_ORIGINS"))

	if cfg.AWSUseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, err
		}
		values, err := aws_pkg.NewSecretsClient(awsCfg).GetSecretMap(context.Background(), cfg.AppSecretName)
		if err != nil {
			return nil, fmt.Errorf("load secrets: %w", err)
		}
		cfg.applySecrets(values)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets overrides sensitive settings with values from a secret map.
func (c *Config) applySecrets(values map[string]string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(values[key]); v != "" {
			*dst = v
		}
	}
	override(&c.JWTSecret, "JWT_SECRET")
	override(&c.SMTPPass, "SMTP_PASS")
	override(&c.WhatsAppAPIToken, "WHATSAPP_API_TOKEN")
	override(&c.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	override(&c.PostgresUser, "POSTGRES_USER")
	override(&c.PostgresPassword, "POSTGRES_PASSWORD")
	override(&c.MongoURI, "MONGO_URI")
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER not set")
	}
	if c.ProductStore != "mongo" && c.ProductStore != "dynamodb" {
		return fmt.Errorf("PRODUCT_STORE must be mongo or dynamodb, got %q", c.ProductStore)
	}
	if c.WhatsAppProvider != "cloud" && c.WhatsAppProvider != "twilio" {
		return fmt.Errorf("WHATSAPP_PROVIDER must be cloud or twilio, got %q", c.WhatsAppProvider)
	}
	if c.Notify.Workers < 1 || c.Notify.QueueSize < 1 || c.Notify.MaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_WORKERS, NOTIFY_QUEUE_SIZE and NOTIFY_MAX_ATTEMPTS must be positive")
	}
	if c.Cart.FlushInterval <= 0 {
		return fmt.Errorf("CART_FLUSH_INTERVAL must be positive")
	}
	return nil
}

// PostgresDSN builds the gorm/pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func allowedOrigins(frontendURL, extra string) []string {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURL != "" {
		origins = append(origins, strings.TrimSuffix(frontendURL, "/"))
	}
	for _, o := range strings.Split(extra, ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}
