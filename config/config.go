package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	AutoMigrate       bool
	// Checkout session store. An empty RedisURL keeps sessions in process memory.
	RedisURL           string
	CheckoutSessionTTL time.Duration
	// Payment provider
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	PaymentTimeout    time.Duration
	// Pricing rules
	Currency              string
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
	MaxCartQuantity       int
	// R2 Storage (report exports)
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	R2UploadTimeout   time.Duration
	// Cache
	ReportCacheTTL time.Duration
	// Observability
	MetricsEnabled bool
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars otherwise
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),
		AutoMigrate:       getBoolEnv("AUTO_MIGRATE", false),

		RedisURL:           getEnv("REDIS_URL", ""),
		CheckoutSessionTTL: getDurationEnv("CHECKOUT_SESSION_TTL", 2*time.Hour),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		PaymentTimeout:    getDurationEnv("PAYMENT_TIMEOUT", 10*time.Second),

		// Pricing defaults: free shipping above 1000, flat 50 otherwise, no tax, 5 per line
		Currency:              getEnv("CURRENCY", "INR"),
		FreeShippingThreshold: getDecimalEnv("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(1000)),
		FlatShippingFee:       getDecimalEnv("FLAT_SHIPPING_FEE", decimal.NewFromInt(50)),
		TaxRate:               getDecimalEnv("TAX_RATE", decimal.Zero),
		MaxCartQuantity:       getIntEnv("MAX_CART_QUANTITY", 5),

		// R2 Storage
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		ReportCacheTTL: getDurationEnv("REPORT_CACHE_TTL", 10*time.Minute),
		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		if c.Env != "development" {
			log.Fatal("CRITICAL: RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
		}
		log.Println("WARNING: Razorpay keys not set, online payments will fail signature checks")
	}
	if c.MaxCartQuantity < 1 {
		log.Fatal("CRITICAL: MAX_CART_QUANTITY must be at least 1")
	}
	if c.TaxRate.IsNegative() || c.FlatShippingFee.IsNegative() {
		log.Fatal("CRITICAL: TAX_RATE and FLAT_SHIPPING_FEE cannot be negative")
	}
}

// R2Enabled reports whether report exports can be uploaded.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid bool for %s, using fallback", key)
	}
	return fallback
}
