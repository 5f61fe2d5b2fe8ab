package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	LogLevel string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Billing
	BusinessTimezone         *time.Location
	DefaultTaxPercentage     decimal.Decimal
	InvoiceAllocationRetries int
	BillsPageLimit           int
	ReportCacheTTL           time.Duration // 0 disables the report cache

	// AWS S3 (PDF archive)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	PdfArchiveEnabled  bool
	PdfArchiveURLTTL   time.Duration

	// Background worker
	WorkerConcurrency int

	// PDF rendering
	ChromeRemoteURL  string
	ChromeNoSandbox  bool
	PdfRenderTimeout time.Duration

	// Resort details printed on documents
	ResortName    string
	ResortAddress string
	ResortPhone   string
	ResortEmail   string
	ResortGSTIN   string

	// Rate Limiting
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second

	// Seeding
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getBool := func(key string, defaultValue bool) (bool, error) {
		raw := getEnv(key, strconv.FormatBool(defaultValue))
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %w", key, err)
		}
		return v, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "gulmohar_billing")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "5000")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "ap-south-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ChromeRemoteURL = getEnv("CHROME_REMOTE_URL", "")
	cfg.ResortName = getEnv("RESORT_NAME", "GULMOHAR RESORT")
	cfg.ResortAddress = getEnv("RESORT_ADDRESS", "Harindungri Jail Road, Ghatsila")
	cfg.ResortPhone = getEnv("RESORT_PHONE", "+91 9234549012")
	cfg.ResortEmail = getEnv("RESORT_EMAIL", "info@gulmoharresort.com")
	cfg.ResortGSTIN = getEnv("RESORT_GSTIN", "20hxapp9825X1ZX")
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "admin@gulmoharresort.com")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "2592000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.BusinessTimezone, err = time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE: %w", err)
	}

	cfg.DefaultTaxPercentage, err = decimal.NewFromString(getEnv("DEFAULT_TAX_PERCENTAGE", "18"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TAX_PERCENTAGE: %w", err)
	}
	if cfg.DefaultTaxPercentage.IsNegative() {
		return nil, fmt.Errorf("invalid DEFAULT_TAX_PERCENTAGE: must not be negative")
	}

	cfg.InvoiceAllocationRetries, err = strconv.Atoi(getEnv("INVOICE_ALLOCATION_RETRIES", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_ALLOCATION_RETRIES: %w", err)
	}
	if cfg.InvoiceAllocationRetries < 0 {
		return nil, fmt.Errorf("invalid INVOICE_ALLOCATION_RETRIES: must not be negative")
	}

	cfg.BillsPageLimit, err = strconv.Atoi(getEnv("BILLS_PAGE_LIMIT", "20"))
	if err != nil || cfg.BillsPageLimit <= 0 {
		return nil, fmt.Errorf("invalid BILLS_PAGE_LIMIT: %q", getEnv("BILLS_PAGE_LIMIT", "20"))
	}

	reportCacheTTLSeconds, err := strconv.ParseInt(getEnv("REPORT_CACHE_TTL_SECONDS", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.ReportCacheTTL = time.Duration(reportCacheTTLSeconds) * time.Second

	cfg.PdfArchiveEnabled, err = getBool("PDF_ARCHIVE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	archiveURLTTLMinutes, err := strconv.ParseInt(getEnv("PDF_ARCHIVE_URL_TTL_MINUTES", "15"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF_ARCHIVE_URL_TTL_MINUTES: %w", err)
	}
	cfg.PdfArchiveURLTTL = time.Duration(archiveURLTTLMinutes) * time.Minute

	cfg.WorkerConcurrency, err = strconv.Atoi(getEnv("WORKER_CONCURRENCY", "2"))
	if err != nil || cfg.WorkerConcurrency <= 0 {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %q", getEnv("WORKER_CONCURRENCY", "2"))
	}

	cfg.ChromeNoSandbox, err = getBool("CHROME_NO_SANDBOX", true)
	if err != nil {
		return nil, err
	}

	renderTimeoutSeconds, err := strconv.ParseInt(getEnv("PDF_RENDER_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF_RENDER_TIMEOUT_SECONDS: %w", err)
	}
	cfg.PdfRenderTimeout = time.Duration(renderTimeoutSeconds) * time.Second

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	if cfg.PdfArchiveEnabled && cfg.AwsS3Bucket == "" {
		return nil, fmt.Errorf("missing required environment variable: AWS_S3_BUCKET (PDF_ARCHIVE_ENABLED=true)")
	}

	return cfg, nil
}
