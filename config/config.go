package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/event-invoicer/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port                string
	DatabaseURL         string
	OutputDir           string
	DuplicateDir        string
	LogoPath            string
	TermsFile           string
	LogLevel            string
	BusinessName        string
	BusinessAddress     string
	BusinessPhone       string
	BankName            string
	BankAccountName     string
	BankAccountNumber   string
	BankSortCode        string
	BrowserPasswordHash string
	JWTSecret           string
	JWTTTL              time.Duration
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	ttlMinutes, err := strconv.Atoi(getEnvOrDefault("JWT_TTL_MINUTES", "60"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES %q", os.Getenv("JWT_TTL_MINUTES"))
	}

	return &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		DatabaseURL:         getEnvOrDefault("DATABASE_URL", "invoices.db"),
		OutputDir:           getEnvOrDefault("OUTPUT_DIR", "invoices"),
		DuplicateDir:        getEnvOrDefault("DUPLICATE_DIR", "duplicates"),
		LogoPath:            os.Getenv("LOGO_PATH"),
		TermsFile:           os.Getenv("TERMS_FILE"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		BusinessName:        getEnvOrDefault("BUSINESS_NAME", "Photography & Events"),
		BusinessAddress:     os.Getenv("BUSINESS_ADDRESS"),
		BusinessPhone:       os.Getenv("BUSINESS_PHONE"),
		BankName:            os.Getenv("BANK_NAME"),
		BankAccountName:     os.Getenv("BANK_ACCOUNT_NAME"),
		BankAccountNumber:   os.Getenv("BANK_ACCOUNT_NUMBER"),
		BankSortCode:        os.Getenv("BANK_SORT_CODE"),
		BrowserPasswordHash: os.Getenv("BROWSER_PASSWORD_HASH"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTTTL:              time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

// RequireBrowserAuth reports which settings the password-gated invoice browser is missing.
func (c *Config) RequireBrowserAuth() error {
	missing := []string{}
	if c.BrowserPasswordHash == "" {
		missing = append(missing, "BROWSER_PASSWORD_HASH")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing env: " + strings.Join(missing, ", "))
	}
	return nil
}

// OpenDB opens the invoice store without touching its schema.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// InitDB opens the invoice store and brings its schema up to date.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(db); err != nil {
		CloseDB(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// CloseDB releases the connection pool behind db.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn)
	default:
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
		return sqlite.Open(dsn)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
