package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"coworkpos-backend/internal/domain"
)

// Config holds application runtime configuration.
type Config struct {
	Env      string
	HTTPPort string

	// DatabaseURL selects the PostgreSQL backend; when empty, FileStoreDir
	// selects the JSON file backend instead.
	DatabaseURL  string
	FileStoreDir string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Tariff domain.Tariff

	// CutTimes are local times of day ("15:04") at which the automatic cash
	// cut fires, interpreted in Timezone.
	CutTimes            []string
	Timezone            string
	HealthCheckInterval time.Duration
	SupervisorURL       string
	AgentID             string
	ReportRetention     int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:          getEnv("APP_ENV", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		FileStoreDir: getEnv("FILE_STORE_DIR", "data"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		Tariff: domain.Tariff{
			FirstHourRateCents: getCents("TARIFF_FIRST_HOUR", 5800),
			BlockRateCents:     getCents("TARIFF_BLOCK_RATE", 2900),
			BlockMinutes:       getInt("TARIFF_BLOCK_MINUTES", 30),
			DayRateCents:       getCents("TARIFF_DAY_RATE", 18000),
			DayThresholdHours:  getInt("TARIFF_DAY_THRESHOLD_HOURS", 3),
			ToleranceMinutes:   getInt("TARIFF_TOLERANCE_MINUTES", 5),
		},

		CutTimes:            splitCSV(getEnv("CUT_TIMES", "00:00,12:00")),
		Timezone:            getEnv("TIMEZONE", "America/Mexico_City"),
		HealthCheckInterval: getDuration("HEALTH_CHECK_INTERVAL", 2*time.Hour),
		SupervisorURL:       os.Getenv("SUPERVISOR_URL"),
		AgentID:             getEnv("AGENT_ID", "cash-cut-scheduler"),
		ReportRetention:     getInt("REPORT_RETENTION", 100),

		ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && cfg.FileStoreDir == "" {
		return cfg, errors.New("either DATABASE_URL or FILE_STORE_DIR is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	for _, ct := range cfg.CutTimes {
		if _, err := time.Parse("15:04", ct); err != nil {
			return cfg, fmt.Errorf("invalid CUT_TIMES entry %q: %w", ct, err)
		}
	}
	if cfg.ReportRetention < 1 {
		return cfg, errors.New("REPORT_RETENTION must be at least 1")
	}
	return cfg, nil
}

// Location resolves the configured timezone. Load already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// getCents accepts a whole-currency value ("58" or "58.50") and returns cents.
func getCents(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return int64(f*100 + 0.5)
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
