// Package config loads service settings from defaults, an optional YAML file
// named by CONFIG_FILE and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Config struct {
	ServiceName        string
	HTTPPort           string
	GRPCPort           string
	BaseURL            string
	CartTTL            time.Duration
	TaxPercent         decimal.Decimal
	CartBackend        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	KafkaBrokers       []string
	KafkaTopic         string
	CORSOrigins        []string
	StrictTransitions  bool
	CatalogDir         string
	MerchantContract   string
	LogLevel           string
	OTelExporter       string
	OTelEndpoint       string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

var defaults = map[string]string{
	"SERVICE_NAME":                "merchant-api",
	"HTTP_PORT":                   "3001",
	"GRPC_PORT":                   "50056",
	"CART_TTL_MINUTES":            "120",
	"TAX_RATE":                    "8",
	"CART_BACKEND":                CartBackendMemory,
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_DB":                    "0",
	"KAFKA_TOPIC":                 "merchant-events",
	"CORS_ORIGIN":                 "*",
	"STRICT_ORDER_TRANSITIONS":    "false",
	"LOG_LEVEL":                   "info",
	"OTEL_EXPORTER":               ExporterNone,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"REQUEST_TIMEOUT":             "30s",
	"SHUTDOWN_TIMEOUT":            "10s",
	"MAX_REQUEST_BODY_SIZE":       "1048576", // 1MB
}

// Load reads the configuration. Invalid values are reported together.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key string) string {
		def := defaults[key]
		if v, ok := file[key]; ok && v != "" {
			def = v
		}
		return getEnv(key, def)
	}

	var errs []error
	cfg := &Config{
		ServiceName:      get("SERVICE_NAME"),
		HTTPPort:         get("HTTP_PORT"),
		GRPCPort:         get("GRPC_PORT"),
		CartBackend:      strings.ToLower(get("CART_BACKEND")),
		RedisAddr:        get("REDIS_ADDR"),
		RedisPassword:    get("REDIS_PASSWORD"),
		KafkaBrokers:     splitList(get("KAFKA_BROKERS")),
		KafkaTopic:       get("KAFKA_TOPIC"),
		CORSOrigins:      splitList(get("CORS_ORIGIN")),
		CatalogDir:       get("CATALOG_DIR"),
		MerchantContract: get("MERCHANT_CONTRACT_ADDRESS"),
		LogLevel:         get("LOG_LEVEL"),
		OTelExporter:     strings.ToLower(get("OTEL_EXPORTER")),
		OTelEndpoint:     get("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if cfg.BaseURL = get("BASE_URL"); cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.HTTPPort
	}

	ttl, err := strconv.Atoi(get("CART_TTL_MINUTES"))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("CART_TTL_MINUTES: %w", err))
	case ttl <= 0:
		errs = append(errs, fmt.Errorf("CART_TTL_MINUTES: must be positive, got %d", ttl))
	default:
		cfg.CartTTL = time.Duration(ttl) * time.Minute
	}

	cfg.TaxPercent, err = decimal.NewFromString(get("TAX_RATE"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TAX_RATE: %w", err))
	} else if cfg.TaxPercent.IsNegative() {
		errs = append(errs, fmt.Errorf("TAX_RATE: must not be negative, got %s", cfg.TaxPercent))
	}

	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB")); err != nil {
		errs = append(errs, fmt.Errorf("REDIS_DB: %w", err))
	}
	if cfg.StrictTransitions, err = strconv.ParseBool(get("STRICT_ORDER_TRANSITIONS")); err != nil {
		errs = append(errs, fmt.Errorf("STRICT_ORDER_TRANSITIONS: %w", err))
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT")); err != nil {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT")); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if cfg.MaxRequestBodySize, err = strconv.ParseInt(get("MAX_REQUEST_BODY_SIZE"), 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("MAX_REQUEST_BODY_SIZE: %w", err))
	}

	switch cfg.CartBackend {
	case CartBackendMemory, CartBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("CART_BACKEND: unknown backend %q", cfg.CartBackend))
	}
	switch cfg.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		errs = append(errs, fmt.Errorf("OTEL_EXPORTER: unknown exporter %q", cfg.OTelExporter))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// readFile parses a YAML mapping of the same keys as the environment.
func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
