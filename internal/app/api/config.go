package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	procworkflows "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/workflows/procurement"
)

// DefaultDocumentBackfillLimit caps one backfill run when DOCUMENT_BACKFILL_LIMIT is unset.
const DefaultDocumentBackfillLimit = 50

// Config carries environment-driven settings for the API, worker, and backfill processes.
type Config struct {
	Port                  string
	PostgresDSN           string
	TemporalAddress       string
	TemporalNamespace     string
	TemporalDisabled      bool
	DocumentTaskQueue     string
	DocumentBackfillLimit int
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                  envDefault("PORT", "8080"),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:       envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:     envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:      isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		DocumentTaskQueue:     envDefault("DOCUMENT_TASK_QUEUE", procworkflows.DocumentTaskQueue),
		DocumentBackfillLimit: DefaultDocumentBackfillLimit,
	}
	if raw := strings.TrimSpace(os.Getenv("DOCUMENT_BACKFILL_LIMIT")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("DOCUMENT_BACKFILL_LIMIT must be a positive integer")
		}
		cfg.DocumentBackfillLimit = limit
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
