package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upload limits.
	MaxUploadFiles int
	MaxUploadBytes int64

	// Aggregation and render geometry.
	RoseSectors     int
	RoseSpeedBins   int
	RosePanelSizePx int

	// Optional render-summary publishing.
	KafkaBrokers      []string
	KafkaSummaryTopic string
	KafkaEnabled      bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	maxFiles, err := parseInt("MAX_UPLOAD_FILES", 24, 1, 500)
	if err != nil {
		return nil, err
	}
	maxBytes, err := parseInt("MAX_UPLOAD_BYTES", 16<<20, 1<<10, 1<<30)
	if err != nil {
		return nil, err
	}
	sectors, err := parseInt("ROSE_SECTORS", 16, 4, 360)
	if err != nil {
		return nil, err
	}
	speedBins, err := parseInt("ROSE_SPEED_BINS", 5, 1, 32)
	if err != nil {
		return nil, err
	}
	panelSize, err := parseInt("ROSE_PANEL_SIZE_PX", 1200, 300, 4000)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MaxUploadFiles: maxFiles,
		MaxUploadBytes: int64(maxBytes),

		RoseSectors:     sectors,
		RoseSpeedBins:   speedBins,
		RosePanelSizePx: panelSize,

		KafkaBrokers:      brokers,
		KafkaSummaryTopic: envOrDefault("KAFKA_SUMMARY_TOPIC", "windrose-render-summaries"),
		KafkaEnabled:      kafkaEnabled,
	}

	if 360%cfg.RoseSectors != 0 {
		return nil, errors.New("ROSE_SECTORS must divide 360 evenly")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_SUMMARY_TOPIC is required when publishing is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, min, max int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: want integer in [%d,%d]", key, min, max)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
