package antispoof

import (
	"os"
	"strconv"
	"time"

	"liveguard.io/infrastructure/logger"
)

// ArbiterConfig holds every tunable the pipeline reads. It is built
// once at startup and read-only afterwards - all the reference values
// here are calibration defaults, not fixed truths.
type ArbiterConfig struct {
	// stage 1 blocks when the top class is a spoof class above this
	VisualBlockThreshold float64
	// an EAR reading below this during the challenge window counts as
	// a natural blink
	EARThreshold float64
	// a liveness PASS slower than this is flagged as a possible
	// puppeteered response
	LivenessLatencySuspiciousMS int
	// jitter variance at or under this is treated as a synthetic
	// stream
	JitterEpsilon float64

	VisualTimeout   time.Duration
	LivenessTimeout time.Duration
	ForensicTimeout time.Duration
}

func DefaultConfig() ArbiterConfig {
	return ArbiterConfig{
		VisualBlockThreshold:        0.85,
		EARThreshold:                0.18,
		LivenessLatencySuspiciousMS: 900,
		JitterEpsilon:               1e-5,
		VisualTimeout:               3 * time.Second,
		LivenessTimeout:             10 * time.Second,
		ForensicTimeout:             time.Second,
	}
}

// Config is the process wide pipeline configuration. Written once by
// InitialiseConfig during startup.
var Config = DefaultConfig()

func InitialiseConfig() {
	cfg := DefaultConfig()
	cfg.VisualBlockThreshold = envFloat("VISUAL_BLOCK_THRESHOLD", cfg.VisualBlockThreshold)
	cfg.EARThreshold = envFloat("EAR_THRESHOLD", cfg.EARThreshold)
	cfg.LivenessLatencySuspiciousMS = envInt("LIVENESS_LATENCY_SUSPICIOUS_MS", cfg.LivenessLatencySuspiciousMS)
	cfg.JitterEpsilon = envFloat("JITTER_EPSILON", cfg.JitterEpsilon)
	cfg.VisualTimeout = envDuration("VISUAL_STAGE_TIMEOUT", cfg.VisualTimeout)
	cfg.LivenessTimeout = envDuration("LIVENESS_STAGE_TIMEOUT", cfg.LivenessTimeout)
	cfg.ForensicTimeout = envDuration("FORENSIC_STAGE_TIMEOUT", cfg.ForensicTimeout)
	Config = cfg
	logger.Info("antispoof pipeline configuration loaded", logger.LoggerOptions{
		Key:  "config",
		Data: cfg,
	})
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warning("ignoring unparsable float env var", logger.LoggerOptions{Key: "name", Data: key})
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warning("ignoring unparsable int env var", logger.LoggerOptions{Key: "name", Data: key})
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warning("ignoring unparsable duration env var", logger.LoggerOptions{Key: "name", Data: key})
		return fallback
	}
	return parsed
}
