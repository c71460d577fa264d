package types

import (
	"context"
	"errors"
)

// stage failure taxonomy. every adapter error surfaced to the arbiter
// wraps one of these so the fail-closed policy can name its evidence.
var (
	ErrStageUnavailable = errors.New("stage unavailable")
	ErrStageTimeout     = errors.New("stage timeout")
	ErrInvalidInput     = errors.New("invalid session input")
)

// ClassificationResult is a sparse class->probability mapping. The
// support set is value dependent - a model only reports the classes
// relevant to the dominant pattern it found, so probabilities are not
// required to sum to 1 and absent classes must not be zero-filled.
type ClassificationResult map[string]float64

// Top returns the highest probability class. ok is false for an empty
// result, which callers must treat as unavailable evidence, never as a
// bonafide pass.
func (c ClassificationResult) Top() (class string, prob float64, ok bool) {
	for name, p := range c {
		if !ok || p > prob {
			class = name
			prob = p
			ok = true
		}
	}
	return class, prob, ok
}

type LivenessStatus string

const (
	LivenessPass LivenessStatus = "PASS"
	LivenessFail LivenessStatus = "FAIL"
)

type LivenessResult struct {
	Status LivenessStatus `json:"status"`
	// lower generally indicates eye closure was observed during the
	// challenge window
	EARMetric      float64 `json:"ear_metric"`
	ResponseTimeMS int     `json:"response_time_ms"`
}

type ForensicRisk string

const (
	ForensicRiskLow      ForensicRisk = "LOW"
	ForensicRiskCritical ForensicRisk = "CRITICAL"
)

type ForensicResult struct {
	JitterVariance        float64      `json:"jitter_variance"`
	VirtualDriverDetected bool         `json:"virtual_driver_detected"`
	Risk                  ForensicRisk `json:"risk"`
}

// SessionInput is the session handle handed to every adapter: the face
// frame, the device challenge channel reference and the raw stream
// metadata. The pipeline treats all of it as opaque evidence sources.
type SessionInput struct {
	// base64 payload or fetchable URL
	Frame *string
	// capture timestamps in microseconds, used for jitter analysis
	FrameTimestampsUS []int64
	// driver signature reported by the capture path
	DriverName string
	Transport  string
	// opaque reference to the device round-trip channel for active
	// challenges
	ChallengeChannelID string
}

type VisualClassifierType interface {
	Classify(ctx context.Context, input *SessionInput) (ClassificationResult, error)
}

type LivenessProberType interface {
	Challenge(ctx context.Context, input *SessionInput) (*LivenessResult, error)
}

type ForensicAnalyzerType interface {
	Analyze(ctx context.Context, input *SessionInput) (*ForensicResult, error)
}
