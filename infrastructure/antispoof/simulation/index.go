package simulation

import (
	"context"
	"math/rand"

	"liveguard.io/infrastructure/antispoof/types"
)

// GroundTruth labels the simulated attack vector. It drives the
// simulated adapter outputs and is recorded for validation only - the
// arbiter never sees it.
type GroundTruth string

const (
	Bonafide         GroundTruth = "BONAFIDE"
	PrintAttack      GroundTruth = "PRINT_ATTACK"
	ReplayAttack     GroundTruth = "REPLAY_ATTACK"
	Deepfake         GroundTruth = "DEEPFAKE"
	DigitalInjection GroundTruth = "DIGITAL_INJECTION"
)

var AllGroundTruths = []GroundTruth{Bonafide, PrintAttack, ReplayAttack, Deepfake, DigitalInjection}

// weights mirror current fraud traffic: injection still rare but
// rising, deepfakes ahead of classic presentation attacks
var groundTruthWeights = []float64{0.40, 0.15, 0.15, 0.20, 0.10}

// RandomGroundTruth draws a threat vector with the calibrated weights.
func RandomGroundTruth(rng *rand.Rand) GroundTruth {
	draw := rng.Float64()
	var cumulative float64
	for i, weight := range groundTruthWeights {
		cumulative += weight
		if draw < cumulative {
			return AllGroundTruths[i]
		}
	}
	return AllGroundTruths[len(AllGroundTruths)-1]
}

func IsValidGroundTruth(label string) bool {
	for _, gt := range AllGroundTruths {
		if string(gt) == label {
			return true
		}
	}
	return false
}

// Simulator stands in for all three adapters at once, answering the
// way real detectors answer for the chosen ground truth. Used by the
// dev simulation endpoints and the validation tests.
type Simulator struct {
	GroundTruth GroundTruth
	Rand        *rand.Rand
}

func NewSimulator(groundTruth GroundTruth, rng *rand.Rand) *Simulator {
	return &Simulator{GroundTruth: groundTruth, Rand: rng}
}

// Classify reproduces the classifier's per-vector score tables. Note
// the open-world class sets: the deepfake path reports no print/replay
// scores at all, and injected streams come back looking near-bonafide.
func (sim *Simulator) Classify(ctx context.Context, input *types.SessionInput) (types.ClassificationResult, error) {
	switch sim.GroundTruth {
	case Bonafide:
		return types.ClassificationResult{"bonafide": 0.99, "spoof_print": 0.01, "spoof_replay": 0.00}, nil
	case PrintAttack:
		return types.ClassificationResult{"bonafide": 0.05, "spoof_print": 0.92, "spoof_replay": 0.03}, nil
	case ReplayAttack:
		// moire patterns push the replay score up, but not past the
		// terminal threshold
		return types.ClassificationResult{"bonafide": 0.12, "spoof_print": 0.08, "spoof_replay": 0.80}, nil
	case Deepfake:
		// high-frequency pixel artifacts
		return types.ClassificationResult{"bonafide": 0.25, "spoof_deepfake": 0.75}, nil
	case DigitalInjection:
		// injected streams look visually perfect
		return types.ClassificationResult{"bonafide": 0.96, "spoof_print": 0.02, "spoof_replay": 0.02}, nil
	}
	return types.ClassificationResult{}, nil
}

func (sim *Simulator) Challenge(ctx context.Context, input *types.SessionInput) (*types.LivenessResult, error) {
	switch sim.GroundTruth {
	case Bonafide:
		return &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 250}, nil
	case PrintAttack, ReplayAttack:
		// the eyes never close
		return &types.LivenessResult{Status: types.LivenessFail, EARMetric: 0.30, ResponseTimeMS: 0}, nil
	case Deepfake:
		// deepfakes can blink
		return &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.06, ResponseTimeMS: 300}, nil
	case DigitalInjection:
		// advanced rigs puppeteer the blink about half the time; the
		// rest answer late and fail the window
		if sim.Rand.Float64() > 0.5 {
			return &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 200}, nil
		}
		return &types.LivenessResult{Status: types.LivenessFail, EARMetric: 0.25, ResponseTimeMS: 900}, nil
	}
	return nil, types.ErrStageUnavailable
}

func (sim *Simulator) Analyze(ctx context.Context, input *types.SessionInput) (*types.ForensicResult, error) {
	if sim.GroundTruth == DigitalInjection {
		// injection tooling produces a mathematically perfect stream
		// through a virtual driver
		return &types.ForensicResult{JitterVariance: 0.0, VirtualDriverDetected: true, Risk: types.ForensicRiskCritical}, nil
	}
	// real sensors always carry natural noise
	return &types.ForensicResult{JitterVariance: 0.00412, VirtualDriverDetected: false, Risk: types.ForensicRiskLow}, nil
}
