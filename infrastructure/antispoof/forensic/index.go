package forensic

import (
	"context"
	"fmt"
	"strings"

	"liveguard.io/application/constants"
	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/logger"
)

// StreamMetadataAnalyzer is the last line of defense against injection
// attacks that pass the first two stages by feeding a pre-rendered,
// behaviorally correct video through a virtual capture path. Genuine
// sensors always carry nonzero thermal/read noise; its complete
// absence, or a virtual driver signature, marks the stream CRITICAL.
type StreamMetadataAnalyzer struct {
	// jitter variance at or under this is treated as synthetic
	JitterEpsilon float64
}

func (analyzer *StreamMetadataAnalyzer) Analyze(ctx context.Context, input *types.SessionInput) (*types.ForensicResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrStageTimeout, err.Error())
	}
	if len(input.FrameTimestampsUS) < 3 {
		// too few frames to measure jitter at all - absent evidence
		return nil, fmt.Errorf("%w: stream metadata carries fewer than 3 frame timestamps", types.ErrStageUnavailable)
	}

	jitter := jitterVariance(input.FrameTimestampsUS)
	virtualDriver := DetectVirtualDriver(input.DriverName)

	risk := types.ForensicRiskLow
	if jitter <= analyzer.JitterEpsilon || virtualDriver {
		risk = types.ForensicRiskCritical
		logger.Warning("stream forensics flagged a synthetic capture path", logger.LoggerOptions{
			Key:  "jitterVariance",
			Data: jitter,
		}, logger.LoggerOptions{
			Key:  "driverName",
			Data: input.DriverName,
		})
	}

	return &types.ForensicResult{
		JitterVariance:        jitter,
		VirtualDriverDetected: virtualDriver,
		Risk:                  risk,
	}, nil
}

// jitterVariance measures the variance of inter-frame intervals,
// normalized to milliseconds. Perfectly periodic timestamps yield
// exactly zero, which no physical sensor produces.
func jitterVariance(timestampsUS []int64) float64 {
	intervals := make([]float64, 0, len(timestampsUS)-1)
	for i := 1; i < len(timestampsUS); i++ {
		intervals = append(intervals, float64(timestampsUS[i]-timestampsUS[i-1])/1000.0)
	}

	var sum float64
	for _, interval := range intervals {
		sum += interval
	}
	mean := sum / float64(len(intervals))

	var variance float64
	for _, interval := range intervals {
		deviation := interval - mean
		variance += deviation * deviation
	}
	return variance / float64(len(intervals))
}

// DetectVirtualDriver reports whether the capture driver signature
// matches a known virtual camera product.
func DetectVirtualDriver(driverName string) bool {
	normalized := strings.ToLower(driverName)
	for _, signature := range constants.VIRTUAL_DRIVER_SIGNATURES {
		if strings.Contains(normalized, signature) {
			return true
		}
	}
	return false
}
