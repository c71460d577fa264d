package antispoof

import (
	"context"
	"fmt"

	"liveguard.io/application/constants"
	"liveguard.io/application/utils"
	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/logger"
)

// Decision is the structured outcome handed back to the enclosing
// authentication flow, suitable for logging or SIEM ingestion as-is.
type Decision struct {
	SessionID    string        `json:"session_id"`
	Verdict      Verdict       `json:"verdict"`
	Reason       *string       `json:"reason"`
	StageResults []StageResult `json:"stage_results"`
}

// Arbiter orchestrates the three-stage defense-in-depth pipeline:
// visual classification, active liveness challenge, forensic stream
// analysis. Stages run strictly in that order and short-circuit on the
// first definitive block. The arbiter itself is deterministic given
// the stage outcomes; all signal production lives behind the adapter
// interfaces.
type Arbiter struct {
	Config   ArbiterConfig
	Visual   types.VisualClassifierType
	Liveness types.LivenessProberType
	Forensic types.ForensicAnalyzerType
}

// Decide runs the pipeline for one session. Malformed input is
// rejected synchronously before any stage executes. Once a stage has
// been invoked, any failure is converted to a fail-closed BLOCK rather
// than an error - allowing on missing evidence would undermine the
// defense-in-depth guarantee.
func (arbiter *Arbiter) Decide(ctx context.Context, session *SessionContext, input *types.SessionInput) (*Decision, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// stage 1: visual classifier. high-confidence spoof detections are
	// terminal, no need to burn the challenge budget on them.
	classification, err := arbiter.runVisual(ctx, input)
	if err != nil {
		return arbiter.failClosed(session, StageVisual, err), nil
	}
	topClass, topProb, _ := classification.Top()
	if topClass != constants.CLASS_BONAFIDE && topProb > arbiter.Config.VisualBlockThreshold {
		session.AppendStageResult(StageResult{
			Stage:   StageVisual,
			Outcome: StageBlocked,
			Scores:  map[string]float64(classification),
		})
		return arbiter.block(session, fmt.Sprintf("Visual artifacts detected (%s)", topClass)), nil
	}
	session.AppendStageResult(StageResult{
		Stage:   StageVisual,
		Outcome: StagePassed,
		Scores:  map[string]float64(classification),
	})

	// stage 2: active liveness. catches static and looped
	// presentations that stayed under the visual threshold.
	liveness, err := arbiter.runLiveness(ctx, input)
	if err != nil {
		return arbiter.failClosed(session, StageLiveness, err), nil
	}
	livenessScores := map[string]float64{
		"ear_metric":       liveness.EARMetric,
		"response_time_ms": float64(liveness.ResponseTimeMS),
	}
	if liveness.Status == types.LivenessFail {
		session.AppendStageResult(StageResult{
			Stage:   StageLiveness,
			Outcome: StageBlocked,
			Scores:  livenessScores,
		})
		return arbiter.block(session, "Liveness challenge failed"), nil
	}
	var livenessNote *string
	if liveness.ResponseTimeMS >= arbiter.Config.LivenessLatencySuspiciousMS {
		// a nominal PASS driven this slowly smells like an
		// artificially puppeteered response. weighed as evidence, not
		// a block on its own.
		livenessNote = utils.GetStringPointer(fmt.Sprintf("suspicious response latency (%dms)", liveness.ResponseTimeMS))
		logger.Warning("liveness challenge passed with suspicious latency", logger.LoggerOptions{
			Key:  "sessionID",
			Data: session.SessionID,
		}, logger.LoggerOptions{
			Key:  "responseTimeMS",
			Data: liveness.ResponseTimeMS,
		})
	}
	session.AppendStageResult(StageResult{
		Stage:   StageLiveness,
		Outcome: StagePassed,
		Scores:  livenessScores,
		Note:    livenessNote,
	})

	// stage 3: forensic stream analysis. the designed catch-all for
	// injection attacks that arrive visually near-bonafide and can
	// puppeteer their way through the challenge.
	forensic, err := arbiter.runForensic(ctx, input)
	if err != nil {
		return arbiter.failClosed(session, StageForensic, err), nil
	}
	forensicScores := map[string]float64{
		"jitter_variance":         forensic.JitterVariance,
		"virtual_driver_detected": boolScore(forensic.VirtualDriverDetected),
	}
	if forensic.Risk == types.ForensicRiskCritical {
		session.AppendStageResult(StageResult{
			Stage:   StageForensic,
			Outcome: StageBlocked,
			Scores:  forensicScores,
		})
		return arbiter.block(session, "Digital injection signature detected"), nil
	}
	session.AppendStageResult(StageResult{
		Stage:   StageForensic,
		Outcome: StagePassed,
		Scores:  forensicScores,
	})

	session.Finalize(VerdictAllow, nil)
	return decisionOf(session), nil
}

func (arbiter *Arbiter) runVisual(ctx context.Context, input *types.SessionInput) (types.ClassificationResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, arbiter.Config.VisualTimeout)
	defer cancel()
	classification, err := arbiter.Visual.Classify(stageCtx, input)
	if err != nil {
		return nil, err
	}
	if len(classification) == 0 {
		// an empty distribution is absent evidence, never a guessed
		// bonafide default
		return nil, types.ErrStageUnavailable
	}
	return classification, nil
}

func (arbiter *Arbiter) runLiveness(ctx context.Context, input *types.SessionInput) (*types.LivenessResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, arbiter.Config.LivenessTimeout)
	defer cancel()
	liveness, err := arbiter.Liveness.Challenge(stageCtx, input)
	if err != nil {
		return nil, err
	}
	if liveness == nil || (liveness.Status != types.LivenessPass && liveness.Status != types.LivenessFail) {
		// the prober contract is PASS or FAIL within its window,
		// anything else counts as a stage failure
		return nil, types.ErrStageUnavailable
	}
	return liveness, nil
}

func (arbiter *Arbiter) runForensic(ctx context.Context, input *types.SessionInput) (*types.ForensicResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, arbiter.Config.ForensicTimeout)
	defer cancel()
	forensic, err := arbiter.Forensic.Analyze(stageCtx, input)
	if err != nil {
		return nil, err
	}
	if forensic == nil {
		return nil, types.ErrStageUnavailable
	}
	return forensic, nil
}

// failClosed records the stage error and blocks the session. Evidence
// absence is treated exactly like adverse evidence.
func (arbiter *Arbiter) failClosed(session *SessionContext, stage StageName, err error) *Decision {
	logger.Error("pipeline stage failed, failing closed", logger.LoggerOptions{
		Key:  "sessionID",
		Data: session.SessionID,
	}, logger.LoggerOptions{
		Key:  "stage",
		Data: stage,
	}, logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	session.AppendStageResult(StageResult{
		Stage:   stage,
		Outcome: StageErrored,
		Note:    utils.GetStringPointer(err.Error()),
	})
	return arbiter.block(session, fmt.Sprintf("Stage failure: %s", stage))
}

func (arbiter *Arbiter) block(session *SessionContext, reason string) *Decision {
	session.Finalize(VerdictBlock, &reason)
	return decisionOf(session)
}

func decisionOf(session *SessionContext) *Decision {
	return &Decision{
		SessionID:    session.SessionID,
		Verdict:      session.Verdict(),
		Reason:       session.BlockReason(),
		StageResults: session.StageResults(),
	}
}

func validateInput(input *types.SessionInput) error {
	if input == nil {
		return fmt.Errorf("%w: missing session input", types.ErrInvalidInput)
	}
	if input.Frame == nil || *input.Frame == "" {
		return fmt.Errorf("%w: missing face frame", types.ErrInvalidInput)
	}
	return nil
}

func boolScore(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
