package antispoof

import (
	"context"
	"errors"
	"strings"
	"testing"

	"liveguard.io/infrastructure/antispoof/types"
)

type stubVisual struct {
	result types.ClassificationResult
	err    error
	calls  int
}

func (s *stubVisual) Classify(ctx context.Context, input *types.SessionInput) (types.ClassificationResult, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.result, s.err
}

type stubLiveness struct {
	result *types.LivenessResult
	err    error
	calls  int
}

func (s *stubLiveness) Challenge(ctx context.Context, input *types.SessionInput) (*types.LivenessResult, error) {
	s.calls++
	return s.result, s.err
}

type stubForensic struct {
	result *types.ForensicResult
	err    error
	calls  int
}

func (s *stubForensic) Analyze(ctx context.Context, input *types.SessionInput) (*types.ForensicResult, error) {
	s.calls++
	return s.result, s.err
}

func validInput() *types.SessionInput {
	frame := "c29tZS1mcmFtZQ=="
	return &types.SessionInput{
		Frame:              &frame,
		FrameTimestampsUS:  []int64{0, 33_000, 66_500},
		DriverName:         "uvcvideo",
		Transport:          "usb",
		ChallengeChannelID: "channel-1",
	}
}

func newArbiter(visual *stubVisual, liveness *stubLiveness, forensic *stubForensic) *Arbiter {
	return &Arbiter{
		Config:   DefaultConfig(),
		Visual:   visual,
		Liveness: liveness,
		Forensic: forensic,
	}
}

func TestDecideBonafideSessionIsAllowed(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.99}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 250}}
	forensic := &stubForensic{result: &types.ForensicResult{JitterVariance: 0.004, VirtualDriverDetected: false, Risk: types.ForensicRiskLow}}

	session := NewSessionContext()
	decision, err := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Verdict != VerdictAllow {
		t.Fatalf("expected ALLOW, got %s", decision.Verdict)
	}
	if decision.Reason != nil {
		t.Fatalf("expected no reason on ALLOW, got %q", *decision.Reason)
	}
	if len(decision.StageResults) != 3 {
		t.Fatalf("expected 3 stage results, got %d", len(decision.StageResults))
	}
	for _, result := range decision.StageResults {
		if result.Outcome != StagePassed {
			t.Errorf("stage %s expected PASS, got %s", result.Stage, result.Outcome)
		}
	}
}

func TestDecidePrintAttackShortCircuitsAtVisualStage(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"spoof_print": 0.92}}
	liveness := &stubLiveness{}
	forensic := &stubForensic{}

	session := NewSessionContext()
	decision, err := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Verdict != VerdictBlock {
		t.Fatalf("expected BLOCK, got %s", decision.Verdict)
	}
	if decision.Reason == nil || !strings.Contains(*decision.Reason, "spoof_print") {
		t.Fatalf("expected reason naming spoof_print, got %v", decision.Reason)
	}
	if len(decision.StageResults) != 1 {
		t.Fatalf("expected exactly 1 stage result after visual block, got %d", len(decision.StageResults))
	}
	if liveness.calls != 0 || forensic.calls != 0 {
		t.Fatalf("later stages must not run after a visual block (liveness=%d forensic=%d)", liveness.calls, forensic.calls)
	}
}

func TestDecideBorderlineReplayIsCaughtByLiveness(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"spoof_replay": 0.80}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessFail, EARMetric: 0.30}}
	forensic := &stubForensic{}

	session := NewSessionContext()
	decision, err := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Verdict != VerdictBlock {
		t.Fatalf("expected BLOCK, got %s", decision.Verdict)
	}
	if decision.Reason == nil || *decision.Reason != "Liveness challenge failed" {
		t.Fatalf("unexpected reason: %v", decision.Reason)
	}
	if len(decision.StageResults) != 2 {
		t.Fatalf("expected 2 stage results, got %d", len(decision.StageResults))
	}
	if forensic.calls != 0 {
		t.Fatal("forensic stage must not run after a liveness block")
	}
}

func TestDecideDigitalInjectionIsCaughtByForensics(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.96, "spoof_print": 0.02, "spoof_replay": 0.02}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 200}}
	forensic := &stubForensic{result: &types.ForensicResult{JitterVariance: 0.0, VirtualDriverDetected: true, Risk: types.ForensicRiskCritical}}

	session := NewSessionContext()
	decision, err := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Verdict != VerdictBlock {
		t.Fatalf("expected BLOCK, got %s", decision.Verdict)
	}
	if decision.Reason == nil || *decision.Reason != "Digital injection signature detected" {
		t.Fatalf("unexpected reason: %v", decision.Reason)
	}
	if len(decision.StageResults) != 3 {
		t.Fatalf("expected 3 stage results, got %d", len(decision.StageResults))
	}
}

func TestDecideStageFailureFailsClosed(t *testing.T) {
	tests := []struct {
		name     string
		visual   *stubVisual
		liveness *stubLiveness
		forensic *stubForensic
		reason   string
	}{
		{
			name:     "visual unavailable",
			visual:   &stubVisual{err: types.ErrStageUnavailable},
			liveness: &stubLiveness{},
			forensic: &stubForensic{},
			reason:   "Stage failure: visual",
		},
		{
			name:     "visual returns empty distribution",
			visual:   &stubVisual{result: types.ClassificationResult{}},
			liveness: &stubLiveness{},
			forensic: &stubForensic{},
			reason:   "Stage failure: visual",
		},
		{
			name:     "liveness times out",
			visual:   &stubVisual{result: types.ClassificationResult{"bonafide": 0.99}},
			liveness: &stubLiveness{err: types.ErrStageTimeout},
			forensic: &stubForensic{},
			reason:   "Stage failure: liveness",
		},
		{
			name:     "forensic unavailable",
			visual:   &stubVisual{result: types.ClassificationResult{"bonafide": 0.99}},
			liveness: &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 250}},
			forensic: &stubForensic{err: types.ErrStageUnavailable},
			reason:   "Stage failure: forensic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSessionContext()
			decision, err := newArbiter(tt.visual, tt.liveness, tt.forensic).Decide(context.Background(), session, validInput())
			if err != nil {
				t.Fatalf("stage failures must not surface as errors: %v", err)
			}
			if decision.Verdict != VerdictBlock {
				t.Fatalf("expected fail-closed BLOCK, got %s", decision.Verdict)
			}
			if decision.Reason == nil || *decision.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %v", tt.reason, decision.Reason)
			}
			last := decision.StageResults[len(decision.StageResults)-1]
			if last.Outcome != StageErrored {
				t.Fatalf("expected ERROR outcome on failing stage, got %s", last.Outcome)
			}
		})
	}
}

func TestDecideRejectsMalformedInputBeforeAnyStage(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.99}}
	liveness := &stubLiveness{}
	forensic := &stubForensic{}
	arbiter := newArbiter(visual, liveness, forensic)

	empty := ""
	for _, input := range []*types.SessionInput{nil, {}, {Frame: &empty}} {
		session := NewSessionContext()
		_, err := arbiter.Decide(context.Background(), session, input)
		if !errors.Is(err, types.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if session.Verdict() != VerdictPending {
			t.Fatalf("input rejection must not finalize the session, got %s", session.Verdict())
		}
	}
	if visual.calls != 0 {
		t.Fatal("no stage may run on malformed input")
	}
}

func TestDecideCancellationFailsClosed(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.99}}
	liveness := &stubLiveness{}
	forensic := &stubForensic{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSessionContext()
	decision, err := newArbiter(visual, liveness, forensic).Decide(ctx, session, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Verdict != VerdictBlock {
		t.Fatalf("expected BLOCK after cancellation, got %s", decision.Verdict)
	}
	if liveness.calls != 0 || forensic.calls != 0 {
		t.Fatal("remaining stages must be abandoned after cancellation")
	}
}

func TestDecideHighConfidenceBonafideNeverBlocksAtVisualStage(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.99, "spoof_print": 0.01}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.04, ResponseTimeMS: 180}}
	forensic := &stubForensic{result: &types.ForensicResult{JitterVariance: 0.005, Risk: types.ForensicRiskLow}}

	session := NewSessionContext()
	decision, _ := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if decision.Verdict != VerdictAllow {
		t.Fatalf("a dominant bonafide score must not trip the visual threshold, got %s", decision.Verdict)
	}
}

func TestDecideSpoofScoreAtThresholdDoesNotBlock(t *testing.T) {
	// the visual rule is strictly greater-than
	visual := &stubVisual{result: types.ClassificationResult{"spoof_replay": 0.85}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 250}}
	forensic := &stubForensic{result: &types.ForensicResult{JitterVariance: 0.004, Risk: types.ForensicRiskLow}}

	session := NewSessionContext()
	decision, _ := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if decision.Verdict != VerdictAllow {
		t.Fatalf("score at the threshold must pass through to later stages, got %s", decision.Verdict)
	}
	if liveness.calls != 1 || forensic.calls != 1 {
		t.Fatal("later stages should have run")
	}
}

func TestDecideSuspiciousLatencyIsRecordedNotBlocked(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"bonafide": 0.96}}
	liveness := &stubLiveness{result: &types.LivenessResult{Status: types.LivenessPass, EARMetric: 0.05, ResponseTimeMS: 950}}
	forensic := &stubForensic{result: &types.ForensicResult{JitterVariance: 0.004, Risk: types.ForensicRiskLow}}

	session := NewSessionContext()
	decision, _ := newArbiter(visual, liveness, forensic).Decide(context.Background(), session, validInput())
	if decision.Verdict != VerdictAllow {
		t.Fatalf("a slow PASS is evidence, not a block: got %s", decision.Verdict)
	}
	livenessRecord := decision.StageResults[1]
	if livenessRecord.Note == nil || !strings.Contains(*livenessRecord.Note, "suspicious response latency") {
		t.Fatalf("expected a suspicious latency note, got %v", livenessRecord.Note)
	}
}

func TestDecideVerdictIsTerminal(t *testing.T) {
	visual := &stubVisual{result: types.ClassificationResult{"spoof_print": 0.92}}
	session := NewSessionContext()
	newArbiter(visual, &stubLiveness{}, &stubForensic{}).Decide(context.Background(), session, validInput())

	if err := session.Finalize(VerdictAllow, nil); !errors.Is(err, ErrVerdictFinalized) {
		t.Fatalf("expected ErrVerdictFinalized, got %v", err)
	}
	if session.Verdict() != VerdictBlock {
		t.Fatalf("verdict must never be overwritten, got %s", session.Verdict())
	}
}

func TestDecideIsDeterministicGivenStageOutcomes(t *testing.T) {
	build := func() *Arbiter {
		return newArbiter(
			&stubVisual{result: types.ClassificationResult{"spoof_replay": 0.80}},
			&stubLiveness{result: &types.LivenessResult{Status: types.LivenessFail, EARMetric: 0.30}},
			&stubForensic{},
		)
	}

	first, _ := build().Decide(context.Background(), NewSessionContext(), validInput())
	second, _ := build().Decide(context.Background(), NewSessionContext(), validInput())

	if first.Verdict != second.Verdict {
		t.Fatalf("verdicts diverged: %s vs %s", first.Verdict, second.Verdict)
	}
	if *first.Reason != *second.Reason {
		t.Fatalf("reasons diverged: %q vs %q", *first.Reason, *second.Reason)
	}
	if len(first.StageResults) != len(second.StageResults) {
		t.Fatal("stage trails diverged")
	}
}
