package antispoof

import (
	"errors"
	"time"

	"liveguard.io/application/utils"
)

type Verdict string

const (
	VerdictPending Verdict = "PENDING"
	VerdictAllow   Verdict = "ALLOW"
	VerdictBlock   Verdict = "BLOCK"
)

type StageName string

const (
	StageVisual   StageName = "visual"
	StageLiveness StageName = "liveness"
	StageForensic StageName = "forensic"
)

type StageOutcome string

const (
	StagePassed  StageOutcome = "PASS"
	StageBlocked StageOutcome = "BLOCK"
	StageErrored StageOutcome = "ERROR"
)

// StageResult is one entry of the append-only audit trail. Scores hold
// whatever numeric evidence the stage produced, Note carries textual
// evidence such as the suspicious-latency flag.
type StageResult struct {
	Stage      StageName          `json:"stage"`
	Outcome    StageOutcome       `json:"outcome"`
	Scores     map[string]float64 `json:"scores"`
	Note       *string            `json:"note"`
	RecordedAt time.Time          `json:"recordedAt"`
}

var ErrVerdictFinalized = errors.New("verdict already finalized")

// SessionContext is the per-attempt evidence accumulator. It is never
// shared across sessions; the arbiter drives exactly one pipeline run
// against it.
type SessionContext struct {
	SessionID string
	// set by the simulator for validation runs only. decision logic
	// must never read it.
	GroundTruth *string

	stageResults []StageResult
	verdict      Verdict
	blockReason  *string
}

func NewSessionContext() *SessionContext {
	return &SessionContext{
		SessionID: utils.GenerateSessionID(),
		verdict:   VerdictPending,
	}
}

// AppendStageResult records a stage outcome. The trail is append-only
// for audit integrity - entries are kept even when a later stage is
// skipped by a short-circuit.
func (session *SessionContext) AppendStageResult(result StageResult) {
	if result.RecordedAt.IsZero() {
		result.RecordedAt = time.Now()
	}
	session.stageResults = append(session.stageResults, result)
}

// Finalize sets the terminal verdict. It succeeds exactly once; later
// calls fail and leave the first verdict intact.
func (session *SessionContext) Finalize(verdict Verdict, blockReason *string) error {
	if session.verdict != VerdictPending {
		return ErrVerdictFinalized
	}
	if verdict != VerdictAllow && verdict != VerdictBlock {
		return errors.New("a session can only be finalized to ALLOW or BLOCK")
	}
	session.verdict = verdict
	if verdict == VerdictBlock {
		session.blockReason = blockReason
	}
	return nil
}

func (session *SessionContext) Verdict() Verdict {
	return session.verdict
}

func (session *SessionContext) BlockReason() *string {
	return session.blockReason
}

func (session *SessionContext) StageResults() []StageResult {
	results := make([]StageResult, len(session.stageResults))
	copy(results, session.stageResults)
	return results
}
