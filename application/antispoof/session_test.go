package antispoof

import (
	"strings"
	"testing"
)

func TestNewSessionContextStartsPending(t *testing.T) {
	session := NewSessionContext()
	if session.Verdict() != VerdictPending {
		t.Fatalf("expected PENDING, got %s", session.Verdict())
	}
	if !strings.HasPrefix(session.SessionID, "SES-") {
		t.Fatalf("expected SES- prefixed session id, got %s", session.SessionID)
	}
	if len(session.StageResults()) != 0 {
		t.Fatal("expected an empty stage trail")
	}
}

func TestSessionIDsAreUniquePerAttempt(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSessionContext().SessionID
		if seen[id] {
			t.Fatalf("session id %s was reused", id)
		}
		seen[id] = true
	}
}

func TestAppendStageResultKeepsOrder(t *testing.T) {
	session := NewSessionContext()
	session.AppendStageResult(StageResult{Stage: StageVisual, Outcome: StagePassed})
	session.AppendStageResult(StageResult{Stage: StageLiveness, Outcome: StageBlocked})

	results := session.StageResults()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Stage != StageVisual || results[1].Stage != StageLiveness {
		t.Fatal("stage trail order was not preserved")
	}
	if results[0].RecordedAt.IsZero() {
		t.Fatal("expected RecordedAt to be stamped on append")
	}
}

func TestStageResultsReturnsACopy(t *testing.T) {
	session := NewSessionContext()
	session.AppendStageResult(StageResult{Stage: StageVisual, Outcome: StagePassed})

	results := session.StageResults()
	results[0].Stage = StageForensic

	if session.StageResults()[0].Stage != StageVisual {
		t.Fatal("mutating the returned slice must not corrupt the audit trail")
	}
}

func TestFinalizeIsOnceOnly(t *testing.T) {
	session := NewSessionContext()
	reason := "Liveness challenge failed"
	if err := session.Finalize(VerdictBlock, &reason); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	if err := session.Finalize(VerdictAllow, nil); err != ErrVerdictFinalized {
		t.Fatalf("expected ErrVerdictFinalized, got %v", err)
	}
	if session.Verdict() != VerdictBlock {
		t.Fatal("second finalize must leave the first verdict intact")
	}
	if session.BlockReason() == nil || *session.BlockReason() != reason {
		t.Fatal("block reason was lost")
	}
}

func TestFinalizeRejectsPending(t *testing.T) {
	session := NewSessionContext()
	if err := session.Finalize(VerdictPending, nil); err == nil {
		t.Fatal("PENDING is not a terminal verdict")
	}
	if session.Verdict() != VerdictPending {
		t.Fatal("a rejected finalize must not change the verdict")
	}
}

func TestBlockReasonOnlySetOnBlock(t *testing.T) {
	session := NewSessionContext()
	reason := "should be dropped"
	session.Finalize(VerdictAllow, &reason)
	if session.BlockReason() != nil {
		t.Fatal("ALLOW must never carry a block reason")
	}
}
