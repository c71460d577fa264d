package antispoof

import (
	"context"
	"math/rand"
	"testing"

	"liveguard.io/application/utils"
	"liveguard.io/infrastructure/antispoof/simulation"
	"liveguard.io/infrastructure/antispoof/types"
)

func simulatedSessionInput() *types.SessionInput {
	return &types.SessionInput{
		Frame:              utils.GetStringPointer("c2ltdWxhdGVkLWZyYW1l"),
		FrameTimestampsUS:  []int64{0, 33_366, 66_733},
		DriverName:         "simulated",
		Transport:          "unknown",
		ChallengeChannelID: "simulated",
	}
}

func decideSimulated(t *testing.T, groundTruth simulation.GroundTruth, seed int64) *Decision {
	t.Helper()
	sim := simulation.NewSimulator(groundTruth, rand.New(rand.NewSource(seed)))
	arbiter := &Arbiter{Config: DefaultConfig(), Visual: sim, Liveness: sim, Forensic: sim}
	decision, err := arbiter.Decide(context.Background(), NewSessionContext(), simulatedSessionInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return decision
}

func TestPipelineAgainstSimulatedThreatVectors(t *testing.T) {
	t.Run("bonafide user is allowed", func(t *testing.T) {
		decision := decideSimulated(t, simulation.Bonafide, 1)
		if decision.Verdict != VerdictAllow {
			t.Fatalf("expected ALLOW, got %s (%v)", decision.Verdict, decision.Reason)
		}
	})

	t.Run("print attack blocks at the visual stage", func(t *testing.T) {
		decision := decideSimulated(t, simulation.PrintAttack, 1)
		if decision.Verdict != VerdictBlock || len(decision.StageResults) != 1 {
			t.Fatalf("expected a 1-stage visual block, got %s with %d stages", decision.Verdict, len(decision.StageResults))
		}
	})

	t.Run("replay attack slips the visual threshold but fails the challenge", func(t *testing.T) {
		decision := decideSimulated(t, simulation.ReplayAttack, 1)
		if decision.Verdict != VerdictBlock || len(decision.StageResults) != 2 {
			t.Fatalf("expected a 2-stage liveness block, got %s with %d stages", decision.Verdict, len(decision.StageResults))
		}
		if *decision.Reason != "Liveness challenge failed" {
			t.Fatalf("unexpected reason %q", *decision.Reason)
		}
	})

	t.Run("injection is always blocked whichever way the challenge goes", func(t *testing.T) {
		// the puppeteered pass path ends at forensics, the laggy path
		// at the challenge - but an injected stream never gets through
		for seed := int64(0); seed < 50; seed++ {
			decision := decideSimulated(t, simulation.DigitalInjection, seed)
			if decision.Verdict != VerdictBlock {
				t.Fatalf("seed %d: injection was allowed through", seed)
			}
			reason := *decision.Reason
			if reason != "Digital injection signature detected" && reason != "Liveness challenge failed" {
				t.Fatalf("seed %d: unexpected reason %q", seed, reason)
			}
		}
	})

	t.Run("deepfake under the visual threshold currently passes", func(t *testing.T) {
		// a 0.75 deepfake score stays under the 0.85 terminal
		// threshold, blinks convincingly and arrives via a real
		// sensor. tracked as a calibration gap of the visual model,
		// not of the arbiter.
		decision := decideSimulated(t, simulation.Deepfake, 1)
		if decision.Verdict != VerdictAllow {
			t.Fatalf("expected ALLOW under current calibration, got %s", decision.Verdict)
		}
	})
}
