package verification_usecases

import (
	"context"
	"math/rand"
	"time"

	apperrors "liveguard.io/application/appErrors"
	"liveguard.io/application/antispoof"
	"liveguard.io/application/controller/dto"
	"liveguard.io/application/utils"
	"liveguard.io/infrastructure/antispoof/simulation"
	"liveguard.io/infrastructure/antispoof/types"
)

type SimulatedDecision struct {
	GroundTruth simulation.GroundTruth `json:"groundTruth"`
	Decision    *antispoof.Decision    `json:"decision"`
}

// SimulateSessionUseCase runs one pipeline pass against the simulated
// adapters. Ground truth can be pinned for validation or drawn with
// the calibrated threat weights.
func SimulateSessionUseCase(ctx any, reqCtx context.Context, payload *dto.SimulateSessionDTO, deviceID string) (*SimulatedDecision, error) {
	seed := time.Now().UnixNano()
	if payload.Seed != nil {
		seed = *payload.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	groundTruth := simulation.RandomGroundTruth(rng)
	if payload.GroundTruth != nil {
		groundTruth = simulation.GroundTruth(*payload.GroundTruth)
	}

	result, err := runSimulatedSession(reqCtx, groundTruth, rng)
	if err != nil {
		apperrors.UnknownError(ctx, err, nil, deviceID)
		return nil, err
	}
	return result, nil
}

func runSimulatedSession(reqCtx context.Context, groundTruth simulation.GroundTruth, rng *rand.Rand) (*SimulatedDecision, error) {
	simulator := simulation.NewSimulator(groundTruth, rng)
	session := antispoof.NewSessionContext()
	session.GroundTruth = utils.GetStringPointer(string(groundTruth))

	arbiter := &antispoof.Arbiter{
		Config:   antispoof.Config,
		Visual:   simulator,
		Liveness: simulator,
		Forensic: simulator,
	}
	decision, err := arbiter.Decide(reqCtx, session, simulatedInput())
	if err != nil {
		return nil, err
	}

	persistDecision(session, decision, session.GroundTruth, "simulated", "unknown")
	return &SimulatedDecision{GroundTruth: groundTruth, Decision: decision}, nil
}

func simulatedInput() *types.SessionInput {
	return &types.SessionInput{
		Frame:              utils.GetStringPointer("c2ltdWxhdGVkLWZyYW1l"),
		FrameTimestampsUS:  []int64{0, 33_366, 66_733, 100_100},
		DriverName:         "simulated",
		Transport:          "unknown",
		ChallengeChannelID: "simulated",
	}
}
