package verification_usecases

import (
	"context"
	"math/rand"
	"time"

	apperrors "liveguard.io/application/appErrors"
	"liveguard.io/application/antispoof"
	"liveguard.io/application/controller/dto"
	"liveguard.io/infrastructure/antispoof/simulation"
)

type BatchSummary struct {
	Sessions int `json:"sessions"`
	Allowed  int `json:"allowed"`
	Blocked  int `json:"blocked"`
	// verdict counts keyed by ground truth, for eyeballing detector
	// coverage per attack class
	ByGroundTruth map[simulation.GroundTruth]map[antispoof.Verdict]int `json:"byGroundTruth"`
	BlockReasons  map[string]int                                      `json:"blockReasons"`
}

// SimulateBatchUseCase replays the original live threat simulation as
// an aggregate: N weighted random sessions through the full pipeline.
func SimulateBatchUseCase(ctx any, reqCtx context.Context, payload *dto.SimulateBatchDTO, deviceID string) (*BatchSummary, error) {
	seed := time.Now().UnixNano()
	if payload.Seed != nil {
		seed = *payload.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	summary := &BatchSummary{
		Sessions:      payload.Sessions,
		ByGroundTruth: map[simulation.GroundTruth]map[antispoof.Verdict]int{},
		BlockReasons:  map[string]int{},
	}
	for i := 0; i < payload.Sessions; i++ {
		groundTruth := simulation.RandomGroundTruth(rng)
		result, err := runSimulatedSession(reqCtx, groundTruth, rng)
		if err != nil {
			apperrors.UnknownError(ctx, err, nil, deviceID)
			return nil, err
		}
		if summary.ByGroundTruth[groundTruth] == nil {
			summary.ByGroundTruth[groundTruth] = map[antispoof.Verdict]int{}
		}
		summary.ByGroundTruth[groundTruth][result.Decision.Verdict]++
		switch result.Decision.Verdict {
		case antispoof.VerdictAllow:
			summary.Allowed++
		case antispoof.VerdictBlock:
			summary.Blocked++
			if result.Decision.Reason != nil {
				summary.BlockReasons[*result.Decision.Reason]++
			}
		}
	}
	return summary, nil
}
