package liveness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"liveguard.io/application/constants"
	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/logger"
	"liveguard.io/infrastructure/network"

	"github.com/google/uuid"
)

// ChallengeStore holds the in-flight challenge per channel. Satisfied
// by the redis repository in production.
type ChallengeStore interface {
	CreateEntry(key string, payload interface{}, ttl time.Duration) bool
	FindOne(key string) *string
	DeleteOne(key string) bool
}

// DeviceChallengeProber issues one active challenge per call through
// the device gateway and scores the response. The store carries the
// issued action keyed by channel: a channel with a live entry cannot be
// issued a second challenge, and a redemption is only honoured while
// its entry is still live and names the same action.
type DeviceChallengeProber struct {
	Network *network.NetworkController
	Cache   ChallengeStore
	// an EAR reading below this during the window counts as a blink
	EARThreshold float64
	// device round-trip budget handed to the gateway
	WindowMS int
}

type issueChallengeRequest struct {
	ChallengeID string `json:"challenge_id"`
	ChannelID   string `json:"channel_id"`
	Action      string `json:"action"`
	WindowMS    int    `json:"window_ms"`
}

type issueChallengeResponse struct {
	Success        bool      `json:"success"`
	Responded      bool      `json:"responded"`
	Action         string    `json:"action"`
	EARSamples     []float64 `json:"ear_samples"`
	ResponseTimeMS int       `json:"response_time_ms"`
	Error          *string   `json:"error"`
}

func (prober *DeviceChallengeProber) Challenge(ctx context.Context, input *types.SessionInput) (*types.LivenessResult, error) {
	challengeKey := fmt.Sprintf("%s-challenge", input.ChallengeChannelID)
	if existing := prober.Cache.FindOne(challengeKey); existing != nil {
		// a second session racing the same channel is a replay, not a
		// fresh attempt
		return nil, fmt.Errorf("%w: a challenge is already in flight for this channel", types.ErrStageUnavailable)
	}

	challengeID := uuid.NewString()
	action := constants.AVAILABLE_CHALLENGE_ACTIONS[rand.Intn(len(constants.AVAILABLE_CHALLENGE_ACTIONS))]
	prober.Cache.CreateEntry(challengeKey, action, time.Duration(prober.WindowMS)*time.Millisecond*2)
	// release the channel once this attempt reaches a terminal outcome
	defer prober.Cache.DeleteOne(challengeKey)

	response, statusCode, err := prober.Network.Post(ctx, "/issue-challenge", &map[string]string{}, issueChallengeRequest{
		ChallengeID: challengeID,
		ChannelID:   input.ChallengeChannelID,
		Action:      action,
		WindowMS:    prober.WindowMS,
	})
	if err != nil {
		logger.Error("error issuing liveness challenge", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "challengeID",
			Data: challengeID,
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: liveness challenge window exceeded the stage budget", types.ErrStageTimeout)
		}
		return nil, fmt.Errorf("%w: %s", types.ErrStageUnavailable, err.Error())
	}
	if statusCode == nil || *statusCode != 200 {
		logger.Error("liveness challenge failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return nil, fmt.Errorf("%w: device gateway returned a non-200 status", types.ErrStageUnavailable)
	}

	var result issueChallengeResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling liveness challenge response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, fmt.Errorf("%w: malformed device gateway response", types.ErrStageUnavailable)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: device gateway could not run the challenge", types.ErrStageUnavailable)
	}

	// a window that elapsed with no response is a FAIL, never a
	// pending state
	if !result.Responded || len(result.EARSamples) == 0 {
		return &types.LivenessResult{
			Status:         types.LivenessFail,
			EARMetric:      0,
			ResponseTimeMS: 0,
		}, nil
	}

	// the redemption must match the challenge that is still live: an
	// expired entry means the device answered after the window, a
	// different action means it redeemed some other challenge
	stored := prober.Cache.FindOne(challengeKey)
	if stored == nil || result.Action != *stored {
		logger.Warning("rejecting stale or mismatched challenge redemption", logger.LoggerOptions{
			Key:  "challengeID",
			Data: challengeID,
		}, logger.LoggerOptions{
			Key:  "redeemedAction",
			Data: result.Action,
		})
		return &types.LivenessResult{
			Status:         types.LivenessFail,
			EARMetric:      0,
			ResponseTimeMS: result.ResponseTimeMS,
		}, nil
	}

	minEAR := result.EARSamples[0]
	for _, sample := range result.EARSamples[1:] {
		if sample < minEAR {
			minEAR = sample
		}
	}
	status := types.LivenessFail
	if minEAR < prober.EARThreshold {
		// the eye closed at some point during the window - evidence of
		// a natural blink. a reading that never drops below threshold
		// means a static or looped presentation.
		status = types.LivenessPass
	}
	return &types.LivenessResult{
		Status:         status,
		EARMetric:      minEAR,
		ResponseTimeMS: result.ResponseTimeMS,
	}, nil
}
