package verification_usecases

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "liveguard.io/application/appErrors"
	"liveguard.io/application/antispoof"
	"liveguard.io/application/controller/dto"
	"liveguard.io/application/repository"
	"liveguard.io/application/utils"
	"liveguard.io/entities"
	antispoof_services "liveguard.io/infrastructure/antispoof"
	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/logger"
	messagequeue "liveguard.io/infrastructure/message_queue"
	queue_tasks "liveguard.io/infrastructure/message_queue/tasks"
	mq_types "liveguard.io/infrastructure/message_queue/types"
)

// VerifySessionUseCase runs the three-stage pipeline against the live
// adapters, persists the audit record and queues it for SIEM shipping.
func VerifySessionUseCase(ctx any, reqCtx context.Context, payload *dto.VerifySessionDTO, deviceID string) (*antispoof.Decision, error) {
	session := antispoof.NewSessionContext()
	arbiter := &antispoof.Arbiter{
		Config:   antispoof.Config,
		Visual:   antispoof_services.VisualService,
		Liveness: antispoof_services.LivenessService,
		Forensic: antispoof_services.ForensicService,
	}

	decision, err := arbiter.Decide(reqCtx, session, &types.SessionInput{
		Frame:              &payload.Frame,
		FrameTimestampsUS:  payload.StreamMetadata.FrameTimestampsUS,
		DriverName:         payload.StreamMetadata.DriverName,
		Transport:          payload.StreamMetadata.Transport,
		ChallengeChannelID: payload.ChallengeChannelID,
	})
	if err != nil {
		// evidence-absence inside a stage fails closed, but a
		// malformed call is the caller's problem and is reported
		// before any stage ran
		if errors.Is(err, types.ErrInvalidInput) {
			apperrors.ClientError(ctx, err.Error(), nil, nil, deviceID)
			return nil, err
		}
		apperrors.UnknownError(ctx, err, nil, deviceID)
		return nil, err
	}

	persistDecision(session, decision, nil, payload.StreamMetadata.DriverName, payload.StreamMetadata.Transport)
	return decision, nil
}

func persistDecision(session *antispoof.SessionContext, decision *antispoof.Decision, groundTruth *string, driverName string, transport string) {
	record := entities.DecisionSession{
		SessionID:    decision.SessionID,
		Verdict:      string(decision.Verdict),
		BlockReason:  decision.Reason,
		StageResults: stageAuditRecords(decision.StageResults),
		GroundTruth:  groundTruth,
		DriverName:   utils.GetStringPointer(driverName),
		Transport:    utils.GetStringPointer(transport),
	}
	saved, err := repository.DecisionSessionRepo().CreateOne(context.TODO(), record)
	if err != nil {
		// the verdict still stands; shipping retries cover the gap
		logger.Error("failed to persist decision audit record", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "sessionID",
			Data: decision.SessionID,
		})
		return
	}

	taskPayload, err := json.Marshal(queue_tasks.ShipDecisionAuditPayload{Session: *saved})
	if err != nil {
		logger.Error("failed to marshal audit ship payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandleShipDecisionAuditTaskName,
		Payload:  taskPayload,
		Priority: mq_types.High,
	})
}

func stageAuditRecords(results []antispoof.StageResult) []entities.StageAuditRecord {
	records := make([]entities.StageAuditRecord, 0, len(results))
	for _, result := range results {
		records = append(records, entities.StageAuditRecord{
			Stage:      string(result.Stage),
			Outcome:    string(result.Outcome),
			Scores:     result.Scores,
			Note:       result.Note,
			RecordedAt: result.RecordedAt,
		})
	}
	return records
}
