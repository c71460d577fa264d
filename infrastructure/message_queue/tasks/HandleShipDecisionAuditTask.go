package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"liveguard.io/application/constants"
	"liveguard.io/application/repository"
	"liveguard.io/entities"
	"liveguard.io/infrastructure/logger"
	mq_types "liveguard.io/infrastructure/message_queue/types"
	"liveguard.io/infrastructure/network"

	"github.com/hibiken/asynq"
)

var HandleShipDecisionAuditTaskName mq_types.TaskName = "ship_decision_audit"

type ShipDecisionAuditPayload struct {
	Session entities.DecisionSession
}

type siemEvent struct {
	Source       string                      `json:"source"`
	SessionID    string                      `json:"session_id"`
	Verdict      string                      `json:"verdict"`
	Reason       *string                     `json:"reason"`
	StageResults []entities.StageAuditRecord `json:"stage_results"`
	EmittedAt    time.Time                   `json:"emitted_at"`
}

// HandleShipDecisionAuditTask ships a finalized decision record to the
// SIEM webhook. Stage results ride along in full so downstream rules
// can alert on specific evidence, not just the verdict.
func HandleShipDecisionAuditTask(ctx context.Context, t *asynq.Task) error {
	var payload ShipDecisionAuditPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling audit ship queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	webhookURL := os.Getenv("SIEM_WEBHOOK_URL")
	if webhookURL == "" {
		logger.Warning("SIEM webhook url not configured, skipping audit shipping", logger.LoggerOptions{
			Key:  "sessionID",
			Data: payload.Session.SessionID,
		})
		return nil
	}

	controller := &network.NetworkController{BaseUrl: webhookURL}
	_, statusCode, err := controller.Post(ctx, "", &map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", os.Getenv("SIEM_WEBHOOK_TOKEN")),
	}, siemEvent{
		Source:       constants.SIEM_EVENT_SOURCE,
		SessionID:    payload.Session.SessionID,
		Verdict:      payload.Session.Verdict,
		Reason:       payload.Session.BlockReason,
		StageResults: payload.Session.StageResults,
		EmittedAt:    time.Now(),
	})
	if err != nil {
		logger.Error("failed to ship decision audit record", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "sessionID",
			Data: payload.Session.SessionID,
		})
		return err
	}
	if statusCode == nil || *statusCode >= 300 {
		return fmt.Errorf("SIEM webhook rejected audit record for %s", payload.Session.SessionID)
	}

	repository.DecisionSessionRepo().UpdatePartialByFilter(map[string]interface{}{
		"sessionID": payload.Session.SessionID,
	}, map[string]interface{}{
		"shippedAt": time.Now(),
	})
	return nil
}
