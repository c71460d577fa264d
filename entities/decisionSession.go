package entities

import (
	"time"

	"liveguard.io/application/utils"
)

// StageAuditRecord mirrors one stage_results entry of a finished
// pipeline run.
type StageAuditRecord struct {
	Stage      string             `bson:"stage" json:"stage"`
	Outcome    string             `bson:"outcome" json:"outcome"`
	Scores     map[string]float64 `bson:"scores" json:"scores"`
	Note       *string            `bson:"note" json:"note"`
	RecordedAt time.Time          `bson:"recordedAt" json:"recordedAt"`
}

// DecisionSession is the persisted audit record of one authentication
// attempt. Written exactly once, after the verdict is finalized.
type DecisionSession struct {
	SessionID    string             `bson:"sessionID" json:"sessionID"`
	Verdict      string             `bson:"verdict" json:"verdict"`
	BlockReason  *string            `bson:"blockReason" json:"blockReason"`
	StageResults []StageAuditRecord `bson:"stageResults" json:"stageResults"`
	// populated by the simulator only, never read by decision logic
	GroundTruth *string    `bson:"groundTruth" json:"groundTruth"`
	DriverName  *string    `bson:"driverName" json:"driverName"`
	Transport   *string    `bson:"transport" json:"transport"`
	ShippedAt   *time.Time `bson:"shippedAt" json:"shippedAt"`

	ID            string     `bson:"_id" json:"id"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt     *time.Time `bson:"deletedAt" json:"deletedAt"`
	DeletedReason *string    `bson:"deletedReason" json:"deletedReason"`
}

func (model DecisionSession) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateULIDString()
		}
	}
	model.UpdatedAt = now
	return &model
}
