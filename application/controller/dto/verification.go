package dto

// StreamMetadataDTO carries the raw capture-path evidence the forensic
// stage inspects.
type StreamMetadataDTO struct {
	FrameTimestampsUS []int64 `json:"frameTimestampsUS" validate:"required,min=3"`
	DriverName        string  `json:"driverName" validate:"required"`
	Transport         string  `json:"transport" validate:"omitempty,stream_transport"`
}

type VerifySessionDTO struct {
	Frame              string            `json:"frame" validate:"required,image_ref"`
	ChallengeChannelID string            `json:"challengeChannelID" validate:"required"`
	StreamMetadata     StreamMetadataDTO `json:"streamMetadata" validate:"required"`
}

type SimulateSessionDTO struct {
	// omit for a weighted random draw
	GroundTruth *string `json:"groundTruth" validate:"omitempty,oneof=BONAFIDE PRINT_ATTACK REPLAY_ATTACK DEEPFAKE DIGITAL_INJECTION"`
	Seed        *int64  `json:"seed"`
}

type SimulateBatchDTO struct {
	Sessions int    `json:"sessions" validate:"required,min=1,simulation_batch"`
	Seed     *int64 `json:"seed"`
}
