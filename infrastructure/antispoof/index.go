package antispoof

import (
	"os"

	core "liveguard.io/application/antispoof"
	"liveguard.io/infrastructure/antispoof/forensic"
	"liveguard.io/infrastructure/antispoof/liveness"
	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/antispoof/visual"
	"liveguard.io/infrastructure/database/repository/cache"
	"liveguard.io/infrastructure/network"
)

var VisualService types.VisualClassifierType

var LivenessService types.LivenessProberType

var ForensicService types.ForensicAnalyzerType

// InitialiseAntispoofServices wires the production adapters. Called
// from startUp after the pipeline configuration has been loaded.
func InitialiseAntispoofServices() {
	VisualService = &visual.ModelServerClassifier{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("VISUAL_MODEL_BASE_URL"),
		},
	}
	LivenessService = &liveness.DeviceChallengeProber{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("DEVICE_GATEWAY_BASE_URL"),
		},
		Cache:        &cache.Cache,
		EARThreshold: core.Config.EARThreshold,
		WindowMS:     int(core.Config.LivenessTimeout.Milliseconds() / 2),
	}
	ForensicService = &forensic.StreamMetadataAnalyzer{
		JitterEpsilon: core.Config.JitterEpsilon,
	}
}
