package constants

// spoof class names reported by the visual classifier.
// the set returned per frame is open-world - models only report the
// classes relevant to the dominant pattern found, so never assume all
// of these are present in a result.
var CLASS_BONAFIDE = "bonafide"
var CLASS_SPOOF_PRINT = "spoof_print"
var CLASS_SPOOF_REPLAY = "spoof_replay"
var CLASS_SPOOF_DEEPFAKE = "spoof_deepfake"

var AVAILABLE_CHALLENGE_ACTIONS = []string{"blink", "head_turn_left", "head_turn_right", "nod"}

var AVAILABLE_STREAM_TRANSPORTS = []string{"usb", "csi", "ip", "integrated", "unknown"}

// capture driver names that indicate a virtual camera path. matched
// case-insensitively as substrings of the reported driver signature.
var VIRTUAL_DRIVER_SIGNATURES = []string{
	"obs virtual",
	"obs-camera",
	"v4l2loopback",
	"manycam",
	"droidcam",
	"snap camera",
	"xsplit",
	"virtualcam",
	"unitycapture",
}

var SIEM_EVENT_SOURCE = "liveguard-core"

var MAX_SIMULATION_BATCH_SIZE = 500
