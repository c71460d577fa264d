package utils

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

func GenerateULIDString() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

// Session ids carry the SES- prefix expected by downstream audit tooling.
func GenerateSessionID() string {
	return "SES-" + GenerateULIDString()
}

func GetStringPointer(text string) *string {
	return &text
}

func GetBooleanPointer(data bool) *bool {
	return &data
}

func GetFloat64Pointer(data float64) *float64 {
	return &data
}

func GetIntPointer(data int) *int {
	return &data
}

func DecodeBase64Image(payload string) ([]byte, error) {
	trimmed := payload
	if idx := strings.Index(trimmed, ";base64,"); idx != -1 {
		trimmed = trimmed[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(trimmed)
}

func HasItemString(arr *[]string, target string) bool {
	for _, v := range *arr {
		if v == target {
			return true
		}
	}
	return false
}
