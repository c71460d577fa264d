package visual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"liveguard.io/infrastructure/antispoof/types"
	"liveguard.io/infrastructure/logger"
	"liveguard.io/infrastructure/network"
)

// ModelServerClassifier talks to the frame classification model server.
// The model reports a sparse class->probability map; which classes show
// up depends on the dominant pattern it found.
type ModelServerClassifier struct {
	Network *network.NetworkController
}

type classifyFrameRequest struct {
	Frame *string `json:"frame"`
}

type classifyFrameResponse struct {
	Success bool               `json:"success"`
	Classes map[string]float64 `json:"classes"`
	Error   *string            `json:"error"`
}

func (classifier *ModelServerClassifier) Classify(ctx context.Context, input *types.SessionInput) (types.ClassificationResult, error) {
	response, statusCode, err := classifier.Network.Post(ctx, "/classify-frame", &map[string]string{}, classifyFrameRequest{
		Frame: input.Frame,
	})
	if err != nil {
		logger.Error("error classifying face frame", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: model server did not answer in time", types.ErrStageTimeout)
		}
		return nil, fmt.Errorf("%w: %s", types.ErrStageUnavailable, err.Error())
	}

	if statusCode == nil || *statusCode != 200 {
		logger.Error("frame classification failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return nil, fmt.Errorf("%w: model server returned a non-200 status", types.ErrStageUnavailable)
	}

	var result classifyFrameResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling frame classification response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, fmt.Errorf("%w: malformed model server response", types.ErrStageUnavailable)
	}
	if !result.Success || len(result.Classes) == 0 {
		// the model refusing to classify is absent evidence, not a
		// pass
		return nil, fmt.Errorf("%w: model produced no classification", types.ErrStageUnavailable)
	}

	return types.ClassificationResult(result.Classes), nil
}
