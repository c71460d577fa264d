package controller

import (
	"context"
	"net/http"
	"os"

	apperrors "liveguard.io/application/appErrors"
	"liveguard.io/application/controller/dto"
	"liveguard.io/application/interfaces"
	"liveguard.io/application/repository"
	verification_usecases "liveguard.io/application/usecases/verification"
	server_response "liveguard.io/infrastructure/serverResponse"
	"liveguard.io/infrastructure/validator"

	"github.com/gin-gonic/gin"
)

// VerifySession runs the full decision pipeline for one
// authentication attempt and returns the structured verdict.
func VerifySession(ctx *interfaces.ApplicationContext[dto.VerifySessionDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}

	decision, err := verification_usecases.VerifySessionUseCase(ctx.Ctx, requestContext(ctx.Ctx), ctx.Body, ctx.DeviceID)
	if err != nil {
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "session verified", decision, nil, nil, nil)
}

// SimulateSession runs the pipeline against simulated detectors. Dev
// environments only.
func SimulateSession(ctx *interfaces.ApplicationContext[dto.SimulateSessionDTO]) {
	if os.Getenv("APP_ENV") != "dev" {
		apperrors.NotFoundError(ctx.Ctx, "simulation is not available in this environment", &ctx.DeviceID)
		return
	}
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}

	result, err := verification_usecases.SimulateSessionUseCase(ctx.Ctx, requestContext(ctx.Ctx), ctx.Body, ctx.DeviceID)
	if err != nil {
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "simulated session decided", result, nil, nil, nil)
}

// SimulateBatch replays N weighted random threat vectors and returns
// the aggregate verdict distribution. Dev environments only.
func SimulateBatch(ctx *interfaces.ApplicationContext[dto.SimulateBatchDTO]) {
	if os.Getenv("APP_ENV") != "dev" {
		apperrors.NotFoundError(ctx.Ctx, "simulation is not available in this environment", &ctx.DeviceID)
		return
	}
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}

	summary, err := verification_usecases.SimulateBatchUseCase(ctx.Ctx, requestContext(ctx.Ctx), ctx.Body, ctx.DeviceID)
	if err != nil {
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "simulation batch completed", summary, nil, nil, nil)
}

// FetchSession returns the persisted audit record for a session id.
func FetchSession(ctx *interfaces.ApplicationContext[any], sessionID string) {
	if sessionID == "" {
		apperrors.ClientError(ctx.Ctx, "missing session id", nil, nil, ctx.DeviceID)
		return
	}
	record, err := repository.DecisionSessionRepo().FindOneByFilter(map[string]interface{}{
		"sessionID": sessionID,
	})
	if err != nil {
		apperrors.UnknownError(ctx.Ctx, err, nil, ctx.DeviceID)
		return
	}
	if record == nil {
		apperrors.NotFoundError(ctx.Ctx, "session not found", &ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "session audit record", record, nil, nil, nil)
}

func requestContext(ctx interface{}) (reqCtx context.Context) {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.Request.Context()
	}
	return context.Background()
}
