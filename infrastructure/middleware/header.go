package middlewares

import (
	"crypto/subtle"
	"os"

	apperrors "liveguard.io/application/appErrors"
	"liveguard.io/application/interfaces"

	"github.com/gin-gonic/gin"
)

// ServiceAuthMiddleware gates every verification route behind the
// shared service key of the enclosing authentication flow and seeds
// the request scoped ApplicationContext.
func ServiceAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		serviceKey := ctx.Request.Header.Get("X-Service-Key")
		expected := os.Getenv("SERVICE_API_KEY")
		if expected == "" || subtle.ConstantTimeCompare([]byte(serviceKey), []byte(expected)) != 1 {
			apperrors.AuthenticationError(ctx, "invalid service credentials", ctx.Request.Header.Get("X-Device-Id"))
			return
		}
		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Header:   ctx.Request.Header,
			DeviceID: ctx.Request.Header.Get("X-Device-Id"),
		})
		ctx.Next()
	}
}
