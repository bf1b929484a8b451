package middleware

import (
	"errors"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error as an
// AppError body. Bind errors become invalid requests, anything untyped is internal.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var appErr *apperrors.AppError
		switch {
		case errors.As(last.Err, &appErr):
		case last.IsType(gin.ErrorTypeBind):
			appErr = apperrors.NewInvalidRequest(last.Err.Error())
		default:
			appErr = apperrors.New(apperrors.ErrInternal, last.Err.Error(), last.Err)
		}

		logFields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", appErr.Type,
			"status", appErr.HTTPStatus,
		}
		if appErr.Field != "" {
			logFields = append(logFields, "field", appErr.Field)
		}

		ctx := c.Request.Context()
		if appErr.HTTPStatus >= 500 {
			logger.LogError(ctx, appErr, "request failed", logFields...)
		} else {
			logger.FromContext(ctx).Warn(appErr.Message, logFields...)
		}

		c.JSON(appErr.HTTPStatus, appErr)
	}
}
