package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/logger"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps err onto an AppError and sends it. Internal errors are logged and never echoed.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr.Code == domainerrors.CodeInternalError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// AbortWithError sends the error response and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
