package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/pkg/crypto"
	"campus-market.backend/pkg/logger"
)

const (
	// PaystackSignatureHeader carries the hex HMAC-SHA512 of the raw webhook body
	PaystackSignatureHeader = "X-Paystack-Signature"

	maxWebhookBodyBytes = 1 << 20
)

// PaystackSignature rejects webhook requests whose body is not signed with secret.
// The raw body is restored for the handler after verification.
func PaystackSignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			response.AbortWithError(c, domainerrors.BadRequest("unreadable webhook body"))
			return
		}

		if !crypto.VerifyHMACSHA512(secret, body, c.GetHeader(PaystackSignatureHeader)) {
			logger.Warn(c.Request.Context(), "Rejected unsigned payment webhook",
				zap.String("client_ip", c.ClientIP()),
				zap.Bool("secret_configured", secret != ""),
			)
			response.AbortWithError(c, domainerrors.Unauthorized("invalid signature"))
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
