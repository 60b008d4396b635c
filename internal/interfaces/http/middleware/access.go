package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
)

type accessChecker interface {
	CheckAccess(ctx context.Context, userID uuid.UUID) (entities.AccessStatus, error)
}

// AccessGate blocks banned users. Ban state is read fresh on every request, so an expired ban
// lets the user through without any cleanup.
func AccessGate(checker accessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AbortWithError(c, domainerrors.Unauthorized("User not authenticated"))
			return
		}

		status, err := checker.CheckAccess(c.Request.Context(), userID)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if status.IsBanned() {
			response.AbortWithError(c, domainerrors.AccountBanned(status.Reason, status.Until))
			return
		}
		c.Next()
	}
}
