package api

import (
	"alcyxob/boxing-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// statusFor maps a service error category to an HTTP status. Conflicts are reported
// as 400 except for duplicate accounts, which keep 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error response. Client errors carry their message,
// everything else is logged and answered with a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		abortWithError(c, status, internalErrorMessage)
		return
	}
	abortWithError(c, status, err.Error())
}

// objectIDParam parses a hex ObjectID path parameter, answering 400 when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUserID reads the caller from the context, answering 401 when it is absent.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "invalid user identity")
		return primitive.NilObjectID, false
	}
	return id, true
}
