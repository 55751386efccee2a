package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/apperr"
)

// respondError renders an application error. Validation errors carry the
// field→messages map; unexpected errors are logged and, outside debug
// mode, replaced with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	status := apperr.HTTPStatus(appErr)

	switch appErr.Kind {
	case apperr.KindValidation:
		c.JSON(status, gin.H{"error": appErr.Message, "errors": appErr.Fields})
	case apperr.KindInternal:
		log.Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr))
		message := "an unexpected error occurred, please try again later"
		if gin.Mode() != gin.ReleaseMode {
			message = appErr.Error()
		}
		c.JSON(status, gin.H{"error": message})
	default:
		c.JSON(status, gin.H{"error": appErr.Message})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
