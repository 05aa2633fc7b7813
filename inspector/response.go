package inspector

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scenedi/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// respondWithError renders an AppError with its own status; any other error
// becomes a 500.
func respondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
