package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/snnyvrz/courselibrary/internal/apperror"
	"github.com/snnyvrz/courselibrary/internal/validation"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Not-found is answered with a bare 404; everything else gets an
// ErrorResponse body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperror.From(c.Errors.Last().Err)

		if appErr.Status >= http.StatusInternalServerError {
			log.Error().
				Err(appErr.Err).
				Str("request_id", c.GetString(RequestIDKey)).
				Str("code", appErr.Code).
				Msg(appErr.Message)
		}

		if appErr.Status == http.StatusNotFound {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.AbortWithStatusJSON(appErr.Status, validation.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
	}
}
