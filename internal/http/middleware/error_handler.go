package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last handler error as
// {"error": msg, "request_id": id, "fields": {...}}.
func ErrorHandler(l logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		entry := l.WithFields(logrus.Fields{"request_id": rid, "status": status}).WithError(err)
		if status >= 500 {
			entry.Error("request_failed")
		} else {
			entry.Debug("request_rejected")
		}

		payload := gin.H{"error": apperr.PublicMessage(err), "request_id": rid}
		if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
			payload["fields"] = ae.Fields
		}
		c.AbortWithStatusJSON(status, payload)
	}
}
