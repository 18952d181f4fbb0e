package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

// Recovery turns panics into a logged 500 instead of gin's stderr dump.
func Recovery(l logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"panic":      fmt.Sprint(recovered),
			"stack":      string(debug.Stack()),
		}).Error("panic_recovered")

		// ErrorHandler sits inside this middleware and has already unwound.
		err := apperr.Wrap(fmt.Errorf("panic: %v", recovered))
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      apperr.PublicMessage(err),
			"request_id": GetRequestID(c),
		})
	})
}
