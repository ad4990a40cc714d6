package public

import (
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog returns a logger carrying the request id when present
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

func getUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get("user_id")
	if !ok {
		respondError(c, response.CodeUnauthorized, "user identity missing", nil)
		c.Abort()
		return 0, false
	}
	uid, ok := value.(uint)
	if !ok || uid == 0 {
		respondError(c, response.CodeUnauthorized, "user identity invalid", nil)
		c.Abort()
		return 0, false
	}
	return uid, true
}

func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
