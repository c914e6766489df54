package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID  = "X-Request-ID"
	slowRequestLimit = 3 * time.Second
)

// RequestLogger 请求日志中间件
// 每个请求分配一个请求ID(沿用上游传入的X-Request-ID)，结束后输出一条结构化日志
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case latency > slowRequestLimit:
			log.Warn("slow request", fields...)
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
