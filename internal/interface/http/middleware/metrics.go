package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookswap/pkg/metrics"
)

// Metrics 采集HTTP请求指标
// path使用路由模板(/api/v1/books/:id)，避免ID造成标签爆炸；未匹配路由记为unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InitMetrics()
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
