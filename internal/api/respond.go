package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError 业务错误到 HTTP 状态码的统一映射
// ErrNotFound→404，ErrAccessDenied→403，ValidationError/ErrInvalidState/ErrConflict→400，其余→500
func writeError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": fallback + " not found"})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if ve, ok := service.AsValidation(err); ok {
			body := gin.H{"error": ve.Message}
			if len(ve.Details) > 0 {
				body["details"] = ve.Details
			}
			c.JSON(http.StatusBadRequest, body)
			return
		}
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("请求处理失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
	}
}

// pathID 解析路径中的数字 ID，0 表示非法
func pathID(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// queryUint 解析查询参数中的数字，缺省/非法返回 0
func queryUint(c *gin.Context, name string) uint {
	v := c.Query(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// parseDate 解析 YYYY-MM-DD
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
