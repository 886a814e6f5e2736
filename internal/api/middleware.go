package api

import (
	"net/http"
	"strings"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ctxViewerKey    = "viewer"
	headerRequestID = "X-Request-ID"
)

// RequestID 为每个请求注入追踪 ID，写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// AccessLog 请求访问日志
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(headerRequestID),
		}).Info("请求完成")
	}
}

// Auth 解析 Bearer 令牌，注入 Viewer；失败返回 401
func Auth(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		claims, err := authSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxViewerKey, service.Viewer{
			ArcherID: claims.ArcherID,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// RequireRoles 角色门禁，需在 Auth 之后
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := CurrentViewer(c)
		for _, role := range roles {
			if viewer.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}

// CurrentViewer 取出 Auth 注入的操作者身份
func CurrentViewer(c *gin.Context) service.Viewer {
	if v, ok := c.Get(ctxViewerKey); ok {
		if viewer, ok := v.(service.Viewer); ok {
			return viewer
		}
	}
	return service.Viewer{}
}
