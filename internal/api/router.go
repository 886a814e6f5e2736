package api

import (
	"net/http"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers 路由注册所需的全部处理器
type Handlers struct {
	Auth         *AuthHandler
	Archer       *ArcherHandler
	Round        *RoundHandler
	Score        *ScoreHandler
	Competition  *CompetitionHandler
	Championship *ChampionshipHandler
	Metadata     *MetadataHandler
}

// RegisterRoutes 注册全部 API 路由与通用中间件
func RegisterRoutes(r *gin.Engine, h Handlers, authSvc *service.AuthService, logger *logrus.Logger) {
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证
	r.POST("/api/auth/signup", h.Auth.Signup)
	r.POST("/api/auth/login", h.Auth.Login)

	auth := r.Group("/api", Auth(authSvc))
	reviewer := RequireRoles(model.RoleAdmin, model.RoleRecorder)
	admin := RequireRoles(model.RoleAdmin)

	auth.GET("/auth/me", h.Auth.Me)
	auth.POST("/auth/logout", h.Auth.Logout)

	// 基础数据
	auth.GET("/classes", h.Metadata.Classes)
	auth.GET("/divisions", h.Metadata.Divisions)
	auth.GET("/categories", h.Metadata.Categories)
	auth.POST("/categories", admin, h.Metadata.CreateCategory)

	// 射手
	auth.GET("/archers", reviewer, h.Archer.List)
	auth.POST("/archers", admin, h.Archer.Create)
	auth.GET("/archers/:id", h.Archer.Get)
	auth.PUT("/archers/:id", h.Archer.Update)
	auth.DELETE("/archers/:id", admin, h.Archer.Delete)
	auth.GET("/archers/:id/scores", h.Archer.Scores)
	auth.GET("/archers/:id/personal-bests", h.Archer.PersonalBests)
	auth.GET("/archers/:id/eligible-rounds", h.Archer.EligibleRounds)

	// 资料变更申请
	auth.POST("/update-requests", h.Archer.SubmitUpdateRequest)
	auth.GET("/update-requests/mine", h.Archer.MyUpdateRequests)
	auth.GET("/update-requests/pending", reviewer, h.Archer.PendingUpdateRequests)
	auth.POST("/update-requests/:id/approve", reviewer, h.Archer.ApproveUpdateRequest)
	auth.POST("/update-requests/:id/reject", reviewer, h.Archer.RejectUpdateRequest)

	// 轮与等效轮
	auth.GET("/rounds", h.Round.List)
	auth.POST("/rounds", reviewer, h.Round.Create)
	auth.GET("/rounds/:id", h.Round.Get)
	auth.PUT("/rounds/:id", reviewer, h.Round.Update)
	auth.DELETE("/rounds/:id", admin, h.Round.Delete)
	auth.GET("/rounds/:id/equivalents", h.Round.EquivalentsFor)
	auth.GET("/equivalent-rounds", h.Round.ListEquivalents)
	auth.POST("/equivalent-rounds", admin, h.Round.CreateEquivalent)
	auth.PUT("/equivalent-rounds/:id", admin, h.Round.UpdateEquivalent)
	auth.DELETE("/equivalent-rounds/:id", admin, h.Round.DeleteEquivalent)

	// 成绩
	auth.GET("/scores", h.Score.List)
	auth.POST("/scores", h.Score.Create)
	auth.GET("/scores/club-records", h.Score.ClubRecords)
	auth.GET("/scores/staged/list", reviewer, h.Score.Staged)
	auth.GET("/scores/:id", h.Score.Get)
	auth.PUT("/scores/:id", h.Score.Update)
	auth.POST("/scores/:id/approve", reviewer, h.Score.Approve)
	auth.POST("/scores/:id/reject", reviewer, h.Score.Reject)
	auth.PUT("/scores/:id/status", reviewer, h.Score.SetStatus)
	auth.DELETE("/scores/:id", admin, h.Score.Delete)

	// 比赛
	auth.GET("/competitions", h.Competition.List)
	auth.POST("/competitions", reviewer, h.Competition.Create)
	auth.GET("/competitions/:id", h.Competition.Get)
	auth.PUT("/competitions/:id", reviewer, h.Competition.Update)
	auth.DELETE("/competitions/:id", admin, h.Competition.Delete)
	auth.GET("/competitions/:id/leaderboard", h.Competition.Leaderboard)

	// 锦标赛
	auth.GET("/championships", h.Championship.List)
	auth.POST("/championships", admin, h.Championship.Create)
	auth.GET("/championships/:id", h.Championship.Get)
	auth.PUT("/championships/:id", admin, h.Championship.Update)
	auth.DELETE("/championships/:id", admin, h.Championship.Delete)
	auth.POST("/championships/:id/competitions", admin, h.Championship.AddCompetition)
	auth.DELETE("/championships/:id/competitions/:competition_id", admin, h.Championship.RemoveCompetition)
	auth.GET("/championships/:id/standings", h.Championship.Standings)
	auth.GET("/championships/:id/winners", h.Championship.Winners)
}
