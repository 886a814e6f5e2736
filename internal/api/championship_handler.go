package api

import (
	"net/http"

	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChampionshipHandler 年度锦标赛接口
type ChampionshipHandler struct {
	champSvc *service.ChampionshipService
	logger   *logrus.Logger
}

func NewChampionshipHandler(champSvc *service.ChampionshipService, logger *logrus.Logger) *ChampionshipHandler {
	return &ChampionshipHandler{champSvc: champSvc, logger: logger}
}

// List 锦标赛列表 GET /api/championships
func (h *ChampionshipHandler) List(c *gin.Context) {
	championships, err := h.champSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusOK, gin.H{"championships": championships})
}

// Get 锦标赛详情 GET /api/championships/:id
func (h *ChampionshipHandler) Get(c *gin.Context) {
	championship, err := h.champSvc.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusOK, gin.H{"championship": championship})
}

type championshipRequest struct {
	Name           string  `json:"name"`
	Year           int     `json:"year"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	CompetitionIDs []uint  `json:"competition_ids"`
}

func (r *championshipRequest) toInput() (service.ChampionshipInput, error) {
	in := service.ChampionshipInput{
		Name:           r.Name,
		Year:           r.Year,
		CompetitionIDs: r.CompetitionIDs,
	}
	if r.StartDate != nil && *r.StartDate != "" {
		d, err := parseDate(*r.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = &d
	}
	if r.EndDate != nil && *r.EndDate != "" {
		d, err := parseDate(*r.EndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = &d
	}
	return in, nil
}

// Create 创建锦标赛（管理员）POST /api/championships
func (h *ChampionshipHandler) Create(c *gin.Context) {
	var req championshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	championship, err := h.champSvc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Championship created successfully",
		"championship": championship,
	})
}

// Update 更新锦标赛（管理员）PUT /api/championships/:id
func (h *ChampionshipHandler) Update(c *gin.Context) {
	var req championshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	championship, err := h.champSvc.Update(c.Request.Context(), pathID(c, "id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Championship updated successfully",
		"championship": championship,
	})
}

// Delete 删除锦标赛（管理员）DELETE /api/championships/:id
func (h *ChampionshipHandler) Delete(c *gin.Context) {
	if err := h.champSvc.Delete(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Championship deleted successfully"})
}

type addCompetitionRequest struct {
	CompetitionID uint `json:"competition_id" binding:"required"`
}

// AddCompetition 挂载比赛（管理员）POST /api/championships/:id/competitions
func (h *ChampionshipHandler) AddCompetition(c *gin.Context) {
	var req addCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.champSvc.AddCompetition(c.Request.Context(), pathID(c, "id"), req.CompetitionID); err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Competition added to championship successfully"})
}

// RemoveCompetition 移除比赛（管理员）DELETE /api/championships/:id/competitions/:competition_id
func (h *ChampionshipHandler) RemoveCompetition(c *gin.Context) {
	if err := h.champSvc.RemoveCompetition(c.Request.Context(), pathID(c, "id"), pathID(c, "competition_id")); err != nil {
		writeError(c, h.logger, err, "Association")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Competition removed from championship successfully"})
}

// Standings 积分榜 GET /api/championships/:id/standings
func (h *ChampionshipHandler) Standings(c *gin.Context) {
	result, err := h.champSvc.Standings(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	body := gin.H{
		"championship": result.Championship,
		"standings":    result.Standings,
	}
	if result.Message != "" {
		body["message"] = result.Message
	}
	c.JSON(http.StatusOK, body)
}

// Winners 获奖名单 GET /api/championships/:id/winners
func (h *ChampionshipHandler) Winners(c *gin.Context) {
	result, err := h.champSvc.Winners(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Championship")
		return
	}
	body := gin.H{
		"championship": result.Championship,
		"winners":      result.Winners,
	}
	if result.Message != "" {
		body["message"] = result.Message
	}
	c.JSON(http.StatusOK, body)
}
