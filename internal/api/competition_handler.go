package api

import (
	"net/http"
	"strconv"

	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CompetitionHandler 比赛管理与榜单接口
type CompetitionHandler struct {
	compSvc *service.CompetitionService
	logger  *logrus.Logger
}

func NewCompetitionHandler(compSvc *service.CompetitionService, logger *logrus.Logger) *CompetitionHandler {
	return &CompetitionHandler{compSvc: compSvc, logger: logger}
}

// List 比赛列表 GET /api/competitions?search=&status=&year=&limit=&offset=
func (h *CompetitionHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	competitions, err := h.compSvc.List(c.Request.Context(), repository.CompetitionFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Year:   year,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"competitions": competitions})
}

// Get 比赛详情（含已通过成绩）GET /api/competitions/:id
func (h *CompetitionHandler) Get(c *gin.Context) {
	detail, err := h.compSvc.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"competition": detail.Competition,
		"results":     detail.Results,
	})
}

type competitionRequest struct {
	Name        string  `json:"name"`
	RoundID     *uint   `json:"round_id"`
	Date        string  `json:"date"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

func (r *competitionRequest) toInput() (service.CompetitionInput, error) {
	in := service.CompetitionInput{
		Name:        r.Name,
		RoundID:     r.RoundID,
		Location:    r.Location,
		Description: r.Description,
		Status:      r.Status,
	}
	if r.Date != "" {
		d, err := parseDate(r.Date)
		if err != nil {
			return in, err
		}
		in.Date = d
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

// Create 创建比赛 POST /api/competitions
func (h *CompetitionHandler) Create(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	competition, err := h.compSvc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Competition created successfully",
		"competition": competition,
	})
}

// Update 更新比赛 PUT /api/competitions/:id
func (h *CompetitionHandler) Update(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	competition, err := h.compSvc.Update(c.Request.Context(), pathID(c, "id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Competition updated successfully",
		"competition": competition,
	})
}

// Delete 删除比赛（管理员）DELETE /api/competitions/:id
func (h *CompetitionHandler) Delete(c *gin.Context) {
	if err := h.compSvc.Delete(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Competition deleted successfully"})
}

// Leaderboard 比赛榜单 GET /api/competitions/:id/leaderboard
func (h *CompetitionHandler) Leaderboard(c *gin.Context) {
	leaderboard, err := h.compSvc.Leaderboard(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
}
