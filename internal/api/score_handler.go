package api

import (
	"net/http"
	"strconv"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScoreHandler 成绩提交、查询、审批与俱乐部纪录接口
type ScoreHandler struct {
	scoreSvc   *service.ScoreService
	recordsSvc *service.RecordsService
	logger     *logrus.Logger
}

func NewScoreHandler(scoreSvc *service.ScoreService, recordsSvc *service.RecordsService, logger *logrus.Logger) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc, recordsSvc: recordsSvc, logger: logger}
}

// List 成绩列表 GET /api/scores?archer_id=&round_id=&division_id=&competition_id=&status=&start_date=&end_date=&limit=&offset=
func (h *ScoreHandler) List(c *gin.Context) {
	filter := repository.ScoreFilter{
		ArcherID:      queryUint(c, "archer_id"),
		RoundID:       queryUint(c, "round_id"),
		DivisionID:    queryUint(c, "division_id"),
		CompetitionID: queryUint(c, "competition_id"),
		Status:        model.ScoreStatus(c.Query("status")),
	}
	if v := c.Query("start_date"); v != "" {
		if d, err := parseDate(v); err == nil {
			filter.From = &d
		}
	}
	if v := c.Query("end_date"); v != "" {
		if d, err := parseDate(v); err == nil {
			filter.To = &d
		}
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	scores, err := h.scoreSvc.List(c.Request.Context(), CurrentViewer(c), filter)
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores, "count": len(scores)})
}

// Get 成绩详情 GET /api/scores/:id
func (h *ScoreHandler) Get(c *gin.Context) {
	score, err := h.scoreSvc.Get(c.Request.Context(), CurrentViewer(c), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

type createScoreRequest struct {
	RoundID       uint               `json:"round_id" binding:"required"`
	DivisionID    uint               `json:"division_id" binding:"required"`
	CompetitionID *uint              `json:"competition_id"`
	EquipmentUsed string             `json:"equipment_used"`
	DateShot      string             `json:"date_shot" binding:"required"`
	Ends          []service.EndInput `json:"ends" binding:"required"`
	Notes         string             `json:"notes"`
}

// Create 提交成绩 POST /api/scores
func (h *ScoreHandler) Create(c *gin.Context) {
	var req createScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	dateShot, err := parseDate(req.DateShot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_shot, expected YYYY-MM-DD"})
		return
	}

	score, err := h.scoreSvc.Create(c.Request.Context(), CurrentViewer(c), service.CreateScoreInput{
		RoundID:       req.RoundID,
		DivisionID:    req.DivisionID,
		CompetitionID: req.CompetitionID,
		EquipmentUsed: req.EquipmentUsed,
		DateShot:      dateShot,
		Ends:          req.Ends,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Score staged successfully",
		"score":   score,
	})
}

type updateScoreRequest struct {
	DateShot *string            `json:"date_shot"`
	Ends     []service.EndInput `json:"ends"`
	Notes    *string            `json:"notes"`
}

// Update 修改暂存成绩 PUT /api/scores/:id
func (h *ScoreHandler) Update(c *gin.Context) {
	var req updateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in := service.UpdateScoreInput{Ends: req.Ends, Notes: req.Notes}
	if req.DateShot != nil {
		d, err := parseDate(*req.DateShot)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_shot, expected YYYY-MM-DD"})
			return
		}
		in.DateShot = &d
	}

	score, err := h.scoreSvc.Update(c.Request.Context(), CurrentViewer(c), pathID(c, "id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Score updated successfully",
		"score":   score,
	})
}

// Approve 审批通过 POST /api/scores/:id/approve
func (h *ScoreHandler) Approve(c *gin.Context) {
	score, err := h.scoreSvc.Approve(c.Request.Context(), CurrentViewer(c), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Score approved successfully",
		"score":   score,
	})
}

type rejectScoreRequest struct {
	Reason string `json:"reason"`
}

// Reject 审批拒绝 POST /api/scores/:id/reject
func (h *ScoreHandler) Reject(c *gin.Context) {
	var req rejectScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	score, err := h.scoreSvc.Reject(c.Request.Context(), CurrentViewer(c), pathID(c, "id"), req.Reason)
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Score rejected",
		"score":   score,
	})
}

type statusRequest struct {
	Status model.ScoreStatus `json:"status" binding:"required"`
	Reason string            `json:"reason"`
}

// SetStatus 状态流转 PUT /api/scores/:id/status
func (h *ScoreHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	score, err := h.scoreSvc.SetStatus(c.Request.Context(), CurrentViewer(c), pathID(c, "id"), req.Status, req.Reason)
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Score status updated successfully",
		"score":   score,
	})
}

// Delete 删除成绩（管理员）DELETE /api/scores/:id
func (h *ScoreHandler) Delete(c *gin.Context) {
	if err := h.scoreSvc.Delete(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Score deleted successfully"})
}

// Staged 待审队列 GET /api/scores/staged/list
func (h *ScoreHandler) Staged(c *gin.Context) {
	scores, err := h.scoreSvc.ListStaged(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

// ClubRecords 俱乐部纪录 GET /api/scores/club-records?division_id=
func (h *ScoreHandler) ClubRecords(c *gin.Context) {
	records, err := h.recordsSvc.ClubRecords(c.Request.Context(), queryUint(c, "division_id"))
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
