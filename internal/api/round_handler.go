package api

import (
	"net/http"

	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RoundHandler 轮定义与等效轮规则接口
type RoundHandler struct {
	roundSvc *service.RoundService
	logger   *logrus.Logger
}

func NewRoundHandler(roundSvc *service.RoundService, logger *logrus.Logger) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc, logger: logger}
}

// List 轮列表 GET /api/rounds?search=
func (h *RoundHandler) List(c *gin.Context) {
	rounds, err := h.roundSvc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// Get 轮详情 GET /api/rounds/:id
func (h *RoundHandler) Get(c *gin.Context) {
	round, err := h.roundSvc.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

// Create 创建轮 POST /api/rounds
func (h *RoundHandler) Create(c *gin.Context) {
	var req service.RoundInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	round, err := h.roundSvc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Round created successfully",
		"round":   round,
	})
}

// Update 更新轮 PUT /api/rounds/:id
func (h *RoundHandler) Update(c *gin.Context) {
	var req service.RoundInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	round, err := h.roundSvc.Update(c.Request.Context(), pathID(c, "id"), req)
	if err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Round updated successfully",
		"round":   round,
	})
}

// Delete 删除轮（管理员）DELETE /api/rounds/:id
func (h *RoundHandler) Delete(c *gin.Context) {
	if err := h.roundSvc.Delete(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Round deleted successfully"})
}

// EquivalentsFor 某轮在指定类别+日期下的等效轮 GET /api/rounds/:id/equivalents?category_id=&date=
func (h *RoundHandler) EquivalentsFor(c *gin.Context) {
	categoryID := queryUint(c, "category_id")
	dateStr := c.Query("date")
	if categoryID == 0 || dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category ID and date are required"})
		return
	}
	date, err := parseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	equivalents, err := h.roundSvc.EquivalentsFor(c.Request.Context(), pathID(c, "id"), categoryID, date)
	if err != nil {
		writeError(c, h.logger, err, "Round")
		return
	}
	c.JSON(http.StatusOK, gin.H{"equivalents": equivalents})
}

// ListEquivalents 等效轮规则列表 GET /api/equivalent-rounds?base_round_id=&category_id=
func (h *RoundHandler) ListEquivalents(c *gin.Context) {
	equivalents, err := h.roundSvc.ListEquivalents(c.Request.Context(), repository.EquivalentFilter{
		BaseRoundID: queryUint(c, "base_round_id"),
		CategoryID:  queryUint(c, "category_id"),
	})
	if err != nil {
		writeError(c, h.logger, err, "Equivalent round rule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"equivalents": equivalents})
}

type equivalentRequest struct {
	BaseRoundID       uint    `json:"base_round_id" binding:"required"`
	EquivalentRoundID uint    `json:"equivalent_round_id" binding:"required"`
	CategoryID        uint    `json:"category_id" binding:"required"`
	StartDate         string  `json:"start_date" binding:"required"`
	EndDate           *string `json:"end_date"`
}

func (r *equivalentRequest) toInput() (service.EquivalentInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return service.EquivalentInput{}, err
	}
	in := service.EquivalentInput{
		BaseRoundID:       r.BaseRoundID,
		EquivalentRoundID: r.EquivalentRoundID,
		CategoryID:        r.CategoryID,
		StartDate:         start,
	}
	if r.EndDate != nil && *r.EndDate != "" {
		end, err := parseDate(*r.EndDate)
		if err != nil {
			return service.EquivalentInput{}, err
		}
		in.EndDate = &end
	}
	return in, nil
}

// CreateEquivalent 创建等效轮规则（管理员）POST /api/equivalent-rounds
func (h *RoundHandler) CreateEquivalent(c *gin.Context) {
	var req equivalentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	equivalent, err := h.roundSvc.CreateEquivalent(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err, "Equivalent round rule")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Equivalent round created successfully",
		"equivalent": equivalent,
	})
}

// UpdateEquivalent 更新等效轮规则（管理员）PUT /api/equivalent-rounds/:id
func (h *RoundHandler) UpdateEquivalent(c *gin.Context) {
	var req equivalentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	equivalent, err := h.roundSvc.UpdateEquivalent(c.Request.Context(), pathID(c, "id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Equivalent round rule")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Equivalent round updated successfully",
		"equivalent": equivalent,
	})
}

// DeleteEquivalent 删除等效轮规则（管理员）DELETE /api/equivalent-rounds/:id
func (h *RoundHandler) DeleteEquivalent(c *gin.Context) {
	if err := h.roundSvc.DeleteEquivalent(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Equivalent round rule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Equivalent round rule deleted successfully"})
}
