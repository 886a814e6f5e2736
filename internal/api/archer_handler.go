package api

import (
	"net/http"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ArcherHandler 射手档案、成绩历史、个人最佳与资料变更申请接口
type ArcherHandler struct {
	archerSvc  *service.ArcherService
	scoreSvc   *service.ScoreService
	recordsSvc *service.RecordsService
	roundSvc   *service.RoundService
	logger     *logrus.Logger
}

func NewArcherHandler(
	archerSvc *service.ArcherService,
	scoreSvc *service.ScoreService,
	recordsSvc *service.RecordsService,
	roundSvc *service.RoundService,
	logger *logrus.Logger,
) *ArcherHandler {
	return &ArcherHandler{
		archerSvc:  archerSvc,
		scoreSvc:   scoreSvc,
		recordsSvc: recordsSvc,
		roundSvc:   roundSvc,
		logger:     logger,
	}
}

// List 射手列表 GET /api/archers?search=&role=&class_id=&division_id=
func (h *ArcherHandler) List(c *gin.Context) {
	archers, err := h.archerSvc.List(c.Request.Context(), repository.ArcherFilter{
		Search:     c.Query("search"),
		Role:       c.Query("role"),
		ClassID:    queryUint(c, "class_id"),
		DivisionID: queryUint(c, "division_id"),
	})
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"archers": archers})
}

// Get 射手详情 GET /api/archers/:id
func (h *ArcherHandler) Get(c *gin.Context) {
	archer, err := h.archerSvc.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"archer": archer})
}

type createArcherRequest struct {
	FirstName   string       `json:"first_name" binding:"required"`
	LastName    string       `json:"last_name" binding:"required"`
	DateOfBirth string       `json:"date_of_birth" binding:"required"`
	Gender      model.Gender `json:"gender" binding:"required"`
	Email       string       `json:"email" binding:"required,email"`
	Password    string       `json:"password" binding:"required,min=6"`
	Role        model.Role   `json:"role"`
	DivisionID  *uint        `json:"division_id"`
}

// Create 创建射手（管理员）POST /api/archers
func (h *ArcherHandler) Create(c *gin.Context) {
	var req createArcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}
	archer, err := h.archerSvc.Create(c.Request.Context(), service.ArcherInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		DivisionID:  req.DivisionID,
	})
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Archer created successfully",
		"archer":  archer,
	})
}

type updateArcherRequest struct {
	FirstName   *string       `json:"first_name"`
	LastName    *string       `json:"last_name"`
	Email       *string       `json:"email"`
	DateOfBirth *string       `json:"date_of_birth"`
	Gender      *model.Gender `json:"gender"`
	Role        *model.Role   `json:"role"`
	DivisionID  *uint         `json:"division_id"`
	Password    *string       `json:"password"`
}

// Update 更新射手资料 PUT /api/archers/:id
func (h *ArcherHandler) Update(c *gin.Context) {
	var req updateArcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	in := service.ArcherUpdateInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Gender:     req.Gender,
		Role:       req.Role,
		DivisionID: req.DivisionID,
		Password:   req.Password,
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
			return
		}
		in.DateOfBirth = &dob
	}

	archer, err := h.archerSvc.Update(c.Request.Context(), CurrentViewer(c), pathID(c, "id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"archer":  archer,
	})
}

// Delete 删除射手（管理员）DELETE /api/archers/:id
func (h *ArcherHandler) Delete(c *gin.Context) {
	if err := h.archerSvc.Delete(c.Request.Context(), pathID(c, "id")); err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Archer deleted successfully"})
}

// Scores 射手成绩历史 GET /api/archers/:id/scores?status=&round_id=&start_date=&end_date=
// 仅本人或记录员/管理员可见
func (h *ArcherHandler) Scores(c *gin.Context) {
	viewer := CurrentViewer(c)
	archerID := pathID(c, "id")
	if viewer.ArcherID != archerID && !viewer.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	filter := repository.ScoreFilter{
		ArcherID: archerID,
		RoundID:  queryUint(c, "round_id"),
		Status:   model.ScoreStatus(c.Query("status")),
	}
	if filter.Status == "" && !viewer.IsReviewer() {
		filter.Statuses = []model.ScoreStatus{model.ScoreApproved, model.ScoreStaged}
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

	scores, err := h.scoreSvc.List(c.Request.Context(), viewer, filter)
	if err != nil {
		writeError(c, h.logger, err, "Score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

// PersonalBests 个人最佳 GET /api/archers/:id/personal-bests
func (h *ArcherHandler) PersonalBests(c *gin.Context) {
	viewer := CurrentViewer(c)
	archerID := pathID(c, "id")
	if viewer.ArcherID != archerID && !viewer.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	bests, err := h.recordsSvc.PersonalBests(c.Request.Context(), archerID)
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"personal_bests": bests})
}

// EligibleRounds 可射轮 GET /api/archers/:id/eligible-rounds
func (h *ArcherHandler) EligibleRounds(c *gin.Context) {
	result, err := h.roundSvc.EligibleRounds(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		if ve, ok := service.AsValidation(err); ok {
			// 无组别时附带操作指引
			body := gin.H{"error": ve.Message}
			if len(ve.Details) > 0 {
				body["message"] = ve.Details[0]
			}
			c.JSON(http.StatusBadRequest, body)
			return
		}
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"archer": gin.H{
			"name":     result.ArcherName,
			"class":    result.ClassName,
			"division": result.DivisionName,
		},
		"eligible_rounds": result.EligibleRounds,
		"total_rounds":    len(result.EligibleRounds),
		"message":         result.Message,
	})
}

type updateRequestBody struct {
	FirstName   *string       `json:"first_name"`
	LastName    *string       `json:"last_name"`
	Email       *string       `json:"email"`
	DateOfBirth *string       `json:"date_of_birth"`
	Gender      *model.Gender `json:"gender"`
	DivisionID  *uint         `json:"division_id"`
	Password    *string       `json:"password"`
}

// SubmitUpdateRequest 提交资料变更申请 POST /api/update-requests
func (h *ArcherHandler) SubmitUpdateRequest(c *gin.Context) {
	var req updateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	changes := model.ProfileChanges{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		DivisionID:   req.DivisionID,
		PasswordHash: req.Password,
	}
	request, err := h.archerSvc.SubmitUpdateRequest(c.Request.Context(), CurrentViewer(c), changes)
	if err != nil {
		writeError(c, h.logger, err, "Request")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Update request submitted successfully",
		"request": request,
	})
}

// PendingUpdateRequests 待审变更申请 GET /api/update-requests/pending
func (h *ArcherHandler) PendingUpdateRequests(c *gin.Context) {
	requests, err := h.archerSvc.ListPendingRequests(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// MyUpdateRequests 本人申请历史 GET /api/update-requests/mine
func (h *ArcherHandler) MyUpdateRequests(c *gin.Context) {
	requests, err := h.archerSvc.MyRequests(c.Request.Context(), CurrentViewer(c))
	if err != nil {
		writeError(c, h.logger, err, "Request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ApproveUpdateRequest 批准变更申请 POST /api/update-requests/:id/approve
func (h *ArcherHandler) ApproveUpdateRequest(c *gin.Context) {
	request, err := h.archerSvc.ApproveUpdateRequest(c.Request.Context(), CurrentViewer(c), pathID(c, "id"))
	if err != nil {
		writeError(c, h.logger, err, "Request")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Update request approved successfully",
		"request": request,
	})
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectUpdateRequest 拒绝变更申请 POST /api/update-requests/:id/reject
func (h *ArcherHandler) RejectUpdateRequest(c *gin.Context) {
	var req rejectRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	request, err := h.archerSvc.RejectUpdateRequest(c.Request.Context(), CurrentViewer(c), pathID(c, "id"), req.Reason)
	if err != nil {
		writeError(c, h.logger, err, "Request")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Update request rejected",
		"request": request,
	})
}
