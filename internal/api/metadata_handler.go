package api

import (
	"net/http"

	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MetadataHandler 组别/弓种/类别只读接口
type MetadataHandler struct {
	metadataSvc *service.MetadataService
	logger      *logrus.Logger
}

func NewMetadataHandler(metadataSvc *service.MetadataService, logger *logrus.Logger) *MetadataHandler {
	return &MetadataHandler{metadataSvc: metadataSvc, logger: logger}
}

// Classes 组别列表 GET /api/classes
func (h *MetadataHandler) Classes(c *gin.Context) {
	classes, err := h.metadataSvc.Classes(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Class")
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Divisions 弓种列表 GET /api/divisions
func (h *MetadataHandler) Divisions(c *gin.Context) {
	divisions, err := h.metadataSvc.Divisions(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Division")
		return
	}
	c.JSON(http.StatusOK, gin.H{"divisions": divisions})
}

// Categories 类别列表 GET /api/categories
func (h *MetadataHandler) Categories(c *gin.Context) {
	categories, err := h.metadataSvc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type createCategoryRequest struct {
	ClassID    uint   `json:"class_id" binding:"required"`
	DivisionID uint   `json:"division_id" binding:"required"`
	Name       string `json:"name"`
}

// CreateCategory 创建类别（管理员）POST /api/categories
func (h *MetadataHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	category, err := h.metadataSvc.CreateCategory(c.Request.Context(), req.ClassID, req.DivisionID, req.Name)
	if err != nil {
		writeError(c, h.logger, err, "Category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}
