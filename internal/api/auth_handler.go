package api

import (
	"net/http"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 注册/登录/当前用户接口
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *logrus.Logger
}

func NewAuthHandler(authSvc *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type signupRequest struct {
	FirstName   string       `json:"first_name" binding:"required"`
	LastName    string       `json:"last_name" binding:"required"`
	DateOfBirth string       `json:"date_of_birth" binding:"required"`
	Gender      model.Gender `json:"gender" binding:"required"`
	Email       string       `json:"email" binding:"required,email"`
	Password    string       `json:"password" binding:"required,min=6"`
	DivisionID  *uint        `json:"division_id"`
}

// Signup 注册 POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), service.SignupInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Email:       req.Email,
		Password:    req.Password,
		DivisionID:  req.DivisionID,
	})
	if err != nil {
		writeError(c, h.logger, err, "Archer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   result.Token,
		"user":    result.Archer,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录 POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// 凭证错误不区分用户不存在与密码错误
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.Archer,
	})
}

// Me 当前用户 GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	viewer := CurrentViewer(c)
	archer, err := h.authSvc.Me(c.Request.Context(), viewer.ArcherID)
	if err != nil {
		writeError(c, h.logger, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": archer})
}

// Logout 登出（令牌由客户端丢弃）POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
