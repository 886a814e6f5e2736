package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ArcheryClub/internal/config"
	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupInput 射手自助注册
type SignupInput struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DateOfBirth time.Time    `json:"date_of_birth"`
	Gender      model.Gender `json:"gender"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	DivisionID  *uint        `json:"division_id"`
}

// AuthResult 注册/登录结果
type AuthResult struct {
	Token  string        `json:"token"`
	Archer *model.Archer `json:"user"`
}

// Claims 登录令牌负载
type Claims struct {
	ArcherID uint       `json:"archer_id"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService 注册、登录与令牌签发
type AuthService struct {
	archerSvc  *ArcherService
	archerRepo repository.ArcherRepository
	cfg        config.JWTConfig
	logger     *logrus.Logger
}

func NewAuthService(archerSvc *ArcherService, archerRepo repository.ArcherRepository, cfg config.JWTConfig, logger *logrus.Logger) *AuthService {
	return &AuthService{
		archerSvc:  archerSvc,
		archerRepo: archerRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// GenerateToken 签发登录令牌
func (s *AuthService) GenerateToken(archer *model.Archer) (string, error) {
	now := time.Now()
	claims := Claims{
		ArcherID: archer.ArcherID,
		Role:     archer.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", archer.ArcherID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// ParseToken 校验并解析令牌
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法签名算法: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("解析令牌失败: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("令牌无效")
	}
	return claims, nil
}

// Signup 注册新射手（固定 archer 角色），组别按年龄+性别判定，成功即签发令牌
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	archer, err := s.archerSvc.Create(ctx, ArcherInput{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		Email:       in.Email,
		Password:    in.Password,
		Role:        model.RoleArcher,
		DivisionID:  in.DivisionID,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(archer)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("archer_id", archer.ArcherID).Info("射手注册成功")
	return &AuthResult{Token: token, Archer: archer}, nil
}

// Login 邮箱+密码登录，凭证错误统一返回 ErrAccessDenied
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	archer, err := s.archerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(archer.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAccessDenied
	}

	token, err := s.GenerateToken(archer)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("archer_id", archer.ArcherID).Info("射手登录成功")
	return &AuthResult{Token: token, Archer: archer}, nil
}

// Me 当前登录射手档案
func (s *AuthService) Me(ctx context.Context, archerID uint) (*model.Archer, error) {
	archer, err := s.archerRepo.GetByID(ctx, archerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}
	return archer, nil
}
