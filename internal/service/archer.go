package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码哈希失败: %w", err)
	}
	return string(hash), nil
}

// ArcherInput 射手创建（管理员）
type ArcherInput struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DateOfBirth time.Time    `json:"date_of_birth"`
	Gender      model.Gender `json:"gender"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	Role        model.Role   `json:"role"`
	DivisionID  *uint        `json:"division_id"`
}

// ArcherUpdateInput 射手资料更新，空指针表示不变
type ArcherUpdateInput struct {
	FirstName   *string       `json:"first_name"`
	LastName    *string       `json:"last_name"`
	Email       *string       `json:"email"`
	DateOfBirth *time.Time    `json:"date_of_birth"`
	Gender      *model.Gender `json:"gender"`
	Role        *model.Role   `json:"role"`
	DivisionID  *uint         `json:"division_id"`
	Password    *string       `json:"password"`
}

// ArcherService 射手档案管理与资料变更审批
type ArcherService struct {
	archerRepo   repository.ArcherRepository
	requestRepo  repository.UpdateRequestRepository
	metadataRepo repository.MetadataRepository
	logger       *logrus.Logger
}

func NewArcherService(
	archerRepo repository.ArcherRepository,
	requestRepo repository.UpdateRequestRepository,
	metadataRepo repository.MetadataRepository,
	logger *logrus.Logger,
) *ArcherService {
	return &ArcherService{
		archerRepo:   archerRepo,
		requestRepo:  requestRepo,
		metadataRepo: metadataRepo,
		logger:       logger,
	}
}

// resolveClassID 按出生日期与性别解析组别，组别表无匹配时返回 nil
func (s *ArcherService) resolveClassID(ctx context.Context, dateOfBirth time.Time, gender model.Gender) *uint {
	age := utils.CalculateAge(dateOfBirth, time.Now())
	className := utils.DetermineClass(age, gender)
	cls, err := s.metadataRepo.GetClassByName(ctx, className)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).Warn("解析组别失败")
		}
		return nil
	}
	return &cls.ClassID
}

func (s *ArcherService) List(ctx context.Context, filter repository.ArcherFilter) ([]*model.Archer, error) {
	list, err := s.archerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询射手列表失败: %w", err)
	}
	return list, nil
}

func (s *ArcherService) Get(ctx context.Context, id uint) (*model.Archer, error) {
	archer, err := s.archerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}
	return archer, nil
}

// Create 创建射手（管理员），组别按年龄+性别自动判定
func (s *ArcherService) Create(ctx context.Context, in ArcherInput) (*model.Archer, error) {
	if in.Email == "" || in.Password == "" {
		return nil, NewValidationError("Email and password are required")
	}
	if _, err := s.archerRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, NewConflictError("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = model.RoleArcher
	}
	divisionID := in.DivisionID
	if role != model.RoleArcher {
		divisionID = nil
	}

	archer := &model.Archer{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		DateOfBirth:       in.DateOfBirth,
		Gender:            in.Gender,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              role,
		DefaultDivisionID: divisionID,
		ClassID:           s.resolveClassID(ctx, in.DateOfBirth, in.Gender),
	}
	if err := s.archerRepo.Create(ctx, archer); err != nil {
		return nil, fmt.Errorf("创建射手失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"archer_id": archer.ArcherID,
		"role":      archer.Role,
	}).Info("射手已创建")
	return s.archerRepo.GetByID(ctx, archer.ArcherID)
}

// Update 更新射手资料：本人或记录员/管理员；角色仅管理员可改
// 出生日期或性别变更时重新判定组别
func (s *ArcherService) Update(ctx context.Context, viewer Viewer, id uint, in ArcherUpdateInput) (*model.Archer, error) {
	if viewer.ArcherID != id && !viewer.IsReviewer() {
		return nil, ErrAccessDenied
	}

	archer, err := s.archerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}

	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Email != nil && *in.Email != archer.Email {
		if _, err := s.archerRepo.GetByEmail(ctx, *in.Email); err == nil {
			return nil, NewConflictError("Email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询射手失败: %w", err)
		}
		fields["email"] = *in.Email
	}

	gender := archer.Gender
	if in.Gender != nil {
		gender = *in.Gender
		fields["gender"] = *in.Gender
	}
	if in.DateOfBirth != nil {
		fields["date_of_birth"] = *in.DateOfBirth
		fields["class_id"] = s.resolveClassID(ctx, *in.DateOfBirth, gender)
	} else if in.Gender != nil {
		fields["class_id"] = s.resolveClassID(ctx, archer.DateOfBirth, gender)
	}

	role := archer.Role
	if in.Role != nil {
		if viewer.Role != model.RoleAdmin {
			return nil, ErrAccessDenied
		}
		role = *in.Role
		fields["role"] = *in.Role
		// 管理员/记录员不参与排名，清空默认弓种
		if role != model.RoleArcher {
			fields["default_division_id"] = nil
		}
	}
	if in.DivisionID != nil {
		if role == model.RoleArcher {
			fields["default_division_id"] = *in.DivisionID
		} else {
			fields["default_division_id"] = nil
		}
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := s.archerRepo.Updates(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("更新射手失败: %w", err)
		}
	}
	return s.archerRepo.GetByID(ctx, id)
}

// Delete 删除射手（管理员）
func (s *ArcherService) Delete(ctx context.Context, id uint) error {
	if _, err := s.archerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询射手失败: %w", err)
	}
	if err := s.archerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除射手失败: %w", err)
	}
	return nil
}

// SubmitUpdateRequest 射手提交资料变更申请，等待审批后才写入档案
func (s *ArcherService) SubmitUpdateRequest(ctx context.Context, viewer Viewer, changes model.ProfileChanges) (*model.ArcherUpdateRequest, error) {
	if changes.PasswordHash != nil {
		// 申请里只存哈希，不落明文
		hash, err := hashPassword(*changes.PasswordHash)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}
	if changes.Empty() {
		return nil, NewValidationError("No changes provided")
	}
	if changes.DateOfBirth != nil {
		if _, err := time.Parse(dateLayout, *changes.DateOfBirth); err != nil {
			return nil, NewValidationError("Invalid date_of_birth, expected YYYY-MM-DD")
		}
	}

	raw, err := json.Marshal(&changes)
	if err != nil {
		return nil, fmt.Errorf("序列化变更内容失败: %w", err)
	}
	req := &model.ArcherUpdateRequest{
		ArcherID: viewer.ArcherID,
		Changes:  datatypes.JSON(raw),
		Status:   model.RequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("创建变更申请失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"archer_id":  viewer.ArcherID,
	}).Info("资料变更申请已提交")
	return s.requestRepo.GetByID(ctx, req.RequestID)
}

// ListPendingRequests 待审变更申请（记录员/管理员）
func (s *ArcherService) ListPendingRequests(ctx context.Context) ([]*model.ArcherUpdateRequest, error) {
	list, err := s.requestRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询变更申请失败: %w", err)
	}
	return list, nil
}

// MyRequests 射手本人的变更申请历史
func (s *ArcherService) MyRequests(ctx context.Context, viewer Viewer) ([]*model.ArcherUpdateRequest, error) {
	list, err := s.requestRepo.ListByArcher(ctx, viewer.ArcherID)
	if err != nil {
		return nil, fmt.Errorf("查询变更申请失败: %w", err)
	}
	return list, nil
}

// ApproveUpdateRequest 批准变更申请并把差量写入射手档案
func (s *ArcherService) ApproveUpdateRequest(ctx context.Context, viewer Viewer, requestID uint) (*model.ArcherUpdateRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询变更申请失败: %w", err)
	}
	if req.Status != model.RequestPending {
		return nil, NewStateError("Request has already been reviewed")
	}

	var changes model.ProfileChanges
	if err := json.Unmarshal(req.Changes, &changes); err != nil {
		return nil, fmt.Errorf("解析变更内容失败: %w", err)
	}

	archer, err := s.archerRepo.GetByID(ctx, req.ArcherID)
	if err != nil {
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}

	fields := map[string]interface{}{}
	if changes.FirstName != nil {
		fields["first_name"] = *changes.FirstName
	}
	if changes.LastName != nil {
		fields["last_name"] = *changes.LastName
	}
	if changes.Email != nil {
		fields["email"] = *changes.Email
	}
	gender := archer.Gender
	if changes.Gender != nil {
		gender = *changes.Gender
		fields["gender"] = *changes.Gender
	}
	if changes.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *changes.DateOfBirth)
		if err != nil {
			return nil, NewValidationError("Invalid date_of_birth, expected YYYY-MM-DD")
		}
		fields["date_of_birth"] = dob
		fields["class_id"] = s.resolveClassID(ctx, dob, gender)
	} else if changes.Gender != nil {
		fields["class_id"] = s.resolveClassID(ctx, archer.DateOfBirth, gender)
	}
	if changes.DivisionID != nil {
		fields["default_division_id"] = *changes.DivisionID
	}
	if changes.PasswordHash != nil {
		fields["password_hash"] = *changes.PasswordHash
	}

	if len(fields) > 0 {
		if err := s.archerRepo.Updates(ctx, req.ArcherID, fields); err != nil {
			return nil, fmt.Errorf("应用变更失败: %w", err)
		}
	}
	if err := s.requestRepo.MarkReviewed(ctx, requestID, model.RequestApproved, viewer.ArcherID, ""); err != nil {
		return nil, fmt.Errorf("更新申请状态失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"reviewed_by": viewer.ArcherID,
	}).Info("资料变更申请已批准")
	return s.requestRepo.GetByID(ctx, requestID)
}

// RejectUpdateRequest 拒绝变更申请，必须给出原因
func (s *ArcherService) RejectUpdateRequest(ctx context.Context, viewer Viewer, requestID uint, reason string) (*model.ArcherUpdateRequest, error) {
	if reason == "" {
		return nil, NewValidationError("Rejection reason is required")
	}
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询变更申请失败: %w", err)
	}
	if req.Status != model.RequestPending {
		return nil, NewStateError("Request has already been reviewed")
	}
	if err := s.requestRepo.MarkReviewed(ctx, requestID, model.RequestRejected, viewer.ArcherID, reason); err != nil {
		return nil, fmt.Errorf("更新申请状态失败: %w", err)
	}
	return s.requestRepo.GetByID(ctx, requestID)
}
