package repository

import (
	"context"
	"time"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// ArcherFilter 射手列表筛选条件
type ArcherFilter struct {
	Search     string // 姓名/邮箱模糊匹配
	Role       string // 角色过滤
	ClassID    uint   // 组别过滤
	DivisionID uint   // 默认弓种过滤
}

// ArcherRepository 射手账号持久化
type ArcherRepository interface {
	Create(ctx context.Context, archer *model.Archer) error
	// GetByID 带组别与默认弓种预加载
	GetByID(ctx context.Context, id uint) (*model.Archer, error)
	GetByEmail(ctx context.Context, email string) (*model.Archer, error)
	List(ctx context.Context, filter ArcherFilter) ([]*model.Archer, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// UpdateRequestRepository 资料变更申请持久化
type UpdateRequestRepository interface {
	Create(ctx context.Context, req *model.ArcherUpdateRequest) error
	GetByID(ctx context.Context, id uint) (*model.ArcherUpdateRequest, error)
	ListPending(ctx context.Context) ([]*model.ArcherUpdateRequest, error)
	ListByArcher(ctx context.Context, archerID uint) ([]*model.ArcherUpdateRequest, error)
	// MarkReviewed 写入审批结论（状态、审批人、时间、拒绝原因）
	MarkReviewed(ctx context.Context, id uint, status model.RequestStatus, reviewerID uint, reason string) error
}

type archerRepository struct {
	db *gorm.DB
}

// NewArcherRepository 创建射手仓储
func NewArcherRepository(db *gorm.DB) ArcherRepository {
	return &archerRepository{db: db}
}

type updateRequestRepository struct {
	db *gorm.DB
}

// NewUpdateRequestRepository 创建资料变更申请仓储
func NewUpdateRequestRepository(db *gorm.DB) UpdateRequestRepository {
	return &updateRequestRepository{db: db}
}

func (r *archerRepository) Create(ctx context.Context, archer *model.Archer) error {
	return r.db.WithContext(ctx).Create(archer).Error
}

func (r *archerRepository) GetByID(ctx context.Context, id uint) (*model.Archer, error) {
	var a model.Archer
	if err := r.db.WithContext(ctx).
		Preload("Class").Preload("DefaultDivision").
		First(&a, "archer_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *archerRepository) GetByEmail(ctx context.Context, email string) (*model.Archer, error) {
	var a model.Archer
	if err := r.db.WithContext(ctx).
		Preload("Class").Preload("DefaultDivision").
		First(&a, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *archerRepository) List(ctx context.Context, filter ArcherFilter) ([]*model.Archer, error) {
	db := r.db.WithContext(ctx).Model(&model.Archer{}).
		Preload("Class").Preload("DefaultDivision")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.ClassID != 0 {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.DivisionID != 0 {
		db = db.Where("default_division_id = ?", filter.DivisionID)
	}
	var list []*model.Archer
	if err := db.Order("last_name ASC, first_name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *archerRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.Archer{}).
		Where("archer_id = ?", id).
		Updates(fields).Error
}

func (r *archerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Archer{}, "archer_id = ?", id).Error
}

func (r *updateRequestRepository) Create(ctx context.Context, req *model.ArcherUpdateRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *updateRequestRepository) GetByID(ctx context.Context, id uint) (*model.ArcherUpdateRequest, error) {
	var req model.ArcherUpdateRequest
	if err := r.db.WithContext(ctx).Preload("Archer").
		First(&req, "request_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *updateRequestRepository) ListPending(ctx context.Context) ([]*model.ArcherUpdateRequest, error) {
	var list []*model.ArcherUpdateRequest
	if err := r.db.WithContext(ctx).Preload("Archer").
		Where("status = ?", model.RequestPending).
		Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *updateRequestRepository) ListByArcher(ctx context.Context, archerID uint) ([]*model.ArcherUpdateRequest, error) {
	var list []*model.ArcherUpdateRequest
	if err := r.db.WithContext(ctx).
		Where("archer_id = ?", archerID).
		Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *updateRequestRepository) MarkReviewed(ctx context.Context, id uint, status model.RequestStatus, reviewerID uint, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ArcherUpdateRequest{}).
		Where("request_id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewed_by":      reviewerID,
			"reviewed_at":      now,
			"rejection_reason": reason,
		}).Error
}
