package repository

import (
	"context"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// MetadataRepository 组别/弓种/类别等基础数据查询
type MetadataRepository interface {
	ListClasses(ctx context.Context) ([]*model.Class, error)
	GetClassByID(ctx context.Context, id uint) (*model.Class, error)
	GetClassByName(ctx context.Context, name string) (*model.Class, error)
	ListDivisions(ctx context.Context) ([]*model.Division, error)
	GetDivisionByID(ctx context.Context, id uint) (*model.Division, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	// GetCategory 按组别+弓种定位类别（等效轮按类别挂载）
	GetCategory(ctx context.Context, classID, divisionID uint) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
}

type metadataRepository struct {
	db *gorm.DB
}

// NewMetadataRepository 创建基础数据仓储
func NewMetadataRepository(db *gorm.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) ListClasses(ctx context.Context) ([]*model.Class, error) {
	var list []*model.Class
	if err := r.db.WithContext(ctx).Order("class_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *metadataRepository) GetClassByID(ctx context.Context, id uint) (*model.Class, error) {
	var c model.Class
	if err := r.db.WithContext(ctx).First(&c, "class_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *metadataRepository) GetClassByName(ctx context.Context, name string) (*model.Class, error) {
	var c model.Class
	if err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *metadataRepository) ListDivisions(ctx context.Context) ([]*model.Division, error) {
	var list []*model.Division
	if err := r.db.WithContext(ctx).Order("division_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *metadataRepository) GetDivisionByID(ctx context.Context, id uint) (*model.Division, error) {
	var d model.Division
	if err := r.db.WithContext(ctx).First(&d, "division_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *metadataRepository) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var list []*model.Category
	if err := r.db.WithContext(ctx).
		Preload("Class").Preload("Division").
		Order("category_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *metadataRepository) GetCategory(ctx context.Context, classID, divisionID uint) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).
		First(&c, "class_id = ? AND division_id = ?", classID, divisionID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *metadataRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}
