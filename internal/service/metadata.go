package service

import (
	"context"
	"errors"
	"fmt"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"gorm.io/gorm"
)

// MetadataService 组别/弓种/类别查询与类别维护
type MetadataService struct {
	metadataRepo repository.MetadataRepository
}

func NewMetadataService(metadataRepo repository.MetadataRepository) *MetadataService {
	return &MetadataService{metadataRepo: metadataRepo}
}

func (s *MetadataService) Classes(ctx context.Context) ([]*model.Class, error) {
	list, err := s.metadataRepo.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询组别失败: %w", err)
	}
	return list, nil
}

func (s *MetadataService) Divisions(ctx context.Context) ([]*model.Division, error) {
	list, err := s.metadataRepo.ListDivisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询弓种失败: %w", err)
	}
	return list, nil
}

func (s *MetadataService) Categories(ctx context.Context) ([]*model.Category, error) {
	list, err := s.metadataRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}
	return list, nil
}

// CreateCategory 创建类别（管理员），组别×弓种组合唯一
func (s *MetadataService) CreateCategory(ctx context.Context, classID, divisionID uint, name string) (*model.Category, error) {
	cls, err := s.metadataRepo.GetClassByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Class not found")
		}
		return nil, fmt.Errorf("查询组别失败: %w", err)
	}
	div, err := s.metadataRepo.GetDivisionByID(ctx, divisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Division not found")
		}
		return nil, fmt.Errorf("查询弓种失败: %w", err)
	}
	if _, err := s.metadataRepo.GetCategory(ctx, classID, divisionID); err == nil {
		return nil, NewConflictError("Category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}

	if name == "" {
		name = fmt.Sprintf("%s - %s", cls.Name, div.Name)
	}
	category := &model.Category{
		ClassID:    classID,
		DivisionID: divisionID,
		Name:       name,
	}
	if err := s.metadataRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("创建类别失败: %w", err)
	}
	return category, nil
}
