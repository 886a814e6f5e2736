package repository

import (
	"context"
	"time"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// RoundRepository 轮定义持久化，距离段随轮整体读写
type RoundRepository interface {
	Create(ctx context.Context, round *model.Round) error
	GetByID(ctx context.Context, id uint) (*model.Round, error)
	GetByName(ctx context.Context, name string) (*model.Round, error)
	List(ctx context.Context, search string) ([]*model.Round, error)
	// UpdateWithRanges 覆盖式更新：距离段先删后建（同一事务）
	UpdateWithRanges(ctx context.Context, round *model.Round) error
	Delete(ctx context.Context, id uint) error
	// CountScores 引用该轮的成绩数，删除前校验用
	CountScores(ctx context.Context, roundID uint) (int64, error)
}

// EquivalentFilter 等效轮列表筛选条件
type EquivalentFilter struct {
	BaseRoundID uint
	CategoryID  uint
	CategoryIDs []uint
	// ActiveOn 非零时仅返回该日期落在生效窗口内的规则
	ActiveOn time.Time
}

// EquivalentRoundRepository 等效轮规则持久化
type EquivalentRoundRepository interface {
	Create(ctx context.Context, eq *model.EquivalentRound) error
	GetByID(ctx context.Context, id uint) (*model.EquivalentRound, error)
	List(ctx context.Context, filter EquivalentFilter) ([]*model.EquivalentRound, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type roundRepository struct {
	db *gorm.DB
}

// NewRoundRepository 创建轮定义仓储
func NewRoundRepository(db *gorm.DB) RoundRepository {
	return &roundRepository{db: db}
}

func (r *roundRepository) Create(ctx context.Context, round *model.Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *roundRepository) GetByID(ctx context.Context, id uint) (*model.Round, error) {
	var round model.Round
	if err := r.db.WithContext(ctx).
		Preload("Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		First(&round, "round_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepository) GetByName(ctx context.Context, name string) (*model.Round, error) {
	var round model.Round
	if err := r.db.WithContext(ctx).
		Preload("Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		First(&round, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepository) List(ctx context.Context, search string) ([]*model.Round, error) {
	db := r.db.WithContext(ctx).Model(&model.Round{}).
		Preload("Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		})
	if search != "" {
		db = db.Where("name ILIKE ?", "%"+search+"%")
	}
	var list []*model.Round
	if err := db.Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *roundRepository) UpdateWithRanges(ctx context.Context, round *model.Round) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := tx.Model(&model.Round{}).
		Where("round_id = ?", round.RoundID).
		Updates(map[string]interface{}{
			"name":        round.Name,
			"description": round.Description,
			"equipment":   round.Equipment,
		}).Error; err != nil {
		tx.Rollback()
		return err
	}

	// 距离段先删后建，保持 range_no 唯一
	if err := tx.Where("round_id = ?", round.RoundID).Delete(&model.RoundRange{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for i := range round.Ranges {
		round.Ranges[i].RoundRangeID = 0
		round.Ranges[i].RoundID = round.RoundID
	}
	if len(round.Ranges) > 0 {
		if err := tx.Create(&round.Ranges).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (r *roundRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Round{}, "round_id = ?", id).Error
}

func (r *roundRepository) CountScores(ctx context.Context, roundID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ScoreRecord{}).
		Where("round_id = ?", roundID).Count(&count).Error
	return count, err
}

type equivalentRoundRepository struct {
	db *gorm.DB
}

// NewEquivalentRoundRepository 创建等效轮规则仓储
func NewEquivalentRoundRepository(db *gorm.DB) EquivalentRoundRepository {
	return &equivalentRoundRepository{db: db}
}

func (r *equivalentRoundRepository) Create(ctx context.Context, eq *model.EquivalentRound) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *equivalentRoundRepository) GetByID(ctx context.Context, id uint) (*model.EquivalentRound, error) {
	var eq model.EquivalentRound
	if err := r.db.WithContext(ctx).
		Preload("BaseRound").Preload("Equivalent").
		Preload("Category").Preload("Category.Class").Preload("Category.Division").
		First(&eq, "equivalent_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equivalentRoundRepository) List(ctx context.Context, filter EquivalentFilter) ([]*model.EquivalentRound, error) {
	db := r.db.WithContext(ctx).Model(&model.EquivalentRound{}).
		Preload("BaseRound").Preload("BaseRound.Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		Preload("Equivalent").Preload("Equivalent.Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		Preload("Category").Preload("Category.Class").Preload("Category.Division")
	if filter.BaseRoundID != 0 {
		db = db.Where("base_round_id = ?", filter.BaseRoundID)
	}
	if filter.CategoryID != 0 {
		db = db.Where("category_id = ?", filter.CategoryID)
	}
	if len(filter.CategoryIDs) > 0 {
		db = db.Where("category_id IN ?", filter.CategoryIDs)
	}
	if !filter.ActiveOn.IsZero() {
		db = db.Where("start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
			filter.ActiveOn, filter.ActiveOn)
	}
	var list []*model.EquivalentRound
	if err := db.Order("equivalent_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *equivalentRoundRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.EquivalentRound{}).
		Where("equivalent_id = ?", id).
		Updates(fields).Error
}

func (r *equivalentRoundRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EquivalentRound{}, "equivalent_id = ?", id).Error
}
