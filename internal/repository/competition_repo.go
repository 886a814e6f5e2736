package repository

import (
	"context"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// CompetitionFilter 比赛列表筛选条件
type CompetitionFilter struct {
	Search string
	Status string
	Year   int
	Limit  int
	Offset int
}

// CompetitionRepository 比赛持久化
type CompetitionRepository interface {
	Create(ctx context.Context, comp *model.Competition) error
	GetByID(ctx context.Context, id uint) (*model.Competition, error)
	List(ctx context.Context, filter CompetitionFilter) ([]*model.Competition, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	// ListApprovedScores 比赛榜单数据源：已通过成绩，带射手/组别/弓种
	ListApprovedScores(ctx context.Context, competitionID uint) ([]*model.ScoreRecord, error)
	// CountScores 引用该比赛的成绩数，删除前校验用
	CountScores(ctx context.Context, competitionID uint) (int64, error)
}

type competitionRepository struct {
	db *gorm.DB
}

// NewCompetitionRepository 创建比赛仓储
func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

func (r *competitionRepository) Create(ctx context.Context, comp *model.Competition) error {
	return r.db.WithContext(ctx).Create(comp).Error
}

func (r *competitionRepository) GetByID(ctx context.Context, id uint) (*model.Competition, error) {
	var comp model.Competition
	if err := r.db.WithContext(ctx).
		Preload("Round").Preload("Round.Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		First(&comp, "competition_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *competitionRepository) List(ctx context.Context, filter CompetitionFilter) ([]*model.Competition, error) {
	db := r.db.WithContext(ctx).Model(&model.Competition{}).Preload("Round")
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Year != 0 {
		db = db.Where("EXTRACT(YEAR FROM date) = ?", filter.Year)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}
	var list []*model.Competition
	if err := db.Order("date DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *competitionRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Competition{}).
		Where("competition_id = ?", id).
		Updates(fields).Error
}

func (r *competitionRepository) Delete(ctx context.Context, id uint) error {
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

	// 解除锦标赛关联后再删比赛
	if err := tx.Where("competition_id = ?", id).
		Delete(&model.ChampionshipCompetition{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Competition{}, "competition_id = ?", id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *competitionRepository) ListApprovedScores(ctx context.Context, competitionID uint) ([]*model.ScoreRecord, error) {
	var list []*model.ScoreRecord
	if err := r.db.WithContext(ctx).
		Preload("Archer").Preload("Archer.Class").
		Preload("Round").Preload("Division").
		Where("competition_id = ? AND status = ?", competitionID, model.ScoreApproved).
		Order("total_score DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *competitionRepository) CountScores(ctx context.Context, competitionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ScoreRecord{}).
		Where("competition_id = ?", competitionID).Count(&count).Error
	return count, err
}
