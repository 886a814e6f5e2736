package repository

import (
	"context"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// ChampionshipRepository 年度锦标赛持久化与比赛挂载
type ChampionshipRepository interface {
	Create(ctx context.Context, champ *model.ClubChampionship) error
	GetByID(ctx context.Context, id uint) (*model.ClubChampionship, error)
	GetByYear(ctx context.Context, year int) (*model.ClubChampionship, error)
	List(ctx context.Context) ([]*model.ClubChampionship, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	LinkCompetition(ctx context.Context, championshipID, competitionID uint) error
	UnlinkCompetition(ctx context.Context, championshipID, competitionID uint) error
	LinkExists(ctx context.Context, championshipID, competitionID uint) (bool, error)
	// ListApprovedScores 锦标赛积分数据源：挂载比赛下全部已通过成绩
	ListApprovedScores(ctx context.Context, competitionIDs []uint) ([]*model.ScoreRecord, error)
}

type championshipRepository struct {
	db *gorm.DB
}

// NewChampionshipRepository 创建锦标赛仓储
func NewChampionshipRepository(db *gorm.DB) ChampionshipRepository {
	return &championshipRepository{db: db}
}

func (r *championshipRepository) Create(ctx context.Context, champ *model.ClubChampionship) error {
	return r.db.WithContext(ctx).Create(champ).Error
}

func (r *championshipRepository) GetByID(ctx context.Context, id uint) (*model.ClubChampionship, error) {
	var champ model.ClubChampionship
	if err := r.db.WithContext(ctx).
		Preload("Competitions").Preload("Competitions.Round").
		First(&champ, "championship_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &champ, nil
}

func (r *championshipRepository) GetByYear(ctx context.Context, year int) (*model.ClubChampionship, error) {
	var champ model.ClubChampionship
	if err := r.db.WithContext(ctx).
		Preload("Competitions").Preload("Competitions.Round").
		First(&champ, "year = ?", year).Error; err != nil {
		return nil, err
	}
	return &champ, nil
}

func (r *championshipRepository) List(ctx context.Context) ([]*model.ClubChampionship, error) {
	var list []*model.ClubChampionship
	if err := r.db.WithContext(ctx).
		Preload("Competitions").
		Order("year DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *championshipRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ClubChampionship{}).
		Where("championship_id = ?", id).
		Updates(fields).Error
}

func (r *championshipRepository) Delete(ctx context.Context, id uint) error {
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

	if err := tx.Where("championship_id = ?", id).
		Delete(&model.ChampionshipCompetition{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.ClubChampionship{}, "championship_id = ?", id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *championshipRepository) LinkCompetition(ctx context.Context, championshipID, competitionID uint) error {
	link := model.ChampionshipCompetition{
		ChampionshipID: championshipID,
		CompetitionID:  competitionID,
	}
	return r.db.WithContext(ctx).Create(&link).Error
}

func (r *championshipRepository) UnlinkCompetition(ctx context.Context, championshipID, competitionID uint) error {
	return r.db.WithContext(ctx).
		Where("championship_id = ? AND competition_id = ?", championshipID, competitionID).
		Delete(&model.ChampionshipCompetition{}).Error
}

func (r *championshipRepository) LinkExists(ctx context.Context, championshipID, competitionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChampionshipCompetition{}).
		Where("championship_id = ? AND competition_id = ?", championshipID, competitionID).
		Count(&count).Error
	return count > 0, err
}

func (r *championshipRepository) ListApprovedScores(ctx context.Context, competitionIDs []uint) ([]*model.ScoreRecord, error) {
	if len(competitionIDs) == 0 {
		return nil, nil
	}
	var list []*model.ScoreRecord
	if err := r.db.WithContext(ctx).
		Preload("Archer").Preload("Archer.Class").
		Preload("Division").Preload("Competition").
		Where("competition_id IN ? AND status = ?", competitionIDs, model.ScoreApproved).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
