package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompetitionInput 比赛创建/更新
type CompetitionInput struct {
	Name        string     `json:"name"`
	RoundID     *uint      `json:"round_id"`
	Date        time.Time  `json:"date"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
}

// CompetitionDetail 比赛详情及其已通过成绩
type CompetitionDetail struct {
	Competition *model.Competition   `json:"competition"`
	Results     []*model.ScoreRecord `json:"results"`
}

// CompetitionService 比赛管理与榜单
type CompetitionService struct {
	compRepo repository.CompetitionRepository
	logger   *logrus.Logger
}

func NewCompetitionService(compRepo repository.CompetitionRepository, logger *logrus.Logger) *CompetitionService {
	return &CompetitionService{compRepo: compRepo, logger: logger}
}

func (s *CompetitionService) List(ctx context.Context, filter repository.CompetitionFilter) ([]*model.Competition, error) {
	list, err := s.compRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询比赛列表失败: %w", err)
	}
	return list, nil
}

// Get 比赛详情，附带全部已通过成绩
func (s *CompetitionService) Get(ctx context.Context, id uint) (*CompetitionDetail, error) {
	comp, err := s.compRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询比赛失败: %w", err)
	}
	results, err := s.compRepo.ListApprovedScores(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询比赛成绩失败: %w", err)
	}
	return &CompetitionDetail{Competition: comp, Results: results}, nil
}

// Create 创建比赛，起止日期缺省为比赛日
func (s *CompetitionService) Create(ctx context.Context, in CompetitionInput) (*model.Competition, error) {
	if in.Name == "" {
		return nil, NewValidationError("Competition name is required")
	}
	if in.Date.IsZero() {
		return nil, NewValidationError("Competition date is required")
	}

	comp := &model.Competition{
		Name:        in.Name,
		RoundID:     in.RoundID,
		Date:        in.Date,
		StartDate:   in.Date,
		EndDate:     in.Date,
		Location:    in.Location,
		Description: in.Description,
		Status:      model.CompetitionUpcoming,
	}
	if in.StartDate != nil {
		comp.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		comp.EndDate = *in.EndDate
	}
	if in.Status != "" {
		comp.Status = in.Status
	}

	if err := s.compRepo.Create(ctx, comp); err != nil {
		return nil, fmt.Errorf("创建比赛失败: %w", err)
	}

	s.logger.WithField("competition_id", comp.CompetitionID).Info("比赛已创建")
	return s.compRepo.GetByID(ctx, comp.CompetitionID)
}

// Update 更新比赛基本信息
func (s *CompetitionService) Update(ctx context.Context, id uint, in CompetitionInput) (*model.Competition, error) {
	if _, err := s.compRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询比赛失败: %w", err)
	}

	fields := map[string]interface{}{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.RoundID != nil {
		fields["round_id"] = *in.RoundID
	}
	if !in.Date.IsZero() {
		fields["date"] = in.Date
	}
	if in.StartDate != nil {
		fields["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		fields["end_date"] = *in.EndDate
	}
	if in.Location != "" {
		fields["location"] = in.Location
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Status != "" {
		fields["status"] = in.Status
	}

	if len(fields) > 0 {
		if err := s.compRepo.Updates(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("更新比赛失败: %w", err)
		}
	}
	return s.compRepo.GetByID(ctx, id)
}

// Delete 删除比赛，已有成绩引用时拒绝
func (s *CompetitionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.compRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询比赛失败: %w", err)
	}
	count, err := s.compRepo.CountScores(ctx, id)
	if err != nil {
		return fmt.Errorf("检查比赛引用失败: %w", err)
	}
	if count > 0 {
		return NewValidationError("Competition has scores and cannot be deleted")
	}
	if err := s.compRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除比赛失败: %w", err)
	}
	return nil
}

// Leaderboard 比赛榜单，按 组别 - 弓种 分组，组内按成绩降序
func (s *CompetitionService) Leaderboard(ctx context.Context, id uint) (map[string][]*LeaderboardEntry, error) {
	if _, err := s.compRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询比赛失败: %w", err)
	}
	scores, err := s.compRepo.ListApprovedScores(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询比赛成绩失败: %w", err)
	}
	return BuildLeaderboard(scores), nil
}
