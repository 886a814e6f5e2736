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

// ChampionshipInput 锦标赛创建/更新
type ChampionshipInput struct {
	Name           string     `json:"name"`
	Year           int        `json:"year"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	CompetitionIDs []uint     `json:"competition_ids"`
}

// StandingsResult 锦标赛积分榜
type StandingsResult struct {
	Championship *model.ClubChampionship     `json:"championship"`
	Standings    map[string][]*StandingEntry `json:"standings"`
	Message      string                      `json:"message,omitempty"`
}

// WinnersResult 锦标赛获奖名单
type WinnersResult struct {
	Championship *model.ClubChampionship               `json:"championship"`
	Winners      map[string]map[string][]*WinnerEntry  `json:"winners"`
	Message      string                                `json:"message,omitempty"`
}

// ChampionshipService 年度锦标赛管理、积分榜与获奖名单
type ChampionshipService struct {
	champRepo repository.ChampionshipRepository
	compRepo  repository.CompetitionRepository
	logger    *logrus.Logger
}

func NewChampionshipService(
	champRepo repository.ChampionshipRepository,
	compRepo repository.CompetitionRepository,
	logger *logrus.Logger,
) *ChampionshipService {
	return &ChampionshipService{champRepo: champRepo, compRepo: compRepo, logger: logger}
}

func (s *ChampionshipService) List(ctx context.Context) ([]*model.ClubChampionship, error) {
	list, err := s.champRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询锦标赛列表失败: %w", err)
	}
	return list, nil
}

func (s *ChampionshipService) Get(ctx context.Context, id uint) (*model.ClubChampionship, error) {
	champ, err := s.champRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询锦标赛失败: %w", err)
	}
	return champ, nil
}

// Create 创建锦标赛，每年至多一个
func (s *ChampionshipService) Create(ctx context.Context, in ChampionshipInput) (*model.ClubChampionship, error) {
	if in.Name == "" {
		return nil, NewValidationError("Championship name is required")
	}
	if in.Year == 0 {
		return nil, NewValidationError("Championship year is required")
	}
	if _, err := s.champRepo.GetByYear(ctx, in.Year); err == nil {
		return nil, NewConflictError("Championship for this year already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询锦标赛失败: %w", err)
	}

	champ := &model.ClubChampionship{
		Name:      in.Name,
		Year:      in.Year,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if err := s.champRepo.Create(ctx, champ); err != nil {
		return nil, fmt.Errorf("创建锦标赛失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"championship_id": champ.ChampionshipID,
		"year":            champ.Year,
	}).Info("锦标赛已创建")
	return s.champRepo.GetByID(ctx, champ.ChampionshipID)
}

// Update 更新锦标赛，CompetitionIDs 非 nil 时整体替换挂载比赛
func (s *ChampionshipService) Update(ctx context.Context, id uint, in ChampionshipInput) (*model.ClubChampionship, error) {
	champ, err := s.champRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询锦标赛失败: %w", err)
	}

	fields := map[string]interface{}{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Year != 0 && in.Year != champ.Year {
		if _, err := s.champRepo.GetByYear(ctx, in.Year); err == nil {
			return nil, NewConflictError("Championship for this year already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询锦标赛失败: %w", err)
		}
		fields["year"] = in.Year
	}
	if in.StartDate != nil {
		fields["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		fields["end_date"] = *in.EndDate
	}
	if len(fields) > 0 {
		if err := s.champRepo.Updates(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("更新锦标赛失败: %w", err)
		}
	}

	if in.CompetitionIDs != nil {
		for _, comp := range champ.Competitions {
			if err := s.champRepo.UnlinkCompetition(ctx, id, comp.CompetitionID); err != nil {
				return nil, fmt.Errorf("解除比赛关联失败: %w", err)
			}
		}
		for _, compID := range in.CompetitionIDs {
			if err := s.champRepo.LinkCompetition(ctx, id, compID); err != nil {
				return nil, fmt.Errorf("挂载比赛失败: %w", err)
			}
		}
	}

	return s.champRepo.GetByID(ctx, id)
}

func (s *ChampionshipService) Delete(ctx context.Context, id uint) error {
	if _, err := s.champRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询锦标赛失败: %w", err)
	}
	if err := s.champRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除锦标赛失败: %w", err)
	}
	return nil
}

// AddCompetition 向锦标赛挂载比赛，重复挂载拒绝
func (s *ChampionshipService) AddCompetition(ctx context.Context, championshipID, competitionID uint) error {
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询锦标赛失败: %w", err)
	}
	if _, err := s.compRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询比赛失败: %w", err)
	}
	exists, err := s.champRepo.LinkExists(ctx, championshipID, competitionID)
	if err != nil {
		return fmt.Errorf("检查比赛关联失败: %w", err)
	}
	if exists {
		return NewConflictError("Competition already in championship")
	}
	if err := s.champRepo.LinkCompetition(ctx, championshipID, competitionID); err != nil {
		return fmt.Errorf("挂载比赛失败: %w", err)
	}
	return nil
}

// RemoveCompetition 从锦标赛移除比赛
func (s *ChampionshipService) RemoveCompetition(ctx context.Context, championshipID, competitionID uint) error {
	exists, err := s.champRepo.LinkExists(ctx, championshipID, competitionID)
	if err != nil {
		return fmt.Errorf("检查比赛关联失败: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.champRepo.UnlinkCompetition(ctx, championshipID, competitionID); err != nil {
		return fmt.Errorf("移除比赛失败: %w", err)
	}
	return nil
}

// Standings 积分榜：挂载比赛的已通过成绩按射手累加，分类别排名；无挂载比赛时返回空榜与提示
func (s *ChampionshipService) Standings(ctx context.Context, id uint) (*StandingsResult, error) {
	champ, err := s.champRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询锦标赛失败: %w", err)
	}

	competitionIDs := make([]uint, 0, len(champ.Competitions))
	for _, comp := range champ.Competitions {
		competitionIDs = append(competitionIDs, comp.CompetitionID)
	}

	if len(competitionIDs) == 0 {
		return &StandingsResult{
			Championship: champ,
			Standings:    map[string][]*StandingEntry{},
			Message:      "No competitions linked to this championship",
		}, nil
	}

	scores, err := s.champRepo.ListApprovedScores(ctx, competitionIDs)
	if err != nil {
		return nil, fmt.Errorf("查询锦标赛成绩失败: %w", err)
	}

	return &StandingsResult{
		Championship: champ,
		Standings:    BuildStandings(scores),
	}, nil
}

// Winners 获奖名单：组别 → 弓种 → 前三；无挂载比赛时返回空名单与提示
func (s *ChampionshipService) Winners(ctx context.Context, id uint) (*WinnersResult, error) {
	champ, err := s.champRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询锦标赛失败: %w", err)
	}

	competitionIDs := make([]uint, 0, len(champ.Competitions))
	for _, comp := range champ.Competitions {
		competitionIDs = append(competitionIDs, comp.CompetitionID)
	}

	if len(competitionIDs) == 0 {
		return &WinnersResult{
			Championship: champ,
			Winners:      map[string]map[string][]*WinnerEntry{},
			Message:      "No competitions linked to this championship",
		}, nil
	}

	scores, err := s.champRepo.ListApprovedScores(ctx, competitionIDs)
	if err != nil {
		return nil, fmt.Errorf("查询锦标赛成绩失败: %w", err)
	}

	return &WinnersResult{
		Championship: champ,
		Winners:      BuildWinners(scores),
	}, nil
}
