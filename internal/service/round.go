package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RangeInput 距离段定义
type RangeInput struct {
	RangeNo      int               `json:"range_no"`
	Distance     int               `json:"distance"`
	Ends         int               `json:"ends"`
	TargetFace   string            `json:"target_face"`
	ScoringType  model.ScoringType `json:"scoring_type"`
	ArrowsPerEnd int               `json:"arrows_per_end"`
}

// RoundInput 轮定义创建/更新
type RoundInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Equipment   string       `json:"equipment"`
	Ranges      []RangeInput `json:"ranges"`
}

// EquivalentInput 等效轮规则创建/更新
type EquivalentInput struct {
	BaseRoundID       uint       `json:"base_round_id"`
	EquivalentRoundID uint       `json:"equivalent_round_id"`
	CategoryID        uint       `json:"category_id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
}

// EligibleRound 某基准轮及其当前生效的等效轮
type EligibleRound struct {
	BaseRound        *model.Round   `json:"base_round"`
	EquivalentRounds []*model.Round `json:"equivalent_rounds"`
	Categories       []string       `json:"categories"`
}

// EligibleRoundsResult 射手可射轮查询结果
type EligibleRoundsResult struct {
	ArcherName     string           `json:"archer_name"`
	ClassName      string           `json:"class_name"`
	DivisionName   string           `json:"division_name"`
	EligibleRounds []*EligibleRound `json:"eligible_rounds"`
	Message        string           `json:"message,omitempty"`
}

// RoundService 轮定义与等效轮规则管理
type RoundService struct {
	roundRepo    repository.RoundRepository
	eqRepo       repository.EquivalentRoundRepository
	archerRepo   repository.ArcherRepository
	metadataRepo repository.MetadataRepository
	logger       *logrus.Logger
}

func NewRoundService(
	roundRepo repository.RoundRepository,
	eqRepo repository.EquivalentRoundRepository,
	archerRepo repository.ArcherRepository,
	metadataRepo repository.MetadataRepository,
	logger *logrus.Logger,
) *RoundService {
	return &RoundService{
		roundRepo:    roundRepo,
		eqRepo:       eqRepo,
		archerRepo:   archerRepo,
		metadataRepo: metadataRepo,
		logger:       logger,
	}
}

// validateRanges 段定义合法性：序号连续、局数与箭数在限内
func validateRanges(ranges []RangeInput) []string {
	var problems []string
	for i, rg := range ranges {
		no := i + 1
		if rg.RangeNo != 0 && rg.RangeNo != no {
			problems = append(problems, fmt.Sprintf("Range %d: range_no must be %d", no, no))
		}
		if rg.Distance <= 0 {
			problems = append(problems, fmt.Sprintf("Range %d: distance is required", no))
		}
		if rg.Ends < 1 || rg.Ends > 50 {
			problems = append(problems, fmt.Sprintf("Range %d: ends must be between 1 and 50", no))
		}
		if rg.ArrowsPerEnd != 0 && (rg.ArrowsPerEnd < 1 || rg.ArrowsPerEnd > 12) {
			problems = append(problems, fmt.Sprintf("Range %d: arrows_per_end must be between 1 and 12", no))
		}
	}
	return problems
}

func buildRanges(ranges []RangeInput) []model.RoundRange {
	built := make([]model.RoundRange, 0, len(ranges))
	for i, rg := range ranges {
		target := rg.TargetFace
		if target == "" {
			target = "122cm"
		}
		scoring := rg.ScoringType
		if scoring == "" {
			scoring = model.ScoringTenZone
		}
		arrows := rg.ArrowsPerEnd
		if arrows == 0 {
			arrows = 6
		}
		built = append(built, model.RoundRange{
			RangeNo:      i + 1,
			Distance:     rg.Distance,
			Ends:         rg.Ends,
			TargetFace:   target,
			ScoringType:  scoring,
			ArrowsPerEnd: arrows,
		})
	}
	return built
}

// List 轮列表，支持名称模糊搜索
func (s *RoundService) List(ctx context.Context, search string) ([]*model.Round, error) {
	rounds, err := s.roundRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("查询轮列表失败: %w", err)
	}
	return rounds, nil
}

// Get 轮详情（含距离段）
func (s *RoundService) Get(ctx context.Context, id uint) (*model.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询轮定义失败: %w", err)
	}
	return round, nil
}

// Create 创建轮，名称全局唯一
func (s *RoundService) Create(ctx context.Context, in RoundInput) (*model.Round, error) {
	if in.Name == "" {
		return nil, NewValidationError("Round name is required")
	}
	if _, err := s.roundRepo.GetByName(ctx, in.Name); err == nil {
		return nil, NewConflictError("Round name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询轮定义失败: %w", err)
	}
	if problems := validateRanges(in.Ranges); len(problems) > 0 {
		return nil, NewValidationError("Invalid round definition", problems...)
	}

	round := &model.Round{
		Name:        in.Name,
		Description: in.Description,
		Equipment:   in.Equipment,
		Ranges:      buildRanges(in.Ranges),
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("创建轮失败: %w", err)
	}

	s.logger.WithField("round_id", round.RoundID).Info("轮定义已创建")
	return s.roundRepo.GetByID(ctx, round.RoundID)
}

// Update 更新轮，距离段整体替换
func (s *RoundService) Update(ctx context.Context, id uint, in RoundInput) (*model.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询轮定义失败: %w", err)
	}

	if in.Name != "" && in.Name != round.Name {
		if _, err := s.roundRepo.GetByName(ctx, in.Name); err == nil {
			return nil, NewConflictError("Round name already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询轮定义失败: %w", err)
		}
		round.Name = in.Name
	}
	round.Description = in.Description
	round.Equipment = in.Equipment

	if in.Ranges != nil {
		if problems := validateRanges(in.Ranges); len(problems) > 0 {
			return nil, NewValidationError("Invalid round definition", problems...)
		}
		round.Ranges = buildRanges(in.Ranges)
	}

	if err := s.roundRepo.UpdateWithRanges(ctx, round); err != nil {
		return nil, fmt.Errorf("更新轮失败: %w", err)
	}
	return s.roundRepo.GetByID(ctx, id)
}

// Delete 删除轮，已有成绩引用时拒绝
func (s *RoundService) Delete(ctx context.Context, id uint) error {
	if _, err := s.roundRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询轮定义失败: %w", err)
	}
	count, err := s.roundRepo.CountScores(ctx, id)
	if err != nil {
		return fmt.Errorf("检查轮引用失败: %w", err)
	}
	if count > 0 {
		return NewValidationError("Round has scores and cannot be deleted")
	}
	if err := s.roundRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除轮失败: %w", err)
	}
	return nil
}

// ListEquivalents 等效轮规则列表
func (s *RoundService) ListEquivalents(ctx context.Context, filter repository.EquivalentFilter) ([]*model.EquivalentRound, error) {
	list, err := s.eqRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询等效轮规则失败: %w", err)
	}
	return list, nil
}

// EquivalentsFor 某基准轮在某类别、某日期下生效的等效轮规则
func (s *RoundService) EquivalentsFor(ctx context.Context, baseRoundID, categoryID uint, date time.Time) ([]*model.EquivalentRound, error) {
	list, err := s.eqRepo.List(ctx, repository.EquivalentFilter{
		BaseRoundID: baseRoundID,
		CategoryID:  categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("查询等效轮规则失败: %w", err)
	}
	valid := make([]*model.EquivalentRound, 0, len(list))
	for _, eq := range list {
		if utils.IsDateInRange(date, eq.StartDate, eq.EndDate) {
			valid = append(valid, eq)
		}
	}
	return valid, nil
}

// CreateEquivalent 创建等效轮规则，基准轮与等效轮不可相同
func (s *RoundService) CreateEquivalent(ctx context.Context, in EquivalentInput) (*model.EquivalentRound, error) {
	if in.BaseRoundID == in.EquivalentRoundID {
		return nil, NewValidationError("Base and equivalent rounds cannot be the same")
	}
	eq := &model.EquivalentRound{
		BaseRoundID:       in.BaseRoundID,
		EquivalentRoundID: in.EquivalentRoundID,
		CategoryID:        in.CategoryID,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
	}
	if err := s.eqRepo.Create(ctx, eq); err != nil {
		return nil, fmt.Errorf("创建等效轮规则失败: %w", err)
	}
	return s.eqRepo.GetByID(ctx, eq.EquivalentID)
}

// UpdateEquivalent 更新等效轮规则
func (s *RoundService) UpdateEquivalent(ctx context.Context, id uint, in EquivalentInput) (*model.EquivalentRound, error) {
	if _, err := s.eqRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询等效轮规则失败: %w", err)
	}
	if in.BaseRoundID == in.EquivalentRoundID {
		return nil, NewValidationError("Base and equivalent rounds cannot be the same")
	}
	if err := s.eqRepo.Updates(ctx, id, map[string]interface{}{
		"base_round_id":       in.BaseRoundID,
		"equivalent_round_id": in.EquivalentRoundID,
		"category_id":         in.CategoryID,
		"start_date":          in.StartDate,
		"end_date":            in.EndDate,
	}); err != nil {
		return nil, fmt.Errorf("更新等效轮规则失败: %w", err)
	}
	return s.eqRepo.GetByID(ctx, id)
}

// DeleteEquivalent 删除等效轮规则
func (s *RoundService) DeleteEquivalent(ctx context.Context, id uint) error {
	if _, err := s.eqRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询等效轮规则失败: %w", err)
	}
	if err := s.eqRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除等效轮规则失败: %w", err)
	}
	return nil
}

// EligibleRounds 射手当前可射的轮：其 组别×弓种 类别下今日生效的等效轮规则，按基准轮分组
func (s *RoundService) EligibleRounds(ctx context.Context, archerID uint) (*EligibleRoundsResult, error) {
	archer, err := s.archerRepo.GetByID(ctx, archerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询射手失败: %w", err)
	}

	if archer.ClassID == nil {
		return nil, NewValidationError("Archer does not have a class assigned",
			"Please contact an administrator to assign a class to your profile")
	}

	result := &EligibleRoundsResult{
		ArcherName:   archer.FullName(),
		ClassName:    "N/A",
		DivisionName: "N/A",
	}
	if archer.Class != nil {
		result.ClassName = archer.Class.Name
	}
	if archer.DefaultDivision != nil {
		result.DivisionName = archer.DefaultDivision.Name
	}

	if archer.DefaultDivisionID == nil {
		result.EligibleRounds = []*EligibleRound{}
		result.Message = "No categories found for your class"
		return result, nil
	}

	category, err := s.metadataRepo.GetCategory(ctx, *archer.ClassID, *archer.DefaultDivisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.EligibleRounds = []*EligibleRound{}
			result.Message = "No categories found for your class"
			return result, nil
		}
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}

	today := utils.TruncateToDate(time.Now())
	equivalents, err := s.eqRepo.List(ctx, repository.EquivalentFilter{
		CategoryIDs: []uint{category.CategoryID},
		ActiveOn:    today,
	})
	if err != nil {
		return nil, fmt.Errorf("查询等效轮规则失败: %w", err)
	}

	// 按基准轮分组
	byBase := make(map[uint]*EligibleRound)
	order := make([]uint, 0)
	for _, eq := range equivalents {
		group, ok := byBase[eq.BaseRoundID]
		if !ok {
			group = &EligibleRound{BaseRound: eq.BaseRound}
			byBase[eq.BaseRoundID] = group
			order = append(order, eq.BaseRoundID)
		}
		group.EquivalentRounds = append(group.EquivalentRounds, eq.Equivalent)
		if eq.Category != nil {
			seen := false
			for _, name := range group.Categories {
				if name == eq.Category.Name {
					seen = true
					break
				}
			}
			if !seen {
				group.Categories = append(group.Categories, eq.Category.Name)
			}
		}
	}

	result.EligibleRounds = make([]*EligibleRound, 0, len(order))
	for _, baseID := range order {
		result.EligibleRounds = append(result.EligibleRounds, byBase[baseID])
	}
	return result, nil
}
