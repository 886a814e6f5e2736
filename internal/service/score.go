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

// Viewer 当前请求的操作者身份，由认证中间件解析
type Viewer struct {
	ArcherID uint
	Role     model.Role
}

// IsReviewer 是否具备审批权限（记录员或管理员）
func (v Viewer) IsReviewer() bool {
	return v.Role.IsReviewer()
}

// CreateScoreInput 提交成绩
type CreateScoreInput struct {
	RoundID       uint
	DivisionID    uint
	CompetitionID *uint
	EquipmentUsed string
	DateShot      time.Time
	Ends          []EndInput
	Notes         string
}

// UpdateScoreInput 修改暂存成绩，Ends 为 nil 表示不改箭分
type UpdateScoreInput struct {
	DateShot *time.Time
	Ends     []EndInput
	Notes    *string
}

// ScoreService 成绩全生命周期：提交、修改、审批、状态流转
type ScoreService struct {
	scoreRepo repository.ScoreRepository
	roundRepo repository.RoundRepository
	logger    *logrus.Logger
}

func NewScoreService(scoreRepo repository.ScoreRepository, roundRepo repository.RoundRepository, logger *logrus.Logger) *ScoreService {
	return &ScoreService{
		scoreRepo: scoreRepo,
		roundRepo: roundRepo,
		logger:    logger,
	}
}

// List 按条件查询成绩，普通射手仅可见已通过成绩与自己的成绩
func (s *ScoreService) List(ctx context.Context, viewer Viewer, filter repository.ScoreFilter) ([]*model.ScoreRecord, error) {
	if !viewer.IsReviewer() {
		filter.ViewerRestricted = true
		filter.ViewerID = viewer.ArcherID
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	records, err := s.scoreRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询成绩列表失败: %w", err)
	}
	return records, nil
}

// Get 成绩详情（含局与箭），普通射手仅可见已通过成绩与自己的成绩
func (s *ScoreService) Get(ctx context.Context, viewer Viewer, id uint) (*model.ScoreRecord, error) {
	record, err := s.scoreRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}
	if !viewer.IsReviewer() && record.ArcherID != viewer.ArcherID && record.Status != model.ScoreApproved {
		return nil, ErrAccessDenied
	}
	return record, nil
}

// Create 提交新成绩，校验结构后以 staged 状态暂存
func (s *ScoreService) Create(ctx context.Context, viewer Viewer, in CreateScoreInput) (*model.ScoreRecord, error) {
	round, err := s.roundRepo.GetByID(ctx, in.RoundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Round not found")
		}
		return nil, fmt.Errorf("查询轮定义失败: %w", err)
	}

	if problems := ValidateEnds(round, in.Ends); len(problems) > 0 {
		return nil, NewValidationError("Invalid score structure", problems...)
	}

	ends, totalScore, totalHits := BuildEnds(in.Ends)
	record := &model.ScoreRecord{
		ArcherID:      viewer.ArcherID,
		RoundID:       in.RoundID,
		DivisionID:    in.DivisionID,
		CompetitionID: in.CompetitionID,
		EquipmentUsed: in.EquipmentUsed,
		DateShot:      in.DateShot,
		Status:        model.ScoreStaged,
		TotalScore:    totalScore,
		TotalHits:     totalHits,
		Notes:         in.Notes,
		Ends:          ends,
	}

	if err := s.scoreRepo.CreateWithEnds(ctx, record); err != nil {
		return nil, fmt.Errorf("写入成绩失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"score_record_id": record.ScoreRecordID,
		"archer_id":       viewer.ArcherID,
		"round_id":        in.RoundID,
		"total_score":     totalScore,
	}).Info("成绩已暂存")

	return s.scoreRepo.GetByID(ctx, record.ScoreRecordID)
}

// Update 修改暂存成绩，仅本人且仅 staged 状态可改
func (s *ScoreService) Update(ctx context.Context, viewer Viewer, id uint, in UpdateScoreInput) (*model.ScoreRecord, error) {
	record, err := s.scoreRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}
	if record.ArcherID != viewer.ArcherID {
		return nil, ErrAccessDenied
	}
	if record.Status != model.ScoreStaged {
		return nil, NewStateError("Only staged scores can be updated")
	}

	if in.Ends != nil {
		round, err := s.roundRepo.GetByID(ctx, record.RoundID)
		if err != nil {
			return nil, fmt.Errorf("查询轮定义失败: %w", err)
		}
		if problems := ValidateEnds(round, in.Ends); len(problems) > 0 {
			return nil, NewValidationError("Invalid score structure", problems...)
		}
		ends, totalScore, totalHits := BuildEnds(in.Ends)
		record.Ends = ends
		record.TotalScore = totalScore
		record.TotalHits = totalHits
	}
	if in.DateShot != nil {
		record.DateShot = *in.DateShot
	}
	if in.Notes != nil {
		record.Notes = *in.Notes
	}

	if in.Ends != nil {
		if err := s.scoreRepo.ReplaceEnds(ctx, record); err != nil {
			return nil, fmt.Errorf("更新成绩失败: %w", err)
		}
	} else {
		if err := s.scoreRepo.Updates(ctx, id, map[string]interface{}{
			"date_shot": record.DateShot,
			"notes":     record.Notes,
		}); err != nil {
			return nil, fmt.Errorf("更新成绩失败: %w", err)
		}
	}

	return s.scoreRepo.GetByID(ctx, id)
}

// Approve 审批通过，仅 staged/pending 可进入
func (s *ScoreService) Approve(ctx context.Context, viewer Viewer, id uint) (*model.ScoreRecord, error) {
	record, err := s.scoreRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}
	if !record.Status.Reviewable() {
		return nil, NewStateError("Score cannot be approved from current status")
	}

	now := time.Now()
	if err := s.scoreRepo.Updates(ctx, id, map[string]interface{}{
		"status":      model.ScoreApproved,
		"approved_by": viewer.ArcherID,
		"approved_at": now,
	}); err != nil {
		return nil, fmt.Errorf("审批成绩失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"score_record_id": id,
		"approved_by":     viewer.ArcherID,
	}).Info("成绩审批通过")

	return s.scoreRepo.GetByID(ctx, id)
}

// Reject 审批拒绝，原因追加到备注
func (s *ScoreService) Reject(ctx context.Context, viewer Viewer, id uint, reason string) (*model.ScoreRecord, error) {
	record, err := s.scoreRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}
	if !record.Status.Reviewable() {
		return nil, NewStateError("Score cannot be rejected from current status")
	}

	fields := map[string]interface{}{
		"status": model.ScoreRejected,
	}
	if reason != "" {
		fields["notes"] = fmt.Sprintf("%s\nRejection reason: %s", record.Notes, reason)
	}
	if err := s.scoreRepo.Updates(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("拒绝成绩失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"score_record_id": id,
		"rejected_by":     viewer.ArcherID,
	}).Info("成绩已拒绝")

	return s.scoreRepo.GetByID(ctx, id)
}

// SetStatus 直接设置状态（记录员/管理员），回退到 staged/pending 时清空审批字段
func (s *ScoreService) SetStatus(ctx context.Context, viewer Viewer, id uint, status model.ScoreStatus, reason string) (*model.ScoreRecord, error) {
	if !model.ValidScoreStatus(status) {
		return nil, NewValidationError("Invalid status value")
	}

	record, err := s.scoreRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}

	fields := map[string]interface{}{
		"status": status,
	}
	switch status {
	case model.ScoreApproved:
		fields["approved_by"] = viewer.ArcherID
		fields["approved_at"] = time.Now()
	case model.ScoreStaged, model.ScorePending:
		fields["approved_by"] = nil
		fields["approved_at"] = nil
	case model.ScoreRejected:
		if reason != "" {
			fields["notes"] = fmt.Sprintf("%s\nRejection reason: %s", record.Notes, reason)
		}
	}

	if err := s.scoreRepo.Updates(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("更新成绩状态失败: %w", err)
	}

	return s.scoreRepo.GetByID(ctx, id)
}

// ListStaged 待审队列（staged/pending）
func (s *ScoreService) ListStaged(ctx context.Context) ([]*model.ScoreRecord, error) {
	records, err := s.scoreRepo.ListPendingReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询待审成绩失败: %w", err)
	}
	return records, nil
}

// Delete 删除成绩（管理员），局与箭一并删除
func (s *ScoreService) Delete(ctx context.Context, id uint) error {
	if _, err := s.scoreRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询成绩失败: %w", err)
	}
	if err := s.scoreRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除成绩失败: %w", err)
	}
	return nil
}
