package repository

import (
	"context"
	"time"

	"ArcheryClub/internal/model"

	"gorm.io/gorm"
)

// ScoreFilter 成绩列表筛选条件
type ScoreFilter struct {
	ArcherID      uint
	RoundID       uint
	DivisionID    uint
	CompetitionID uint
	Status        model.ScoreStatus
	Statuses      []model.ScoreStatus
	From          *time.Time
	To            *time.Time
	// ViewerRestricted 普通射手视角：只能看到已通过成绩 + 自己的全部成绩
	ViewerRestricted bool
	ViewerID         uint
	Limit            int
	Offset           int
}

// ScoreRepository 成绩记录持久化，局/箭随记录整体读写
type ScoreRepository interface {
	// CreateWithEnds 同一事务写入记录 + 全部局与箭
	CreateWithEnds(ctx context.Context, record *model.ScoreRecord) error
	// ReplaceEnds 覆盖式更新：局与箭先删后建，记录字段同事务更新
	ReplaceEnds(ctx context.Context, record *model.ScoreRecord) error
	GetByID(ctx context.Context, id uint) (*model.ScoreRecord, error)
	List(ctx context.Context, filter ScoreFilter) ([]*model.ScoreRecord, error)
	// ListPendingReview 待审成绩（staged/pending），审批队列用
	ListPendingReview(ctx context.Context) ([]*model.ScoreRecord, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository 创建成绩仓储
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) CreateWithEnds(ctx context.Context, record *model.ScoreRecord) error {
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

	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *scoreRepository) ReplaceEnds(ctx context.Context, record *model.ScoreRecord) error {
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

	if err := tx.Model(&model.ScoreRecord{}).
		Where("score_record_id = ?", record.ScoreRecordID).
		Updates(map[string]interface{}{
			"round_id":       record.RoundID,
			"division_id":    record.DivisionID,
			"equipment_used": record.EquipmentUsed,
			"competition_id": record.CompetitionID,
			"date_shot":      record.DateShot,
			"status":         record.Status,
			"total_score":    record.TotalScore,
			"total_hits":     record.TotalHits,
			"notes":          record.Notes,
			"approved_by":    record.ApprovedBy,
			"approved_at":    record.ApprovedAt,
			"updated_at":     time.Now(),
		}).Error; err != nil {
		tx.Rollback()
		return err
	}

	// 箭挂在局下，先删局内箭再删局
	var endIDs []uint
	if err := tx.Model(&model.End{}).
		Where("score_record_id = ?", record.ScoreRecordID).
		Pluck("end_id", &endIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(endIDs) > 0 {
		if err := tx.Where("end_id IN ?", endIDs).Delete(&model.Arrow{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Where("score_record_id = ?", record.ScoreRecordID).Delete(&model.End{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	for i := range record.Ends {
		record.Ends[i].EndID = 0
		record.Ends[i].ScoreRecordID = record.ScoreRecordID
		for j := range record.Ends[i].Arrows {
			record.Ends[i].Arrows[j].ArrowID = 0
			record.Ends[i].Arrows[j].EndID = 0
		}
	}
	if len(record.Ends) > 0 {
		if err := tx.Create(&record.Ends).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (r *scoreRepository) GetByID(ctx context.Context, id uint) (*model.ScoreRecord, error) {
	var rec model.ScoreRecord
	if err := r.db.WithContext(ctx).
		Preload("Archer").Preload("Archer.Class").
		Preload("Round").Preload("Round.Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("range_no ASC")
		}).
		Preload("Division").Preload("Competition").Preload("Approver").
		Preload("Ends", func(db *gorm.DB) *gorm.DB {
			return db.Order("end_number ASC")
		}).
		Preload("Ends.Arrows", func(db *gorm.DB) *gorm.DB {
			return db.Order("arrow_order ASC")
		}).
		First(&rec, "score_record_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *scoreRepository) List(ctx context.Context, filter ScoreFilter) ([]*model.ScoreRecord, error) {
	db := r.db.WithContext(ctx).Model(&model.ScoreRecord{}).
		Preload("Archer").Preload("Round").Preload("Division").Preload("Competition")
	if filter.ArcherID != 0 {
		db = db.Where("archer_id = ?", filter.ArcherID)
	}
	if filter.RoundID != 0 {
		db = db.Where("round_id = ?", filter.RoundID)
	}
	if filter.DivisionID != 0 {
		db = db.Where("division_id = ?", filter.DivisionID)
	}
	if filter.CompetitionID != 0 {
		db = db.Where("competition_id = ?", filter.CompetitionID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		db = db.Where("date_shot >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date_shot <= ?", *filter.To)
	}
	if filter.ViewerRestricted {
		db = db.Where("status = ? OR archer_id = ?", model.ScoreApproved, filter.ViewerID)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}
	var list []*model.ScoreRecord
	if err := db.Order("date_shot DESC, score_record_id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *scoreRepository) ListPendingReview(ctx context.Context) ([]*model.ScoreRecord, error) {
	var list []*model.ScoreRecord
	if err := r.db.WithContext(ctx).
		Preload("Archer").Preload("Round").Preload("Division").
		Where("status IN ?", []model.ScoreStatus{model.ScoreStaged, model.ScorePending}).
		Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *scoreRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.ScoreRecord{}).
		Where("score_record_id = ?", id).
		Updates(fields).Error
}

func (r *scoreRepository) Delete(ctx context.Context, id uint) error {
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

	var endIDs []uint
	if err := tx.Model(&model.End{}).
		Where("score_record_id = ?", id).
		Pluck("end_id", &endIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(endIDs) > 0 {
		if err := tx.Where("end_id IN ?", endIDs).Delete(&model.Arrow{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Where("score_record_id = ?", id).Delete(&model.End{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Delete(&model.ScoreRecord{}, "score_record_id = ?", id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
