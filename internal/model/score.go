package model

import "time"

// ScoreStatus 成绩审批状态机的四个状态
// staged：射手自提后的暂存态；pending：等待复审（由状态重置进入）
// approved/rejected：审批结论，可通过状态重置回到 pending/staged 复审
type ScoreStatus string

const (
	ScoreStaged   ScoreStatus = "staged"
	ScorePending  ScoreStatus = "pending"
	ScoreApproved ScoreStatus = "approved"
	ScoreRejected ScoreStatus = "rejected"
)

// ValidScoreStatus 是否为合法状态值
func ValidScoreStatus(s ScoreStatus) bool {
	switch s {
	case ScoreStaged, ScorePending, ScoreApproved, ScoreRejected:
		return true
	}
	return false
}

// Reviewable 当前状态能否进入 approve/reject
func (s ScoreStatus) Reviewable() bool {
	return s == ScoreStaged || s == ScorePending
}

// ScoreRecord 一次轮成绩记录，持有全部局与箭
type ScoreRecord struct {
	ScoreRecordID uint        `gorm:"column:score_record_id;primaryKey;autoIncrement"`
	ArcherID      uint        `gorm:"column:archer_id;not null;index:idx_archer_date"`
	RoundID       uint        `gorm:"column:round_id;not null"`
	DivisionID    uint        `gorm:"column:division_id;not null"`
	EquipmentUsed string      `gorm:"column:equipment_used;type:varchar(100)"` // 实际使用器材，供核对
	CompetitionID *uint       `gorm:"column:competition_id;index"`             // 练习成绩为空
	DateShot      time.Time   `gorm:"column:date_shot;type:date;not null;index:idx_archer_date"`
	Status        ScoreStatus `gorm:"column:status;type:varchar(16);default:staged"`
	TotalScore    int         `gorm:"column:total_score;not null;default:0"` // 恒等于全部箭分之和
	TotalHits     int         `gorm:"column:total_hits;not null;default:0"`  // 非脱靶箭数
	Notes         string      `gorm:"column:notes;type:text"`                // 拒绝原因追加在此
	CreatedAt     time.Time   `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt     time.Time   `gorm:"column:updated_at;type:timestamp;default:now()"`
	ApprovedBy    *uint       `gorm:"column:approved_by"` // 审批人，仅 approved 时有值
	ApprovedAt    *time.Time  `gorm:"column:approved_at"`

	Archer      *Archer      `gorm:"foreignKey:ArcherID"`
	Round       *Round       `gorm:"foreignKey:RoundID"`
	Division    *Division    `gorm:"foreignKey:DivisionID"`
	Competition *Competition `gorm:"foreignKey:CompetitionID"`
	Approver    *Archer      `gorm:"foreignKey:ApprovedBy"`
	Ends        []End        `gorm:"foreignKey:ScoreRecordID;constraint:OnDelete:CASCADE"`
}

func (ScoreRecord) TableName() string { return "score_records" }

// End 一局：固定箭数的一组射击
type End struct {
	EndID         uint `gorm:"column:end_id;primaryKey;autoIncrement"`
	ScoreRecordID uint `gorm:"column:score_record_id;not null;uniqueIndex:uk_record_end_no"`
	EndNumber     int  `gorm:"column:end_number;not null;uniqueIndex:uk_record_end_no"`
	TotalScore    int  `gorm:"column:total_score;not null;default:0"` // 本局箭分之和

	Arrows []Arrow `gorm:"foreignKey:EndID;constraint:OnDelete:CASCADE"`
}

func (End) TableName() string { return "ends" }

// Arrow 单箭得分，0 为脱靶
type Arrow struct {
	ArrowID    uint `gorm:"column:arrow_id;primaryKey;autoIncrement"`
	EndID      uint `gorm:"column:end_id;not null;uniqueIndex:uk_end_arrow_order"`
	Score      int  `gorm:"column:score;not null"`                                     // 0..10
	ArrowOrder int  `gorm:"column:arrow_order;not null;uniqueIndex:uk_end_arrow_order"` // 局内序号，从 1 起
}

func (Arrow) TableName() string { return "arrows" }
