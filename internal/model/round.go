package model

import "time"

// ScoringType 计分方式枚举
type ScoringType string

const (
	ScoringTenZone  ScoringType = "10-zone"
	ScoringFiveZone ScoringType = "5-zone"
	ScoringXRing    ScoringType = "X-ring"
	ScoringImperial ScoringType = "Imperial"
)

// Round 轮定义：一次完整计分活动，由有序的若干段（Range）组成
type Round struct {
	RoundID     uint      `gorm:"column:round_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(200);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:text"`
	Equipment   string    `gorm:"column:equipment;type:varchar(100)"` // 建议器材，可空
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now()"`

	Ranges []RoundRange `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE"`
}

func (Round) TableName() string { return "rounds" }

// TotalEnds 该轮全部段的局数之和（成绩结构校验的期望局数）
func (r *Round) TotalEnds() int {
	total := 0
	for _, rg := range r.Ranges {
		total += rg.Ends
	}
	return total
}

// RoundRange 轮内一段：同一距离/靶面连续射的若干局
// RangeNo 在轮内唯一且连续
type RoundRange struct {
	RoundRangeID uint        `gorm:"column:round_range_id;primaryKey;autoIncrement"`
	RoundID      uint        `gorm:"column:round_id;not null;uniqueIndex:uk_round_range_no"`
	RangeNo      int         `gorm:"column:range_no;not null;uniqueIndex:uk_round_range_no"` // 段序号
	Distance     int         `gorm:"column:distance;not null"`                               // 距离（米）
	Ends         int         `gorm:"column:ends;not null"`                                   // 局数，1..50
	TargetFace   string      `gorm:"column:target_face;type:varchar(50);not null"`           // 如 80cm、122cm
	ScoringType  ScoringType `gorm:"column:scoring_type;type:varchar(16);default:10-zone"`
	ArrowsPerEnd int         `gorm:"column:arrows_per_end;not null;default:6"` // 每局箭数，1..12
}

func (RoundRange) TableName() string { return "round_ranges" }

// EquivalentRound 等效轮规则：某类别在某日期窗口内，基准轮可由等效轮替代
// 日期窗口含两端，EndDate 为空表示无截止
type EquivalentRound struct {
	EquivalentID      uint       `gorm:"column:equivalent_id;primaryKey;autoIncrement"`
	BaseRoundID       uint       `gorm:"column:base_round_id;not null"`
	EquivalentRoundID uint       `gorm:"column:equivalent_round_id;not null"` // 不允许等于 BaseRoundID
	CategoryID        uint       `gorm:"column:category_id;not null"`
	StartDate         time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate           *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt         time.Time  `gorm:"column:created_at;type:timestamp;default:now()"`

	BaseRound  *Round    `gorm:"foreignKey:BaseRoundID"`
	Equivalent *Round    `gorm:"foreignKey:EquivalentRoundID"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
}

func (EquivalentRound) TableName() string { return "equivalent_rounds" }
