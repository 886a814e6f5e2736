package model

import "time"

// CompetitionStatus 比赛状态枚举
const (
	CompetitionUpcoming  = "upcoming"
	CompetitionActive    = "active"
	CompetitionCompleted = "completed"
)

// Competition 一次具体比赛，可指定使用的轮
type Competition struct {
	CompetitionID uint      `gorm:"column:competition_id;primaryKey;autoIncrement"`
	Name          string    `gorm:"column:name;type:varchar(200);not null"`
	RoundID       *uint     `gorm:"column:round_id"` // 比赛使用的轮，可空
	Date          time.Time `gorm:"column:date;type:date;not null"`
	StartDate     time.Time `gorm:"column:start_date;type:date"`
	EndDate       time.Time `gorm:"column:end_date;type:date"`
	Location      string    `gorm:"column:location;type:varchar(255)"`
	Description   string    `gorm:"column:description;type:text"`
	Status        string    `gorm:"column:status;type:varchar(16);default:upcoming"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;default:now()"`

	Round *Round `gorm:"foreignKey:RoundID"`
}

func (Competition) TableName() string { return "competitions" }

// ClubChampionship 年度俱乐部锦标赛：聚合多场比赛出榜单
// 每年至多一个
type ClubChampionship struct {
	ChampionshipID uint       `gorm:"column:championship_id;primaryKey;autoIncrement"`
	Name           string     `gorm:"column:name;type:varchar(200);not null"`
	Year           int        `gorm:"column:year;uniqueIndex;not null"`
	StartDate      *time.Time `gorm:"column:start_date;type:date"`
	EndDate        *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:timestamp;default:now()"`

	Competitions []Competition `gorm:"many2many:championship_competitions;foreignKey:ChampionshipID;joinForeignKey:ChampionshipID;References:CompetitionID;joinReferences:CompetitionID"`
}

func (ClubChampionship) TableName() string { return "club_championships" }

// ChampionshipCompetition 锦标赛与比赛的关联表
type ChampionshipCompetition struct {
	ChampionshipID uint `gorm:"column:championship_id;primaryKey"`
	CompetitionID  uint `gorm:"column:competition_id;primaryKey"`
}

func (ChampionshipCompetition) TableName() string { return "championship_competitions" }
