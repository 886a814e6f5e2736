package model

import "time"

// Class 年龄/性别组别（如 Male Open、Under 18 Female）
type Class struct {
	ClassID   uint      `gorm:"column:class_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	AgeMin    *int      `gorm:"column:age_min"` // 下限为空表示不限
	AgeMax    *int      `gorm:"column:age_max"` // 上限为空表示不限
	Gender    string    `gorm:"column:gender;type:varchar(10)"` // Male/Female/Both
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (Class) TableName() string { return "classes" }

// Division 弓种分项（Recurve/Compound 等）
type Division struct {
	DivisionID  uint      `gorm:"column:division_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (Division) TableName() string { return "divisions" }

// Category 组别×弓种的唯一组合，等效轮规则和资格查询以它为粒度
type Category struct {
	CategoryID uint      `gorm:"column:category_id;primaryKey;autoIncrement;"`
	ClassID    uint      `gorm:"column:class_id;not null;uniqueIndex:uk_class_division"`
	DivisionID uint      `gorm:"column:division_id;not null;uniqueIndex:uk_class_division"`
	Name       string    `gorm:"column:name;type:varchar(200);not null"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;default:now()"`

	Class    *Class    `gorm:"foreignKey:ClassID"`
	Division *Division `gorm:"foreignKey:DivisionID"`
}

func (Category) TableName() string { return "categories" }
