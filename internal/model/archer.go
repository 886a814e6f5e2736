package model

import (
	"fmt"
	"time"
)

// Role 用户角色枚举
type Role string

const (
	RoleAdmin    Role = "admin"    // 管理员：全部权限
	RoleRecorder Role = "recorder" // 记分员：审批成绩
	RoleArcher   Role = "archer"   // 射手：提交自己的成绩
)

// Gender 性别枚举（用于组别判定）
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// IsReviewer 是否具备审批权限（admin/recorder）
func (r Role) IsReviewer() bool {
	return r == RoleAdmin || r == RoleRecorder
}

// Archer 射手账号（同时也是登录用户，Role 区分权限）
type Archer struct {
	ArcherID          uint      `gorm:"column:archer_id;primaryKey;autoIncrement"`
	FirstName         string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName          string    `gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth       time.Time `gorm:"column:date_of_birth;type:date;not null"` // 出生日期，决定组别
	Gender            Gender    `gorm:"column:gender;type:varchar(10);not null"`
	Email             string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role              Role      `gorm:"column:role;type:varchar(16);default:archer"`
	DefaultDivisionID *uint     `gorm:"column:default_division_id"` // 默认弓种，仅 archer 角色有值
	ClassID           *uint     `gorm:"column:class_id"`            // 按年龄+性别自动判定
	CreatedAt         time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt         time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`

	Class           *Class    `gorm:"foreignKey:ClassID"`
	DefaultDivision *Division `gorm:"foreignKey:DefaultDivisionID"`
}

func (Archer) TableName() string { return "archers" }

// FullName 显示用姓名
func (a *Archer) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// ClassName 射手组别名，未分配时返回空串
func (a *Archer) ClassName() string {
	if a.Class == nil {
		return ""
	}
	return a.Class.Name
}
