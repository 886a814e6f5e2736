package model

import (
	"time"

	"gorm.io/datatypes"
)

// RequestStatus 资料变更申请状态，approved/rejected 为终态（无重置路径）
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ProfileChanges 射手资料变更申请的字段差量，空指针表示该字段不变
// 序列化后存入 archer_update_requests.changes（jsonb）
type ProfileChanges struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender       *Gender `json:"gender,omitempty"`
	DivisionID   *uint   `json:"division_id,omitempty"`
	PasswordHash *string `json:"password_hash,omitempty"` // 已哈希，审批通过时直接替换
}

// Empty 是否没有任何变更字段
func (c *ProfileChanges) Empty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Email == nil &&
		c.DateOfBirth == nil && c.Gender == nil && c.DivisionID == nil &&
		c.PasswordHash == nil
}

// ArcherUpdateRequest 射手自助资料变更申请，审批通过后差量才写入 Archer
type ArcherUpdateRequest struct {
	RequestID       uint           `gorm:"column:request_id;primaryKey;autoIncrement"`
	ArcherID        uint           `gorm:"column:archer_id;not null;index"`
	Changes         datatypes.JSON `gorm:"column:changes;type:jsonb;not null"` // ProfileChanges 序列化
	Status          RequestStatus  `gorm:"column:status;type:varchar(16);default:pending;not null"`
	ReviewedBy      *uint          `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time     `gorm:"column:reviewed_at"`
	RejectionReason string         `gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`

	Archer   *Archer `gorm:"foreignKey:ArcherID"`
	Reviewer *Archer `gorm:"foreignKey:ReviewedBy"`
}

func (ArcherUpdateRequest) TableName() string { return "archer_update_requests" }
