package service

import (
	"errors"
	"fmt"
)

// 业务错误哨兵，API 层据此映射 HTTP 状态码
var (
	ErrNotFound     = errors.New("记录不存在")
	ErrAccessDenied = errors.New("无权访问")
	ErrInvalidState = errors.New("当前状态不允许该操作")
	ErrConflict     = errors.New("记录冲突")
)

// StateError 状态冲突：记录当前状态不允许该操作，消息直接返回给客户端
// errors.Is(err, ErrInvalidState) 成立
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }
func (e *StateError) Unwrap() error { return ErrInvalidState }

// NewStateError 构造状态冲突错误
func NewStateError(message string) error {
	return &StateError{Message: message}
}

// ConflictError 唯一性冲突（重名、重复关联等），errors.Is(err, ErrConflict) 成立
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError 构造唯一性冲突错误
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// ValidationError 输入校验失败，Details 为逐条英文提示（直接返回给客户端）
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Details)
	}
	return e.Message
}

// NewValidationError 构造校验错误
func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// AsValidation 判定并提取校验错误
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
