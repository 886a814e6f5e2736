package utils

import (
	"fmt"
	"time"

	"ArcheryClub/internal/model"
)

// CalculateAge 按参考日计算周岁（未到生日则减一）
func CalculateAge(dateOfBirth, referenceDate time.Time) int {
	age := referenceDate.Year() - dateOfBirth.Year()
	if referenceDate.Month() < dateOfBirth.Month() ||
		(referenceDate.Month() == dateOfBirth.Month() && referenceDate.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// DetermineClass 按年龄+性别得出组别名，与种子数据中的组别表一致
func DetermineClass(age int, gender model.Gender) string {
	switch {
	case age < 14:
		return fmt.Sprintf("Under 14 %s", gender)
	case age < 16:
		return fmt.Sprintf("Under 16 %s", gender)
	case age < 18:
		return fmt.Sprintf("Under 18 %s", gender)
	case age < 21:
		return fmt.Sprintf("Under 21 %s", gender)
	case age < 50:
		return fmt.Sprintf("%s Open", gender)
	case age < 60:
		return fmt.Sprintf("50+ %s", gender)
	case age < 70:
		return fmt.Sprintf("60+ %s", gender)
	default:
		return fmt.Sprintf("70+ %s", gender)
	}
}

// IsDateInRange 日期是否落在 [start, end] 窗口内，end 为空表示无截止
// 两端均含（等效轮规则的窗口语义）
func IsDateInRange(date, start time.Time, end *time.Time) bool {
	if date.Before(start) {
		return false
	}
	if end == nil {
		return true
	}
	return !date.After(*end)
}

// TruncateToDate 去掉时分秒，仅保留日期（UTC）
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
