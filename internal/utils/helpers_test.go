package utils

import (
	"testing"
	"time"

	"ArcheryClub/internal/model"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestCalculateAge(t *testing.T) {
	dob := date("2000-06-15")

	tests := []struct {
		name string
		ref  string
		want int
	}{
		{"day before birthday", "2026-06-14", 25},
		{"on birthday", "2026-06-15", 26},
		{"day after birthday", "2026-06-16", 26},
		{"earlier month", "2026-03-01", 25},
		{"later month", "2026-09-01", 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAge(dob, date(tt.ref)))
		})
	}
}

func TestDetermineClass(t *testing.T) {
	tests := []struct {
		age    int
		gender model.Gender
		want   string
	}{
		{10, model.GenderMale, "Under 14 Male"},
		{13, model.GenderFemale, "Under 14 Female"},
		{14, model.GenderMale, "Under 16 Male"},
		{16, model.GenderFemale, "Under 18 Female"},
		{18, model.GenderMale, "Under 21 Male"},
		{21, model.GenderMale, "Male Open"},
		{49, model.GenderFemale, "Female Open"},
		{50, model.GenderMale, "50+ Male"},
		{60, model.GenderFemale, "60+ Female"},
		{70, model.GenderMale, "70+ Male"},
		{85, model.GenderFemale, "70+ Female"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineClass(tt.age, tt.gender))
		})
	}
}

func TestIsDateInRange(t *testing.T) {
	start := date("2026-01-01")
	end := date("2026-12-31")

	assert.True(t, IsDateInRange(date("2026-06-01"), start, &end))
	assert.True(t, IsDateInRange(start, start, &end), "窗口含起始日")
	assert.True(t, IsDateInRange(end, start, &end), "窗口含截止日")
	assert.False(t, IsDateInRange(date("2025-12-31"), start, &end))
	assert.False(t, IsDateInRange(date("2027-01-01"), start, &end))

	// 无截止日期的开放窗口
	assert.True(t, IsDateInRange(date("2030-01-01"), start, nil))
	assert.False(t, IsDateInRange(date("2025-01-01"), start, nil))
}

func TestTruncateToDate(t *testing.T) {
	got := TruncateToDate(time.Date(2026, 8, 29, 15, 4, 5, 123, time.Local))
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), got)
}
