package service

import (
	"testing"

	"ArcheryClub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 两段轮：前段 2 局 x 6 箭，后段 1 局 x 3 箭
func testRound() *model.Round {
	return &model.Round{
		RoundID: 1,
		Name:    "Test Round",
		Ranges: []model.RoundRange{
			{RangeNo: 1, Distance: 70, Ends: 2, ArrowsPerEnd: 6, TargetFace: "122cm"},
			{RangeNo: 2, Distance: 50, Ends: 1, ArrowsPerEnd: 3, TargetFace: "80cm"},
		},
	}
}

func TestValidateEnds(t *testing.T) {
	round := testRound()

	t.Run("valid structure", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
			{EndNumber: 2, Arrows: []int{10, 10, 9, 9, 8, 0}},
			{EndNumber: 3, Arrows: []int{9, 8, 7}},
		}
		assert.Empty(t, ValidateEnds(round, ends))
	})

	t.Run("end count mismatch", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
		}
		problems := ValidateEnds(round, ends)
		require.Len(t, problems, 1)
		assert.Equal(t, "Expected 3 ends but got 1", problems[0])
	})

	t.Run("submitted ends still checked when count is short", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
			{EndNumber: 2, Arrows: []int{10, 11, 9}}, // 箭数与分值都有问题
		}
		problems := ValidateEnds(round, ends)
		require.Len(t, problems, 2)
		assert.Equal(t, "Expected 3 ends but got 2", problems[0])
		assert.Equal(t, "End 2 must have exactly 6 arrows", problems[1])
	})

	t.Run("extra ends beyond the round are not mapped", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
			{EndNumber: 2, Arrows: []int{10, 10, 9, 9, 8, 0}},
			{EndNumber: 3, Arrows: []int{9, 8, 7}},
			{EndNumber: 4, Arrows: []int{99}},
		}
		problems := ValidateEnds(round, ends)
		require.Len(t, problems, 1)
		assert.Equal(t, "Expected 3 ends but got 4", problems[0])
	})

	t.Run("arrow count checked per range", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
			{EndNumber: 2, Arrows: []int{10, 10, 9}},          // 前段应为 6 箭
			{EndNumber: 3, Arrows: []int{9, 8, 7, 6, 5, 4}},   // 后段应为 3 箭
		}
		problems := ValidateEnds(round, ends)
		require.Len(t, problems, 2)
		assert.Equal(t, "End 2 must have exactly 6 arrows", problems[0])
		assert.Equal(t, "End 3 must have exactly 3 arrows", problems[1])
	})

	t.Run("arrow score out of range", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{11, 9, 9, 8, 7, 6}},
			{EndNumber: 2, Arrows: []int{10, -1, 9, 9, 8, 0}},
			{EndNumber: 3, Arrows: []int{9, 8, 7}},
		}
		problems := ValidateEnds(round, ends)
		require.Len(t, problems, 2)
		assert.Equal(t, "End 1, Arrow 1: Invalid score 11", problems[0])
		assert.Equal(t, "End 2, Arrow 2: Invalid score -1", problems[1])
	})

	t.Run("zero is a valid miss", func(t *testing.T) {
		ends := []EndInput{
			{EndNumber: 1, Arrows: []int{0, 0, 0, 0, 0, 0}},
			{EndNumber: 2, Arrows: []int{0, 0, 0, 0, 0, 0}},
			{EndNumber: 3, Arrows: []int{0, 0, 0}},
		}
		assert.Empty(t, ValidateEnds(round, ends))
	})
}

func TestBuildEnds(t *testing.T) {
	ends := []EndInput{
		{Arrows: []int{10, 9, 0}},
		{Arrows: []int{8, 8, 7}},
	}
	built, totalScore, totalHits := BuildEnds(ends)

	require.Len(t, built, 2)
	assert.Equal(t, 42, totalScore)
	assert.Equal(t, 5, totalHits) // 0 分为脱靶，不计命中

	assert.Equal(t, 1, built[0].EndNumber)
	assert.Equal(t, 19, built[0].TotalScore)
	assert.Equal(t, 2, built[1].EndNumber)
	assert.Equal(t, 23, built[1].TotalScore)

	require.Len(t, built[0].Arrows, 3)
	assert.Equal(t, 1, built[0].Arrows[0].ArrowOrder)
	assert.Equal(t, 3, built[0].Arrows[2].ArrowOrder)
	assert.Equal(t, 0, built[0].Arrows[2].Score)
}

func TestScoreStatusMachine(t *testing.T) {
	assert.True(t, model.ScoreStaged.Reviewable())
	assert.True(t, model.ScorePending.Reviewable())
	assert.False(t, model.ScoreApproved.Reviewable())
	assert.False(t, model.ScoreRejected.Reviewable())

	assert.True(t, model.ValidScoreStatus(model.ScoreStaged))
	assert.False(t, model.ValidScoreStatus(model.ScoreStatus("archived")))
}
