package service

import (
	"testing"
	"time"

	"ArcheryClub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func approvedScore(archerID uint, class, division string, total int, shot string) *model.ScoreRecord {
	rec := &model.ScoreRecord{
		ArcherID:   archerID,
		TotalScore: total,
		DateShot:   day(shot),
		Status:     model.ScoreApproved,
		Archer: &model.Archer{
			ArcherID:  archerID,
			FirstName: "Archer",
			LastName:  "One",
		},
	}
	if class != "" {
		rec.Archer.Class = &model.Class{Name: class}
	}
	if division != "" {
		rec.Division = &model.Division{Name: division}
	}
	return rec
}

func TestBuildLeaderboard(t *testing.T) {
	scores := []*model.ScoreRecord{
		approvedScore(1, "Male Open", "Recurve", 520, "2026-03-10"),
		approvedScore(2, "Male Open", "Recurve", 540, "2026-03-10"),
		approvedScore(3, "Female Open", "Compound", 600, "2026-03-10"),
		approvedScore(4, "Male Open", "Recurve", 540, "2026-03-08"), // 同分，日期更早
	}

	lb := BuildLeaderboard(scores)
	require.Len(t, lb, 2)

	entries := lb["Male Open - Recurve"]
	require.Len(t, entries, 3)
	assert.Equal(t, uint(4), entries[0].ArcherID) // 540 于 03-08
	assert.Equal(t, uint(2), entries[1].ArcherID) // 540 于 03-10
	assert.Equal(t, uint(1), entries[2].ArcherID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[2].Rank)

	require.Len(t, lb["Female Open - Compound"], 1)
}

func TestBuildLeaderboardMissingAssociations(t *testing.T) {
	rec := &model.ScoreRecord{ArcherID: 9, TotalScore: 300, DateShot: day("2026-01-01")}
	lb := BuildLeaderboard([]*model.ScoreRecord{rec})

	entries, ok := lb["Unknown - "]
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].ArcherName)
}

func TestBuildStandings(t *testing.T) {
	comp := func(name string) *model.Competition { return &model.Competition{Name: name} }

	s1 := approvedScore(1, "Male Open", "Recurve", 500, "2026-02-01")
	s1.Competition = comp("Spring Shoot")
	s2 := approvedScore(1, "Male Open", "Recurve", 520, "2026-04-01")
	s2.Competition = comp("Autumn Shoot")
	s3 := approvedScore(2, "Male Open", "Recurve", 1020, "2026-03-01")
	s3.Competition = comp("Spring Shoot")

	standings := BuildStandings([]*model.ScoreRecord{s1, s2, s3})
	entries := standings["Male Open - Recurve"]
	require.Len(t, entries, 2)

	// 总分同为 1020，射手 1 最早参赛 02-01 排前
	assert.Equal(t, uint(1), entries[0].ArcherID)
	assert.Equal(t, 1020, entries[0].TotalScore)
	assert.Len(t, entries[0].Competitions, 2)
	assert.Equal(t, "Spring Shoot", entries[0].Competitions[0].Name)

	assert.Equal(t, uint(2), entries[1].ArcherID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Len(t, entries[1].Competitions, 1)
}

func TestBuildWinnersTopThree(t *testing.T) {
	var scores []*model.ScoreRecord
	for i := uint(1); i <= 5; i++ {
		scores = append(scores, approvedScore(i, "Male Open", "Recurve", int(i)*100, "2026-05-01"))
	}
	scores = append(scores, approvedScore(10, "Female Open", "Barebow", 333, "2026-05-01"))

	winners := BuildWinners(scores)
	require.Contains(t, winners, "Male Open")

	top := winners["Male Open"]["Recurve"]
	require.Len(t, top, 3)
	assert.Equal(t, 500, top[0].TotalScore)
	assert.Equal(t, 400, top[1].TotalScore)
	assert.Equal(t, 300, top[2].TotalScore)
	assert.Equal(t, 1, top[0].CompetitionCount)

	require.Len(t, winners["Female Open"]["Barebow"], 1)
}

func TestBuildWinnersFallbackKeys(t *testing.T) {
	rec := &model.ScoreRecord{ArcherID: 7, TotalScore: 250, DateShot: day("2026-06-01")}
	winners := BuildWinners([]*model.ScoreRecord{rec})

	require.Contains(t, winners, "No Class")
	require.Contains(t, winners["No Class"], "No Division")
	assert.Len(t, winners["No Class"]["No Division"], 1)
}
