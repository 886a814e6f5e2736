package service

import (
	"sort"
	"time"

	"ArcheryClub/internal/model"
)

// 榜单聚合均基于已通过成绩，分组键为 "组别 - 弓种"

// LeaderboardEntry 单场比赛榜单行
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	ArcherID   uint      `json:"archer_id"`
	ArcherName string    `json:"archer_name"`
	ClassName  string    `json:"class_name"`
	Division   string    `json:"division"`
	Round      string    `json:"round"`
	Score      int       `json:"score"`
	Date       time.Time `json:"date"`
}

// CompetitionScore 锦标赛积分中单场比赛的贡献
type CompetitionScore struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// StandingEntry 锦标赛积分榜行：射手跨比赛总分
type StandingEntry struct {
	Rank         int                `json:"rank"`
	ArcherID     uint               `json:"archer_id"`
	ArcherName   string             `json:"archer_name"`
	ClassName    string             `json:"class_name"`
	Division     string             `json:"division"`
	TotalScore   int                `json:"total_score"`
	Competitions []CompetitionScore `json:"competitions"`

	earliest time.Time
}

// WinnerEntry 锦标赛获奖行（每 组别×弓种 前三）
type WinnerEntry struct {
	ArcherID         uint   `json:"archer_id"`
	ArcherName       string `json:"archer_name"`
	TotalScore       int    `json:"total_score"`
	CompetitionCount int    `json:"competition_count"`

	earliest time.Time
}

func scoreClassName(rec *model.ScoreRecord, fallback string) string {
	if rec.Archer != nil && rec.Archer.Class != nil {
		return rec.Archer.Class.Name
	}
	return fallback
}

func scoreDivisionName(rec *model.ScoreRecord, fallback string) string {
	if rec.Division != nil {
		return rec.Division.Name
	}
	return fallback
}

func scoreArcherName(rec *model.ScoreRecord) string {
	if rec.Archer != nil {
		return rec.Archer.FullName()
	}
	return ""
}

// BuildLeaderboard 比赛榜单：按类别分组，组内按单次成绩降序编名次
func BuildLeaderboard(scores []*model.ScoreRecord) map[string][]*LeaderboardEntry {
	leaderboard := make(map[string][]*LeaderboardEntry)

	for _, rec := range scores {
		key := scoreClassName(rec, "Unknown") + " - " + scoreDivisionName(rec, "")
		entry := &LeaderboardEntry{
			ArcherID:   rec.ArcherID,
			ArcherName: scoreArcherName(rec),
			ClassName:  scoreClassName(rec, ""),
			Division:   scoreDivisionName(rec, ""),
			Score:      rec.TotalScore,
			Date:       rec.DateShot,
		}
		if rec.Round != nil {
			entry.Round = rec.Round.Name
		}
		leaderboard[key] = append(leaderboard[key], entry)
	}

	for _, entries := range leaderboard {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Score != entries[j].Score {
				return entries[i].Score > entries[j].Score
			}
			if !entries[i].Date.Equal(entries[j].Date) {
				return entries[i].Date.Before(entries[j].Date)
			}
			return entries[i].ArcherID < entries[j].ArcherID
		})
		for i, e := range entries {
			e.Rank = i + 1
		}
	}
	return leaderboard
}

// BuildStandings 锦标赛积分榜：同一射手跨比赛累加总分
// 同分按最早参赛日期、再按射手 ID 定序
func BuildStandings(scores []*model.ScoreRecord) map[string][]*StandingEntry {
	byCategory := make(map[string]map[uint]*StandingEntry)

	for _, rec := range scores {
		key := scoreClassName(rec, "Unknown") + " - " + scoreDivisionName(rec, "")
		if byCategory[key] == nil {
			byCategory[key] = make(map[uint]*StandingEntry)
		}
		entry, ok := byCategory[key][rec.ArcherID]
		if !ok {
			entry = &StandingEntry{
				ArcherID:   rec.ArcherID,
				ArcherName: scoreArcherName(rec),
				ClassName:  scoreClassName(rec, ""),
				Division:   scoreDivisionName(rec, ""),
				earliest:   rec.DateShot,
			}
			byCategory[key][rec.ArcherID] = entry
		}
		entry.TotalScore += rec.TotalScore
		comp := CompetitionScore{Score: rec.TotalScore, Date: rec.DateShot}
		if rec.Competition != nil {
			comp.Name = rec.Competition.Name
		}
		entry.Competitions = append(entry.Competitions, comp)
		if rec.DateShot.Before(entry.earliest) {
			entry.earliest = rec.DateShot
		}
	}

	standings := make(map[string][]*StandingEntry, len(byCategory))
	for key, byArcher := range byCategory {
		entries := make([]*StandingEntry, 0, len(byArcher))
		for _, e := range byArcher {
			entries = append(entries, e)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].TotalScore != entries[j].TotalScore {
				return entries[i].TotalScore > entries[j].TotalScore
			}
			if !entries[i].earliest.Equal(entries[j].earliest) {
				return entries[i].earliest.Before(entries[j].earliest)
			}
			return entries[i].ArcherID < entries[j].ArcherID
		})
		for i, e := range entries {
			e.Rank = i + 1
		}
		standings[key] = entries
	}
	return standings
}

// BuildWinners 获奖名单：组别 → 弓种 → 总分前三
func BuildWinners(scores []*model.ScoreRecord) map[string]map[string][]*WinnerEntry {
	byClass := make(map[string]map[string]map[uint]*WinnerEntry)

	for _, rec := range scores {
		className := scoreClassName(rec, "No Class")
		divisionName := scoreDivisionName(rec, "No Division")
		if byClass[className] == nil {
			byClass[className] = make(map[string]map[uint]*WinnerEntry)
		}
		if byClass[className][divisionName] == nil {
			byClass[className][divisionName] = make(map[uint]*WinnerEntry)
		}
		entry, ok := byClass[className][divisionName][rec.ArcherID]
		if !ok {
			entry = &WinnerEntry{
				ArcherID:   rec.ArcherID,
				ArcherName: scoreArcherName(rec),
				earliest:   rec.DateShot,
			}
			byClass[className][divisionName][rec.ArcherID] = entry
		}
		entry.TotalScore += rec.TotalScore
		entry.CompetitionCount++
		if rec.DateShot.Before(entry.earliest) {
			entry.earliest = rec.DateShot
		}
	}

	winners := make(map[string]map[string][]*WinnerEntry, len(byClass))
	for className, byDivision := range byClass {
		winners[className] = make(map[string][]*WinnerEntry, len(byDivision))
		for divisionName, byArcher := range byDivision {
			entries := make([]*WinnerEntry, 0, len(byArcher))
			for _, e := range byArcher {
				entries = append(entries, e)
			}
			sort.SliceStable(entries, func(i, j int) bool {
				if entries[i].TotalScore != entries[j].TotalScore {
					return entries[i].TotalScore > entries[j].TotalScore
				}
				if !entries[i].earliest.Equal(entries[j].earliest) {
					return entries[i].earliest.Before(entries[j].earliest)
				}
				return entries[i].ArcherID < entries[j].ArcherID
			})
			if len(entries) > 3 {
				entries = entries[:3]
			}
			winners[className][divisionName] = entries
		}
	}
	return winners
}
