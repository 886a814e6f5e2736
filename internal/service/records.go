package service

import (
	"context"
	"fmt"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"github.com/sirupsen/logrus"
)

// RecordsService 俱乐部纪录与个人最佳，均基于已通过成绩
type RecordsService struct {
	scoreRepo repository.ScoreRepository
	logger    *logrus.Logger
}

func NewRecordsService(scoreRepo repository.ScoreRepository, logger *logrus.Logger) *RecordsService {
	return &RecordsService{scoreRepo: scoreRepo, logger: logger}
}

// ClubRecords 每个 轮×弓种 的最高已通过成绩；同分取最早射出的记录
func (s *RecordsService) ClubRecords(ctx context.Context, divisionID uint) ([]*model.ScoreRecord, error) {
	scores, err := s.scoreRepo.List(ctx, repository.ScoreFilter{
		Status:     model.ScoreApproved,
		DivisionID: divisionID,
	})
	if err != nil {
		return nil, fmt.Errorf("查询纪录数据失败: %w", err)
	}

	type key struct {
		roundID    uint
		divisionID uint
	}
	best := make(map[key]*model.ScoreRecord)
	order := make([]key, 0)
	for _, rec := range scores {
		k := key{rec.RoundID, rec.DivisionID}
		cur, ok := best[k]
		if !ok {
			best[k] = rec
			order = append(order, k)
			continue
		}
		if rec.TotalScore > cur.TotalScore ||
			(rec.TotalScore == cur.TotalScore && rec.DateShot.Before(cur.DateShot)) {
			best[k] = rec
		}
	}

	records := make([]*model.ScoreRecord, 0, len(order))
	for _, k := range order {
		records = append(records, best[k])
	}
	return records, nil
}

// PersonalBest 某射手在某轮上的最佳已通过成绩
type PersonalBest struct {
	RoundID   uint               `json:"round_id"`
	RoundName string             `json:"round_name"`
	Best      *model.ScoreRecord `json:"best"`
	Attempts  int                `json:"attempts"` // 该轮已通过成绩次数
}

// PersonalBests 射手按轮汇总的最佳成绩
func (s *RecordsService) PersonalBests(ctx context.Context, archerID uint) ([]*PersonalBest, error) {
	scores, err := s.scoreRepo.List(ctx, repository.ScoreFilter{
		ArcherID: archerID,
		Status:   model.ScoreApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("查询个人成绩失败: %w", err)
	}

	byRound := make(map[uint]*PersonalBest)
	order := make([]uint, 0)
	for _, rec := range scores {
		pb, ok := byRound[rec.RoundID]
		if !ok {
			pb = &PersonalBest{RoundID: rec.RoundID}
			if rec.Round != nil {
				pb.RoundName = rec.Round.Name
			}
			byRound[rec.RoundID] = pb
			order = append(order, rec.RoundID)
		}
		pb.Attempts++
		if pb.Best == nil || rec.TotalScore > pb.Best.TotalScore ||
			(rec.TotalScore == pb.Best.TotalScore && rec.DateShot.Before(pb.Best.DateShot)) {
			pb.Best = rec
		}
	}

	bests := make([]*PersonalBest, 0, len(order))
	for _, roundID := range order {
		bests = append(bests, byRound[roundID])
	}
	return bests, nil
}
