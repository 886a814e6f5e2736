package service

import (
	"context"
	"io"
	"testing"
	"time"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeScoreRepo 内存版成绩仓储，按生产实现的 Updates 语义直接改字段
type fakeScoreRepo struct {
	records map[uint]*model.ScoreRecord
	nextID  uint
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{records: make(map[uint]*model.ScoreRecord), nextID: 1}
}

func (f *fakeScoreRepo) CreateWithEnds(_ context.Context, record *model.ScoreRecord) error {
	record.ScoreRecordID = f.nextID
	f.nextID++
	f.records[record.ScoreRecordID] = record
	return nil
}

func (f *fakeScoreRepo) ReplaceEnds(_ context.Context, record *model.ScoreRecord) error {
	f.records[record.ScoreRecordID] = record
	return nil
}

func (f *fakeScoreRepo) GetByID(_ context.Context, id uint) (*model.ScoreRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (f *fakeScoreRepo) List(_ context.Context, filter repository.ScoreFilter) ([]*model.ScoreRecord, error) {
	var out []*model.ScoreRecord
	for _, rec := range f.records {
		if filter.ViewerRestricted && rec.Status != model.ScoreApproved && rec.ArcherID != filter.ViewerID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeScoreRepo) ListPendingReview(_ context.Context) ([]*model.ScoreRecord, error) {
	var out []*model.ScoreRecord
	for _, rec := range f.records {
		if rec.Status.Reviewable() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeScoreRepo) Updates(_ context.Context, id uint, fields map[string]interface{}) error {
	rec, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			rec.Status = v.(model.ScoreStatus)
		case "notes":
			rec.Notes = v.(string)
		case "date_shot":
			rec.DateShot = v.(time.Time)
		case "approved_by":
			if v == nil {
				rec.ApprovedBy = nil
			} else {
				by := v.(uint)
				rec.ApprovedBy = &by
			}
		case "approved_at":
			if v == nil {
				rec.ApprovedAt = nil
			} else {
				at := v.(time.Time)
				rec.ApprovedAt = &at
			}
		}
	}
	return nil
}

func (f *fakeScoreRepo) Delete(_ context.Context, id uint) error {
	delete(f.records, id)
	return nil
}

// fakeRoundRepo 内存版轮定义仓储
type fakeRoundRepo struct {
	rounds     map[uint]*model.Round
	nextID     uint
	scoreCount int64
}

func newFakeRoundRepo(rounds ...*model.Round) *fakeRoundRepo {
	f := &fakeRoundRepo{rounds: make(map[uint]*model.Round), nextID: 1}
	for _, r := range rounds {
		if r.RoundID >= f.nextID {
			f.nextID = r.RoundID + 1
		}
		f.rounds[r.RoundID] = r
	}
	return f
}

func (f *fakeRoundRepo) Create(_ context.Context, round *model.Round) error {
	round.RoundID = f.nextID
	f.nextID++
	f.rounds[round.RoundID] = round
	return nil
}

func (f *fakeRoundRepo) UpdateWithRanges(_ context.Context, round *model.Round) error {
	f.rounds[round.RoundID] = round
	return nil
}

func (f *fakeRoundRepo) Delete(_ context.Context, id uint) error {
	delete(f.rounds, id)
	return nil
}

func (f *fakeRoundRepo) CountScores(_ context.Context, _ uint) (int64, error) {
	return f.scoreCount, nil
}

func (f *fakeRoundRepo) GetByName(_ context.Context, name string) (*model.Round, error) {
	for _, r := range f.rounds {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoundRepo) List(_ context.Context, _ string) ([]*model.Round, error) {
	var out []*model.Round
	for _, r := range f.rounds {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, id uint) (*model.Round, error) {
	r, ok := f.rounds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestScoreService() (*ScoreService, *fakeScoreRepo) {
	scoreRepo := newFakeScoreRepo()
	roundRepo := newFakeRoundRepo(testRound())
	return NewScoreService(scoreRepo, roundRepo, testLogger()), scoreRepo
}

func validEnds() []EndInput {
	return []EndInput{
		{EndNumber: 1, Arrows: []int{10, 9, 9, 8, 7, 6}},
		{EndNumber: 2, Arrows: []int{10, 10, 9, 9, 8, 0}},
		{EndNumber: 3, Arrows: []int{9, 8, 7}},
	}
}

func TestScoreCreate(t *testing.T) {
	svc, _ := newTestScoreService()
	archer := Viewer{ArcherID: 5, Role: model.RoleArcher}

	t.Run("staged on create", func(t *testing.T) {
		rec, err := svc.Create(context.Background(), archer, CreateScoreInput{
			RoundID:    1,
			DivisionID: 2,
			DateShot:   day("2026-07-01"),
			Ends:       validEnds(),
		})
		require.NoError(t, err)
		assert.Equal(t, model.ScoreStaged, rec.Status)
		assert.Equal(t, uint(5), rec.ArcherID)
		assert.Equal(t, 119, rec.TotalScore)
		assert.Equal(t, 14, rec.TotalHits)
	})

	t.Run("invalid structure rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), archer, CreateScoreInput{
			RoundID:  1,
			DateShot: day("2026-07-01"),
			Ends:     []EndInput{{Arrows: []int{10}}},
		})
		ve, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid score structure", ve.Message)
		// 局数不足时已提交的局仍逐一校验
		require.Len(t, ve.Details, 2)
		assert.Equal(t, "Expected 3 ends but got 1", ve.Details[0])
		assert.Equal(t, "End 1 must have exactly 6 arrows", ve.Details[1])
	})

	t.Run("unknown round", func(t *testing.T) {
		_, err := svc.Create(context.Background(), archer, CreateScoreInput{
			RoundID: 99,
			Ends:    validEnds(),
		})
		ve, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "Round not found", ve.Message)
	})
}

func TestScoreGetVisibility(t *testing.T) {
	svc, repo := newTestScoreService()
	owner := Viewer{ArcherID: 5, Role: model.RoleArcher}
	other := Viewer{ArcherID: 6, Role: model.RoleArcher}
	recorder := Viewer{ArcherID: 7, Role: model.RoleRecorder}

	rec, err := svc.Create(context.Background(), owner, CreateScoreInput{
		RoundID: 1, DivisionID: 2, DateShot: day("2026-07-01"), Ends: validEnds(),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, rec.ScoreRecordID)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), recorder, rec.ScoreRecordID)
	assert.NoError(t, err)

	// 他人暂存成绩不可见
	_, err = svc.Get(context.Background(), other, rec.ScoreRecordID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// 通过后对全员可见
	require.NoError(t, repo.Updates(context.Background(), rec.ScoreRecordID,
		map[string]interface{}{"status": model.ScoreApproved}))
	_, err = svc.Get(context.Background(), other, rec.ScoreRecordID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreUpdateGuards(t *testing.T) {
	svc, repo := newTestScoreService()
	owner := Viewer{ArcherID: 5, Role: model.RoleArcher}
	other := Viewer{ArcherID: 6, Role: model.RoleArcher}

	rec, err := svc.Create(context.Background(), owner, CreateScoreInput{
		RoundID: 1, DivisionID: 2, DateShot: day("2026-07-01"), Ends: validEnds(),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), other, rec.ScoreRecordID, UpdateScoreInput{})
	assert.ErrorIs(t, err, ErrAccessDenied)

	notes := "wind picked up"
	updated, err := svc.Update(context.Background(), owner, rec.ScoreRecordID, UpdateScoreInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "wind picked up", updated.Notes)

	// 非 staged 状态不可修改
	require.NoError(t, repo.Updates(context.Background(), rec.ScoreRecordID,
		map[string]interface{}{"status": model.ScoreApproved}))
	_, err = svc.Update(context.Background(), owner, rec.ScoreRecordID, UpdateScoreInput{Notes: &notes})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.EqualError(t, err, "Only staged scores can be updated")
}

func TestScoreApprovalFlow(t *testing.T) {
	svc, _ := newTestScoreService()
	owner := Viewer{ArcherID: 5, Role: model.RoleArcher}
	recorder := Viewer{ArcherID: 7, Role: model.RoleRecorder}

	rec, err := svc.Create(context.Background(), owner, CreateScoreInput{
		RoundID: 1, DivisionID: 2, DateShot: day("2026-07-01"), Ends: validEnds(),
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), recorder, rec.ScoreRecordID)
	require.NoError(t, err)
	assert.Equal(t, model.ScoreApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, uint(7), *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// 已通过成绩不可再次审批
	_, err = svc.Approve(context.Background(), recorder, rec.ScoreRecordID)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.EqualError(t, err, "Score cannot be approved from current status")

	// 回退到 staged 清空审批字段
	reset, err := svc.SetStatus(context.Background(), recorder, rec.ScoreRecordID, model.ScoreStaged, "")
	require.NoError(t, err)
	assert.Equal(t, model.ScoreStaged, reset.Status)
	assert.Nil(t, reset.ApprovedBy)
	assert.Nil(t, reset.ApprovedAt)

	rejected, err := svc.Reject(context.Background(), recorder, rec.ScoreRecordID, "missing witness")
	require.NoError(t, err)
	assert.Equal(t, model.ScoreRejected, rejected.Status)
	assert.Contains(t, rejected.Notes, "\nRejection reason: missing witness")

	_, err = svc.SetStatus(context.Background(), recorder, rec.ScoreRecordID, model.ScoreStatus("archived"), "")
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid status value", ve.Message)
}

func TestScoreListViewerRestriction(t *testing.T) {
	svc, repo := newTestScoreService()
	owner := Viewer{ArcherID: 5, Role: model.RoleArcher}
	other := Viewer{ArcherID: 6, Role: model.RoleArcher}
	recorder := Viewer{ArcherID: 7, Role: model.RoleRecorder}

	mine, err := svc.Create(context.Background(), owner, CreateScoreInput{
		RoundID: 1, DivisionID: 2, DateShot: day("2026-07-01"), Ends: validEnds(),
	})
	require.NoError(t, err)
	theirs, err := svc.Create(context.Background(), other, CreateScoreInput{
		RoundID: 1, DivisionID: 2, DateShot: day("2026-07-02"), Ends: validEnds(),
	})
	require.NoError(t, err)

	// 普通射手看不到他人的暂存成绩
	list, err := svc.List(context.Background(), owner, repository.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ScoreRecordID, list[0].ScoreRecordID)

	// 审批人可见全部
	list, err = svc.List(context.Background(), recorder, repository.ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Updates(context.Background(), theirs.ScoreRecordID,
		map[string]interface{}{"status": model.ScoreApproved}))
	list, err = svc.List(context.Background(), owner, repository.ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
