package service

import (
	"context"
	"testing"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeChampRepo 内存版锦标赛仓储，Competitions 关联按挂载顺序返回
type fakeChampRepo struct {
	champs map[uint]*model.ClubChampionship
	comps  map[uint]*model.Competition
	links  map[uint][]uint
	scores map[uint][]*model.ScoreRecord
	nextID uint
	// askedIDs 记录积分查询实际收到的比赛 ID
	askedIDs []uint
}

func newFakeChampRepo(comps map[uint]*model.Competition) *fakeChampRepo {
	return &fakeChampRepo{
		champs: make(map[uint]*model.ClubChampionship),
		comps:  comps,
		links:  make(map[uint][]uint),
		scores: make(map[uint][]*model.ScoreRecord),
		nextID: 1,
	}
}

func (f *fakeChampRepo) Create(_ context.Context, champ *model.ClubChampionship) error {
	champ.ChampionshipID = f.nextID
	f.nextID++
	f.champs[champ.ChampionshipID] = champ
	return nil
}

func (f *fakeChampRepo) GetByID(_ context.Context, id uint) (*model.ClubChampionship, error) {
	champ, ok := f.champs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	champ.Competitions = nil
	for _, compID := range f.links[id] {
		if comp, ok := f.comps[compID]; ok {
			champ.Competitions = append(champ.Competitions, *comp)
		}
	}
	return champ, nil
}

func (f *fakeChampRepo) GetByYear(_ context.Context, year int) (*model.ClubChampionship, error) {
	for id := uint(1); id < f.nextID; id++ {
		if champ, ok := f.champs[id]; ok && champ.Year == year {
			return champ, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChampRepo) List(_ context.Context) ([]*model.ClubChampionship, error) {
	var out []*model.ClubChampionship
	for id := uint(1); id < f.nextID; id++ {
		if champ, ok := f.champs[id]; ok {
			out = append(out, champ)
		}
	}
	return out, nil
}

func (f *fakeChampRepo) Updates(_ context.Context, id uint, fields map[string]interface{}) error {
	champ, ok := f.champs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["name"]; ok {
		champ.Name = v.(string)
	}
	if v, ok := fields["year"]; ok {
		champ.Year = v.(int)
	}
	return nil
}

func (f *fakeChampRepo) Delete(_ context.Context, id uint) error {
	delete(f.champs, id)
	delete(f.links, id)
	return nil
}

func (f *fakeChampRepo) LinkCompetition(_ context.Context, championshipID, competitionID uint) error {
	f.links[championshipID] = append(f.links[championshipID], competitionID)
	return nil
}

func (f *fakeChampRepo) UnlinkCompetition(_ context.Context, championshipID, competitionID uint) error {
	kept := f.links[championshipID][:0]
	for _, id := range f.links[championshipID] {
		if id != competitionID {
			kept = append(kept, id)
		}
	}
	f.links[championshipID] = kept
	return nil
}

func (f *fakeChampRepo) LinkExists(_ context.Context, championshipID, competitionID uint) (bool, error) {
	for _, id := range f.links[championshipID] {
		if id == competitionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChampRepo) ListApprovedScores(_ context.Context, competitionIDs []uint) ([]*model.ScoreRecord, error) {
	f.askedIDs = append(f.askedIDs, competitionIDs...)
	var out []*model.ScoreRecord
	for _, id := range competitionIDs {
		out = append(out, f.scores[id]...)
	}
	return out, nil
}

// fakeCompRepo 内存版比赛仓储，锦标赛测试仅用到按 ID 查询
type fakeCompRepo struct {
	comps map[uint]*model.Competition
}

func (f *fakeCompRepo) Create(_ context.Context, comp *model.Competition) error {
	f.comps[comp.CompetitionID] = comp
	return nil
}

func (f *fakeCompRepo) GetByID(_ context.Context, id uint) (*model.Competition, error) {
	comp, ok := f.comps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return comp, nil
}

func (f *fakeCompRepo) List(_ context.Context, _ repository.CompetitionFilter) ([]*model.Competition, error) {
	return nil, nil
}

func (f *fakeCompRepo) Updates(_ context.Context, _ uint, _ map[string]interface{}) error {
	return nil
}

func (f *fakeCompRepo) Delete(_ context.Context, id uint) error {
	delete(f.comps, id)
	return nil
}

func (f *fakeCompRepo) ListApprovedScores(_ context.Context, _ uint) ([]*model.ScoreRecord, error) {
	return nil, nil
}

func (f *fakeCompRepo) CountScores(_ context.Context, _ uint) (int64, error) { return 0, nil }

func newTestChampionshipService(comps ...*model.Competition) (*ChampionshipService, *fakeChampRepo) {
	byID := make(map[uint]*model.Competition)
	for _, c := range comps {
		byID[c.CompetitionID] = c
	}
	champRepo := newFakeChampRepo(byID)
	svc := NewChampionshipService(champRepo, &fakeCompRepo{comps: byID}, testLogger())
	return svc, champRepo
}

func TestChampionshipYearUnique(t *testing.T) {
	svc, _ := newTestChampionshipService()

	_, err := svc.Create(context.Background(), ChampionshipInput{Name: "Club Championship", Year: 2026})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ChampionshipInput{Name: "Second Attempt", Year: 2026})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Championship for this year already exists")
}

func TestChampionshipAddCompetition(t *testing.T) {
	svc, _ := newTestChampionshipService(
		&model.Competition{CompetitionID: 10, Name: "Spring Shoot"},
	)

	champ, err := svc.Create(context.Background(), ChampionshipInput{Name: "Club Championship", Year: 2026})
	require.NoError(t, err)

	require.NoError(t, svc.AddCompetition(context.Background(), champ.ChampionshipID, 10))

	// 重复挂载拒绝
	err = svc.AddCompetition(context.Background(), champ.ChampionshipID, 10)
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Competition already in championship")

	// 比赛不存在
	err = svc.AddCompetition(context.Background(), champ.ChampionshipID, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	// 移除后再移除报未找到
	require.NoError(t, svc.RemoveCompetition(context.Background(), champ.ChampionshipID, 10))
	err = svc.RemoveCompetition(context.Background(), champ.ChampionshipID, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChampionshipStandingsAggregation(t *testing.T) {
	spring := &model.Competition{CompetitionID: 10, Name: "Spring Shoot"}
	autumn := &model.Competition{CompetitionID: 20, Name: "Autumn Shoot"}
	svc, repo := newTestChampionshipService(spring, autumn)

	champ, err := svc.Create(context.Background(), ChampionshipInput{Name: "Club Championship", Year: 2026})
	require.NoError(t, err)
	require.NoError(t, svc.AddCompetition(context.Background(), champ.ChampionshipID, 10))
	require.NoError(t, svc.AddCompetition(context.Background(), champ.ChampionshipID, 20))

	s1 := approvedScore(1, "Male Open", "Recurve", 500, "2026-02-01")
	s1.Competition = spring
	s2 := approvedScore(1, "Male Open", "Recurve", 520, "2026-04-01")
	s2.Competition = autumn
	s3 := approvedScore(2, "Male Open", "Recurve", 1020, "2026-03-01")
	s3.Competition = spring
	repo.scores[10] = []*model.ScoreRecord{s1, s3}
	repo.scores[20] = []*model.ScoreRecord{s2}

	result, err := svc.Standings(context.Background(), champ.ChampionshipID)
	require.NoError(t, err)
	assert.Empty(t, result.Message)

	// 积分查询收到全部挂载比赛
	assert.Equal(t, []uint{10, 20}, repo.askedIDs)

	entries := result.Standings["Male Open - Recurve"]
	require.Len(t, entries, 2)
	// 总分同为 1020，射手 1 最早参赛排前
	assert.Equal(t, uint(1), entries[0].ArcherID)
	assert.Equal(t, 1020, entries[0].TotalScore)
	assert.Len(t, entries[0].Competitions, 2)
	assert.Equal(t, uint(2), entries[1].ArcherID)
}

func TestChampionshipWinnersAggregation(t *testing.T) {
	spring := &model.Competition{CompetitionID: 10, Name: "Spring Shoot"}
	svc, repo := newTestChampionshipService(spring)

	champ, err := svc.Create(context.Background(), ChampionshipInput{Name: "Club Championship", Year: 2026})
	require.NoError(t, err)
	require.NoError(t, svc.AddCompetition(context.Background(), champ.ChampionshipID, 10))

	var scores []*model.ScoreRecord
	for i := uint(1); i <= 4; i++ {
		s := approvedScore(i, "Male Open", "Recurve", int(i)*100, "2026-05-01")
		s.Competition = spring
		scores = append(scores, s)
	}
	repo.scores[10] = scores

	result, err := svc.Winners(context.Background(), champ.ChampionshipID)
	require.NoError(t, err)
	assert.Empty(t, result.Message)

	top := result.Winners["Male Open"]["Recurve"]
	require.Len(t, top, 3)
	assert.Equal(t, 400, top[0].TotalScore)
	assert.Equal(t, 200, top[2].TotalScore)
}

func TestChampionshipNoLinkedCompetitions(t *testing.T) {
	svc, repo := newTestChampionshipService()

	champ, err := svc.Create(context.Background(), ChampionshipInput{Name: "Club Championship", Year: 2026})
	require.NoError(t, err)

	winners, err := svc.Winners(context.Background(), champ.ChampionshipID)
	require.NoError(t, err)
	assert.Empty(t, winners.Winners)
	assert.Equal(t, "No competitions linked to this championship", winners.Message)

	standings, err := svc.Standings(context.Background(), champ.ChampionshipID)
	require.NoError(t, err)
	assert.Empty(t, standings.Standings)
	assert.Equal(t, "No competitions linked to this championship", standings.Message)

	// 无挂载比赛时不触发积分查询
	assert.Empty(t, repo.askedIDs)

	_, err = svc.Winners(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
