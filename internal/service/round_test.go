package service

import (
	"context"
	"testing"

	"ArcheryClub/internal/model"
	"ArcheryClub/internal/repository"
	"ArcheryClub/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEqRepo struct {
	rules  map[uint]*model.EquivalentRound
	nextID uint
}

func newFakeEqRepo(rules ...*model.EquivalentRound) *fakeEqRepo {
	f := &fakeEqRepo{rules: make(map[uint]*model.EquivalentRound), nextID: 1}
	for _, r := range rules {
		if r.EquivalentID == 0 {
			r.EquivalentID = f.nextID
		}
		if r.EquivalentID >= f.nextID {
			f.nextID = r.EquivalentID + 1
		}
		f.rules[r.EquivalentID] = r
	}
	return f
}

func (f *fakeEqRepo) Create(_ context.Context, eq *model.EquivalentRound) error {
	eq.EquivalentID = f.nextID
	f.nextID++
	f.rules[eq.EquivalentID] = eq
	return nil
}

func (f *fakeEqRepo) GetByID(_ context.Context, id uint) (*model.EquivalentRound, error) {
	eq, ok := f.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return eq, nil
}

func (f *fakeEqRepo) List(_ context.Context, filter repository.EquivalentFilter) ([]*model.EquivalentRound, error) {
	var out []*model.EquivalentRound
	for id := uint(1); id < f.nextID; id++ {
		eq, ok := f.rules[id]
		if !ok {
			continue
		}
		if filter.BaseRoundID != 0 && eq.BaseRoundID != filter.BaseRoundID {
			continue
		}
		if filter.CategoryID != 0 && eq.CategoryID != filter.CategoryID {
			continue
		}
		if len(filter.CategoryIDs) > 0 {
			matched := false
			for _, cid := range filter.CategoryIDs {
				if eq.CategoryID == cid {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if !filter.ActiveOn.IsZero() && !utils.IsDateInRange(filter.ActiveOn, eq.StartDate, eq.EndDate) {
			continue
		}
		out = append(out, eq)
	}
	return out, nil
}

func (f *fakeEqRepo) Updates(_ context.Context, id uint, fields map[string]interface{}) error {
	eq, ok := f.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["base_round_id"]; ok {
		eq.BaseRoundID = v.(uint)
	}
	if v, ok := fields["equivalent_round_id"]; ok {
		eq.EquivalentRoundID = v.(uint)
	}
	return nil
}

func (f *fakeEqRepo) Delete(_ context.Context, id uint) error {
	delete(f.rules, id)
	return nil
}

type fakeArcherRepo struct {
	archers map[uint]*model.Archer
}

func (f *fakeArcherRepo) Create(_ context.Context, _ *model.Archer) error { return nil }
func (f *fakeArcherRepo) GetByID(_ context.Context, id uint) (*model.Archer, error) {
	a, ok := f.archers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}
func (f *fakeArcherRepo) GetByEmail(_ context.Context, _ string) (*model.Archer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeArcherRepo) List(_ context.Context, _ repository.ArcherFilter) ([]*model.Archer, error) {
	return nil, nil
}
func (f *fakeArcherRepo) Updates(_ context.Context, _ uint, _ map[string]interface{}) error {
	return nil
}
func (f *fakeArcherRepo) Delete(_ context.Context, _ uint) error { return nil }

type fakeMetadataRepo struct {
	categories []*model.Category
}

func (f *fakeMetadataRepo) ListClasses(_ context.Context) ([]*model.Class, error) { return nil, nil }
func (f *fakeMetadataRepo) GetClassByID(_ context.Context, _ uint) (*model.Class, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMetadataRepo) GetClassByName(_ context.Context, _ string) (*model.Class, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMetadataRepo) ListDivisions(_ context.Context) ([]*model.Division, error) {
	return nil, nil
}
func (f *fakeMetadataRepo) GetDivisionByID(_ context.Context, _ uint) (*model.Division, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMetadataRepo) ListCategories(_ context.Context) ([]*model.Category, error) {
	return f.categories, nil
}
func (f *fakeMetadataRepo) GetCategory(_ context.Context, classID, divisionID uint) (*model.Category, error) {
	for _, c := range f.categories {
		if c.ClassID == classID && c.DivisionID == divisionID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMetadataRepo) CreateCategory(_ context.Context, category *model.Category) error {
	f.categories = append(f.categories, category)
	return nil
}

func uintPtr(v uint) *uint { return &v }

func newTestRoundService(archers map[uint]*model.Archer, categories []*model.Category, rules ...*model.EquivalentRound) *RoundService {
	return NewRoundService(
		newFakeRoundRepo(testRound()),
		newFakeEqRepo(rules...),
		&fakeArcherRepo{archers: archers},
		&fakeMetadataRepo{categories: categories},
		testLogger(),
	)
}

func TestValidateRanges(t *testing.T) {
	problems := validateRanges([]RangeInput{
		{RangeNo: 2, Distance: 70, Ends: 6},
		{Distance: 0, Ends: 60, ArrowsPerEnd: 13},
	})
	require.Len(t, problems, 4)
	assert.Equal(t, "Range 1: range_no must be 1", problems[0])
	assert.Equal(t, "Range 2: distance is required", problems[1])
	assert.Equal(t, "Range 2: ends must be between 1 and 50", problems[2])
	assert.Equal(t, "Range 2: arrows_per_end must be between 1 and 12", problems[3])
}

func TestBuildRangesDefaults(t *testing.T) {
	built := buildRanges([]RangeInput{{Distance: 70, Ends: 6}})
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].RangeNo)
	assert.Equal(t, "122cm", built[0].TargetFace)
	assert.Equal(t, model.ScoringTenZone, built[0].ScoringType)
	assert.Equal(t, 6, built[0].ArrowsPerEnd)
}

func TestRoundCreateNameUnique(t *testing.T) {
	svc := newTestRoundService(nil, nil)

	_, err := svc.Create(context.Background(), RoundInput{
		Name:   "Test Round", // 与已有轮同名
		Ranges: []RangeInput{{Distance: 70, Ends: 6}},
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Round name already exists")

	round, err := svc.Create(context.Background(), RoundInput{
		Name:   "WA 70m",
		Ranges: []RangeInput{{Distance: 70, Ends: 12, ArrowsPerEnd: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, "WA 70m", round.Name)
	require.Len(t, round.Ranges, 1)
}

func TestCreateEquivalentSelfReference(t *testing.T) {
	svc := newTestRoundService(nil, nil)
	_, err := svc.CreateEquivalent(context.Background(), EquivalentInput{
		BaseRoundID:       1,
		EquivalentRoundID: 1,
		CategoryID:        1,
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Base and equivalent rounds cannot be the same", ve.Message)
}

func TestEquivalentsForDateWindow(t *testing.T) {
	end := day("2026-06-30")
	svc := newTestRoundService(nil, nil,
		&model.EquivalentRound{BaseRoundID: 1, EquivalentRoundID: 2, CategoryID: 1,
			StartDate: day("2026-01-01"), EndDate: &end},
		&model.EquivalentRound{BaseRoundID: 1, EquivalentRoundID: 3, CategoryID: 1,
			StartDate: day("2026-01-01")},
	)

	list, err := svc.EquivalentsFor(context.Background(), 1, 1, day("2026-03-01"))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// 过了截止日仅开放窗口的规则生效
	list, err = svc.EquivalentsFor(context.Background(), 1, 1, day("2026-07-01"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(3), list[0].EquivalentRoundID)
}

func TestEligibleRounds(t *testing.T) {
	category := &model.Category{CategoryID: 1, ClassID: 3, DivisionID: 4, Name: "Male Open Recurve"}
	base := &model.Round{RoundID: 1, Name: "WA 70m"}
	eq1 := &model.Round{RoundID: 2, Name: "WA 60m"}
	eq2 := &model.Round{RoundID: 3, Name: "Short Metric"}

	t.Run("no class assigned", func(t *testing.T) {
		svc := newTestRoundService(map[uint]*model.Archer{
			1: {ArcherID: 1, FirstName: "Robin", LastName: "Hood"},
		}, nil)
		_, err := svc.EligibleRounds(context.Background(), 1)
		ve, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "Archer does not have a class assigned", ve.Message)
		require.Len(t, ve.Details, 1)
		assert.Equal(t, "Please contact an administrator to assign a class to your profile", ve.Details[0])
	})

	t.Run("no default division", func(t *testing.T) {
		svc := newTestRoundService(map[uint]*model.Archer{
			1: {ArcherID: 1, FirstName: "Robin", LastName: "Hood", ClassID: uintPtr(3)},
		}, []*model.Category{category})
		result, err := svc.EligibleRounds(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, result.EligibleRounds)
		assert.Equal(t, "No categories found for your class", result.Message)
	})

	t.Run("grouped by base round", func(t *testing.T) {
		svc := newTestRoundService(map[uint]*model.Archer{
			1: {
				ArcherID: 1, FirstName: "Robin", LastName: "Hood",
				ClassID: uintPtr(3), DefaultDivisionID: uintPtr(4),
				Class:    &model.Class{ClassID: 3, Name: "Male Open"},
				DefaultDivision: &model.Division{DivisionID: 4, Name: "Recurve"},
			},
		}, []*model.Category{category},
			&model.EquivalentRound{BaseRoundID: 1, EquivalentRoundID: 2, CategoryID: 1,
				StartDate: day("2020-01-01"), BaseRound: base, Equivalent: eq1, Category: category},
			&model.EquivalentRound{BaseRoundID: 1, EquivalentRoundID: 3, CategoryID: 1,
				StartDate: day("2020-01-01"), BaseRound: base, Equivalent: eq2, Category: category},
		)

		result, err := svc.EligibleRounds(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Robin Hood", result.ArcherName)
		assert.Equal(t, "Male Open", result.ClassName)
		assert.Equal(t, "Recurve", result.DivisionName)

		require.Len(t, result.EligibleRounds, 1)
		group := result.EligibleRounds[0]
		assert.Equal(t, "WA 70m", group.BaseRound.Name)
		require.Len(t, group.EquivalentRounds, 2)
		assert.Equal(t, []string{"Male Open Recurve"}, group.Categories)
	})
}
