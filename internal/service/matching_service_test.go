package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type matchingFixture struct {
	svc      *MatchingService
	openings *fakeOpeningRepo
	apps     *fakeApplicationRepo
	cache    *fakeCacheRepo
	metrics  *MetricsService
	now      time.Time
}

func newMatchingFixture(t *testing.T, students []models.Student, openings []models.Opening) *matchingFixture {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	studentRepo := newFakeStudentRepo(students...)
	openingRepo := newFakeOpeningRepo(openings...)
	apps := newFakeApplicationRepo()
	cacheRepo := newFakeCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)

	svc := NewMatchingService(MatchingDeps{
		Students:     NewStudentService(studentRepo, cache, nil, zap.NewNop()),
		Openings:     NewOpeningService(openingRepo, cache, nil, zap.NewNop(), 0),
		OpeningRepo:  openingRepo,
		StudentRepo:  studentRepo,
		Applications: apps,
		Cache:        cache,
		Metrics:      metrics,
		Logger:       zap.NewNop(),
	})
	svc.now = fixedClock(now)
	return &matchingFixture{svc: svc, openings: openingRepo, apps: apps, cache: cacheRepo, metrics: metrics, now: now}
}

func locationOpening(id int64, location string, stipend float64, deadline time.Time) models.Opening {
	return models.Opening{
		ID:             id,
		CompanyEmail:   "hr@acme.test",
		Name:           location + " apprentice",
		Specialization: models.SpecializationSoftware,
		Location:       location,
		Stipend:        stipend,
		RequiredSkills: []string{"go", "kubernetes"},
		Priority:       models.PriorityLocation,
		Deadline:       deadline,
	}
}

func TestOpeningsForStudentRanksAndAnnotates(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	student := sampleStudent("sara@example.com", 3.5, "Riyadh", "Jeddah", "Dammam")
	f := newMatchingFixture(t, []models.Student{student}, []models.Opening{
		locationOpening(1, "Dammam", 9000, now.Add(time.Hour)),
		locationOpening(2, "Jeddah", 5000, now.Add(-time.Hour)),
		locationOpening(3, "Riyadh", 1000, now.Add(time.Hour)),
		{ID: 4, Specialization: models.SpecializationCivil, Location: "Riyadh", Stipend: 99999, Priority: models.PriorityLocation},
	})
	_, err := f.apps.Insert(context.Background(), student.Email, 1)
	require.NoError(t, err)

	ranked, cached, err := f.svc.OpeningsForStudent(context.Background(), student.Email)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, ranked, 3)

	ids := []int64{ranked[0].Opening.ID, ranked[1].Opening.ID, ranked[2].Opening.ID}
	assert.Equal(t, []int64{3, 2, 1}, ids)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	assert.True(t, ranked[1].Closed)
	assert.False(t, ranked[0].Closed)
	assert.True(t, ranked[2].Applied)
	assert.False(t, ranked[0].Applied)
	assert.Equal(t, []string{"go"}, ranked[0].MatchedSkills)
	assert.InDelta(t, 0.5, ranked[0].SkillOverlap, 1e-9)
}

func TestOpeningsForStudentUsesCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	student := sampleStudent("sara@example.com", 3.5, "Riyadh")
	f := newMatchingFixture(t, []models.Student{student}, []models.Opening{
		locationOpening(1, "Riyadh", 1000, now.Add(time.Hour)),
	})
	ctx := context.Background()

	_, cached, err := f.svc.OpeningsForStudent(ctx, student.Email)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, f.cache.has(MatchCacheKey(student.Email)))

	again, cached, err := f.svc.OpeningsForStudent(ctx, student.Email)
	require.NoError(t, err)
	assert.True(t, cached)
	require.Len(t, again, 1)
	assert.Equal(t, 1, f.openings.bySpecCall)

	snapshot := f.metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestOpeningsForStudentAppliedReflectsLatestState(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	student := sampleStudent("sara@example.com", 3.5, "Riyadh")
	f := newMatchingFixture(t, []models.Student{student}, []models.Opening{
		locationOpening(1, "Riyadh", 1000, now.Add(time.Hour)),
	})
	ctx := context.Background()

	first, _, err := f.svc.OpeningsForStudent(ctx, student.Email)
	require.NoError(t, err)
	assert.False(t, first[0].Applied)

	_, err = f.apps.Insert(ctx, student.Email, 1)
	require.NoError(t, err)
	second, _, err := f.svc.OpeningsForStudent(ctx, student.Email)
	require.NoError(t, err)
	assert.True(t, second[0].Applied)
}

func TestOpeningsForStudentWithoutProfile(t *testing.T) {
	f := newMatchingFixture(t, nil, nil)

	_, _, err := f.svc.OpeningsForStudent(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicantsForOpeningRanksApplicantsOnly(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	first := sampleStudent("first@example.com", 3.2, "Riyadh")
	second := sampleStudent("second@example.com", 3.9, "Jeddah", "Riyadh")
	third := sampleStudent("third@example.com", 3.9, "Riyadh", "Jeddah")
	elsewhere := sampleStudent("elsewhere@example.com", 4.0, "Abha")
	idle := sampleStudent("idle@example.com", 5.0, "Riyadh")
	opening := locationOpening(7, "Riyadh", 4000, now.Add(time.Hour))
	opening.RequiredGPA = 3.0

	f := newMatchingFixture(t, []models.Student{first, second, third, elsewhere, idle}, []models.Opening{opening})
	ctx := context.Background()
	for _, s := range []models.Student{first, second, third, elsewhere} {
		_, err := f.apps.Insert(ctx, s.Email, opening.ID)
		require.NoError(t, err)
	}

	got, ranked, err := f.svc.ApplicantsForOpening(ctx, opening.ID, companyActor("hr@acme.test"))
	require.NoError(t, err)
	assert.Equal(t, opening.ID, got.ID)
	require.Len(t, ranked, 3)

	emails := []string{ranked[0].Student.Email, ranked[1].Student.Email, ranked[2].Student.Email}
	assert.Equal(t, []string{"third@example.com", "first@example.com", "second@example.com"}, emails)
	require.NotNil(t, ranked[0].PreferenceRank)
	assert.Equal(t, 1, *ranked[0].PreferenceRank)
	require.NotNil(t, ranked[2].PreferenceRank)
	assert.Equal(t, 2, *ranked[2].PreferenceRank)
	assert.False(t, ranked[0].AppliedAt.IsZero())
}

func TestApplicantsForOpeningGPAPriority(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	low := sampleStudent("low@example.com", 3.1, "Riyadh")
	high := sampleStudent("high@example.com", 3.7, "Jeddah", "Riyadh")
	opening := locationOpening(8, "Riyadh", 4000, now.Add(time.Hour))
	opening.Priority = models.PriorityGPA

	f := newMatchingFixture(t, []models.Student{low, high}, []models.Opening{opening})
	ctx := context.Background()
	for _, s := range []models.Student{low, high} {
		_, err := f.apps.Insert(ctx, s.Email, opening.ID)
		require.NoError(t, err)
	}

	_, ranked, err := f.svc.ApplicantsForOpening(ctx, opening.ID, companyActor("hr@acme.test"))
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "high@example.com", ranked[0].Student.Email)
}

func TestApplicantsForOpeningForbiddenForOtherCompany(t *testing.T) {
	opening := locationOpening(9, "Riyadh", 4000, time.Time{})
	f := newMatchingFixture(t, nil, []models.Opening{opening})

	_, _, err := f.svc.ApplicantsForOpening(context.Background(), opening.ID, companyActor("hr@rival.test"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
