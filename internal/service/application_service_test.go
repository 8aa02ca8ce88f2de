package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type notifierStub struct {
	calls []models.Opening
	err   error
}

func (n *notifierStub) ApplicationReceived(ctx context.Context, student models.Student, opening models.Opening) error {
	n.calls = append(n.calls, opening)
	return n.err
}

type applicationFixture struct {
	svc      *ApplicationService
	apps     *fakeApplicationRepo
	cache    *fakeCacheRepo
	metrics  *MetricsService
	notifier *notifierStub
	now      time.Time
}

const (
	openOpeningID   int64 = 1
	closedOpeningID int64 = 2
)

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	students := newFakeStudentRepo(sampleStudent("alice@example.com", 3.8, "Riyadh"))
	openings := newFakeOpeningRepo(
		models.Opening{ID: openOpeningID, CompanyEmail: "hr@acme.test", Name: "Backend", Specialization: models.SpecializationSoftware, Location: "Riyadh", Stipend: 3000, Priority: models.PriorityLocation, Deadline: now.Add(48 * time.Hour)},
		models.Opening{ID: closedOpeningID, CompanyEmail: "hr@acme.test", Name: "Frontend", Specialization: models.SpecializationSoftware, Location: "Riyadh", Stipend: 2000, Priority: models.PriorityLocation, Deadline: now.Add(-time.Hour)},
	)
	cacheRepo := newFakeCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	apps := newFakeApplicationRepo()
	notifier := &notifierStub{}

	studentSvc := NewStudentService(students, cache, nil, zap.NewNop())
	openingSvc := NewOpeningService(openings, cache, nil, zap.NewNop(), 0)
	svc := NewApplicationService(apps, openings, studentSvc, openingSvc, notifier, cache, metrics, zap.NewNop())
	svc.now = fixedClock(now)

	return &applicationFixture{svc: svc, apps: apps, cache: cacheRepo, metrics: metrics, notifier: notifier, now: now}
}

func TestApplyTwiceReportsAlreadyApplied(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	first, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, models.ApplicationApplied, first.State)
	assert.False(t, first.AppliedAt.IsZero())

	second, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, models.ApplicationApplied, second.State)
	assert.Equal(t, first.AppliedAt, second.AppliedAt)

	state, err := f.svc.State(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, state)

	assert.Len(t, f.notifier.calls, 1)
	outcomes := f.metrics.Snapshot().Applications
	assert.Equal(t, uint64(1), outcomes[OutcomeCreated])
	assert.Equal(t, uint64(1), outcomes[OutcomeAlreadyApplied])
}

func TestApplyAfterDeadlineIsRejected(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	res, err := f.svc.Apply(ctx, "alice@example.com", closedOpeningID)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, appErrors.ErrDeadlinePassed.Code, appErrors.FromError(err).Code)

	state, err := f.svc.State(ctx, "alice@example.com", closedOpeningID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationNotApplied, state)
	assert.Empty(t, f.notifier.calls)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Applications[OutcomeDeadlinePassed])
}

func TestApplyAtExactDeadlineIsAccepted(t *testing.T) {
	f := newApplicationFixture(t)
	f.svc.now = fixedClock(f.now.Add(48 * time.Hour))

	res, err := f.svc.Apply(context.Background(), "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestCancelIsAllowedAfterDeadline(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.apps.Insert(ctx, "alice@example.com", closedOpeningID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, "alice@example.com", closedOpeningID))

	state, err := f.svc.State(ctx, "alice@example.com", closedOpeningID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationNotApplied, state)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Applications[OutcomeCancelled])
}

func TestReapplyAfterCancel(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, "alice@example.com", openOpeningID))

	res, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Len(t, f.notifier.calls, 2)
}

func TestCancelWithoutApplicationIsNoop(t *testing.T) {
	f := newApplicationFixture(t)

	require.NoError(t, f.svc.Cancel(context.Background(), "alice@example.com", openOpeningID))
	assert.Zero(t, f.metrics.Snapshot().Applications[OutcomeCancelled])
	assert.Empty(t, f.cache.deletes)
}

func TestApplyRequiresStudentAndOpening(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, "ghost@example.com", openOpeningID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Apply(ctx, "alice@example.com", 999)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "opening not found", appErr.Message)
}

func TestApplyInvalidatesStudentMatches(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	key := MatchCacheKey("alice@example.com")
	require.NoError(t, f.cache.Set(ctx, key, []models.Opening{}, time.Minute))

	_, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.False(t, f.cache.has(key))
}

func TestApplySurvivesNotifierFailure(t *testing.T) {
	f := newApplicationFixture(t)
	f.notifier.err = errors.New("queue full")

	res, err := f.svc.Apply(context.Background(), "alice@example.com", openOpeningID)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestListForStudentMarksClosedOpenings(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	_, err := f.apps.Insert(ctx, "alice@example.com", closedOpeningID)
	require.NoError(t, err)
	_, err = f.apps.Insert(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)

	items, err := f.svc.ListForStudent(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, openOpeningID, items[0].Opening.ID)
	assert.False(t, items[0].Closed)
	assert.Equal(t, closedOpeningID, items[1].Opening.ID)
	assert.True(t, items[1].Closed)
}

func TestListApplicantsOwnerOnly(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	_, err := f.svc.Apply(ctx, "alice@example.com", openOpeningID)
	require.NoError(t, err)

	apps, err := f.svc.ListApplicants(ctx, openOpeningID, companyActor("hr@acme.test"))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "alice@example.com", apps[0].StudentEmail)

	_, err = f.svc.ListApplicants(ctx, openOpeningID, companyActor("hr@other.test"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
