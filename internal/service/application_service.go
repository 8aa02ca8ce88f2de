package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/internal/repository"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type applicationRepository interface {
	Insert(ctx context.Context, studentEmail string, openingID int64) (*models.Application, error)
	Delete(ctx context.Context, studentEmail string, openingID int64) (bool, error)
	Find(ctx context.Context, studentEmail string, openingID int64) (*models.Application, error)
	Exists(ctx context.Context, studentEmail string, openingID int64) (bool, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]models.Application, error)
	ListByOpening(ctx context.Context, openingID int64) ([]models.Application, error)
}

type applicationOpeningRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Opening, error)
}

// ApplicationNotifier is told about newly created applications.
type ApplicationNotifier interface {
	ApplicationReceived(ctx context.Context, student models.Student, opening models.Opening) error
}

// ApplicationService governs the apply, cancel and state lifecycle of a (student, opening) pair.
type ApplicationService struct {
	apps     applicationRepository
	openings applicationOpeningRepository
	students studentLookup
	authz    openingAuthorizer
	notifier ApplicationNotifier
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewApplicationService constructs an ApplicationService. notifier may be nil.
func NewApplicationService(apps applicationRepository, openings applicationOpeningRepository, students studentLookup, authz openingAuthorizer, notifier ApplicationNotifier, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		apps:     apps,
		openings: openings,
		students: students,
		authz:    authz,
		notifier: notifier,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply moves the pair to APPLIED. An existing application is reported through Created=false rather than an error;
// a passed deadline is rejected with ErrDeadlinePassed and leaves the state unchanged.
func (s *ApplicationService) Apply(ctx context.Context, studentEmail string, openingID int64) (*models.ApplyResult, error) {
	student, err := s.students.Get(ctx, studentEmail)
	if err != nil {
		return nil, err
	}
	opening, err := s.loadOpening(ctx, openingID)
	if err != nil {
		return nil, err
	}

	if opening.DeadlinePassed(s.now()) {
		s.metrics.RecordApplication(OutcomeDeadlinePassed)
		return nil, appErrors.Clone(appErrors.ErrDeadlinePassed, "application deadline has passed")
	}

	app, err := s.apps.Insert(ctx, studentEmail, openingID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			s.metrics.RecordApplication(OutcomeAlreadyApplied)
			result := &models.ApplyResult{Created: false, State: models.ApplicationApplied}
			if existing, findErr := s.apps.Find(ctx, studentEmail, openingID); findErr == nil {
				result.AppliedAt = existing.CreatedAt
			}
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.metrics.RecordApplication(OutcomeCreated)
	s.cache.InvalidateStudentMatches(ctx, studentEmail)
	if s.notifier != nil {
		if err := s.notifier.ApplicationReceived(ctx, *student, *opening); err != nil {
			s.logger.Warn("failed to queue application notification", zap.Int64("opening_id", openingID), zap.Error(err))
		}
	}
	s.logger.Info("application created", zap.String("student", studentEmail), zap.Int64("opening_id", openingID))

	return &models.ApplyResult{Created: true, State: models.ApplicationApplied, AppliedAt: app.CreatedAt}, nil
}

// Cancel moves the pair back to NOT_APPLIED. It is allowed after the deadline and is a no-op when nothing was applied.
func (s *ApplicationService) Cancel(ctx context.Context, studentEmail string, openingID int64) error {
	removed, err := s.apps.Delete(ctx, studentEmail, openingID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel application")
	}
	if removed {
		s.metrics.RecordApplication(OutcomeCancelled)
		s.cache.InvalidateStudentMatches(ctx, studentEmail)
		s.logger.Info("application cancelled", zap.String("student", studentEmail), zap.Int64("opening_id", openingID))
	}
	return nil
}

// State reports whether the pair is currently APPLIED.
func (s *ApplicationService) State(ctx context.Context, studentEmail string, openingID int64) (models.ApplicationState, error) {
	exists, err := s.apps.Exists(ctx, studentEmail, openingID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application state")
	}
	if exists {
		return models.ApplicationApplied, nil
	}
	return models.ApplicationNotApplied, nil
}

// ListForStudent returns the student's applications with their openings, newest first.
func (s *ApplicationService) ListForStudent(ctx context.Context, studentEmail string) ([]models.StudentApplication, error) {
	apps, err := s.apps.ListByStudent(ctx, studentEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	now := s.now()
	out := make([]models.StudentApplication, 0, len(apps))
	for _, app := range apps {
		opening, err := s.openings.FindByID(ctx, app.OpeningID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opening")
		}
		out = append(out, models.StudentApplication{Application: app, Opening: *opening, Closed: opening.DeadlinePassed(now)})
	}
	return out, nil
}

// ListApplicants returns the raw applications of an opening in arrival order. Only the owner may read them.
func (s *ApplicationService) ListApplicants(ctx context.Context, openingID int64, actor *models.JWTClaims) ([]models.Application, error) {
	if _, err := s.authz.Authorize(ctx, openingID, actor); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByOpening(ctx, openingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	return apps, nil
}

func (s *ApplicationService) loadOpening(ctx context.Context, id int64) (*models.Opening, error) {
	opening, err := s.openings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opening not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opening")
	}
	return opening, nil
}
