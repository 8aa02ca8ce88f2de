package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/internal/repository"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByStudentID(ctx context.Context, studentID, excludeEmail string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// StudentService manages student profiles.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns profiles for the admin listing.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.Specialization != "" && !models.ValidSpecialization(filter.Specialization) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown specialization")
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns the profile owned by email.
func (s *StudentService) Get(ctx context.Context, email string) (*models.Student, error) {
	student, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return student, nil
}

// Save creates the profile or replaces every field of an existing one. It reports whether a profile was created.
func (s *StudentService) Save(ctx context.Context, email string, req models.StudentProfileRequest) (*models.Student, bool, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.PreferredLocations = models.TrimAll(req.PreferredLocations)
	req.Skills = models.TrimAll(req.Skills)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student profile")
	}

	taken, err := s.repo.ExistsByStudentID(ctx, req.StudentID, email)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id")
	}
	if taken {
		return nil, false, appErrors.Clone(appErrors.ErrConflict, "student id already registered")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	student := &models.Student{
		StudentID:          req.StudentID,
		Name:               req.Name,
		Email:              email,
		MobileNumber:       req.MobileNumber,
		GPA:                req.GPA,
		Specialization:     req.Specialization,
		PreferredLocations: req.PreferredLocations,
		Skills:             req.Skills,
	}

	created := existing == nil
	if created {
		err = s.repo.Create(ctx, student)
	} else {
		student.CreatedAt = existing.CreatedAt
		err = s.repo.Update(ctx, student)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, false, appErrors.Clone(appErrors.ErrConflict, "student id already registered")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student profile")
	}

	s.cache.InvalidateStudentMatches(ctx, email)
	s.logger.Info("student profile saved", zap.String("email", email), zap.Bool("created", created))
	return student, created, nil
}
