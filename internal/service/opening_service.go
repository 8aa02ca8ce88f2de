package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

const defaultOpeningDeadline = 7 * 24 * time.Hour

type openingRepository interface {
	List(ctx context.Context, filter models.OpeningFilter) ([]models.Opening, int, error)
	FindByID(ctx context.Context, id int64) (*models.Opening, error)
	Create(ctx context.Context, opening *models.Opening) error
	Update(ctx context.Context, opening *models.Opening) error
	Delete(ctx context.Context, id int64) error
}

// OpeningService manages the openings companies publish.
type OpeningService struct {
	repo            openingRepository
	cache           *CacheService
	validator       *validator.Validate
	logger          *zap.Logger
	defaultDeadline time.Duration
	now             func() time.Time
}

// NewOpeningService constructs an OpeningService. defaultDeadline applies when a request omits the deadline.
func NewOpeningService(repo openingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, defaultDeadline time.Duration) *OpeningService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDeadline <= 0 {
		defaultDeadline = defaultOpeningDeadline
	}
	return &OpeningService{repo: repo, cache: cache, validator: validate, logger: logger, defaultDeadline: defaultDeadline, now: time.Now}
}

// List returns openings. Companies only ever see their own.
func (s *OpeningService) List(ctx context.Context, filter models.OpeningFilter, actor *models.JWTClaims) ([]models.Opening, *models.Pagination, error) {
	if actor != nil && actor.Role == models.RoleCompany {
		filter.CompanyEmail = actor.Email
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	openings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list openings")
	}
	return openings, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one opening.
func (s *OpeningService) Get(ctx context.Context, id int64) (*models.Opening, error) {
	opening, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opening not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opening")
	}
	return opening, nil
}

// Create publishes an opening owned by the acting company.
func (s *OpeningService) Create(ctx context.Context, req models.OpeningRequest, actor *models.JWTClaims) (*models.Opening, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	opening, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	opening.CompanyEmail = actor.Email

	if err := s.repo.Create(ctx, opening); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create opening")
	}
	s.cache.InvalidateAllMatches(ctx)
	s.logger.Info("opening created", zap.Int64("opening_id", opening.ID), zap.String("company", opening.CompanyEmail))
	return opening, nil
}

// Update replaces every field of the opening, deadline included.
func (s *OpeningService) Update(ctx context.Context, id int64, req models.OpeningRequest, actor *models.JWTClaims) (*models.Opening, error) {
	existing, err := s.Authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	opening, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	opening.ID = existing.ID
	opening.CompanyEmail = existing.CompanyEmail
	opening.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, opening); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opening not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update opening")
	}
	s.cache.InvalidateAllMatches(ctx)
	return opening, nil
}

// Delete removes the opening together with its applications.
func (s *OpeningService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	if _, err := s.Authorize(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "opening not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete opening")
	}
	s.cache.InvalidateAllMatches(ctx)
	s.logger.Info("opening deleted", zap.Int64("opening_id", id))
	return nil
}

// Authorize loads the opening and checks the actor owns it. Admins may act on any opening.
func (s *OpeningService) Authorize(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Opening, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	opening, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && !strings.EqualFold(opening.CompanyEmail, actor.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "opening belongs to another company")
	}
	return opening, nil
}

func (s *OpeningService) fromRequest(req models.OpeningRequest) (*models.Opening, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	req.RequiredSkills = models.TrimAll(req.RequiredSkills)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opening payload")
	}

	deadline := s.now().UTC().Add(s.defaultDeadline)
	if req.Deadline != nil && !req.Deadline.IsZero() {
		deadline = req.Deadline.UTC()
	}
	return &models.Opening{
		Name:           req.Name,
		Specialization: req.Specialization,
		Location:       req.Location,
		Stipend:        req.Stipend,
		RequiredSkills: req.RequiredSkills,
		RequiredGPA:    req.RequiredGPA,
		Priority:       models.ParsePriority(string(req.Priority)),
		Deadline:       deadline,
	}, nil
}
