package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ams-api/internal/models"
)

// ApplicationRepository persists (student, opening) applications.
// Uniqueness of the pair is enforced by the applications_student_opening_key constraint.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Insert creates the application, returning ErrDuplicateApplication when the pair already exists.
func (r *ApplicationRepository) Insert(ctx context.Context, studentEmail string, openingID int64) (*models.Application, error) {
	app := &models.Application{
		ID:           uuid.NewString(),
		StudentEmail: studentEmail,
		OpeningID:    openingID,
		CreatedAt:    time.Now().UTC(),
	}
	const query = `INSERT INTO applications (id, student_email, opening_id, created_at) VALUES (:id, :student_email, :opening_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

// Delete removes the application if present. Deleting a missing pair is not an error.
func (r *ApplicationRepository) Delete(ctx context.Context, studentEmail string, openingID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE student_email = $1 AND opening_id = $2`, studentEmail, openingID)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	return affected > 0, nil
}

// Find returns the application for the pair, or sql.ErrNoRows.
func (r *ApplicationRepository) Find(ctx context.Context, studentEmail string, openingID int64) (*models.Application, error) {
	const query = `SELECT id, student_email, opening_id, created_at FROM applications WHERE student_email = $1 AND opening_id = $2`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, studentEmail, openingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// Exists reports whether the pair currently has an application.
func (r *ApplicationRepository) Exists(ctx context.Context, studentEmail string, openingID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE student_email = $1 AND opening_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentEmail, openingID); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// ListByOpening returns an opening's applications, oldest first.
func (r *ApplicationRepository) ListByOpening(ctx context.Context, openingID int64) ([]models.Application, error) {
	const query = `SELECT id, student_email, opening_id, created_at FROM applications WHERE opening_id = $1 ORDER BY created_at, id`
	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, openingID); err != nil {
		return nil, fmt.Errorf("list applications by opening: %w", err)
	}
	return apps, nil
}

// ListByStudent returns a student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentEmail string) ([]models.Application, error) {
	const query = `SELECT id, student_email, opening_id, created_at FROM applications WHERE student_email = $1 ORDER BY created_at DESC, id`
	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, studentEmail); err != nil {
		return nil, fmt.Errorf("list applications by student: %w", err)
	}
	return apps, nil
}
