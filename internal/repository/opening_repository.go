package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ams-api/internal/models"
)

const openingColumns = "opening_id, company_email, opening_name, specialization, location, stipend, required_skills, required_gpa, priority, deadline, created_at, updated_at"

// OpeningRepository manages persistence for openings.
type OpeningRepository struct {
	db *sqlx.DB
}

// NewOpeningRepository constructs an OpeningRepository.
func NewOpeningRepository(db *sqlx.DB) *OpeningRepository {
	return &OpeningRepository{db: db}
}

// ListBySpecialization returns every opening in the field in creation order.
func (r *OpeningRepository) ListBySpecialization(ctx context.Context, specialization models.Specialization) ([]models.Opening, error) {
	query := fmt.Sprintf("SELECT %s FROM openings WHERE specialization = $1 ORDER BY opening_id", openingColumns)
	var rows []openingRow
	if err := r.db.SelectContext(ctx, &rows, query, string(specialization)); err != nil {
		return nil, fmt.Errorf("list openings by specialization: %w", err)
	}
	return decodeOpenings(rows), nil
}

// List returns openings matching the filter with the total count.
func (r *OpeningRepository) List(ctx context.Context, filter models.OpeningFilter) ([]models.Opening, int, error) {
	where := sq.Eq{}
	if filter.CompanyEmail != "" {
		where["company_email"] = filter.CompanyEmail
	}
	if filter.Specialization != "" {
		where["specialization"] = string(filter.Specialization)
	}
	if filter.Location != "" {
		where["location"] = filter.Location
	}
	page, size := normalizePage(filter.Page, filter.PageSize)

	listQuery, args, err := psql.Select(openingColumns).From("openings").Where(where).
		OrderBy("opening_id DESC").
		Limit(uint64(size)).Offset(uint64((page - 1) * size)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list openings: %w", err)
	}
	var rows []openingRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list openings: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("openings").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count openings: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count openings: %w", err)
	}
	return decodeOpenings(rows), total, nil
}

// FindByID fetches one opening. Missing openings yield sql.ErrNoRows.
func (r *OpeningRepository) FindByID(ctx context.Context, id int64) (*models.Opening, error) {
	query := fmt.Sprintf("SELECT %s FROM openings WHERE opening_id = $1", openingColumns)
	var row openingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find opening: %w", err)
	}
	opening := row.decode()
	return &opening, nil
}

// Create inserts the opening and stores the assigned id on it.
func (r *OpeningRepository) Create(ctx context.Context, opening *models.Opening) error {
	now := time.Now().UTC()
	opening.CreatedAt = now
	opening.UpdatedAt = now
	const query = `INSERT INTO openings (company_email, opening_name, specialization, location, stipend, required_skills, required_gpa, priority, deadline, created_at, updated_at)
        VALUES (:company_email, :opening_name, :specialization, :location, :stipend, :required_skills, :required_gpa, :priority, :deadline, :created_at, :updated_at)
        RETURNING opening_id`
	rows, err := r.db.NamedQueryContext(ctx, query, encodeOpening(opening))
	if err != nil {
		return fmt.Errorf("create opening: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create opening: %w", err)
		}
		return fmt.Errorf("create opening: no id returned")
	}
	if err := rows.Scan(&opening.ID); err != nil {
		return fmt.Errorf("scan opening id: %w", err)
	}
	return nil
}

// Update rewrites every field of the opening, deadline included.
func (r *OpeningRepository) Update(ctx context.Context, opening *models.Opening) error {
	opening.UpdatedAt = time.Now().UTC()
	const query = `UPDATE openings SET opening_name = :opening_name, specialization = :specialization, location = :location,
        stipend = :stipend, required_skills = :required_skills, required_gpa = :required_gpa, priority = :priority,
        deadline = :deadline, updated_at = :updated_at WHERE opening_id = :opening_id`
	res, err := r.db.NamedExecContext(ctx, query, encodeOpening(opening))
	if err != nil {
		return fmt.Errorf("update opening: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the opening and its applications in one transaction.
func (r *OpeningRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete opening: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM applications WHERE opening_id = $1", id); err != nil {
		return fmt.Errorf("delete opening applications: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM openings WHERE opening_id = $1", id)
	if err != nil {
		return fmt.Errorf("delete opening: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete opening: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete opening: %w", err)
	}
	return nil
}
