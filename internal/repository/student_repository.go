package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ams-api/internal/models"
)

const studentColumns = "student_id, name, email, mobile_number, gpa, specialization, preferred_locations, skills, created_at, updated_at"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// StudentRepository manages persistence for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns student profiles matching the filter together with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := sq.And{}
	if filter.Specialization != "" {
		where = append(where, sq.Eq{"specialization": string(filter.Specialization)})
	}
	if filter.MinGPA != nil {
		where = append(where, sq.GtOrEq{"gpa": *filter.MinGPA})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		where = append(where, sq.Or{
			sq.Like{"LOWER(name)": pattern},
			sq.Like{"LOWER(email)": pattern},
			sq.Like{"LOWER(student_id)": pattern},
		})
	}

	allowedSorts := map[string]string{
		"name":       "name",
		"gpa":        "gpa",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := normalizePage(filter.Page, filter.PageSize)

	listQuery, args, err := psql.Select(studentColumns).From("students").Where(where).
		OrderBy(column + " " + order).
		Limit(uint64(size)).Offset(uint64((page - 1) * size)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list students: %w", err)
	}
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return decodeStudents(rows), total, nil
}

// FindByEmail fetches a profile by its owner's email. Missing profiles yield sql.ErrNoRows.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID fetches a profile by student id.
func (r *StudentRepository) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	return r.findOne(ctx, "student_id", studentID)
}

func (r *StudentRepository) findOne(ctx context.Context, column, value string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE %s = $1 LIMIT 1", studentColumns, column)
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by %s: %w", column, err)
	}
	student := row.decode()
	return &student, nil
}

// ListByEmails returns the profiles for the given emails, in email order.
func (r *StudentRepository) ListByEmails(ctx context.Context, emails []string) ([]models.Student, error) {
	if len(emails) == 0 {
		return []models.Student{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = ANY($1) ORDER BY email", studentColumns)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(emails)); err != nil {
		return nil, fmt.Errorf("list students by email: %w", err)
	}
	return decodeStudents(rows), nil
}

// ExistsByStudentID checks whether the student id is taken by a profile other than excludeEmail.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID, excludeEmail string) (bool, error) {
	query := "SELECT 1 FROM students WHERE student_id = $1"
	args := []interface{}{studentID}
	if excludeEmail != "" {
		query += " AND email <> $2"
		args = append(args, excludeEmail)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student id: %w", err)
	}
	return true, nil
}

// Create inserts a new profile.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (student_id, name, email, mobile_number, gpa, specialization, preferred_locations, skills, created_at, updated_at)
        VALUES (:student_id, :name, :email, :mobile_number, :gpa, :specialization, :preferred_locations, :skills, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, encodeStudent(student)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites every profile field of the student identified by email.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_id = :student_id, name = :name, mobile_number = :mobile_number, gpa = :gpa,
        specialization = :specialization, preferred_locations = :preferred_locations, skills = :skills, updated_at = :updated_at
        WHERE email = :email`
	res, err := r.db.NamedExecContext(ctx, query, encodeStudent(student))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update student: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
