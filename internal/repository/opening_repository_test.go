package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ams-api/internal/models"
)

var openingCols = []string{"opening_id", "company_email", "opening_name", "specialization", "location", "stipend", "required_skills", "required_gpa", "priority", "deadline", "created_at", "updated_at"}

func TestOpeningRepositoryListBySpecialization(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM openings WHERE specialization = $1 ORDER BY opening_id")).
		WithArgs("Software Engineering").
		WillReturnRows(sqlmock.NewRows(openingCols).
			AddRow(1, "hr@acme.io", "Backend", "Software Engineering", "Riyadh", 4000.0, "go,sql", 3.0, "gpa", "2025-05-01T10:00:00", now, now).
			AddRow(2, "hr@acme.io", "Frontend", "Software Engineering", "Jeddah", 3000.0, "", 0.0, "LOCATION", nil, now, now))

	openings, err := repo.ListBySpecialization(context.Background(), models.SpecializationSoftware)
	require.NoError(t, err)
	require.Len(t, openings, 2)
	assert.Equal(t, models.PriorityGPA, openings[0].Priority)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), openings[0].Deadline)
	assert.Equal(t, []string{"go", "sql"}, openings[0].RequiredSkills)
	assert.Equal(t, models.PriorityLocation, openings[1].Priority)
	assert.False(t, openings[1].HasDeadline())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpeningRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	mock.ExpectQuery("INSERT INTO openings (.+) RETURNING opening_id").
		WillReturnRows(sqlmock.NewRows([]string{"opening_id"}).AddRow(42))

	opening := &models.Opening{CompanyEmail: "hr@acme.io", Name: "Backend", Specialization: models.SpecializationSoftware, Location: "Riyadh", Stipend: 4000, Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), opening))
	assert.Equal(t, int64(42), opening.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpeningRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	mock.ExpectQuery(`SELECT opening_id, (.+) FROM openings WHERE company_email = \$1 ORDER BY opening_id DESC LIMIT 20 OFFSET 0`).
		WithArgs("hr@acme.io").
		WillReturnRows(sqlmock.NewRows(openingCols))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM openings WHERE company_email = \$1`).
		WithArgs("hr@acme.io").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	openings, total, err := repo.List(context.Background(), models.OpeningFilter{CompanyEmail: "hr@acme.io"})
	require.NoError(t, err)
	assert.Empty(t, openings)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpeningRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	mock.ExpectExec("UPDATE openings SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Opening{ID: 9})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpeningRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM applications WHERE opening_id = $1")).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM openings WHERE opening_id = $1")).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpeningRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpeningRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM applications").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM openings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 8)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
