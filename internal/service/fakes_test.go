package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/internal/repository"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type fakeStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	creates    int
	updates    int
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]models.Student)}
	for _, s := range students {
		repo.students[s.Email] = s
	}
	return repo
}

func (r *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	r.lastFilter = filter
	out := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, len(out), nil
}

func (r *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	s, ok := r.students[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *fakeStudentRepo) ListByEmails(ctx context.Context, emails []string) ([]models.Student, error) {
	out := make([]models.Student, 0, len(emails))
	// reversed: ANY($1) gives no ordering guarantee
	for i := len(emails) - 1; i >= 0; i-- {
		if s, ok := r.students[emails[i]]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) ExistsByStudentID(ctx context.Context, studentID, excludeEmail string) (bool, error) {
	for email, s := range r.students {
		if s.StudentID == studentID && email != excludeEmail {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.creates++
	student.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	student.UpdatedAt = student.CreatedAt
	r.students[student.Email] = *student
	return nil
}

func (r *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := r.students[student.Email]; !ok {
		return sql.ErrNoRows
	}
	r.updates++
	r.students[student.Email] = *student
	return nil
}

type fakeOpeningRepo struct {
	openings   map[int64]models.Opening
	nextID     int64
	lastFilter models.OpeningFilter
	deleted    []int64
	bySpecCall int
}

func newFakeOpeningRepo(openings ...models.Opening) *fakeOpeningRepo {
	repo := &fakeOpeningRepo{openings: make(map[int64]models.Opening), nextID: 100}
	for _, o := range openings {
		repo.openings[o.ID] = o
	}
	return repo
}

func (r *fakeOpeningRepo) sorted() []models.Opening {
	out := make([]models.Opening, 0, len(r.openings))
	for _, o := range r.openings {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeOpeningRepo) List(ctx context.Context, filter models.OpeningFilter) ([]models.Opening, int, error) {
	r.lastFilter = filter
	out := make([]models.Opening, 0)
	for _, o := range r.sorted() {
		if filter.CompanyEmail != "" && o.CompanyEmail != filter.CompanyEmail {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *fakeOpeningRepo) ListBySpecialization(ctx context.Context, specialization models.Specialization) ([]models.Opening, error) {
	r.bySpecCall++
	out := make([]models.Opening, 0)
	for _, o := range r.sorted() {
		if o.Specialization == specialization {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOpeningRepo) FindByID(ctx context.Context, id int64) (*models.Opening, error) {
	o, ok := r.openings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &o, nil
}

func (r *fakeOpeningRepo) Create(ctx context.Context, opening *models.Opening) error {
	r.nextID++
	opening.ID = r.nextID
	r.openings[opening.ID] = *opening
	return nil
}

func (r *fakeOpeningRepo) Update(ctx context.Context, opening *models.Opening) error {
	if _, ok := r.openings[opening.ID]; !ok {
		return sql.ErrNoRows
	}
	r.openings[opening.ID] = *opening
	return nil
}

func (r *fakeOpeningRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.openings[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.openings, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type applicationKey struct {
	email string
	id    int64
}

// fakeApplicationRepo mimics the unique (student_email, opening_id) constraint.
type fakeApplicationRepo struct {
	mu    sync.Mutex
	rows  map[applicationKey]models.Application
	clock time.Time
	seq   int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{
		rows:  make(map[applicationKey]models.Application),
		clock: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *fakeApplicationRepo) Insert(ctx context.Context, email string, openingID int64) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := applicationKey{email, openingID}
	if _, ok := r.rows[key]; ok {
		return nil, repository.ErrDuplicateApplication
	}
	r.seq++
	app := models.Application{
		ID:           fmt.Sprintf("app-%d", r.seq),
		StudentEmail: email,
		OpeningID:    openingID,
		CreatedAt:    r.clock.Add(time.Duration(r.seq) * time.Minute),
	}
	r.rows[key] = app
	return &app, nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, email string, openingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := applicationKey{email, openingID}
	if _, ok := r.rows[key]; !ok {
		return false, nil
	}
	delete(r.rows, key)
	return true, nil
}

func (r *fakeApplicationRepo) Find(ctx context.Context, email string, openingID int64) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.rows[applicationKey{email, openingID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &app, nil
}

func (r *fakeApplicationRepo) Exists(ctx context.Context, email string, openingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[applicationKey{email, openingID}]
	return ok, nil
}

func (r *fakeApplicationRepo) list(match func(models.Application) bool) []models.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Application, 0)
	for _, app := range r.rows {
		if match(app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeApplicationRepo) ListByOpening(ctx context.Context, openingID int64) ([]models.Application, error) {
	return r.list(func(a models.Application) bool { return a.OpeningID == openingID }), nil
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, email string) ([]models.Application, error) {
	apps := r.list(func(a models.Application) bool { return a.StudentEmail == email })
	for i, j := 0, len(apps)-1; i < j; i, j = i+1, j-1 {
		apps[i], apps[j] = apps[j], apps[i]
	}
	return apps, nil
}

// fakeCacheRepo stores JSON payloads in memory.
type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
	getErr  error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string][]byte)}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return r.getErr
	}
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = raw
	return nil
}

func (r *fakeCacheRepo) Delete(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.entries, key)
		r.deletes = append(r.deletes, key)
	}
	return nil
}

func (r *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range r.entries {
		if strings.HasPrefix(key, prefix) {
			delete(r.entries, key)
			removed++
		}
	}
	r.deletes = append(r.deletes, pattern)
	return removed, nil
}

func (r *fakeCacheRepo) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func companyActor(email string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "c-" + email, Role: models.RoleCompany, Email: email}
}

func sampleStudent(email string, gpa float64, locations ...string) models.Student {
	return models.Student{
		StudentID:          "S-" + email,
		Name:               strings.Split(email, "@")[0],
		Email:              email,
		GPA:                gpa,
		Specialization:     models.SpecializationSoftware,
		PreferredLocations: locations,
		Skills:             []string{"Go", "SQL"},
	}
}
