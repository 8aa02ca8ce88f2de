package matching

import (
	"sort"

	"github.com/noah-isme/ams-api/internal/models"
)

// Ranker orders items with the two-mode bucket-then-sort rule shared by both match directions.
//
// Items whose Mode is PriorityGPA come first, sorted by Key descending. The rest are
// distributed into Buckets preference buckets by Bucket, followed by a fallback bucket
// for items Bucket rejects; every bucket is sorted by Key descending. Sorting is stable,
// so equal keys keep their input order.
type Ranker[T any] struct {
	Mode    func(T) models.Priority
	Bucket  func(T) (int, bool)
	Key     func(T) float64
	Buckets int
}

// Rank returns a new, ordered slice; items is left untouched.
func (r Ranker[T]) Rank(items []T) []T {
	n := r.Buckets
	if n < 0 {
		n = 0
	}
	gpa := make([]T, 0, len(items))
	buckets := make([][]T, n+1)

	for _, item := range items {
		if r.Mode(item) == models.PriorityGPA {
			gpa = append(gpa, item)
			continue
		}
		idx, ok := r.Bucket(item)
		if !ok || idx < 0 || idx >= n {
			idx = n
		}
		buckets[idx] = append(buckets[idx], item)
	}

	out := make([]T, 0, len(items))
	out = append(out, r.sortDesc(gpa)...)
	for _, b := range buckets {
		out = append(out, r.sortDesc(b)...)
	}
	return out
}

func (r Ranker[T]) sortDesc(items []T) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return r.Key(items[i]) > r.Key(items[j])
	})
	return items
}

// RankOpenings orders a student's eligible openings: GPA-priority openings by stipend,
// then location-priority openings grouped by the student's preference order.
func RankOpenings(student models.Student, openings []models.Opening) []models.Opening {
	return Ranker[models.Opening]{
		Mode: func(o models.Opening) models.Priority { return o.Priority },
		Bucket: func(o models.Opening) (int, bool) {
			return student.PreferenceRank(o.Location)
		},
		Key:     func(o models.Opening) float64 { return o.Stipend },
		Buckets: len(student.PreferredLocations),
	}.Rank(openings)
}

// RankApplicants orders candidates for one opening by GPA, grouped by how highly each
// candidate ranks the opening's location when the opening uses location priority.
func RankApplicants(opening models.Opening, students []models.Student) []models.Student {
	return Ranker[models.Student]{
		Mode: func(models.Student) models.Priority { return opening.Priority },
		Bucket: func(s models.Student) (int, bool) {
			return s.PreferenceRank(opening.Location)
		},
		Key:     func(s models.Student) float64 { return s.GPA },
		Buckets: models.MaxPreferredLocations,
	}.Rank(students)
}

// MatchOpenings filters then ranks openings for a student.
func MatchOpenings(student models.Student, openings []models.Opening) []models.Opening {
	return RankOpenings(student, Eligible(student, openings))
}

// MatchApplicants filters then ranks candidates for an opening.
func MatchApplicants(opening models.Opening, students []models.Student) []models.Student {
	return RankApplicants(opening, EligibleApplicants(opening, students))
}
