package models

import "time"

// ApplicationState is the lifecycle state of a (student, opening) pair.
type ApplicationState string

const (
	ApplicationApplied    ApplicationState = "APPLIED"
	ApplicationNotApplied ApplicationState = "NOT_APPLIED"
)

// Application records that a student applied to an opening.
type Application struct {
	ID           string    `db:"id" json:"id"`
	StudentEmail string    `db:"student_email" json:"student_email"`
	OpeningID    int64     `db:"opening_id" json:"opening_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ApplyResult distinguishes a new application from one that already existed.
type ApplyResult struct {
	Created   bool             `json:"created"`
	State     ApplicationState `json:"state"`
	AppliedAt time.Time        `json:"applied_at,omitempty"`
}

// ApplicationStateResponse answers a state lookup.
type ApplicationStateResponse struct {
	OpeningID int64            `json:"opening_id"`
	State     ApplicationState `json:"state"`
}

// StudentApplication pairs an application with its opening for the student's listing.
type StudentApplication struct {
	Application
	Opening Opening `json:"opening"`
	Closed  bool    `json:"closed"`
}
