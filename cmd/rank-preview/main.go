// Command rank-preview ranks a YAML snapshot offline, without a database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/noah-isme/ams-api/internal/matching"
	"github.com/noah-isme/ams-api/internal/models"
)

func main() {
	var (
		snapshotPath string
		studentEmail string
		openingID    int64
		asJSON       bool
		details      bool
	)

	flag.StringVar(&snapshotPath, "snapshot", "snapshot.yaml", "Path to the YAML snapshot")
	flag.StringVar(&studentEmail, "student", "", "Rank openings for this student email")
	flag.Int64Var(&openingID, "opening", 0, "Rank every student of the snapshot for this opening id")
	flag.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	flag.BoolVar(&details, "details", false, "Print the subject's details above the table")
	flag.Parse()

	if (studentEmail == "") == (openingID == 0) {
		log.Fatal("exactly one of -student or -opening is required")
	}

	f, err := os.Open(snapshotPath)
	if err != nil {
		log.Fatalf("failed to open snapshot: %v", err)
	}
	students, openings, err := decodeSnapshot(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}

	if details && !asJSON {
		printDetails(os.Stdout, studentEmail, openingID, students, openings)
	}

	if studentEmail != "" {
		err = previewStudent(os.Stdout, studentEmail, students, openings, asJSON, time.Now())
	} else {
		err = previewOpening(os.Stdout, openingID, students, openings, asJSON)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func previewStudent(w io.Writer, email string, students []models.Student, openings []models.Opening, asJSON bool, now time.Time) error {
	var student *models.Student
	for i := range students {
		if students[i].Email == email {
			student = &students[i]
			break
		}
	}
	if student == nil {
		return fmt.Errorf("student %q not in snapshot", email)
	}

	ranked := matching.MatchOpenings(*student, openings)
	if asJSON {
		return writeJSON(w, ranked)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tOPENING\tLOCATION\tSTIPEND\tPRIORITY\tSTATUS")
	for i, o := range ranked {
		status := "open"
		if o.DeadlinePassed(now) {
			status = "closed"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.2f\t%s\t%s\n", i+1, o.ID, o.Name, o.Location, o.Stipend, o.Priority, status)
	}
	return tw.Flush()
}

func previewOpening(w io.Writer, id int64, students []models.Student, openings []models.Opening, asJSON bool) error {
	var opening *models.Opening
	for i := range openings {
		if openings[i].ID == id {
			opening = &openings[i]
			break
		}
	}
	if opening == nil {
		return fmt.Errorf("opening %d not in snapshot", id)
	}

	ranked := matching.MatchApplicants(*opening, students)
	if asJSON {
		return writeJSON(w, ranked)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSTUDENT\tEMAIL\tGPA\tPREFERENCE")
	for i, s := range ranked {
		pref := "-"
		if idx, ok := s.PreferenceRank(opening.Location); ok {
			pref = fmt.Sprint(idx + 1)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", i+1, s.Name, s.Email, s.GPA, pref)
	}
	return tw.Flush()
}

func printDetails(w io.Writer, email string, id int64, students []models.Student, openings []models.Opening) {
	if email != "" {
		for _, s := range students {
			if s.Email == email {
				fmt.Fprintf(w, "%s\n\n", s.Details())
				return
			}
		}
		return
	}
	for _, o := range openings {
		if o.ID == id {
			fmt.Fprintf(w, "%s\n\n", o.Details())
			return
		}
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
