// Package roster reconciles persisted attendance against the enrolled roster of one scope and
// holds the editable record set a marker works on.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStudent = errors.New("student is not in the roster")
	ErrInvalidStatus  = errors.New("invalid attendance status")
	ErrStaleScope     = errors.New("attendance scope has changed")
	ErrNotMarked      = errors.New("student has not been marked yet")
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusLeave}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusLeave:
		return true
	}
	return false
}

type Student struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RollNumber string  `json:"roll_number"`
	ClassID    string  `json:"class_id"`
	SectionID  *string `json:"section_id,omitempty"`
}

type Record struct {
	StudentID string  `json:"student_id"`
	Status    Status  `json:"status"`
	Remarks   *string `json:"remarks,omitempty"`
}

// Records is keyed by student id. A roster student without an entry is not yet marked.
type Records map[string]Record

// Reconcile carries snapshot records over verbatim for students in the roster. Students missing
// from the snapshot stay unmarked and snapshot records of students outside the roster are dropped.
func Reconcile(roster []Student, snapshot []Record) Records {
	enrolled := make(map[string]struct{}, len(roster))
	for _, s := range roster {
		enrolled[s.ID] = struct{}{}
	}

	out := make(Records, len(snapshot))
	for _, r := range snapshot {
		if _, ok := enrolled[r.StudentID]; !ok {
			continue
		}
		out[r.StudentID] = cloneRecord(r)
	}
	return out
}

type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	HalfDay int `json:"half_day"`
	Leave   int `json:"leave"`
}

// Summarize counts marked records only.
func Summarize(records Records) Summary {
	var s Summary
	for _, r := range records {
		s.add(r.Status)
	}
	return s
}

// SummarizeList is Summarize over a plain slice, as returned by history queries.
func SummarizeList(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.add(r.Status)
	}
	return s
}

func (s *Summary) add(st Status) {
	s.Total++
	switch st {
	case StatusPresent:
		s.Present++
	case StatusAbsent:
		s.Absent++
	case StatusLate:
		s.Late++
	case StatusHalfDay:
		s.HalfDay++
	case StatusLeave:
		s.Leave++
	}
}

// Percentage counts late arrivals as attended.
func (s Summary) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present+s.Late) / float64(s.Total) * 100
}

func cloneRecord(r Record) Record {
	if r.Remarks != nil {
		v := *r.Remarks
		r.Remarks = &v
	}
	return r
}
