package leave

import (
	"strings"
	"time"
	"unicode/utf8"

	leaveerrors "go-school/internal/leave/errors"
)

type State string

const (
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
)

type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventCancel  Event = "cancel"
)

const (
	ApplicantStudent = "student"
	ApplicantTeacher = "teacher"

	minReasonLength = 10
	dateLayout      = "2006-01-02"
)

var LeaveTypes = []string{"casual", "sick", "emergency", "personal", "other"}

// Transition is the whole workflow: only pending requests move, and every target is terminal.
func Transition(current State, ev Event) (State, error) {
	if current != StatePending {
		return current, leaveerrors.ErrInvalidTransition
	}
	switch ev {
	case EventApprove:
		return StateApproved, nil
	case EventReject:
		return StateRejected, nil
	case EventCancel:
		return StateCancelled, nil
	default:
		return current, leaveerrors.ErrInvalidAction
	}
}

// StateOf folds the soft-delete marker into the stored status.
func StateOf(l *LeaveRequest) State {
	if l.CancelledAt != nil || l.DeletedAt.Valid {
		return StateCancelled
	}
	return State(l.Status)
}

func validLeaveType(t string) bool {
	for _, v := range LeaveTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Application is a validated ApplyLeaveRequest.
type Application struct {
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	NumberOfDays int
	Reason       string
}

func ValidateApplication(req ApplyLeaveRequest) (Application, error) {
	leaveType := strings.ToLower(strings.TrimSpace(req.LeaveType))
	if !validLeaveType(leaveType) {
		return Application{}, leaveerrors.ErrInvalidLeaveType
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return Application{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return Application{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return Application{}, leaveerrors.ErrInvalidDateRange
	}
	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) < minReasonLength {
		return Application{}, leaveerrors.ErrReasonTooShort
	}

	return Application{
		LeaveType:    leaveType,
		StartDate:    start,
		EndDate:      end,
		NumberOfDays: int(end.Sub(start).Hours()/24) + 1,
		Reason:       reason,
	}, nil
}
