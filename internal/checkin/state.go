package checkin

import checkinerrors "go-school/internal/checkin/errors"

// State of one teacher on one day. A new day always starts at NotCheckedIn.
type State string

const (
	StateNotCheckedIn State = "not_checked_in"
	StateCheckedIn    State = "checked_in"
	StateCompleted    State = "completed"
)

// StateOf derives the state from today's row, nil meaning no row yet.
func StateOf(row *TeacherAttendance) State {
	switch {
	case row == nil:
		return StateNotCheckedIn
	case row.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCompleted
	}
}

func CanCheckIn(s State) error {
	if s != StateNotCheckedIn {
		return checkinerrors.ErrAlreadyCheckedIn
	}
	return nil
}

func CanCheckOut(s State) error {
	switch s {
	case StateCheckedIn:
		return nil
	case StateCompleted:
		return checkinerrors.ErrAlreadyCheckedOut
	default:
		return checkinerrors.ErrNotYetCheckedIn
	}
}
