package leave

import (
	"testing"

	leaveerrors "go-school/internal/leave/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		event   Event
		want    State
		wantErr error
	}{
		{"approve pending", StatePending, EventApprove, StateApproved, nil},
		{"reject pending", StatePending, EventReject, StateRejected, nil},
		{"cancel pending", StatePending, EventCancel, StateCancelled, nil},
		{"cancel approved", StateApproved, EventCancel, StateApproved, leaveerrors.ErrInvalidTransition},
		{"approve rejected", StateRejected, EventApprove, StateRejected, leaveerrors.ErrInvalidTransition},
		{"reject approved", StateApproved, EventReject, StateApproved, leaveerrors.ErrInvalidTransition},
		{"approve cancelled", StateCancelled, EventApprove, StateCancelled, leaveerrors.ErrInvalidTransition},
		{"unknown event", StatePending, Event("archive"), StatePending, leaveerrors.ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateApplication(t *testing.T) {
	valid := ApplyLeaveRequest{
		LeaveType: "Sick",
		StartDate: "2024-03-10",
		EndDate:   "2024-03-12",
		Reason:    "fever and doctor visit",
	}

	app, err := ValidateApplication(valid)
	require.NoError(t, err)
	assert.Equal(t, "sick", app.LeaveType)
	assert.Equal(t, 3, app.NumberOfDays)

	single := valid
	single.EndDate = single.StartDate
	app, err = ValidateApplication(single)
	require.NoError(t, err)
	assert.Equal(t, 1, app.NumberOfDays)

	cases := map[string]struct {
		mutate  func(r *ApplyLeaveRequest)
		wantErr error
	}{
		"unknown type":   {func(r *ApplyLeaveRequest) { r.LeaveType = "vacation" }, leaveerrors.ErrInvalidLeaveType},
		"bad start":      {func(r *ApplyLeaveRequest) { r.StartDate = "10/03/2024" }, leaveerrors.ErrInvalidDateFormat},
		"bad end":        {func(r *ApplyLeaveRequest) { r.EndDate = "2024-13-01" }, leaveerrors.ErrInvalidDateFormat},
		"inverted range": {func(r *ApplyLeaveRequest) { r.EndDate = "2024-03-01" }, leaveerrors.ErrInvalidDateRange},
		"short reason":   {func(r *ApplyLeaveRequest) { r.Reason = "short" }, leaveerrors.ErrReasonTooShort},
		"padded reason":  {func(r *ApplyLeaveRequest) { r.Reason = "   sick     " }, leaveerrors.ErrReasonTooShort},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := ValidateApplication(req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
