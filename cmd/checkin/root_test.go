package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-school/internal/auth"
	"go-school/internal/checkin"
	"go-school/internal/checkin/client"
	"go-school/internal/geo"
	"go-school/internal/shared/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlow struct {
	statusFn   func(ctx context.Context) (checkin.CheckInStateResponse, error)
	checkInFn  func(ctx context.Context) (checkin.CheckInStateResponse, error)
	checkOutFn func(ctx context.Context) (checkin.CheckInStateResponse, error)
}

func (f *fakeFlow) Status(ctx context.Context) (checkin.CheckInStateResponse, error) {
	return f.statusFn(ctx)
}

func (f *fakeFlow) CheckIn(ctx context.Context) (checkin.CheckInStateResponse, error) {
	return f.checkInFn(ctx)
}

func (f *fakeFlow) CheckOut(ctx context.Context) (checkin.CheckInStateResponse, error) {
	return f.checkOutFn(ctx)
}

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

var defaultEnv = env(map[string]string{
	"SCHOOL_API_URL":   "http://localhost:3000/api/v1",
	"SCHOOL_API_TOKEN": "token",
	"SCHOOL_ID":        "school-1",
})

func execute(t *testing.T, getenv func(string) string, factory flowFactory, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCmd(getenv, factory)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckinCLI_Status(t *testing.T) {
	in := "07:05"
	var gotFlags globalFlags
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		gotFlags = g
		assert.Nil(t, pos)
		return &fakeFlow{statusFn: func(ctx context.Context) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{TeacherID: "t-1", Date: "2024-03-08", State: checkin.StateCheckedIn, CheckInTime: &in}, nil
		}}, nil
	}

	out, _, err := execute(t, defaultEnv, factory, "status")
	require.NoError(t, err)
	assert.Equal(t, "school-1", gotFlags.schoolID)
	assert.Equal(t, "http://localhost:3000/api/v1", gotFlags.apiURL)

	var st checkin.CheckInStateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, checkin.StateCheckedIn, st.State)
	assert.Equal(t, "07:05", *st.CheckInTime)
}

func TestCheckinCLI_InPassesPosition(t *testing.T) {
	var gotPos *geo.Point
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		gotPos = pos
		return &fakeFlow{checkInFn: func(ctx context.Context) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{State: checkin.StateCheckedIn}, nil
		}}, nil
	}

	_, _, err := execute(t, defaultEnv, factory, "in", "--lat", "-6.2", "--lng", "106.8166", "--school", "school-2")
	require.NoError(t, err)
	require.NotNil(t, gotPos)
	assert.InDelta(t, -6.2, gotPos.Latitude, 1e-9)
	assert.InDelta(t, 106.8166, gotPos.Longitude, 1e-9)
}

func TestCheckinCLI_InWithoutPosition(t *testing.T) {
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		assert.Nil(t, pos)
		return &fakeFlow{checkInFn: func(ctx context.Context) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{}, errors.Join(client.ErrLocationUnavailable, errors.New("unsupported"))
		}}, nil
	}

	_, stderr, err := execute(t, defaultEnv, factory, "in")
	require.Error(t, err)
	assert.Contains(t, stderr, "Pass --lat and --lng")
}

func TestCheckinCLI_OutOfRange(t *testing.T) {
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		return &fakeFlow{checkInFn: func(ctx context.Context) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{}, &client.OutOfRangeError{DistanceMeters: 523.4, AllowedRadius: 100}
		}}, nil
	}

	out, stderr, err := execute(t, defaultEnv, factory, "in", "--lat", "-6.3", "--lng", "106.9")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "You are 523 m from school. Check-in is allowed within 100 m.")
}

func TestCheckinCLI_OutConflictShowsServerMessage(t *testing.T) {
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		return &fakeFlow{checkOutFn: func(ctx context.Context) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{}, &client.APIError{Status: 409, Code: "CONFLICT", Message: "not checked in"}
		}}, nil
	}

	_, stderr, err := execute(t, defaultEnv, factory, "out")
	require.Error(t, err)
	assert.Contains(t, stderr, "not checked in")
}

func TestCheckinCLI_RequiresConnectionSettings(t *testing.T) {
	factory := func(g globalFlags, pos *geo.Point) (checkinFlow, error) {
		t.Fatal("flow must not be built")
		return nil, nil
	}

	_, _, err := execute(t, env(nil), factory, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHOOL_API_URL")
}

func TestCheckinCLI_TokenRoundTrip(t *testing.T) {
	schoolID := uuid.NewString()
	teacherID := uuid.NewString()

	out, _, err := execute(t, env(map[string]string{"JWT_SECRET": "secret"}), nil,
		"token", "--user", "u-1", "--role", "teacher", "--teacher", teacherID, "--school", schoolID, "--ttl", time.Hour.String())
	require.NoError(t, err)

	sess, err := auth.ParseToken("secret", string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, session.RoleTeacher, sess.Role)
	assert.Equal(t, teacherID, sess.TeacherID)
	assert.Equal(t, schoolID, sess.SchoolID)
	assert.Equal(t, "u-1", sess.UserID)
}
