package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go-school/internal/auth"
	"go-school/internal/checkin"
	"go-school/internal/checkin/client"
	"go-school/internal/geo"
	"go-school/internal/geo/locate"
	"go-school/internal/shared/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	apiURL   string
	token    string
	schoolID string
	verbose  bool
}

// flowFactory builds the check-in flow for a command. Tests replace it.
type flowFactory func(g globalFlags, pos *geo.Point) (checkinFlow, error)

type checkinFlow interface {
	Status(ctx context.Context) (checkin.CheckInStateResponse, error)
	CheckIn(ctx context.Context) (checkin.CheckInStateResponse, error)
	CheckOut(ctx context.Context) (checkin.CheckInStateResponse, error)
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	return buildRootCmd(getenv, newFlow)
}

func buildRootCmd(getenv func(string) string, factory flowFactory) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Teacher check-in and check-out",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "token" {
				return nil
			}
			if g.apiURL == "" {
				return errors.New("--api or SCHOOL_API_URL is required")
			}
			if g.token == "" {
				return errors.New("--token or SCHOOL_API_TOKEN is required")
			}
			if g.schoolID == "" {
				return errors.New("--school or SCHOOL_ID is required")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.apiURL, "api", getenv("SCHOOL_API_URL"), "API base URL, e.g. http://localhost:3000/api/v1")
	root.PersistentFlags().StringVar(&g.token, "token", getenv("SCHOOL_API_TOKEN"), "bearer token")
	root.PersistentFlags().StringVar(&g.schoolID, "school", getenv("SCHOOL_ID"), "school id")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log flow decisions to stderr")

	run := func(action func(f checkinFlow, cmd *cobra.Command) (checkin.CheckInStateResponse, error), pos func() *geo.Point) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			f, err := factory(g, pos())
			if err != nil {
				return err
			}
			st, err := action(f, cmd)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), describe(err))
				return err
			}
			return printState(cmd.OutOrStdout(), st)
		}
	}
	noPos := func() *geo.Point { return nil }

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's check-in state",
		RunE: run(func(f checkinFlow, cmd *cobra.Command) (checkin.CheckInStateResponse, error) {
			return f.Status(cmd.Context())
		}, noPos),
	}

	var lat, lng float64
	inCmd := &cobra.Command{
		Use:   "in",
		Short: "Check in at the current position",
		RunE: run(func(f checkinFlow, cmd *cobra.Command) (checkin.CheckInStateResponse, error) {
			return f.CheckIn(cmd.Context())
		}, func() *geo.Point {
			if math.IsNaN(lat) || math.IsNaN(lng) {
				return nil
			}
			return &geo.Point{Latitude: lat, Longitude: lng}
		}),
	}
	inCmd.Flags().Float64Var(&lat, "lat", math.NaN(), "latitude in decimal degrees")
	inCmd.Flags().Float64Var(&lng, "lng", math.NaN(), "longitude in decimal degrees")

	outCmd := &cobra.Command{
		Use:   "out",
		Short: "Check out",
		RunE: run(func(f checkinFlow, cmd *cobra.Command) (checkin.CheckInStateResponse, error) {
			return f.CheckOut(cmd.Context())
		}, noPos),
	}

	root.AddCommand(statusCmd, inCmd, outCmd, newTokenCmd(getenv))
	return root
}

func newFlow(g globalFlags, pos *geo.Point) (checkinFlow, error) {
	logger := zap.NewNop()
	if g.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	api := client.New(g.apiURL, g.token)
	cache := client.NewStatusCache(api, client.DefaultMaxAge)
	acquirer := locate.NewAcquirer(locate.StaticProvider{Point: pos}, logger)
	return client.NewFlow(api, cache, acquirer, g.schoolID, logger), nil
}

// describe turns flow errors into the messages a teacher should see.
func describe(err error) string {
	var oor *client.OutOfRangeError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &oor):
		return fmt.Sprintf("You are %.0f m from school. Check-in is allowed within %.0f m.", oor.DistanceMeters, oor.AllowedRadius)
	case errors.Is(err, client.ErrLocationUnavailable):
		return "Your location is needed to check in. Pass --lat and --lng."
	case errors.Is(err, client.ErrNetworkFailure):
		return "Could not reach the server. Try again."
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

func printState(w io.Writer, st checkin.CheckInStateResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func newTokenCmd(getenv func(string) string) *cobra.Command {
	var (
		secret    string
		ttl       time.Duration
		sess      session.Session
		role      string
		teacherID string
		studentID string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			sess.Role = session.Role(role)
			sess.TeacherID = teacherID
			sess.StudentID = studentID
			sess.SchoolID, _ = cmd.Flags().GetString("school")
			token, err := auth.IssueToken(secret, sess, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", getenv("JWT_SECRET"), "HS256 signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&sess.UserID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", string(session.RoleTeacher), "super_admin, school_admin, teacher or student")
	cmd.Flags().StringVar(&teacherID, "teacher", "", "teacher id for the teacher role")
	cmd.Flags().StringVar(&studentID, "student", "", "student id for the student role")
	return cmd
}
