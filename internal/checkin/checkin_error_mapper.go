package checkin

import (
	"errors"
	"strings"

	checkinerrors "go-school/internal/checkin/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueDayConstraint = "uq_teacher_attendance_day"

// mapRepositoryError turns a lost race on the per-day unique index into ALREADY_CHECKED_IN.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniqueDayConstraint {
		return checkinerrors.ErrAlreadyCheckedIn
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueDayConstraint) {
		return checkinerrors.ErrAlreadyCheckedIn
	}
	return err
}
