package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-school/internal/events"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LeaveApplier writes leave days into the attendance register.
type LeaveApplier interface {
	ApplyApprovedLeave(ctx context.Context, schoolID, studentID string, start, end time.Time) (int, error)
}

func ConsumeLeaveProcessed(ctx context.Context, reader MessageReader, applier LeaveApplier, logger *zap.Logger) {
	Run(ctx, reader, "leave_processed", LeaveProcessedHandler(applier, logger), logger)
}

// LeaveProcessedHandler marks approved student leave in the register. Teacher leave and
// rejections carry nothing to apply.
func LeaveProcessedHandler(applier LeaveApplier, logger *zap.Logger) HandlerFunc {
	log := logger.Named("kafka.consumer.leave_processed")

	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.LeaveProcessedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decode leave.processed: %w: %v", ErrSkip, err)
		}
		if event.Status != "approved" || event.ApplicantType != "student" {
			return nil
		}

		start, err := time.Parse("2006-01-02", event.StartDate)
		if err != nil {
			return fmt.Errorf("start_date: %w: %v", ErrSkip, err)
		}
		end, err := time.Parse("2006-01-02", event.EndDate)
		if err != nil {
			return fmt.Errorf("end_date: %w: %v", ErrSkip, err)
		}

		n, err := applier.ApplyApprovedLeave(ctx, event.SchoolID, event.ApplicantID, start, end)
		if err != nil {
			if isUniqueSlotViolation(err) {
				// a teacher marked one of the days while we were writing; the next delivery skips it
				log.Warn("attendance slot taken, retrying", zap.String("leave_id", event.LeaveID))
			}
			return err
		}

		log.Info("approved leave applied to attendance",
			zap.String("leave_id", event.LeaveID),
			zap.String("student_id", event.ApplicantID),
			zap.Int("days", n),
		)
		return nil
	}
}

func isUniqueSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_student_attendance_slot"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_student_attendance_slot")
}
