package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go-school/internal/attendance"
	"go-school/internal/config"
	"go-school/internal/events"
	"go-school/internal/messaging/kafka/consumer"
	"go-school/internal/school"
	"go-school/internal/shared/connection"
	"go-school/internal/student"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const leaveAttendanceGroup = "go-school-leave-attendance"

// RunConsumer writes approved student leave into the attendance register until SIGINT or SIGTERM.
func RunConsumer(cfg config.App) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		cfg.DBRetries,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	// The consumer only needs school config without caching or geocoding, and writes
	// attendance without emitting further events.
	schoolService := school.NewService(sqlDB, school.NewRepository(gormDB), nil, nil, school.CacheTTL{}, logger)
	attendanceService := attendance.NewService(
		sqlDB,
		attendance.NewRepository(gormDB),
		student.NewRepository(gormDB),
		schoolService,
		nil,
		nil,
		logger,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveProcessedTopic,
		GroupID:        leaveAttendanceGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeLeaveProcessed(ctx, reader, attendanceService, logger)

	logger.Info("consumer shut down")
	return nil
}
