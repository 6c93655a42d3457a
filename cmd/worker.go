package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adisurya/campushub/internal/notification"
	notificationpg "github.com/adisurya/campushub/internal/notification/postgres"
	userpg "github.com/adisurya/campushub/internal/user/postgres"
	"github.com/adisurya/campushub/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers.`,
}

// Outbox worker command
var outboxWorkerCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Start the notification outbox worker",
	Long:  `Drain the notification outbox on a fixed interval, delivering rows the in-process fast path missed`,
	Run: func(cmd *cobra.Command, args []string) {
		startOutboxWorker()
	},
}

func startOutboxWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	userRepo := userpg.NewUserRepository(db)
	noteRepo := notificationpg.NewNotificationRepository(db)
	dispatcher := notification.NewDispatcher(noteRepo, userRepo, newMailer(config.Mail, log), log, config.Mail.MaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down outbox worker", "signal", sig)
		cancel()
	}()

	log.Info("outbox worker is running. Press Ctrl+C to stop.")
	dispatcher.Run(ctx, config.Mail.DrainInterval)
	log.Info("outbox worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(outboxWorkerCmd)
}
