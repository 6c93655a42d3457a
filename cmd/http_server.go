package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/auth"
	"github.com/adisurya/campushub/internal/core/clock"
	"github.com/adisurya/campushub/internal/core/events"
	"github.com/adisurya/campushub/internal/group"
	grouppg "github.com/adisurya/campushub/internal/group/postgres"
	"github.com/adisurya/campushub/internal/notification"
	notificationpg "github.com/adisurya/campushub/internal/notification/postgres"
	"github.com/adisurya/campushub/internal/post"
	postpg "github.com/adisurya/campushub/internal/post/postgres"
	"github.com/adisurya/campushub/internal/reservation"
	reservationpg "github.com/adisurya/campushub/internal/reservation/postgres"
	"github.com/adisurya/campushub/internal/room"
	roompg "github.com/adisurya/campushub/internal/room/postgres"
	"github.com/adisurya/campushub/internal/transport/rest"
	"github.com/adisurya/campushub/internal/user"
	userpg "github.com/adisurya/campushub/internal/user/postgres"
	"github.com/adisurya/campushub/pkg/logger"

	"github.com/go-chi/chi"
	redis "github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	SQLDB  *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SQLDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// health checks ping the same pool gorm runs on
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql.DB: %w", err)
	}
	healthDB := sqlx.NewDb(sqlDB, config.Database.Driver)

	bus := events.NewEventBus(log)

	userRepo := userpg.NewUserRepository(db)
	groupRepo := grouppg.NewGroupRepository(db)
	roomRepo := roompg.NewRoomRepository(db)
	reservationRepo := reservationpg.NewReservationRepository(db)
	postRepo := postpg.NewPostRepository(db)
	noteRepo := notificationpg.NewNotificationRepository(db)

	// The group service doubles as the permission evaluator for every
	// other module: capabilities, can_post grants and view gating all
	// resolve through group membership.
	groupSvc := group.NewService(groupRepo, log, config.Security.MaxNameBytes)

	tokens := user.NewTokenIssuer(config.Security.VerifySecret, config.Security.VerifyTokenTTL)
	userSvc := user.NewService(userRepo, groupSvc, tokens, bus, log, config.Security.BCryptCost, config.Server.BaseURL)
	roomSvc := room.NewService(roomRepo, groupSvc, log)
	reservationSvc := reservation.NewService(reservationRepo, roomSvc, groupSvc, bus, clock.System(), log, config.Security.ReservationLimit)
	postSvc := post.NewService(postRepo, groupSvc, log)

	sessions, err := newSessionStore(config.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	authSvc := auth.NewService(userRepo, sessions, log)

	dispatcher := notification.NewDispatcher(noteRepo, userRepo, newMailer(config.Mail, log), log, config.Mail.MaxAttempts)
	bus.Subscribe(events.EventUserSignedUp, dispatcher.HandleEvent)
	bus.Subscribe(events.EventReservationCreated, dispatcher.HandleEvent)
	bus.Subscribe(events.EventReservationDecided, dispatcher.HandleEvent)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router,
		healthDB,
		auth.NewHandler(authSvc, config.Session.TTL, config.Security.SecureCookies),
		user.NewHandler(userSvc),
		group.NewHandler(groupSvc),
		room.NewHandler(roomSvc),
		reservation.NewHandler(reservationSvc),
		post.NewHandler(postSvc),
		log,
	)

	return &Dependencies{
		Config: config,
		DB:     db,
		SQLDB:  healthDB,
		Router: router,
		Logger: log,
	}, nil
}

// initDB opens the gorm connection. Postgres is the production driver;
// sqlite exists for local development and never sees row locking.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = gormpostgres.Open(cfg.Source)
	case "sqlite":
		dialector = gormsqlite.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func newSessionStore(cfg internal.SessionConfig) (auth.SessionStore, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return auth.NewRedisStore(client, cfg.TTL), nil
	case "memory":
		return auth.NewMemoryStore(cfg.TTL, clock.System()), nil
	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Backend)
	}
}

func newMailer(cfg internal.MailConfig, log *slog.Logger) notification.Mailer {
	if cfg.SMTPHost == "" {
		return &notification.LogMailer{Logger: log}
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}
