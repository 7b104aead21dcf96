package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/broker"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/stats"
	"eventhub/internal/clock"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

// @title           Event Hub API
// @version         1.0
// @description     Event publication with moderation, view statistics and participation counters.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger("main-service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("main service stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(startupCtx); err != nil {
		return err
	}
	applied, err := postgres.ApplyMigrations(startupCtx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "versions", applied)
	}

	eventRepo := postgres.NewEventRepository(db)
	participationRepo := postgres.NewParticipationRepository(db)
	wordRepo := postgres.NewForbiddenWordRepository(db)

	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	statsClient, err := stats.NewClient(&http.Client{Timeout: cfg.StatsHTTPTimeout}, cfg.StatsServerURLs, cfg.AppName, issuer)
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	policy := services.CounterDegrade
	if cfg.StrictCounters {
		policy = services.CounterStrict
	}
	aggregator := services.NewAggregator(participationRepo, statsClient, cfg.CounterTimeout, policy, logger)
	eventSvc := services.NewEventService(eventRepo, aggregator, notifier, clock.NewSystem(), logger, cfg.ContextTimeout)
	moderationSvc := services.NewCommentModerationService(wordRepo, cfg.ContextTimeout)

	router := deliveryhttp.NewRouter(
		controllers.NewPublicEventController(logger, eventSvc, statsClient),
		controllers.NewUserEventController(logger, eventSvc),
		controllers.NewAdminEventController(logger, eventSvc, moderationSvc),
		controllers.NewCommentController(logger, moderationSvc),
		verifier,
	)
	handler := middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router)))

	return serve(ctx, &http.Server{Addr: ":" + cfg.Port, Handler: handler}, logger)
}

// newNotifier combines the AMQP publisher and the moderation mailer. Either may be
// absent; the returned close func is always safe to call.
func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.EventNotifier, func(), error) {
	closers := []func() error{}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	var publisher domain.EventNotifier
	if cfg.RabbitMQURL != "" {
		conn, err := broker.Connect(ctx, cfg.RabbitMQURL, 30, 2*time.Second, logger)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, conn.Close)
		p, err := broker.NewPublisher(conn, logger)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, p.Close)
		publisher = p
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSSESRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.AWSSESInsecureSkipTLS,
		},
	}, logger)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}
	mail := email.NewModerationNotifier(mailer, email.NewTemplateRenderer(), cfg.ModerationInbox)

	return services.NewMultiNotifier(publisher, mail), closeAll, nil
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
