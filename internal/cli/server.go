package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ark-trip-service/internal/app"
	"ark-trip-service/internal/config"
	"ark-trip-service/internal/domain"
	"ark-trip-service/internal/infra/memory"
	pgbank "ark-trip-service/internal/infra/postgres"
	redisstore "ark-trip-service/internal/infra/redis"
	"ark-trip-service/internal/infra/sqlite"
	"ark-trip-service/internal/quiz"
	transport "ark-trip-service/internal/transport/http"
)

const (
	defaultTripCode  = "852456"
	defaultAdminCode = "ADMIN123"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trip event server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	tripCode := cfg.Trip.Code
	if tripCode == "" {
		tripCode = defaultTripCode
	}
	adminCode := cfg.Trip.AdminCode
	if adminCode == "" {
		adminCode = defaultAdminCode
	}

	var store app.StateStore = memory.NewStateStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisstore.NewStateStore(client)
	}

	var bank app.QuestionBank
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bank = pgbank.NewQuestionBank(pool)
	case cfg.SQLite.Path != "":
		sqliteBank, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer sqliteBank.Close()
		bank = sqliteBank
	default:
		bank = memory.NewQuestionBank(sampleQuestions())
	}
	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	bank = memory.NewBankCache(bank, bankTTL)

	rules := quiz.DefaultRules()
	rules.Countdown = config.TTLDuration(cfg.Quiz.Countdown, rules.Countdown)
	rules.HomeDelay = config.TTLDuration(cfg.Quiz.HomeDelay, rules.HomeDelay)
	if cfg.Quiz.ChoiceMax > 0 {
		rules.ChoiceMax = cfg.Quiz.ChoiceMax
	}
	if cfg.Quiz.ChoiceFloor > 0 {
		rules.ChoiceFloor = cfg.Quiz.ChoiceFloor
	}
	if cfg.Quiz.DecayPerSec > 0 {
		rules.DecayPerSec = cfg.Quiz.DecayPerSec
	}
	if cfg.Quiz.InputReward > 0 {
		rules.InputReward = cfg.Quiz.InputReward
	}

	clock := clockwork.NewRealClock()
	state := app.NewTripState(tripCode, clock)
	service := app.NewTripService(state, store, bank, clock, adminCode, logger)
	if err := service.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("state restore failed, starting empty")
	}

	wsHandler := transport.NewWSHandler(service, clock, rules, quiz.DefaultWheel(), logger)
	adminHandler := transport.NewAdminHandler(service, adminCode, logger)
	router := transport.NewRouter(wsHandler, adminHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting trip service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server...")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds the in-memory bank for demos; production deployments
// use SQLite or Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           "q1",
			Text:         "ما هي عاصمة المملكة العربية السعودية؟",
			Options:      []string{"جدة", "الرياض", "مكة", "الدمام"},
			CorrectIndex: 1,
			Type:         domain.QuestionText,
			Points:       100,
		},
		{
			ID:           "q2",
			Text:         "🐪🏜️☀️",
			Options:      []string{"الشاطئ", "الصحراء", "الجبل", "الغابة"},
			CorrectIndex: 1,
			Type:         domain.QuestionEmoji,
			Points:       100,
		},
		{
			ID:      "q3",
			Text:    "ما اسم أطول نهر في العالم؟",
			Options: []string{"النيل"},
			Type:    domain.QuestionInput,
			Points:  50,
		},
	}
}
