package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-solver/internal/config"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solver/internal/usecase"
)

var ErrStorageDisabled = errors.New("report storage is disabled, set redis.host")

type application struct {
	logger     *slog.Logger
	conf       *config.Config
	analyzer   *usecase.Analyzer
	reportRepo repository.ReportRepository
	out        io.Writer
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config, args []string) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var reportRepo repository.ReportRepository

	if redisAddr := conf.Redis.GetRedisAddr(); redisAddr != "" {
		redisStorage, err := storage.New(ctx, redisAddr)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		reportRepo = repository.NewReportRepository(redisStorage, conf.Redis.ReportTTL)
	} else {
		log.Debug("redis host not set, reports are not stored")
	}

	app := newApplication(logger, conf, reportRepo, os.Stdout)

	cmd := app.rootCommand()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

func newApplication(logger *slog.Logger, conf *config.Config, reportRepo repository.ReportRepository, out io.Writer) *application {
	return &application{
		logger:     logger,
		conf:       conf,
		analyzer:   usecase.NewAnalyzer(logger, reportRepo),
		reportRepo: reportRepo,
		out:        out,
	}
}
