// Package app wires configuration, logging, the queue, the database and the
// ETL stages into a single run.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/loginetl/internal/archive"
	"github.com/dmitrijs2005/loginetl/internal/config"
	"github.com/dmitrijs2005/loginetl/internal/cryptox"
	"github.com/dmitrijs2005/loginetl/internal/etl/extractor"
	"github.com/dmitrijs2005/loginetl/internal/etl/loader"
	"github.com/dmitrijs2005/loginetl/internal/etl/pipeline"
	"github.com/dmitrijs2005/loginetl/internal/etl/transformer"
	"github.com/dmitrijs2005/loginetl/internal/logging"
	"github.com/dmitrijs2005/loginetl/internal/queue"
	"github.com/dmitrijs2005/loginetl/internal/validator"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitCanceled = 130
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newQueue = func(ctx context.Context, opts queue.SQSOptions) (queue.Queue, error) {
		return queue.NewSQSQueue(ctx, opts)
	}

	newArchive = func(ctx context.Context, opts archive.S3Options) (archive.Archive, error) {
		return archive.NewS3Archive(ctx, opts)
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	closeLog func() error
	db       *sql.DB
	pipeline *pipeline.Pipeline
}

// NewApp builds every dependency of a run. out receives the operator-facing
// summary. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, closeLog, err := logging.New(logging.Config{
		Backend:    c.LogBackend,
		Level:      c.LogLevel,
		OutputPath: c.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger, closeLog: closeLog}
	if err := app.init(ctx, out); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context, out io.Writer) error {
	c := app.config

	cipher, err := cryptox.New(cryptox.Mode(c.CipherMode), c.Passphrase)
	if err != nil {
		return fmt.Errorf("cipher init error: %w", err)
	}

	v, err := validator.New()
	if err != nil {
		return fmt.Errorf("validator init error: %w", err)
	}

	q, err := newQueue(ctx, queue.SQSOptions{
		Region:          c.Region,
		Endpoint:        c.QueueEndpoint,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("queue init error: %w", err)
	}

	var arc archive.Archive = archive.Nop{}
	if c.RejectBucket != "" {
		arc, err = newArchive(ctx, archive.S3Options{
			Bucket:          c.RejectBucket,
			Region:          c.Region,
			Endpoint:        c.QueueEndpoint,
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("archive init error: %w", err)
		}
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	app.db = db

	ext := extractor.New(q, v, arc, app.logger, extractor.Options{
		QueueURL:    c.QueueURL,
		MaxMessages: c.MaxMessages,
		WaitTime:    c.WaitTime,
	})

	app.pipeline = pipeline.New(q, ext, transformer.New(cipher, app.logger), loader.New(db, app.logger), app.logger, out, pipeline.Options{
		QueueURL:      c.QueueURL,
		ProbeAttempts: c.ProbeAttempts,
		ProbeDelay:    c.ProbeDelay,
	})

	return nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Warn(ctx, "signal received, stopping", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run executes the pipeline once and returns the process exit code.
func (app *App) Run(ctx context.Context) int {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(ctx, cancelFunc)

	app.logger.Info(ctx, "starting run",
		"queue", app.config.QueueURL,
		"cipher_mode", app.config.CipherMode,
		"max_messages", app.config.MaxMessages,
		"reject_archive", app.config.RejectBucket != "")

	state, err := app.pipeline.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "run finished with error", "state", string(state), "error", err)
	} else {
		app.logger.Info(ctx, "run finished", "state", string(state))
	}

	return ExitCode(state)
}

// ExitCode maps a terminal pipeline state to a process exit code.
func ExitCode(s pipeline.State) int {
	switch s {
	case pipeline.StateDrained:
		return ExitOK
	case pipeline.StateCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}

// Close releases the database pool and flushes the logger.
func (app *App) Close() error {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.closeLog != nil {
		errs = append(errs, app.closeLog())
	}
	return errors.Join(errs...)
}
