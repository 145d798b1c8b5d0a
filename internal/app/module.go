// Package app composes the exporter with fx and runs it to completion.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wpphistory/internal/bus"
	"github.com/matheus3301/wpphistory/internal/config"
	"github.com/matheus3301/wpphistory/internal/lock"
	"github.com/matheus3301/wpphistory/internal/logging"
	"github.com/matheus3301/wpphistory/internal/paths"
	"github.com/matheus3301/wpphistory/internal/progress"
	"github.com/matheus3301/wpphistory/internal/status"
	"github.com/matheus3301/wpphistory/internal/transcript"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the command-line overrides passed to the fx module.
type Params struct {
	ConfigPath string
	EnvPath    string
	BackupDir  string // overrides backup_dir
	OutputRoot string // overrides output_root
	Verbose    bool
	Stdout     io.Writer        // progress output; nil means os.Stdout
	Now        func() time.Time // nil means time.Now
}

// Module returns the fx module for one export run.
func Module(p Params) fx.Option {
	return fx.Module("wpphistory",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideRun,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideConsole,
			NewRunner,
		),
		fx.Invoke(registerLifecycle),
	)
}

// Logger routes fx's own events through the run logger.
func Logger() fx.Option {
	return fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	})
}

func provideConfig(p Params) (*config.Config, error) {
	if p.EnvPath != "" {
		if err := config.LoadEnvFile(p.EnvPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", p.EnvPath, err)
		}
	}
	path := p.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if p.BackupDir != "" {
		cfg.BackupDir = p.BackupDir
	}
	if p.OutputRoot != "" {
		cfg.OutputRoot = p.OutputRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// provideRun initializes the output area; nothing else creates it.
func provideRun(p Params, cfg *config.Config) (Run, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	run := Run{
		ID:  uuid.NewString(),
		Dir: paths.RunDir(cfg.OutputRoot, now()),
	}
	if err := transcript.InitializeOutputArea(run.Dir); err != nil {
		return Run{}, err
	}
	return run, nil
}

func provideLogger(p Params, run Run) (*zap.Logger, error) {
	return logging.New(filepath.Join(run.Dir, logging.FileName), run.ID, p.Verbose)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideConsole(p Params, b *bus.Bus) *progress.Console {
	out := p.Stdout
	if out == nil {
		out = os.Stdout
	}
	return progress.NewConsole(out, b)
}

func registerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, run Run, runner *Runner, console *progress.Console, logger *zap.Logger) {
	var (
		lk     *lock.Lock
		cancel context.CancelFunc
		done   = make(chan struct{})
	)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			if lk, err = lock.Acquire(run.Dir); err != nil {
				close(done)
				return err
			}
			logger.Info("output directory locked", zap.String("dir", run.Dir))

			console.Start(context.Background())

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				code := 0
				if _, err := runner.Run(ctx); err != nil {
					logger.Error("export failed", zap.Error(err))
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					code = 1
				}
				if err := sd.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Warn("shutdown request failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			select {
			case <-done:
			case <-ctx.Done():
			}
			console.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("run stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
