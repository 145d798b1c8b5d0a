package app

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/matheus3301/wpphistory/internal/backup"
	"github.com/matheus3301/wpphistory/internal/bus"
	"github.com/matheus3301/wpphistory/internal/chatstore"
	"github.com/matheus3301/wpphistory/internal/config"
	"github.com/matheus3301/wpphistory/internal/paths"
	"github.com/matheus3301/wpphistory/internal/status"
	"github.com/matheus3301/wpphistory/internal/transcript"
	"go.uber.org/zap"
)

// Run identifies one export and the directory it writes to.
type Run struct {
	ID  string
	Dir string
}

// Runner performs a complete export: locate the backup, stage the message
// store, render every conversation.
type Runner struct {
	cfg     *config.Config
	run     Run
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger
}

// NewRunner creates a runner for the output area of run, which must already
// be initialized.
func NewRunner(cfg *config.Config, run Run, b *bus.Bus, m *status.Machine, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, run: run, bus: b, machine: m, logger: logger}
}

// Run executes the export. Any error leaves the machine in Failed.
func (r *Runner) Run(ctx context.Context) (*transcript.Summary, error) {
	summary, err := r.export(ctx)
	if err != nil {
		r.machine.Fail()
		return summary, err
	}
	if err := r.machine.Transition(status.Done); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) export(ctx context.Context) (*transcript.Summary, error) {
	if err := r.machine.Transition(status.Locating); err != nil {
		return nil, err
	}
	dir, err := r.backupDir()
	if err != nil {
		return nil, err
	}
	index, err := backup.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	r.logger.Info("backup indexed", zap.String("dir", index.Root()), zap.Int("files", index.Len()))

	if err := r.machine.Transition(status.Staging); err != nil {
		return nil, err
	}
	storePath, err := chatstore.Stage(index, r.cfg.AppDomain, r.cfg.StorePath, r.run.Dir)
	if err != nil {
		return nil, err
	}
	if !r.cfg.KeepStoreCopy {
		defer func() { _ = os.Remove(storePath) }()
	}
	db, err := chatstore.Open(storePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	r.logger.Info("chat store staged", zap.String("path", storePath))

	if err := r.machine.Transition(status.Exporting); err != nil {
		return nil, err
	}
	opts, err := r.assemblerOptions()
	if err != nil {
		return nil, err
	}
	summary, err := transcript.NewAssembler(db, index, r.bus, opts, r.logger).Run(ctx)
	if err != nil {
		return summary, err
	}
	r.logger.Info("export finished",
		zap.String("output", r.run.Dir),
		zap.Int("conversations", summary.Conversations),
		zap.Int("messages", summary.Messages),
		zap.Int("missing_media", summary.MissingMedia))
	return summary, nil
}

// backupDir returns the configured backup, or the newest one under the backups root.
func (r *Runner) backupDir() (string, error) {
	if r.cfg.BackupDir != "" {
		return r.cfg.BackupDir, nil
	}
	root := r.cfg.BackupsRoot
	if root == "" {
		var err error
		if root, err = paths.BackupsRoot(runtime.GOOS); err != nil {
			return "", err
		}
	}
	info, err := backup.Latest(root)
	if err != nil {
		return "", fmt.Errorf("could not find backup folder: %w", err)
	}
	r.logger.Info("using latest backup",
		zap.String("dir", info.Dir),
		zap.String("device", info.DeviceName),
		zap.Time("date", info.Date))
	return info.Dir, nil
}

func (r *Runner) assemblerOptions() (transcript.Options, error) {
	layout, err := transcript.ParseMediaLayout(r.cfg.MediaLayout)
	if err != nil {
		return transcript.Options{}, err
	}
	loc, err := r.cfg.Location()
	if err != nil {
		return transcript.Options{}, err
	}
	return transcript.Options{
		OutputDir:   r.run.Dir,
		OwnerName:   r.cfg.OwnerName,
		AppDomain:   r.cfg.AppDomain,
		MediaLayout: layout,
		EscapeHTML:  r.cfg.EscapeHTML,
		Location:    loc,
	}, nil
}
