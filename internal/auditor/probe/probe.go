// Package probe implements file based readiness and liveness checks for workers without an HTTP port.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/observatory/pkg/config"
)

// Files touches the probe files of cfg. Remove deletes both of them.
type Files struct {
	cfg    config.ProbesConfig
	logger *slog.Logger
}

func New(cfg config.ProbesConfig, logger *slog.Logger) *Files {
	return &Files{cfg: cfg, logger: logger.With("component", "probe")}
}

// Ready creates the readiness file.
func (f *Files) Ready() error {
	return touch(f.cfg.ReadinessFileName)
}

// RunLiveness touches the liveness file every interval until ctx is done, then removes both files.
func (f *Files) RunLiveness(ctx context.Context) error {
	defer f.Remove()
	if err := touch(f.cfg.LivenessFileName); err != nil {
		return err
	}
	ticker := time.NewTicker(f.cfg.LivenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := touch(f.cfg.LivenessFileName); err != nil {
				f.logger.ErrorContext(ctx, "failed to update liveness file", "error", err)
			}
		}
	}
}

func (f *Files) Remove() {
	for _, name := range []string{f.cfg.ReadinessFileName, f.cfg.LivenessFileName} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("failed to remove probe file", "file", name, "error", err)
		}
	}
}

func touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(name, now, now); err == nil {
		return nil
	}
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create probe file %s: %w", name, err)
	}
	return file.Close()
}
