package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmh-genomics/minionpipe/internal/domain"
	"github.com/bmh-genomics/minionpipe/internal/toolrunner"
)

// Manager applies the retention policy to a run's tracked intermediates and
// packages the final output directory.
type Manager struct {
	runner   toolrunner.Runner
	archiver string
}

func NewManager(runner toolrunner.Runner, archiver string) (*Manager, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	archiver = strings.TrimSpace(archiver)
	if archiver == "" {
		return nil, errors.New("archiver is required")
	}
	return &Manager{runner: runner, archiver: archiver}, nil
}

// Cleanup removes the run's tracked intermediates: the basecall output
// directory and the combined FASTQ. When keep is true both are left in place.
// Final demultiplexed output is never touched.
func (m *Manager) Cleanup(run *domain.PipelineRun, keep bool) error {
	if run == nil {
		return errors.New("run is required")
	}
	if keep {
		return nil
	}
	if run.FastqDir != "" {
		if err := os.RemoveAll(run.FastqDir); err != nil {
			return fmt.Errorf("remove basecall dir: %w", err)
		}
	}
	if run.CombinedFastq != "" {
		if err := os.Remove(run.CombinedFastq); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove combined fastq: %w", err)
		}
	}
	return nil
}

// Archive packages the output directory's contents into <outputDir>.7z next
// to the directory. Entries are passed as an explicit argument list; the
// source directory is left in place.
func (m *Manager) Archive(ctx context.Context, outputDir string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("output dir %s is empty, nothing to archive", outputDir)
	}

	archivePath := strings.TrimRight(outputDir, string(os.PathSeparator)) + ".7z"
	args := []string{"a", archivePath}
	for _, entry := range entries {
		args = append(args, filepath.Join(outputDir, entry.Name()))
	}
	if err := m.runner.Run(ctx, toolrunner.Invocation{Tool: m.archiver, Args: args}); err != nil {
		return "", fmt.Errorf("archive output dir: %w", err)
	}
	return archivePath, nil
}
