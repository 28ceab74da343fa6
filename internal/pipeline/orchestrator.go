package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bmh-genomics/minionpipe/internal/artifacts"
	"github.com/bmh-genomics/minionpipe/internal/domain"
	"github.com/bmh-genomics/minionpipe/internal/samplesheet"
	"github.com/bmh-genomics/minionpipe/internal/toolrunner"
)

// RunLedger records run start and completion. Optional.
type RunLedger interface {
	RecordStart(ctx context.Context, run domain.PipelineRun) error
	RecordFinish(ctx context.Context, run domain.PipelineRun, runErr error) error
}

// ArchiveUploader pushes the final archive to remote storage. Optional.
type ArchiveUploader interface {
	UploadArchive(ctx context.Context, run domain.PipelineRun, archivePath string) (string, error)
}

// Orchestrator drives one pipeline run end to end: validation gate,
// basecalling, concatenation, demultiplexing, compression, retention and
// archival. Stages run strictly in sequence; the first failure stops the run.
type Orchestrator struct {
	runner   toolrunner.Runner
	logger   *slog.Logger
	manager  *artifacts.Manager
	ledger   RunLedger
	uploader ArchiveUploader
}

func NewOrchestrator(runner toolrunner.Runner, logger *slog.Logger, manager *artifacts.Manager, ledger RunLedger, uploader ArchiveUploader) (*Orchestrator, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if manager == nil {
		return nil, errors.New("artifact manager is required")
	}
	return &Orchestrator{runner: runner, logger: logger, manager: manager, ledger: ledger, uploader: uploader}, nil
}

// Run executes the pipeline described by cfg. The returned PipelineRun
// carries the artifact paths and terminal status even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*domain.PipelineRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	toolchain := cfg.Toolchain.WithDefaults()

	run := &domain.PipelineRun{
		ID:                "run_" + uuid.NewString(),
		InputDir:          cfg.InputDir,
		OutputDir:         cfg.OutputDir,
		SampleSheetPath:   cfg.SampleSheetPath,
		Flowcell:          cfg.Flowcell,
		Kit:               cfg.Kit,
		KeepIntermediates: cfg.KeepIntermediates,
		Status:            domain.RunStatusPending,
		StartedAt:         time.Now().UTC(),
	}
	logger := o.logger.With("run_id", run.ID)

	if err := claimOutputDir(cfg.OutputDir); err != nil {
		return nil, err
	}

	if o.ledger != nil {
		if err := o.ledger.RecordStart(ctx, *run); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	err := o.execute(ctx, logger, toolchain, run)

	endedAt := time.Now().UTC()
	run.EndedAt = &endedAt
	if err != nil && run.Status != domain.RunStatusAborted {
		run.Status = domain.RunStatusFailed
	}
	if err == nil {
		run.Status = domain.RunStatusDone
	}
	if o.ledger != nil {
		if ledgerErr := o.ledger.RecordFinish(ctx, *run, err); ledgerErr != nil {
			logger.Error("record run finish", "error", ledgerErr)
		}
	}
	return run, err
}

func (o *Orchestrator) execute(ctx context.Context, logger *slog.Logger, toolchain Toolchain, run *domain.PipelineRun) error {
	run.Status = domain.RunStatusValidating
	sheet, err := samplesheet.Load(run.SampleSheetPath)
	if err != nil {
		run.Status = domain.RunStatusAborted
		return err
	}
	if err := samplesheet.Validate(sheet); err != nil {
		run.Status = domain.RunStatusAborted
		return err
	}
	logger.Info("samplesheet valid", "records", len(sheet.Records))

	copyPath, err := samplesheet.WriteProvenanceCopy(sheet, run.OutputDir)
	if err != nil {
		return err
	}
	run.SampleSheetCopy = copyPath

	if err := o.basecall(ctx, logger, toolchain, run); err != nil {
		return err
	}
	if err := o.concatenate(ctx, logger, run); err != nil {
		return err
	}
	if err := o.demultiplex(ctx, logger, toolchain, run); err != nil {
		return err
	}
	if err := o.compress(ctx, logger, toolchain, run); err != nil {
		return err
	}

	run.Status = domain.RunStatusCleaning
	if err := o.manager.Cleanup(run, run.KeepIntermediates); err != nil {
		return err
	}
	if run.KeepIntermediates {
		logger.Info("keeping intermediate files", "fastq_dir", run.FastqDir, "combined_fastq", run.CombinedFastq)
	} else {
		logger.Info("removed intermediate files")
	}

	run.Status = domain.RunStatusArchiving
	archivePath, err := o.manager.Archive(ctx, run.OutputDir)
	if err != nil {
		return err
	}
	run.ArchivePath = archivePath
	logger.Info("archived output", "archive", archivePath)

	if o.uploader != nil {
		key, err := o.uploader.UploadArchive(ctx, *run, archivePath)
		if err != nil {
			return err
		}
		logger.Info("uploaded archive", "object_key", key)
	}
	return nil
}

// claimOutputDir creates the output directory, refusing one that already
// exists with content. Two runs must never interleave writes into the same
// directory.
func claimOutputDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err == nil {
		if len(entries) > 0 {
			return fmt.Errorf("output dir %s already exists and is not empty", dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
