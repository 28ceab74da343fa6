package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmh-genomics/minionpipe/internal/domain"
	"github.com/bmh-genomics/minionpipe/internal/toolrunner"
)

const (
	basecallSubdir = "guppy_basecalling"
	demuxSubdir    = "qcat_demultiplexing"
	demuxLogName   = "qcat_log.txt"
)

// ErrNoFastqFiles is returned when the basecaller produced no FASTQ output
// for concatenation to work on.
var ErrNoFastqFiles = errors.New("no fastq files found")

func (o *Orchestrator) basecall(ctx context.Context, logger *slog.Logger, toolchain Toolchain, run *domain.PipelineRun) error {
	run.Status = domain.RunStatusBasecalling
	fastqDir := filepath.Join(run.OutputDir, basecallSubdir)
	if err := os.MkdirAll(fastqDir, 0o755); err != nil {
		return fmt.Errorf("create basecall dir: %w", err)
	}
	run.FastqDir = fastqDir

	logger.Info("basecalling", "stage", "basecall", "input_dir", run.InputDir, "fastq_dir", fastqDir,
		"flowcell", run.Flowcell, "kit", run.Kit)
	inv := toolrunner.Invocation{
		Tool: toolchain.Basecaller,
		Args: basecallArgs(run.InputDir, fastqDir, run.Flowcell, run.Kit),
	}
	if err := o.runner.Run(ctx, inv); err != nil {
		return fmt.Errorf("basecalling: %w", err)
	}
	return nil
}

func basecallArgs(inputDir, fastqDir, flowcell, kit string) []string {
	return []string{
		"-i", inputDir,
		"-s", fastqDir,
		"--device", "cuda:0",
		"--flowcell", flowcell,
		"--kit", kit,
		"--trim_barcodes",
		"--recursive",
		"--chunk_size", "1700",
		"--gpu_runners_per_device", "4",
	}
}

// concatenate merges every FASTQ in the basecall directory into one combined
// file. Done in-process: glob expansion and output redirection would need a
// shell, and the zero-file precondition has to be checked before anything is
// written.
func (o *Orchestrator) concatenate(ctx context.Context, logger *slog.Logger, run *domain.PipelineRun) error {
	run.Status = domain.RunStatusConcatenating
	files, err := globFastq(run.FastqDir)
	if err != nil {
		return err
	}
	logger.Info("detected fastq files", "stage", "concatenate", "fastq_dir", run.FastqDir, "count", len(files))
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFastqFiles, run.FastqDir)
	}
	run.FastqCount = len(files)

	combined := filepath.Join(run.OutputDir, filepath.Base(run.OutputDir)+"_combined.fastq")
	if err := concatenateFiles(ctx, files, combined); err != nil {
		return fmt.Errorf("concatenate fastq files: %w", err)
	}
	run.CombinedFastq = combined
	logger.Info("concatenated fastq files", "stage", "concatenate", "combined_fastq", combined)
	return nil
}

func globFastq(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.fastq"))
	if err != nil {
		return nil, fmt.Errorf("glob fastq files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func concatenateFiles(ctx context.Context, sources []string, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			_ = out.Close()
			return err
		}
		in, err := os.Open(src)
		if err != nil {
			_ = out.Close()
			return err
		}
		_, err = io.Copy(out, in)
		_ = in.Close()
		if err != nil {
			_ = out.Close()
			return err
		}
	}
	return out.Close()
}

func (o *Orchestrator) demultiplex(ctx context.Context, logger *slog.Logger, toolchain Toolchain, run *domain.PipelineRun) error {
	run.Status = domain.RunStatusDemultiplexing
	demuxDir := filepath.Join(run.OutputDir, demuxSubdir)
	if err := os.MkdirAll(demuxDir, 0o755); err != nil {
		return fmt.Errorf("create demultiplex dir: %w", err)
	}
	run.DemuxDir = demuxDir

	logger.Info("demultiplexing", "stage", "demultiplex", "combined_fastq", run.CombinedFastq, "demux_dir", demuxDir)
	inv := toolrunner.Invocation{
		Tool:       toolchain.Demultiplexer,
		Args:       demuxArgs(run.CombinedFastq, demuxDir),
		StdoutFile: filepath.Join(demuxDir, demuxLogName),
	}
	if err := o.runner.Run(ctx, inv); err != nil {
		return fmt.Errorf("demultiplexing: %w", err)
	}
	return nil
}

func demuxArgs(combinedFastq, demuxDir string) []string {
	return []string{
		"-f", combinedFastq,
		"-b", demuxDir,
		"--trim",
		"--tsv",
		"--kit", "Auto",
	}
}

// compress gzips every FASTQ in the demultiplexed output, one compressed
// file per input. Files are listed explicitly; no shell glob.
func (o *Orchestrator) compress(ctx context.Context, logger *slog.Logger, toolchain Toolchain, run *domain.PipelineRun) error {
	run.Status = domain.RunStatusCompressing
	files, err := globFastq(run.DemuxDir)
	if err != nil {
		return err
	}
	logger.Info("compressing fastq files", "stage", "compress", "demux_dir", run.DemuxDir, "count", len(files))
	if len(files) == 0 {
		return nil
	}
	inv := toolrunner.Invocation{
		Tool: toolchain.Gzip,
		Args: files,
	}
	if err := o.runner.Run(ctx, inv); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}
	return nil
}
