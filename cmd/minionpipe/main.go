package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmh-genomics/minionpipe/internal/artifacts"
	"github.com/bmh-genomics/minionpipe/internal/pipeline"
	"github.com/bmh-genomics/minionpipe/internal/platform/env"
	"github.com/bmh-genomics/minionpipe/internal/platform/objectstore"
	"github.com/bmh-genomics/minionpipe/internal/platform/postgres"
	"github.com/bmh-genomics/minionpipe/internal/runledger"
	"github.com/bmh-genomics/minionpipe/internal/samplesheet"
	"github.com/bmh-genomics/minionpipe/internal/toolrunner"
)

func main() {
	var (
		inputDir   string
		outputDir  string
		sheetPath  string
		flowcell   string
		kit        string
		keepFiles  bool
		configPath string
	)

	flag.StringVar(&inputDir, "input-dir", "", "Directory of raw MinION output (FAST5 files)")
	flag.StringVar(&outputDir, "output-dir", "", "Destination directory for basecalled and demultiplexed output")
	flag.StringVar(&sheetPath, "samplesheet", "", "Path to the samplesheet (.tsv or .csv); copied into the output directory")
	flag.StringVar(&flowcell, "flowcell", "", "Flowcell type used for the run (default "+pipeline.DefaultFlowcell+")")
	flag.StringVar(&kit, "kit", "", "Sequencing kit used for the run (default "+pipeline.DefaultKit+")")
	flag.BoolVar(&keepFiles, "keep-intermediary-files", false, "Keep the basecalling output and the combined FASTQ file")
	flag.StringVar(&configPath, "config", "", "Optional YAML config with toolchain overrides")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fileCfg pipeline.FileConfig
	if configPath != "" {
		var err error
		fileCfg, err = pipeline.LoadFileConfig(configPath)
		if err != nil {
			logger.Error("invalid config file", "error", err)
			os.Exit(2)
		}
	}

	cfg := pipeline.Config{
		InputDir:          inputDir,
		OutputDir:         outputDir,
		SampleSheetPath:   sheetPath,
		Flowcell:          firstNonEmpty(flowcell, fileCfg.Flowcell, pipeline.DefaultFlowcell),
		Kit:               firstNonEmpty(kit, fileCfg.Kit, pipeline.DefaultKit),
		KeepIntermediates: keepFiles,
		Toolchain:         fileCfg.Toolchain,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	var ledger pipeline.RunLedger
	if env.IsSet("MINIONPIPE_DATABASE_URL") {
		dbCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid database config", "error", err)
			os.Exit(2)
		}
		db, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			logger.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		ledger, err = runledger.NewLedger(db)
		if err != nil {
			logger.Error("run ledger init failed", "error", err)
			os.Exit(2)
		}
	}

	var uploader pipeline.ArchiveUploader
	if env.IsSet("MINIONPIPE_MINIO_ENDPOINT") {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid object store config", "error", err)
			os.Exit(2)
		}
		client, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			logger.Error("object store client init failed", "error", err)
			os.Exit(2)
		}
		if err := objectstore.EnsureBucket(ctx, client, storeCfg); err != nil {
			logger.Error("object store unavailable", "error", err)
			os.Exit(1)
		}
		store, err := objectstore.NewMinioStoreWithClient(client)
		if err != nil {
			logger.Error("object store init failed", "error", err)
			os.Exit(2)
		}
		uploader, err = artifacts.NewUploader(store, storeCfg.Bucket)
		if err != nil {
			logger.Error("uploader init failed", "error", err)
			os.Exit(2)
		}
	}

	toolTimeout, err := env.Duration("MINIONPIPE_TOOL_TIMEOUT", time.Duration(cfg.Toolchain.Timeout))
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	cfg.Toolchain = cfg.Toolchain.WithDefaults()
	runner := toolrunner.ExecRunner{Timeout: toolTimeout}
	manager, err := artifacts.NewManager(runner, cfg.Toolchain.Archiver)
	if err != nil {
		logger.Error("artifact manager init failed", "error", err)
		os.Exit(2)
	}
	orch, err := pipeline.NewOrchestrator(runner, logger, manager, ledger, uploader)
	if err != nil {
		logger.Error("orchestrator init failed", "error", err)
		os.Exit(2)
	}

	logger.Info("starting basecalling workflow", "input_dir", cfg.InputDir, "output_dir", cfg.OutputDir)
	run, err := orch.Run(ctx, cfg)
	if err != nil {
		var validationErr *samplesheet.ValidationError
		if errors.As(err, &validationErr) {
			for _, d := range validationErr.Diagnostics {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", d.String())
			}
			fmt.Fprintln(os.Stderr, "ERROR: quitting due to validation error(s) in samplesheet")
			os.Exit(1)
		}
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("done", "run_id", run.ID, "output_dir", run.OutputDir, "archive", run.ArchivePath)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
