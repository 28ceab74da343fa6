package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFlowcell = "FLO-MIN106"
	DefaultKit      = "SQK-RBK004"

	defaultBasecaller    = "guppy_basecaller"
	defaultDemultiplexer = "qcat"
	defaultGzip          = "gzip"
	defaultArchiver      = "7z"
)

// Duration unmarshals from YAML duration strings like "90m" or "2h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse timeout: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// Toolchain names the external executables the pipeline drives, plus the
// per-invocation timeout. Zero values fall back to the defaults above; a
// zero timeout leaves invocations unbounded.
type Toolchain struct {
	Basecaller    string   `yaml:"basecaller,omitempty"`
	Demultiplexer string   `yaml:"demultiplexer,omitempty"`
	Gzip          string   `yaml:"gzip,omitempty"`
	Archiver      string   `yaml:"archiver,omitempty"`
	Timeout       Duration `yaml:"timeout,omitempty"`
}

// WithDefaults returns the toolchain with blank entries replaced by the
// default binaries.
func (t Toolchain) WithDefaults() Toolchain {
	if strings.TrimSpace(t.Basecaller) == "" {
		t.Basecaller = defaultBasecaller
	}
	if strings.TrimSpace(t.Demultiplexer) == "" {
		t.Demultiplexer = defaultDemultiplexer
	}
	if strings.TrimSpace(t.Gzip) == "" {
		t.Gzip = defaultGzip
	}
	if strings.TrimSpace(t.Archiver) == "" {
		t.Archiver = defaultArchiver
	}
	return t
}

// FileConfig is the optional YAML config file: toolchain overrides plus
// default flowcell/kit identifiers.
type FileConfig struct {
	Toolchain Toolchain `yaml:"toolchain"`
	Flowcell  string    `yaml:"flowcell,omitempty"`
	Kit       string    `yaml:"kit,omitempty"`
}

// LoadFileConfig parses a YAML config file. Unknown keys are rejected.
func LoadFileConfig(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Toolchain.Timeout < 0 {
		return FileConfig{}, errors.New("toolchain timeout must be >= 0")
	}
	return cfg, nil
}

// Config is the full description of one pipeline run.
type Config struct {
	InputDir          string
	OutputDir         string
	SampleSheetPath   string
	Flowcell          string
	Kit               string
	KeepIntermediates bool
	Toolchain         Toolchain
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return errors.New("input dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	if strings.TrimSpace(c.SampleSheetPath) == "" {
		return errors.New("samplesheet path is required")
	}
	if strings.TrimSpace(c.Flowcell) == "" {
		return errors.New("flowcell is required")
	}
	if strings.TrimSpace(c.Kit) == "" {
		return errors.New("kit is required")
	}
	return nil
}
