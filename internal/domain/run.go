package domain

import (
	"errors"
	"strings"
	"time"
)

// Run statuses. A run moves strictly forward; no status is re-entered.
const (
	RunStatusPending        = "pending"
	RunStatusValidating     = "validating"
	RunStatusAborted        = "aborted"
	RunStatusBasecalling    = "basecalling"
	RunStatusConcatenating  = "concatenating"
	RunStatusDemultiplexing = "demultiplexing"
	RunStatusCompressing    = "compressing"
	RunStatusCleaning       = "cleaning"
	RunStatusArchiving      = "archiving"
	RunStatusDone           = "done"
	RunStatusFailed         = "failed"
)

// PipelineRun is the mutable state threaded through a single pipeline
// execution. Each stage records the artifact it produced.
type PipelineRun struct {
	ID                string
	InputDir          string
	OutputDir         string
	SampleSheetPath   string
	Flowcell          string
	Kit               string
	KeepIntermediates bool

	Status    string
	StartedAt time.Time
	EndedAt   *time.Time

	// Artifacts, populated as stages complete.
	SampleSheetCopy string
	FastqDir        string
	FastqCount      int
	CombinedFastq   string
	DemuxDir        string
	ArchivePath     string
}

func (r PipelineRun) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("run id is required")
	}
	if strings.TrimSpace(r.InputDir) == "" {
		return errors.New("input dir is required")
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return errors.New("status is required")
	}
	return nil
}
