package runledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bmh-genomics/minionpipe/internal/domain"
)

type execCall struct {
	query string
	args  []any
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (db *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	db.calls = append(db.calls, execCall{query: query, args: args})
	return nil, db.err
}

func startedRun() domain.PipelineRun {
	return domain.PipelineRun{
		ID:              "run_abc",
		InputDir:        "/data/fast5",
		OutputDir:       "/data/out",
		SampleSheetPath: "/data/SampleSheet.tsv",
		Flowcell:        "FLO-MIN106",
		Kit:             "SQK-RBK004",
		Status:          domain.RunStatusPending,
		StartedAt:       time.Now().UTC(),
	}
}

func TestRecordStart(t *testing.T) {
	db := &fakeDB{}
	l, err := NewLedger(db)
	if err != nil {
		t.Fatalf("NewLedger() err=%v", err)
	}

	if err := l.RecordStart(context.Background(), startedRun()); err != nil {
		t.Fatalf("RecordStart() err=%v", err)
	}
	if len(db.calls) != 1 {
		t.Fatalf("calls=%d, want 1", len(db.calls))
	}
	call := db.calls[0]
	if !strings.Contains(call.query, "INSERT INTO pipeline_runs") {
		t.Fatalf("query=%q", call.query)
	}
	if call.args[0] != "run_abc" {
		t.Fatalf("args[0]=%v, want run id", call.args[0])
	}
}

func TestRecordStart_InvalidRun(t *testing.T) {
	l, _ := NewLedger(&fakeDB{})
	run := startedRun()
	run.ID = ""
	if err := l.RecordStart(context.Background(), run); err == nil {
		t.Fatalf("RecordStart() expected error for invalid run")
	}
}

func TestRecordFinish(t *testing.T) {
	db := &fakeDB{}
	l, _ := NewLedger(db)
	run := startedRun()
	run.Status = domain.RunStatusFailed
	ended := time.Now().UTC()
	run.EndedAt = &ended

	runErr := errors.New("basecalling: guppy_basecaller failed (exit 1)")
	if err := l.RecordFinish(context.Background(), run, runErr); err != nil {
		t.Fatalf("RecordFinish() err=%v", err)
	}
	call := db.calls[0]
	if !strings.Contains(call.query, "UPDATE pipeline_runs") {
		t.Fatalf("query=%q", call.query)
	}
	if call.args[1] != domain.RunStatusFailed {
		t.Fatalf("args[1]=%v, want failed", call.args[1])
	}
	errText, ok := call.args[4].(sql.NullString)
	if !ok || !errText.Valid || errText.String != runErr.Error() {
		t.Fatalf("args[4]=%v, want run error text", call.args[4])
	}
}

func TestRecordFinish_SuccessHasNullError(t *testing.T) {
	db := &fakeDB{}
	l, _ := NewLedger(db)
	run := startedRun()
	run.Status = domain.RunStatusDone
	run.ArchivePath = "/data/out.7z"

	if err := l.RecordFinish(context.Background(), run, nil); err != nil {
		t.Fatalf("RecordFinish() err=%v", err)
	}
	call := db.calls[0]
	if errText, ok := call.args[4].(sql.NullString); !ok || errText.Valid {
		t.Fatalf("args[4]=%v, want null error", call.args[4])
	}
	if archive, ok := call.args[3].(sql.NullString); !ok || !archive.Valid || archive.String != "/data/out.7z" {
		t.Fatalf("args[3]=%v, want archive path", call.args[3])
	}
}

func TestLedger_DBError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	l, _ := NewLedger(db)
	if err := l.RecordStart(context.Background(), startedRun()); err == nil {
		t.Fatalf("RecordStart() expected error from db")
	}
}
