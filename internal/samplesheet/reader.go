package samplesheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmh-genomics/minionpipe/internal/domain"
)

// Load reads a delimited samplesheet from disk. The delimiter is chosen by
// file extension: .csv is comma-separated, anything else is tab-separated.
// The first row is the header; rows with a differing field count are errors.
func Load(path string) (domain.SampleSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SampleSheet{}, fmt.Errorf("open samplesheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	format := FormatForPath(path)
	sheet, err := Parse(f, format)
	if err != nil {
		return domain.SampleSheet{}, err
	}
	sheet.Path = path
	return sheet, nil
}

// FormatForPath maps a samplesheet filename to its delimited format.
func FormatForPath(path string) domain.SampleSheetFormat {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return domain.FormatCSV
	}
	return domain.FormatTSV
}

// Parse reads a delimited samplesheet from r.
func Parse(r io.Reader, format domain.SampleSheetFormat) (domain.SampleSheet, error) {
	reader := csv.NewReader(r)
	reader.Comma = format.Delimiter()

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.SampleSheet{}, errors.New("samplesheet is empty")
	}
	if err != nil {
		return domain.SampleSheet{}, fmt.Errorf("read samplesheet header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		columns[i] = name
		index[name] = i
	}

	sheet := domain.SampleSheet{Format: format, Columns: columns}
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.SampleSheet{}, fmt.Errorf("read samplesheet row %d: %w", row, err)
		}
		sheet.Records = append(sheet.Records, recordFromFields(index, fields))
	}
	return sheet, nil
}

// recordFromFields maps row fields by header position. Values are taken
// verbatim so that whitespace violations reach the validator.
func recordFromFields(index map[string]int, fields []string) domain.Record {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	return domain.Record{
		SampleID:      get("Sample_ID"),
		SampleName:    get("Sample_Name"),
		Barcode:       get("Barcode"),
		RunID:         get("Run_ID"),
		RunProtocol:   get("Run_Protocol"),
		InstrumentID:  get("Instrument_ID"),
		SequencingKit: get("Sequencing_Kit"),
		FlowcellType:  get("Flowcell_Type"),
		ProjectID:     get("Project_ID"),
		ReadType:      get("Read_Type"),
		User:          get("User"),
	}
}

// WriteProvenanceCopy copies the samplesheet verbatim into the output
// directory as SampleSheet.<ext>, preserving the source format.
func WriteProvenanceCopy(sheet domain.SampleSheet, outputDir string) (string, error) {
	if strings.TrimSpace(sheet.Path) == "" {
		return "", errors.New("samplesheet path is required")
	}
	src, err := os.Open(sheet.Path)
	if err != nil {
		return "", fmt.Errorf("open samplesheet: %w", err)
	}
	defer func() { _ = src.Close() }()

	dstPath := filepath.Join(outputDir, "SampleSheet."+string(sheet.Format))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create samplesheet copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("copy samplesheet: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close samplesheet copy: %w", err)
	}
	return dstPath, nil
}
