package domain

import "strings"

// SampleSheetFormat identifies the delimited-text flavour of a samplesheet.
type SampleSheetFormat string

const (
	FormatTSV SampleSheetFormat = "tsv"
	FormatCSV SampleSheetFormat = "csv"
)

// Delimiter returns the column separator for the format.
func (f SampleSheetFormat) Delimiter() rune {
	if f == FormatCSV {
		return ','
	}
	return '\t'
}

// RequiredColumns lists the canonical samplesheet columns, in the order they
// appear in the template distributed to sequencing users.
var RequiredColumns = []string{
	"Sample_ID",
	"Sample_Name",
	"Barcode",
	"Run_ID",
	"Run_Protocol",
	"Instrument_ID",
	"Sequencing_Kit",
	"Flowcell_Type",
	"Project_ID",
	"Read_Type",
	"User",
}

// Record is a single samplesheet row.
type Record struct {
	SampleID      string
	SampleName    string
	Barcode       string
	RunID         string
	RunProtocol   string
	InstrumentID  string
	SequencingKit string
	FlowcellType  string
	ProjectID     string
	ReadType      string
	User          string
}

// SampleSheet is a parsed samplesheet: the column names found in the source
// table plus the ordered records.
type SampleSheet struct {
	Path    string
	Format  SampleSheetFormat
	Columns []string
	Records []Record
}

// HasColumn reports whether the sheet's header contains the named column.
func (s SampleSheet) HasColumn(name string) bool {
	for _, col := range s.Columns {
		if strings.TrimSpace(col) == name {
			return true
		}
	}
	return false
}
