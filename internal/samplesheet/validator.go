package samplesheet

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bmh-genomics/minionpipe/internal/domain"
)

const sampleIDLength = 15

// Validate performs strict validation of a samplesheet. Every violation
// across the schema and every record is collected into the returned
// *ValidationError; a single bad record invalidates the whole sheet.
// Validate has no side effects and is a pure function of its input.
func Validate(sheet domain.SampleSheet) error {
	issues := &ValidationError{}

	required := make(map[string]struct{}, len(domain.RequiredColumns))
	for _, col := range domain.RequiredColumns {
		required[col] = struct{}{}
		if !sheet.HasColumn(col) {
			issues.Add(col, "", fmt.Sprintf("required column %q not found in samplesheet", col))
		}
	}
	for _, col := range sheet.Columns {
		name := strings.TrimSpace(col)
		if _, ok := required[name]; !ok {
			issues.Add(name, "", fmt.Sprintf("unexpected column %q in samplesheet", name))
		}
	}

	for i, rec := range sheet.Records {
		validateSampleID(issues, i, rec.SampleID)
		validateProjectID(issues, i, rec.ProjectID)
	}

	return issues.OrNil()
}

// validateSampleID enforces the MIN-YYYY-NNNNNN format. Checks run in order
// and stop at the first failure for the record.
func validateSampleID(issues *ValidationError, row int, value string) {
	components := strings.Split(value, "-")
	switch {
	case len(value) != sampleIDLength:
		issues.Add("Sample_ID", value, fmt.Sprintf(
			"row %d: Sample_ID %q does not meet the expected length of %d characters; expected format 'MIN-2020-000001'",
			row, value, sampleIDLength))
	case len(components) != 3:
		issues.Add("Sample_ID", value, fmt.Sprintf(
			"row %d: Sample_ID %q must contain three hyphen-separated components; expected format 'MIN-2020-000001'",
			row, value))
	case components[0] != "MIN":
		issues.Add("Sample_ID", value, fmt.Sprintf(
			"row %d: text component of Sample_ID %q does not equal expected 'MIN'", row, value))
	case !allDigits(components[1]) || len(components[1]) != 4:
		issues.Add("Sample_ID", value, fmt.Sprintf(
			"row %d: year component of Sample_ID %q does not match expected 'YYYY' format", row, value))
	case !allDigits(components[2]) || len(components[2]) != 6:
		issues.Add("Sample_ID", value, fmt.Sprintf(
			"row %d: id component of Sample_ID %q does not match expected 'XXXXXX' format", row, value))
	}
}

func validateProjectID(issues *ValidationError, row int, value string) {
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		issues.Add("Project_ID", value, fmt.Sprintf(
			"row %d: found whitespace character in Project_ID value %q", row, value))
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
