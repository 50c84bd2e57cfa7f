package schema

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Header is the fixed CSV column header line, per spec.md §6.
var Header = Columns()

// ToCSVRecord renders a Row as the ordered string slice encoding/csv
// expects, in the fixed field order from spec.md §6. Booleans serialize
// as "0"/"1" (spec.md §4.5), not "true"/"false".
func ToCSVRecord(r *Row) []string {
	return []string{
		strconv.FormatUint(r.CommandID, 10),
		r.RawCommand,
		r.BaseCommand,
		r.ShellType,
		strconv.FormatInt(int64(r.ExitCode), 10),
		r.Timestamp,
		boolDigit(r.SudoUsed),
		r.WorkingDirectory,
		strconv.FormatInt(int64(r.UserID), 10),
		r.UserName,
		r.HostName,
		strconv.FormatInt(int64(r.RiskLevel), 10),
	}
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// FromCSVRecord parses one CSV data line (already split into fields by
// encoding/csv) into a Row, mirroring getRecordFromLine in
// buildEngine-serial.c field-for-field. Boolean parsing is lenient,
// accepting "true"/"false" (case-insensitive) or "0"/"1", per spec.md
// §4.5.
func FromCSVRecord(fields []string) (*Row, error) {
	if len(fields) != len(Header) {
		return nil, fmt.Errorf("schema: expected %d CSV fields, got %d", len(Header), len(fields))
	}

	commandID, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid command_id %q: %w", fields[0], err)
	}
	exitCode, err := strconv.ParseInt(fields[4], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid exit_code %q: %w", fields[4], err)
	}
	sudoUsed, err := parseBoolLenient(fields[6])
	if err != nil {
		return nil, fmt.Errorf("schema: invalid sudo_used %q: %w", fields[6], err)
	}
	userID, err := strconv.ParseInt(fields[8], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid user_id %q: %w", fields[8], err)
	}
	riskLevel, err := strconv.ParseInt(fields[11], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid risk_level %q: %w", fields[11], err)
	}

	return &Row{
		CommandID:        commandID,
		RawCommand:       fields[1],
		BaseCommand:      fields[2],
		ShellType:        fields[3],
		ExitCode:         int32(exitCode),
		Timestamp:        fields[5],
		SudoUsed:         sudoUsed,
		WorkingDirectory: fields[7],
		UserID:           int32(userID),
		UserName:         fields[9],
		HostName:         fields[10],
		RiskLevel:        int32(riskLevel),
	}, nil
}

func parseBoolLenient(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a recognized boolean: %q", s)
	}
}

// NewCSVWriter configures an encoding/csv.Writer the way spec.md §4.5
// requires: comma-separated, double-quote escaping of embedded quotes
// and commas. encoding/csv already implements RFC 4180 quoting, so this
// only fixes the separator and ensures writes are flushed by the caller.
func NewCSVWriter(w *csv.Writer) *csv.Writer {
	w.Comma = ','
	return w
}
