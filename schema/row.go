// Package schema describes the fixed command-log record layout: field
// offsets, types, and the attribute-name lookup the B+-tree indexes and
// the predicate evaluator use to pull a typed value out of a Row.
//
// Grounded on the original engine's record struct (logType.h) and its
// attribute-name lookup table (recordSchema.c): FieldInfo there is
// (name, offset, FieldType) resolved via offsetof; here it is (name,
// FieldType, accessor) since Go has no generic struct-offset access.
package schema

import "fmt"

// FieldType is the type tag for a Row field.
type FieldType int

const (
	FieldUint64 FieldType = iota
	FieldInt
	FieldBool
	FieldString
)

func (t FieldType) String() string {
	switch t {
	case FieldUint64:
		return "uint64"
	case FieldInt:
		return "int"
	case FieldBool:
		return "bool"
	case FieldString:
		return "string"
	default:
		return "unknown"
	}
}

// String length caps, per spec.md §3.
const (
	MaxRawCommand       = 512
	MaxBaseCommand      = 100
	MaxShellType        = 20
	MaxTimestamp        = 30
	MaxWorkingDirectory = 200
	MaxUserName         = 50
	MaxHostName         = 100
)

// Row is the fixed-width command-log record. Field order here matches
// the CSV column order fixed by spec.md §6:
// command_id, raw_command, base_command, shell_type, exit_code,
// timestamp, sudo_used, working_directory, user_id, user_name,
// host_name, risk_level.
type Row struct {
	CommandID        uint64
	RawCommand       string
	BaseCommand      string
	ShellType        string
	ExitCode         int32
	Timestamp        string
	SudoUsed         bool
	WorkingDirectory string
	UserID           int32
	UserName         string
	HostName         string
	RiskLevel        int32
}

// Validate enforces the §3 required-field rules: CommandID must be
// nonzero and every required string field must be nonempty.
func (r *Row) Validate() error {
	if r.CommandID == 0 {
		return fmt.Errorf("row invalid: command_id must be nonzero")
	}
	required := []struct {
		name  string
		value string
	}{
		{"raw_command", r.RawCommand},
		{"base_command", r.BaseCommand},
		{"shell_type", r.ShellType},
		{"timestamp", r.Timestamp},
		{"working_directory", r.WorkingDirectory},
		{"user_name", r.UserName},
		{"host_name", r.HostName},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("row invalid: %s is required", f.name)
		}
	}
	return nil
}

// FieldInfo mirrors the original's FieldInfo (name, offset, FieldType)
// minus the offset, which Go fields don't expose generically.
type FieldInfo struct {
	Name string
	Type FieldType
}

// fields is the process-wide attribute-name -> (type) table, immutable
// after package init, same role as the original's static record_fields
// array walked by get_field_info.
var fields = []FieldInfo{
	{"command_id", FieldUint64},
	{"raw_command", FieldString},
	{"base_command", FieldString},
	{"shell_type", FieldString},
	{"exit_code", FieldInt},
	{"timestamp", FieldString},
	{"sudo_used", FieldBool},
	{"working_directory", FieldString},
	{"user_id", FieldInt},
	{"user_name", FieldString},
	{"host_name", FieldString},
	{"risk_level", FieldInt},
}

var fieldIndex = func() map[string]FieldInfo {
	m := make(map[string]FieldInfo, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// FieldByName looks up attribute metadata by name. ok is false for an
// unknown attribute.
func FieldByName(name string) (FieldInfo, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

// Columns returns the fixed column order used for projection and CSV
// serialization.
func Columns() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
