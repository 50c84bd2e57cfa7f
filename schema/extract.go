package schema

import (
	"strconv"
	"strings"

	"github.com/Jairik/Parallel-Query-Processing-System/key"
)

// ExtractKey pulls the typed value of attr out of row, mirroring
// extract_key_from_record in recordSchema.c. The caller is responsible
// for only calling this with an attribute name that FieldByName resolves
// — it is a programming error otherwise, just as the original aborts the
// process on an unknown attribute.
func ExtractKey(row *Row, attr string) key.Key {
	switch attr {
	case "command_id":
		return key.U64(row.CommandID)
	case "exit_code":
		return key.I32(row.ExitCode)
	case "user_id":
		return key.I32(row.UserID)
	case "risk_level":
		return key.I32(row.RiskLevel)
	case "sudo_used":
		return key.Bool(row.SudoUsed)
	case "raw_command":
		return key.String(row.RawCommand)
	case "base_command":
		return key.String(row.BaseCommand)
	case "shell_type":
		return key.String(row.ShellType)
	case "timestamp":
		return key.String(row.Timestamp)
	case "working_directory":
		return key.String(row.WorkingDirectory)
	case "user_name":
		return key.String(row.UserName)
	case "host_name":
		return key.String(row.HostName)
	default:
		panic("schema: unknown index attribute: " + attr)
	}
}

// CellText renders the attribute's value in its canonical string form,
// used by SELECT projection to build ResultSet cells.
func CellText(row *Row, attr string) (string, bool) {
	info, ok := FieldByName(attr)
	if !ok {
		return "", false
	}
	k := ExtractKey(row, attr)
	switch info.Type {
	case FieldBool:
		if k.Bool() {
			return "1", true
		}
		return "0", true
	default:
		return k.String(), true
	}
}

// CoerceLiteral converts literal text to a Key of the given field type,
// the way a predicate leaf coerces its stored literal once at compile
// time. ok is false on coercion failure (e.g. non-numeric literal against
// a numeric field), in which case the caller's leaf must evaluate false
// rather than reject the whole row (spec.md §4.3 / §7).
func CoerceLiteral(t FieldType, literal string) (key.Key, bool) {
	switch t {
	case FieldUint64:
		v, err := strconv.ParseUint(literal, 10, 64)
		if err != nil {
			return key.Key{}, false
		}
		return key.U64(v), true
	case FieldInt:
		v, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return key.Key{}, false
		}
		return key.I32(int32(v)), true
	case FieldBool:
		switch strings.ToLower(strings.TrimSpace(literal)) {
		case "true", "1":
			return key.Bool(true), true
		case "false", "0":
			return key.Bool(false), true
		default:
			return key.Key{}, false
		}
	case FieldString:
		return key.String(literal), true
	default:
		return key.Key{}, false
	}
}

// FieldTypeToKeyKind maps a schema.FieldType to the key.Kind used by an
// index built over that field, so the planner can check an index's
// declared type against a probe leaf's field type (spec.md §7: "Probe on
// an index whose type does not match the leaf's field type — probe is
// skipped, full scan used").
func FieldTypeToKeyKind(t FieldType) key.Kind {
	switch t {
	case FieldUint64:
		return key.KindU64
	case FieldInt:
		return key.KindI32
	case FieldBool:
		return key.KindBool
	default:
		return key.KindString
	}
}
