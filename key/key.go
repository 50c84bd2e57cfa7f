// Package key implements the tagged index key used by the B+-tree.
package key

import "fmt"

// Kind identifies which variant a Key holds.
type Kind int

const (
	KindU64 Kind = iota
	KindI32
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindU64:
		return "u64"
	case KindI32:
		return "i32"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Key is a tagged sum of the four variants the tree can index on:
// unsigned 64-bit, signed 32-bit, boolean, and string. Only one variant
// is meaningful per value; the zero Key is KindU64(0).
type Key struct {
	kind Kind
	u64  uint64
	i32  int32
	b    bool
	str  string
}

func U64(v uint64) Key  { return Key{kind: KindU64, u64: v} }
func I32(v int32) Key   { return Key{kind: KindI32, i32: v} }
func Bool(v bool) Key   { return Key{kind: KindBool, b: v} }
func String(v string) Key { return Key{kind: KindString, str: v} }

func (k Key) Kind() Kind     { return k.kind }
func (k Key) U64() uint64    { return k.u64 }
func (k Key) I32() int32     { return k.i32 }
func (k Key) Bool() bool     { return k.b }
func (k Key) String() string {
	switch k.kind {
	case KindU64:
		return fmt.Sprintf("%d", k.u64)
	case KindI32:
		return fmt.Sprintf("%d", k.i32)
	case KindBool:
		if k.b {
			return "true"
		}
		return "false"
	case KindString:
		return k.str
	default:
		return "<invalid key>"
	}
}

// Str returns the raw string payload (KindString only); unlike String()
// it does not stringify the other variants.
func (k Key) Str() string { return k.str }

// Compare returns <0, 0, >0 for k<other, k==other, k>other.
//
// Same-variant comparisons use natural order (booleans: false < true;
// strings: byte-lexicographic). Cross-variant comparisons fall back to
// comparing the variant ordinal — this only happens on programmer error,
// since a single index carries only one key variant.
func (k Key) Compare(other Key) int {
	if k.kind != other.kind {
		return int(k.kind) - int(other.kind)
	}
	switch k.kind {
	case KindU64:
		switch {
		case k.u64 < other.u64:
			return -1
		case k.u64 > other.u64:
			return 1
		default:
			return 0
		}
	case KindI32:
		switch {
		case k.i32 < other.i32:
			return -1
		case k.i32 > other.i32:
			return 1
		default:
			return 0
		}
	case KindBool:
		if k.b == other.b {
			return 0
		}
		if k.b {
			return 1
		}
		return -1
	case KindString:
		switch {
		case k.str < other.str:
			return -1
		case k.str > other.str:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// Equal reports whether k and other compare equal.
func (k Key) Equal(other Key) bool { return k.Compare(other) == 0 }

// MinKey and MaxKey return sentinel bounds for a given variant, used by
// the planner to express open-ended ranges (">", "<", etc.) as the
// tightest representable half-open interval in the key's domain.
func MinKey(kind Kind) Key {
	switch kind {
	case KindU64:
		return U64(0)
	case KindI32:
		return I32(minInt32)
	case KindBool:
		return Bool(false)
	case KindString:
		return String("")
	default:
		return Key{}
	}
}

func MaxKey(kind Kind) Key {
	switch kind {
	case KindU64:
		return U64(maxUint64)
	case KindI32:
		return I32(maxInt32)
	case KindBool:
		return Bool(true)
	case KindString:
		// There is no finite upper bound for strings; callers doing a
		// "<=v" / ">v" scan on a string index must treat this as "no
		// upper bound" and rely on full predicate filtering instead.
		return String(string(rune(0x10FFFF)))
	default:
		return Key{}
	}
}

const (
	minInt32  = -1 << 31
	maxInt32  = 1<<31 - 1
	maxUint64 = 1<<64 - 1
)

// Succ returns the smallest key strictly greater than k representable in
// k's domain, used to turn an exclusive ">" bound into an inclusive one
// for a closed-interval range scan. ok is false when k has no
// representable successor: k is already the maximum of its domain (so
// no key is strictly greater), or k is a string.
func (k Key) Succ() (next Key, ok bool) {
	switch k.kind {
	case KindU64:
		if k.u64 == maxUint64 {
			return k, false
		}
		return U64(k.u64 + 1), true
	case KindI32:
		if k.i32 == maxInt32 {
			return k, false
		}
		return I32(k.i32 + 1), true
	case KindBool:
		if k.b {
			return k, false
		}
		return Bool(true), true
	default:
		// Strings have no discrete successor; when Succ reports this for
		// a strict string range, the planner falls back to a full scan.
		return k, false
	}
}

// Pred is the dual of Succ, used to turn an exclusive "<" bound into an
// inclusive one.
func (k Key) Pred() (prev Key, ok bool) {
	switch k.kind {
	case KindU64:
		if k.u64 == 0 {
			return k, false
		}
		return U64(k.u64 - 1), true
	case KindI32:
		if k.i32 == minInt32 {
			return k, false
		}
		return I32(k.i32 - 1), true
	case KindBool:
		if !k.b {
			return k, false
		}
		return Bool(false), true
	default:
		return k, false
	}
}
