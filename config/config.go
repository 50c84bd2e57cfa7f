// Package config parses the secondary-index configuration the CLI
// drivers load at store.Open time: which attributes to build a B+-tree
// index over, and each attribute's schema.FieldType.
//
// Grounded on database.ParseGeneratorConfig/parseGeneratorConfigFromBytes
// in the teacher's database/database.go: a gopkg.in/yaml.v3 decode of a
// small struct, with an empty path treated as "no config" rather than
// an error (the CLI's plain --index attr:type flags cover that case).
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jairik/Parallel-Query-Processing-System/schema"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
)

// IndexEntry is one YAML-configured secondary index.
type IndexEntry struct {
	Attribute string `yaml:"attribute"`
	Type      string `yaml:"type"`
}

// IndexConfig is the top-level YAML document shape: a list of indexes
// to build, mirroring GeneratorConfig's flat field-list style.
type IndexConfig struct {
	Indexes []IndexEntry `yaml:"indexes"`
}

// ParseFile reads and parses path into an IndexConfig. An empty path
// returns a zero-value IndexConfig, matching ParseGeneratorConfig's
// "no config file" short circuit.
func ParseFile(path string) (IndexConfig, error) {
	if path == "" {
		return IndexConfig{}, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return IndexConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parseBytes(buf)
}

func parseBytes(buf []byte) (IndexConfig, error) {
	var cfg IndexConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return IndexConfig{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	return cfg, nil
}

// ParseIndexFlag parses a single "attribute:type" --index flag value
// (e.g. "user_id:int") into a store.IndexSpec.
func ParseIndexFlag(flag string) (store.IndexSpec, error) {
	parts := strings.SplitN(flag, ":", 2)
	if len(parts) != 2 {
		return store.IndexSpec{}, fmt.Errorf("config: malformed --index flag %q, want attribute:type", flag)
	}
	attribute := strings.TrimSpace(parts[0])
	typeName := strings.TrimSpace(parts[1])

	info, ok := schema.FieldByName(attribute)
	if !ok {
		return store.IndexSpec{}, fmt.Errorf("config: unknown index attribute %q", attribute)
	}
	ft, ok := parseFieldType(typeName)
	if !ok {
		return store.IndexSpec{}, fmt.Errorf("config: unknown field type %q for attribute %q", typeName, attribute)
	}
	if ft != info.Type {
		return store.IndexSpec{}, fmt.Errorf("config: attribute %q has type %s, not %s", attribute, info.Type, ft)
	}
	return store.IndexSpec{Attribute: attribute, FieldType: ft}, nil
}

// Specs resolves every entry in cfg into a store.IndexSpec, validating
// attribute names and field types against the schema package.
func (cfg IndexConfig) Specs() ([]store.IndexSpec, error) {
	specs := make([]store.IndexSpec, 0, len(cfg.Indexes))
	for _, entry := range cfg.Indexes {
		info, ok := schema.FieldByName(entry.Attribute)
		if !ok {
			return nil, fmt.Errorf("config: unknown index attribute %q", entry.Attribute)
		}
		ft, ok := parseFieldType(entry.Type)
		if !ok {
			return nil, fmt.Errorf("config: unknown field type %q for attribute %q", entry.Type, entry.Attribute)
		}
		if ft != info.Type {
			return nil, fmt.Errorf("config: attribute %q has type %s, not %s", entry.Attribute, info.Type, ft)
		}
		specs = append(specs, store.IndexSpec{Attribute: entry.Attribute, FieldType: ft})
	}
	return specs, nil
}

func parseFieldType(name string) (schema.FieldType, bool) {
	switch strings.ToLower(name) {
	case "uint64", "u64":
		return schema.FieldUint64, true
	case "int", "i32", "int32":
		return schema.FieldInt, true
	case "bool", "boolean":
		return schema.FieldBool, true
	case "string", "str":
		return schema.FieldString, true
	default:
		return 0, false
	}
}
