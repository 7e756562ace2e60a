package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/glreport/internal/ledger/schema"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
)

// ManifestFile is the optional dataset description read from a directory.
const ManifestFile = "dataset.yaml"

var extensions = []string{".csv", ".xlsx", ".xlsm", ".txt"}

// altNames are accepted file stems besides the canonical table name.
var altNames = map[string][]string{
	schema.TableAccountingLine: {"tal", "accountingline"},
	schema.TablePeriod:         {"period", "periods"},
	schema.TableTransaction:    {"transactions"},
	schema.TableAccount:        {"accounts"},
	schema.TableSubsidiary:     {"subsidiaries"},
}

// Manifest describes a dataset directory. Every field is optional.
type Manifest struct {
	Encoding string                         `yaml:"encoding"`
	Sheet    string                         `yaml:"sheet"`
	Tables   map[string]string              `yaml:"tables"`
	Aliases  map[string]map[string][]string `yaml:"aliases"`
}

// ReadManifest parses a manifest file.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("source: read manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("source: parse manifest %s: %w", path, err)
	}
	for name := range m.Tables {
		if !knownTable(name) {
			return m, fmt.Errorf("source: manifest %s: unknown table %q", path, name)
		}
	}
	return m, nil
}

// Dir loads tables from files in one directory.
type Dir struct {
	Root     string
	Encoding tabular.Encoding
	Sheet    string
	manifest Manifest
}

// NewDir prepares a loader for root, reading dataset.yaml when present.
// A manifest encoding applies unless enc is set explicitly.
func NewDir(root string, enc tabular.Encoding) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source: open dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source: %s is not a directory", root)
	}
	d := &Dir{Root: root, Encoding: enc}
	m, err := ReadManifest(filepath.Join(root, ManifestFile))
	switch {
	case err == nil:
		d.manifest = m
		d.Sheet = m.Sheet
		if d.Encoding == "" && m.Encoding != "" {
			parsed, err := tabular.ParseEncoding(m.Encoding)
			if err != nil {
				return nil, err
			}
			d.Encoding = parsed
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	return d, nil
}

// AliasOverrides returns the alias section of the manifest.
func (d *Dir) AliasOverrides() map[string]map[string][]string {
	return d.manifest.Aliases
}

// Load reads every table file it can find.
func (d *Dir) Load(ctx context.Context) (tabular.Set, error) {
	set := make(tabular.Set)
	for _, name := range tableNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, ok, err := d.locate(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		t, err := tabular.ReadFile(name, path, d.Encoding, d.Sheet)
		if err != nil {
			return nil, fmt.Errorf("source: %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

func (d *Dir) locate(name string) (string, bool, error) {
	if rel, ok := d.manifest.Tables[name]; ok {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.Root, rel)
		}
		if _, err := os.Stat(path); err != nil {
			return "", false, fmt.Errorf("source: manifest table %s: %w", name, err)
		}
		return path, true, nil
	}
	stems := append([]string{name}, altNames[name]...)
	for _, stem := range stems {
		for _, ext := range extensions {
			path := filepath.Join(d.Root, stem+ext)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, true, nil
			}
		}
	}
	return "", false, nil
}

// CanonicalTable maps a file stem or upload field name to its table.
func CanonicalTable(stem string) (string, bool) {
	stem = strings.ToLower(strings.TrimSpace(stem))
	for _, t := range schema.AllTables {
		if t == stem {
			return t, true
		}
		for _, alt := range altNames[t] {
			if alt == stem {
				return t, true
			}
		}
	}
	return "", false
}

func knownTable(name string) bool {
	for _, t := range schema.AllTables {
		if t == name {
			return true
		}
	}
	return false
}
