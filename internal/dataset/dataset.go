// Package dataset loads materialization requests from disk.
//
// A dataset file carries the same shape as the materialize request body:
// a database id plus table definitions with attributes and rows. Files are
// YAML by default; a .json extension switches to JSON.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// File is one parsed dataset file.
type File struct {
	DatabaseID int64   `yaml:"database_id" json:"database_id"`
	Tables     []Table `yaml:"tables" json:"tables"`
}

// Table defines one table to materialize.
type Table struct {
	Name       string           `yaml:"name" json:"name"`
	Attributes []Attribute      `yaml:"attributes" json:"attributes"`
	Rows       []map[string]any `yaml:"rows" json:"rows"`
}

// Attribute defines one column. DataType is the external type tag in
// whatever spelling the source system uses; it is narrowed later.
type Attribute struct {
	Name         string `yaml:"name" json:"name"`
	DataType     string `yaml:"data_type" json:"data_type"`
	IsNullable   bool   `yaml:"is_nullable" json:"is_nullable"`
	IsPrimaryKey bool   `yaml:"is_primary_key" json:"is_primary_key"`
	IsForeignKey bool   `yaml:"is_foreign_key" json:"is_foreign_key"`
}

// ParseError reports a dataset file that could not be decoded or validated.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Load reads, decodes, and validates a dataset file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}

	f, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.File == "" {
			parseErr.File = path
		}
		return nil, err
	}
	return f, nil
}

// Parse decodes dataset content. The extension picks the decoder: ".json"
// uses encoding/json, everything else is treated as YAML.
func Parse(raw []byte, ext string) (*File, error) {
	var f File

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid JSON: %v", err)}
		}
	default:
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.DatabaseID <= 0 {
		return &ParseError{Message: fmt.Sprintf("database_id must be positive, got %d", f.DatabaseID)}
	}
	if len(f.Tables) == 0 {
		return &ParseError{Message: "dataset defines no tables"}
	}

	seen := make(map[string]bool, len(f.Tables))
	for i, t := range f.Tables {
		if t.Name == "" {
			return &ParseError{Message: fmt.Sprintf("table %d has no name", i)}
		}
		if seen[t.Name] {
			return &ParseError{Message: fmt.Sprintf("table %q defined twice", t.Name)}
		}
		seen[t.Name] = true

		for j, a := range t.Attributes {
			if a.Name == "" {
				return &ParseError{Message: fmt.Sprintf("table %q: attribute %d has no name", t.Name, j)}
			}
		}
	}
	return nil
}

// Specs converts table definitions into engine table specs. Attribute type
// tags are parsed here; unknown tags stay in play and default to text
// downstream. The same shape arrives over the wire, so the HTTP facade
// shares this conversion.
func Specs(tables []Table) []core.TableSpec {
	specs := make([]core.TableSpec, 0, len(tables))
	for _, t := range tables {
		spec := core.TableSpec{
			Name: t.Name,
			Rows: t.Rows,
		}
		for _, a := range t.Attributes {
			spec.Columns = append(spec.Columns, core.ColumnSpec{
				Name:       a.Name,
				Type:       core.ParseExternalType(a.DataType),
				Nullable:   a.IsNullable,
				PrimaryKey: a.IsPrimaryKey,
				ForeignKey: a.IsForeignKey,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

// Specs converts the file body into engine table specs.
func (f *File) Specs() []core.TableSpec {
	return Specs(f.Tables)
}
