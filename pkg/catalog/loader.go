// Package catalog embeds the seed driver catalog. Records are kept raw, with
// the key spellings of the upstream table, and are normalized by the
// selection engine.
package catalog

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed drivers.yaml
var driversRawData []byte

// driversFile is the top-level structure of a driver catalog YAML file.
type driversFile struct {
	Drivers []map[string]any `yaml:"drivers"`
}

// Catalog provides lazy-loaded access to the embedded seed catalog.
type Catalog struct {
	once    sync.Once
	records []map[string]any
	err     error
}

// NewCatalog creates a Catalog that parses the embedded YAML on first access.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Records returns a copy of the raw seed records.
func (c *Catalog) Records() ([]map[string]any, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	return copyRecords(c.records), nil
}

func (c *Catalog) load() {
	c.records, c.err = ParseRecords(driversRawData)
}

// ParseRecords decodes a driver catalog document. The document is either a
// mapping with a top-level "drivers" list or a bare list of records.
func ParseRecords(data []byte) ([]map[string]any, error) {
	var f driversFile
	if err := yaml.Unmarshal(data, &f); err == nil && f.Drivers != nil {
		return f.Drivers, nil
	}
	var list []map[string]any
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	return list, nil
}

// ParseCSV reads driver records from CSV. The first row names the columns;
// values are kept as trimmed strings and blank cells are dropped.
func ParseCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var out []map[string]any
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read csv: %w", err)
		}
		rec := make(map[string]any, len(header))
		for i, v := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				rec[header[i]] = v
			}
		}
		out = append(out, rec)
	}
}

func copyRecords(in []map[string]any) []map[string]any {
	out := make([]map[string]any, len(in))
	for i, rec := range in {
		cp := make(map[string]any, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
