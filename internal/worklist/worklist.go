// Package worklist loads the scan worklist from YAML.
package worklist

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/strikelab/optionscan/internal/contracts"
)

// File is the on-disk worklist shape. A file-level as_of applies to
// every entry that does not set its own.
type File struct {
	AsOf  string  `yaml:"as_of,omitempty"`
	Items []Entry `yaml:"items"`
}

// Entry is one row of the worklist
type Entry struct {
	Ticker   string `yaml:"ticker"`
	Strategy string `yaml:"strategy"`
	Bias     string `yaml:"bias"`
	AsOf     string `yaml:"as_of,omitempty"`
}

// Load reads and validates a worklist file. Every entry must resolve
// to a valid work item; a single bad row fails the load so a typo
// cannot silently shrink the scan.
func Load(path string) ([]contracts.WorkItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worklist: %w", err)
	}
	return Parse(raw)
}

// LoadForDate reads a worklist and fills the file-level as_of with
// the given date when the file does not set one. Used by scheduled
// scans, where the evaluation date is the run date.
func LoadForDate(path string, asOf time.Time) ([]contracts.WorkItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worklist: %w", err)
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse worklist: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("worklist has no items")
	}
	if file.AsOf == "" {
		file.AsOf = asOf.Format(contracts.DateLayout)
	}
	return Resolve(file)
}

// Parse decodes worklist YAML. Unknown fields are rejected.
func Parse(raw []byte) ([]contracts.WorkItem, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse worklist: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("worklist has no items")
	}

	return Resolve(file)
}

// Resolve converts a decoded worklist file into validated work items
func Resolve(file File) ([]contracts.WorkItem, error) {
	items := make([]contracts.WorkItem, 0, len(file.Items))
	for i, entry := range file.Items {
		item, err := resolve(entry, file.AsOf)
		if err != nil {
			return nil, fmt.Errorf("worklist item %d (%s): %w", i, entry.Ticker, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func resolve(entry Entry, fileAsOf string) (contracts.WorkItem, error) {
	asOf := entry.AsOf
	if asOf == "" {
		asOf = fileAsOf
	}
	if asOf == "" {
		return contracts.WorkItem{}, fmt.Errorf("missing as_of and no file-level default")
	}
	date, err := time.Parse(contracts.DateLayout, asOf)
	if err != nil {
		return contracts.WorkItem{}, fmt.Errorf("invalid as_of %q: %w", asOf, err)
	}

	item := contracts.WorkItem{
		Ticker:   entry.Ticker,
		Strategy: contracts.StrategyType(entry.Strategy),
		Bias:     contracts.Bias(entry.Bias),
		AsOf:     date,
	}
	if err := item.Validate(); err != nil {
		return contracts.WorkItem{}, err
	}
	return item, nil
}
