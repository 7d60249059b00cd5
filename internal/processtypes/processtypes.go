// Package processtypes holds the process-type reference table.
//
// The table is fixed at build time and never mutated. Every accessor returns
// a copy, so callers may modify results freely and concurrent reads need no
// locking.
package processtypes

import (
	"errors"
	"fmt"
)

// Entry is a single process-type code and its label.
type Entry struct {
	Code        string `json:"code" toml:"code"`
	Description string `json:"description" toml:"description"`
}

// Process type codes.
const (
	CodeAdd    = "A"
	CodeUpdate = "U"
)

var (
	// ErrEmptyTable is returned by Validate for a table with no entries.
	ErrEmptyTable = errors.New("process type table is empty")
	// ErrEmptyCode is returned by Validate for an entry with a blank code.
	ErrEmptyCode = errors.New("process type code is empty")
)

// DuplicateCodeError reports a code that appears more than once.
type DuplicateCodeError struct {
	Code  string
	First int
	Again int
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("duplicate process type code %q at positions %d and %d", e.Code, e.First, e.Again)
}

// table is ordered; List preserves this order.
var table = []Entry{
	{Code: CodeAdd, Description: "Add"},
	{Code: CodeUpdate, Description: "Update"},
}

func init() {
	if err := Validate(table); err != nil {
		panic(err)
	}
}

// Provider serves the process-type table. The zero value is ready to use.
type Provider struct{}

// NewProvider returns a Provider backed by the built-in table.
func NewProvider() *Provider {
	return &Provider{}
}

// List returns every process type in table order.
func (p *Provider) List() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Lookup returns the entry for code. Matching is case-sensitive.
func (p *Provider) Lookup(code string) (Entry, bool) {
	for _, e := range table {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}

// Codes returns the codes in table order.
func (p *Provider) Codes() []string {
	codes := make([]string, len(table))
	for i, e := range table {
		codes[i] = e.Code
	}
	return codes
}

// Len returns the number of entries.
func (p *Provider) Len() int {
	return len(table)
}

// Validate checks that entries is non-empty and that every code is
// present and unique.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyTable
	}

	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Code == "" {
			return fmt.Errorf("entry %d: %w", i, ErrEmptyCode)
		}
		if first, ok := seen[e.Code]; ok {
			return fmt.Errorf("invalid process type table: %w", &DuplicateCodeError{Code: e.Code, First: first, Again: i})
		}
		seen[e.Code] = i
	}
	return nil
}
