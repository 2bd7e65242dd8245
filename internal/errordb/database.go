// Package errordb builds and queries selector-indexed databases of
// Solidity custom errors.
package errordb

import (
	"errors"
	"sort"
	"strings"

	"github.com/roeezolantz/errdex/internal/abi"
	"github.com/roeezolantz/errdex/internal/selector"
)

// ErrNotFound indicates a selector with no matching record.
var ErrNotFound = errors.New("selector not found")

// Record is one database entry. Inputs and InputTypes always serialize as
// JSON arrays, never null.
type Record struct {
	Name       string   `json:"name"`
	Signature  string   `json:"signature"`
	Inputs     []string `json:"inputs"`
	InputTypes []string `json:"inputTypes"`
	Source     string   `json:"source"`
	Selector   string   `json:"selector"`
}

// Attach maps extracted errors to records, computing each selector. Order
// is preserved and the input slice is not modified.
func Attach(extracted []abi.ExtractedError) []Record {
	records := make([]Record, 0, len(extracted))
	for _, e := range extracted {
		inputs := e.InputNames
		if inputs == nil {
			inputs = []string{}
		}
		types := e.InputTypes
		if types == nil {
			types = []string{}
		}
		records = append(records, Record{
			Name:       e.Name,
			Signature:  e.Signature,
			Inputs:     inputs,
			InputTypes: types,
			Source:     e.Source,
			Selector:   selector.Compute(e.Signature),
		})
	}
	return records
}

// Build produces the final database: selectors attached, records sorted
// ascending by selector.
func Build(extracted []abi.ExtractedError) []Record {
	records := Attach(extracted)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Selector < records[j].Selector
	})
	return records
}

// SourceCount is the number of records attributed to one Solidity file.
type SourceCount struct {
	Source string
	Count  int
}

// SummarizeBySource counts records per source, sources ascending.
func SummarizeBySource(records []Record) []SourceCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Source]++
	}

	sources := make([]string, 0, len(counts))
	for s := range counts {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	out := make([]SourceCount, 0, len(sources))
	for _, s := range sources {
		out = append(out, SourceCount{Source: s, Count: counts[s]})
	}
	return out
}

// FindBySelector returns the record matching an already-normalized
// selector, or ErrNotFound.
func FindBySelector(records []Record, sel string) (Record, error) {
	for _, r := range records {
		if r.Selector == sel {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// SearchByName returns records whose name contains the query,
// case-insensitive, in database order.
func SearchByName(records []Record, query string) []Record {
	q := strings.ToLower(query)
	var out []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}
