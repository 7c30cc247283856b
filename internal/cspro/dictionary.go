// Package cspro models the file formats of a CSPro data entry application:
// the JSON dictionary (.dcf), the INI-style form file (.fmf), and the YAML
// question text file (.ent.qsf).
package cspro

import (
	"encoding/json"
	"fmt"
	"os"
)

// Content types for dictionary items.
const (
	ContentNumeric = "numeric"
	ContentAlpha   = "alpha"
)

// Label is a display label in a CSPro dictionary.
type Label struct {
	Text string `json:"text"`
}

// Value is one entry of a value set.
type Value struct {
	Labels  []Label          `json:"labels"`
	Pairs   []map[string]any `json:"pairs"`
	Special string           `json:"special,omitempty"`
}

// ValueSet enumerates the allowed codes for an item.
type ValueSet struct {
	Name   string  `json:"name"`
	Labels []Label `json:"labels"`
	Values []Value `json:"values"`
}

// Item is a single dictionary field.
type Item struct {
	Name        string     `json:"name"`
	Labels      []Label    `json:"labels"`
	ContentType string     `json:"contentType"`
	Length      int        `json:"length"`
	Start       *int       `json:"start,omitempty"`
	ZeroFill    bool       `json:"zeroFill,omitempty"`
	ValueSets   []ValueSet `json:"valueSets,omitempty"`
}

// RecordOccurrences controls how many times a record repeats.
type RecordOccurrences struct {
	Required bool `json:"required"`
	Maximum  int  `json:"maximum"`
}

// Record groups the items of one questionnaire section.
type Record struct {
	Name        string            `json:"name"`
	Labels      []Label           `json:"labels"`
	RecordType  string            `json:"recordType"`
	Occurrences RecordOccurrences `json:"occurrences"`
	Items       []Item            `json:"items"`
}

// IDs holds the case-identifying items of a level.
type IDs struct {
	Items []Item `json:"items"`
}

// Level is one level of a dictionary hierarchy.
type Level struct {
	Name    string   `json:"name"`
	Labels  []Label  `json:"labels"`
	IDs     IDs      `json:"ids"`
	Records []Record `json:"records"`
}

// Dictionary is a complete CSPro dictionary file.
type Dictionary struct {
	Software          string          `json:"software"`
	Version           float64         `json:"version"`
	FileType          string          `json:"fileType"`
	Name              string          `json:"name"`
	Labels            []Label         `json:"labels"`
	ReadOptimization  bool            `json:"readOptimization"`
	RecordType        map[string]int  `json:"recordType"`
	Defaults          map[string]bool `json:"defaults"`
	RelativePositions bool            `json:"relativePositions"`
	Levels            []Level         `json:"levels"`
}

// NewDictionary creates a dictionary with the standard header fields set.
func NewDictionary(name string, labels []Label, levels []Level) *Dictionary {
	return &Dictionary{
		Software:          "CSPro",
		Version:           8.0,
		FileType:          "dictionary",
		Name:              name,
		Labels:            labels,
		ReadOptimization:  true,
		RecordType:        map[string]int{"start": 1, "length": 1},
		Defaults:          map[string]bool{"decimalMark": true, "zeroFill": true},
		RelativePositions: true,
		Levels:            levels,
	}
}

// Save writes the dictionary as indented JSON.
func (d *Dictionary) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dictionary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dictionary: %w", err)
	}
	return nil
}
