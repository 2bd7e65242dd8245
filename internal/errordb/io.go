package errordb

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes records to path as an indented JSON array.
func Save(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding database: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing database %s: %w", path, err)
	}
	return nil
}

// Load reads a database previously written by Save.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading database %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding database %s: %w", path, err)
	}
	return records, nil
}
