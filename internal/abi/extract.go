package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound indicates an artifact file that does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrParse indicates an artifact file that is not valid JSON.
	ErrParse = errors.New("artifact parse failed")
)

// Extract returns the custom errors declared in doc, in ABI order.
// Non-error entries and documents without an "abi" array yield no results.
// path is the artifact's own location, used as a fallback for source
// resolution.
func Extract(doc Document, path string) []ExtractedError {
	var out []ExtractedError
	source := resolveSource(doc, path)

	for _, entry := range doc.ABI {
		if entry.Type != "error" {
			continue
		}

		names := make([]string, 0, len(entry.Inputs))
		types := make([]string, 0, len(entry.Inputs))
		for _, input := range entry.Inputs {
			names = append(names, input.Name)
			types = append(types, input.Type)
		}

		out = append(out, ExtractedError{
			Name:       entry.Name,
			Signature:  fmt.Sprintf("%s(%s)", entry.Name, strings.Join(types, ",")),
			InputNames: names,
			InputTypes: types,
			Source:     source,
		})
	}

	return out
}

// ExtractFile reads and parses a single artifact file.
func ExtractFile(path string) ([]ExtractedError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	return Extract(doc, path), nil
}

// ExtractBatch extracts errors from paths in order, deduplicating by
// signature across the whole batch. The first occurrence of a signature
// wins, so file order and in-file order decide which source a duplicate
// error is attributed to. Any unreadable or unparsable file fails the
// whole batch.
func ExtractBatch(paths []string) ([]ExtractedError, error) {
	var out []ExtractedError
	seen := make(map[string]struct{})

	for _, path := range paths {
		extracted, err := ExtractFile(path)
		if err != nil {
			return nil, err
		}
		for _, e := range extracted {
			if _, ok := seen[e.Signature]; ok {
				continue
			}
			seen[e.Signature] = struct{}{}
			out = append(out, e)
		}
	}

	return out, nil
}

// resolveSource determines which Solidity file an artifact was compiled
// from. Hardhat artifacts name it directly; foundry artifacts encode it in
// the out/{Source}.sol/{Contract}.json directory layout.
func resolveSource(doc Document, path string) string {
	if doc.ContractName != "" {
		return doc.ContractName
	}
	if doc.SourceName != "" {
		return filepath.Base(doc.SourceName)
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasSuffix(segment, ".sol") {
			return segment
		}
	}
	return "Unknown"
}
