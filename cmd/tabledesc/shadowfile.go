package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shibukawa/tabledesc/describe"
)

const defaultConstraintsFile = ".tabledesc-constraints.json"

// constraintsPath resolves where constraint declarations are persisted:
// the command line flag wins, then the config file, then a file next to
// the working directory.
func constraintsPath(flag string, config *tabledesc.Config) string {
	if flag != "" {
		return flag
	}

	if config != nil && config.Describe.ConstraintsPath != "" {
		return config.Describe.ConstraintsPath
	}

	return defaultConstraintsFile
}

// loadShadowStore reads persisted constraint declarations into a fresh
// store. A missing file is not an error; it simply yields an empty store.
func loadShadowStore(path string) (*describe.ShadowStore, error) {
	store := describe.NewShadowStore()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}

		return nil, fmt.Errorf("failed to read constraints file %q: %w", path, err)
	}

	var entries []tabledesc.ConstraintEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse constraints file %q: %w", path, err)
	}

	for _, entry := range entries {
		store.Record(entry)
	}

	return store, nil
}

// saveShadowStore writes every recorded declaration back to path. Tables
// are sorted so the file is stable across runs.
func saveShadowStore(path string, store *describe.ShadowStore) error {
	tables := store.Tables()
	sort.Strings(tables)

	var entries []tabledesc.ConstraintEntry
	for _, table := range tables {
		entries = append(entries, store.List(table)...)
	}

	if entries == nil {
		entries = []tabledesc.ConstraintEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode constraints: %w", err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write constraints file %q: %w", path, err)
	}

	return nil
}
