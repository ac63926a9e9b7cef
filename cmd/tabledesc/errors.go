package main

import "errors"

// Error definitions
var (
	ErrInvalidOutputFormat   = errors.New("invalid output format")
	ErrMissingSource         = errors.New("no source to describe from: pass --db, --database, or --snapshot, or configure one in tabledesc.yaml")
	ErrMissingSnapshot       = errors.New("no snapshot artefact: pass --snapshot or set describe.snapshot_path in tabledesc.yaml")
	ErrEmptyConnectionString = errors.New("database connection string is empty")
	ErrNothingToRecord       = errors.New("nothing to record: pass --unique or --ref-table")
)
