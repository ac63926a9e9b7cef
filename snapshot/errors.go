package snapshot

import "errors"

var (
	// ErrSchemaPayloadNil indicates the decoded schema payload is nil.
	ErrSchemaPayloadNil = errors.New("snapshot: schema payload is nil")
	// ErrDriverMetadataMissing indicates the artefact has no driver block.
	ErrDriverMetadataMissing = errors.New("snapshot: driver metadata is missing")
	// ErrDriverNameEmpty indicates the artefact's driver name is empty.
	ErrDriverNameEmpty = errors.New("snapshot: driver name is empty")
	// ErrNoTables indicates the artefact contains no tables.
	ErrNoTables = errors.New("snapshot: no tables present in schema")
)
