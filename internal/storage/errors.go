package storage

import "errors"

var (
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
