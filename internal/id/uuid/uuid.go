// Package uuid generates run identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered UUIDv7 run IDs.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 in its canonical string form.
func (g Generator) NewID() (string, error) {
	raw, err := g.NewRawID()
	if err != nil {
		return "", err
	}
	return uuid.UUID(raw).String(), nil
}

// NewRawID returns a UUIDv7 as raw bytes, the form progress events carry.
func (Generator) NewRawID() ([16]byte, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return [16]byte{}, fmt.Errorf("generate uuid7: %w", err)
	}
	return id, nil
}
