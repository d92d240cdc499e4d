package idgen

import "github.com/google/uuid"

// Generator produces unique identifiers for transactions
type Generator interface {
	NewID() string
}

// UUIDGenerator returns random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.New().String()
}
