package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/versusleague/internal/dependencies/idgen"
)

// MockIDGenerator hands out queued ids, then falls back to "tx-<n>"
type MockIDGenerator struct {
	mu     sync.Mutex
	queue  []string
	issued int
}

var _ idgen.Generator = (*MockIDGenerator)(nil)

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	if len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		return id
	}
	return fmt.Sprintf("tx-%d", g.issued)
}

// Queue adds ids to be returned before the generated fallback
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, ids...)
}
