// Package docs constructs W-2 generation directives for the external
// document service. The dialogue core never renders a PDF itself; it
// builds the directive and relays the returned download handle.
package docs

import (
	"context"
	"fmt"
	"sync"
)

// Directive names one W-2 generation request.
type Directive struct {
	EmployeeID string
	FirstName  string
	Year       int
}

// Service turns a directive into an opaque document handle.
type Service interface {
	GenerateW2(ctx context.Context, d Directive) (string, error)
}

// Generator is the in-process document service. It records directives
// and returns stable download handles; the actual PDF is rendered by the
// external document pipeline behind the handle URL.
type Generator struct {
	mu         sync.Mutex
	directives []Directive
}

// NewGenerator creates an empty generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateW2 records the directive and returns the download handle.
func (g *Generator) GenerateW2(_ context.Context, d Directive) (string, error) {
	if d.EmployeeID == "" {
		return "", fmt.Errorf("w2 directive missing employee id")
	}
	if d.Year <= 0 {
		return "", fmt.Errorf("w2 directive has invalid year %d", d.Year)
	}

	g.mu.Lock()
	g.directives = append(g.directives, d)
	g.mu.Unlock()

	return fmt.Sprintf("/files/w2/%s_W2_%d.pdf", d.FirstName, d.Year), nil
}

// Directives returns a copy of all recorded directives.
func (g *Generator) Directives() []Directive {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Directive, len(g.directives))
	copy(out, g.directives)
	return out
}
