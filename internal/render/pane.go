// Package render turns backend results into terminal text: per-tab pane
// buffers, number/date formatting, lipgloss styles and a bar chart.
package render

import (
	"strings"
	"sync"
)

// Pane is the content area one feature module owns exclusively. Replace
// discards everything previously rendered; Append adds a section below it.
type Pane struct {
	mu       sync.RWMutex
	name     string
	sections []string
	revision uint64
}

// NewPane returns an empty pane.
func NewPane(name string) *Pane {
	return &Pane{name: name}
}

// Name returns the pane identifier.
func (p *Pane) Name() string {
	return p.name
}

// Replace sets the pane content to a single section.
func (p *Pane) Replace(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = []string{content}
	p.revision++
}

// Append adds a section after the existing content.
func (p *Pane) Append(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = append(p.sections, content)
	p.revision++
}

// String returns the full pane content.
func (p *Pane) String() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return strings.Join(p.sections, "\n")
}

// Revision increments on every Replace or Append. Tests use it to assert
// that a path left the pane untouched.
func (p *Pane) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}
