package usecase

import (
	"fmt"
	"sync"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one non-fatal finding from a pipeline stage, kept so the
// final report can show what was skipped or degraded.
type Diagnostic struct {
	Stage    string   `json:"stage"`
	Source   string   `json:"source,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Diagnostics collects findings from stages that may run concurrently.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) Add(stage, source string, severity Severity, format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, Diagnostic{
		Stage:    stage,
		Source:   source,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) Items() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Diagnostics) Count(severity Severity) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, it := range d.items {
		if it.Severity == severity {
			n++
		}
	}
	return n
}
