// Package reconcile compares environment values against a resolved
// configuration snapshot. A key is checked only when some section references
// it, and the comparison is a substring test against the rendered section
// because keys are mapped to sections, not to individual fields.
package reconcile

import (
	"fmt"
	"io"
	"strings"

	"github.com/eugenenazirov/config-cache-drift/internal/snapshot"
)

const (
	// Header precedes the report on output.
	Header = "=== Differences between .env and config cache ==="
	// NoDifferences is reported when every checked key matched.
	NoDifferences = "No differences found between .env and config cache."
)

// Kind classifies a finding.
type Kind int

const (
	// KindDiff means the section no longer contains the environment value.
	KindDiff Kind = iota + 1
	// KindMissing means the owning section is absent from the snapshot.
	KindMissing
)

// Finding is a single mismatch.
type Finding struct {
	Kind    Kind
	Key     string
	Section string
}

// String formats the finding as a report line.
func (f Finding) String() string {
	if f.Kind == KindMissing {
		return fmt.Sprintf("[MISSING] Section '%s' not found in config cache", f.Section)
	}
	return "[DIFF] " + f.Key
}

// Report is the outcome of a reconciliation pass.
type Report struct {
	Findings []Finding
	// Checked counts environment keys that were compared against a section.
	Checked int
}

// HasDifferences reports whether any finding was recorded.
func (r Report) HasDifferences() bool {
	return len(r.Findings) > 0
}

// Lines returns the report lines without the header.
func (r Report) Lines() []string {
	if !r.HasDifferences() {
		return []string{NoDifferences}
	}
	lines := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		lines[i] = f.String()
	}
	return lines
}

// WriteTo writes the header and report lines to w.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, line := range r.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Env is the ordered view of environment entries the reconciler consumes.
type Env interface {
	Each(fn func(key, value string) bool)
}

// Sections resolves the section that owns an environment key.
type Sections interface {
	Section(key string) (string, bool)
}

// Reconcile checks every environment entry, in the order Env yields them,
// against the snapshot section that references it.
func Reconcile(env Env, index Sections, snap snapshot.Snapshot) Report {
	var report Report
	rendered := make(map[string]string)

	env.Each(func(key, value string) bool {
		section, ok := index.Section(key)
		if !ok {
			return true
		}
		sectionValue, ok := snap.Section(section)
		if !ok {
			report.Findings = append(report.Findings, Finding{Kind: KindMissing, Key: key, Section: section})
			return true
		}

		text, ok := rendered[section]
		if !ok {
			text = snapshot.Render(sectionValue)
			rendered[section] = text
		}

		report.Checked++
		if !Matches(value, text) {
			report.Findings = append(report.Findings, Finding{Kind: KindDiff, Key: key, Section: section})
		}
		return true
	})

	return report
}

// Matches applies the value-equivalence rule. A "null" value (any case) matches
// any rendering that mentions null; everything else must appear verbatim.
func Matches(envValue, rendered string) bool {
	if strings.ToLower(envValue) == "null" {
		return strings.Contains(strings.ToLower(rendered), "null")
	}
	return strings.Contains(rendered, envValue)
}
