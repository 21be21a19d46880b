// Package dataset holds the report every HTTP handler serves.
//
// The current report and its insights are swapped as one immutable
// Snapshot, so a reader never sees a report paired with insights generated
// for a different one.
package dataset

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/esglens/esglens/internal/esg"
)

// Snapshot is one published report with its combined insights. Treat it as
// read-only.
type Snapshot struct {
	Report    esg.Report
	Insights  []string
	UpdatedAt time.Time
	Source    string
}

// Current is the process-wide current dataset. The zero value is not
// usable; create one with New.
type Current struct {
	ptr atomic.Pointer[Snapshot]
	now func() time.Time
}

// New returns a Current seeded with report and no insights.
func New(report esg.Report, source string) *Current {
	c := &Current{now: time.Now}
	c.ptr.Store(&Snapshot{Report: report, Insights: []string{}, UpdatedAt: c.now(), Source: source})
	return c
}

// Load returns the current snapshot.
func (c *Current) Load() *Snapshot {
	return c.ptr.Load()
}

// Replace publishes a new report together with its insights.
func (c *Current) Replace(report esg.Report, insights []string, source string) *Snapshot {
	next := &Snapshot{
		Report:    report,
		Insights:  cloneInsights(insights),
		UpdatedAt: c.now(),
		Source:    source,
	}
	c.ptr.Store(next)
	return next
}

// SetInsightsIfEmpty attaches insights to snapshot prev if prev is still
// current and has none. It returns the snapshot now in effect and whether
// the swap happened. A concurrent Replace wins: the insights generated for
// the old report are dropped.
func (c *Current) SetInsightsIfEmpty(prev *Snapshot, insights []string) (*Snapshot, bool) {
	if prev == nil || len(prev.Insights) > 0 || len(insights) == 0 {
		return c.ptr.Load(), false
	}

	next := *prev
	next.Insights = cloneInsights(insights)
	if c.ptr.CompareAndSwap(prev, &next) {
		return &next, true
	}
	return c.ptr.Load(), false
}

func cloneInsights(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
