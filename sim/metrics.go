// Tracks run-wide statistics for the final report: accesses, distinct keys,
// evictions per policy and the last combined snapshot.

package sim

import (
	"fmt"
	"io"
	"strings"
)

// ReportRow is an extra line appended to the policy table, e.g. the offline
// Belady comparison.
type ReportRow struct {
	Name  string
	Stats PolicyStats
}

// Metrics aggregates statistics about a run for final reporting.
// It is both an Observer (evictions) and a Sink (last snapshot).
type Metrics struct {
	Capacity  int
	Accesses  int64
	Evictions [NumPolicies]int64
	Last      Snapshot

	distinct map[string]struct{}
	extra    []ReportRow
}

// NewMetrics creates an empty Metrics for the given capacity.
func NewMetrics(capacity int) *Metrics {
	return &Metrics{Capacity: capacity, distinct: make(map[string]struct{})}
}

// Observe counts evictions per policy.
func (m *Metrics) Observe(_ int64, policy Policy, _ string, result AccessResult) {
	if result.Evicted {
		m.Evictions[policy]++
	}
}

// Deliver records the snapshot as the latest state.
func (m *Metrics) Deliver(snapshot Snapshot) {
	m.Accesses = snapshot.Seq
	m.Last = snapshot
	m.distinct[snapshot.Key] = struct{}{}
}

// DistinctKeys returns the number of different keys seen.
func (m *Metrics) DistinctKeys() int { return len(m.distinct) }

// AddRow appends a comparison row to the report.
func (m *Metrics) AddRow(row ReportRow) { m.extra = append(m.extra, row) }

// Print writes the final report.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Replacement Metrics ===")
	fmt.Fprintf(w, "Capacity             : %d frames\n", m.Capacity)
	fmt.Fprintf(w, "Accesses             : %d\n", m.Accesses)
	fmt.Fprintf(w, "Distinct Keys        : %d\n", m.DistinctKeys())
	if m.Accesses == 0 {
		return
	}
	fmt.Fprintf(w, "%-10s %8s %8s %9s %9s  %s\n", "policy", "hits", "misses", "hit%", "evicted", "frames")
	for _, p := range AllPolicies {
		ps := m.Last.For(p)
		fmt.Fprintf(w, "%-10s %8d %8d %8.2f%% %9d  [%s]\n",
			p, ps.Hits, ps.Misses, ps.HitRatio*100, m.Evictions[p], strings.Join(ps.ResidentKeys, " "))
	}
	for _, row := range m.extra {
		ps := row.Stats
		fmt.Fprintf(w, "%-10s %8d %8d %8.2f%% %9s  [%s]\n",
			row.Name, ps.Hits, ps.Misses, ps.HitRatio*100, "-", strings.Join(ps.ResidentKeys, " "))
	}
}
