// Package trace provides eviction-decision recording for policy analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EvictionRecord captures one victim selection by one policy.
type EvictionRecord struct {
	Seq    int64  // access number that caused the eviction
	Policy string // policy wire name
	Key    string // key admitted in place of the victim
	Victim string
}
