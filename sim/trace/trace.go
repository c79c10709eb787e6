package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvictions captures every victim selection of every policy.
	TraceLevelEvictions TraceLevel = "evictions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelEvictions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects eviction records during a run.
type SimulationTrace struct {
	Config    TraceConfig
	Evictions []EvictionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Evictions: make([]EvictionRecord, 0),
	}
}

// Enabled reports whether records should be collected at all.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvictions
}

// RecordEviction appends an eviction record. No-op when tracing is disabled.
func (st *SimulationTrace) RecordEviction(record EvictionRecord) {
	if !st.Enabled() {
		return
	}
	st.Evictions = append(st.Evictions, record)
}

// ForPolicy returns the records of one policy in access order.
func (st *SimulationTrace) ForPolicy(policy string) []EvictionRecord {
	var out []EvictionRecord
	for _, r := range st.Evictions {
		if r.Policy == policy {
			out = append(out, r)
		}
	}
	return out
}
