package workload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"
)

// DefaultSampleInterval is the process-list polling period.
const DefaultSampleInterval = 200 * time.Millisecond

// ProcessLister enumerates the names of live processes.
type ProcessLister interface {
	ProcessNames(ctx context.Context) ([]string, error)
}

// ProcessListerFunc adapts a function to ProcessLister.
type ProcessListerFunc func(ctx context.Context) ([]string, error)

// ProcessNames calls f(ctx).
func (f ProcessListerFunc) ProcessNames(ctx context.Context) ([]string, error) { return f(ctx) }

// SystemProcesses lists processes of the local machine through gopsutil.
// Processes that exit while being inspected are skipped.
var SystemProcesses ProcessLister = ProcessListerFunc(func(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			logrus.Debugf("skipping pid %d: %v", p.Pid, err)
			continue
		}
		names = append(names, name)
	}
	return names, nil
})

// ProcessSampler is a periodic sample producer: every interval it
// re-enumerates the live process list and reports each process name as one
// access. It does not subscribe to kernel events; a process that starts and
// exits between two samples is never seen.
type ProcessSampler struct {
	interval time.Duration
	filter   string
	lister   ProcessLister
}

// NewProcessSampler creates a sampler. filter, when non-empty, keeps only
// names containing it (case-insensitive). A nil lister uses SystemProcesses;
// a non-positive interval uses DefaultSampleInterval.
func NewProcessSampler(interval time.Duration, filter string, lister ProcessLister) *ProcessSampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	if lister == nil {
		lister = SystemProcesses
	}
	return &ProcessSampler{interval: interval, filter: strings.ToLower(filter), lister: lister}
}

// Run samples, waits one interval, then emits the names gathered by that
// sample, until ctx is done. Names pending at cancellation are dropped.
func (s *ProcessSampler) Run(ctx context.Context, emit func(key string)) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		pending := s.sample(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		for _, name := range pending {
			if ctx.Err() != nil {
				return nil
			}
			emit(name)
		}
	}
}

func (s *ProcessSampler) sample(ctx context.Context) []string {
	names, err := s.lister.ProcessNames(ctx)
	if err != nil {
		logrus.Warnf("process sample failed: %v", err)
		return nil
	}
	if s.filter == "" {
		return names
	}
	var kept []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), s.filter) {
			kept = append(kept, name)
		}
	}
	return kept
}
