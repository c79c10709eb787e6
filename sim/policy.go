package sim

import "fmt"

// Policy names one of the four replacement variants run side by side.
type Policy int

const (
	// PolicyFIFO evicts the entry that has been resident longest and never
	// reorders on a hit.
	PolicyFIFO Policy = iota
	// PolicyLRU moves an entry to the front on every hit and evicts the least
	// recently used one.
	PolicyLRU
	// PolicyClock approximates LRU with a reference bit per entry and a
	// circular scan (second chance).
	PolicyClock
	// PolicyArrivalOrder is the fourth dashboard variant. It is published
	// under the label "optimal" but is NOT Belady's algorithm: its victim is
	// the oldest arrival, exactly like FIFO. See SimulateBelady for the
	// lookahead policy on a recorded sequence.
	PolicyArrivalOrder

	// NumPolicies is the number of variants a Coordinator runs.
	NumPolicies = 4
)

// AllPolicies lists the variants in dispatch order.
var AllPolicies = [NumPolicies]Policy{PolicyFIFO, PolicyLRU, PolicyClock, PolicyArrivalOrder}

var policyNames = [NumPolicies]string{"fifo", "lru", "clock", "optimal"}

// policyByName inverts policyNames.
var policyByName = func() map[string]Policy {
	m := make(map[string]Policy, NumPolicies)
	for i, name := range policyNames {
		m[name] = Policy(i)
	}
	return m
}()

// String returns the wire name of the policy.
func (p Policy) String() string {
	if p < 0 || int(p) >= NumPolicies {
		return fmt.Sprintf("policy(%d)", int(p))
	}
	return policyNames[p]
}

// ParsePolicy maps a wire name back to its Policy.
func ParsePolicy(name string) (Policy, error) {
	if p, ok := policyByName[name]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, name)
}

// replacement is the policy-specific half of an Engine: what a hit does to the
// order and which resident key to give up on a miss at capacity.
type replacement interface {
	onHit(rs *ResidentSet, key string) error
	onAdmit(rs *ResidentSet, key string)
	victim(rs *ResidentSet) (string, error)
	onEvict(key string)
}

func newReplacement(p Policy) (replacement, error) {
	switch p {
	case PolicyFIFO, PolicyArrivalOrder:
		return arrivalOrder{}, nil
	case PolicyLRU:
		return recencyOrder{}, nil
	case PolicyClock:
		return newClockHand(), nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %d", ErrInvalidConfiguration, int(p))
	}
}

// arrivalOrder keeps insertion order untouched; the victim is the oldest arrival.
type arrivalOrder struct{}

func (arrivalOrder) onHit(*ResidentSet, string) error { return nil }
func (arrivalOrder) onAdmit(*ResidentSet, string)     {}
func (arrivalOrder) onEvict(string)                   {}

func (arrivalOrder) victim(rs *ResidentSet) (string, error) {
	return oldestVictim(rs)
}

// recencyOrder moves hits to the front, so the back is the least recently used.
type recencyOrder struct{}

func (recencyOrder) onHit(rs *ResidentSet, key string) error { return rs.Touch(key) }
func (recencyOrder) onAdmit(*ResidentSet, string)            {}
func (recencyOrder) onEvict(string)                          {}

func (recencyOrder) victim(rs *ResidentSet) (string, error) {
	return oldestVictim(rs)
}

func oldestVictim(rs *ResidentSet) (string, error) {
	key, ok := rs.Oldest()
	if !ok {
		return "", invariantError("victim requested from empty set")
	}
	return key, nil
}
