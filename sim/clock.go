package sim

// clockHand implements the second-chance scan. Every resident key has a
// reference bit; the hand sweeps from its current position towards older
// entries and wraps from the oldest back to the newest.
//
// Invariants: the domain of refBits equals the resident set, and hand is the
// node index of a resident key, or noNode exactly when the set is empty.
type clockHand struct {
	refBits map[string]bool
	hand    int
}

func newClockHand() *clockHand {
	return &clockHand{refBits: make(map[string]bool), hand: noNode}
}

func (c *clockHand) onHit(_ *ResidentSet, key string) error {
	if _, ok := c.refBits[key]; !ok {
		return invariantError("reference bit missing for resident key %q", key)
	}
	c.refBits[key] = true
	return nil
}

// onAdmit gives a new key its reference bit. The first key admitted into an
// empty set seeds the hand.
func (c *clockHand) onAdmit(rs *ResidentSet, key string) {
	c.refBits[key] = true
	if c.hand == noNode {
		c.hand, _ = rs.index(key)
	}
}

func (c *clockHand) victim(rs *ResidentSet) (string, error) {
	if c.hand == noNode || rs.Len() == 0 {
		return "", invariantError("clock scan on empty set")
	}
	// Each full revolution clears every bit it passes, so the second lap is
	// guaranteed to find a victim.
	for steps := 0; steps <= 2*rs.Len(); steps++ {
		key := rs.keyAt(c.hand)
		next := rs.nextOlder(c.hand)
		if !c.refBits[key] {
			if next == c.hand {
				// sole resident; the next admission re-seeds the hand
				c.hand = noNode
			} else {
				c.hand = next
			}
			return key, nil
		}
		c.refBits[key] = false
		c.hand = next
	}
	return "", invariantError("clock scan found no victim among %d entries", rs.Len())
}

func (c *clockHand) onEvict(key string) {
	delete(c.refBits, key)
}

// referenced reports the bit for key; used by tests and debug logging.
func (c *clockHand) referenced(key string) (bool, bool) {
	bit, ok := c.refBits[key]
	return bit, ok
}
