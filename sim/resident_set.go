// sim/resident_set.go
package sim

// noNode marks an unset node index (list ends, unset clock cursor).
const noNode = -1

// residentNode is one slot of the ResidentSet arena.
// Nodes are linked by index, never by pointer, so the set has no reference cycles.
type residentNode struct {
	key   string
	newer int // neighbour towards the front (most recently inserted/touched)
	older int // neighbour towards the back
}

// ResidentSet is the bounded, ordered collection of keys cached by one policy.
// It keeps the order newest first and mirrors it in a key -> node index map for
// O(1) membership, move-to-front and removal.
//
// Invariant: members and the linked order always hold exactly the same keys,
// and their count never exceeds Capacity.
//
// A ResidentSet is not safe for concurrent use.
type ResidentSet struct {
	capacity int
	nodes    []residentNode // arena; slots are recycled through free
	free     []int          // indices of unused arena slots
	members  map[string]int // key -> node index
	head     int            // newest node
	tail     int            // oldest node
}

// NewResidentSet creates an empty ResidentSet holding at most capacity keys.
func NewResidentSet(capacity int) (*ResidentSet, error) {
	if capacity <= 0 {
		return nil, invalidCapacityError(capacity)
	}
	return &ResidentSet{
		capacity: capacity,
		nodes:    make([]residentNode, 0, capacity),
		members:  make(map[string]int, capacity),
		head:     noNode,
		tail:     noNode,
	}, nil
}

// Capacity returns the fixed maximum number of resident keys.
func (rs *ResidentSet) Capacity() int { return rs.capacity }

// Len returns the number of resident keys.
func (rs *ResidentSet) Len() int { return len(rs.members) }

// Full reports whether another insert would exceed capacity.
func (rs *ResidentSet) Full() bool { return len(rs.members) >= rs.capacity }

// Contains reports whether key is resident.
func (rs *ResidentSet) Contains(key string) bool {
	_, ok := rs.members[key]
	return ok
}

// InsertFront admits key as the newest entry.
// The key must not be resident and the set must not be full.
func (rs *ResidentSet) InsertFront(key string) error {
	if _, ok := rs.members[key]; ok {
		return invariantError("insert of resident key %q", key)
	}
	if rs.Full() {
		return invariantError("insert of %q into full set (capacity %d)", key, rs.capacity)
	}
	idx := rs.allocNode(key)
	rs.linkFront(idx)
	rs.members[key] = idx
	return nil
}

// Remove evicts a resident key.
func (rs *ResidentSet) Remove(key string) error {
	idx, ok := rs.members[key]
	if !ok {
		return invariantError("remove of non-resident key %q", key)
	}
	rs.unlink(idx)
	delete(rs.members, key)
	rs.nodes[idx] = residentNode{newer: noNode, older: noNode}
	rs.free = append(rs.free, idx)
	return nil
}

// Touch moves a resident key to the front (most recently used position).
func (rs *ResidentSet) Touch(key string) error {
	idx, ok := rs.members[key]
	if !ok {
		return invariantError("touch of non-resident key %q", key)
	}
	if idx == rs.head {
		return nil
	}
	rs.unlink(idx)
	rs.linkFront(idx)
	return nil
}

// Oldest returns the entry at the back of the order.
func (rs *ResidentSet) Oldest() (string, bool) {
	if rs.tail == noNode {
		return "", false
	}
	return rs.nodes[rs.tail].key, true
}

// Keys returns a copy of the resident keys, newest first.
func (rs *ResidentSet) Keys() []string {
	keys := make([]string, 0, len(rs.members))
	for idx := rs.head; idx != noNode; idx = rs.nodes[idx].older {
		keys = append(keys, rs.nodes[idx].key)
	}
	return keys
}

// index returns the arena index of a resident key.
func (rs *ResidentSet) index(key string) (int, bool) {
	idx, ok := rs.members[key]
	return idx, ok
}

// keyAt returns the key stored at a live node index.
func (rs *ResidentSet) keyAt(idx int) string { return rs.nodes[idx].key }

// nextOlder steps one position towards the back, wrapping from the oldest
// entry around to the newest. This is the circular order the clock hand uses.
func (rs *ResidentSet) nextOlder(idx int) int {
	if next := rs.nodes[idx].older; next != noNode {
		return next
	}
	return rs.head
}

func (rs *ResidentSet) allocNode(key string) int {
	node := residentNode{key: key, newer: noNode, older: noNode}
	if n := len(rs.free); n > 0 {
		idx := rs.free[n-1]
		rs.free = rs.free[:n-1]
		rs.nodes[idx] = node
		return idx
	}
	rs.nodes = append(rs.nodes, node)
	return len(rs.nodes) - 1
}

// linkFront places a detached node at the head.
func (rs *ResidentSet) linkFront(idx int) {
	n := &rs.nodes[idx]
	n.newer = noNode
	n.older = rs.head
	if rs.head != noNode {
		rs.nodes[rs.head].newer = idx
	} else {
		// empty list; the node is both ends
		rs.tail = idx
	}
	rs.head = idx
}

// unlink detaches a node from the order without freeing it.
func (rs *ResidentSet) unlink(idx int) {
	n := &rs.nodes[idx]
	if n.newer != noNode {
		// a - node - b => a - b
		rs.nodes[n.newer].older = n.older
	} else {
		rs.head = n.older
	}
	if n.older != noNode {
		rs.nodes[n.older].newer = n.newer
	} else {
		rs.tail = n.newer
	}
	n.newer = noNode
	n.older = noNode
}
