package relay

import (
	"sort"
	"sync"
)

// Directory maps each identity to the set of its live connections. It is the
// relay's only shared-mutable state and is safe for concurrent use from any
// number of connection goroutines.
//
// An identity is present in the directory exactly while it has at least one
// registered connection: the entry is created on the first Register and
// removed the moment the last handle is deregistered, so the presence set is
// always the directory's key set.
type Directory struct {
	mu      sync.RWMutex
	handles map[string]map[string]*Conn // identity -> conn ID -> conn
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		handles: make(map[string]map[string]*Conn),
	}
}

// Register adds the connection under its bound identity, creating the entry
// if needed. Registering the same handle twice is a no-op. Anonymous
// connections are never registered.
func (d *Directory) Register(c *Conn) {
	if c.Identity == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.handles[c.Identity]
	if !ok {
		set = make(map[string]*Conn)
		d.handles[c.Identity] = set
	}
	set[c.ID] = c
}

// Deregister removes the connection from its identity's set and drops the
// identity entry once the set is empty. Deregistering an unknown connection
// is a no-op: teardown can race with registration.
func (d *Directory) Deregister(c *Conn) {
	if c.Identity == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.handles[c.Identity]
	if !ok {
		return
	}
	delete(set, c.ID)
	if len(set) == 0 {
		delete(d.handles, c.Identity)
	}
}

// Lookup returns a snapshot of the identity's current connections. The
// returned slice is owned by the caller; later directory mutations do not
// affect it.
func (d *Directory) Lookup(identity string) []*Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set, ok := d.handles[identity]
	if !ok {
		return nil
	}
	conns := make([]*Conn, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Identities returns the sorted set of identities with at least one live
// connection.
func (d *Directory) Identities() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.handles))
	for identity := range d.handles {
		ids = append(ids, identity)
	}
	sort.Strings(ids)
	return ids
}

// IsOnline reports whether the identity has at least one live connection.
func (d *Directory) IsOnline(identity string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.handles[identity]) > 0
}
