package vfsim

import (
	"github.com/google/btree"
)

// nameMap is the ordered name → inode association for one directory (or
// the root map of an FS). It is the degree of indirection spec.md §4.2
// describes: insertion preserves comparator order, keys() yields names in
// that order, and this determinism is what makes readdir reproducible.
//
// The teacher's memfs used a bare map[string]*memNode, which has no
// stable iteration order - fine for the teacher's own tests (which never
// assert on readdir order) but insufficient for spec.md invariant 2.
// google/btree's generic BTreeG gives us the ordered structure directly
// instead of hand-rolling a sorted-slice-plus-map like absfs-boltfs's Dir
// type does.
type nameMap struct {
	cmp  comparator
	tree *btree.BTreeG[nameEntry]
}

type nameEntry struct {
	name string
	node *inode
}

const nameMapDegree = 32

func newNameMap(cmp comparator) *nameMap {
	less := func(a, b nameEntry) bool { return cmp.less(a.name, b.name) }
	return &nameMap{
		cmp:  cmp,
		tree: btree.NewG(nameMapDegree, less),
	}
}

func (m *nameMap) get(name string) (*inode, bool) {
	e, ok := m.tree.Get(nameEntry{name: name})
	if !ok {
		return nil, false
	}
	return e.node, true
}

// set inserts or replaces the entry for name, returning the previous
// inode (if any) it displaced.
func (m *nameMap) set(name string, node *inode) (*inode, bool) {
	old, had := m.tree.ReplaceOrInsert(nameEntry{name: name, node: node})
	if !had {
		return nil, false
	}
	return old.node, true
}

func (m *nameMap) delete(name string) (*inode, bool) {
	e, ok := m.tree.Delete(nameEntry{name: name})
	if !ok {
		return nil, false
	}
	return e.node, true
}

func (m *nameMap) size() int {
	return m.tree.Len()
}

// keys returns names in comparator order.
func (m *nameMap) keys() []string {
	names := make([]string, 0, m.tree.Len())
	m.tree.Ascend(func(e nameEntry) bool {
		names = append(names, e.name)
		return true
	})
	return names
}

// entries returns (name, inode) pairs in comparator order.
func (m *nameMap) entries() []nameEntry {
	out := make([]nameEntry, 0, m.tree.Len())
	m.tree.Ascend(func(e nameEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}
