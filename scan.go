package vfsim

// Axis selects which relatives of a starting node scan/lscan visits
// (spec.md §4.7).
type Axis int

const (
	AxisAncestors Axis = iota
	AxisAncestorsOrSelf
	AxisSelf
	AxisDescendantsOrSelf
	AxisDescendants
)

// ScanEntry is one visited node and its Stats snapshot. For the starting
// node and its ancestors, Path is the walked path (symlink-resolved at p
// itself for scan, not for lscan). For a descendant, Path is its
// directory's path joined with its own name, and Stats describes the
// entry itself: a symlink among the descendants is reported as a symlink
// and is not traversed.
type ScanEntry struct {
	Path  string
	Stats Stats
}

// Accept decides whether a visited node is included in the result.
// Traverse decides whether a directory's children are visited at all;
// both default to "always" when nil.
type ScanOptions struct {
	Accept   func(ScanEntry) bool
	Traverse func(ScanEntry) bool
}

// ScanSync walks axis starting at p, following a symlink at p itself.
// LscanSync is the noFollow-on-p variant - p is stat'd but, if it is
// itself a symlink, not traversed through.
func (fsys *FS) ScanSync(p string, axis Axis, opts ScanOptions) ([]ScanEntry, error) {
	return fsys.scanImpl(p, axis, opts, false)
}

func (fsys *FS) LscanSync(p string, axis Axis, opts ScanOptions) ([]ScanEntry, error) {
	return fsys.scanImpl(p, axis, opts, true)
}

func (fsys *FS) scanImpl(p string, axis Axis, opts ScanOptions, noFollow bool) ([]ScanEntry, error) {
	if opts.Accept == nil {
		opts.Accept = func(ScanEntry) bool { return true }
	}
	if opts.Traverse == nil {
		opts.Traverse = func(ScanEntry) bool { return true }
	}

	res, err := fsys.walk(fsys.resolveAgainstCwd(p), noFollow)
	if err != nil {
		return nil, err
	}
	if res.node == nil {
		return nil, newIOError("scan", p, ENOENT)
	}
	self := ScanEntry{Path: res.realpath, Stats: statFromInode(res.node)}

	var out []ScanEntry
	switch axis {
	case AxisSelf:
		if opts.Accept(self) {
			out = append(out, self)
		}
	case AxisAncestors, AxisAncestorsOrSelf:
		if axis == AxisAncestorsOrSelf && opts.Accept(self) {
			out = append(out, self)
		}
		out = append(out, fsys.scanAncestors(res.realpath, opts, noFollow)...)
	case AxisDescendants, AxisDescendantsOrSelf:
		if axis == AxisDescendantsOrSelf && opts.Accept(self) {
			out = append(out, self)
		}
		fsys.scanDescendants(res.realpath, res.node, opts, &out)
	}
	return out, nil
}

func (fsys *FS) scanAncestors(realpath string, opts ScanOptions, noFollow bool) []ScanEntry {
	var out []ScanEntry
	cur := realpath
	for !isRootPath(cur) {
		cur = dirname(cur)
		res, err := fsys.walk(cur, noFollow)
		if err != nil || res.node == nil {
			continue
		}
		entry := ScanEntry{Path: res.realpath, Stats: statFromInode(res.node)}
		if opts.Accept(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// scanDescendants visits every entry below dir in comparator order,
// depth-first; a child directory's own children are only visited when
// Traverse accepts that child (spec.md §4.7's traverse predicate). An
// error reading one child's links is swallowed - only the starting
// node's own walk error is ever surfaced to the caller (spec.md §4.7).
func (fsys *FS) scanDescendants(dirPath string, dir *inode, opts ScanOptions, out *[]ScanEntry) {
	if !dir.isDir() {
		return
	}
	links, err := fsys.getLinks(dir)
	if err != nil {
		return
	}
	for _, e := range links.entries() {
		childPath := combine(dirPath, e.name)
		entry := ScanEntry{Path: childPath, Stats: statFromInode(e.node)}
		if opts.Accept(entry) {
			*out = append(*out, entry)
		}
		if e.node.isDir() && opts.Traverse(entry) {
			fsys.scanDescendants(childPath, e.node, opts, out)
		}
	}
}
