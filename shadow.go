package vfsim

// shadowOf returns the shadow inode materialized from src (an inode that
// lives in fsys.shadowRootFS), creating and caching it on first request.
// The per-FS shadowTable keyed by src.ino is what makes two walks that
// reach the same shadowed source inode observe the same shadow inode
// (spec.md §4.4).
func (fsys *FS) shadowOf(src *inode) *inode {
	if existing, ok := fsys.shadowTable[src.ino]; ok {
		return existing
	}
	shadow := &inode{
		dev:   src.dev,
		ino:   src.ino,
		mode:  src.mode,
		nlink: src.nlink,

		// Open Question (spec.md §9, "birthtime on shadow"): copy the
		// shadowed inode's birthtime verbatim, same as the rest of its
		// timestamps, until per-FS creation time becomes a requirement.
		atimeMs:     src.atimeMs,
		mtimeMs:     src.mtimeMs,
		ctimeMs:     src.ctimeMs,
		birthtimeMs: src.birthtimeMs,

		shadowRoot: src,
		kind:       src.kind,
	}
	switch src.kind {
	case kindFile:
		// size is always cheaply readable without materializing a
		// buffer (spec.md §3); copy it eagerly, leave the buffer lazy.
		shadow.size = src.effectiveSize()
	case kindSymlink:
		// Symlink targets are copied eagerly (spec.md §4.4).
		shadow.target = src.target
	case kindDir:
		// links/dirExpanded stay at zero value: lazy, materialized on
		// first getLinks call.
	}
	fsys.shadowTable[src.ino] = shadow
	fsys.logger().WithField("ino", src.ino).Trace("vfsim: shadow inode materialized")
	return shadow
}

// getLinks returns n's directory name map, materializing it if needed:
// from a pending mount expansion, from a shadowed source's links, or
// (for an already-live directory) directly.
func (fsys *FS) getLinks(n *inode) (*nameMap, error) {
	if n.dirExpanded {
		if n.links == nil {
			n.links = newNameMap(fsys.cmp)
		}
		return n.links, nil
	}
	if n.dirResolver != nil {
		if err := expandMountDir(fsys, n, fsys.now()); err != nil {
			return nil, err
		}
		return n.links, nil
	}
	if n.shadowRoot != nil {
		if err := fsys.materializeShadowLinks(n); err != nil {
			return nil, err
		}
		return n.links, nil
	}
	n.links = newNameMap(fsys.cmp)
	n.dirExpanded = true
	return n.links, nil
}

// materializeShadowLinks mirrors every name in the shadowed directory's
// map into fsys as a shadow inode (spec.md §4.4). fsys's comparator is
// authoritative for the mirrored map. Shadow refuses a case-insensitive
// child over a case-sensitive parent, so a child's comparator is never
// coarser than its parent's and names that are distinct in the parent
// stay distinct here; were two names ever to compare equal under fsys's
// comparator, the later insertion - in the shadowed parent's own
// iteration order - would win (see DESIGN.md).
func (fsys *FS) materializeShadowLinks(n *inode) error {
	src := n.shadowRoot
	srcLinks, err := fsys.shadowRootFS.getLinks(src)
	if err != nil {
		return err
	}
	links := newNameMap(fsys.cmp)
	for _, e := range srcLinks.entries() {
		links.set(e.name, fsys.shadowOf(e.node))
	}
	n.links = links
	n.dirExpanded = true
	fsys.logger().WithField("ino", n.ino).Debug("vfsim: shadow directory expanded")
	return nil
}
