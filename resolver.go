package vfsim

// FileSystemResolver is the external interface consumed by mountSync
// (spec.md §4.4, §6). Implementations reading from the host disk, an
// archive, or another VFS instance plug in here; this module never calls
// anything but these three synchronous methods.
type FileSystemResolver interface {
	StatSync(path string) (ResolverStat, error)
	ReaddirSync(path string) ([]string, error)
	ReadFileSync(path string) ([]byte, error)
}

// ResolverStat is the minimal stat shape a resolver reports for a child
// during mount expansion - just enough to pick a file vs. directory
// inode and seed its lazy size.
type ResolverStat struct {
	Mode uint32
	Size int64
}

// expandMountDir performs the one-shot resolver.readdirSync call
// described in spec.md §4.4: each name becomes a directory inode
// (carrying its own source+resolver for further lazy expansion) or a
// file inode (size seeded from stat, buffer loaded lazily). After this
// call, dir.dirSource/dirResolver are cleared - expansion never repeats.
func expandMountDir(fsys *FS, dir *inode, timeMs int64) error {
	if dir.dirExpanded {
		return nil
	}
	names, err := dir.dirResolver.ReaddirSync(dir.dirSource)
	if err != nil {
		return err
	}
	links := newNameMap(fsys.cmp)
	for _, name := range names {
		childSource := combine(dir.dirSource, name)
		st, err := dir.dirResolver.StatSync(childSource)
		if err != nil {
			continue
		}
		var child *inode
		if st.Mode&modeTypeMask == modeDir {
			child = mknod(dir.dev, kindDir, 0o777, timeMs, fsys.cmp)
			child.links = nil
			child.dirExpanded = false
			child.dirSource = childSource
			child.dirResolver = dir.dirResolver
		} else {
			child = mknod(dir.dev, kindFile, 0o666, timeMs, fsys.cmp)
			child.size = st.Size
			child.fileSource = childSource
			child.fileResolver = dir.dirResolver
		}
		child.nlink = 1
		links.set(name, child)
		fsys.logger().WithField("path", childSource).Trace("vfsim: mount child discovered")
	}
	dir.links = links
	dir.dirExpanded = true
	dir.dirSource = ""
	dir.dirResolver = nil
	fsys.logger().WithField("path", dir.fileSource).Debug("vfsim: mount directory expanded")
	return nil
}

// getBuffer returns the file's content, materializing it from whichever
// authoritative source is currently set (spec.md §4.4's lazy buffer):
// an already-materialized buffer, a resolver read, or a shadow copy, in
// that priority order, else an empty buffer. The returned slice is the
// live, internally-owned buffer - callers in this file must copy it
// before handing it out across the public API (readFileSync always
// copies; see ops.go).
func (fsys *FS) getBuffer(n *inode) ([]byte, error) {
	if n.buffer != nil {
		return n.buffer, nil
	}
	if n.fileResolver != nil {
		data, err := n.fileResolver.ReadFileSync(n.fileSource)
		if err != nil {
			return nil, err
		}
		n.buffer = data
		n.fileSource = ""
		n.fileResolver = nil
		fsys.logger().WithField("ino", n.ino).Debug("vfsim: lazy file buffer loaded from resolver")
		return n.buffer, nil
	}
	if n.shadowRoot != nil {
		data, err := fsys.shadowRootFS.getBuffer(n.shadowRoot)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, nil
}
