package vfsim

import "strings"

// Meta is a handle onto an inode's opaque metadata map,
// returned by Filemeta. Reads fall through to a shadow ancestor's
// metadata via prototype-style inheritance (spec.md §3).
type Meta struct {
	m *metaMap
}

func (m Meta) Get(key string) (interface{}, bool) {
	if m.m == nil {
		return nil, false
	}
	return m.m.get(key)
}

func (m Meta) Set(key string, value interface{}) {
	if m.m != nil {
		m.m.set(key, value)
	}
}

// addLink attaches node under name in links, incrementing nlink and
// updating ctime/parent mtime (spec.md §3 Lifecycle).
func (fsys *FS) addLink(links *nameMap, parent *inode, name string, node *inode) {
	links.set(name, node)
	now := fsys.now()
	node.nlink++
	node.ctimeMs = now
	parent.mtimeMs = now
}

// removeLink detaches name from links, decrementing the displaced
// inode's nlink.
func (fsys *FS) removeLink(links *nameMap, parent *inode, name string) *inode {
	old, _ := links.delete(name)
	now := fsys.now()
	if old != nil {
		old.nlink--
		old.ctimeMs = now
	}
	parent.mtimeMs = now
	return old
}

func (fsys *FS) ensureMeta(n *inode) *metaMap {
	if n.meta != nil {
		return n.meta
	}
	var proto *metaMap
	if n.shadowRoot != nil {
		proto = fsys.shadowRootFS.ensureMeta(n.shadowRoot)
	}
	n.meta = newMetaMap(proto)
	return n.meta
}

// StatSync returns a snapshot of the file at p, following a final-
// component symlink.
func (fsys *FS) StatSync(p string) (Stats, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return Stats{}, err
	}
	if res.node == nil {
		return Stats{}, newIOError("stat", p, ENOENT)
	}
	return statFromInode(res.node), nil
}

// LstatSync is StatSync without following a final-component symlink.
func (fsys *FS) LstatSync(p string) (Stats, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), true)
	if err != nil {
		return Stats{}, err
	}
	if res.node == nil {
		return Stats{}, newIOError("lstat", p, ENOENT)
	}
	return statFromInode(res.node), nil
}

// ReaddirSync lists names in comparator order.
func (fsys *FS) ReaddirSync(p string) ([]string, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return nil, err
	}
	if res.node == nil {
		return nil, newIOError("readdir", p, ENOENT)
	}
	if !res.node.isDir() {
		return nil, newIOError("readdir", p, ENOTDIR)
	}
	links, err := fsys.getLinks(res.node)
	if err != nil {
		return nil, err
	}
	return links.keys(), nil
}

// MkdirSync creates a single new directory; the parent must already
// exist.
func (fsys *FS) MkdirSync(p string) error {
	if err := fsys.guardMutation("mkdir"); err != nil {
		return err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), true)
	if err != nil {
		return err
	}
	if res.node != nil {
		return newIOError("mkdir", p, EEXIST)
	}
	newDir := mknod(res.parent.dev, kindDir, 0o777, fsys.now(), fsys.cmp)
	fsys.addLink(res.links, res.parent, res.basename, newDir)
	return nil
}

// MkdirAllSync recursively creates p and any missing ancestors
// (spec.md §1's "recursive mkdir" convenience).
func (fsys *FS) MkdirAllSync(p string) error {
	if err := fsys.guardMutation("mkdir"); err != nil {
		return err
	}
	abs := fsys.resolveAgainstCwd(p)
	comps := parsePath(abs)
	cur := "/"
	for _, name := range comps.Names {
		cur = combine(cur, name)
		res, err := fsys.walk(cur, true)
		if err != nil {
			return err
		}
		if res.node != nil {
			if !res.node.isDir() {
				return newIOError("mkdir", cur, ENOTDIR)
			}
			continue
		}
		newDir := mknod(res.parent.dev, kindDir, 0o777, fsys.now(), fsys.cmp)
		fsys.addLink(res.links, res.parent, res.basename, newDir)
	}
	return nil
}

// RmdirSync removes an empty, non-root directory.
func (fsys *FS) RmdirSync(p string) error {
	if err := fsys.guardMutation("rmdir"); err != nil {
		return err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), true)
	if err != nil {
		return err
	}
	if res.parent == nil {
		return newIOError("rmdir", p, EPERM)
	}
	if res.node == nil {
		return newIOError("rmdir", p, ENOENT)
	}
	if !res.node.isDir() {
		return newIOError("rmdir", p, ENOTDIR)
	}
	links, err := fsys.getLinks(res.node)
	if err != nil {
		return err
	}
	if links.size() > 0 {
		return newIOError("rmdir", p, ENOTEMPTY)
	}
	fsys.removeLink(res.links, res.parent, res.basename)
	return nil
}

// LinkSync creates a hard link at newp to the same inode as oldp.
// Directories can never be hard-linked (spec.md §3 invariant 4).
func (fsys *FS) LinkSync(oldp, newp string) error {
	if err := fsys.guardMutation("link"); err != nil {
		return err
	}
	oldRes, err := fsys.walk(fsys.resolveAgainstCwd(oldp), false)
	if err != nil {
		return err
	}
	if oldRes.node == nil {
		return newIOError("link", oldp, ENOENT)
	}
	if oldRes.node.isDir() {
		return newIOError("link", oldp, EPERM)
	}
	newRes, err := fsys.walk(fsys.resolveAgainstCwd(newp), true)
	if err != nil {
		return err
	}
	if newRes.node != nil {
		return newIOError("link", newp, EEXIST)
	}
	fsys.addLink(newRes.links, newRes.parent, newRes.basename, oldRes.node)
	return nil
}

// UnlinkSync detaches a non-directory name.
func (fsys *FS) UnlinkSync(p string) error {
	if err := fsys.guardMutation("unlink"); err != nil {
		return err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), true)
	if err != nil {
		return err
	}
	if res.parent == nil {
		return newIOError("unlink", p, EPERM)
	}
	if res.node == nil {
		return newIOError("unlink", p, ENOENT)
	}
	if res.node.isDir() {
		return newIOError("unlink", p, EISDIR)
	}
	fsys.removeLink(res.links, res.parent, res.basename)
	return nil
}

// RenameSync moves oldp to newp, following neither.
func (fsys *FS) RenameSync(oldp, newp string) error {
	if err := fsys.guardMutation("rename"); err != nil {
		return err
	}
	oldRes, err := fsys.walk(fsys.resolveAgainstCwd(oldp), true)
	if err != nil {
		return err
	}
	if oldRes.parent == nil {
		return newIOError("rename", oldp, EPERM)
	}
	if oldRes.node == nil {
		return newIOError("rename", oldp, ENOENT)
	}

	newRes, err := fsys.walk(fsys.resolveAgainstCwd(newp), true)
	if err != nil {
		return err
	}
	if newRes.parent == nil {
		return newIOError("rename", newp, EPERM)
	}

	if comparePaths(fsys.cmp, oldRes.realpath, newRes.realpath) {
		return nil
	}

	if newRes.node != nil && newRes.node == oldRes.node {
		// old and new are distinct names already hard-linked to the same
		// inode (e.g. via a case-insensitive comparator, or an existing
		// hard link elsewhere): POSIX rename is a no-op here too.
		return nil
	}

	if newRes.node != nil {
		oldIsDir := oldRes.node.isDir()
		newIsDir := newRes.node.isDir()
		switch {
		case oldIsDir && !newIsDir:
			return newIOError("rename", newp, ENOTDIR)
		case !oldIsDir && newIsDir:
			return newIOError("rename", newp, EISDIR)
		case newIsDir:
			newLinks, err := fsys.getLinks(newRes.node)
			if err != nil {
				return err
			}
			if newLinks.size() > 0 {
				return newIOError("rename", newp, ENOTEMPTY)
			}
		}
		fsys.removeLink(newRes.links, newRes.parent, newRes.basename)
	}

	node := oldRes.node
	if oldRes.parent == newRes.parent {
		oldRes.links.delete(oldRes.basename)
		newRes.links.set(newRes.basename, node)
		now := fsys.now()
		node.ctimeMs = now
		newRes.parent.mtimeMs = now
	} else {
		fsys.removeLink(oldRes.links, oldRes.parent, oldRes.basename)
		fsys.addLink(newRes.links, newRes.parent, newRes.basename, node)
	}
	return nil
}

// SymlinkSync creates a symlink at linkp whose stored text is target,
// exactly as given (no normalization - spec.md §8 property 4).
func (fsys *FS) SymlinkSync(target, linkp string) error {
	if err := fsys.guardMutation("symlink"); err != nil {
		return err
	}
	if err := validatePath(target, RelativeOrAbsolute); err != nil {
		return newIOError("symlink", linkp, EINVAL)
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(linkp), true)
	if err != nil {
		return err
	}
	if res.node != nil {
		return newIOError("symlink", linkp, EEXIST)
	}
	sym := mknod(res.parent.dev, kindSymlink, 0o777, fsys.now(), fsys.cmp)
	sym.target = target
	fsys.addLink(res.links, res.parent, res.basename, sym)
	return nil
}

// ReadlinkSync returns the stored symlink text, unmodified.
func (fsys *FS) ReadlinkSync(p string) (string, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), true)
	if err != nil {
		return "", err
	}
	if res.node == nil {
		return "", newIOError("readlink", p, ENOENT)
	}
	if !res.node.isSymlink() {
		return "", newIOError("readlink", p, EINVAL)
	}
	return res.node.target, nil
}

// RealpathSync returns the fully symlink-resolved textual path.
func (fsys *FS) RealpathSync(p string) (string, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return "", err
	}
	return res.realpath, nil
}

// ReadFileSync returns a fresh copy of the file's bytes.
func (fsys *FS) ReadFileSync(p string) ([]byte, error) {
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return nil, err
	}
	if res.node == nil {
		return nil, newIOError("readFile", p, ENOENT)
	}
	if res.node.isDir() {
		return nil, newIOError("readFile", p, EISDIR)
	}
	if !res.node.isFile() {
		return nil, newIOError("readFile", p, EBADF)
	}
	buf, err := fsys.getBuffer(res.node)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	res.node.atimeMs = fsys.now()
	return out, nil
}

// ReadFileString is ReadFileSync decoded as UTF-8.
func (fsys *FS) ReadFileString(p string) (string, error) {
	b, err := fsys.ReadFileSync(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFileSync replaces (or creates) the file at p with a fresh copy of
// data.
func (fsys *FS) WriteFileSync(p string, data []byte) error {
	if err := fsys.guardMutation("writeFile"); err != nil {
		return err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return err
	}
	target := res.node
	if target == nil {
		target = mknod(res.parent.dev, kindFile, 0o666, fsys.now(), fsys.cmp)
		fsys.addLink(res.links, res.parent, res.basename, target)
	} else if target.isDir() {
		return newIOError("writeFile", p, EISDIR)
	} else if !target.isFile() {
		return newIOError("writeFile", p, EBADF)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	target.buffer = buf
	target.size = int64(len(buf))
	target.fileSource = ""
	target.fileResolver = nil
	target.shadowRoot = nil

	now := fsys.now()
	target.mtimeMs = now
	target.ctimeMs = now
	return nil
}

// WriteFileString encodes s per encoding (only "utf8"/"utf-8" - the
// default - is supported; anything else is EINVAL) and writes it.
func (fsys *FS) WriteFileString(p, s string, encoding ...string) error {
	enc := "utf8"
	if len(encoding) > 0 && encoding[0] != "" {
		enc = strings.ToLower(encoding[0])
	}
	switch enc {
	case "utf8", "utf-8":
		return fsys.WriteFileSync(p, []byte(s))
	default:
		return newIOError("writeFile", p, EINVAL)
	}
}

// MountSync creates a directory whose children are produced on demand by
// resolver, rooted at src within it.
func (fsys *FS) MountSync(src, tgt string, resolver FileSystemResolver) error {
	if err := fsys.guardMutation("mount"); err != nil {
		return err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(tgt), true)
	if err != nil {
		return err
	}
	if res.node != nil {
		return newIOError("mount", tgt, EEXIST)
	}
	dir := mknod(res.parent.dev, kindDir, 0o777, fsys.now(), fsys.cmp)
	dir.links = nil
	dir.dirExpanded = false
	dir.dirSource = src
	dir.dirResolver = resolver
	fsys.addLink(res.links, res.parent, res.basename, dir)
	fsys.logger().WithField("target", tgt).WithField("source", src).Debug("vfsim: mount registered")
	return nil
}

// Filemeta returns the metadata map for p, lazily allocating it (with a
// shadow ancestor's metadata as prototype) on first access.
func (fsys *FS) Filemeta(p string) (Meta, error) {
	if err := fsys.guardMutation("filemeta"); err != nil {
		return Meta{}, err
	}
	res, err := fsys.walk(fsys.resolveAgainstCwd(p), false)
	if err != nil {
		return Meta{}, err
	}
	if res.node == nil {
		return Meta{}, newIOError("filemeta", p, ENOENT)
	}
	return Meta{m: fsys.ensureMeta(res.node)}, nil
}
