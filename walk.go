package vfsim

// maxSymlinkDepth bounds symlink-splice restarts; spec.md §8 property 6
// requires a depth-39 chain to resolve and a depth-≥40 cycle to fail
// ELOOP, so the check fires at exactly 40.
const maxSymlinkDepth = 40

// WalkResult is the outcome of resolving an already-absolute path
// (spec.md §4.5): realpath is the fully symlink-resolved textual path;
// parent/links/basename describe the last directory visited so that a
// creating caller (mkdir, writeFile, rename) can attach a new entry
// directly into links without re-walking; node is the resolved target,
// or nil when the parent exists but the target does not (the "partial
// result" spec.md calls out explicitly).
type WalkResult struct {
	realpath string
	basename string
	parent   *inode
	links    *nameMap
	node     *inode
}

// walk resolves an already-absolute path. noFollow suppresses following
// a symlink at the final path component only - intermediate components
// are always followed, exactly as spec.md §4.5 describes.
func (fsys *FS) walk(path string, noFollow bool) (WalkResult, error) {
	comps := parsePath(path)
	if comps.isRoot() {
		return WalkResult{realpath: "/", node: fsys.rootInode()}, nil
	}

	names := comps.Names
	step := 0
	depth := 0

	root := fsys.rootInode()
	parent := root
	links, err := fsys.getLinks(root)
	if err != nil {
		return WalkResult{}, err
	}

	for {
		if depth >= maxSymlinkDepth {
			return WalkResult{}, newIOError("walk", path, ELOOP)
		}

		name := names[step]
		node, _ := links.get(name)
		lastStep := step == len(names)-1

		if lastStep && (noFollow || node == nil || !node.isSymlink()) {
			return WalkResult{
				realpath: formatPath(components{Root: "/", Names: names}),
				basename: name,
				parent:   parent,
				links:    links,
				node:     node,
			}, nil
		}

		if node == nil {
			return WalkResult{}, newIOError("walk", path, ENOENT)
		}

		if node.isSymlink() {
			prefix := formatPath(components{Root: "/", Names: names[:step]})
			target := resolvePath(prefix, node.target)
			tcomps := parsePath(target)

			spliced := make([]string, 0, len(tcomps.Names)+len(names)-step-1)
			spliced = append(spliced, tcomps.Names...)
			spliced = append(spliced, names[step+1:]...)
			names = spliced

			if len(names) == 0 {
				// The symlink (plus any trailing suffix) resolved to the
				// root itself with nothing left to walk.
				return WalkResult{realpath: "/", node: fsys.rootInode()}, nil
			}

			step = 0
			depth++
			root = fsys.rootInode()
			parent = root
			links, err = fsys.getLinks(root)
			if err != nil {
				return WalkResult{}, err
			}
			continue
		}

		if node.isDir() {
			parent = node
			links, err = fsys.getLinks(node)
			if err != nil {
				return WalkResult{}, err
			}
			step++
			continue
		}

		return WalkResult{}, newIOError("walk", path, ENOTDIR)
	}
}
