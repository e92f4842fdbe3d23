package vfsim

import (
	"sync/atomic"
)

// File-type bits, laid out exactly like POSIX's S_IFMT family
// (spec.md §4.3). Only REG/DIR/LNK are producible through the public
// API; the rest are stored for compatibility, matching spec.md's
// "tagged but not producible" note.
const (
	modeTypeMask uint32 = 0o170000

	modeFIFO    uint32 = 0o010000
	modeChar    uint32 = 0o020000
	modeDir     uint32 = 0o040000
	modeBlock   uint32 = 0o060000
	modeRegular uint32 = 0o100000
	modeLink    uint32 = 0o120000
	modeSocket  uint32 = 0o140000
)

type inodeKind int

const (
	kindFile inodeKind = iota
	kindDir
	kindSymlink
)

// global device/inode allocators. spec.md §5 requires these be
// process-wide monotonic counters so cross-FS identity comparisons
// (shadow checks) stay meaningful; 64 bits rules out wraparound for the
// life of any realistic process.
var (
	globalDev uint64
	globalIno uint64
)

func nextDev() uint64 {
	return atomic.AddUint64(&globalDev, 1)
}

func nextIno() uint64 {
	return atomic.AddUint64(&globalIno, 1)
}

// metaMap is the opaque string→any bag backing filemeta(), with
// prototype-style inheritance from a shadow ancestor's meta (spec.md §3).
type metaMap struct {
	proto  *metaMap
	values map[string]interface{}
}

func newMetaMap(proto *metaMap) *metaMap {
	return &metaMap{proto: proto, values: map[string]interface{}{}}
}

func (m *metaMap) get(key string) (interface{}, bool) {
	if v, ok := m.values[key]; ok {
		return v, true
	}
	if m.proto != nil {
		return m.proto.get(key)
	}
	return nil, false
}

func (m *metaMap) set(key string, value interface{}) {
	m.values[key] = value
}

// inode is the tagged variant of spec.md §3: a shared header plus
// payload fields that are only meaningful for one of the three kinds.
// Go has no sum type, so (following the teacher's memNode, which took
// the same shape) the fields for all three kinds live side by side and
// `kind` disambiguates; spec.md §9 explicitly asks for "a sum type with
// a shared stat record, not inheritance," which this satisfies without
// needing an interface hierarchy.
type inode struct {
	dev   uint64
	ino   uint64
	mode  uint32
	nlink int32

	atimeMs     int64
	mtimeMs     int64
	ctimeMs     int64
	birthtimeMs int64

	meta *metaMap

	// shadowRoot is a reference (never ownership) to the inode in the
	// shadowed parent FS this inode was materialized from. Its lifetime
	// is dominated by that FS being read-only (spec.md §9).
	shadowRoot *inode

	kind inodeKind

	// --- file ---
	buffer       []byte
	size         int64
	fileSource   string
	fileResolver FileSystemResolver

	// --- directory ---
	links        *nameMap
	dirExpanded  bool
	dirSource    string
	dirResolver  FileSystemResolver

	// --- symlink ---
	target string
}

func typeBitsFor(kind inodeKind) uint32 {
	switch kind {
	case kindDir:
		return modeDir
	case kindSymlink:
		return modeLink
	default:
		return modeRegular
	}
}

// mknod allocates a fresh inode. mode is masked to permission bits,
// stripped of the default 0o022 umask, and OR'd with the type bits for
// kind - matching spec.md §4.3 exactly. cmp is only used for a fresh
// directory's (already-materialized, empty) name map; it must be the
// owning FS's comparator per spec.md §3 invariant 5.
func mknod(dev uint64, kind inodeKind, mode uint32, timeMs int64, cmp comparator) *inode {
	n := &inode{
		dev:         dev,
		ino:         nextIno(),
		mode:        (mode & 0o7777 &^ 0o022) | typeBitsFor(kind),
		nlink:       0,
		atimeMs:     timeMs,
		mtimeMs:     timeMs,
		ctimeMs:     timeMs,
		birthtimeMs: timeMs,
		kind:        kind,
	}
	if kind == kindDir {
		// A freshly created directory (as opposed to one materialized
		// lazily from a shadow/mount) starts out already expanded with
		// no children.
		n.links = newNameMap(cmp)
		n.dirExpanded = true
	}
	return n
}

func (n *inode) typeBits() uint32 { return n.mode & modeTypeMask }

func (n *inode) isDir() bool     { return n.typeBits() == modeDir }
func (n *inode) isFile() bool    { return n.typeBits() == modeRegular }
func (n *inode) isSymlink() bool { return n.typeBits() == modeLink }

// effectiveSize returns the file's size without materializing its
// buffer - always readable per spec.md §3's File variant note.
func (n *inode) effectiveSize() int64 {
	switch {
	case n.buffer != nil:
		return int64(len(n.buffer))
	default:
		return n.size
	}
}
