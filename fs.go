package vfsim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ClockSource is the time abstraction of spec.md §9: a fixed millisecond
// value, a clock-like value, or a zero-argument callable, unified here
// behind one small interface so FS.clock never needs a type switch.
type ClockSource interface {
	NowMs() int64
}

type fixedClock int64

func (c fixedClock) NowMs() int64 { return int64(c) }

// FixedClock returns a ClockSource that always reports ms, except for
// the sentinel value -1 which means "use wall-clock now" (spec.md §9).
func FixedClock(ms int64) ClockSource {
	if ms == -1 {
		return wallClock{}
	}
	return fixedClock(ms)
}

type funcClock func() int64

func (c funcClock) NowMs() int64 { return c() }

// FuncClock adapts a zero-argument callable into a ClockSource.
func FuncClock(fn func() int64) ClockSource {
	return funcClock(fn)
}

type wallClock struct{}

func (wallClock) NowMs() int64 { return time.Now().UnixMilli() }

// WallClock is the default ClockSource: real wall-clock time.
func WallClock() ClockSource { return wallClock{} }

// FS is an in-memory, POSIX-semantics virtual file system (spec.md §3).
// The zero value is not usable; construct with New.
type FS struct {
	caseSensitive bool
	cmp           comparator

	dev uint64
	// rootMap is keyed by whole path roots (spec.md §3 invariant 1); this
	// implementation only ever produces the single root "/".
	rootMap *nameMap

	cwd      string
	dirStack []string

	clock ClockSource

	// shadowRootFS is the read-only parent FS this one layers over, or
	// nil. Once set (only via shadow()), it never changes.
	shadowRootFS *FS
	// shadowTable deduplicates shadow-inode materialization, keyed by the
	// shadowed parent's inode.ino (spec.md §4.4).
	shadowTable map[uint64]*inode

	readOnly bool

	meta *metaMap

	log logrus.FieldLogger
}

// Option configures a new FS at construction time.
type Option func(*FS)

// WithCaseInsensitive makes the new FS's comparator ASCII-fold
// case-insensitive. Defaults to case-sensitive.
func WithCaseInsensitive() Option {
	return func(fsys *FS) {
		fsys.caseSensitive = false
		fsys.cmp = caseInsensitiveComparator{}
	}
}

// WithClock installs a non-default clock source.
func WithClock(clock ClockSource) Option {
	return func(fsys *FS) { fsys.clock = clock }
}

// WithLogger installs a logger for mount/shadow materialization tracing
// (SPEC_FULL.md §2). Never required for correctness.
func WithLogger(log logrus.FieldLogger) Option {
	return func(fsys *FS) { fsys.log = log }
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// New creates a fresh, mutable, empty FS with a root directory.
func New(opts ...Option) *FS {
	fsys := &FS{
		caseSensitive: true,
		cmp:           caseSensitiveComparator{},
		clock:         wallClock{},
		cwd:           "/",
		shadowTable:   map[uint64]*inode{},
	}
	for _, opt := range opts {
		opt(fsys)
	}
	fsys.dev = nextDev()
	root := mknod(fsys.dev, kindDir, 0o777, fsys.clock.NowMs(), fsys.cmp)
	root.nlink = 1
	fsys.rootMap = newNameMap(fsys.cmp)
	fsys.rootMap.set("/", root)
	return fsys
}

func (fsys *FS) logger() logrus.FieldLogger {
	if fsys.log == nil {
		fsys.log = defaultLogger()
	}
	return fsys.log
}

func (fsys *FS) rootInode() *inode {
	n, _ := fsys.rootMap.get("/")
	return n
}

// now reads the current clock value.
func (fsys *FS) now() int64 {
	return fsys.clock.NowMs()
}

// guardMutation enforces spec.md §3 invariant 6: a read-only FS rejects
// every mutation with EROFS.
func (fsys *FS) guardMutation(op string) error {
	if fsys.readOnly {
		return newIOError(op, "", EROFS)
	}
	return nil
}

// Time reads the current clock value and, if newSource is given, installs
// it as the FS's new clock (rejected with EPERM on a read-only FS, per
// spec.md §4.6's table note that time-setting is covered by the
// read-only guard).
func (fsys *FS) Time(newSource ...ClockSource) (int64, error) {
	if len(newSource) > 0 {
		if fsys.readOnly {
			return 0, newIOError("time", "", EPERM)
		}
		fsys.clock = newSource[0]
	}
	return fsys.now(), nil
}

// ReadOnly reports whether the FS currently rejects mutations.
func (fsys *FS) ReadOnly() bool { return fsys.readOnly }

// MakeReadonly freezes the FS irreversibly (spec.md §5).
func (fsys *FS) MakeReadonly() {
	fsys.readOnly = true
}

// Shadow produces a fresh, mutable FS that layers over fsys, which must
// already be read-only (spec.md §3 invariant 6, §9 Shadow FS). The child
// must be at least as permissive as the parent on case-sensitivity
// (invariant 7): it may only be case-insensitive if fsys already is.
func (fsys *FS) Shadow(opts ...Option) (*FS, error) {
	if !fsys.readOnly {
		return nil, newIOError("shadow", "", EPERM)
	}
	child := &FS{
		caseSensitive: fsys.caseSensitive,
		cmp:           fsys.cmp,
		clock:         fsys.clock,
		cwd:           fsys.cwd,
		shadowTable:   map[uint64]*inode{},
		shadowRootFS:  fsys,
	}
	for _, opt := range opts {
		opt(child)
	}
	if fsys.caseSensitive && !child.caseSensitive {
		return nil, newIOError("shadow", "", EPERM)
	}
	child.dev = nextDev()
	childRoot := child.shadowOf(fsys.rootInode())
	child.rootMap = newNameMap(child.cmp)
	child.rootMap.set("/", childRoot)
	return child, nil
}

// Cwd returns the current working directory (always absolute here, the
// empty-cwd case from spec.md §3 never arises because New always seeds
// "/").
func (fsys *FS) Cwd() string { return fsys.cwd }

// Chdir changes the current working directory after confirming it
// resolves to a directory.
func (fsys *FS) Chdir(p string) error {
	if err := fsys.guardMutation("chdir"); err != nil {
		return err
	}
	abs := fsys.resolveAgainstCwd(p)
	res, err := fsys.walk(abs, false)
	if err != nil {
		return err
	}
	if res.node == nil {
		return newIOError("chdir", p, ENOENT)
	}
	if !res.node.isDir() {
		return newIOError("chdir", p, ENOTDIR)
	}
	fsys.cwd = res.realpath
	return nil
}

// Pushd changes directory and pushes the previous cwd onto the
// directory stack; Popd restores it.
func (fsys *FS) Pushd(p string) error {
	if err := fsys.guardMutation("pushd"); err != nil {
		return err
	}
	prev := fsys.cwd
	if err := fsys.Chdir(p); err != nil {
		return err
	}
	fsys.dirStack = append(fsys.dirStack, prev)
	return nil
}

func (fsys *FS) Popd() (string, error) {
	if err := fsys.guardMutation("popd"); err != nil {
		return "", err
	}
	if len(fsys.dirStack) == 0 {
		return "", newIOError("popd", "", EINVAL)
	}
	last := fsys.dirStack[len(fsys.dirStack)-1]
	fsys.dirStack = fsys.dirStack[:len(fsys.dirStack)-1]
	fsys.cwd = last
	return last, nil
}

func (fsys *FS) resolveAgainstCwd(p string) string {
	if isAbsolutePath(p) {
		return p
	}
	return combine(fsys.cwd, p)
}
