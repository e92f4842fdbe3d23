package vfsim

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is the read-only snapshot returned by statSync/lstatSync
// (spec.md §6). Unlike inode, it never changes once returned - mutating
// state afterward does not affect a Stats value already handed to a
// caller.
type Stats struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   int32
	Uid     int
	Gid     int
	Rdev    int
	Size    int64
	Blksize int64
	Blocks  int64

	AtimeMs     int64
	MtimeMs     int64
	CtimeMs     int64
	BirthtimeMs int64
}

const defaultBlksize = 4096

func statFromInode(n *inode) Stats {
	return Stats{
		Dev:     n.dev,
		Ino:     n.ino,
		Mode:    n.mode,
		Nlink:   n.nlink,
		Size:    n.effectiveSize(),
		Blksize: defaultBlksize,

		AtimeMs:     n.atimeMs,
		MtimeMs:     n.mtimeMs,
		CtimeMs:     n.ctimeMs,
		BirthtimeMs: n.birthtimeMs,
	}
}

func (s Stats) Atime() time.Time     { return time.UnixMilli(s.AtimeMs) }
func (s Stats) Mtime() time.Time     { return time.UnixMilli(s.MtimeMs) }
func (s Stats) Ctime() time.Time     { return time.UnixMilli(s.CtimeMs) }
func (s Stats) Birthtime() time.Time { return time.UnixMilli(s.BirthtimeMs) }

func (s Stats) typeBits() uint32 { return s.Mode & modeTypeMask }

func (s Stats) IsFile() bool            { return s.typeBits() == modeRegular }
func (s Stats) IsDirectory() bool       { return s.typeBits() == modeDir }
func (s Stats) IsSymbolicLink() bool    { return s.typeBits() == modeLink }
func (s Stats) IsBlockDevice() bool     { return s.typeBits() == modeBlock }
func (s Stats) IsCharacterDevice() bool { return s.typeBits() == modeChar }
func (s Stats) IsFIFO() bool            { return s.typeBits() == modeFIFO }
func (s Stats) IsSocket() bool          { return s.typeBits() == modeSocket }

// String renders a debug-friendly one-liner, in the spirit of a `ls -la`
// row; sizes are humanized the way a developer staring at a failing test
// would want them, not raw byte counts.
func (s Stats) String() string {
	kind := "?"
	switch {
	case s.IsDirectory():
		kind = "d"
	case s.IsSymbolicLink():
		kind = "l"
	case s.IsFile():
		kind = "-"
	}
	return fmt.Sprintf("%s%04o ino=%d nlink=%d size=%s mtime=%s",
		kind, s.Mode&0o7777, s.Ino, s.Nlink, humanize.Bytes(uint64(s.Size)), s.Mtime().Format(time.RFC3339))
}
