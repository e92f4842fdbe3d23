package vfsim

import (
	"strings"
)

// PathFlags selects which shapes validatePath accepts.
type PathFlags int

const (
	Absolute PathFlags = 1 << iota
	Relative
	RelativeOrAbsolute = Absolute | Relative
)

// components is a parsed path: Root is the root token ("/" for every path
// in this implementation - the design supports "c:/"-style roots per
// spec.md §3 invariant 1, but only "/" is ever produced by parse, since
// this module targets a single-rooted POSIX tree) and Names are the
// remaining path segments in order.
type components struct {
	Root  string
	Names []string
}

func (c components) isRoot() bool {
	return len(c.Names) == 0
}

// parsePath splits an absolute path into its root and name components,
// collapsing repeated separators and trailing separators. "." segments
// are dropped; ".." segments are resolved against the so-far-accumulated
// names, clamped at the root (spec.md §4.1 edge case).
func parsePath(p string) components {
	root := "/"
	rest := strings.TrimPrefix(p, "/")

	var names []string
	for _, seg := range strings.Split(rest, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(names) > 0 {
				names = names[:len(names)-1]
			}
		default:
			names = append(names, seg)
		}
	}
	return components{Root: root, Names: names}
}

// formatPath renders components back to canonical path text.
func formatPath(c components) string {
	if len(c.Names) == 0 {
		return c.Root
	}
	return c.Root + strings.Join(c.Names, "/")
}

// dirname returns all but the last path component.
func dirname(p string) string {
	c := parsePath(p)
	if len(c.Names) == 0 {
		return c.Root
	}
	c.Names = c.Names[:len(c.Names)-1]
	return formatPath(c)
}

// basename returns the last path component, or "" for the root.
func basename(p string) string {
	c := parsePath(p)
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[len(c.Names)-1]
}

// combine joins b onto a as a lexical path join (no filesystem access,
// no symlink resolution - that is the walker's job).
func combine(a, b string) string {
	if isAbsolutePath(b) {
		return formatPath(parsePath(b))
	}
	return formatPath(parsePath(a + "/" + b))
}

// resolvePath joins p onto base exactly like combine, collapsing "."
// and ".." lexically. It exists as a distinct name to match spec.md
// §4.1's operation table; the implementation is identical to combine
// because neither performs symlink resolution.
func resolvePath(base, p string) string {
	return combine(base, p)
}

func isAbsolutePath(p string) bool {
	return strings.HasPrefix(p, "/")
}

func isRootPath(p string) bool {
	return parsePath(p).isRoot()
}

// validatePath checks p against the requested shape. The empty path is
// always invalid.
func validatePath(p string, flags PathFlags) error {
	if p == "" {
		return newTypeError("path: empty path")
	}
	abs := isAbsolutePath(p)
	if abs && flags&Absolute == 0 {
		return newTypeError("path: %q must be relative", p)
	}
	if !abs && flags&Relative == 0 {
		return newTypeError("path: %q must be absolute", p)
	}
	return nil
}

// comparator totally orders path component names within a single FS. All
// name maps in a given FS must share one comparator (spec.md §3
// invariant 5).
type comparator interface {
	// less reports whether a sorts strictly before b.
	less(a, b string) bool
	// equal reports whether a and b name the same entry.
	equal(a, b string) bool
}

// caseSensitiveComparator orders names by raw byte value.
type caseSensitiveComparator struct{}

func (caseSensitiveComparator) less(a, b string) bool  { return a < b }
func (caseSensitiveComparator) equal(a, b string) bool { return a == b }

// caseInsensitiveComparator orders and matches names with the ASCII
// letters A-Z folded to lower case; every other byte, including those of
// non-ASCII letters, is compared as-is, so the result never depends on
// locale or Unicode case tables.
type caseInsensitiveComparator struct{}

func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (caseInsensitiveComparator) less(a, b string) bool {
	return foldASCII(a) < foldASCII(b)
}

func (caseInsensitiveComparator) equal(a, b string) bool {
	return foldASCII(a) == foldASCII(b)
}

func comparePaths(cmp comparator, a, b string) bool {
	ca, cb := parsePath(a), parsePath(b)
	if len(ca.Names) != len(cb.Names) {
		return false
	}
	for i := range ca.Names {
		if !cmp.equal(ca.Names[i], cb.Names[i]) {
			return false
		}
	}
	return true
}
