// Package vfsim provides an in-memory, POSIX-semantics virtual file
// system: inodes with hard links and symlinks, a read-only "shadow"
// base layer that a mutable FS can copy-on-write over, and lazy
// mount points backed by an external FileSystemResolver.
//
// # Usage
//
//	fsys := vfsim.New()
//	if err := fsys.MkdirAllSync("/a/b"); err != nil {
//		log.Fatal(err)
//	}
//	if err := fsys.WriteFileSync("/a/b/hi.txt", []byte("hi")); err != nil {
//		log.Fatal(err)
//	}
//	data, err := fsys.ReadFileSync("/a/b/hi.txt")
//
// A read-only FS can be layered under a fresh mutable one with Shadow,
// and an entire tree can be populated or torn down in one call with
// Apply.
package vfsim
