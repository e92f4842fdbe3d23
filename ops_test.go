package vfsim

import "testing"

func TestMkdirSyncEEXIST(t *testing.T) {
	fsys := New()
	if err := fsys.MkdirSync("/a"); err != nil {
		t.Fatalf("MkdirSync(/a) failed: %v", err)
	}
	if err := fsys.MkdirSync("/a"); !IsCode(err, EEXIST) {
		t.Fatalf("MkdirSync(/a) again = %v, want EEXIST", err)
	}
}

func TestRmdirSyncNotEmpty(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/a/b")
	if err := fsys.RmdirSync("/a"); !IsCode(err, ENOTEMPTY) {
		t.Fatalf("RmdirSync(/a) with a child = %v, want ENOTEMPTY", err)
	}
	if err := fsys.RmdirSync("/a/b"); err != nil {
		t.Fatalf("RmdirSync(/a/b) failed: %v", err)
	}
	if err := fsys.RmdirSync("/a"); err != nil {
		t.Fatalf("RmdirSync(/a) failed: %v", err)
	}
}

func TestRmdirSyncRootIsEPERM(t *testing.T) {
	fsys := New()
	if err := fsys.RmdirSync("/"); !IsCode(err, EPERM) {
		t.Fatalf("RmdirSync(/) = %v, want EPERM", err)
	}
}

func TestLinkSyncIncrementsNlink(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	st1, _ := fsys.StatSync("/a")
	if st1.Nlink != 1 {
		t.Fatalf("Nlink after write = %d, want 1", st1.Nlink)
	}
	if err := fsys.LinkSync("/a", "/b"); err != nil {
		t.Fatalf("LinkSync failed: %v", err)
	}
	st2, _ := fsys.StatSync("/a")
	if st2.Nlink != 2 {
		t.Fatalf("Nlink after LinkSync = %d, want 2", st2.Nlink)
	}
	if st1.Ino != st2.Ino {
		t.Error("link should share the same inode identity")
	}
}

func TestLinkSyncRejectsDirectory(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/a")
	if err := fsys.LinkSync("/a", "/b"); !IsCode(err, EPERM) {
		t.Fatalf("LinkSync of a directory = %v, want EPERM", err)
	}
}

func TestUnlinkSyncRejectsDirectory(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/a")
	if err := fsys.UnlinkSync("/a"); !IsCode(err, EISDIR) {
		t.Fatalf("UnlinkSync of a directory = %v, want EISDIR", err)
	}
}

func TestUnlinkSyncDecrementsNlink(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	if err := fsys.LinkSync("/a", "/b"); err != nil {
		t.Fatalf("LinkSync failed: %v", err)
	}
	if err := fsys.UnlinkSync("/b"); err != nil {
		t.Fatalf("UnlinkSync failed: %v", err)
	}
	st, err := fsys.StatSync("/a")
	if err != nil {
		t.Fatalf("StatSync(/a) failed: %v", err)
	}
	if st.Nlink != 1 {
		t.Errorf("Nlink after unlinking the other name = %d, want 1", st.Nlink)
	}
}

func TestRenameSyncSameParentPreservesInode(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	before, _ := fsys.StatSync("/a")
	if err := fsys.RenameSync("/a", "/b"); err != nil {
		t.Fatalf("RenameSync failed: %v", err)
	}
	if _, err := fsys.StatSync("/a"); !IsCode(err, ENOENT) {
		t.Fatalf("StatSync(/a) after rename = %v, want ENOENT", err)
	}
	after, err := fsys.StatSync("/b")
	if err != nil {
		t.Fatalf("StatSync(/b) failed: %v", err)
	}
	if before.Ino != after.Ino {
		t.Error("rename should preserve inode identity")
	}
}

func TestRenameSyncRejectsNonEmptyDirTarget(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/src")
	mustMkdirAll(t, fsys, "/dst/child")
	if err := fsys.RenameSync("/src", "/dst"); !IsCode(err, ENOTEMPTY) {
		t.Fatalf("RenameSync onto a non-empty directory = %v, want ENOTEMPTY", err)
	}
}

func TestRenameSyncCaseVariantOfSelfPreservesNlink(t *testing.T) {
	fsys := New(WithCaseInsensitive())
	mustMkdirAll(t, fsys, "/a")
	if err := fsys.WriteFileSync("/a/README", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	before, err := fsys.StatSync("/a/README")
	if err != nil {
		t.Fatalf("StatSync failed: %v", err)
	}
	if err := fsys.RenameSync("/a/README", "/a/readme"); err != nil {
		t.Fatalf("RenameSync to a case variant of itself failed: %v", err)
	}
	after, err := fsys.StatSync("/a/readme")
	if err != nil {
		t.Fatalf("StatSync(/a/readme) failed: %v", err)
	}
	if after.Nlink != before.Nlink {
		t.Fatalf("nlink changed across a case-variant self-rename: before=%d after=%d", before.Nlink, after.Nlink)
	}
	if after.Nlink < 1 {
		t.Fatalf("renamed file has nlink=%d, want >=1 (still live)", after.Nlink)
	}
}

func TestRenameSyncExistingHardLinkToSameInodeIsNoop(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/a")
	if err := fsys.WriteFileSync("/a/f", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	if err := fsys.LinkSync("/a/f", "/a/g"); err != nil {
		t.Fatalf("LinkSync failed: %v", err)
	}
	before, _ := fsys.StatSync("/a/f")
	if err := fsys.RenameSync("/a/f", "/a/g"); err != nil {
		t.Fatalf("RenameSync(old, existing hard link to same inode) failed: %v", err)
	}
	after, err := fsys.StatSync("/a/g")
	if err != nil {
		t.Fatalf("StatSync(/a/g) failed: %v", err)
	}
	if after.Ino != before.Ino || after.Nlink != before.Nlink {
		t.Fatalf("rename onto an existing hard link to the same inode should be a no-op, got ino=%d nlink=%d (want ino=%d nlink=%d)",
			after.Ino, after.Nlink, before.Ino, before.Nlink)
	}
}

func TestRenameSyncKindMismatch(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/d")
	if err := fsys.WriteFileSync("/f", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	if err := fsys.RenameSync("/d", "/f"); !IsCode(err, ENOTDIR) {
		t.Fatalf("RenameSync(dir onto file) = %v, want ENOTDIR", err)
	}
	if err := fsys.RenameSync("/f", "/d"); !IsCode(err, EISDIR) {
		t.Fatalf("RenameSync(file onto dir) = %v, want EISDIR", err)
	}
}

func TestReadFileSyncCopyIsIndependent(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("hello")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	data, err := fsys.ReadFileSync("/a")
	if err != nil {
		t.Fatalf("ReadFileSync failed: %v", err)
	}
	data[0] = 'X'
	again, err := fsys.ReadFileSync("/a")
	if err != nil {
		t.Fatalf("ReadFileSync failed: %v", err)
	}
	if string(again) != "hello" {
		t.Errorf("stored content was mutated through the returned buffer: %q", again)
	}
}

func TestWriteFileSyncRejectsDirectoryTarget(t *testing.T) {
	fsys := New()
	mustMkdirAll(t, fsys, "/a")
	if err := fsys.WriteFileSync("/a", []byte("x")); !IsCode(err, EISDIR) {
		t.Fatalf("WriteFileSync onto a directory = %v, want EISDIR", err)
	}
}

func TestReadlinkSyncReturnsStoredText(t *testing.T) {
	fsys := New()
	if err := fsys.SymlinkSync("../weird/../target", "/l"); err != nil {
		t.Fatalf("SymlinkSync failed: %v", err)
	}
	target, err := fsys.ReadlinkSync("/l")
	if err != nil {
		t.Fatalf("ReadlinkSync failed: %v", err)
	}
	if target != "../weird/../target" {
		t.Errorf("ReadlinkSync = %q, want unmodified stored text", target)
	}
}

func TestReadlinkSyncRejectsNonSymlink(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	if _, err := fsys.ReadlinkSync("/a"); !IsCode(err, EINVAL) {
		t.Fatalf("ReadlinkSync of a regular file = %v, want EINVAL", err)
	}
}

func TestRealpathSyncIsIdempotent(t *testing.T) {
	fsys := New()
	if err := fsys.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	if err := fsys.SymlinkSync("/a", "/l"); err != nil {
		t.Fatalf("SymlinkSync failed: %v", err)
	}
	r1, err := fsys.RealpathSync("/l")
	if err != nil {
		t.Fatalf("RealpathSync failed: %v", err)
	}
	r2, err := fsys.RealpathSync(r1)
	if err != nil {
		t.Fatalf("RealpathSync failed: %v", err)
	}
	if r1 != r2 {
		t.Errorf("RealpathSync not idempotent: %q then %q", r1, r2)
	}
}

func TestFilemetaPrototypeFromShadow(t *testing.T) {
	parent := New()
	if err := parent.WriteFileSync("/a", []byte("x")); err != nil {
		t.Fatalf("WriteFileSync failed: %v", err)
	}
	meta, err := parent.Filemeta("/a")
	if err != nil {
		t.Fatalf("Filemeta failed: %v", err)
	}
	meta.Set("tag", "original")
	parent.MakeReadonly()

	child, err := parent.Shadow()
	if err != nil {
		t.Fatalf("Shadow() failed: %v", err)
	}
	childMeta, err := child.Filemeta("/a")
	if err != nil {
		t.Fatalf("Filemeta on shadow FS failed: %v", err)
	}
	v, ok := childMeta.Get("tag")
	if !ok || v != "original" {
		t.Fatalf("child meta Get(tag) = %v, %v, want original/true via shadow prototype", v, ok)
	}
}
