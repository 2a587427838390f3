package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandPath(t *testing.T) {
	home := setHome(t)
	// raw path unaffected
	if got, err := ExpandPath("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandPath(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if p, err := ExpandPath("~"); err != nil || p != home {
		t.Fatalf("expected %q, got %q (err=%v)", home, p, err)
	}
	exp, err := ExpandPath("~/data/bookmarks.db")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if want := filepath.Join(home, "data", "bookmarks.db"); exp != want {
		t.Fatalf("expected %q, got %q", want, exp)
	}
	if _, err := ExpandPath("~bob/x"); err == nil {
		t.Fatalf("expected error for ~user form")
	}
}

func TestExpandPath_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKMARKD_TEST_DIR", dir)
	got, err := ExpandPath("$BOOKMARKD_TEST_DIR/b.db")
	if err != nil || got != dir+"/b.db" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestEnsureParentDir(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "a", "b", "c.db")
	if err := EnsureParentDir(p); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if st, err := os.Stat(filepath.Dir(p)); err != nil || !st.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := EnsureParentDir("plain.db"); err != nil {
		t.Fatalf("relative file: %v", err)
	}
	if !PathExists(filepath.Dir(p)) || PathExists(p) {
		t.Fatalf("PathExists mismatch")
	}
}
