package localfs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/wbxml/internal/protocol/content"
	"github.com/danmuck/wbxml/internal/testutil/testlog"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tree"), testlog.Start(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestHandlerCommitsStreamedFile(t *testing.T) {
	s := newStore(t)
	h := s.Handler()

	d, _ := content.NewFolder("docs")
	if err := h.OnFolder(d); err != nil {
		t.Fatalf("folder: %v", err)
	}

	f, _ := content.NewFile("docs/a.txt", 5)
	f.SetModified(content.MustParseDateTime("20200102T030405Z"))
	f.SetAttributes(content.Attributes{Readable: true, Writable: true, Executable: true})
	if err := h.OnFileBegin(f, true); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, chunk := range []string{"he", "llo"} {
		if err := h.OnFileData(f, []byte(chunk)); err != nil {
			t.Fatalf("data: %v", err)
		}
	}
	if err := h.OnFileEnd(f, true); err != nil {
		t.Fatalf("end: %v", err)
	}

	path := filepath.Join(s.Root(), "docs", "a.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content: %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable mode, got %v", info.Mode())
	}
	if !info.ModTime().Equal(f.Modified().Time) {
		t.Fatalf("unexpected mtime: %v", info.ModTime())
	}
	if h.Files != 1 || h.Folders != 1 {
		t.Fatalf("unexpected counts: files=%d folders=%d", h.Files, h.Folders)
	}
}

func TestHandlerDiscardsAbortedFile(t *testing.T) {
	s := newStore(t)
	h := s.Handler()

	f, _ := content.NewFile("partial.bin", 100)
	if err := h.OnFileBegin(f, true); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := h.OnFileData(f, []byte("abc")); err != nil {
		t.Fatalf("data: %v", err)
	}
	if err := h.OnFileEnd(f, false); err != nil {
		t.Fatalf("end: %v", err)
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty root, found %d entries", len(entries))
	}
	if h.Aborted != 1 {
		t.Fatalf("expected one aborted file, got %d", h.Aborted)
	}
}

func TestHandlerCreatesEmptyFileWithoutBody(t *testing.T) {
	s := newStore(t)
	h := s.Handler()
	f, _ := content.NewFile("empty", 0)
	if err := h.OnFileBegin(f, false); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := h.OnFileEnd(f, true); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "empty")); err != nil {
		t.Fatalf("expected file: %v", err)
	}
}

func TestBodylessFileReplacesExistingContent(t *testing.T) {
	s := newStore(t)
	path := filepath.Join(s.Root(), "a.txt")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, _ := content.NewFile("a.txt", 0)
	f.SetAttributes(content.Attributes{Readable: true, Writable: true, Executable: true})
	var doc bytes.Buffer
	if err := content.Encode(&doc, "d", []content.Item{f}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	h := s.Handler()
	if err := content.Decode(&doc, h); err != nil {
		t.Fatalf("decode: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable mode, got %v", info.Mode())
	}
	if h.Files != 1 {
		t.Fatalf("expected one committed file, got %d", h.Files)
	}
}

func TestRejectsEscapingPaths(t *testing.T) {
	s := newStore(t)
	h := s.Handler()
	for _, name := range []string{"../outside", "a/../../outside", "/etc/passwd", "", "."} {
		d := &content.Folder{}
		d.SetName(name)
		if err := h.OnFolder(d); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestWalkListsTree(t *testing.T) {
	s := newStore(t)
	if err := os.MkdirAll(filepath.Join(s.Root(), "b", "c"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "a.json"), []byte("1234"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "b", "c", ".hidden"), nil, 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	items, err := s.Walk()
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	var names []string
	for _, it := range items {
		switch v := it.(type) {
		case *content.File:
			names = append(names, "file:"+v.Name())
		case *content.Folder:
			names = append(names, "folder:"+v.Name())
		}
	}
	want := "file:a.json folder:b folder:b/c file:b/c/.hidden"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("unexpected walk order:\n got %s\nwant %s", got, want)
	}

	a := items[0].(*content.File)
	if a.Size() != 4 || !a.Has(content.FieldModified) {
		t.Fatalf("unexpected file description: size=%d", a.Size())
	}
	if a.ContentType() == "" {
		t.Fatalf("expected a content type for .json")
	}
	hidden := items[3].(*content.File)
	if !hidden.Attributes().Hidden || !hidden.Attributes().Executable {
		t.Fatalf("unexpected attributes: %+v", hidden.Attributes())
	}
}
