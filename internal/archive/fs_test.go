package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/daivaya/internal/models"
)

func tempArchive(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempArchive(t)
	content := []byte("# Reading\nBody\n")
	if err := s.Write("u1/r1.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("u1/r1.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempArchive(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempArchive(t)
	_ = s.Write("u1/a.md", []byte("a"))
	_ = s.Write("u2/b.md", []byte("b"))
	_ = s.Write("u2/notes.txt", []byte("not md"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	items, _ = s.List("u2")
	if len(items) != 1 || items[0].Path != "u2/b.md" {
		t.Errorf("u2 items = %+v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempArchive(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempArchive(t)
	_ = s.Write("atomic.md", []byte("original"))
	if err := s.Write("atomic.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".daivaya-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "daivaya-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor("3f2a-9b", "r_1"); got != "3f2a-9b/r_1.md" {
		t.Errorf("PathFor = %q", got)
	}
	if got := PathFor("../x", ""); got != "___x/_.md" {
		t.Errorf("PathFor = %q", got)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	in := models.Reading{
		ID:          "r-1",
		UserID:      "u-1",
		Kind:        models.KindReading,
		Title:       "Birth chart reading",
		Body:        "### Lagna\nCancer rising.\n### Dasha\nJupiter period.\n",
		Frontmatter: map[string]any{"fingerprint": "abc"},
		CreatedAt:   time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != in.ID || out.UserID != in.UserID || out.Kind != in.Kind || out.Title != in.Title {
		t.Errorf("decoded = %+v", out)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at = %s", out.CreatedAt)
	}
	if out.Body != in.Body || len(out.Sections) != 2 || out.Sections[1].Heading != "Dasha" {
		t.Errorf("body/sections = %q %+v", out.Body, out.Sections)
	}
	if out.Frontmatter["fingerprint"] != "abc" {
		t.Errorf("meta = %v", out.Frontmatter)
	}
	if _, err := Decode([]byte("# no frontmatter\n")); err == nil {
		t.Error("expected error for document without ids")
	}
}
