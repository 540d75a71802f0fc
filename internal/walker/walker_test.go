package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func lessonTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "grammar/tenses.md", "# Tenses\n")
	writeFile(t, root, "grammar/voice.markdown", "# Voice\n")
	writeFile(t, root, "paragraph/my-school.md", "# My School\n")
	writeFile(t, root, "README.md", "# Lessons\n")
	writeFile(t, root, "grammar/notes.txt", "not a lesson")
	writeFile(t, root, "drafts/unfinished.md", "# Draft\n")
	writeFile(t, root, ".git/HEAD.md", "ref")
	writeFile(t, root, "grammar/binary.md", "abc\x00def")
	return root
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestWalk_FindsLessons(t *testing.T) {
	root := lessonTree(t)

	files, err := Walk(Config{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"README.md", "grammar/tenses.md", "grammar/voice.markdown", "paragraph/my-school.md"}
	got := relPaths(files)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_Metadata(t *testing.T) {
	root := lessonTree(t)

	files, err := Walk(Config{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("%s: expected absolute path, got %q", f.RelPath, f.Path)
		}
		if len(f.ContentHash) != 64 {
			t.Errorf("%s: expected sha256 hex digest, got %q", f.RelPath, f.ContentHash)
		}
		if f.Size == 0 {
			t.Errorf("%s: expected non-zero size", f.RelPath)
		}
	}
	if files[0].Dir != "" {
		t.Errorf("expected root file to have no dir, got %q", files[0].Dir)
	}
	if files[1].Dir != "grammar" {
		t.Errorf("expected grammar dir, got %q", files[1].Dir)
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	root := lessonTree(t)

	files, err := Walk(Config{RootDir: root, Include: []string{"grammar/**"}, Exclude: []string{"*.markdown", "*.txt"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	got := relPaths(files)
	if len(got) != 1 || got[0] != "grammar/tenses.md" {
		t.Errorf("Walk() = %v, want [grammar/tenses.md]", got)
	}
}

func TestWalk_MaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.md", strings.Repeat("a", 100))
	writeFile(t, root, "small.md", "a")

	files, err := Walk(Config{RootDir: root, MaxFileSize: 10})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "small.md" {
		t.Errorf("Walk() = %v, want [small.md]", got)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(Config{RootDir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestMatchesInclude(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"grammar/tenses.md", nil, true},
		{"grammar/tenses.txt", nil, false},
		{"a/b/c/deep.md", []string{"**/*.md"}, true},
		{"grammar/tenses.md", []string{"paragraph/**"}, false},
		{"grammar/tenses.md", []string{"tenses.md"}, true},
	}
	for _, tt := range tests {
		if got := MatchesInclude(tt.path, tt.patterns); got != tt.want {
			t.Errorf("MatchesInclude(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

func TestMatchesExclude(t *testing.T) {
	if MatchesExclude("grammar/tenses.md", nil) {
		t.Error("expected nothing excluded without patterns")
	}
	if !MatchesExclude("grammar/old/tenses.md", []string{"**/old/**"}) {
		t.Error("expected old lessons to be excluded")
	}
}

func TestWalk_SkipsPartialDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_partials/footer.md", "footer")
	writeFile(t, root, "grammar/tenses.md", "# Tenses\n")

	files, err := Walk(Config{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "grammar/tenses.md" {
		t.Errorf("expected only grammar/tenses.md, got %v", got)
	}
}
