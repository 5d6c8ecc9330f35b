package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
)

func TestRepoRoot_NestedDirectory(t *testing.T) {
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	nested := filepath.Join(root, "ports", "zlib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := RepoRoot(nested)
	if err != nil {
		t.Fatalf("RepoRoot failed: %v", err)
	}

	// t.TempDir may sit behind a symlink (macOS /var -> /private/var)
	want, _ := filepath.EvalSymlinks(root)
	gotReal, _ := filepath.EvalSymlinks(got)
	if gotReal != want {
		t.Errorf("Expected root %q, got %q", want, gotReal)
	}
}

func TestRepoRoot_NotARepository(t *testing.T) {
	dir := t.TempDir()

	_, err := RepoRoot(dir)
	if !errors.Is(err, ErrNotInRepo) {
		t.Errorf("Expected ErrNotInRepo, got %v", err)
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	want := filepath.Join("/tmp/xdg", "portlist", "config.yaml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// newSrcLayout creates a git checkout at R with the tree under R/src
func newSrcLayout(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	if _, err := git.PlainInit(repo, false); err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	for _, dir := range []string{"src/ports/zlib", "src/build_tools"} {
		if err := os.MkdirAll(filepath.Join(repo, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return repo
}

func TestTreeRoot(t *testing.T) {
	repo := newSrcLayout(t)
	src := filepath.Join(repo, "src")
	plain := t.TempDir()

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"from build_tools", filepath.Join(src, "build_tools"), src},
		{"from inside a port", filepath.Join(src, "ports", "zlib"), src},
		{"from worktree root", repo, src},
		{"no tree anywhere", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TreeRoot(tt.dir); got != tt.want {
				gotReal, _ := filepath.EvalSymlinks(got)
				wantReal, _ := filepath.EvalSymlinks(tt.want)
				if gotReal != wantReal {
					t.Errorf("Expected %q, got %q", tt.want, got)
				}
			}
		})
	}
}

func TestDefaultRoot_FromBuildTools(t *testing.T) {
	repo := newSrcLayout(t)
	t.Chdir(filepath.Join(repo, "src", "build_tools"))

	got, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot failed: %v", err)
	}
	gotReal, _ := filepath.EvalSymlinks(got)
	wantReal, _ := filepath.EvalSymlinks(filepath.Join(repo, "src"))
	if gotReal != wantReal {
		t.Errorf("Expected %q, got %q", wantReal, gotReal)
	}
}
