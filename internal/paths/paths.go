package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotInRepo indicates no git worktree encloses the directory
var ErrNotInRepo = errors.New("not inside a git worktree")

func DefaultConfigDir() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "portlist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "portlist")
}

func DefaultConfigPath() string { return filepath.Join(DefaultConfigDir(), "config.yaml") }

// RepoRoot returns the root of the git worktree containing dir.
func RepoRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotInRepo, dir)
		}
		return "", fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no worktree to report on
		return "", fmt.Errorf("%w: %s: %v", ErrNotInRepo, dir, err)
	}
	return wt.Filesystem.Root(), nil
}

// TreeRoot finds the naclports tree root for dir: the nearest directory at or
// above dir that holds a ports directory. Failing that, the enclosing git
// worktree or its src subdirectory when either holds ports, then the worktree
// itself, then dir.
func TreeRoot(dir string) string {
	for d := dir; ; {
		if hasPorts(d) {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	root, err := RepoRoot(dir)
	if err != nil {
		return dir
	}
	for _, candidate := range []string{root, filepath.Join(root, "src")} {
		if hasPorts(candidate) {
			return candidate
		}
	}
	return root
}

func hasPorts(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, "ports"))
	return err == nil && st.IsDir()
}

// DefaultRoot is the tree root used when none is configured, searched from
// the working directory.
func DefaultRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return TreeRoot(cwd), nil
}
