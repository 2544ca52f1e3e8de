package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when a path is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Revision identifies the state of the repository holding a board project.
type Revision struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"` // empty on a detached HEAD
	Dirty  bool   `json:"dirty"`
}

// Short returns the abbreviated commit hash with a "-dirty" suffix when the
// work tree has uncommitted changes.
func (r Revision) Short() string {
	c := r.Commit
	if len(c) > 12 {
		c = c[:12]
	}
	if r.Dirty {
		c += "-dirty"
	}
	return c
}

// Describe resolves HEAD of the repository containing path. path may be a
// file or a directory anywhere below the work tree root.
func Describe(path string) (Revision, error) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	repository, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repository.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	rev := Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}

	wt, err := repository.Worktree()
	if err != nil {
		return rev, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return rev, fmt.Errorf("worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()

	return rev, nil
}
