// Package vcs locates the repository enclosing an analyzed project.
package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository encloses a path.
var ErrNotRepository = errors.New("not inside a git repository")

// Repository is an opened git repository.
type Repository interface {
	// Root returns the worktree root directory.
	Root() (string, error)
	// Head describes the checked-out commit.
	Head() (Head, error)
}

// Head is the checked-out revision.
type Head struct {
	Hash   string `json:"hash"`
	Branch string `json:"branch,omitempty"`
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens the repository at path or any parent.
	PlainOpenWithDetect(path string) (Repository, error)
}

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &gitRepository{repo: repo}, nil
}

type gitRepository struct {
	repo *git.Repository
}

func (r *gitRepository) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

func (r *gitRepository) Head() (Head, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Head{}, fmt.Errorf("head: %w", err)
	}
	h := Head{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		h.Branch = ref.Name().Short()
	} else if ref.Name() != plumbing.HEAD {
		h.Branch = ref.Name().String()
	}
	return h, nil
}

// Default opener singleton
var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the default git opener.
func DefaultOpener() Opener {
	return defaultOpener
}

// SetDefaultOpener sets the default git opener (useful for testing).
func SetDefaultOpener(opener Opener) {
	defaultOpener = opener
}

// FindRoot returns the worktree root enclosing path.
func FindRoot(path string) (string, error) {
	repo, err := DefaultOpener().PlainOpenWithDetect(path)
	if err != nil {
		return "", err
	}
	return repo.Root()
}

// ProjectRoot returns the enclosing worktree root, or path itself when it
// is not inside a repository.
func ProjectRoot(path string) string {
	root, err := FindRoot(path)
	if err != nil {
		return path
	}
	return root
}
