package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// ResolveRoot finds the top-level directory of the working tree containing dir.
// Returns an error wrapping ErrNotGitRepository when dir is outside any repository
// or inside a bare one.
func ResolveRoot(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotGitRepository, dir)
		}
		return "", fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return "", fmt.Errorf("%w: %s is a bare repository", ErrNotGitRepository, dir)
		}
		return "", err
	}
	return wt.Filesystem.Root(), nil
}
