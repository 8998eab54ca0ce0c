package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const mergeHeadFile = "MERGE_HEAD"

var mergeStateFiles = []string{mergeHeadFile, "MERGE_MSG", "MERGE_MODE", "AUTO_MERGE"}

func gitDir(repo *git.Repository) (billy.Filesystem, error) {
	fs, ok := repo.Storer.(interface{ Filesystem() billy.Filesystem })
	if !ok {
		return nil, fmt.Errorf("repository storage is not filesystem backed")
	}
	return fs.Filesystem(), nil
}

func readMergeHead(repo *git.Repository) (plumbing.Hash, bool, error) {
	fs, err := gitDir(repo)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	data, err := util.ReadFile(fs, mergeHeadFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, fmt.Errorf("read %s: %w", mergeHeadFile, err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if !plumbing.IsHash(line) {
		return plumbing.ZeroHash, false, fmt.Errorf("malformed %s: %q", mergeHeadFile, line)
	}
	return plumbing.NewHash(line), true, nil
}

func clearMergeState(repo *git.Repository) error {
	fs, err := gitDir(repo)
	if err != nil {
		return err
	}
	for _, name := range mergeStateFiles {
		if err := fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
