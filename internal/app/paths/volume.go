package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ResolveVolumePath turns a caller supplied path into the slash separated,
// root relative form git uses. The last component is never followed, so a
// symlink inside the volume is addressed as the link itself. Symlinked parent
// directories must resolve to the same place inside root that the operating
// system resolves them to, and must not reach the git directory.
func ResolveVolumePath(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", ErrPathRequired
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%s: %w", rel, ErrPathOutsideVolume)
	}

	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || isGitPath(cleaned) {
		return "", fmt.Errorf("%s: %w", rel, ErrPathOutsideVolume)
	}

	dir := path.Dir(cleaned)
	if dir == "." {
		return cleaned, nil
	}
	plain := filepath.Join(root, filepath.FromSlash(dir))
	scoped, err := securejoin.SecureJoin(root, filepath.FromSlash(dir))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if scoped == plain {
		return cleaned, nil
	}

	// SecureJoin clamps links that leave root back under it; the real
	// resolution only matches when the link stays inside.
	inside, err := filepath.Rel(root, scoped)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if isGitPath(filepath.ToSlash(inside)) {
		return "", fmt.Errorf("%s: %w", rel, ErrPathOutsideVolume)
	}
	want, err := realPath(scoped)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	got, err := realPath(plain)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if got != want {
		return "", fmt.Errorf("%s: %w", rel, ErrPathOutsideVolume)
	}
	return cleaned, nil
}

func isGitPath(p string) bool {
	return p == ".git" || strings.HasPrefix(p, ".git/")
}

// realPath evaluates symlinks in the longest existing prefix of p and keeps
// the missing remainder as is.
func realPath(p string) (string, error) {
	rest := ""
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}

// ResolveVolumePaths resolves every path and drops duplicates while keeping
// the caller's order.
func ResolveVolumePaths(root string, rels []string) ([]string, error) {
	resolved := make([]string, 0, len(rels))
	seen := make(map[string]struct{}, len(rels))
	for _, rel := range rels {
		cleaned, err := ResolveVolumePath(root, rel)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		resolved = append(resolved, cleaned)
	}
	return resolved, nil
}

// NormalizeRepoPath returns the absolute, cleaned form of a repository root.
// A leading "~/" expands to the user's home directory.
func NormalizeRepoPath(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", ErrRepoPathRequired
	}
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", root, err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve repo path: %w", err)
	}
	return abs, nil
}
