package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveVolumePath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "test.md", want: "test.md"},
		{input: "docs/page.md", want: "docs/page.md"},
		{input: "./docs/../docs/page.md", want: "docs/page.md"},
		{input: "  notes.md ", want: "notes.md"},
		{input: "", wantErr: ErrPathRequired},
		{input: "../escape.md", wantErr: ErrPathOutsideVolume},
		{input: "docs/../../escape.md", wantErr: ErrPathOutsideVolume},
		{input: "/etc/passwd", wantErr: ErrPathOutsideVolume},
		{input: ".", wantErr: ErrPathOutsideVolume},
		{input: ".git/config", wantErr: ErrPathOutsideVolume},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveVolumePath(root, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveVolumePathRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := ResolveVolumePath(root, "link/secret.md"); !errors.Is(err, ErrPathOutsideVolume) {
		t.Fatalf("expected ErrPathOutsideVolume, got %v", err)
	}
}

func TestResolveVolumePathAllowsLinksInsideVolume(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "real.md"), []byte("real\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Symlink("real.md", filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink("docs", filepath.Join(root, "d")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.md")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	for input, want := range map[string]string{
		"link.md":     "link.md",
		"d/page.md":   "d/page.md",
		"dangling.md": "dangling.md",
	} {
		got, err := ResolveVolumePath(root, input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("%s: expected %q, got %q", input, want, got)
		}
	}
}

func TestResolveVolumePathRejectsLinkIntoGitDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(".git", filepath.Join(root, "meta")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := ResolveVolumePath(root, "meta/config"); !errors.Is(err, ErrPathOutsideVolume) {
		t.Fatalf("expected ErrPathOutsideVolume, got %v", err)
	}
}

func TestResolveVolumePathRejectsRelativeLinkEscape(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "volume")
	if err := os.MkdirAll(filepath.Join(parent, "private"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink("../private", filepath.Join(root, "up")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := ResolveVolumePath(root, "up/notes.md"); !errors.Is(err, ErrPathOutsideVolume) {
		t.Fatalf("expected ErrPathOutsideVolume, got %v", err)
	}
}

func TestResolveVolumePathsDeduplicates(t *testing.T) {
	root := t.TempDir()
	got, err := ResolveVolumePaths(root, []string{"a.md", "./a.md", "b.md"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[0] != "a.md" || got[1] != "b.md" {
		t.Fatalf("unexpected paths: %v", got)
	}
}

func TestNormalizeRepoPath(t *testing.T) {
	if _, err := NormalizeRepoPath("  "); !errors.Is(err, ErrRepoPathRequired) {
		t.Fatalf("expected ErrRepoPathRequired, got %v", err)
	}
	got, err := NormalizeRepoPath("relative/dir")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
}

func TestNormalizeRepoPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := NormalizeRepoPath("~/wiki/../notes")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if want := filepath.Join(home, "notes"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
