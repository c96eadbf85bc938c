// Package fsutil provides the filesystem operations used when mirroring
// built documentation into a git working tree.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyTree recursively copies the contents of src into dst. Destination
// directories are created as needed and existing files are overwritten.
// File modes are preserved; symlinks are not followed and return an error
// since build output is expected to contain regular files only.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("failed to stat directory %s: %w", path, err)
			}
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return fmt.Errorf("unsupported file type in build output: %s", path)
		}

		return copyFile(path, target)
	})
}

// MirrorInto copies the contents of src into dst, skipping the named
// top-level entries of dst entirely (they are neither removed nor
// overwritten). Used for the release root copy, where the git metadata and
// the devel mirror must stay untouched. Returns the names of the top-level
// entries copied so the caller can stage exactly what was written.
func MirrorInto(src, dst string, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var copied []string
	for _, entry := range entries {
		if skipped[entry.Name()] {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(from, to); err != nil {
				return copied, err
			}
			copied = append(copied, entry.Name())
			continue
		}
		if !entry.Type().IsRegular() {
			return copied, fmt.Errorf("unsupported file type in build output: %s", from)
		}
		if err := copyFile(from, to); err != nil {
			return copied, err
		}
		copied = append(copied, entry.Name())
	}
	return copied, nil
}

// ReplaceDir removes dir and recreates it empty, giving full replace
// semantics for the devel mirror: stale files from earlier publishes are
// dropped. Refuses empty paths and filesystem roots.
func ReplaceDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("refusing to replace empty path")
	}
	if isFilesystemRoot(dir) {
		return fmt.Errorf("refusing to replace filesystem root: %s", dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// IsEmptyDir reports whether dir exists and contains no entries.
func IsEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

// isFilesystemRoot reports whether path points to a filesystem root
// (POSIX or a Windows volume root).
func isFilesystemRoot(path string) bool {
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) {
		return true
	}
	volume := filepath.VolumeName(clean)
	return volume != "" && clean == volume+string(filepath.Separator)
}
