// Package dirutil copies package source trees around.
package dirutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyDirectory copies the content of srcDir into dest, creating dest if
// needed. File modes are kept and symlinks are copied as symlinks.
func CopyDirectory(srcDir, dest string) error {
	if err := CreateIfNotExists(dest, 0755); err != nil {
		return err
	}

	return filepath.WalkDir(srcDir, func(sourcePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking the tree starting at '%s': %w", srcDir, err)
		}
		rel, err := filepath.Rel(srcDir, sourcePath)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		destPath := filepath.Join(dest, rel)

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("running 'stat' on '%s': %w", sourcePath, err)
		}

		switch info.Mode() & os.ModeType {
		case os.ModeDir:
			if err := CreateIfNotExists(destPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case os.ModeSymlink:
			if err := CopySymLink(sourcePath, destPath); err != nil {
				return fmt.Errorf("copying symlink: %w", err)
			}
		default:
			if err := Copy(sourcePath, destPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("copying content of '%s' into '%s': %w", sourcePath, destPath, err)
			}
		}
		return nil
	})
}

func Copy(srcFile, dstFile string, perm os.FileMode) error {
	in, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("while opening the source file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("while creating the destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("while copying the content of the source '%s' to the destination '%s': %w", srcFile, dstFile, err)
	}
	return out.Close()
}

func Exists(filePath string) bool {
	if _, err := os.Lstat(filePath); os.IsNotExist(err) {
		return false
	}
	return true
}

func CreateIfNotExists(dir string, perm os.FileMode) error {
	if Exists(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}
	return nil
}

func CopySymLink(source, dest string) error {
	link, err := os.Readlink(source)
	if err != nil {
		return fmt.Errorf("readlink on source symlink '%s': %w", source, err)
	}
	return os.Symlink(link, dest)
}
