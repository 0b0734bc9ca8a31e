// Package fileutil provides the file copies and atomic writes used for logo
// output and persisted state.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst through a temporary sibling so dst is never
// observed half-written. dst keeps the source file's permission bits.
func CopyFile(src, dst string) error {
	_, err := copyAtomic(src, dst)
	return err
}

// CopyFileVerified copies like CopyFile and then re-reads dst, comparing its
// size and SHA-256 digest with what was read from src. dst is removed on
// mismatch.
func CopyFileVerified(src, dst string) error {
	srcSum, err := copyAtomic(src, dst)
	if err != nil {
		return err
	}
	dstSum, err := hashFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if dstSum.size != srcSum.size {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSum.size, dstSum.size)
	}
	if !bytes.Equal(srcSum.digest, dstSum.digest) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: %s differs from %s", dst, src)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file in path's directory, syncs it,
// and renames it over path. On failure path is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

type checksum struct {
	size   int64
	digest []byte
}

func copyAtomic(src, dst string) (checksum, error) {
	in, err := os.Open(src)
	if err != nil {
		return checksum{}, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return checksum{}, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return checksum{}, fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return checksum{}, err
	}
	tmpPath := out.Name()
	fail := func(err error) (checksum, error) {
		_ = out.Close()
		_ = os.Remove(tmpPath)
		return checksum{}, err
	}

	hasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, hasher))
	if err != nil {
		return fail(err)
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return checksum{}, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return checksum{}, err
	}
	return checksum{size: written, digest: hasher.Sum(nil)}, nil
}

func hashFile(path string) (checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return checksum{}, err
	}
	defer f.Close()
	hasher := sha256.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return checksum{}, err
	}
	return checksum{size: n, digest: hasher.Sum(nil)}, nil
}
