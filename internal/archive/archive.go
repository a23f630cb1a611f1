// Package archive converts replays between .slp and zstd-compressed .slpz.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/suykerbuyk/combo-finder/internal/discover"
	"github.com/suykerbuyk/combo-finder/internal/logging"
	"github.com/suykerbuyk/combo-finder/internal/slp"
)

// Compress writes srcPath as a .slpz next to it and returns the archive
// path. The archive keeps the source's modification time. With remove set
// the source is deleted once the archive is complete.
func Compress(srcPath string, remove bool) (string, error) {
	if slp.Compressed(srcPath) {
		return "", fmt.Errorf("%s is already compressed", srcPath)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	srcInfo, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	head := make([]byte, len(slp.RawHeader))
	if _, err := io.ReadFull(src, head); err != nil || !bytes.Equal(head, slp.RawHeader) {
		return "", fmt.Errorf("%s: %w", srcPath, slp.ErrNotReplay)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind source: %w", err)
	}

	destPath := ArchivePath(srcPath)
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".compress-*.slpz")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		tmp.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Chtimes(tmp.Name(), srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", fmt.Errorf("install archive: %w", err)
	}

	if remove {
		src.Close()
		if err := os.Remove(srcPath); err != nil {
			return destPath, fmt.Errorf("remove source: %w", err)
		}
	}
	return destPath, nil
}

// Decompress restores archivePath to a .slp next to it and returns that
// path.
func Decompress(archivePath string) (string, error) {
	if !slp.Compressed(archivePath) {
		return "", fmt.Errorf("%s is not a .slpz file", archivePath)
	}

	src, err := slp.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	destPath := strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + ".slp"
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".decompress-*.slp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("decompress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", fmt.Errorf("install replay: %w", err)
	}
	return destPath, nil
}

// IsArchived reports whether a .slpz already exists for the replay at path.
func IsArchived(path string) bool {
	_, err := os.Stat(ArchivePath(path))
	return err == nil
}

// ArchivePath returns the .slpz path for a replay.
func ArchivePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".slpz"
}

// CompressTree compresses every .slp under root that has no archive yet.
// Failures are logged and skipped; the number of archives written is
// returned.
func CompressTree(root string, remove bool, log logging.Interface) (int, error) {
	files, err := discover.Discover(root)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range files {
		if f.Compressed || IsArchived(f.Path) {
			continue
		}
		dest, err := Compress(f.Path, remove)
		if err != nil {
			log.Warnf("compress %s: %v", f.Path, err)
			continue
		}
		log.Debugf("compressed %s -> %s", f.Path, dest)
		n++
	}
	return n, nil
}
