package utils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/toyz/pluginmeta/internal/errors"
)

// cachedFile is a file's content together with the stat data it was read at
type cachedFile struct {
	content string
	modTime time.Time
	size    int64
}

// FileReader reads plugin sources, caching content until the file changes
// on disk
type FileReader struct {
	contentCache *Cache[string, cachedFile]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, cachedFile](DefaultCacheSize),
	}
}

// ReadFile reads a file and returns its contents as a string
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("stat", cleanPath, err)
	}
	if info.IsDir() {
		return "", errors.Newf(errors.FileSystemErrorCode, "%s is a directory", cleanPath)
	}

	if cached, ok := fr.contentCache.Get(cleanPath); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.content, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("read", cleanPath, err)
	}

	fr.contentCache.Set(cleanPath, cachedFile{
		content: string(content),
		modTime: info.ModTime(),
		size:    info.Size(),
	})
	return string(content), nil
}

// WriteFile replaces a file's content through a temporary sibling file so
// readers never observe a partial write
func (fr *FileReader) WriteFile(filePath, content string) error {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(cleanPath); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(cleanPath), "."+filepath.Base(cleanPath)+".*")
	if err != nil {
		return errors.WrapFileSystemError("create", cleanPath, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return errors.WrapFileSystemError("write", cleanPath, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapFileSystemError("write", cleanPath, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return errors.WrapFileSystemError("chmod", cleanPath, err)
	}
	if err := os.Rename(tmp.Name(), cleanPath); err != nil {
		return errors.WrapFileSystemError("replace", cleanPath, err)
	}

	fr.contentCache.Delete(cleanPath)
	return nil
}

func (fr *FileReader) cleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "invalid file path", err)
	}
	return filepath.Clean(filePath), nil
}
