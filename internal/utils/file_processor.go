package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/pluginmeta/internal/errors"
)

// PluginExtensions are the source extensions a plugin module may have
var PluginExtensions = []string{".js", ".mjs", ".cjs", ".ts", ".mts", ".cts", ".jsx", ".tsx"}

// FileProcessor provides utilities for finding and reading plugin files
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// IsPluginFile reports whether name has a plugin source extension.
// Declaration files are not plugins.
func IsPluginFile(name string) bool {
	if strings.HasSuffix(name, ".d.ts") || strings.HasSuffix(name, ".d.mts") || strings.HasSuffix(name, ".d.cts") {
		return false
	}
	ext := filepath.Ext(name)
	for _, allowed := range PluginExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// PluginFileFilter filters for plugin sources, excluding tests and specs
func PluginFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		return IsPluginFile(name) &&
			!strings.HasSuffix(base, ".test") &&
			!strings.HasSuffix(base, ".spec")
	}
}

// DefaultDirectoryFilter skips directories that never hold plugin sources
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"node_modules": true,
		"vendor":       true,
		"testdata":     true,
		"dist":         true,
		"build":        true,
		"coverage":     true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// hidden directories, including .nuxt and .output
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// ExpandPatterns resolves command-line targets into plugin files.
//
// A target ending in "/..." is walked recursively. A plain directory yields
// its top-level plugin files and the index file of each immediate
// subdirectory, the layout of a plugins directory. A file is taken as is.
// The result is absolute, sorted and free of duplicates.
func (fp *FileProcessor) ExpandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}

	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/...") {
			baseDir := strings.TrimSuffix(pattern, "/...")
			if baseDir == "" {
				baseDir = "."
			}

			absDir, err := filepath.Abs(baseDir)
			if err != nil {
				return nil, errors.WrapWithOperation("resolve", baseDir, err)
			}

			matched, err := fp.WalkFiles(absDir, FileWalkOptions{
				FileFilter:      PluginFileFilter(),
				DirectoryFilter: DefaultDirectoryFilter(),
			})
			if err != nil {
				return nil, errors.WrapFileSystemError("walk", absDir, err)
			}
			add(matched...)
			continue
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", pattern, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", absPath, err)
		}

		if !info.IsDir() {
			add(absPath)
			continue
		}

		matched, err := fp.pluginDirFiles(absPath)
		if err != nil {
			return nil, err
		}
		add(matched...)
	}

	sort.Strings(files)
	return files, nil
}

// pluginDirFiles lists dir/*.ext and dir/*/index.ext
func (fp *FileProcessor) pluginDirFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	fileFilter := PluginFileFilter()
	dirFilter := DefaultDirectoryFilter()

	var files []string
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		if !entry.IsDir() {
			if fileFilter(entryPath, entry) {
				files = append(files, entryPath)
			}
			continue
		}

		if !dirFilter(entryPath, entry) {
			continue
		}

		for _, ext := range PluginExtensions {
			index := filepath.Join(entryPath, "index"+ext)
			if info, err := os.Stat(index); err == nil && !info.IsDir() {
				files = append(files, index)
				break
			}
		}
	}
	return files, nil
}

// ReadPlugin reads a plugin file through the processor's cached reader
func (fp *FileProcessor) ReadPlugin(path string) (string, error) {
	if !IsPluginFile(path) {
		return "", errors.Newf(errors.FileSystemErrorCode, "%s is not a plugin source file", path).
			WithSuggestion(fmt.Sprintf("Plugin files use one of %s", strings.Join(PluginExtensions, " ")))
	}
	return fp.fileReader.ReadFile(path)
}

// GetFileReader returns the underlying FileReader
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
