// Package loader builds routing tables from a directory of handler files.
//
// Every regular file in the directory contributes a set of routes. Files are
// read in directory-listing order (sorted by name) and merged, so a path
// defined by two files resolves to the one whose name sorts last. Loading is
// all or nothing: if any file fails, no table is returned.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// FileLoader imports one handler file and registers its routes in t.
type FileLoader func(path string, t *Table) error

var loaders = map[string]FileLoader{
	".lua":  loadLua,
	".json": loadJSON,
	".yaml": loadYAML,
	".yml":  loadYAML,
	".toml": loadTOML,
}

// RegisterLoader makes files with extension ext loadable. It is not safe to
// call while tables are being loaded.
func RegisterLoader(ext string, fn FileLoader) {
	loaders[strings.ToLower(ext)] = fn
}

// LoadError reports a directory that could not be turned into a table.
type LoadError struct {
	Dir string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load handlers from %s: %s", e.Dir, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load imports every handler file in dir into a fresh table. The caller
// must Close the table when done with it.
func Load(dir string) (*Table, error) {
	files, err := getSortedFiles(dir)
	if err != nil {
		return nil, &LoadError{Dir: dir, Err: err}
	}

	logger := zap.L()
	table := NewTable()

	var result *multierror.Error
	for _, file := range files {
		name := filepath.Base(file)
		load, ok := loaders[strings.ToLower(filepath.Ext(file))]
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%s: unsupported handler file", name))
			continue
		}
		logger.Debug("reading file", zap.String("path", file))
		if err := load(file, table); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		table.Close()
		return nil, &LoadError{Dir: dir, Err: err}
	}

	return table, nil
}

// getSortedFiles lists the handler files in path. Directories, dotfiles and
// files starting with "_" are left out; the latter are helpers that handler
// files may pull in themselves.
func getSortedFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var fileNames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		fileNames = append(fileNames, filepath.Join(path, name))
	}

	sort.Strings(fileNames)

	return fileNames, nil
}
