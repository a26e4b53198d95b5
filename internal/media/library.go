package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LocalEntry is one parsed file in the library directory.
type LocalEntry struct {
	// UUID parsed from the canonical filename.
	UUID string

	// Name is the file's basename within the library directory.
	Name string
}

// ScanResult holds the outcome of listing the library directory.
type ScanResult struct {
	// Entries maps episode UUID to the file found for it.
	Entries map[string]LocalEntry

	// Unparsable lists filenames that did not match the canonical
	// pattern. They are reported and left alone, never deleted.
	Unparsable []string

	// Duplicates lists filenames whose UUID was already claimed by an
	// earlier entry. The first file wins; duplicates are left alone.
	Duplicates []string
}

// Library provides serialized filesystem operations on the music
// directory. Only the executor mutates the directory, and only through
// Remove, Rename, and WriteFileAtomic.
type Library struct {
	dir string
	mu  sync.RWMutex
}

// NewLibrary creates a Library rooted at the given directory. The
// directory is created on first Scan if absent.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the root directory of the library.
func (l *Library) Dir() string {
	return l.dir
}

// Scan lists the library directory and parses each filename back into an
// episode UUID. The directory (and parents) is created if absent, so a
// missing directory means an empty inventory rather than an error.
// Subdirectories are not entered.
func (l *Library) Scan() (*ScanResult, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory %s: %w", l.dir, err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("listing library directory %s: %w", l.dir, err)
	}

	result := &ScanResult{
		Entries: make(map[string]LocalEntry),
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		name := de.Name()

		uuid, err := ParseUUID(name)
		if err != nil {
			result.Unparsable = append(result.Unparsable, name)
			continue
		}

		if _, taken := result.Entries[uuid]; taken {
			result.Duplicates = append(result.Duplicates, name)
			continue
		}

		result.Entries[uuid] = LocalEntry{UUID: uuid, Name: name}
	}

	return result, nil
}

// Remove deletes a file by basename. Returns nil if the file does not
// exist.
func (l *Library) Remove(name string) error {
	absPath, err := l.resolve(name)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err = os.Remove(absPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", name, err)
	}

	return nil
}

// Rename moves a file from one basename to another within the library.
func (l *Library) Rename(oldName, newName string) error {
	oldAbs, err := l.resolve(oldName)
	if err != nil {
		return err
	}

	newAbs, err := l.resolve(newName)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldName, newName, err)
	}

	return nil
}

// WriteFileAtomic writes data to the named file via a temporary file in
// the same directory followed by a rename. A crash mid-write never
// leaves a partial file at the canonical name; only the rename commits.
func (l *Library) WriteFileAtomic(name string, data []byte) error {
	absPath, err := l.resolve(name)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tmp, err := os.CreateTemp(l.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing temp file for %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("setting permissions for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), absPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing %s: %w", name, err)
	}

	return nil
}

// Path returns the absolute path for a basename in the library. Used by
// post-processing steps (tagging) that operate on committed files.
func (l *Library) Path(name string) (string, error) {
	return l.resolve(name)
}

// resolve converts a basename to an absolute path within the library
// directory, rejecting empty names and path traversal.
func (l *Library) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}

	if strings.ContainsRune(name, os.PathSeparator) || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid filename %q: must be a bare name", name)
	}

	return filepath.Join(l.dir, name), nil
}
