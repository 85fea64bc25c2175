package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Saver persists a rendered report under a file name and returns where it went
type Saver interface {
	Save(name string, content []byte) (string, error)
}

// DirSaver writes reports into a directory
type DirSaver struct {
	Dir string
}

// NewDirSaver returns a saver for dir; empty means the working directory
func NewDirSaver(dir string) *DirSaver {
	if dir == "" {
		dir = "."
	}
	return &DirSaver{Dir: dir}
}

// maxNameAttempts bounds the numbered suffixes tried for one report
const maxNameAttempts = 1000

// numberedName returns name for n == 0 and name with a "-n" suffix before the
// extension otherwise, e.g. report-1.txt
func numberedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}

func validName(name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid report name: %q", name)
	}
	return nil
}

// Save writes content to a temp file in the target directory and links it
// under name. An existing report is never replaced: a taken name gets the
// next free numbered suffix. The temp file is always removed.
func (s *DirSaver) Save(name string, content []byte) (path string, err error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	closed := false

	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(content); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return "", fmt.Errorf("failed to set report permissions: %w", err)
	}

	for n := 0; n < maxNameAttempts; n++ {
		path = filepath.Join(s.Dir, numberedName(name, n))
		err = os.Link(tmpName, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to save report: %w", err)
		}
	}
	return "", fmt.Errorf("failed to save report: no free name for %s after %d attempts", name, maxNameAttempts)
}

// MemorySaver keeps reports in memory, numbering taken names the way DirSaver does
type MemorySaver struct {
	Files map[string][]byte
	Err   error
}

// Save stores content under the first free name, or fails with Err when set
func (m *MemorySaver) Save(name string, content []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	for n := 0; n < maxNameAttempts; n++ {
		candidate := numberedName(name, n)
		if _, exists := m.Files[candidate]; !exists {
			m.Files[candidate] = append([]byte(nil), content...)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameAttempts)
}
