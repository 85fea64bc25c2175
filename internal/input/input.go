package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrTooLarge is returned when an image exceeds the upload limit
var ErrTooLarge = errors.New("image exceeds upload limit")

// Selected is an image the user picked, read fully into memory
type Selected struct {
	Path     string
	Name     string
	MimeType string
	Data     []byte
}

// Size returns the image size in bytes
func (s *Selected) Size() int {
	return len(s.Data)
}

// Load reads an image from disk and detects its MIME type from content.
// Files larger than maxBytes are rejected before being read fully.
func Load(path string, maxBytes int64) (*Selected, error) {
	// #nosec G304 - the user chose this file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), maxBytes)
	}

	reader := io.Reader(f)
	if maxBytes > 0 {
		reader = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d", ErrTooLarge, maxBytes)
	}

	return FromBytes(filepath.Base(path), data, path), nil
}

// FromBytes wraps in-memory image data, detecting its MIME type
func FromBytes(name string, data []byte, path string) *Selected {
	return &Selected{
		Path:     path,
		Name:     name,
		MimeType: DetectMIME(data),
		Data:     data,
	}
}

// DetectMIME sniffs the media type of data, without parameters
func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

// AllowList is a set of accepted MIME types
type AllowList struct {
	types map[string]bool
	order []string
}

// NewAllowList builds an allow-list; matching is case-insensitive
func NewAllowList(types []string) *AllowList {
	a := &AllowList{types: make(map[string]bool, len(types))}
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || a.types[t] {
			continue
		}
		a.types[t] = true
		a.order = append(a.order, t)
	}
	return a
}

// Allows reports whether mimeType is on the list
func (a *AllowList) Allows(mimeType string) bool {
	return a.types[strings.ToLower(strings.TrimSpace(mimeType))]
}

// Describe returns a short human list such as "JPG, PNG, GIF"
func (a *AllowList) Describe() string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range a.order {
		name := strings.ToUpper(strings.TrimPrefix(t, "image/"))
		if name == "JPEG" {
			name = "JPG"
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
