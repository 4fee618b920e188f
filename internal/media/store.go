package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored attachments are served.
const PublicPrefix = "/uploads"

// ErrUnsupportedData is returned for attachment payloads that are not
// base64 data URLs.
var ErrUnsupportedData = errors.New("unsupported attachment data")

// Store writes uploaded attachments to a local directory. Clients send
// images as base64 data URLs; the stored file is served back statically
// under PublicPrefix.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory attachments are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SaveDataURL decodes a data URL (data:image/png;base64,...) and writes the
// content under a fresh UUID name. Returns the public URL path.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	payload, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", ErrUnsupportedData
	}
	meta, data, ok := strings.Cut(payload, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", ErrUnsupportedData
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode attachment: %w", err)
	}

	name := uuid.New().String() + extFor(strings.TrimSuffix(meta, ";base64"))
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}

	return PublicPrefix + "/" + name, nil
}

func extFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
