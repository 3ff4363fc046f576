// Package v1 defines the serialized bundle manifest. The manifest is the
// authoritative description of a bundle directory's contents; readers ignore
// unknown fields for forward compatibility but must reject schema versions
// newer than they understand.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

const (
	// SchemaVersion is the newest manifest schema this build understands.
	SchemaVersion = 1

	// ManifestFilename is the manifest's name inside a bundle directory.
	ManifestFilename = "manifest.json"
)

// ErrUnsupportedSchema reports a manifest written by a newer producer. The
// bundle must be rejected explicitly, never best-effort parsed.
var ErrUnsupportedSchema = errors.New("unsupported bundle schema version")

type Manifest struct {
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`

	// Runtime names the container runtime that produced the archive.
	// Informational; it does not gate loading.
	Runtime string `json:"runtime"`

	// Compression is the algorithm applied to the archive: none, gzip, or
	// zstd.
	Compression string `json:"compression"`

	// Archive is the payload filename within the bundle directory.
	Archive string `json:"archive"`

	// Images lists the bundled references in pull order.
	Images []string `json:"images"`

	Annotations map[string]string `json:"annotations,omitempty"`
}

func (m *Manifest) Validate() error {
	if m.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: manifest has schema %d, this build supports up to %d", ErrUnsupportedSchema, m.SchemaVersion, SchemaVersion)
	}
	if m.SchemaVersion < 1 {
		return fmt.Errorf("manifest schema version %d is invalid", m.SchemaVersion)
	}
	if m.Archive == "" {
		return errors.New("manifest does not name an archive file")
	}
	return nil
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Write persists the manifest atomically.
func (m *Manifest) Write(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}
	return nil
}
