// Package bundle assembles and consumes the self-describing directories
// shipped across an air gap: one archive, its checksum record, a manifest,
// and operator-facing auxiliary files.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirupsen/logrus"

	v1 "github.com/joelanford/airlift/api/v1"
	"github.com/joelanford/airlift/internal/archive"
	"github.com/joelanford/airlift/internal/checksum"
	"github.com/joelanford/airlift/internal/compress"
	"github.com/joelanford/airlift/internal/reference"
	"github.com/joelanford/airlift/internal/retry"
	"github.com/joelanford/airlift/internal/runtime"
)

// InstructionsFilename is the human-readable load walkthrough written into
// every bundle for operators with no other context.
const InstructionsFilename = "README.txt"

// AnnotationPins marks manifests of bundles that carry a version-pin
// snapshot.
const AnnotationPins = "io.airlift.pins"

type Composer struct {
	Runtime runtime.Runtime
	Retry   retry.Config
	Codecs  *compress.Registry

	// PinsFile optionally points at a version-pin snapshot to copy into the
	// bundle. A missing file is skipped; a malformed one fails the compose.
	PinsFile string

	Log logrus.FieldLogger
}

// Compose builds a complete bundle in dir. dir may exist but must be empty;
// contents of unknown origin are never overwritten. On success the
// directory is self-describing: a loader needs nothing beyond it and a
// working container runtime.
func (c *Composer) Compose(ctx context.Context, dir string, refs []reference.Reference, alg compress.Algorithm) (*v1.Manifest, error) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if err := ensureEmptyDir(dir); err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if !ref.Reproducible() {
			log.WithField("image", ref.String()).Warn("reference has no digest; bundle contents are not reproducible")
		}
	}

	builder := archive.Builder{
		Runtime: c.Runtime,
		Retry:   c.Retry,
		Codecs:  c.Codecs,
		Log:     log,
	}

	// Everything below writes through temp-file-plus-rename, so a failure
	// part way leaves files only under final names that are individually
	// complete; remove them all before propagating.
	var created []string
	cleanup := func() {
		for _, p := range created {
			os.Remove(p)
		}
	}

	archivePath, err := builder.Build(ctx, dir, refs, alg)
	if err != nil {
		return nil, err
	}
	created = append(created, archivePath)

	if _, err := checksum.WriteRecord(archivePath); err != nil {
		cleanup()
		return nil, err
	}
	created = append(created, checksum.RecordPath(archivePath))

	now := time.Now().UTC().Truncate(time.Second)
	manifest := &v1.Manifest{
		SchemaVersion: v1.SchemaVersion,
		CreatedAt:     now,
		Runtime:       c.Runtime.Name(),
		Compression:   alg.String(),
		Archive:       filepath.Base(archivePath),
		Images:        reference.Strings(refs),
		Annotations: map[string]string{
			ocispec.AnnotationCreated: now.Format(time.RFC3339),
		},
	}

	if c.PinsFile != "" {
		dst := filepath.Join(dir, PinsFilename)
		pins, err := copyPins(c.PinsFile, dst)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.WithField("path", c.PinsFile).Info("no version-pin snapshot present, skipping")
		case err != nil:
			cleanup()
			return nil, err
		default:
			created = append(created, dst)
			manifest.Annotations[AnnotationPins] = PinsFilename
			log.WithField("pins", len(pins)).Info("copied version-pin snapshot")
		}
	}

	manifestPath := filepath.Join(dir, v1.ManifestFilename)
	if err := manifest.Write(manifestPath); err != nil {
		cleanup()
		return nil, err
	}
	created = append(created, manifestPath)

	if err := writeInstructions(dir, manifest); err != nil {
		cleanup()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"dir":    dir,
		"images": len(refs),
	}).Info("bundle composed")
	return manifest, nil
}

func ensureEmptyDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bundle directory %q: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read bundle directory %q: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("bundle directory %q is not empty; refusing to overwrite its contents", dir)
	}
	return nil
}

func writeInstructions(dir string, m *v1.Manifest) error {
	text := fmt.Sprintf(`Air-gapped image bundle
=======================

Created:     %s
Runtime:     %s
Compression: %s
Archive:     %s
Images:      %d

To load this bundle on the target host:

  1. Verify the archive has not been corrupted or tampered with:

       airlift checksum verify %s

     (or: sha256sum --check %s)

  2. Load the images into the local container runtime:

       airlift bundle load .

The checksum record covers the exact bytes of the archive. If verification
fails, do not load the archive; request a fresh copy of the bundle.
`,
		m.CreatedAt.Format(time.RFC3339),
		m.Runtime,
		m.Compression,
		m.Archive,
		len(m.Images),
		m.Archive,
		checksum.RecordPath(m.Archive),
	)
	path := filepath.Join(dir, InstructionsFilename)
	if err := renameio.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write instructions %q: %w", path, err)
	}
	return nil
}
