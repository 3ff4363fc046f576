package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	v1 "github.com/joelanford/airlift/api/v1"
	"github.com/joelanford/airlift/internal/archive"
	"github.com/joelanford/airlift/internal/checksum"
	"github.com/joelanford/airlift/internal/compress"
	"github.com/joelanford/airlift/internal/runtime"
)

// ErrIntegrity reports a checksum mismatch. An archive that fails
// verification is never handed to the runtime.
var ErrIntegrity = errors.New("archive integrity verification failed")

type Loader struct {
	Runtime runtime.Runtime
	Codecs  *compress.Registry

	// VerifyAfterLoad lists the runtime's images after a successful load as
	// a sanity echo. Observability only.
	VerifyAfterLoad bool

	Log logrus.FieldLogger
}

// Result describes a completed load.
type Result struct {
	Archive     string
	Compression compress.Algorithm

	// Manifest is nil when a bare archive was loaded or the manifest
	// fallback path was taken.
	Manifest *v1.Manifest

	// Verified is false when no checksum record was present and the load
	// proceeded on the reduced-trust path.
	Verified bool

	// RuntimeImages is populated only when VerifyAfterLoad is set.
	RuntimeImages []string
}

// Load restores the images of a bundle directory or bare archive file into
// the runtime. The manifest, when present and readable, is the
// authoritative source for the archive name and compression; the filename
// convention is only a fallback.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	log := l.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	codecs := l.Codecs
	if codecs == nil {
		codecs = compress.DefaultRegistry()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	res := &Result{}
	if info.IsDir() {
		res, err = l.resolveBundleDir(path, log)
		if err != nil {
			return nil, err
		}
	} else {
		res.Archive = path
		res.Compression = compress.FromFilename(path)
	}

	// Verification gate. A mismatch is terminal; a missing record is a
	// caller-visible reduced-trust path, never silently equivalent to a
	// verified load.
	ok, err := checksum.Verify(res.Archive)
	switch {
	case errors.Is(err, checksum.ErrMissingRecord):
		log.WithField("archive", res.Archive).Warn("no checksum record found; loading without integrity verification")
	case err != nil:
		return nil, err
	case !ok:
		return nil, fmt.Errorf("%w: %q does not match its checksum record", ErrIntegrity, res.Archive)
	default:
		res.Verified = true
	}

	reader, closeFn, err := l.openArchive(res.Archive, res.Compression, codecs)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	log.WithFields(logrus.Fields{
		"archive":     res.Archive,
		"compression": res.Compression,
		"verified":    res.Verified,
	}).Info("loading archive into runtime")
	if err := l.Runtime.LoadArchive(ctx, reader); err != nil {
		return nil, err
	}

	if l.VerifyAfterLoad {
		images, err := l.Runtime.ListImages(ctx)
		if err != nil {
			return nil, fmt.Errorf("post-load image listing: %w", err)
		}
		res.RuntimeImages = images
	}
	return res, nil
}

func (l *Loader) resolveBundleDir(dir string, log logrus.FieldLogger) (*Result, error) {
	manifestPath := filepath.Join(dir, v1.ManifestFilename)
	m, err := v1.Load(manifestPath)
	switch {
	case errors.Is(err, v1.ErrUnsupportedSchema):
		// Readable but newer than this build: explicit rejection, no
		// best-effort fallback.
		return nil, err
	case err != nil:
		log.WithError(err).Warn("bundle manifest missing or unreadable; falling back to archive filename convention")
		return l.findArchiveFallback(dir)
	}

	alg, err := compress.ParseAlgorithm(m.Compression)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", manifestPath, err)
	}

	archivePath := filepath.Join(dir, m.Archive)
	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("manifest names archive %q which is not present in %q: %w", m.Archive, dir, err)
	}
	// The manifest is authoritative, but a disagreeing filename means the
	// bundle was tampered with or mis-assembled. Fail loudly rather than
	// guess.
	if byName := compress.FromFilename(m.Archive); byName != alg {
		return nil, fmt.Errorf("manifest declares %s compression but archive %q is named for %s", alg, m.Archive, byName)
	}

	return &Result{
		Archive:     archivePath,
		Compression: alg,
		Manifest:    m,
	}, nil
}

func (l *Loader) findArchiveFallback(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read bundle directory %q: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, archive.BaseName) || strings.HasSuffix(name, checksum.RecordSuffix) {
			continue
		}
		return &Result{
			Archive:     filepath.Join(dir, name),
			Compression: compress.FromFilename(name),
		}, nil
	}
	return nil, fmt.Errorf("no archive matching %s* found in %q", archive.BaseName, dir)
}

// openArchive returns a reader in the form the runtime can consume. Raw and
// gzip archives are passed through untouched (the engine accepts gzip
// natively); zstd requires the registered codec.
func (l *Loader) openArchive(path string, alg compress.Algorithm, codecs *compress.Registry) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	if alg != compress.Zstd {
		return f, f.Close, nil
	}

	codec, err := codecs.For(compress.Zstd)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	rc, err := codec.Decompress(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("decompress %q: %w", path, err)
	}
	return rc, func() error {
		rc.Close()
		return f.Close()
	}, nil
}
