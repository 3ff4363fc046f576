// Package archive turns a set of image references into a single compressed
// archive file on disk.
package archive

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"

	"github.com/joelanford/airlift/internal/compress"
	"github.com/joelanford/airlift/internal/reference"
	"github.com/joelanford/airlift/internal/retry"
	"github.com/joelanford/airlift/internal/runtime"
)

// BaseName is the fixed payload filename inside a bundle; the compression
// extension is appended so a loader can infer the decompression strategy
// from the name alone when no manifest is available.
const BaseName = "images.tar"

// Filename returns the archive filename for the given algorithm.
func Filename(alg compress.Algorithm) string {
	return BaseName + alg.Extension()
}

type Builder struct {
	Runtime runtime.Runtime
	Retry   retry.Config
	Codecs  *compress.Registry
	Log     logrus.FieldLogger
}

// Build pulls every image (each pull wrapped in bounded-backoff retry),
// exports them together through the runtime, and writes the compressed
// result to dir. A single exhausted pull aborts the whole build with the
// identity of the failing image; no partial archive is ever visible under
// its final name.
func (b *Builder) Build(ctx context.Context, dir string, refs []reference.Reference, alg compress.Algorithm) (string, error) {
	if len(refs) == 0 {
		return "", fmt.Errorf("no images to bundle")
	}
	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	codecs := b.Codecs
	if codecs == nil {
		codecs = compress.DefaultRegistry()
	}

	// Resolve the codec before pulling anything so a missing dependency
	// fails fast instead of after minutes of downloads.
	codec, err := codecs.For(alg)
	if err != nil {
		return "", err
	}

	for _, ref := range refs {
		log.WithField("image", ref.String()).Info("pulling image")
		err := retry.Do(ctx, b.Retry, func(ctx context.Context) error {
			return b.Runtime.Pull(ctx, ref)
		})
		if err != nil {
			return "", fmt.Errorf("pull image %q: %w", ref, err)
		}
	}

	outPath := filepath.Join(dir, Filename(alg))
	pf, err := renameio.NewPendingFile(outPath, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("create archive %q: %w", outPath, err)
	}
	defer pf.Cleanup()

	// The export streams through the codec straight into the pending file,
	// so no uncompressed intermediate is left behind.
	wc, err := codec.Compress(pf)
	if err != nil {
		return "", fmt.Errorf("initialize %s compression: %w", alg, err)
	}
	if err := b.Runtime.SaveMulti(ctx, refs, wc); err != nil {
		wc.Close()
		return "", fmt.Errorf("export images: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("finalize %s compression: %w", alg, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("write archive %q: %w", outPath, err)
	}

	log.WithField("archive", outPath).Info("archive written")
	return outPath, nil
}
