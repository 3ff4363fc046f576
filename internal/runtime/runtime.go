// Package runtime defines the narrow boundary between the bundling pipeline
// and a concrete container runtime. The core never shells out or inspects
// tool output directly; everything goes through this interface so the
// pipeline is testable with in-memory implementations.
package runtime

import (
	"context"
	"io"

	"github.com/joelanford/airlift/internal/reference"
)

type Runtime interface {
	// Name identifies the runtime, recorded informationally in bundle
	// manifests.
	Name() string

	// Pull fetches one image into the runtime's local store.
	Pull(ctx context.Context, ref reference.Reference) error

	// SaveMulti exports the full set of previously pulled images as a single
	// uncompressed tar stream. Exporting the set together deduplicates
	// layers shared between images.
	SaveMulti(ctx context.Context, refs []reference.Reference, w io.Writer) error

	// LoadArchive restores images from an archive stream. Implementations
	// must accept both raw and gzip-compressed tar input.
	LoadArchive(ctx context.Context, r io.Reader) error

	// ListImages returns the references currently present in the runtime.
	ListImages(ctx context.Context) ([]string, error)
}
