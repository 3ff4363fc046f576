package compress

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Algorithm identifies one of the supported compression schemes. The
// manifest's compression field is the authoritative signal; filename
// extensions (see FromFilename) are only a fallback when no manifest is
// available.
type Algorithm string

const (
	None Algorithm = "none"
	Gzip Algorithm = "gzip"
	Zstd Algorithm = "zstd"
)

// Default is the algorithm used when the caller does not choose one.
const Default = Gzip

// ErrMissingDependency reports that the codec required for a requested
// algorithm is unavailable. The request is never silently redirected to a
// different algorithm.
var ErrMissingDependency = errors.New("compression codec unavailable")

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case None:
		return None, nil
	case Gzip:
		return Gzip, nil
	case Zstd:
		return Zstd, nil
	case "":
		return Default, nil
	}
	return "", fmt.Errorf("unknown compression algorithm %q (supported: none, gzip, zstd)", s)
}

// Extension returns the filename suffix appended to an archive compressed
// with the algorithm.
func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	}
	return ""
}

func (a Algorithm) String() string {
	return string(a)
}

// FromFilename infers the algorithm from a file's extension. This is the
// defense-in-depth path for archives that arrive without a manifest.
func FromFilename(name string) Algorithm {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return Gzip
	case strings.HasSuffix(name, ".zst"):
		return Zstd
	}
	return None
}

// Codec is a narrow interface over one compression scheme so the pipeline
// can be exercised with fakes, independent of any installed tool.
type Codec interface {
	Algorithm() Algorithm

	// Compress wraps dst; the returned writer must be closed to flush.
	// Closing it does not close dst.
	Compress(dst io.Writer) (io.WriteCloser, error)

	// Decompress wraps src. Closing the returned reader does not close src.
	Decompress(src io.Reader) (io.ReadCloser, error)
}

// Registry resolves algorithms to codecs. A requested algorithm with no
// registered codec fails with ErrMissingDependency.
type Registry struct {
	codecs map[Algorithm]Codec
}

func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[Algorithm]Codec, len(codecs))}
	for _, c := range codecs {
		r.codecs[c.Algorithm()] = c
	}
	return r
}

// DefaultRegistry returns the full built-in codec set.
func DefaultRegistry() *Registry {
	return NewRegistry(noneCodec{}, gzipCodec{}, zstdCodec{})
}

func (r *Registry) For(a Algorithm) (Codec, error) {
	c, ok := r.codecs[a]
	if !ok {
		return nil, fmt.Errorf("%w: no %s codec available", ErrMissingDependency, a)
	}
	return c, nil
}
