package compress

import (
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

type noneCodec struct{}

func (noneCodec) Algorithm() Algorithm { return None }

func (noneCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{dst}, nil
}

func (noneCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// gzipCodec compresses with a parallel gzip implementation and decompresses
// with the single-threaded reader. Output is plain RFC 1952 gzip either way.
type gzipCodec struct{}

func (gzipCodec) Algorithm() Algorithm { return Gzip }

func (gzipCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return pgzip.NewWriter(dst), nil
}

func (gzipCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	return kgzip.NewReader(src)
}

type zstdCodec struct{}

func (zstdCodec) Algorithm() Algorithm { return Zstd }

func (zstdCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst)
}

func (zstdCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
