package action

import (
	"context"

	"github.com/joelanford/airlift/internal/checksum"
)

type VerifyChecksum struct {
	Path string
}

// Run reports whether the file matches its adjacent checksum record. A
// missing record surfaces as checksum.ErrMissingRecord, distinct from a
// mismatch.
func (a *VerifyChecksum) Run(_ context.Context) (bool, error) {
	return checksum.Verify(a.Path)
}
