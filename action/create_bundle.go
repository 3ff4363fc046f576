// Package action exposes the toolkit's high-level operations as small
// structs with a Run method, so that library callers and the CLI share one
// code path.
package action

import (
	"context"

	"github.com/sirupsen/logrus"

	v1 "github.com/joelanford/airlift/api/v1"
	"github.com/joelanford/airlift/internal/bundle"
	"github.com/joelanford/airlift/internal/compress"
	"github.com/joelanford/airlift/internal/reference"
	"github.com/joelanford/airlift/internal/retry"
	"github.com/joelanford/airlift/internal/runtime"
)

type CreateBundle struct {
	OutputDir   string
	Images      []string
	Compression string
	Retry       retry.Config
	Runtime     runtime.Runtime
	PinsFile    string

	Log logrus.FieldLogger
}

func (a *CreateBundle) Run(ctx context.Context) (*v1.Manifest, error) {
	refs, err := reference.ParseAll(a.Images)
	if err != nil {
		return nil, err
	}
	alg, err := compress.ParseAlgorithm(a.Compression)
	if err != nil {
		return nil, err
	}

	composer := bundle.Composer{
		Runtime:  a.Runtime,
		Retry:    a.Retry,
		PinsFile: a.PinsFile,
		Log:      a.Log,
	}
	return composer.Compose(ctx, a.OutputDir, refs, alg)
}
